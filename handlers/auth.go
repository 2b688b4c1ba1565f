package handlers

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/middleware"
	"github.com/lizet96/medibot-backend/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// Signup crea la cuenta y devuelve un token para entrar directo
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeSignup, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = models.NormalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, codeSignup, "Name, email and password are required")
	}
	if !emailPattern.MatchString(req.Email) {
		return fail(c, fiber.StatusBadRequest, codeSignup, "Invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		return fail(c, fiber.StatusBadRequest, codeSignup, "Password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hashing password", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeSignup, "Internal server error")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return fail(c, fiber.StatusConflict, codeSignup, "User already exists")
		}
		h.logger.Error("creating user", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeSignup, "Internal server error")
	}

	h.event(models.LogLevelSuccess, "user signed up", user.Email, nil)
	return h.issueToken(c, fiber.StatusCreated, codeSignup, "Signup successful", user)
}

// Login autentica con email y contraseña, y con código TOTP si el usuario tiene MFA
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeLogin, "Invalid request body")
	}

	user, err := h.users.FindByEmail(c.UserContext(), models.NormalizeEmail(req.Email))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("finding user", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeLogin, "Internal server error")
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.event(models.LogLevelWarning, "failed login", models.NormalizeEmail(req.Email), nil)
		return fail(c, fiber.StatusForbidden, codeLogin, "Invalid credentials")
	}

	if user.MFAEnabled {
		if req.MFACode == "" {
			return failWith(c, fiber.StatusUnauthorized, codeLogin, fiber.Map{
				"error":        "MFA code required",
				"requires_mfa": true,
			})
		}
		if !totp.Validate(req.MFACode, user.MFASecret) {
			h.event(models.LogLevelWarning, "invalid mfa code", user.Email, nil)
			return failWith(c, fiber.StatusUnauthorized, codeLogin, fiber.Map{
				"error":        "Invalid MFA code",
				"requires_mfa": true,
			})
		}
	}

	return h.issueToken(c, fiber.StatusOK, codeLogin, "Login successful", user)
}

func (h *Handler) issueToken(c *fiber.Ctx, status int, code, message string, user *models.User) error {
	token, _, err := middleware.GenerateJWT(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		h.logger.Error("signing token", "error", err)
		return fail(c, fiber.StatusInternalServerError, code, "Internal server error")
	}

	return respond(c, status, code, fiber.Map{
		"message":    message,
		"success":    true,
		"token":      token,
		"expires_in": int(h.tokenTTL.Seconds()),
		"user":       user.Response(),
	})
}

// Logout revoca el token actual hasta su expiración
func (h *Handler) Logout(c *fiber.Ctx) error {
	jti, exp := middleware.TokenID(c)
	if err := h.sessions.RevokeToken(c.UserContext(), jti, time.Until(exp)); err != nil {
		h.logger.Error("revoking token", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeLogout, "Could not revoke token")
	}
	h.sessions.DeleteProfile(c.UserContext(), middleware.UserID(c))

	return respond(c, fiber.StatusOK, codeLogout, fiber.Map{
		"message": "Logged out",
		"success": true,
	})
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.users.FindByID(c.UserContext(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, codeProfile, "User not found")
		}
		h.logger.Error("loading profile", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeProfile, "Internal server error")
	}

	return respond(c, fiber.StatusOK, codeProfile, fiber.Map{
		"success": true,
		"user":    user.Response(),
	})
}

// UpdateProfile cambia nombre y email; los diagnósticos siguen al nuevo email
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req models.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeProfileUpdate, "Invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	email := models.NormalizeEmail(req.Email)
	if name == "" || email == "" {
		return fail(c, fiber.StatusBadRequest, codeProfileUpdate, "Name and email are required")
	}
	if !emailPattern.MatchString(email) {
		return fail(c, fiber.StatusBadRequest, codeProfileUpdate, "Invalid email format")
	}

	ctx := c.UserContext()
	userID := middleware.UserID(c)
	current, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, codeProfileUpdate, "User not found")
		}
		h.logger.Error("loading profile", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeProfileUpdate, "Internal server error")
	}
	if current.Name == name && current.Email == email {
		return fail(c, fiber.StatusBadRequest, codeProfileUpdate, "No changes were made")
	}

	if email != current.Email {
		other, err := h.users.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			h.logger.Error("checking email", "error", err)
			return fail(c, fiber.StatusInternalServerError, codeProfileUpdate, "Internal server error")
		}
		if other != nil && other.ID != userID {
			return fail(c, fiber.StatusConflict, codeProfileUpdate, "Email already exists")
		}
	}

	updated, err := h.users.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return fail(c, fiber.StatusConflict, codeProfileUpdate, "Email already exists")
		}
		h.logger.Error("updating profile", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeProfileUpdate, "Internal server error")
	}
	h.sessions.DeleteProfile(ctx, userID)

	h.event(models.LogLevelInfo, "profile updated", updated.Email, map[string]interface{}{
		"email_changed": email != current.Email,
	})
	return respond(c, fiber.StatusOK, codeProfileUpdate, fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    updated.Response(),
	})
}
