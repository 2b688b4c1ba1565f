package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/lizet96/medibot-backend/middleware"
	"github.com/lizet96/medibot-backend/models"
)

// SetupMFA genera un secreto TOTP nuevo. Queda guardado pero inactivo hasta VerifyMFA.
func (h *Handler) SetupMFA(c *fiber.Ctx) error {
	var req models.MFASetupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeMFASetup, "Invalid request body")
	}

	ctx := c.UserContext()
	user, err := h.users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, codeMFASetup, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return fail(c, fiber.StatusForbidden, codeMFASetup, "Invalid credentials")
	}
	if user.MFAEnabled {
		return fail(c, fiber.StatusConflict, codeMFASetup, "MFA is already enabled")
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.mfaIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		h.logger.Error("generating totp secret", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeMFASetup, "Internal server error")
	}
	if err := h.users.SetMFA(ctx, user.ID, false, key.Secret()); err != nil {
		h.logger.Error("saving totp secret", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeMFASetup, "Internal server error")
	}

	return respond(c, fiber.StatusOK, codeMFASetup, fiber.Map{
		"success": true,
		"mfa": models.MFASetupResponse{
			Secret:     key.Secret(),
			OTPAuthURL: key.URL(),
		},
	})
}

// VerifyMFA activa MFA tras comprobar el primer código
func (h *Handler) VerifyMFA(c *fiber.Ctx) error {
	return h.toggleMFA(c, codeMFAVerify, true)
}

// DisableMFA desactiva MFA; requiere un código válido
func (h *Handler) DisableMFA(c *fiber.Ctx) error {
	return h.toggleMFA(c, codeMFADisable, false)
}

func (h *Handler) toggleMFA(c *fiber.Ctx, code string, enable bool) error {
	var req models.MFACodeRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return fail(c, fiber.StatusBadRequest, code, "MFA code is required")
	}

	ctx := c.UserContext()
	user, err := h.users.FindByID(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, code, "User not found")
	}
	if user.MFASecret == "" {
		return fail(c, fiber.StatusBadRequest, code, "MFA has not been set up")
	}
	if user.MFAEnabled == enable {
		return fail(c, fiber.StatusConflict, code, "MFA is already in that state")
	}
	if !totp.Validate(req.Code, user.MFASecret) {
		return fail(c, fiber.StatusUnauthorized, code, "Invalid MFA code")
	}

	secret := user.MFASecret
	if !enable {
		secret = ""
	}
	if err := h.users.SetMFA(ctx, user.ID, enable, secret); err != nil {
		h.logger.Error("updating mfa", "error", err)
		return fail(c, fiber.StatusInternalServerError, code, "Internal server error")
	}
	h.sessions.DeleteProfile(ctx, user.ID)

	message := "MFA disabled"
	if enable {
		message = "MFA enabled"
	}
	h.event(models.LogLevelInfo, message, user.Email, nil)
	return respond(c, fiber.StatusOK, code, fiber.Map{
		"success":     true,
		"message":     message,
		"mfa_enabled": enable,
	})
}
