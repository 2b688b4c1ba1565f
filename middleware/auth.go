package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lizet96/medibot-backend/models"
)

// Claims personalizados para el JWT. Subject lleva el email y ID el jti.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// UserLookup busca al usuario dueño del token
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TokenCache guarda tokens revocados y perfiles recientes
type TokenCache interface {
	IsRevoked(ctx context.Context, jti string) bool
	GetProfile(ctx context.Context, userID string) (*models.User, bool)
	SetProfile(ctx context.Context, user *models.User)
}

// Llaves de c.Locals
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserName  = "user_name"
	LocalTokenID   = "token_id"
	LocalTokenExp  = "token_exp"
)

// GenerateJWT firma un token HS256 para el usuario. Devuelve el token y su jti.
func GenerateJWT(secret []byte, user *models.User, ttl time.Duration) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ParseJWT valida firma, algoritmo y expiración
func ParseJWT(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JWTMiddleware valida el bearer token (o ?token= en GET para los archivos
// que el navegador carga directo) y deja al usuario en el contexto.
func JWTMiddleware(secret []byte, users UserLookup, cache TokenCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := extractToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		ctx := c.UserContext()
		if cache != nil && cache.IsRevoked(ctx, claims.ID) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Token has been revoked",
			})
		}

		user, err := lookupUser(ctx, users, cache, claims.UserID)
		if err != nil || user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserEmail, user.Email)
		c.Locals(LocalUserName, user.Name)
		c.Locals(LocalTokenID, claims.ID)
		c.Locals(LocalTokenExp, claims.ExpiresAt.Time)

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (string, bool) {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return "", false
		}
		return tokenString, true
	}
	if c.Method() == fiber.MethodGet {
		if q := c.Query("token"); q != "" {
			return q, true
		}
	}
	return "", false
}

func lookupUser(ctx context.Context, users UserLookup, cache TokenCache, id string) (*models.User, error) {
	if cache != nil {
		if u, ok := cache.GetProfile(ctx, id); ok {
			return u, nil
		}
	}
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.SetProfile(ctx, u)
	}
	return u, nil
}

// UserID devuelve el id del usuario autenticado
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// UserEmail devuelve el email del usuario autenticado
func UserEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(LocalUserEmail).(string)
	return email
}

// TokenID devuelve el jti del token de la petición y cuándo expira
func TokenID(c *fiber.Ctx) (string, time.Time) {
	jti, _ := c.Locals(LocalTokenID).(string)
	exp, _ := c.Locals(LocalTokenExp).(time.Time)
	return jti, exp
}
