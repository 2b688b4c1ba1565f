package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig configuración para rate limiting
type RateLimitConfig struct {
	Max        int           // Número máximo de requests
	Expiration time.Duration // Ventana de tiempo
	Message    string
	// PerUser usa el id del usuario autenticado como clave en vez de la IP
	PerUser bool
}

// DefaultRateLimit aplica a toda la API
var DefaultRateLimit = RateLimitConfig{
	Max:        300,
	Expiration: 15 * time.Minute,
	Message:    "Too many requests, try again later",
}

// ProcessRateLimit protege /medibot/process, que llama a proveedores de IA pagados
var ProcessRateLimit = RateLimitConfig{
	Max:        10,
	Expiration: 15 * time.Minute,
	Message:    "Consultation limit reached, try again later",
	PerUser:    true,
}

// AuthRateLimit para signup y login
var AuthRateLimit = RateLimitConfig{
	Max:        20,
	Expiration: 30 * time.Minute,
	Message:    "Too many authentication attempts, try again later",
}

// CreateRateLimiter crea un middleware de rate limiting con la configuración especificada
func CreateRateLimiter(config RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.Max,
		Expiration: config.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if config.PerUser {
				if id := UserID(c); id != "" {
					return "user:" + id
				}
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       true,
				"message":     config.Message,
				"retry_after": int(config.Expiration.Seconds()),
			})
		},
	})
}

func DefaultRateLimiter() fiber.Handler {
	return CreateRateLimiter(DefaultRateLimit)
}

func ProcessRateLimiter() fiber.Handler {
	return CreateRateLimiter(ProcessRateLimit)
}

func AuthRateLimiter() fiber.Handler {
	return CreateRateLimiter(AuthRateLimit)
}

// BodySizeLimit limita el cuerpo de las rutas JSON; las cargas multipart usan el BodyLimit global de Fiber
func BodySizeLimit(maxSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > maxSize {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error":    true,
				"message":  "Request body exceeds the allowed size",
				"max_size": maxSize,
			})
		}
		return c.Next()
	}
}

// SecurityHeaders middleware para agregar headers de seguridad
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		return c.Next()
	}
}
