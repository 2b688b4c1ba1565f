package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lizet96/medibot-backend/handlers"
	"github.com/lizet96/medibot-backend/middleware"
)

// jsonBodyLimit aplica a las rutas que no reciben archivos
const jsonBodyLimit = 64 * 1024

type Deps struct {
	Handler       *handlers.Handler
	Auth          fiber.Handler
	RequestLogger *middleware.RequestLogger
	CORSOrigins   string
	// AccessLog activa el logger de consola de Fiber
	AccessLog bool
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(app *fiber.App, deps Deps) {
	h := deps.Handler

	// Middleware global
	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.ReplaceAll(deps.CORSOrigins, " ", ""),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.SecurityHeaders())
	if deps.RequestLogger != nil {
		app.Use(deps.RequestLogger.Handler())
	}
	app.Use(middleware.DefaultRateLimiter())

	// Salud del sistema
	app.Get("/health", h.Health)
	app.Get("/api/status", h.APIStatus)

	// === AUTENTICACIÓN ===
	auth := app.Group("/auth", middleware.BodySizeLimit(jsonBodyLimit))
	auth.Post("/signup", middleware.AuthRateLimiter(), h.Signup)
	auth.Post("/login", middleware.AuthRateLimiter(), h.Login)
	auth.Post("/logout", deps.Auth, h.Logout)
	auth.Get("/profile", deps.Auth, h.GetProfile)
	auth.Put("/profile", deps.Auth, h.UpdateProfile)
	auth.Get("/activity", deps.Auth, h.GetActivity)
	auth.Get("/activity/stats", deps.Auth, h.GetActivityStats)

	mfa := auth.Group("/mfa", deps.Auth)
	mfa.Post("/setup", h.SetupMFA)
	mfa.Post("/verify", h.VerifyMFA)
	mfa.Post("/disable", h.DisableMFA)

	// === MEDIBOT (requiere token) ===
	medibot := app.Group("/medibot", deps.Auth)
	medibot.Post("/process", middleware.ProcessRateLimiter(), h.Process)

	history := medibot.Group("/history", middleware.BodySizeLimit(jsonBodyLimit))
	history.Get("/", h.GetHistory)
	history.Post("/", h.CreateHistory)
	history.Put("/:id", h.UpdateHistory)
	history.Delete("/:id", h.DeleteHistory)

	medibot.Get("/image/:id", h.GetImage)
	medibot.Get("/audio/:id", h.GetAudio)

	// Rutas inexistentes
	app.Use(handlers.NotFound)
}
