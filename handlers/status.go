package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (h *Handler) APIStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "operational",
		"version":     Version,
		"environment": h.environment,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound responde a rutas inexistentes
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(StandardResponse{
		StatusCode: fiber.StatusNotFound,
		Body: BodyResponse{
			IntCode: "F404",
			Data: []interface{}{fiber.Map{
				"error":  "Route not found",
				"path":   c.Path(),
				"method": c.Method(),
			}},
		},
	})
}

// ErrorHandler formatea los errores que llegan a Fiber sin respuesta propia
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(StandardResponse{
		StatusCode: code,
		Body: BodyResponse{
			IntCode: "F" + strconv.Itoa(code),
			Data:    []interface{}{fiber.Map{"error": message}},
		},
	})
}
