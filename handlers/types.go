package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type BodyResponse struct {
	IntCode string        `json:"intCode"`
	Data    []interface{} `json:"data"`
}

type StandardResponse struct {
	StatusCode int          `json:"statusCode"`
	Body       BodyResponse `json:"body"`
}

// Códigos de respuesta por endpoint. S = éxito, F = falla.
const (
	codeSignup        = "01"
	codeLogin         = "02"
	codeLogout        = "03"
	codeProfile       = "04"
	codeProfileUpdate = "05"
	codeMFASetup      = "06"
	codeMFAVerify     = "07"
	codeMFADisable    = "08"
	codeProcess       = "10"
	codeHistory       = "11"
	codeHistoryCreate = "12"
	codeHistoryUpdate = "13"
	codeHistoryDelete = "14"
	codeImage         = "15"
	codeAudio         = "16"
	codeActivity      = "20"
	codeActivityStats = "21"
)

func respond(c *fiber.Ctx, status int, code string, data fiber.Map) error {
	return c.Status(status).JSON(StandardResponse{
		StatusCode: status,
		Body: BodyResponse{
			IntCode: "S" + code,
			Data:    []interface{}{data},
		},
	})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return failWith(c, status, code, fiber.Map{"error": message})
}

func failWith(c *fiber.Ctx, status int, code string, data fiber.Map) error {
	return c.Status(status).JSON(StandardResponse{
		StatusCode: status,
		Body: BodyResponse{
			IntCode: "F" + code,
			Data:    []interface{}{data},
		},
	})
}
