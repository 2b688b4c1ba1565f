package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/medibot-backend/middleware"
)

// GetImage sirve la imagen original de un diagnóstico del usuario
func (h *Handler) GetImage(c *fiber.Ctx) error {
	return h.serveMedia(c, codeImage, "application/octet-stream")
}

// GetAudio sirve el audio sintetizado (o el original) de un diagnóstico del usuario
func (h *Handler) GetAudio(c *fiber.Ctx) error {
	return h.serveMedia(c, codeAudio, "audio/mpeg")
}

func (h *Handler) serveMedia(c *fiber.Ctx, code, fallbackType string) error {
	obj, err := h.consultations.Media(c.UserContext(), middleware.UserEmail(c), c.Params("id"))
	if err != nil {
		return h.consultationError(c, code, err)
	}

	contentType := obj.ContentType
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") || strings.HasPrefix(contentType, "text/plain") {
		contentType = fallbackType
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Status(fiber.StatusOK).Send(obj.Data)
}
