package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/middleware"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
	activityStatsPeriod  = 24 * time.Hour
)

// GetActivity lista las peticiones y eventos de auditoría del usuario, con filtros opcionales
func (h *Handler) GetActivity(c *fiber.Ctx) error {
	if h.activity == nil {
		return fail(c, fiber.StatusServiceUnavailable, codeActivity, "Activity log not available")
	}

	// Parámetros de paginación
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultActivityLimit)))
	if limit < 1 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	filter := database.LogFilter{
		Email:  middleware.UserEmail(c),
		Level:  c.Query("log_level"),
		Method: c.Query("method"),
		Path:   c.Query("path"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, codeActivity, "from must be YYYY-MM-DD")
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, codeActivity, "to must be YYYY-MM-DD")
		}
		// incluye todo el día
		filter.To = t.Add(24 * time.Hour)
	}

	logs, total, err := h.activity.List(c.UserContext(), filter)
	if err != nil {
		h.logger.Error("listing activity", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeActivity, "Internal server error")
	}

	return respond(c, fiber.StatusOK, codeActivity, fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetActivityStats resume la actividad del usuario en las últimas 24 horas
func (h *Handler) GetActivityStats(c *fiber.Ctx) error {
	if h.activity == nil {
		return fail(c, fiber.StatusServiceUnavailable, codeActivityStats, "Activity log not available")
	}

	since := time.Now().UTC().Add(-activityStatsPeriod)
	stats, err := h.activity.Stats(c.UserContext(), middleware.UserEmail(c), since)
	if err != nil {
		h.logger.Error("activity stats", "error", err)
		return fail(c, fiber.StatusInternalServerError, codeActivityStats, "Internal server error")
	}

	return respond(c, fiber.StatusOK, codeActivityStats, fiber.Map{
		"stats":  stats,
		"period": "24 hours",
	})
}
