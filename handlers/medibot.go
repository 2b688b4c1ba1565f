package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/lizet96/medibot-backend/consultation"
	"github.com/lizet96/medibot-backend/middleware"
	"github.com/lizet96/medibot-backend/models"
	"github.com/lizet96/medibot-backend/storage"
)

// Process recibe audio e imagen (multipart) y devuelve la consulta completa
func (h *Handler) Process(c *fiber.Ctx) error {
	audio, err := readUpload(c, "audio")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, codeProcess, "Audio file is required")
	}
	image, err := readUpload(c, "image")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, codeProcess, "Image file is required")
	}

	email := middleware.UserEmail(c)
	result, err := h.consultations.Process(c.UserContext(), email, audio, image)
	if err != nil {
		return h.consultationError(c, codeProcess, err)
	}

	h.event(models.LogLevelSuccess, "consultation processed", email, map[string]interface{}{
		"diagnosis_id":         result.DiagnosisID,
		"transcription_source": result.TranscriptionSource,
		"analysis_source":      result.AnalysisSource,
		"speech_source":        result.SpeechSource,
	})

	body := fiber.Map{
		"success":              true,
		"message":              result.Message,
		"diagnosis_id":         result.DiagnosisID,
		"transcription":        result.Transcription,
		"doctor_response":      result.DoctorResponse,
		"image_url":            result.ImageURL,
		"transcription_source": result.TranscriptionSource,
		"analysis_source":      result.AnalysisSource,
		"speech_source":        result.SpeechSource,
	}
	if result.AudioURL != "" {
		body["audio_url"] = result.AudioURL
	}
	return respond(c, fiber.StatusOK, codeProcess, body)
}

func readUpload(c *fiber.Ctx, field string) (consultation.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return consultation.Upload{}, err
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return consultation.Upload{}, err
	}
	if len(data) == 0 {
		return consultation.Upload{}, consultation.ErrMissingUpload
	}
	return consultation.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// GetHistory lista los diagnósticos del usuario, el más reciente primero
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	records, err := h.consultations.History(c.UserContext(), middleware.UserEmail(c))
	if err != nil {
		return h.consultationError(c, codeHistory, err)
	}
	return respond(c, fiber.StatusOK, codeHistory, fiber.Map{
		"success": true,
		"history": records,
	})
}

// CreateHistory guarda un registro manual
func (h *Handler) CreateHistory(c *fiber.Ctx) error {
	var req models.DiagnosisCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeHistoryCreate, "Invalid request body")
	}

	email := middleware.UserEmail(c)
	d, err := h.consultations.Create(c.UserContext(), email, req)
	if err != nil {
		return h.consultationError(c, codeHistoryCreate, err)
	}

	h.event(models.LogLevelInfo, "diagnosis created", email, map[string]interface{}{"diagnosis_id": d.ID})
	return respond(c, fiber.StatusCreated, codeHistoryCreate, fiber.Map{
		"success": true,
		"message": "Diagnosis created successfully",
		"id":      d.ID,
	})
}

func (h *Handler) UpdateHistory(c *fiber.Ctx) error {
	var req models.DiagnosisUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, codeHistoryUpdate, "Invalid request body")
	}

	email := middleware.UserEmail(c)
	d, err := h.consultations.Update(c.UserContext(), email, c.Params("id"), req)
	if err != nil {
		return h.consultationError(c, codeHistoryUpdate, err)
	}

	h.event(models.LogLevelInfo, "diagnosis updated", email, map[string]interface{}{"diagnosis_id": d.ID})
	return respond(c, fiber.StatusOK, codeHistoryUpdate, fiber.Map{
		"success": true,
		"message": "Diagnosis updated successfully",
		"record":  d.HistoryRecord(),
	})
}

func (h *Handler) DeleteHistory(c *fiber.Ctx) error {
	email := middleware.UserEmail(c)
	id := c.Params("id")
	if err := h.consultations.Delete(c.UserContext(), email, id); err != nil {
		return h.consultationError(c, codeHistoryDelete, err)
	}

	h.event(models.LogLevelInfo, "diagnosis deleted", email, map[string]interface{}{"diagnosis_id": id})
	return respond(c, fiber.StatusOK, codeHistoryDelete, fiber.Map{
		"success": true,
		"message": "Diagnosis deleted successfully",
	})
}

// consultationError traduce errores del servicio a respuestas HTTP
func (h *Handler) consultationError(c *fiber.Ctx, code string, err error) error {
	switch {
	case errors.Is(err, consultation.ErrInvalidID), errors.Is(err, storage.ErrInvalidID):
		return fail(c, fiber.StatusBadRequest, code, "Invalid ID")
	case errors.Is(err, consultation.ErrNotFound), errors.Is(err, storage.ErrNoObject):
		return fail(c, fiber.StatusNotFound, code, "Not found or not authorized")
	case errors.Is(err, consultation.ErrMissingUpload),
		errors.Is(err, consultation.ErrEmptyRecord),
		errors.Is(err, consultation.ErrEmptyUpdate),
		errors.Is(err, consultation.ErrNoChanges):
		return fail(c, fiber.StatusBadRequest, code, capitalize(err.Error()))
	default:
		h.logger.Error("request failed", "path", c.Path(), "error", err)
		return fail(c, fiber.StatusInternalServerError, code, "Internal server error")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
