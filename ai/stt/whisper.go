// Package stt transcribe el audio del paciente con proveedores externos y
// recurre a un texto fijo cuando ninguno responde.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/lizet96/medibot-backend/ai/httpx"
)

// ErrNotConfigured indica que el proveedor no tiene API key
var ErrNotConfigured = errors.New("provider not configured")

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// WhisperClient habla con cualquier endpoint /audio/transcriptions compatible con OpenAI (Groq, OpenAI).
type WhisperClient struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
	retry      httpx.RetryConfig
}

func NewWhisperClient(name, apiKey, baseURL, model, language string) *WhisperClient {
	return &WhisperClient{
		name:       name,
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		language:   language,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      httpx.NoRetry(),
	}
}

// WithRetry reemplaza la política de reintentos (por defecto un solo intento)
func (c *WhisperClient) WithRetry(cfg httpx.RetryConfig) *WhisperClient {
	c.retry = cfg
	return c
}

func (c *WhisperClient) Name() string { return c.name }

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if filename == "" {
		filename = "audio.mp3"
	}
	filename = filepath.Base(filename)

	var result transcriptionResponse
	err := httpx.WithRetry(ctx, c.retry, func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}
		if _, err = part.Write(audio); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}
		if err = writer.WriteField("model", c.model); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}
		if c.language != "" {
			if err = writer.WriteField("language", c.language); err != nil {
				return fmt.Errorf("writing language field: %w", err)
			}
		}
		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return httpx.NewStatusError(c.name, resp)
		}
		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result.Text), nil
}
