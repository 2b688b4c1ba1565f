// Package tts convierte la respuesta del doctor en audio probando varios
// proveedores en orden. Si todos fallan se genera un aviso sonoro local.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/lizet96/medibot-backend/ai/httpx"
)

var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrThrottled     = errors.New("provider throttled")
	// ErrTooSmall se devuelve cuando la respuesta no parece audio real
	ErrTooSmall = errors.New("audio response too small")
)

// MinAudioBytes es el tamaño mínimo para aceptar la respuesta de un proveedor
const MinAudioBytes = 1000

type Audio struct {
	Data        []byte
	ContentType string
}

// Ext devuelve la extensión de archivo según el content type
func (a Audio) Ext() string {
	switch {
	case strings.Contains(a.ContentType, "wav"):
		return ".wav"
	case strings.Contains(a.ContentType, "flac"):
		return ".flac"
	case strings.Contains(a.ContentType, "ogg"):
		return ".ogg"
	default:
		return ".mp3"
	}
}

type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string) (Audio, error)
}

// truncate recorta a max runas dejando "..." al final
func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-3]) + "..."
}

// clip recorta sin agregar sufijo
func clip(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}

// readAudio aplica la regla de aceptación: status 200 y más de MinAudioBytes
func readAudio(provider string, resp *http.Response, fallbackType string) (Audio, error) {
	if resp.StatusCode != http.StatusOK {
		return Audio{}, httpx.NewStatusError(provider, resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return Audio{}, fmt.Errorf("reading %s audio: %w", provider, err)
	}
	if len(data) <= MinAudioBytes {
		return Audio{}, fmt.Errorf("%s: %w (%d bytes)", provider, ErrTooSmall, len(data))
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		contentType = fallbackType
	}
	return Audio{Data: data, ContentType: contentType}, nil
}
