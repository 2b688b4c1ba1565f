// Package storage guarda los binarios de cada consulta: audio del paciente,
// imagen y el audio sintetizado de la respuesta.
package storage

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNoObject  = errors.New("storage: no object")
	ErrInvalidID = errors.New("storage: invalid object id")
)

// Object es un blob leído del store
type Object struct {
	ID          string
	Data        []byte
	ContentType string
}

type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) (*Object, error)
	Delete(ctx context.Context, id string) error
}

// CheckID rechaza ids vacíos o el literal "none" que algunos clientes envían
func CheckID(id string) error {
	if id == "" || strings.EqualFold(id, "none") || strings.EqualFold(id, "null") {
		return ErrInvalidID
	}
	return nil
}

// DetectContentType identifica imágenes y audio por sus primeros bytes
func DetectContentType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("ID3")):
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// sincronía de frame MPEG
		return "audio/mpeg"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "audio/wav"
	}
	return http.DetectContentType(data)
}
