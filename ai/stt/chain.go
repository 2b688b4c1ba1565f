package stt

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Placeholder es el texto que se usa cuando ningún proveedor pudo transcribir
const Placeholder = "I can hear your audio input. Please describe your medical symptoms and concerns in detail so I can provide better analysis."

const SourcePlaceholder = "placeholder"

type Result struct {
	Text   string
	Source string
}

// Chain prueba los proveedores en orden; el primero que devuelva texto gana.
type Chain struct {
	providers []Transcriber
	timeout   time.Duration
	logger    *slog.Logger
}

func NewChain(logger *slog.Logger, timeout time.Duration, providers ...Transcriber) *Chain {
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Transcribe nunca falla: en el peor caso devuelve Placeholder.
func (c *Chain) Transcribe(ctx context.Context, audio []byte, filename string) Result {
	if len(audio) == 0 {
		c.logger.Warn("empty audio upload, using placeholder transcription")
		return Result{Text: Placeholder, Source: SourcePlaceholder}
	}

	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		text, err := c.try(ctx, p, audio, filename)
		switch {
		case errors.Is(err, ErrNotConfigured):
			c.logger.Debug("stt provider skipped", "provider", p.Name())
		case err != nil:
			c.logger.Warn("stt provider failed", "provider", p.Name(), "error", err)
		case text == "":
			c.logger.Warn("stt provider returned empty text", "provider", p.Name())
		default:
			c.logger.Info("audio transcribed", "provider", p.Name(), "chars", len(text))
			return Result{Text: text, Source: p.Name()}
		}
	}

	c.logger.Warn("all stt providers failed, using placeholder transcription")
	return Result{Text: Placeholder, Source: SourcePlaceholder}
}

func (c *Chain) try(ctx context.Context, p Transcriber, audio []byte, filename string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Transcribe(ctx, audio, filename)
}
