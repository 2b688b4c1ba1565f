package vision

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Result struct {
	Text   string
	Source string
}

// Chain prueba los analizadores en orden y termina en Placeholder
type Chain struct {
	providers []Analyzer
	timeout   time.Duration
	logger    *slog.Logger
}

func NewChain(logger *slog.Logger, timeout time.Duration, providers ...Analyzer) *Chain {
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

func (c *Chain) Analyze(ctx context.Context, prompt string, image []byte, mimeType string) Result {
	if len(image) == 0 {
		c.logger.Warn("empty image upload, using placeholder analysis")
		return Result{Text: Placeholder, Source: SourcePlaceholder}
	}

	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		text, err := c.try(ctx, p, prompt, image, mimeType)
		switch {
		case errors.Is(err, ErrNotConfigured):
			c.logger.Debug("vision provider skipped", "provider", p.Name())
		case err != nil:
			c.logger.Warn("vision provider failed", "provider", p.Name(), "error", err)
		case text == "":
			c.logger.Warn("vision provider returned empty text", "provider", p.Name())
		default:
			c.logger.Info("image analyzed", "provider", p.Name(), "chars", len(text))
			return Result{Text: text, Source: p.Name()}
		}
	}

	c.logger.Warn("all vision providers failed, using placeholder analysis")
	return Result{Text: Placeholder, Source: SourcePlaceholder}
}

func (c *Chain) try(ctx context.Context, p Analyzer, prompt string, image []byte, mimeType string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Analyze(ctx, prompt, image, mimeType)
}
