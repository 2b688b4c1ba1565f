package tts

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const SourceBeep = "beep"

type Result struct {
	Audio  Audio
	Source string
}

// Chain prueba los sintetizadores en orden. Nunca falla: el último recurso es Beep.
type Chain struct {
	providers []Synthesizer
	timeout   time.Duration
	logger    *slog.Logger
}

func NewChain(logger *slog.Logger, timeout time.Duration, providers ...Synthesizer) *Chain {
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

func (c *Chain) Synthesize(ctx context.Context, text string) Result {
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		audio, err := c.try(ctx, p, text)
		switch {
		case errors.Is(err, ErrNotConfigured):
			c.logger.Debug("tts provider skipped", "provider", p.Name())
		case errors.Is(err, ErrThrottled):
			c.logger.Info("tts provider throttled", "provider", p.Name())
		case err != nil:
			c.logger.Warn("tts provider failed", "provider", p.Name(), "error", err)
		default:
			c.logger.Info("speech synthesized", "provider", p.Name(), "bytes", len(audio.Data))
			return Result{Audio: audio, Source: p.Name()}
		}
	}

	c.logger.Warn("all tts providers failed, using notification beep")
	return Result{Audio: Audio{Data: Beep(), ContentType: "audio/wav"}, Source: SourceBeep}
}

func (c *Chain) try(ctx context.Context, p Synthesizer, text string) (Audio, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.Synthesize(ctx, text)
}
