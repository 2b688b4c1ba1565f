package tts

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled limita las llamadas a un proveedor. Sin token disponible el
// proveedor se salta en lugar de esperar.
type Throttled struct {
	inner   Synthesizer
	limiter *rate.Limiter
}

func NewThrottled(inner Synthesizer, limiter *rate.Limiter) *Throttled {
	return &Throttled{inner: inner, limiter: limiter}
}

func (t *Throttled) Name() string { return t.inner.Name() }

func (t *Throttled) Synthesize(ctx context.Context, text string) (Audio, error) {
	if !t.limiter.Allow() {
		return Audio{}, ErrThrottled
	}
	return t.inner.Synthesize(ctx, text)
}
