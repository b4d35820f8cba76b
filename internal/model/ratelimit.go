package model

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/go-smol/smolagents/internal/chatmsg"
)

// RateLimited wraps a Provider with a per-model minimum-interval throttle:
// the time between consecutive calls is at least 60/requestsPerMinute
// seconds (§5). The first call never sleeps — golang.org/x/time/rate's
// token bucket starts full.
type RateLimited struct {
	Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps p so that calls are spaced at least 60/rpm seconds
// apart. rpm <= 0 disables limiting (returns p unwrapped).
func NewRateLimited(p Provider, rpm float64) Provider {
	if rpm <= 0 {
		return p
	}
	// Burst of 1: exactly one call may proceed immediately, every
	// subsequent call waits for the next token at the configured rate.
	limiter := rate.NewLimiter(rate.Limit(rpm/60.0), 1)
	return &RateLimited{Provider: p, limiter: limiter}
}

func (r *RateLimited) Generate(ctx context.Context, messages []chatmsg.Message, opts GenerateOptions) (chatmsg.Message, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return chatmsg.Message{}, err
	}
	return r.Provider.Generate(ctx, messages, opts)
}

func (r *RateLimited) GenerateStream(ctx context.Context, messages []chatmsg.Message, opts GenerateOptions) (<-chan chatmsg.StreamDelta, <-chan error) {
	if err := r.limiter.Wait(ctx); err != nil {
		errCh := make(chan error, 1)
		errCh <- err
		close(errCh)
		deltaCh := make(chan chatmsg.StreamDelta)
		close(deltaCh)
		return deltaCh, errCh
	}
	return r.Provider.GenerateStream(ctx, messages, opts)
}
