package model

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/go-smol/smolagents/internal/agenterr"
	"github.com/go-smol/smolagents/internal/chatmsg"
)

var rateLimitPattern = regexp.MustCompile(`(?i)rate limit|too many requests`)

// httpStatuser is implemented by HTTP client errors that expose their
// status code through an HTTPStatusCode method — kept generic here so this
// package doesn't import any one vendor's error type. Errors that do not
// implement it are classified by their message alone.
type httpStatuser interface {
	HTTPStatusCode() int
}

// isRateLimited reports whether err looks like a rate-limit rejection:
// HTTP 429, or a message matching "rate limit|too many requests" (§7).
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var hs httpStatuser
	if errors.As(err, &hs) && hs.HTTPStatusCode() == http.StatusTooManyRequests {
		return true
	}
	return rateLimitPattern.MatchString(err.Error())
}

// RetryConfig parameterizes the exponential-backoff retry policy.
type RetryConfig struct {
	MaxAttempts     int     // default 3
	WaitSeconds     float64 // base delay, default 2
	ExponentialBase float64 // default 2
	JitterFraction  float64 // default 0.1 (±10%)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.WaitSeconds <= 0 {
		c.WaitSeconds = 2
	}
	if c.ExponentialBase <= 0 {
		c.ExponentialBase = 2
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = 0.1
	}
	return c
}

// delay computes wait_seconds * exponential_base^attempt * (1 + jitter)
// per §7's retry formula, attempt being zero-indexed.
func (c RetryConfig) delay(attempt int) time.Duration {
	base := c.WaitSeconds
	for i := 0; i < attempt; i++ {
		base *= c.ExponentialBase
	}
	jitter := 1 + (rand.Float64()*2-1)*c.JitterFraction
	return time.Duration(base * jitter * float64(time.Second))
}

// Retrying wraps a Provider so that rate-limit-like generation errors are
// retried with exponential backoff up to MaxAttempts; any other error, or
// exhaustion, is wrapped as a fatal GenerationError (§7: "GenerationError
// is fatal after internal retry exhaustion").
type Retrying struct {
	Provider
	cfg RetryConfig
	log *zap.SugaredLogger
}

// NewRetrying wraps p with cfg's backoff policy. A nil logger discards
// retry log lines.
func NewRetrying(p Provider, cfg RetryConfig, log *zap.SugaredLogger) Provider {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Retrying{Provider: p, cfg: cfg.withDefaults(), log: log}
}

func (r *Retrying) Generate(ctx context.Context, messages []chatmsg.Message, opts GenerateOptions) (chatmsg.Message, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		msg, err := r.Provider.Generate(ctx, messages, opts)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return chatmsg.Message{}, agenterr.WrapGenerationError(err, "model call failed")
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}
		wait := r.cfg.delay(attempt)
		r.log.Warnw("rate limited, retrying", "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return chatmsg.Message{}, ctx.Err()
		}
	}
	return chatmsg.Message{}, agenterr.WrapGenerationError(lastErr, "model call exhausted retries")
}
