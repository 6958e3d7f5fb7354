// Package breaker provides a circuit-breaking Generator decorator.
//
// When the wrapped generator keeps failing the breaker opens and calls fail
// fast with domain.ErrGenerationUnavailable, so the orchestrator falls back
// to a context-only answer instead of waiting on a dead model every query.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure Generator implements the interface.
var _ driven.Generator = (*Generator)(nil)

// Config tunes the breaker.
type Config struct {
	// ConsecutiveFailures opens the breaker (default: 3).
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing (default: 30s).
	OpenTimeout time.Duration
}

// Generator guards an inner generator with a circuit breaker.
type Generator struct {
	inner driven.Generator
	cb    *gobreaker.CircuitBreaker
}

// Wrap decorates inner with a circuit breaker.
func Wrap(inner driven.Generator, cfg Config) *Generator {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 3
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "generator:" + inner.ModelName(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Cancellation is the caller's doing, not a model failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &Generator{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Generate calls the inner generator unless the breaker is open.
func (g *Generator) Generate(ctx context.Context, prompt, retrieved string) (string, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.Generate(ctx, prompt, retrieved)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *Generator) State() string {
	return g.cb.State().String()
}

// ModelName returns the inner model name.
func (g *Generator) ModelName() string {
	return g.inner.ModelName()
}

// Ping checks the inner generator.
func (g *Generator) Ping(ctx context.Context) error {
	return g.inner.Ping(ctx)
}

// Close closes the inner generator.
func (g *Generator) Close() error {
	return g.inner.Close()
}
