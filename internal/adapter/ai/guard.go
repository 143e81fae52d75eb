// Package ai builds the configured oracle and guards it with a circuit
// breaker.
package ai

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
	"github.com/seu-repo/songorder/internal/ports"
	"github.com/seu-repo/songorder/pkg/config"
)

// Guard wraps an oracle with a circuit breaker. Every failure, including an
// open breaker, comes back as *domain.OracleTransportError so the dialog
// falls back instead of waiting on a provider that is down.
type Guard struct {
	oracle   ports.Oracle
	provider string
	cb       *gobreaker.CircuitBreaker
	log      *zap.Logger
}

func NewGuard(oracle ports.Oracle, provider string, cfg config.CircuitBreakerConfig, log *zap.Logger) *Guard {
	maxRequests := uint32(cfg.MaxRequests)
	if maxRequests == 0 {
		maxRequests = 3
	}
	threshold := cfg.FailureThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "oracle-" + provider,
		MaxRequests: maxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= maxRequests && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// a caller giving up is not a provider failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Guard{oracle: oracle, provider: provider, cb: cb, log: log}
}

// Extract clamps temperature to [0,1] before calling the provider.
func (g *Guard) Extract(ctx context.Context, prompt string, temperature float64) (string, error) {
	temperature = math.Min(math.Max(temperature, 0), 1)
	start := time.Now()
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.oracle.Extract(ctx, prompt, temperature)
	})
	if err != nil {
		g.log.Warn("Oracle call failed",
			zap.String("provider", g.provider),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", &domain.OracleTransportError{Provider: g.provider, Err: err}
	}
	return out.(string), nil
}

// State reports the breaker state for readiness checks.
func (g *Guard) State() gobreaker.State {
	return g.cb.State()
}
