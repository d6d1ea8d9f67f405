package services

import (
	"fmt"

	"github.com/sony/gobreaker/v2"

	"skillvet/internal/config"
	"skillvet/internal/errors"
)

// Breaker wraps one collaborator operation with circuit breaker protection.
// A nil Breaker executes calls directly, which is how a disabled breaker is
// represented.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewBreaker creates a circuit breaker for the named operation, or nil when
// the configuration disables it.
func NewBreaker[T any](operation string, cfg *config.CircuitBreakerConfig, logger *errors.Logger) *Breaker[T] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("service-%s", operation),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation", operation,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn with circuit breaker protection.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// Stats returns circuit breaker statistics for the stats endpoint.
func (b *Breaker[T]) Stats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true while the breaker is closed or absent.
func (b *Breaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
