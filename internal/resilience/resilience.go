// Package resilience provides the failure-handling primitives used around
// upstream calls:
//   - a bounded, fixed-delay retry loop that degrades to a fallback value
//   - a gobreaker-backed circuit breaker with state-change logging
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen indicates the circuit breaker rejected the call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of CircuitState
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateHalfOpen:
		return "HALF-OPEN"
	case StateOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

func mapState(state gobreaker.State) CircuitState {
	switch state {
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return StateClosed
	}
}

// CircuitBreakerConfig holds configuration for circuit breakers
type CircuitBreakerConfig struct {
	Name          string
	MaxFailures   int           // consecutive failures before opening
	OpenTimeout   time.Duration // how long to stay open before probing
	HalfOpenLimit int
}

// CircuitBreaker implements the circuit breaker pattern using gobreaker
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a new circuit breaker. Zero config values get defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Minute
	}
	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "circuit_breaker", "circuit", cfg.Name)

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: uint32(cfg.HalfOpenLimit),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				"from", mapState(from).String(),
				"to", mapState(to).String(),
			)
		},
	}

	return &CircuitBreaker{
		name: cfg.Name,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs an operation through the circuit breaker.
func (cb *CircuitBreaker) Execute(ctx context.Context, operation func(context.Context) error) error {
	_, err := cb.cb.Execute(func() (interface{}, error) {
		return nil, operation(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.name)
	}
	return err
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	return mapState(cb.cb.State())
}

// RetryPolicy bounds the retry loop. MaxAttempts counts retries after the
// first call, so a permanently failing operation runs MaxAttempts+1 times.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// WithRetry runs op, retrying after a constant delay on failure. Once retries
// are exhausted, or ctx is cancelled while waiting, it logs a terminal failure
// and returns fallback. Errors never propagate to the caller.
func WithRetry[T any](
	ctx context.Context,
	logger *slog.Logger,
	label string,
	policy RetryPolicy,
	fallback T,
	op func(context.Context) (T, error),
) T {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("operation", label)

	maxAttempts := max(policy.MaxAttempts, 0)
	var lastErr error

	for attempt := 0; attempt <= maxAttempts; attempt++ {
		if attempt > 0 {
			log.WarnContext(ctx, "Operation failed, retrying",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", policy.Delay,
				"error", lastErr,
			)

			timer := time.NewTimer(policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.ErrorContext(ctx, "Retry abandoned, using fallback", "attempt", attempt, "error", ctx.Err())
				return fallback
			case <-timer.C:
			}
		}

		result, err := op(ctx)
		if err == nil {
			if attempt > 0 {
				log.InfoContext(ctx, "Operation succeeded after retry", "attempt", attempt)
			}
			return result
		}
		lastErr = err
	}

	log.ErrorContext(ctx, "Operation failed after all retries, using fallback",
		"attempts", maxAttempts+1,
		"error", lastErr,
	)
	return fallback
}
