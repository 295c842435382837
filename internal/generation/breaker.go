package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerModel stops calling a failing model for a cool-down period.
// It never retries: each Complete is at most one call to the wrapped model.
type BreakerModel struct {
	model Model
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerModel wraps model in a circuit breaker that opens after
// maxFailures consecutive failures and half-opens after timeout
func NewBreakerModel(model Model, maxFailures uint32, timeout time.Duration) *BreakerModel {
	if maxFailures == 0 {
		maxFailures = DefaultModelConfig().BreakerMaxFailures
	}
	if timeout <= 0 {
		timeout = DefaultModelConfig().BreakerTimeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        model.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the provider
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerModel{model: model, cb: cb}
}

// Name returns the wrapped provider name
func (b *BreakerModel) Name() string {
	return b.model.Name()
}

// State returns the breaker state
func (b *BreakerModel) State() gobreaker.State {
	return b.cb.State()
}

// Complete calls the wrapped model unless the breaker is open
func (b *BreakerModel) Complete(ctx context.Context, req *Request) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.model.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%s temporarily unavailable: %w", b.model.Name(), err)
		}
		return "", err
	}
	return result.(string), nil
}
