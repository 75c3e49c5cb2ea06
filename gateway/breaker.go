package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/config"
)

// Breaker guards a Gateway with a circuit breaker. Gateway rejections (4xx)
// do not count as failures; transport errors and 5xx responses do.
type Breaker struct {
	next    Gateway
	breaker *gobreaker.CircuitBreaker[any]
}

var _ Gateway = (*Breaker)(nil)

// WithBreaker wraps next. It returns next unchanged when the breaker is disabled.
func WithBreaker(next Gateway, cfg config.BreakerConfig, logger *zap.Logger) Gateway {
	if !cfg.Enabled {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "omise",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("gateway circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Breaker{next: next, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

func execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.breaker.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &Error{Code: CodeServiceUnavailable, Message: "payment gateway temporarily unavailable"}
		}
		return zero, err
	}
	return res.(T), nil
}

func (b *Breaker) CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	return execute(b, func() (*Charge, error) { return b.next.CreateCharge(ctx, params) })
}

func (b *Breaker) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	return execute(b, func() (*Charge, error) { return b.next.RetrieveCharge(ctx, chargeID) })
}

func (b *Breaker) CaptureCharge(ctx context.Context, chargeID string, params CaptureParams) (*Charge, error) {
	return execute(b, func() (*Charge, error) { return b.next.CaptureCharge(ctx, chargeID, params) })
}

func (b *Breaker) ReverseCharge(ctx context.Context, chargeID string) (*Charge, error) {
	return execute(b, func() (*Charge, error) { return b.next.ReverseCharge(ctx, chargeID) })
}

func (b *Breaker) RefundCharge(ctx context.Context, chargeID string, params RefundParams) (*Refund, error) {
	return execute(b, func() (*Refund, error) { return b.next.RefundCharge(ctx, chargeID, params) })
}

func (b *Breaker) CreateSource(ctx context.Context, params SourceParams) (*Source, error) {
	return execute(b, func() (*Source, error) { return b.next.CreateSource(ctx, params) })
}

func (b *Breaker) CreateToken(ctx context.Context, params TokenParams) (*Token, error) {
	return execute(b, func() (*Token, error) { return b.next.CreateToken(ctx, params) })
}
