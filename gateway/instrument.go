package gateway

import (
	"context"
	"time"

	"github.com/a2n2k3p4/omise-payments/metrics"
)

// Instrumented records the outcome and latency of every call on the wrapped Gateway.
type Instrumented struct {
	next    Gateway
	metrics *metrics.Metrics
}

var _ Gateway = (*Instrumented)(nil)

// Instrument wraps next. A nil m returns next unchanged.
func Instrument(next Gateway, m *metrics.Metrics) Gateway {
	if m == nil {
		return next
	}
	return &Instrumented{next: next, metrics: m}
}

func (g *Instrumented) observe(operation string, start time.Time, err error) {
	g.metrics.RecordGatewayRequest(operation, err == nil, time.Since(start))
}

func (g *Instrumented) CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	start := time.Now()
	ch, err := g.next.CreateCharge(ctx, params)
	g.observe("create_charge", start, err)
	return ch, err
}

func (g *Instrumented) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	start := time.Now()
	ch, err := g.next.RetrieveCharge(ctx, chargeID)
	g.observe("retrieve_charge", start, err)
	return ch, err
}

func (g *Instrumented) CaptureCharge(ctx context.Context, chargeID string, params CaptureParams) (*Charge, error) {
	start := time.Now()
	ch, err := g.next.CaptureCharge(ctx, chargeID, params)
	g.observe("capture_charge", start, err)
	return ch, err
}

func (g *Instrumented) ReverseCharge(ctx context.Context, chargeID string) (*Charge, error) {
	start := time.Now()
	ch, err := g.next.ReverseCharge(ctx, chargeID)
	g.observe("reverse_charge", start, err)
	return ch, err
}

func (g *Instrumented) RefundCharge(ctx context.Context, chargeID string, params RefundParams) (*Refund, error) {
	start := time.Now()
	rf, err := g.next.RefundCharge(ctx, chargeID, params)
	g.observe("refund_charge", start, err)
	return rf, err
}

func (g *Instrumented) CreateSource(ctx context.Context, params SourceParams) (*Source, error) {
	start := time.Now()
	src, err := g.next.CreateSource(ctx, params)
	g.observe("create_source", start, err)
	return src, err
}

func (g *Instrumented) CreateToken(ctx context.Context, params TokenParams) (*Token, error) {
	start := time.Now()
	tok, err := g.next.CreateToken(ctx, params)
	g.observe("create_token", start, err)
	return tok, err
}
