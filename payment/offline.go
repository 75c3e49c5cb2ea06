package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// Status is the current state of a charge awaiting offline completion.
type Status struct {
	ChargeID      string          `json:"charge_id"`
	Status        string          `json:"status"`
	Paid          bool            `json:"paid"`
	Successful    bool            `json:"successful"`
	Failed        bool            `json:"failed"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
}

// PollingConfig tells callers how to poll for completion. It is not run here.
type PollingConfig struct {
	Enabled         bool   `json:"enabled"`
	IntervalSeconds int    `json:"interval_seconds"`
	MaxAttempts     int    `json:"max_attempts"`
	TimeoutAction   string `json:"timeout_action"`
}

// OfflinePolicy holds the decisions specific to offline methods.
type OfflinePolicy struct {
	ExpiresInMinutes func() int
	Polling          PollingConfig
	Instructions     func(rec *Payment, details Details) *Instructions
}

// OfflineProcessor handles payments completed by the payer outside the application.
type OfflineProcessor struct {
	*processor
	offPolicy OfflinePolicy
}

// NewOfflineProcessor builds a processor completed by the payer out of band.
func NewOfflineProcessor(policy Policy, offline OfflinePolicy, deps Deps) *OfflineProcessor {
	p := &OfflineProcessor{processor: newProcessor(policy, true, deps), offPolicy: offline}
	p.decorate = p.augment
	return p
}

// ExpiresInMinutes returns how long the payer has to complete the payment.
func (p *OfflineProcessor) ExpiresInMinutes() int {
	if p.offPolicy.ExpiresInMinutes == nil {
		return 15
	}
	return p.offPolicy.ExpiresInMinutes()
}

// PollingConfig returns the polling contract for this method.
func (p *OfflineProcessor) PollingConfig() PollingConfig {
	return p.offPolicy.Polling
}

func (p *OfflineProcessor) augment(rec *Payment, _ *gateway.Charge, details Details) {
	rec.IsOffline = true
	rec.NextStep = "await_user_action"
	rec.Offline = &Offline{
		RequiresUserAction:         true,
		ExpiresInMinutes:           p.ExpiresInMinutes(),
		RequiresManualConfirmation: true,
	}
	if p.offPolicy.Instructions != nil {
		rec.Instructions = p.offPolicy.Instructions(rec, details)
	}
}

// CheckPaymentStatus fetches the charge and reports its state.
func (p *OfflineProcessor) CheckPaymentStatus(ctx context.Context, chargeID string) (s *Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("status check panicked", zap.Any("panic", r))
			s, err = nil, &Failure{Code: CodeStatusCheckError, Message: fmt.Sprint(r), PaymentMethod: p.PaymentMethod()}
		}
	}()

	charge, err := p.retrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	return &Status{
		ChargeID:      charge.ID,
		Status:        charge.Status,
		Paid:          charge.IsPaid(),
		Successful:    charge.IsSuccessful(),
		Failed:        charge.IsFailed(),
		Amount:        charge.DisplayAmount(),
		Currency:      strings.ToUpper(charge.Currency),
		PaymentMethod: p.PaymentMethod(),
	}, nil
}
