package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/money"
)

// Capture is the summary of a captured charge.
type Capture struct {
	Success        bool            `json:"success"`
	ChargeID       string          `json:"charge_id"`
	Status         string          `json:"status"`
	Captured       bool            `json:"captured"`
	CapturedAmount decimal.Decimal `json:"captured_amount"`
	Currency       string          `json:"currency"`
}

// OnlineProcessor settles payments within the request.
type OnlineProcessor struct {
	*processor
	autoCapture bool
}

// NewOnlineProcessor builds a processor settled within the request from policy.
func NewOnlineProcessor(policy Policy, autoCapture bool, deps Deps) *OnlineProcessor {
	p := &OnlineProcessor{processor: newProcessor(policy, false, deps), autoCapture: autoCapture}
	p.decorate = p.augment
	return p
}

// AutoCapture reports whether charges are captured on creation by default.
func (p *OnlineProcessor) AutoCapture() bool {
	return p.autoCapture
}

func (p *OnlineProcessor) augment(rec *Payment, charge *gateway.Charge, _ Details) {
	rec.IsOffline = false
	rec.Online = &Online{
		ProcessedImmediately: true,
		AutoCapture:          p.autoCapture,
		TransactionID:        charge.Transaction,
		Captured:             charge.Captured || (charge.Capture && charge.Paid),
		Authorized:           charge.Authorized,
	}
	if charge.Status == gateway.StatusPending && charge.AuthorizeURI != "" {
		rec.Requires3DS = true
		rec.AuthorizeURI = charge.AuthorizeURI
		rec.NextStep = "complete_3ds_authentication"
	}
}

// CapturePayment captures an authorized charge. A nil amount captures in full.
func (p *OnlineProcessor) CapturePayment(ctx context.Context, chargeID string, amount *decimal.Decimal) (c *Capture, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("capture panicked", zap.Any("panic", r))
			c, err = nil, &Failure{Code: CodeCaptureError, Message: fmt.Sprint(r), PaymentMethod: p.PaymentMethod()}
		}
	}()

	charge, err := p.retrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if !charge.IsAuthorized() {
		return nil, &Failure{Code: CodeNotAuthorized, Message: "Charge is not authorized for capture", PaymentMethod: p.PaymentMethod()}
	}

	var params gateway.CaptureParams
	if amount != nil {
		sub := money.ToSubunit(*amount, charge.Currency)
		if sub <= 0 || sub > charge.Amount {
			return nil, &Failure{
				Code:          CodeInvalidAmount,
				Message:       fmt.Sprintf("Capture amount must be greater than zero and at most %s", charge.DisplayAmount()),
				PaymentMethod: p.PaymentMethod(),
			}
		}
		if sub != charge.Amount {
			params.Amount = sub
		}
	}

	captured, err := p.gateway.CaptureCharge(ctx, chargeID, params)
	if err != nil {
		p.logGatewayError("capture charge", err)
		return nil, p.failure(gatewayCode(err, CodeCaptureError), err)
	}
	return &Capture{
		Success:        true,
		ChargeID:       captured.ID,
		Status:         captured.Status,
		Captured:       true,
		CapturedAmount: captured.DisplayAmount(),
		Currency:       strings.ToUpper(captured.Currency),
	}, nil
}
