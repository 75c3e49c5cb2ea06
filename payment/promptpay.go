package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// MethodPromptPay is the PromptPay method key.
const MethodPromptPay = "promptpay"

// OfflineLimits describes what an offline method accepts.
type OfflineLimits struct {
	MinAmount           decimal.Decimal `json:"min_amount"`
	MaxAmount           decimal.Decimal `json:"max_amount"`
	Currency            string          `json:"currency"`
	ExpirationMinutes   int             `json:"expiration_minutes"`
	DailyLimit          decimal.Decimal `json:"daily_limit"`
	PerTransactionLimit decimal.Decimal `json:"per_transaction_limit"`
}

// Expiration is the outcome of HandlePaymentExpiration.
type Expiration struct {
	Expired    bool    `json:"expired"`
	Message    string  `json:"message,omitempty"`
	NextAction string  `json:"next_action,omitempty"`
	Status     *Status `json:"status,omitempty"`
}

// PromptPay creates a QR code payment the payer scans in their banking app.
type PromptPay struct {
	*OfflineProcessor
}

// NewPromptPay creates the PromptPay processor.
func NewPromptPay(deps Deps) *PromptPay {
	deps = deps.withDefaults()
	p := &PromptPay{}
	p.OfflineProcessor = NewOfflineProcessor(Policy{
		Method:        MethodPromptPay,
		NeedsSource:   true,
		RefundSupport: true,
		Currencies:    []string{"THB"},
		Required:      []string{"amount", "currency"},
		AmountInRange: func(amount decimal.Decimal, _ string, _ Details) bool {
			l := p.PaymentLimits()
			return inRange(amount, l.MinAmount, l.MaxAmount)
		},
		ValidateDetails: validReturnURI,
		ChargeParams:    p.chargeParams,
		SourceParams: func(amount decimal.Decimal, currency string, _ Details) gateway.SourceParams {
			return gateway.SourceParams{
				Type:     MethodPromptPay,
				Amount:   baseChargeParams(amount, currency, nil).Amount,
				Currency: currency,
			}
		},
	}, OfflinePolicy{
		ExpiresInMinutes: func() int { return p.config.Methods.PromptPay.ExpirationMinutes },
		Polling: PollingConfig{
			Enabled:         true,
			IntervalSeconds: 3,
			MaxAttempts:     300,
			TimeoutAction:   "expire_payment",
		},
		Instructions: p.instructions,
	}, deps)
	return p
}

// PaymentLimits returns the configured PromptPay limits.
func (p *PromptPay) PaymentLimits() OfflineLimits {
	cfg := p.config.Methods.PromptPay
	return OfflineLimits{
		MinAmount:           decimal.NewFromFloat(cfg.MinAmount),
		MaxAmount:           decimal.NewFromFloat(cfg.MaxAmount),
		Currency:            "THB",
		ExpirationMinutes:   cfg.ExpirationMinutes,
		DailyLimit:          decimal.NewFromInt(2000000),
		PerTransactionLimit: decimal.NewFromFloat(cfg.MaxAmount),
	}
}

func (p *PromptPay) chargeParams(_ context.Context, amount decimal.Decimal, currency string, details Details) (gateway.ChargeParams, error) {
	params := baseChargeParams(amount, currency, details)
	if params.ReturnURI == "" {
		params.ReturnURI = p.config.Defaults.ReturnURI
	}
	metadata := make(map[string]any, len(params.Metadata)+1)
	for k, v := range params.Metadata {
		metadata[k] = v
	}
	if _, ok := metadata["payment_reference"]; !ok {
		metadata["payment_reference"] = "PP-" + uuid.NewString()
	}
	params.Metadata = metadata
	return params, nil
}

func (p *PromptPay) instructions(rec *Payment, _ Details) *Instructions {
	in := &Instructions{
		PaymentType: "qr_code",
		Steps: []string{
			"Open your mobile banking app",
			"Select PromptPay or QR payment option",
			"Scan the QR code shown below",
			"Confirm the payment amount and complete the transaction",
			"Wait for payment confirmation",
		},
		Tips: []string{
			"Make sure you have sufficient balance in your account",
			fmt.Sprintf("The QR code will expire in %d minutes", p.ExpiresInMinutes()),
			"Do not refresh or close this page until payment is confirmed",
		},
	}
	if rec.AuthorizeURI != "" {
		in.QRCodeURL = rec.AuthorizeURI
		in.QRDisplayMode = "popup"
	}
	return in
}

// HandlePaymentExpiration reports a still-pending payment as expired. Any other
// state is returned as-is.
func (p *PromptPay) HandlePaymentExpiration(ctx context.Context, chargeID string) (*Expiration, error) {
	status, err := p.CheckPaymentStatus(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if status.Status == gateway.StatusPending {
		return &Expiration{
			Expired:    true,
			Message:    "PromptPay payment has expired. Please create a new payment.",
			NextAction: "create_new_payment",
		}, nil
	}
	return &Expiration{Expired: status.Status == gateway.StatusExpired, Status: status}, nil
}
