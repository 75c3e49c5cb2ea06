package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/logger"
)

// MethodCreditCard is the credit card method key.
const MethodCreditCard = "credit_card"

var creditCardCurrencies = []string{"THB", "USD", "EUR", "GBP", "SGD", "JPY", "AUD", "CAD", "CHF", "CNY", "DKK", "HKD", "MYR"}

// Limits is an inclusive amount range in currency units.
type Limits struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func limits(min, max int64) Limits {
	return Limits{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

var (
	creditCardLimits = map[string]Limits{
		"THB": limits(20, 200000),
		"USD": limits(1, 5000),
		"EUR": limits(1, 5000),
		"GBP": limits(1, 5000),
		"SGD": limits(1, 5000),
		"JPY": limits(100, 500000),
	}
	defaultCardLimits = limits(1, 999999)
)

// Void is the summary of a voided charge.
type Void struct {
	Success  bool   `json:"success"`
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
	Voided   bool   `json:"voided"`
	Reversed bool   `json:"reversed"`
}

// CreditCard charges a card token or raw card data.
type CreditCard struct {
	*OnlineProcessor
}

// NewCreditCard creates the credit card processor.
func NewCreditCard(deps Deps) *CreditCard {
	deps = deps.withDefaults()
	c := &CreditCard{}
	c.OnlineProcessor = NewOnlineProcessor(Policy{
		Method:        MethodCreditCard,
		RefundSupport: true,
		Currencies:    creditCardCurrencies,
		Required:      []string{"amount", "currency", "card"},
		AmountInRange: func(amount decimal.Decimal, currency string, _ Details) bool {
			l := c.AmountLimits(currency)
			return inRange(amount, l.Min, l.Max)
		},
		ValidateDetails: c.validateDetails,
		ChargeParams:    c.chargeParams,
		Augment:         c.augmentCard,
	}, deps.Config.Methods.CreditCard.Capture, deps)
	return c
}

// AmountLimits returns the accepted range for currency.
func (c *CreditCard) AmountLimits(currency string) Limits {
	if l, ok := creditCardLimits[normalizeCurrency(currency)]; ok {
		return l
	}
	return defaultCardLimits
}

func (c *CreditCard) validateDetails(details Details) bool {
	if !details.Has("card") {
		return false
	}
	return validCard(details["card"], c.now())
}

func (c *CreditCard) chargeParams(ctx context.Context, amount decimal.Decimal, currency string, details Details) (gateway.ChargeParams, error) {
	params := baseChargeParams(amount, currency, details)
	card, err := resolveCard(ctx, c.processor, details["card"])
	if err != nil {
		return params, err
	}
	params.Card = card
	params.Capture = c.autoCapture
	if capture, ok := details.Bool("capture"); ok {
		params.Capture = capture
	}
	return params, nil
}

func (c *CreditCard) augmentCard(rec *Payment, charge *gateway.Charge, _ Details) {
	cc := &CardCharge{
		SupportsPartialCapture: true,
		SupportsVoid:           !charge.Captured,
	}
	if charge.Card != nil {
		cc.CardInfo = &CardInfo{
			Brand:           charge.Card.Brand,
			LastDigits:      charge.Card.LastDigits,
			ExpirationMonth: int(charge.Card.ExpirationMonth),
			ExpirationYear:  charge.Card.ExpirationYear,
			Financing:       charge.Card.Financing,
		}
	}
	rec.CardCharge = cc
	rec.ProcessingType = "immediate"
}

// VoidPayment reverses an authorized charge that has not been captured.
func (c *CreditCard) VoidPayment(ctx context.Context, chargeID string) (v *Void, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("void panicked", zap.Any("panic", r))
			v, err = nil, &Failure{Code: CodeVoidError, Message: fmt.Sprint(r), PaymentMethod: c.PaymentMethod()}
		}
	}()

	charge, err := c.retrieveCharge(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if charge.Captured {
		return nil, &Failure{Code: CodeAlreadyCaptured, Message: "Cannot void a captured charge", PaymentMethod: c.PaymentMethod()}
	}
	if !charge.IsAuthorized() {
		return nil, &Failure{Code: CodeNotAuthorized, Message: "Charge is not authorized", PaymentMethod: c.PaymentMethod()}
	}

	reversed, err := c.gateway.ReverseCharge(ctx, chargeID)
	if err != nil {
		c.logGatewayError("reverse charge", err)
		return nil, c.failure(gatewayCode(err, CodeVoidError), err)
	}
	return &Void{Success: true, ChargeID: reversed.ID, Status: reversed.Status, Voided: true, Reversed: reversed.Reversed}, nil
}

// resolveCard returns a card token, tokenizing raw card data through the gateway.
func resolveCard(ctx context.Context, p *processor, card any) (string, error) {
	if token, ok := card.(string); ok {
		return token, nil
	}
	data, ok := asDetails(card)
	if !ok {
		return "", &gateway.Error{Code: gateway.CodeBadRequest, Message: "card must be a token or card data"}
	}
	rc, ok := parseRawCard(data)
	if !ok {
		return "", &gateway.Error{Code: gateway.CodeBadRequest, Message: "incomplete card data"}
	}
	p.logger.Debug("tokenizing card", logger.Card(rc.Number))
	tok, err := p.gateway.CreateToken(ctx, gateway.TokenParams{
		Name:            rc.Name,
		Number:          rc.Number,
		ExpirationMonth: time.Month(rc.ExpirationMonth),
		ExpirationYear:  rc.ExpirationYear,
		SecurityCode:    rc.SecurityCode,
	})
	if err != nil {
		return "", err
	}
	return tok.ID, nil
}
