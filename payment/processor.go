// Package payment implements the payment method processors, their factory and
// the Manager facade callers use.
package payment

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/config"
	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/metrics"
	"github.com/a2n2k3p4/omise-payments/money"
)

// Processor is implemented by every payment method.
type Processor interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, currency string, details Details) Result
	ProcessPayment(ctx context.Context, data Details) Result
	RefundPayment(ctx context.Context, chargeID string, amount decimal.Decimal) bool
	HasRefundSupport() bool
	IsOffline() bool
	PaymentMethod() string
	SupportedCurrencies() []string
	ValidatePaymentDetails(details Details) bool
	RequiredParams() []string
}

// Capturer is implemented by processors that can capture authorized charges.
type Capturer interface {
	CapturePayment(ctx context.Context, chargeID string, amount *decimal.Decimal) (*Capture, error)
}

// Voider is implemented by processors that can void authorized charges.
type Voider interface {
	VoidPayment(ctx context.Context, chargeID string) (*Void, error)
}

// StatusChecker is implemented by offline processors.
type StatusChecker interface {
	CheckPaymentStatus(ctx context.Context, chargeID string) (*Status, error)
	PollingConfig() PollingConfig
}

// Scheduler is implemented by processors that spread a payment over terms.
type Scheduler interface {
	PaymentSchedule(amount decimal.Decimal, terms int) (*Schedule, error)
}

// Deps are the collaborators shared by all processors.
type Deps struct {
	Gateway gateway.Gateway
	Config  *config.PaymentConfig
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Config == nil {
		d.Config = &config.Default().Payment
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Policy is the set of method-specific decisions the shared processor delegates to.
type Policy struct {
	Method        string
	NeedsSource   bool
	RefundSupport bool
	Currencies    []string
	Required      []string

	// AmountInRange checks method limits for an amount already known to be positive
	// in a supported currency.
	AmountInRange func(amount decimal.Decimal, currency string, details Details) bool

	ValidateDetails func(details Details) bool

	// ChargeParams defaults to the amount, currency and pass-through fields.
	ChargeParams func(ctx context.Context, amount decimal.Decimal, currency string, details Details) (gateway.ChargeParams, error)

	SourceParams func(amount decimal.Decimal, currency string, details Details) gateway.SourceParams

	// Augment adds method-specific fields to a success record.
	Augment func(p *Payment, charge *gateway.Charge, details Details)
}

var validate = validator.New()

// processor runs the shared validate, source, charge, map sequence.
type processor struct {
	policy  Policy
	offline bool
	gateway gateway.Gateway
	config  *config.PaymentConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// decorate is the online or offline augmentation, applied before policy.Augment.
	decorate func(p *Payment, charge *gateway.Charge, details Details)
}

func newProcessor(policy Policy, offline bool, deps Deps) *processor {
	deps = deps.withDefaults()
	return &processor{
		policy:  policy,
		offline: offline,
		gateway: deps.Gateway,
		config:  deps.Config,
		logger:  deps.Logger.With(zap.String("payment_method", policy.Method)),
		metrics: deps.Metrics,
		now:     deps.Now,
	}
}

func (p *processor) PaymentMethod() string { return p.policy.Method }

func (p *processor) IsOffline() bool { return p.offline }

func (p *processor) HasRefundSupport() bool { return p.policy.RefundSupport }

func (p *processor) SupportedCurrencies() []string { return slices.Clone(p.policy.Currencies) }

func (p *processor) RequiredParams() []string { return slices.Clone(p.policy.Required) }

func (p *processor) ValidatePaymentDetails(details Details) bool {
	if p.policy.ValidateDetails == nil {
		return true
	}
	return p.policy.ValidateDetails(details)
}

func (p *processor) supportsCurrency(currency string) bool {
	return slices.Contains(p.policy.Currencies, normalizeCurrency(currency))
}

func (p *processor) validAmount(amount decimal.Decimal, currency string, details Details) bool {
	if !amount.IsPositive() {
		return false
	}
	// Limits are keyed by currency; an unsupported currency is reported separately.
	if p.policy.AmountInRange == nil || !p.supportsCurrency(currency) {
		return true
	}
	return p.policy.AmountInRange(amount, normalizeCurrency(currency), details)
}

func (p *processor) CreatePayment(ctx context.Context, amount decimal.Decimal, currency string, details Details) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("payment processing panicked", zap.Any("panic", r))
			res = p.fail(CodeProcessingError, fmt.Sprint(r))
		}
		p.record(res)
	}()

	if details == nil {
		details = Details{}
	}
	if !p.validAmount(amount, currency, details) {
		return p.fail(CodeInvalidAmount, "Invalid payment amount")
	}
	if !p.supportsCurrency(currency) {
		return p.fail(CodeInvalidCurrency, "Unsupported currency")
	}
	if !p.ValidatePaymentDetails(details) {
		return p.fail(CodeInvalidDetails, "Invalid payment details")
	}
	currency = normalizeCurrency(currency)

	params := baseChargeParams(amount, currency, details)
	if p.policy.ChargeParams != nil {
		var err error
		if params, err = p.policy.ChargeParams(ctx, amount, currency, details); err != nil {
			return p.gatewayFailure("prepare charge", err)
		}
	}

	if p.policy.NeedsSource {
		src, err := p.createSource(ctx, amount, currency, details)
		if err != nil {
			if f, ok := AsFailure(err); ok {
				return Result{failure: f}
			}
			return p.gatewayFailure("create source", err)
		}
		params.Source = src.ID
	}

	charge, err := p.gateway.CreateCharge(ctx, params)
	if err != nil {
		return p.gatewayFailure("create charge", err)
	}
	return Succeeded(p.successRecord(charge, details))
}

func (p *processor) ProcessPayment(ctx context.Context, data Details) Result {
	amount, _ := decimalValue(data["amount"])
	currency, ok := data.String("currency")
	if !ok || currency == "" {
		currency = p.config.Defaults.Currency
	}
	details, _ := data.Map("details")
	return p.CreatePayment(ctx, amount, currency, details)
}

func (p *processor) RefundPayment(ctx context.Context, chargeID string, amount decimal.Decimal) (ok bool) {
	if !p.policy.RefundSupport {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("refund panicked", zap.Any("panic", r))
			ok = false
		}
		p.metrics.RecordRefund(p.policy.Method, ok)
	}()

	charge, err := p.gateway.RetrieveCharge(ctx, chargeID)
	if err != nil {
		p.logGatewayError("retrieve charge", err)
		return false
	}
	_, err = p.gateway.RefundCharge(ctx, chargeID, gateway.RefundParams{
		Amount: money.ToSubunit(amount, charge.Currency),
	})
	if err != nil {
		p.logGatewayError("refund charge", err)
		return false
	}
	return true
}

// createSource creates the intermediate source for methods that need one.
func (p *processor) createSource(ctx context.Context, amount decimal.Decimal, currency string, details Details) (*gateway.Source, error) {
	if !p.policy.NeedsSource || p.policy.SourceParams == nil {
		return nil, &Failure{Code: CodeSourceNotNeeded, Message: "This payment method does not need a source", PaymentMethod: p.policy.Method}
	}
	return p.gateway.CreateSource(ctx, p.policy.SourceParams(amount, currency, details))
}

func (p *processor) successRecord(charge *gateway.Charge, details Details) *Payment {
	rec := &Payment{
		ChargeID:      charge.ID,
		Status:        charge.Status,
		Amount:        charge.DisplayAmount(),
		Currency:      strings.ToUpper(charge.Currency),
		PaymentMethod: p.policy.Method,
		AuthorizeURI:  charge.AuthorizeURI,
		IsOffline:     p.offline,
		Charge:        charge,
	}
	if p.decorate != nil {
		p.decorate(rec, charge, details)
	}
	if p.policy.Augment != nil {
		p.policy.Augment(rec, charge, details)
	}
	return rec
}

// retrieveCharge looks up a charge for follow-up operations, reporting lookup
// failures as a failure record.
func (p *processor) retrieveCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	charge, err := p.gateway.RetrieveCharge(ctx, chargeID)
	if err != nil {
		p.logGatewayError("retrieve charge", err)
		return nil, p.failure(gatewayCode(err, CodeProcessingError), err)
	}
	return charge, nil
}

func (p *processor) fail(code, message string) Result {
	return Failed(p.policy.Method, code, message)
}

func (p *processor) failure(code string, err error) *Failure {
	msg := err.Error()
	if gerr, ok := gateway.AsError(err); ok {
		msg = gerr.Message
	}
	return &Failure{Code: code, Message: msg, PaymentMethod: p.policy.Method}
}

func (p *processor) gatewayFailure(step string, err error) Result {
	p.logGatewayError(step, err)
	return Result{failure: p.failure(gatewayCode(err, CodeProcessingError), err)}
}

func (p *processor) logGatewayError(step string, err error) {
	p.logger.Warn("gateway call failed",
		zap.String("step", step),
		zap.String("error_code", gatewayCode(err, CodeProcessingError)),
		zap.Error(err),
	)
}

func (p *processor) record(res Result) {
	outcome := "success"
	if f := res.Failure(); f != nil {
		outcome = f.Code
	}
	p.metrics.RecordPayment(p.policy.Method, outcome)
}

// gatewayCode returns the gateway error code carried by err, or fallback.
func gatewayCode(err error, fallback string) string {
	if gerr, ok := gateway.AsError(err); ok && gerr.Code != "" {
		return gerr.Code
	}
	return fallback
}

// baseChargeParams fills the parameters every method passes through.
func baseChargeParams(amount decimal.Decimal, currency string, details Details) gateway.ChargeParams {
	params := gateway.ChargeParams{
		Amount:   money.ToSubunit(amount, currency),
		Currency: strings.ToUpper(currency),
		Capture:  true,
	}
	if s, ok := details.String("description"); ok {
		params.Description = s
	}
	if m, ok := details.Map("metadata"); ok {
		params.Metadata = map[string]any(m)
	}
	if s, ok := details.String("customer"); ok {
		params.Customer = s
	}
	if s, ok := details.String("return_uri"); ok {
		params.ReturnURI = s
	}
	return params
}

// validReturnURI reports whether details carries no return_uri or a well-formed one.
func validReturnURI(details Details) bool {
	if !details.Has("return_uri") {
		return true
	}
	uri, ok := details.String("return_uri")
	if !ok {
		return false
	}
	return validate.Var(uri, "required,url") == nil
}

func inRange(amount, min, max decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(min) && amount.LessThanOrEqual(max)
}

func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
