package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Expirer is implemented by processors whose pending payments can expire.
type Expirer interface {
	HandlePaymentExpiration(ctx context.Context, chargeID string) (*Expiration, error)
}

// MethodInfo summarises a registered payment method.
type MethodInfo struct {
	Method              string   `json:"method"`
	SupportsRefund      bool     `json:"supports_refund"`
	IsOffline           bool     `json:"is_offline"`
	SupportedCurrencies []string `json:"supported_currencies"`
	RequiredParams      []string `json:"required_params"`
	Processor           string   `json:"processor_class"`
	Error               string   `json:"error,omitempty"`
}

// Manager is the entry point for payment operations. It never panics and
// reports every failure as a value.
type Manager struct {
	factory *Factory
	logger  *zap.Logger
}

// NewManager creates a manager over factory.
func NewManager(factory *Factory, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{factory: factory, logger: logger}
}

// Factory returns the manager's processor table.
func (m *Manager) Factory() *Factory {
	return m.factory
}

func (m *Manager) recovered(method string, r any) *Failure {
	m.logger.Error("payment processor panicked",
		zap.String("payment_method", method),
		zap.Any("panic", r),
	)
	return &Failure{Code: CodeProcessorError, Message: fmt.Sprint(r), PaymentMethod: method}
}

func processorFailure(method string, err error) *Failure {
	return &Failure{Code: CodeProcessorError, Message: err.Error(), PaymentMethod: method}
}

// CreatePayment charges amount in currency with the processor registered for method.
func (m *Manager) CreatePayment(ctx context.Context, method string, amount decimal.Decimal, currency string, details Details) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{failure: m.recovered(method, r)}
		}
	}()

	p, err := m.factory.Make(method)
	if err != nil {
		return Result{failure: processorFailure(method, err)}
	}
	return p.CreatePayment(ctx, amount, currency, details)
}

// ProcessPayment is CreatePayment with amount, currency and details read from data.
func (m *Manager) ProcessPayment(ctx context.Context, method string, data Details) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{failure: m.recovered(method, r)}
		}
	}()

	p, err := m.factory.Make(method)
	if err != nil {
		return Result{failure: processorFailure(method, err)}
	}
	return p.ProcessPayment(ctx, data)
}

// RefundPayment refunds amount of a charge. Any failure reports false.
func (m *Manager) RefundPayment(ctx context.Context, method, chargeID string, amount decimal.Decimal) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(method, r)
			ok = false
		}
	}()

	p, err := m.factory.Make(method)
	if err != nil {
		return false
	}
	return p.RefundPayment(ctx, chargeID, amount)
}

// Processor returns the processor registered for method. A panicking
// constructor is reported as a payment_processor_error Failure.
func (m *Manager) Processor(method string) (p Processor, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, m.recovered(method, r)
		}
	}()

	return m.factory.Make(method)
}

// Extend registers a custom processor.
func (m *Manager) Extend(method string, ctor Constructor) *Manager {
	m.factory.Register(method, ctor)
	return m
}

// Supports reports whether method is registered.
func (m *Manager) Supports(method string) bool {
	return m.factory.Supports(method)
}

// SupportedMethods returns the registered method keys.
func (m *Manager) SupportedMethods() []string {
	return m.factory.SupportedMethods()
}

// query resolves method and runs fn, turning resolution errors and panics into ok=false.
func (m *Manager) query(method string, fn func(Processor)) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.recovered(method, r)
			ok = false
		}
	}()

	p, err := m.factory.Make(method)
	if err != nil {
		return false
	}
	fn(p)
	return true
}

func (m *Manager) HasRefundSupport(method string) bool {
	var v bool
	m.query(method, func(p Processor) { v = p.HasRefundSupport() })
	return v
}

func (m *Manager) IsOffline(method string) bool {
	var v bool
	m.query(method, func(p Processor) { v = p.IsOffline() })
	return v
}

// SupportedCurrencies returns the method's currencies, or an empty list when
// the method cannot be resolved.
func (m *Manager) SupportedCurrencies(method string) []string {
	v := []string{}
	m.query(method, func(p Processor) { v = p.SupportedCurrencies() })
	return v
}

func (m *Manager) ValidatePaymentDetails(method string, details Details) bool {
	var v bool
	m.query(method, func(p Processor) { v = p.ValidatePaymentDetails(details) })
	return v
}

func (m *Manager) RequiredParams(method string) []string {
	v := []string{}
	m.query(method, func(p Processor) { v = p.RequiredParams() })
	return v
}

// MethodInfo describes method. Resolution failures and panics are reported in Error.
func (m *Manager) MethodInfo(method string) (info MethodInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = MethodInfo{Method: method, Error: m.recovered(method, r).Message}
		}
	}()

	info = MethodInfo{Method: method}
	p, err := m.factory.Make(method)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.SupportsRefund = p.HasRefundSupport()
	info.IsOffline = p.IsOffline()
	info.SupportedCurrencies = p.SupportedCurrencies()
	info.RequiredParams = p.RequiredParams()
	info.Processor = fmt.Sprintf("%T", p)
	return info
}

// operation resolves method and runs fn on it. Errors from fn pass through;
// resolution errors and panics are reported as payment_processor_error.
func operation[T any](m *Manager, method string, fn func(Processor) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, m.recovered(method, r)
		}
	}()

	p, err := m.factory.Make(method)
	if err != nil {
		var zero T
		return zero, processorFailure(method, err)
	}
	return fn(p)
}

func unsupported(method, op string) *Failure {
	return &Failure{
		Code:          CodeUnsupportedOperation,
		Message:       fmt.Sprintf("%s does not support %s", method, op),
		PaymentMethod: method,
	}
}

// CapturePayment captures an authorized charge. A nil amount captures in full.
func (m *Manager) CapturePayment(ctx context.Context, method, chargeID string, amount *decimal.Decimal) (*Capture, error) {
	return operation(m, method, func(p Processor) (*Capture, error) {
		c, ok := p.(Capturer)
		if !ok {
			return nil, unsupported(method, "capture")
		}
		return c.CapturePayment(ctx, chargeID, amount)
	})
}

// VoidPayment voids an uncaptured charge.
func (m *Manager) VoidPayment(ctx context.Context, method, chargeID string) (*Void, error) {
	return operation(m, method, func(p Processor) (*Void, error) {
		v, ok := p.(Voider)
		if !ok {
			return nil, unsupported(method, "void")
		}
		return v.VoidPayment(ctx, chargeID)
	})
}

// CheckPaymentStatus reports the state of an offline payment.
func (m *Manager) CheckPaymentStatus(ctx context.Context, method, chargeID string) (*Status, error) {
	return operation(m, method, func(p Processor) (*Status, error) {
		s, ok := p.(StatusChecker)
		if !ok {
			return nil, unsupported(method, "status checks")
		}
		return s.CheckPaymentStatus(ctx, chargeID)
	})
}

// PollingConfig returns how callers should poll an offline payment.
func (m *Manager) PollingConfig(method string) (*PollingConfig, error) {
	return operation(m, method, func(p Processor) (*PollingConfig, error) {
		s, ok := p.(StatusChecker)
		if !ok {
			return nil, unsupported(method, "polling")
		}
		cfg := s.PollingConfig()
		return &cfg, nil
	})
}

// HandlePaymentExpiration expires a payment still pending past its window.
func (m *Manager) HandlePaymentExpiration(ctx context.Context, method, chargeID string) (*Expiration, error) {
	return operation(m, method, func(p Processor) (*Expiration, error) {
		e, ok := p.(Expirer)
		if !ok {
			return nil, unsupported(method, "expiration")
		}
		return e.HandlePaymentExpiration(ctx, chargeID)
	})
}

// PaymentSchedule returns the installment plan for amount over terms.
func (m *Manager) PaymentSchedule(method string, amount decimal.Decimal, terms int) (*Schedule, error) {
	return operation(m, method, func(p Processor) (*Schedule, error) {
		s, ok := p.(Scheduler)
		if !ok {
			return nil, unsupported(method, "payment schedules")
		}
		return s.PaymentSchedule(amount, terms)
	})
}
