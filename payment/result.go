package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// Error codes reported in failure records.
const (
	CodeInvalidAmount        = "invalid_amount"
	CodeInvalidCurrency      = "invalid_currency"
	CodeInvalidDetails       = "invalid_details"
	CodeSourceNotNeeded      = "source_not_needed"
	CodeNotAuthorized        = "not_authorized"
	CodeAlreadyCaptured      = "already_captured"
	CodeProcessingError      = "processing_error"
	CodeProcessorError       = "payment_processor_error"
	CodeStatusCheckError     = "status_check_error"
	CodeCaptureError         = "capture_error"
	CodeVoidError            = "void_error"
	CodeUnsupportedOperation = "unsupported_operation"
)

// Failure is the error record of a payment operation.
type Failure struct {
	Code          string
	Message       string
	PaymentMethod string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s (%s)", f.PaymentMethod, f.Message, f.Code)
}

// MarshalJSON writes exactly success, error, error_code, error_message and payment_method.
func (f *Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success       bool   `json:"success"`
		Error         bool   `json:"error"`
		ErrorCode     string `json:"error_code"`
		ErrorMessage  string `json:"error_message"`
		PaymentMethod string `json:"payment_method"`
	}{false, true, f.Code, f.Message, f.PaymentMethod})
}

// AsFailure extracts the failure record carried by err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Payment is the success record of CreatePayment.
type Payment struct {
	ChargeID       string          `json:"charge_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method"`
	AuthorizeURI   string          `json:"authorize_uri,omitempty"`
	IsOffline      bool            `json:"is_offline"`
	NextStep       string          `json:"next_step,omitempty"`
	ProcessingType string          `json:"processing_type,omitempty"`
	Charge         *gateway.Charge `json:"charge,omitempty"`

	*Online
	*Offline
	*Instructions
	*CardCharge
	*InstallmentCharge
}

// Online holds the fields added by online processors.
type Online struct {
	ProcessedImmediately bool   `json:"processed_immediately"`
	AutoCapture          bool   `json:"auto_capture"`
	Requires3DS          bool   `json:"requires_3ds"`
	TransactionID        string `json:"transaction_id,omitempty"`
	Captured             bool   `json:"captured"`
	Authorized           bool   `json:"authorized"`
}

// Offline holds the fields added by offline processors.
type Offline struct {
	RequiresUserAction         bool `json:"requires_user_action"`
	ExpiresInMinutes           int  `json:"expires_in_minutes"`
	RequiresManualConfirmation bool `json:"requires_manual_confirmation"`
}

// Instructions tell the payer how to complete an offline payment.
type Instructions struct {
	PaymentType    string   `json:"payment_type"`
	BankName       string   `json:"bank_name,omitempty"`
	BankCode       string   `json:"bank_code,omitempty"`
	Steps          []string `json:"instructions"`
	Tips           []string `json:"tips"`
	QRCodeURL      string   `json:"qr_code_url,omitempty"`
	QRDisplayMode  string   `json:"qr_display_mode,omitempty"`
	RedirectURL    string   `json:"redirect_url,omitempty"`
	RedirectMethod string   `json:"redirect_method,omitempty"`
}

// CardCharge holds the credit card specific fields.
type CardCharge struct {
	CardInfo               *CardInfo `json:"card_info,omitempty"`
	SupportsPartialCapture bool      `json:"supports_partial_capture"`
	SupportsVoid           bool      `json:"supports_void"`
}

// CardInfo describes the card a charge was made with.
type CardInfo struct {
	Brand           string `json:"brand"`
	LastDigits      string `json:"last_digits"`
	ExpirationMonth int    `json:"expiration_month"`
	ExpirationYear  int    `json:"expiration_year"`
	Financing       string `json:"financing"`
}

// InstallmentCharge holds the installment specific fields.
type InstallmentCharge struct {
	InstallmentInfo         InstallmentInfo `json:"installment_info"`
	SupportsEarlySettlement bool            `json:"supports_early_settlement"`
}

// InstallmentInfo summarises an installment plan.
type InstallmentInfo struct {
	Terms         int             `json:"terms"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	ZeroInterest  bool            `json:"zero_interest"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	InterestRate  decimal.Decimal `json:"interest_rate"`
}

// Result is either a Payment or a Failure, never both.
type Result struct {
	payment *Payment
	failure *Failure
}

// Succeeded wraps a success record.
func Succeeded(p *Payment) Result {
	return Result{payment: p}
}

// Failed builds a failure record.
func Failed(method, code, message string) Result {
	return Result{failure: &Failure{Code: code, Message: message, PaymentMethod: method}}
}

// OK reports whether the result is a success record.
func (r Result) OK() bool {
	return r.payment != nil
}

// Payment returns the success record, or nil.
func (r Result) Payment() *Payment {
	return r.payment
}

// Failure returns the failure record, or nil.
func (r Result) Failure() *Failure {
	return r.failure
}

// MarshalJSON writes the record with its success flag.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.failure != nil {
		return r.failure.MarshalJSON()
	}
	if r.payment == nil {
		return []byte("null"), nil
	}
	type plain Payment
	return json.Marshal(struct {
		Success bool `json:"success"`
		*plain
	}{true, (*plain)(r.payment)})
}
