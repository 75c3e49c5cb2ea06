// Package gateway defines the payment gateway contract used by the payment
// processors and its Omise implementation.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Gateway is the remote payment service the processors talk to.
type Gateway interface {
	CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error)
	CaptureCharge(ctx context.Context, chargeID string, params CaptureParams) (*Charge, error)
	ReverseCharge(ctx context.Context, chargeID string) (*Charge, error)
	RefundCharge(ctx context.Context, chargeID string, params RefundParams) (*Refund, error)
	CreateSource(ctx context.Context, params SourceParams) (*Source, error)
	CreateToken(ctx context.Context, params TokenParams) (*Token, error)
}

// Accounts exposes merchant-level resources.
type Accounts interface {
	RetrieveAccount(ctx context.Context) (*Account, error)
	RetrieveBalance(ctx context.Context) (*Balance, error)
	RetrieveCapabilities(ctx context.Context) (*Capabilities, error)
}

// Events verifies webhook events against the gateway.
type Events interface {
	RetrieveEvent(ctx context.Context, eventID string) (*Event, error)
}

// ChargeParams are the charge fields the processors send. Amount is in subunits.
type ChargeParams struct {
	Amount      int64
	Currency    string
	Card        string
	Source      string
	Customer    string
	Capture     bool
	Description string
	ReturnURI   string
	Metadata    map[string]any
}

// CaptureParams optionally carries a partial capture amount in subunits.
type CaptureParams struct {
	Amount int64
}

// RefundParams carries the refund amount in subunits.
type RefundParams struct {
	Amount int64
}

// SourceParams describes a source to create. Amount is in subunits.
type SourceParams struct {
	Type            string
	Amount          int64
	Currency        string
	InstallmentTerm int64
	ZeroInterest    bool
}

// TokenParams holds raw card data to tokenize.
type TokenParams struct {
	Name            string
	Number          string
	ExpirationMonth time.Month
	ExpirationYear  int
	SecurityCode    string
}

// Error codes produced locally by the gateway layer.
const (
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeFailedCapture      = "failed_capture"
	CodeFailedRefund       = "failed_refund"
	CodeFailedReverse      = "failed_reverse"
	CodeFailedToken        = "failed_token"
	CodeServiceUnavailable = "service_unavailable"
	CodeAPIError           = "api_error"
)

// Error is a failure reported by, or on the way to, the gateway.
type Error struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("(%d/%s) %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("(%s) %s", e.Code, e.Message)
}

// AsError extracts a gateway error from err.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// IsClientError reports whether err is a gateway rejection of the request itself.
func IsClientError(err error) bool {
	gerr, ok := AsError(err)
	return ok && gerr.StatusCode >= 400 && gerr.StatusCode < 500
}
