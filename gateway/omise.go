package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"go.uber.org/zap"

	"github.com/a2n2k3p4/omise-payments/config"
)

// defaultAPIURL is the key omise-go uses for its API endpoint override.
const defaultAPIURL = "https://api.omise.co"

// Omise implements Gateway and Accounts on top of omise-go.
type Omise struct {
	client *omise.Client
	logger *zap.Logger
}

var (
	_ Gateway  = (*Omise)(nil)
	_ Accounts = (*Omise)(nil)
	_ Events   = (*Omise)(nil)
)

// NewOmise creates an Omise gateway using the keys of the active environment.
func NewOmise(cfg *config.OmiseConfig, logger *zap.Logger) (*Omise, error) {
	if !cfg.CanInitialize() {
		return nil, errors.New("omise keys are not configured")
	}
	client, err := omise.NewClient(cfg.PublicKey(), cfg.SecretKey())
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	if cfg.HTTPTimeout > 0 {
		client.Timeout = cfg.HTTPTimeout
	}
	if cfg.APIURL != "" && cfg.APIURL != defaultAPIURL {
		client.Endpoints[defaultAPIURL] = strings.TrimRight(cfg.APIURL, "/")
	}
	if cfg.APIVersion != "" {
		client.WithCustomHeaders(map[string]string{"Omise-Version": cfg.APIVersion})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Omise{client: client, logger: logger}, nil
}

func (o *Omise) CreateCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	if err := checkContext(ctx, CodeBadRequest); err != nil {
		return nil, err
	}
	ch := &Charge{}
	if err := o.client.Do(ch, createChargeOp(params)); err != nil {
		return nil, o.fail("create_charge", err, CodeBadRequest)
	}
	return ch, nil
}

func (o *Omise) RetrieveCharge(ctx context.Context, chargeID string) (*Charge, error) {
	if err := checkContext(ctx, CodeNotFound); err != nil {
		return nil, err
	}
	ch := &Charge{}
	if err := o.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, o.fail("retrieve_charge", err, CodeNotFound)
	}
	return ch, nil
}

// CaptureCharge captures an authorized charge. A zero params.Amount captures
// the full authorized amount.
func (o *Omise) CaptureCharge(ctx context.Context, chargeID string, params CaptureParams) (*Charge, error) {
	if params.Amount < 0 {
		return nil, &Error{Code: CodeFailedCapture, Message: "capture amount must not be negative"}
	}
	if err := checkContext(ctx, CodeFailedCapture); err != nil {
		return nil, err
	}
	ch := &Charge{}
	if err := o.client.Do(ch, &operations.CaptureCharge{ChargeID: chargeID, CaptureAmount: params.Amount}); err != nil {
		return nil, o.fail("capture_charge", err, CodeFailedCapture)
	}
	return ch, nil
}

func (o *Omise) ReverseCharge(ctx context.Context, chargeID string) (*Charge, error) {
	if err := checkContext(ctx, CodeFailedReverse); err != nil {
		return nil, err
	}
	ch := &Charge{}
	if err := o.client.Do(ch, &operations.ReverseCharge{ChargeID: chargeID}); err != nil {
		return nil, o.fail("reverse_charge", err, CodeFailedReverse)
	}
	return ch, nil
}

func (o *Omise) RefundCharge(ctx context.Context, chargeID string, params RefundParams) (*Refund, error) {
	if err := checkContext(ctx, CodeFailedRefund); err != nil {
		return nil, err
	}
	rf := &Refund{}
	op := &operations.CreateRefund{ChargeID: chargeID, Amount: params.Amount}
	if err := o.client.Do(rf, op); err != nil {
		return nil, o.fail("refund_charge", err, CodeFailedRefund)
	}
	return rf, nil
}

func (o *Omise) CreateSource(ctx context.Context, params SourceParams) (*Source, error) {
	if err := checkContext(ctx, CodeBadRequest); err != nil {
		return nil, err
	}
	src := &Source{}
	if err := o.client.Do(src, createSourceOp(params)); err != nil {
		return nil, o.fail("create_source", err, CodeBadRequest)
	}
	return src, nil
}

func (o *Omise) CreateToken(ctx context.Context, params TokenParams) (*Token, error) {
	if err := checkContext(ctx, CodeFailedToken); err != nil {
		return nil, err
	}
	tok := &Token{}
	if err := o.client.Do(tok, createTokenOp(params)); err != nil {
		return nil, o.fail("create_token", err, CodeFailedToken)
	}
	return tok, nil
}

func (o *Omise) RetrieveAccount(ctx context.Context) (*Account, error) {
	if err := checkContext(ctx, CodeAPIError); err != nil {
		return nil, err
	}
	acc := &Account{}
	if err := o.client.Do(acc, &operations.RetrieveAccount{}); err != nil {
		return nil, o.fail("retrieve_account", err, CodeAPIError)
	}
	return acc, nil
}

func (o *Omise) RetrieveBalance(ctx context.Context) (*Balance, error) {
	if err := checkContext(ctx, CodeAPIError); err != nil {
		return nil, err
	}
	bal := &Balance{}
	if err := o.client.Do(bal, &operations.RetrieveBalance{}); err != nil {
		return nil, o.fail("retrieve_balance", err, CodeAPIError)
	}
	return bal, nil
}

func (o *Omise) RetrieveCapabilities(ctx context.Context) (*Capabilities, error) {
	if err := checkContext(ctx, CodeAPIError); err != nil {
		return nil, err
	}
	caps := &Capabilities{}
	if err := o.client.Do(caps, &operations.RetrieveCapability{}); err != nil {
		return nil, o.fail("retrieve_capabilities", err, CodeAPIError)
	}
	return caps, nil
}

// RetrieveEvent fetches an event by id. Only the object and id of the
// embedded resource are kept.
func (o *Omise) RetrieveEvent(ctx context.Context, eventID string) (*Event, error) {
	if err := checkContext(ctx, CodeNotFound); err != nil {
		return nil, err
	}
	ev := &omise.Event{}
	if err := o.client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, o.fail("retrieve_event", err, CodeNotFound)
	}
	return eventFromOmise(ev)
}

func eventFromOmise(ev *omise.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Key: ev.Key, Created: ev.CreatedAt}
	if ev.Data == nil {
		return out, nil
	}
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, &Error{Code: CodeAPIError, Message: fmt.Sprintf("decode event data: %v", err)}
	}
	var data struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	// Data that is not an object leaves the event without a resource.
	if err := json.Unmarshal(raw, &data); err == nil {
		out.DataObject = data.Object
		out.DataID = data.ID
	}
	return out, nil
}

// omise-go binds a context to the shared client rather than to a request,
// so cancellation is only honoured before the call starts.
func checkContext(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Code: code, Message: err.Error()}
	}
	return nil
}

func (o *Omise) fail(operation string, err error, defaultCode string) error {
	gerr := translate(err, defaultCode)
	o.logger.Debug("omise request failed",
		zap.String("operation", operation),
		zap.String("code", gerr.Code),
		zap.Int("status", gerr.StatusCode),
	)
	return gerr
}

// translate converts omise-go errors into *Error. Errors without a code get defaultCode.
func translate(err error, defaultCode string) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	var oerr *omise.Error
	if errors.As(err, &oerr) {
		code := oerr.Code
		if code == "" {
			code = defaultCode
		}
		return &Error{Code: code, Message: oerr.Message, StatusCode: oerr.StatusCode}
	}
	return &Error{Code: defaultCode, Message: err.Error()}
}

func createChargeOp(p ChargeParams) *operations.CreateCharge {
	return &operations.CreateCharge{
		Customer:    p.Customer,
		Card:        p.Card,
		Source:      p.Source,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		DontCapture: !p.Capture,
		ReturnURI:   p.ReturnURI,
		Metadata:    p.Metadata,
	}
}

func createSourceOp(p SourceParams) *operations.CreateSource {
	return &operations.CreateSource{
		Type:                     p.Type,
		Amount:                   p.Amount,
		Currency:                 p.Currency,
		InstallmentTerm:          p.InstallmentTerm,
		ZeroInterestInstallments: p.ZeroInterest,
	}
}

func createTokenOp(p TokenParams) *operations.CreateToken {
	return &operations.CreateToken{
		Name:            p.Name,
		Number:          p.Number,
		ExpirationMonth: p.ExpirationMonth,
		ExpirationYear:  p.ExpirationYear,
		SecurityCode:    p.SecurityCode,
	}
}
