package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/omise/omise-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a2n2k3p4/omise-payments/config"
)

func TestError(t *testing.T) {
	err := &Error{Code: "invalid_card", Message: "card is declined", StatusCode: 400}
	assert.Equal(t, "(400/invalid_card) card is declined", err.Error())

	err = &Error{Code: "not_found", Message: "missing"}
	assert.Equal(t, "(not_found) missing", err.Error())
}

func TestAsError(t *testing.T) {
	wrapped := fmt.Errorf("refund: %w", &Error{Code: CodeFailedRefund, Message: "boom"})

	gerr, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeFailedRefund, gerr.Code)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(&Error{Code: "invalid_card", StatusCode: 402}))
	assert.False(t, IsClientError(&Error{Code: "internal_error", StatusCode: 500}))
	assert.False(t, IsClientError(&Error{Code: "bad_request"}))
	assert.False(t, IsClientError(errors.New("dial tcp: timeout")))
}

func TestTranslate(t *testing.T) {
	t.Run("omise error keeps code", func(t *testing.T) {
		gerr := translate(&omise.Error{Code: "invalid_charge", Message: "amount too low", StatusCode: 400}, CodeBadRequest)
		assert.Equal(t, "invalid_charge", gerr.Code)
		assert.Equal(t, "amount too low", gerr.Message)
		assert.Equal(t, 400, gerr.StatusCode)
	})

	t.Run("omise error without code", func(t *testing.T) {
		gerr := translate(&omise.Error{Message: "oops", StatusCode: 500}, CodeFailedCapture)
		assert.Equal(t, CodeFailedCapture, gerr.Code)
	})

	t.Run("transport error gets default code", func(t *testing.T) {
		gerr := translate(errors.New("connection reset"), CodeNotFound)
		assert.Equal(t, CodeNotFound, gerr.Code)
		assert.Equal(t, "connection reset", gerr.Message)
		assert.Zero(t, gerr.StatusCode)
	})

	t.Run("gateway error passes through", func(t *testing.T) {
		in := &Error{Code: CodeServiceUnavailable, Message: "open"}
		assert.Same(t, in, translate(in, CodeBadRequest))
	})
}

func TestCreateChargeOp(t *testing.T) {
	op := createChargeOp(ChargeParams{
		Amount:      10000,
		Currency:    "THB",
		Card:        "tokn_test_123",
		Capture:     false,
		Description: "order #1",
		ReturnURI:   "https://example.com/return",
		Metadata:    map[string]any{"order_id": "1"},
	})

	assert.Equal(t, int64(10000), op.Amount)
	assert.Equal(t, "THB", op.Currency)
	assert.Equal(t, "tokn_test_123", op.Card)
	assert.True(t, op.DontCapture)
	assert.Equal(t, "order #1", op.Description)
	assert.Equal(t, "https://example.com/return", op.ReturnURI)
	assert.Equal(t, "1", op.Metadata["order_id"])

	assert.False(t, createChargeOp(ChargeParams{Capture: true}).DontCapture)
}

func TestCreateSourceOp(t *testing.T) {
	op := createSourceOp(SourceParams{Type: "installment_kbank", Amount: 500000, Currency: "THB", InstallmentTerm: 6, ZeroInterest: true})

	assert.Equal(t, "installment_kbank", op.Type)
	assert.Equal(t, int64(500000), op.Amount)
	assert.Equal(t, int64(6), op.InstallmentTerm)
	assert.True(t, op.ZeroInterestInstallments)
}

func TestCreateTokenOp(t *testing.T) {
	op := createTokenOp(TokenParams{Name: "J DOE", Number: "4242424242424242", ExpirationMonth: time.December, ExpirationYear: 2030, SecurityCode: "123"})

	assert.Equal(t, "4242424242424242", op.Number)
	assert.Equal(t, time.December, op.ExpirationMonth)
	assert.Equal(t, 2030, op.ExpirationYear)
}

func TestNewOmise_MissingKeys(t *testing.T) {
	_, err := NewOmise(&config.OmiseConfig{Sandbox: true}, nil)
	assert.Error(t, err)
}

func TestOmise_CanceledContext(t *testing.T) {
	cfg := &config.OmiseConfig{Sandbox: true, Keys: config.KeysConfig{Test: config.KeyPair{Public: "pkey_test_5x", Secret: "skey_test_5x"}}}
	gw, err := NewOmise(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = gw.RetrieveCharge(ctx, "chrg_test_1")
	gerr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, gerr.Code)

	_, err = gw.CaptureCharge(ctx, "chrg_test_1", CaptureParams{Amount: 100})
	gerr, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeFailedCapture, gerr.Code)
}

func TestChargePredicates(t *testing.T) {
	tests := []struct {
		name         string
		charge       Charge
		authorized   bool
		paid         bool
		successful   bool
		failed       bool
		awaitCapture bool
		awaitPayment bool
	}{
		{
			name:       "successful",
			charge:     Charge{Status: StatusSuccessful, Authorized: true, Paid: true},
			authorized: true, paid: true, successful: true,
		},
		{
			name:       "captured counts as paid",
			charge:     Charge{Status: StatusSuccessful, Authorized: true, Captured: true},
			authorized: true, paid: true, successful: true,
		},
		{
			name:         "authorized awaiting capture",
			charge:       Charge{Status: StatusPending, Authorized: true},
			authorized:   true,
			awaitCapture: true,
		},
		{
			name:         "awaiting payer",
			charge:       Charge{Status: StatusPending},
			awaitPayment: true,
		},
		{
			name:   "failed",
			charge: Charge{Status: StatusFailed},
			failed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.charge
			assert.Equal(t, tt.authorized, c.IsAuthorized())
			assert.Equal(t, tt.paid, c.IsPaid())
			assert.Equal(t, tt.successful, c.IsSuccessful())
			assert.Equal(t, tt.failed, c.IsFailed())
			assert.Equal(t, tt.awaitCapture, c.IsAwaitCapture())
			assert.Equal(t, tt.awaitPayment, c.IsAwaitPayment())
		})
	}
}

func TestDisplayAmount(t *testing.T) {
	c := &Charge{Amount: 15050, Currency: "thb"}
	assert.True(t, decimal.RequireFromString("150.5").Equal(c.DisplayAmount()))

	r := &Refund{Amount: 1000, Currency: "JPY"}
	assert.True(t, decimal.NewFromInt(1000).Equal(r.DisplayAmount()))
}

func TestCapabilitiesMethod(t *testing.T) {
	caps := &Capabilities{PaymentMethods: []PaymentCapability{
		{Name: "card", Currencies: []string{"THB"}},
		{Name: "promptpay", Currencies: []string{"THB"}},
	}}

	m, ok := caps.Method("promptpay")
	require.True(t, ok)
	assert.Equal(t, []string{"THB"}, m.Currencies)

	_, ok = caps.Method("alipay")
	assert.False(t, ok)
}

func TestEventFromOmise(t *testing.T) {
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	ev := &omise.Event{Key: "charge.complete", Data: map[string]any{"object": "charge", "id": "chrg_test_1", "amount": 10000}}
	ev.ID = "evnt_test_1"
	ev.CreatedAt = created

	out, err := eventFromOmise(ev)
	require.NoError(t, err)
	assert.Equal(t, "evnt_test_1", out.ID)
	assert.Equal(t, "charge.complete", out.Key)
	assert.Equal(t, "chrg_test_1", out.DataID)
	assert.Equal(t, created, out.Created)
	assert.True(t, out.IsCharge())

	out, err = eventFromOmise(&omise.Event{Key: "customer.create", Data: "not an object"})
	require.NoError(t, err)
	assert.False(t, out.IsCharge())
}

type recordedRequest struct {
	method  string
	path    string
	version string
	body    map[string]any
}

// newTestOmise points an Omise gateway at a local server answering with status and response.
func newTestOmise(t *testing.T, status int, response string) (*Omise, *recordedRequest) {
	t.Helper()

	got := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.version = r.Header.Get("Omise-Version")
		got.body = map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&got.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.OmiseConfig{
		APIURL:     srv.URL + "/",
		APIVersion: "2019-05-29",
		Sandbox:    true,
		Keys:       config.KeysConfig{Test: config.KeyPair{Public: "pkey_test_5x", Secret: "skey_test_5x"}},
	}
	gw, err := NewOmise(cfg, nil)
	require.NoError(t, err)
	return gw, got
}

func TestOmise_CaptureCharge(t *testing.T) {
	const captured = `{"object":"charge","id":"chrg_test_1","status":"successful","amount":5000,"currency":"thb","authorized":true,"captured":true,"paid":true}`

	t.Run("partial amount", func(t *testing.T) {
		gw, got := newTestOmise(t, http.StatusOK, captured)

		ch, err := gw.CaptureCharge(context.Background(), "chrg_test_1", CaptureParams{Amount: 5000})

		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, got.method)
		assert.Equal(t, "/charges/chrg_test_1/capture", got.path)
		assert.Equal(t, float64(5000), got.body["capture_amount"])
		assert.Equal(t, "2019-05-29", got.version)
		assert.Equal(t, "chrg_test_1", ch.ID)
		assert.Equal(t, int64(5000), ch.Amount)
		assert.True(t, ch.Captured)
	})

	t.Run("full amount omits capture_amount", func(t *testing.T) {
		gw, got := newTestOmise(t, http.StatusOK, captured)

		_, err := gw.CaptureCharge(context.Background(), "chrg_test_1", CaptureParams{})

		require.NoError(t, err)
		assert.NotContains(t, got.body, "capture_amount")
	})

	t.Run("negative amount", func(t *testing.T) {
		gw, got := newTestOmise(t, http.StatusOK, captured)

		_, err := gw.CaptureCharge(context.Background(), "chrg_test_1", CaptureParams{Amount: -5000})

		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeFailedCapture, gerr.Code)
		assert.Empty(t, got.path)
	})

	t.Run("gateway rejection", func(t *testing.T) {
		gw, _ := newTestOmise(t, http.StatusBadRequest, `{"object":"error","code":"failed_capture","message":"charge was already captured"}`)

		_, err := gw.CaptureCharge(context.Background(), "chrg_test_1", CaptureParams{Amount: 5000})

		gerr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeFailedCapture, gerr.Code)
		assert.Equal(t, http.StatusBadRequest, gerr.StatusCode)
		assert.Equal(t, "charge was already captured", gerr.Message)
	})
}

func TestOmise_RetrieveEvent(t *testing.T) {
	gw, got := newTestOmise(t, http.StatusOK, `{"object":"event","id":"evnt_test_1","key":"charge.complete","created_at":"2026-10-01T09:30:00Z","data":{"object":"charge","id":"chrg_test_1"}}`)

	ev, err := gw.RetrieveEvent(context.Background(), "evnt_test_1")

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/events/evnt_test_1", got.path)
	assert.Equal(t, "charge.complete", ev.Key)
	assert.Equal(t, "chrg_test_1", ev.DataID)
	assert.Equal(t, time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC), ev.Created)
}
