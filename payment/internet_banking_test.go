package payment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/a2n2k3p4/omise-payments/config"
	"github.com/a2n2k3p4/omise-payments/gateway"
	"github.com/a2n2k3p4/omise-payments/gateway/gatewaytest"
	"github.com/a2n2k3p4/omise-payments/payment"
)

func TestInternetBanking_MethodKey(t *testing.T) {
	deps := testDeps(new(gatewaytest.MockGateway))

	assert.Equal(t, "internet_banking_scb", payment.NewInternetBanking(deps, "").PaymentMethod())
	assert.Equal(t, "internet_banking_bbl", payment.NewInternetBanking(deps, " BBL ").PaymentMethod())
	assert.True(t, payment.NewInternetBanking(deps, "ktb").IsOffline())
}

func TestInternetBanking_CreatePayment(t *testing.T) {
	const redirect = "https://bank.example.com/omise/redirect"

	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, gateway.SourceParams{
		Type:     "internet_banking_bbl",
		Amount:   50000,
		Currency: "THB",
	}).Return(&gateway.Source{ID: "src_test_ib", Type: "internet_banking_bbl", Flow: "redirect"}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.MatchedBy(func(p gateway.ChargeParams) bool {
		return p.Source == "src_test_ib" && p.Amount == 50000 && p.ReturnURI == "https://shop.example.com/return"
	})).Return(&gateway.Charge{
		ID:           "chrg_test_ib",
		Status:       gateway.StatusPending,
		Amount:       50000,
		Currency:     "thb",
		AuthorizeURI: redirect,
	}, nil).Once()

	res := payment.NewInternetBanking(testDeps(gw), "scb").CreatePayment(context.Background(), amount("500"), "THB", payment.Details{
		"bank_code":  "bbl",
		"return_uri": "https://shop.example.com/return",
	})

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure())
	rec := res.Payment()
	assert.Equal(t, "internet_banking_scb", rec.PaymentMethod)
	assert.True(t, rec.IsOffline)
	assert.Equal(t, 30, rec.Offline.ExpiresInMinutes)

	in := rec.Instructions
	require.NotNil(t, in)
	assert.Equal(t, "bank_redirect", in.PaymentType)
	assert.Equal(t, "Bangkok Bank", in.BankName)
	assert.Equal(t, "bbl", in.BankCode)
	require.Len(t, in.Steps, 6)
	assert.Equal(t, `Click the "Pay with Bangkok Bank" button below`, in.Steps[0])
	assert.Contains(t, in.Tips, "The payment session will expire in 30 minutes")
	assert.Equal(t, redirect, in.RedirectURL)
	assert.Equal(t, "GET", in.RedirectMethod)

	m := toMap(t, res)
	assert.Equal(t, "bank_redirect", m["payment_type"])
	assert.Equal(t, redirect, m["redirect_url"])
	gw.AssertExpectations(t)
}

func TestInternetBanking_DefaultBankAndReturnURI(t *testing.T) {
	cfg := config.Default().Payment
	cfg.Defaults.ReturnURI = "https://shop.example.com/return"

	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, mock.MatchedBy(func(p gateway.SourceParams) bool {
		return p.Type == "internet_banking_ktb"
	})).Return(&gateway.Source{ID: "src_test_ktb"}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.MatchedBy(func(p gateway.ChargeParams) bool {
		return p.ReturnURI == "https://shop.example.com/return"
	})).Return(&gateway.Charge{ID: "chrg_test_ktb", Status: gateway.StatusPending, Amount: 100000, Currency: "thb"}, nil).Once()

	deps := testDeps(gw)
	deps.Config = &cfg

	res := payment.NewInternetBanking(deps, "ktb").CreatePayment(context.Background(), amount("1000"), "THB", nil)

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure())
	assert.Equal(t, "Krung Thai Bank", res.Payment().Instructions.BankName)
	gw.AssertExpectations(t)
}

func TestInternetBanking_ValidatePaymentDetails(t *testing.T) {
	ib := payment.NewInternetBanking(testDeps(new(gatewaytest.MockGateway)), "scb")

	tests := []struct {
		name    string
		details payment.Details
		valid   bool
	}{
		{"default bank", nil, true},
		{"known bank", payment.Details{"bank_code": "kbank"}, true},
		{"bank code is case-insensitive", payment.Details{"bank_code": "UOB"}, true},
		{"unknown bank", payment.Details{"bank_code": "xyz"}, false},
		{"non-string bank", payment.Details{"bank_code": 7}, false},
		{"valid return uri", payment.Details{"bank_code": "bay", "return_uri": "https://shop.example.com/done"}, true},
		{"malformed return uri", payment.Details{"bank_code": "bay", "return_uri": "::::"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ib.ValidatePaymentDetails(tt.details))
		})
	}
}

func TestInternetBanking_UnknownBankIsInvalidDetails(t *testing.T) {
	gw := new(gatewaytest.MockGateway)

	res := payment.NewInternetBanking(testDeps(gw), "scb").CreatePayment(context.Background(), amount("500"), "THB", payment.Details{"bank_code": "xyz"})

	requireFailure(t, res, payment.CodeInvalidDetails)
	assertNoGatewayCalls(t, gw)
}

func TestInternetBanking_DisabledBank(t *testing.T) {
	cfg := config.Default().Payment
	uob := cfg.Methods.InternetBanking.Banks["uob"]
	uob.Enabled = false
	cfg.Methods.InternetBanking.Banks["uob"] = uob

	deps := testDeps(new(gatewaytest.MockGateway))
	deps.Config = &cfg
	ib := payment.NewInternetBanking(deps, "scb")

	banks := ib.SupportedBanks()
	assert.Len(t, banks, 7)
	assert.NotContains(t, banks, "uob")
	assert.Equal(t, "Siam Commercial Bank", banks["scb"])
	assert.False(t, ib.ValidatePaymentDetails(payment.Details{"bank_code": "uob"}))
	assert.Len(t, payment.KnownBanks(), 8)
}

func TestInternetBanking_PaymentLimits(t *testing.T) {
	deps := testDeps(new(gatewaytest.MockGateway))

	gsb := payment.NewInternetBanking(deps, "gsb").PaymentLimits()
	assert.True(t, gsb.MinAmount.Equal(amount("10")))
	assert.True(t, gsb.MaxAmount.Equal(amount("500000")))
	assert.True(t, gsb.DailyLimit.Equal(amount("5000000")))
	assert.Equal(t, 30, gsb.ExpirationMinutes)

	scb := payment.NewInternetBanking(deps, "scb").PaymentLimits()
	assert.True(t, scb.MaxAmount.Equal(amount("2000000")))
}

func TestInternetBanking_PollingConfig(t *testing.T) {
	pc := payment.NewInternetBanking(testDeps(new(gatewaytest.MockGateway)), "").PollingConfig()

	assert.True(t, pc.Enabled)
	assert.Equal(t, 5, pc.IntervalSeconds)
	assert.Equal(t, 360, pc.MaxAttempts)
}
