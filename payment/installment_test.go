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

func TestInstallment_MethodKey(t *testing.T) {
	deps := testDeps(new(gatewaytest.MockGateway))

	open := payment.NewInstallment(deps, 0)
	assert.Equal(t, payment.MethodInstallment, open.PaymentMethod())
	assert.Equal(t, 3, open.Term())

	fixed := payment.NewInstallment(deps, 10)
	assert.Equal(t, "installment_10", fixed.PaymentMethod())
	assert.Equal(t, 10, fixed.Term())
	assert.Equal(t, []string{"THB"}, fixed.SupportedCurrencies())
	assert.False(t, fixed.IsOffline())
}

func TestInstallment_RejectsUnsupportedTerm(t *testing.T) {
	gw := new(gatewaytest.MockGateway)
	in := payment.NewInstallment(testDeps(gw), 0)
	details := payment.Details{"card": "tokn_test_123", "installment_terms": 5}

	assert.False(t, in.ValidatePaymentDetails(details))

	res := in.CreatePayment(context.Background(), amount("3000"), "THB", details)
	requireFailure(t, res, payment.CodeInvalidDetails)
	assertNoGatewayCalls(t, gw)
}

func TestInstallment_ValidatePaymentDetails(t *testing.T) {
	in := payment.NewInstallment(testDeps(new(gatewaytest.MockGateway)), 0)

	assert.True(t, in.ValidatePaymentDetails(payment.Details{"card": "tokn_test_123"}))
	assert.True(t, in.ValidatePaymentDetails(payment.Details{"card": "tokn_test_123", "installment_terms": 36}))
	assert.True(t, in.ValidatePaymentDetails(payment.Details{"card": "tokn_test_123", "installment_terms": "6"}))
	assert.False(t, in.ValidatePaymentDetails(payment.Details{"installment_terms": 6}))
	assert.False(t, in.ValidatePaymentDetails(payment.Details{"card": "tokn_test_123", "installment_terms": "six"}))
}

func TestInstallment_CreatePayment(t *testing.T) {
	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, gateway.SourceParams{
		Type:            "installment_6",
		Amount:          600000,
		Currency:        "THB",
		InstallmentTerm: 6,
	}).Return(&gateway.Source{ID: "src_test_inst", Type: "installment_6", InstallmentTerm: 6}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.MatchedBy(func(p gateway.ChargeParams) bool {
		return p.Source == "src_test_inst" && p.Card == "" && p.Amount == 600000 && p.Currency == "THB"
	})).Return(&gateway.Charge{
		ID:         "chrg_test_inst",
		Status:     gateway.StatusSuccessful,
		Amount:     600000,
		Currency:   "thb",
		Authorized: true,
		Paid:       true,
	}, nil).Once()

	res := payment.NewInstallment(testDeps(gw), 0).CreatePayment(context.Background(), amount("6000"), "THB", payment.Details{
		"card":              "tokn_test_123",
		"installment_terms": 6,
	})

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure())
	rec := res.Payment()
	assert.False(t, rec.IsOffline)
	assert.Equal(t, "installment", rec.ProcessingType)
	require.NotNil(t, rec.InstallmentCharge)
	info := rec.InstallmentCharge.InstallmentInfo
	assert.Equal(t, 6, info.Terms)
	assert.True(t, info.MonthlyAmount.Equal(amount("1000")))
	assert.True(t, info.TotalAmount.Equal(amount("6000")))
	assert.True(t, info.InterestRate.Equal(amount("0.65")))
	assert.False(t, info.ZeroInterest)
	assert.True(t, rec.InstallmentCharge.SupportsEarlySettlement)

	m := toMap(t, res)
	assert.Contains(t, m, "installment_info")
	assert.Equal(t, true, m["supports_early_settlement"])
	gw.AssertExpectations(t)
	gw.AssertNotCalled(t, "CreateToken", mock.Anything, mock.Anything)
}

func TestInstallment_ZeroInterestFromDetails(t *testing.T) {
	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, mock.MatchedBy(func(p gateway.SourceParams) bool {
		return p.Type == "installment_3" && p.InstallmentTerm == 3 && p.ZeroInterest
	})).Return(&gateway.Source{ID: "src_test_zero"}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.Anything).
		Return(&gateway.Charge{ID: "chrg_test_zero", Status: gateway.StatusSuccessful, Amount: 300000, Currency: "thb"}, nil).Once()

	res := payment.NewInstallment(testDeps(gw), 0).CreatePayment(context.Background(), amount("3000"), "THB", payment.Details{
		"card":          "tokn_test_123",
		"zero_interest": true,
	})

	require.True(t, res.OK())
	gw.AssertExpectations(t)
}

func TestInstallment_InfoFollowsRequestedZeroInterest(t *testing.T) {
	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, mock.MatchedBy(func(p gateway.SourceParams) bool {
		return p.Type == "installment_6" && p.ZeroInterest
	})).Return(&gateway.Source{ID: "src_test_zero"}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.Anything).
		Return(&gateway.Charge{ID: "chrg_test_zero", Status: gateway.StatusSuccessful, Amount: 600000, Currency: "thb"}, nil).Once()

	res := payment.NewInstallment(testDeps(gw), 0).CreatePayment(context.Background(), amount("6000"), "THB", payment.Details{
		"card":              "tokn_test_123",
		"installment_terms": 6,
		"zero_interest":     true,
	})

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure())
	info := res.Payment().InstallmentCharge.InstallmentInfo
	assert.True(t, info.ZeroInterest)
	assert.True(t, info.InterestRate.IsZero())
	gw.AssertExpectations(t)
}

func TestInstallment_RequestCanOptOutOfZeroInterest(t *testing.T) {
	cfg := config.Default().Payment
	cfg.Methods.Installment.ZeroInterest = true

	gw := new(gatewaytest.MockGateway)
	gw.On("CreateSource", mock.Anything, mock.MatchedBy(func(p gateway.SourceParams) bool {
		return !p.ZeroInterest
	})).Return(&gateway.Source{ID: "src_test_rate"}, nil).Once()
	gw.On("CreateCharge", mock.Anything, mock.Anything).
		Return(&gateway.Charge{ID: "chrg_test_rate", Status: gateway.StatusSuccessful, Amount: 600000, Currency: "thb"}, nil).Once()

	deps := testDeps(gw)
	deps.Config = &cfg
	res := payment.NewInstallment(deps, 6).CreatePayment(context.Background(), amount("6000"), "THB", payment.Details{
		"card":          "tokn_test_123",
		"zero_interest": false,
	})

	require.True(t, res.OK(), "unexpected failure: %v", res.Failure())
	info := res.Payment().InstallmentCharge.InstallmentInfo
	assert.False(t, info.ZeroInterest)
	assert.True(t, info.InterestRate.Equal(amount("0.65")))
	gw.AssertExpectations(t)
}

func TestInstallment_InterestRate(t *testing.T) {
	deps := testDeps(new(gatewaytest.MockGateway))

	assert.True(t, payment.NewInstallment(deps, 3).InterestRate().IsZero())
	assert.True(t, payment.NewInstallment(deps, 6).InterestRate().Equal(amount("0.65")))

	cfg := config.Default().Payment
	cfg.Methods.Installment.ZeroInterest = true
	deps.Config = &cfg
	in := payment.NewInstallment(deps, 6)
	assert.True(t, in.InterestRate().IsZero())
	assert.True(t, in.ZeroInterest())
}

func TestInstallment_PaymentSchedule(t *testing.T) {
	in := payment.NewInstallment(testDeps(new(gatewaytest.MockGateway)), 0)

	t.Run("three months is interest free", func(t *testing.T) {
		s, err := in.PaymentSchedule(amount("3000"), 3)
		require.NoError(t, err)

		assert.Equal(t, 3, s.TotalInstallments)
		assert.True(t, s.ZeroInterest)
		require.Len(t, s.Installments, 3)
		assert.Equal(t, []string{"2026-07-15", "2026-08-15", "2026-09-15"}, []string{
			s.Installments[0].DueDate, s.Installments[1].DueDate, s.Installments[2].DueDate,
		})
		for i, row := range s.Installments {
			assert.Equal(t, i+1, row.Number)
			assert.True(t, row.Amount.Equal(amount("1000")))
			assert.True(t, row.Interest.IsZero())
			assert.True(t, row.Total.Equal(amount("1000")))
		}
		assert.True(t, s.TotalPayable.Equal(amount("3000")))
	})

	t.Run("longer terms carry the monthly rate", func(t *testing.T) {
		s, err := in.PaymentSchedule(amount("6000"), 6)
		require.NoError(t, err)

		assert.False(t, s.ZeroInterest)
		assert.True(t, s.InterestRate.Equal(amount("0.65")))
		require.Len(t, s.Installments, 6)
		assert.True(t, s.Installments[0].Principal.Equal(amount("1000")))
		assert.True(t, s.Installments[0].Interest.Equal(amount("39")))
		assert.True(t, s.Installments[0].Total.Equal(amount("1039")))
		assert.True(t, s.TotalInterest.Equal(amount("234")))
		assert.True(t, s.TotalPayable.Equal(amount("6234")))
		assert.Equal(t, "2026-12-15", s.Installments[5].DueDate)
	})

	t.Run("monthly amount is rounded", func(t *testing.T) {
		s, err := in.PaymentSchedule(amount("1000"), 3)
		require.NoError(t, err)
		assert.True(t, s.MonthlyAmount.Equal(amount("333.33")))
	})

	t.Run("defaults to the processor term", func(t *testing.T) {
		s, err := in.PaymentSchedule(amount("3000"), 0)
		require.NoError(t, err)
		assert.Equal(t, 3, s.TotalInstallments)
	})

	t.Run("unsupported term", func(t *testing.T) {
		_, err := in.PaymentSchedule(amount("3000"), 5)
		f, ok := payment.AsFailure(err)
		require.True(t, ok)
		assert.Equal(t, payment.CodeInvalidDetails, f.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := in.PaymentSchedule(amount("0"), 3)
		f, ok := payment.AsFailure(err)
		require.True(t, ok)
		assert.Equal(t, payment.CodeInvalidAmount, f.Code)
	})
}

func TestInstallment_Limits(t *testing.T) {
	l := payment.NewInstallment(testDeps(new(gatewaytest.MockGateway)), 0).Limits()

	assert.True(t, l.MinAmount.Equal(amount("500")))
	assert.True(t, l.MaxAmount.Equal(amount("500000")))
	assert.Equal(t, "THB", l.Currency)
	assert.Equal(t, []int{3, 4, 6, 9, 10, 12, 18, 24, 36}, l.SupportedTerms)
	assert.False(t, l.ZeroInterestAvailable)
}
