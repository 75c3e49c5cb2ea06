package payment

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// MethodInstallment is the installment method key. Fixed-term variants are
// registered as installment_<terms>.
const MethodInstallment = "installment"

const defaultInstallmentTerm = 3

var (
	installmentLimits   = limits(500, 500000)
	standardMonthlyRate = decimal.RequireFromString("0.65")
)

// InstallmentLimits describes what the installment method accepts.
type InstallmentLimits struct {
	MinAmount             decimal.Decimal `json:"min_amount"`
	MaxAmount             decimal.Decimal `json:"max_amount"`
	Currency              string          `json:"currency"`
	SupportedTerms        []int           `json:"supported_terms"`
	ZeroInterestAvailable bool            `json:"zero_interest_available"`
}

// Schedule is an installment payment plan.
type Schedule struct {
	Installments      []ScheduledInstallment `json:"schedule"`
	TotalInstallments int                    `json:"total_installments"`
	MonthlyAmount     decimal.Decimal        `json:"monthly_amount"`
	TotalAmount       decimal.Decimal        `json:"total_amount"`
	TotalInterest     decimal.Decimal        `json:"total_interest"`
	TotalPayable      decimal.Decimal        `json:"total_payable"`
	InterestRate      decimal.Decimal        `json:"interest_rate"`
	ZeroInterest      bool                   `json:"zero_interest"`
}

// ScheduledInstallment is one row of a Schedule.
type ScheduledInstallment struct {
	Number    int             `json:"installment_number"`
	DueDate   string          `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
}

// Installment charges a card over a number of monthly terms.
type Installment struct {
	*OnlineProcessor
	term int
}

// NewInstallment creates an installment processor. term 0 lets the payer pick
// the term through installment_terms and defaults to 3 months.
func NewInstallment(deps Deps, term int) *Installment {
	deps = deps.withDefaults()
	i := &Installment{term: term}
	method := MethodInstallment
	if term > 0 {
		method = fmt.Sprintf("%s_%d", MethodInstallment, term)
	} else {
		i.term = defaultInstallmentTerm
	}
	i.OnlineProcessor = NewOnlineProcessor(Policy{
		Method:        method,
		NeedsSource:   true,
		RefundSupport: true,
		Currencies:    []string{"THB"},
		Required:      []string{"amount", "currency", "card", "installment_terms"},
		AmountInRange: func(amount decimal.Decimal, _ string, _ Details) bool {
			return inRange(amount, installmentLimits.Min, installmentLimits.Max)
		},
		ValidateDetails: i.validateDetails,
		ChargeParams:    i.chargeParams,
		SourceParams:    i.sourceParams,
		Augment:         i.augmentInstallment,
	}, deps.Config.Defaults.Capture, deps)
	return i
}

// Term returns the default number of terms.
func (i *Installment) Term() int {
	return i.term
}

// SupportedTerms returns the configured installment terms.
func (i *Installment) SupportedTerms() []int {
	return slices.Clone(i.config.Methods.Installment.Terms)
}

// ZeroInterest reports whether the merchant absorbs installment interest.
func (i *Installment) ZeroInterest() bool {
	return i.config.Methods.Installment.ZeroInterest
}

// InterestRate returns the monthly interest rate, in percent, for the default term.
func (i *Installment) InterestRate() decimal.Decimal {
	return rateFor(i.term, i.ZeroInterest())
}

// rateFor returns the monthly rate for term. Three months and zero-interest plans carry none.
func rateFor(term int, zeroInterest bool) decimal.Decimal {
	if zeroInterest || term == 3 {
		return decimal.Zero
	}
	return standardMonthlyRate
}

// Limits returns the installment amount limits.
func (i *Installment) Limits() InstallmentLimits {
	return InstallmentLimits{
		MinAmount:             installmentLimits.Min,
		MaxAmount:             installmentLimits.Max,
		Currency:              "THB",
		SupportedTerms:        i.SupportedTerms(),
		ZeroInterestAvailable: i.ZeroInterest(),
	}
}

func (i *Installment) validTerm(term int) bool {
	return slices.Contains(i.config.Methods.Installment.Terms, term)
}

// termFor returns the term requested in details, or the default.
func (i *Installment) termFor(details Details) int {
	if t, ok := details.Int("installment_terms"); ok && i.validTerm(t) {
		return t
	}
	return i.term
}

func (i *Installment) validateDetails(details Details) bool {
	if !details.Has("card") || !validCard(details["card"], i.now()) {
		return false
	}
	if details.Has("installment_terms") {
		t, ok := details.Int("installment_terms")
		return ok && i.validTerm(t)
	}
	return true
}

// chargeParams leaves the card out: the installment source is the payment instrument.
func (i *Installment) chargeParams(_ context.Context, amount decimal.Decimal, currency string, details Details) (gateway.ChargeParams, error) {
	params := baseChargeParams(amount, currency, details)
	params.Capture = i.autoCapture
	return params, nil
}

// zeroInterestFor returns the zero_interest flag of details, or the configured default.
func (i *Installment) zeroInterestFor(details Details) bool {
	if z, ok := details.Bool("zero_interest"); ok {
		return z
	}
	return i.ZeroInterest()
}

func (i *Installment) sourceParams(amount decimal.Decimal, currency string, details Details) gateway.SourceParams {
	term := i.termFor(details)
	zero := i.zeroInterestFor(details)
	return gateway.SourceParams{
		Type:            fmt.Sprintf("%s_%d", MethodInstallment, term),
		Amount:          baseChargeParams(amount, currency, nil).Amount,
		Currency:        currency,
		InstallmentTerm: int64(term),
		ZeroInterest:    zero,
	}
}

func (i *Installment) augmentInstallment(rec *Payment, charge *gateway.Charge, details Details) {
	term := i.termFor(details)
	zero := i.zeroInterestFor(details)
	total := charge.DisplayAmount()
	rec.InstallmentCharge = &InstallmentCharge{
		InstallmentInfo: InstallmentInfo{
			Terms:         term,
			MonthlyAmount: total.Div(decimal.NewFromInt(int64(term))).Round(2),
			ZeroInterest:  zero,
			TotalAmount:   total,
			InterestRate:  rateFor(term, zero),
		},
		SupportsEarlySettlement: true,
	}
	rec.ProcessingType = "installment"
}

// PaymentSchedule splits amount into monthly installments. terms 0 uses the
// default term. Interest is charged monthly on the full amount at the term's rate.
func (i *Installment) PaymentSchedule(amount decimal.Decimal, terms int) (*Schedule, error) {
	if terms <= 0 {
		terms = i.term
	}
	if !amount.IsPositive() {
		return nil, &Failure{Code: CodeInvalidAmount, Message: "Invalid payment amount", PaymentMethod: i.PaymentMethod()}
	}
	if !i.validTerm(terms) {
		return nil, &Failure{Code: CodeInvalidDetails, Message: fmt.Sprintf("Unsupported installment term %d", terms), PaymentMethod: i.PaymentMethod()}
	}

	rate := rateFor(terms, i.ZeroInterest())
	monthly := amount.Div(decimal.NewFromInt(int64(terms))).Round(2)
	interest := amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	start := i.now().AddDate(0, 1, 0)

	s := &Schedule{
		Installments:      make([]ScheduledInstallment, 0, terms),
		TotalInstallments: terms,
		MonthlyAmount:     monthly,
		TotalAmount:       amount,
		TotalInterest:     decimal.Zero,
		TotalPayable:      decimal.Zero,
		InterestRate:      rate,
		ZeroInterest:      rate.IsZero(),
	}
	for n := 1; n <= terms; n++ {
		row := ScheduledInstallment{
			Number:    n,
			DueDate:   start.AddDate(0, n-1, 0).Format("2006-01-02"),
			Amount:    monthly,
			Principal: monthly,
			Interest:  interest,
			Total:     monthly.Add(interest),
		}
		s.TotalInterest = s.TotalInterest.Add(interest)
		s.TotalPayable = s.TotalPayable.Add(row.Total)
		s.Installments = append(s.Installments, row)
	}
	return s, nil
}
