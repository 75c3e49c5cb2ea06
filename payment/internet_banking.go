package payment

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/a2n2k3p4/omise-payments/gateway"
)

// MethodInternetBanking is the prefix of the internet banking method keys,
// one per bank: internet_banking_scb, internet_banking_bbl and so on.
const MethodInternetBanking = "internet_banking"

const defaultBank = "scb"

// knownBanks lists the Thai banks Omise supports for internet banking.
var knownBanks = map[string]string{
	"scb":   "Siam Commercial Bank",
	"bbl":   "Bangkok Bank",
	"ktb":   "Krung Thai Bank",
	"kbank": "Kasikorn Bank",
	"bay":   "Bank of Ayudhya (Krungsri)",
	"gsb":   "Government Savings Bank",
	"ttb":   "TMBThanachart Bank",
	"uob":   "United Overseas Bank",
}

// InternetBanking redirects the payer to their bank's online banking site.
type InternetBanking struct {
	*OfflineProcessor
	bank string
}

// NewInternetBanking creates an internet banking processor for bank. An empty
// bank selects SCB.
func NewInternetBanking(deps Deps, bank string) *InternetBanking {
	deps = deps.withDefaults()
	bank = strings.ToLower(strings.TrimSpace(bank))
	if bank == "" {
		bank = defaultBank
	}
	ib := &InternetBanking{bank: bank}
	ib.OfflineProcessor = NewOfflineProcessor(Policy{
		Method:        MethodInternetBanking + "_" + bank,
		NeedsSource:   true,
		RefundSupport: true,
		Currencies:    []string{"THB"},
		Required:      []string{"amount", "currency", "bank_code"},
		AmountInRange: func(amount decimal.Decimal, _ string, details Details) bool {
			l, ok := ib.bankLimits(ib.bankFor(details))
			if !ok {
				// Unknown banks fail details validation.
				return true
			}
			return inRange(amount, l.Min, l.Max)
		},
		ValidateDetails: ib.validateDetails,
		ChargeParams:    ib.chargeParams,
		SourceParams: func(amount decimal.Decimal, currency string, details Details) gateway.SourceParams {
			return gateway.SourceParams{
				Type:     MethodInternetBanking + "_" + ib.bankFor(details),
				Amount:   baseChargeParams(amount, currency, nil).Amount,
				Currency: currency,
			}
		},
	}, OfflinePolicy{
		ExpiresInMinutes: func() int { return ib.config.Methods.InternetBanking.ExpirationMinutes },
		Polling: PollingConfig{
			Enabled:         true,
			IntervalSeconds: 5,
			MaxAttempts:     360,
			TimeoutAction:   "expire_payment",
		},
		Instructions: ib.instructions,
	}, deps)
	return ib
}

// Bank returns the processor's default bank code.
func (ib *InternetBanking) Bank() string {
	return ib.bank
}

// SupportedBanks returns the enabled banks by code.
func (ib *InternetBanking) SupportedBanks() map[string]string {
	out := make(map[string]string, len(knownBanks))
	for _, code := range enabledBanks(ib.config.Methods.InternetBanking) {
		out[code] = ib.bankName(code)
	}
	return out
}

// PaymentLimits returns the limits of the processor's default bank.
func (ib *InternetBanking) PaymentLimits() OfflineLimits {
	l, _ := ib.bankLimits(ib.bank)
	return OfflineLimits{
		MinAmount:           l.Min,
		MaxAmount:           l.Max,
		Currency:            "THB",
		ExpirationMinutes:   ib.ExpiresInMinutes(),
		DailyLimit:          decimal.NewFromInt(5000000),
		PerTransactionLimit: l.Max,
	}
}

// bankLimits returns the configured range for an enabled known bank. Banks
// without configuration use 10 to 2,000,000 THB.
func (ib *InternetBanking) bankLimits(code string) (Limits, bool) {
	if _, ok := ib.SupportedBanks()[code]; !ok {
		return Limits{}, false
	}
	cfg, ok := ib.config.Methods.InternetBanking.Banks[code]
	if !ok || cfg.Max <= 0 {
		return limits(10, 2000000), true
	}
	return Limits{Min: decimal.NewFromFloat(cfg.Min), Max: decimal.NewFromFloat(cfg.Max)}, true
}

func (ib *InternetBanking) bankFor(details Details) string {
	if code, ok := details.String("bank_code"); ok && code != "" {
		return strings.ToLower(code)
	}
	return ib.bank
}

func (ib *InternetBanking) bankName(code string) string {
	if cfg, ok := ib.config.Methods.InternetBanking.Banks[code]; ok && cfg.Name != "" {
		return cfg.Name
	}
	if name, ok := knownBanks[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

func (ib *InternetBanking) validateDetails(details Details) bool {
	if details.Has("bank_code") {
		code, ok := details.String("bank_code")
		if !ok {
			return false
		}
		if _, ok := ib.SupportedBanks()[strings.ToLower(code)]; !ok {
			return false
		}
	} else if _, ok := ib.SupportedBanks()[ib.bank]; !ok {
		return false
	}
	return validReturnURI(details)
}

func (ib *InternetBanking) chargeParams(_ context.Context, amount decimal.Decimal, currency string, details Details) (gateway.ChargeParams, error) {
	params := baseChargeParams(amount, currency, details)
	if params.ReturnURI == "" {
		params.ReturnURI = ib.config.Defaults.ReturnURI
	}
	return params, nil
}

func (ib *InternetBanking) instructions(rec *Payment, details Details) *Instructions {
	code := ib.bankFor(details)
	name := ib.bankName(code)
	in := &Instructions{
		PaymentType: "bank_redirect",
		BankName:    name,
		BankCode:    code,
		Steps: []string{
			fmt.Sprintf("Click the \"Pay with %s\" button below", name),
			fmt.Sprintf("You will be redirected to %s secure login page", name),
			"Login with your internet banking credentials",
			"Review and confirm the payment details",
			"Complete the payment authorization",
			"You will be redirected back to our website",
		},
		Tips: []string{
			"Make sure you have internet banking enabled for your account",
			"Keep your banking credentials secure and do not share them",
			fmt.Sprintf("The payment session will expire in %d minutes", ib.ExpiresInMinutes()),
			"Do not close the browser window during the payment process",
		},
	}
	if rec.AuthorizeURI != "" {
		in.RedirectURL = rec.AuthorizeURI
		in.RedirectMethod = "GET"
	}
	return in
}

// KnownBanks returns every bank code internet banking can be configured for.
func KnownBanks() map[string]string {
	return maps.Clone(knownBanks)
}
