package payment

import (
	"fmt"
	"slices"

	"github.com/a2n2k3p4/omise-payments/config"
)

// NewManagerFromConfig builds a manager whose table matches the enabled
// methods in cfg. Installment is registered as installment and as
// installment_<term> for every configured term; internet banking as
// internet_banking and internet_banking_<bank> for every enabled bank.
func NewManagerFromConfig(cfg *config.PaymentConfig, deps Deps) *Manager {
	deps.Config = cfg
	deps = deps.withDefaults()
	methods := deps.Config.Methods

	f := NewFactory(deps)
	if !methods.CreditCard.Enabled {
		f.Unregister(MethodCreditCard).Unregister("card")
	}
	if !methods.PromptPay.Enabled {
		f.Unregister(MethodPromptPay)
	}

	if methods.Installment.Enabled {
		f.Register(MethodInstallment, func(d Deps) (Processor, error) { return NewInstallment(d, 0), nil })
		for _, term := range methods.Installment.Terms {
			f.Register(fmt.Sprintf("%s_%d", MethodInstallment, term), func(d Deps) (Processor, error) {
				return NewInstallment(d, term), nil
			})
		}
	}

	if methods.InternetBanking.Enabled {
		banks := enabledBanks(methods.InternetBanking)
		if slices.Contains(banks, defaultBank) {
			f.Register(MethodInternetBanking, func(d Deps) (Processor, error) { return NewInternetBanking(d, ""), nil })
		}
		for _, bank := range banks {
			f.Register(MethodInternetBanking+"_"+bank, func(d Deps) (Processor, error) {
				return NewInternetBanking(d, bank), nil
			})
		}
	}

	return NewManager(f, deps.Logger)
}

// enabledBanks returns the known banks not disabled in cfg, sorted.
func enabledBanks(cfg config.InternetBankingConfig) []string {
	banks := make([]string, 0, len(knownBanks))
	for code := range knownBanks {
		if b, ok := cfg.Banks[code]; ok && !b.Enabled {
			continue
		}
		banks = append(banks, code)
	}
	slices.Sort(banks)
	return banks
}
