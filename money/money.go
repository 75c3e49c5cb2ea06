// Package money converts amounts between a currency's display unit (e.g. 100.00 THB)
// and the integer subunit the gateway expects (e.g. 10000 satang).
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists currencies that have no minor unit.
var zeroDecimal = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
}

// Factor returns how many subunits make up one display unit of currency.
func Factor(currency string) int64 {
	if _, ok := zeroDecimal[strings.ToUpper(currency)]; ok {
		return 1
	}
	return 100
}

// ToSubunit converts a display amount to subunits, rounding to the nearest integer.
func ToSubunit(amount decimal.Decimal, currency string) int64 {
	return amount.Mul(decimal.NewFromInt(Factor(currency))).Round(0).IntPart()
}

// ToCurrencyUnit converts subunits back to a display amount.
func ToCurrencyUnit(subunit int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(subunit).Div(decimal.NewFromInt(Factor(currency)))
}

// Places is the number of decimal places a display amount carries in currency.
func Places(currency string) int32 {
	if Factor(currency) == 1 {
		return 0
	}
	return 2
}
