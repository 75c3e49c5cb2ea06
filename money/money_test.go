package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToSubunit(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"100.00", "THB", 10000},
		{"100", "thb", 10000},
		{"0.01", "USD", 1},
		{"19.995", "EUR", 2000},
		{"1500", "JPY", 1500},
		{"1500.4", "JPY", 1500},
		{"0", "THB", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			got := ToSubunit(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToCurrencyUnit(t *testing.T) {
	assert.True(t, decimal.RequireFromString("100").Equal(ToCurrencyUnit(10000, "THB")))
	assert.True(t, decimal.RequireFromString("0.05").Equal(ToCurrencyUnit(5, "SGD")))
	assert.True(t, decimal.RequireFromString("1500").Equal(ToCurrencyUnit(1500, "JPY")))
}

func TestRoundTrip(t *testing.T) {
	currencies := []string{"THB", "USD", "EUR", "GBP", "SGD", "JPY", "AUD", "CAD", "CHF", "CNY", "DKK", "HKD", "MYR"}
	amounts := []string{"0.01", "1", "20", "99.99", "150.50", "200000", "123456.78"}

	for _, c := range currencies {
		for _, a := range amounts {
			amount := decimal.RequireFromString(a).Round(Places(c))
			back := ToCurrencyUnit(ToSubunit(amount, c), c)
			assert.Truef(t, amount.Equal(back), "%s %s round-tripped to %s", a, c, back)
		}
	}
}

func TestFactor(t *testing.T) {
	assert.Equal(t, int64(100), Factor("THB"))
	assert.Equal(t, int64(1), Factor("jpy"))
	assert.Equal(t, int32(0), Places("JPY"))
	assert.Equal(t, int32(2), Places("USD"))
}
