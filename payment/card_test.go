package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		number string
		valid  bool
	}{
		{"4242424242424242", true},
		{"4242424242424241", false},
		{"4242 4242 4242 4242", true},
		{"5555555555554444", true},
		{"378282246310005", true},
		{"4111111111111112", false},
		{"", false},
		{"abcd", false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.valid, LuhnValid(tt.number))
		})
	}
}

func TestCardBrand(t *testing.T) {
	tests := []struct {
		number string
		brand  string
	}{
		{"4242424242424242", "visa"},
		{"5555555555554444", "mastercard"},
		{"2223003122003222", "mastercard"},
		{"378282246310005", "amex"},
		{"6011111111111117", "discover"},
		{"6500000000000002", "discover"},
		{"3530111333300000", "jcb"},
		{"9999999999999999", ""},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.brand, CardBrand(tt.number))
		})
	}
}

func TestExpiryValid(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, ExpiryValid(6, 2026, now))
	assert.True(t, ExpiryValid(1, 2027, now))
	assert.False(t, ExpiryValid(5, 2026, now))
	assert.False(t, ExpiryValid(12, 2025, now))
	assert.False(t, ExpiryValid(0, 2030, now))
	assert.False(t, ExpiryValid(13, 2030, now))
}

func TestIsCardToken(t *testing.T) {
	assert.True(t, IsCardToken("tokn_test_123"))
	assert.True(t, IsCardToken("tokn_5x9a0c"))
	assert.False(t, IsCardToken("tokn_"))
	assert.False(t, IsCardToken("card_test_123"))
	assert.False(t, IsCardToken("tokn_bad-token"))
}

func TestValidCard(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, validCard("tokn_test_123", now))
	assert.True(t, validCard(map[string]any{
		"number":           "4242424242424242",
		"expiration_month": float64(12),
		"expiration_year":  float64(2030),
	}, now))
	assert.True(t, validCard(map[string]string{
		"number":           "4242 4242 4242 4242",
		"expiration_month": "7",
		"expiration_year":  "2026",
	}, now))
	assert.False(t, validCard(map[string]any{
		"number":           "4242424242424241",
		"expiration_month": 12,
		"expiration_year":  2030,
	}, now))
	assert.False(t, validCard(map[string]any{"number": "4242424242424242"}, now))
	assert.False(t, validCard(42, now))
	assert.False(t, validCard(nil, now))
}
