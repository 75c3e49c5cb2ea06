package payment

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	tokenPattern = regexp.MustCompile(`^tokn_[A-Za-z0-9_]+$`)

	brandPatterns = []struct {
		brand   string
		pattern *regexp.Regexp
	}{
		{"visa", regexp.MustCompile(`^4`)},
		{"mastercard", regexp.MustCompile(`^(5[1-5]|2[2-7])`)},
		{"amex", regexp.MustCompile(`^3[47]`)},
		{"discover", regexp.MustCompile(`^6(011|5)`)},
		{"jcb", regexp.MustCompile(`^35`)},
	}
)

// IsCardToken reports whether s looks like a card token.
func IsCardToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// LuhnValid reports whether number passes the mod-10 checksum. Non-digits are ignored.
func LuhnValid(number string) bool {
	digits := onlyDigits(number)
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// CardBrand detects the card brand from the leading digits, or returns "".
func CardBrand(number string) string {
	digits := onlyDigits(number)
	for _, b := range brandPatterns {
		if b.pattern.MatchString(digits) {
			return b.brand
		}
	}
	return ""
}

// ExpiryValid reports whether month/year is a real month not earlier than now.
func ExpiryValid(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return false
	}
	y, m := now.Year(), int(now.Month())
	return year > y || (year == y && month >= m)
}

// rawCard is card data submitted instead of a token.
type rawCard struct {
	Name            string
	Number          string
	ExpirationMonth int
	ExpirationYear  int
	SecurityCode    string
}

func parseRawCard(card Details) (rawCard, bool) {
	number, ok := card.String("number")
	if !ok {
		return rawCard{}, false
	}
	month, ok := card.Int("expiration_month")
	if !ok {
		return rawCard{}, false
	}
	year, ok := card.Int("expiration_year")
	if !ok {
		return rawCard{}, false
	}
	rc := rawCard{Number: onlyDigits(number), ExpirationMonth: month, ExpirationYear: year}
	rc.Name, _ = card.String("name")
	if code, ok := card.String("security_code"); ok {
		rc.SecurityCode = code
	} else if n, ok := card.Int("security_code"); ok {
		rc.SecurityCode = strconv.Itoa(n)
	}
	return rc, true
}

// validCardData checks number, checksum and expiry of raw card data.
func validCardData(card Details, now time.Time) bool {
	rc, ok := parseRawCard(card)
	if !ok {
		return false
	}
	return LuhnValid(rc.Number) && ExpiryValid(rc.ExpirationMonth, rc.ExpirationYear, now)
}

// validCard accepts a token string or raw card data.
func validCard(v any, now time.Time) bool {
	switch c := v.(type) {
	case string:
		return IsCardToken(c)
	default:
		data, ok := asDetails(v)
		return ok && validCardData(data, now)
	}
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
