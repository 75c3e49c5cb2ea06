package payment

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Details is the open key-value bag of method-specific payment parameters.
type Details map[string]any

// Has reports whether key is present with a non-nil value.
func (d Details) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// String returns the value of key when it is a string.
func (d Details) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Bool returns the value of key as a bool. "true"/"false" strings are accepted.
func (d Details) Bool(key string) (bool, bool) {
	switch v := d[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// Int returns the value of key as an int. Whole floats and numeric strings are accepted.
func (d Details) Int(key string) (int, bool) {
	switch v := d[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Map returns the value of key as a nested bag.
func (d Details) Map(key string) (Details, bool) {
	return asDetails(d[key])
}

func asDetails(v any) (Details, bool) {
	switch m := v.(type) {
	case Details:
		return m, true
	case map[string]any:
		return Details(m), true
	case map[string]string:
		out := make(Details, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// decimalValue converts the numeric forms an amount arrives in.
func decimalValue(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	}
	return decimal.Zero, false
}
