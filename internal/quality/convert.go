package quality

import (
	"strconv"
	"strings"
)

// ToFloat64 converts a decoded JSON value to float64. Numeric strings are
// accepted because several quality tools render their metrics as text.
// Returns false for anything that is not a number.
func ToFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToInt64 converts a decoded JSON value to int64, truncating floats.
// Returns false for anything that is not a number.
func ToInt64(v interface{}) (int64, bool) {
	f, ok := ToFloat64(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
