package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParsePrice turns a submitted price into a positive integer.
// Strings are reduced to their digits first, so "Rp 15.000" becomes 15000.
// Numbers must already be whole and positive.
func ParsePrice(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return parsePriceDigits(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return positive(n)
		}
		f, err := x.Float64()
		if err != nil {
			return 0, priceError("must be a number")
		}
		return parsePriceFloat(f)
	case float64:
		return parsePriceFloat(x)
	case int:
		return positive(int64(x))
	case int64:
		return positive(x)
	default:
		return 0, priceError("must be a number")
	}
}

func parsePriceDigits(s string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, priceError("must contain digits")
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, priceError("out of range")
	}
	return positive(n)
}

func parsePriceFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, priceError("must be finite")
	}
	if f != math.Trunc(f) {
		return 0, priceError("must be a whole number")
	}
	if f >= math.MaxInt64 {
		return 0, priceError("out of range")
	}
	return positive(int64(f))
}

func positive(n int64) (int64, error) {
	if n <= 0 {
		return 0, priceError("must be greater than zero")
	}
	return n, nil
}

func priceError(msg string) error {
	return &FieldError{Field: "price", Message: msg}
}
