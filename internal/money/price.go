package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("invalid price")

// Normalize parses a user-typed price that may carry a currency prefix,
// thousands separators and either comma or dot as the decimal separator
// (e.g. "R$ 1.234,56", "100,00", "12.5") and returns the canonical
// dot-separated value with exactly two fraction digits.
//
// When both separators are present the later one is the decimal point. A
// lone comma is treated as a decimal separator; repeated dots are treated
// as thousands separators. Anything that does not resolve to a non-negative
// number fails with ErrInvalidPrice.
func Normalize(input string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(input) {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	raw := b.String()

	if raw == "" || raw == "-" || raw == "," || raw == "." {
		return "", ErrInvalidPrice
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	var normalized string
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			normalized = strings.ReplaceAll(raw, ".", "")
			normalized = strings.ReplaceAll(normalized, ",", ".")
		} else {
			normalized = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		normalized = strings.ReplaceAll(raw, ",", ".")
	default:
		normalized = raw
		if strings.Count(normalized, ".") > 1 {
			normalized = strings.ReplaceAll(normalized, ".", "")
		}
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil || value.IsNegative() {
		return "", ErrInvalidPrice
	}
	return value.StringFixed(2), nil
}
