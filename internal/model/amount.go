package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// maxFractionalDigits is the precision contract for amounts: four decimal
// places, exact.
const maxFractionalDigits = 4

// ParseAmount parses a positive fixed-point decimal with up to four
// fractional digits. The value is kept exact; binary floating point is
// never involved.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -maxFractionalDigits {
		return decimal.Decimal{}, fmt.Errorf("amount %q exceeds %d fractional digits", s, maxFractionalDigits)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount %q must be positive", s)
	}
	return d, nil
}

// FormatAmount renders a balance in its minimal representation: trailing
// fractional zeros dropped, whole numbers without a decimal point.
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
