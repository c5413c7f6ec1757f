package audit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parseStored converts a stored decimal text column back to an exact value.
// The store only ever writes values it formatted itself, so a failure here
// means the database was modified externally.
func parseStored(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("corrupt stored amount %q: %w", s, err)
	}
	return d, nil
}
