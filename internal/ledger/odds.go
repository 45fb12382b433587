package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidOdds = errors.New("invalid odds")

// ParseOdds converte odds decimais ("2.5") ou fracionárias ("5/2") no multiplicador
// de lucro. "evs"/"evens" equivalem a 1/1.
func ParseOdds(s string) (decimal.Decimal, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch raw {
	case "evs", "evens", "even":
		return decimal.NewFromInt(1), nil
	}

	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil || !n.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOdds, s)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || !d.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOdds, s)
		}
		return n.Div(d), nil
	}

	o, err := decimal.NewFromString(raw)
	if err != nil || !o.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidOdds, s)
	}
	return o, nil
}
