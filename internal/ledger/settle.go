package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNotTerminal = errors.New("outcome is not terminal")

// PlacedPolicy define o retorno de uma aposta "Placed"
type PlacedPolicy string

const (
	// PlacedStakeBack devolve o stake (break-even). Padrão.
	PlacedStakeBack PlacedPolicy = "stake"
	// PlacedHalfReturn paga metade do retorno de uma vitória
	PlacedHalfReturn PlacedPolicy = "half"
)

// ParsePlacedPolicy aceita "stake" ou "half"; vazio resolve para PlacedStakeBack
func ParsePlacedPolicy(s string) (PlacedPolicy, error) {
	switch PlacedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlacedStakeBack:
		return PlacedStakeBack, nil
	case PlacedHalfReturn:
		return PlacedHalfReturn, nil
	}
	return "", fmt.Errorf("unknown placed policy %q", s)
}

var two = decimal.NewFromInt(2)

// Settle calcula o retorno de uma aposta liquidada com outcome.
//
//	Won:    amount*odds + amount
//	Placed: amount (stake) ou (amount*odds + amount)/2 (half)
//	Lost:   0
//
// O resultado é arredondado em centavos.
func Settle(amount float64, odds string, outcome Outcome, policy PlacedPolicy) (float64, error) {
	if !outcome.Settled() {
		return 0, fmt.Errorf("%w: %q", ErrNotTerminal, outcome)
	}
	if a, ok := Finite(amount); !ok || a <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	stake := decimal.NewFromFloat(amount)
	switch {
	case outcome == Lost:
		return 0, nil
	case outcome == Placed && policy != PlacedHalfReturn:
		return stake.Round(2).InexactFloat64(), nil
	}

	o, err := ParseOdds(odds)
	if err != nil {
		return 0, err
	}
	full := stake.Mul(o).Add(stake)
	if outcome == Placed {
		full = full.Div(two)
	}
	return full.Round(2).InexactFloat64(), nil
}
