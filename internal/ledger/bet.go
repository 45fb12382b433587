package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Outcome é o estado de liquidação de uma aposta
type Outcome string

const (
	Pending Outcome = "Pending"
	Won     Outcome = "Won"
	Placed  Outcome = "Placed"
	Lost    Outcome = "Lost"
)

var ErrInvalidOutcome = errors.New("invalid outcome")

// ParseOutcome aceita o nome do resultado sem diferenciar maiúsculas ("won", "WON", "Won")
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return Pending, nil
	case "won":
		return Won, nil
	case "placed":
		return Placed, nil
	case "lost":
		return Lost, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// Valid indica se o resultado é um dos quatro valores conhecidos
func (o Outcome) Valid() bool {
	switch o {
	case Pending, Won, Placed, Lost:
		return true
	}
	return false
}

// Settled indica um resultado terminal (Won, Placed ou Lost)
func (o Outcome) Settled() bool {
	return o == Won || o == Placed || o == Lost
}

// Bet é o registro de uma aposta no ledger.
// Amount e Returns podem chegar não-finitos do store (NUMERIC 'NaN');
// quem agrega aplica a política de Finite.
type Bet struct {
	ID        string
	Name      string
	Amount    float64
	Odds      string // decimal ("2.5") ou fracionária ("5/2")
	Date      time.Time
	Outcome   Outcome
	Returns   float64
	CreatedAt time.Time
	UpdatedAt time.Time
	SettledAt *time.Time
}
