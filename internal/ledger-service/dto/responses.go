package dto

import (
	"time"

	"github.com/radieske/bettrack/internal/ledger"
)

type CreateBetResponse struct {
	ID string `json:"id"`
}

// BetResponse é a linha exibida da aposta. JSON não representa NaN, então
// valores não-finitos saem como 0.
type BetResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Amount    float64    `json:"amount"`
	Odds      string     `json:"odds"`
	Date      time.Time  `json:"date"`
	Outcome   string     `json:"outcome"`
	Returns   float64    `json:"returns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

func FromBet(b ledger.Bet) BetResponse {
	amount, _ := ledger.Finite(b.Amount)
	returns, _ := ledger.Finite(b.Returns)
	return BetResponse{
		ID:        b.ID,
		Name:      b.Name,
		Amount:    amount,
		Odds:      b.Odds,
		Date:      b.Date,
		Outcome:   string(b.Outcome),
		Returns:   returns,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		SettledAt: b.SettledAt,
	}
}

func FromBets(bets []ledger.Bet) []BetResponse {
	out := make([]BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, FromBet(b))
	}
	return out
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []ledger.FieldError `json:"fields,omitempty"`
}
