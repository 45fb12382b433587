package dto

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/radieske/bettrack/internal/ledger"
)

// FlexFloat aceita número ou texto ("12.50"). Texto inválido vira 0 e
// a validação rejeita depois.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*f = FlexFloat(ledger.AmountOrZero(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

type CreateBetRequest struct {
	Name   string    `json:"name"`
	Amount FlexFloat `json:"amount"`
	Odds   string    `json:"odds"`
	Date   string    `json:"date"` // RFC3339 ou "2006-01-02[T15:04]"
}

// ToInput converte o payload; data ilegível vira erro de validação
func (r CreateBetRequest) ToInput() (ledger.BetInput, error) {
	in := ledger.BetInput{Name: r.Name, Amount: float64(r.Amount), Odds: r.Odds}
	if r.Date != "" {
		d, err := ledger.ParseDate(r.Date)
		if err != nil {
			return in, invalidDate()
		}
		in.Date = d
	}
	return in, nil
}

type PatchBetRequest struct {
	Name   *string    `json:"name"`
	Amount *FlexFloat `json:"amount"`
	Odds   *string    `json:"odds"`
	Date   *string    `json:"date"`
}

func (r PatchBetRequest) ToPatch() (ledger.BetPatch, error) {
	p := ledger.BetPatch{Name: r.Name, Odds: r.Odds}
	if r.Amount != nil {
		a := float64(*r.Amount)
		p.Amount = &a
	}
	if r.Date != nil {
		d, err := ledger.ParseDate(*r.Date)
		if err != nil {
			return p, invalidDate()
		}
		p.Date = &d
	}
	return p, nil
}

type SettleRequest struct {
	Outcome string `json:"outcome"` // Won | Placed | Lost
}

func invalidDate() error {
	return &ledger.ValidationError{Fields: []ledger.FieldError{{Field: "date", Rule: "datetime"}}}
}
