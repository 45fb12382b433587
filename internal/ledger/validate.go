package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// BetInput são os campos informados pelo usuário ao registrar uma aposta
type BetInput struct {
	Name   string    `json:"name" validate:"required"`
	Amount float64   `json:"amount" validate:"finite,gt=0,cents,lte=999999999999.99"`
	Odds   string    `json:"odds" validate:"required,odds"`
	Date   time.Time `json:"date" validate:"required"`
}

// BetPatch é uma atualização parcial; nil mantém o valor atual.
// Outcome e Returns só mudam via liquidação.
type BetPatch struct {
	Name   *string    `json:"name" validate:"omitempty,min=1"`
	Amount *float64   `json:"amount" validate:"omitempty,finite,gt=0,cents,lte=999999999999.99"`
	Odds   *string    `json:"odds" validate:"omitempty,odds"`
	Date   *time.Time `json:"date"`
}

// Empty indica que nenhum campo foi informado
func (p BetPatch) Empty() bool {
	return p.Name == nil && p.Amount == nil && p.Odds == nil && p.Date == nil
}

// TouchesPayout indica alteração de campo que entra no cálculo de returns
func (p BetPatch) TouchesPayout() bool {
	return p.Amount != nil || p.Odds != nil
}

// FieldError descreve uma regra violada em um campo
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError agrupa os erros de entrada de uma operação
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Rule)
	}
	return "invalid bet: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// nomes de campo vindos da tag json
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("odds", func(fl validator.FieldLevel) bool {
		_, err := ParseOdds(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		_, ok := Finite(fl.Field().Float())
		return ok
	})
	// no máximo 2 casas, igual à coluna NUMERIC(14, 2)
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		f, ok := Finite(fl.Field().Float())
		return ok && decimal.NewFromFloat(f).Exponent() >= -2
	})
	return v
}

// Normalize remove espaços de nome e odds
func (in BetInput) Normalize() BetInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Odds = strings.TrimSpace(in.Odds)
	return in
}

// Validate verifica uma nova aposta
func (in BetInput) Validate() error {
	return toValidationError(validate.Struct(in))
}

// Validate verifica uma atualização parcial
func (p BetPatch) Validate() error {
	if p.Empty() {
		return &ValidationError{Fields: []FieldError{{Field: "patch", Rule: "required"}}}
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}
	if p.Date != nil && p.Date.IsZero() {
		return &ValidationError{Fields: []FieldError{{Field: "date", Rule: "required"}}}
	}
	return toValidationError(validate.Struct(p))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate aceita data com ou sem hora; sem fuso, assume UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
