package repo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("bet not found")
	ErrAlreadySettled = errors.New("bet already settled")
)

// Order define a ordenação de ListAll
type Order string

const (
	OrderDateDesc Order = "date_desc" // padrão da tabela
	OrderDateAsc  Order = "date_asc"  // cronológica (streak, gráficos)
	OrderCreated  Order = "created"   // ordem de inserção
	OrderAmount   Order = "amount"    // maior stake primeiro
)

// ParseOrder valida o parâmetro de ordenação; vazio vira OrderDateDesc
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderDateDesc, nil
	case OrderDateDesc, OrderDateAsc, OrderCreated, OrderAmount:
		return o, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}

// orderBy traduz Order para SQL. Empates caem na ordem de inserção (seq).
func (o Order) orderBy() string {
	switch o {
	case OrderDateAsc:
		return "placed_at ASC, seq ASC"
	case OrderCreated:
		return "seq ASC"
	case OrderAmount:
		return "amount DESC, seq ASC"
	default:
		return "placed_at DESC, seq DESC"
	}
}
