package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bettrack/internal/ledger"
)

var header = []string{"id", "name", "amount", "odds", "date", "outcome", "returns"}

// WriteCSV serializa as linhas exibidas, na ordem recebida.
// Datas em RFC3339 (UTC) e valores com 2 casas; não-finitos saem como 0.00.
func WriteCSV(w io.Writer, bets []ledger.Bet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range bets {
		row := []string{
			b.ID,
			b.Name,
			money(b.Amount),
			b.Odds,
			b.Date.UTC().Format(time.RFC3339),
			string(b.Outcome),
			money(b.Returns),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	v, _ = ledger.Finite(v)
	return decimal.NewFromFloat(v).StringFixed(2)
}
