package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/radieske/bettrack/internal/ledger"
)

// Console imprime o ledger em tabelas no terminal
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Bets imprime uma linha por aposta na ordem recebida
func (c *Console) Bets(bets []ledger.Bet) error {
	fmt.Fprintf(c.out, "\n%d bets\n", len(bets))
	if len(bets) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Date", "Name", "Stake", "Odds", "Outcome", "Returns")
	for _, b := range bets {
		if err := table.Append(
			b.Date.UTC().Format("2006-01-02 15:04"),
			b.Name,
			money(b.Amount),
			b.Odds,
			string(b.Outcome),
			money(b.Returns),
		); err != nil {
			return fmt.Errorf("append row %s: %w", b.ID, err)
		}
	}
	return table.Render()
}

// Summary imprime o painel de estatísticas
func (c *Console) Summary(s ledger.Summary) error {
	fmt.Fprintln(c.out)
	table := tablewriter.NewWriter(c.out)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Total staked", s.TotalStaked.StringFixed(2)},
		{"Total returned", s.TotalReturned.StringFixed(2)},
		{"Profit/Loss", s.ProfitLoss.StringFixed(2)},
		{"ROI %", s.ROI.StringFixed(2)},
		{"Won", fmt.Sprint(s.Counts.Won)},
		{"Placed", fmt.Sprint(s.Counts.Placed)},
		{"Lost", fmt.Sprint(s.Counts.Lost)},
		{"Unsettled", fmt.Sprint(s.Unsettled)},
		{"Longest losing streak", fmt.Sprint(s.LongestLosingStreak)},
	}
	if s.Skipped > 0 {
		rows = append(rows, []string{"Skipped (malformed)", fmt.Sprint(s.Skipped)})
	}
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("summary rows: %w", err)
	}
	return table.Render()
}

func money(v float64) string {
	v, ok := ledger.Finite(v)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
