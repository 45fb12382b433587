package ledger

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeCounts conta apostas por resultado
type OutcomeCounts struct {
	Won     int `json:"won"`
	Placed  int `json:"placed"`
	Lost    int `json:"lost"`
	Pending int `json:"pending"`
}

func (c *OutcomeCounts) add(o Outcome) {
	switch o {
	case Won:
		c.Won++
	case Placed:
		c.Placed++
	case Lost:
		c.Lost++
	case Pending:
		c.Pending++
	}
}

// Summary é o painel de estatísticas do ledger
type Summary struct {
	TotalStaked         decimal.Decimal `json:"total_staked"`
	TotalReturned       decimal.Decimal `json:"total_returned"`
	ProfitLoss          decimal.Decimal `json:"profit_loss"`
	ROI                 decimal.Decimal `json:"roi"` // percentual, 2 casas
	Counts              OutcomeCounts   `json:"counts"`
	Unsettled           int             `json:"unsettled"`
	LongestLosingStreak int             `json:"longest_losing_streak"`
	Bets                int             `json:"bets"`    // apostas contadas
	Skipped             int             `json:"skipped"` // malformadas, fora de contagens e streak
}

// ProfitPoint é um ponto da série de lucro acumulado (gráfico)
type ProfitPoint struct {
	Date         time.Time       `json:"date"`
	RunningTotal decimal.Decimal `json:"running_total"`
}

var hundred = decimal.NewFromInt(100)

// Summarize agrega um snapshot de apostas. Função pura: a ordem de entrada
// não altera o resultado.
//
// Valores não-finitos somam como 0. Uma aposta com amount não-finito, com
// resultado desconhecido, ou liquidada com returns não-finito fica fora das
// contagens e do streak e entra em Skipped. Pending com returns NaN é normal.
func Summarize(bets []Bet) Summary {
	var s Summary
	staked, returned := decimal.Zero, decimal.Zero
	counted := make([]Bet, 0, len(bets))

	for _, b := range bets {
		amount, amountOK := Finite(b.Amount)
		returns, returnsOK := Finite(b.Returns)
		staked = staked.Add(decimal.NewFromFloat(amount))
		returned = returned.Add(decimal.NewFromFloat(returns))

		if !countable(b.Outcome, amountOK, returnsOK) {
			s.Skipped++
			continue
		}
		s.Counts.add(b.Outcome)
		counted = append(counted, b)
	}

	s.TotalStaked = staked
	s.TotalReturned = returned
	s.ProfitLoss = returned.Sub(staked)
	s.ROI = decimal.Zero
	if staked.IsPositive() {
		s.ROI = s.ProfitLoss.Div(staked).Mul(hundred).Round(2)
	}
	s.Unsettled = s.Counts.Pending
	s.Bets = len(counted)
	s.LongestLosingStreak = LongestLosingStreak(counted)
	return s
}

// LongestLosingStreak devolve a maior sequência de Lost consecutivos com as
// apostas em ordem de data. Empates de data mantêm a ordem do snapshot.
func LongestLosingStreak(bets []Bet) int {
	longest, current := 0, 0
	for _, b := range byDate(bets) {
		if b.Outcome != Lost {
			current = 0
			continue
		}
		current++
		longest = max(longest, current)
	}
	return longest
}

// countable diz se a aposta entra nas contagens e no streak
func countable(o Outcome, amountOK, returnsOK bool) bool {
	return amountOK && o.Valid() && (!o.Settled() || returnsOK)
}

// CountOutcomes conta os resultados com a mesma exclusão de Summarize,
// então o resultado é sempre igual a Summarize(bets).Counts.
func CountOutcomes(bets []Bet) OutcomeCounts {
	var c OutcomeCounts
	for _, b := range bets {
		_, amountOK := Finite(b.Amount)
		_, returnsOK := Finite(b.Returns)
		if countable(b.Outcome, amountOK, returnsOK) {
			c.add(b.Outcome)
		}
	}
	return c
}

// ProfitSeries devolve a soma acumulada de (returns - amount) em ordem de data.
// O último ponto coincide com Summary.ProfitLoss do mesmo snapshot.
func ProfitSeries(bets []Bet) []ProfitPoint {
	sorted := byDate(bets)
	out := make([]ProfitPoint, 0, len(sorted))
	total := decimal.Zero
	for _, b := range sorted {
		amount, _ := Finite(b.Amount)
		returns, _ := Finite(b.Returns)
		total = total.Add(decimal.NewFromFloat(returns)).Sub(decimal.NewFromFloat(amount))
		out = append(out, ProfitPoint{Date: b.Date, RunningTotal: total})
	}
	return out
}

// byDate copia e ordena de forma estável por data
func byDate(bets []Bet) []Bet {
	sorted := slices.Clone(bets)
	slices.SortStableFunc(sorted, func(a, b Bet) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}
