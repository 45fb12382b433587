package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bettrack/internal/ledger"
)

func TestConsole_Bets(t *testing.T) {
	var buf bytes.Buffer
	bets := []ledger.Bet{
		{ID: "a", Name: "Derby", Amount: 10, Odds: "5/2", Date: time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC), Outcome: ledger.Won, Returns: 35},
		{ID: "b", Name: "Acca", Amount: 2.5, Odds: "evs", Date: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), Outcome: ledger.Pending, Returns: math.NaN()},
	}
	require.NoError(t, NewConsole(&buf).Bets(bets))

	out := buf.String()
	assert.Contains(t, out, "2 bets")
	assert.Contains(t, out, "Derby")
	assert.Contains(t, out, "2024-05-01 15:30")
	assert.Contains(t, out, "35.00")
	assert.Contains(t, out, "Pending")
}

func TestConsole_BetsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Bets(nil))
	assert.Equal(t, "\n0 bets\n", buf.String())
}

func TestConsole_Summary(t *testing.T) {
	sum := ledger.Summarize([]ledger.Bet{
		{Amount: 100, Outcome: ledger.Won, Returns: 400, Date: time.Now()},
		{Amount: 10, Outcome: ledger.Lost, Date: time.Now()},
	})
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Summary(sum))

	out := buf.String()
	assert.Contains(t, out, "110.00")
	assert.Contains(t, out, "290.00")
	assert.Contains(t, out, "263.64")
	assert.Contains(t, out, "Longest losing streak")
	assert.NotContains(t, out, "Skipped")
}
