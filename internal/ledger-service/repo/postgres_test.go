package repo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/shared/db"
)

// Roda contra um Postgres real quando BETTRACK_TEST_POSTGRES_DSN está definido.
// A tabela bets é truncada.
func newPostgres(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("BETTRACK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("BETTRACK_TEST_POSTGRES_DSN not set")
	}
	pg, err := db.ConnectPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, pg))
	_, err = pg.ExecContext(ctx, `TRUNCATE bets`)
	require.NoError(t, err)
	return NewPostgres(pg)
}

func TestPostgres_Lifecycle(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()

	id, err := p.Create(ctx, &ledger.Bet{Name: "Derby", Amount: 10, Odds: "5/2", Date: day0})
	require.NoError(t, err)

	bets, err := p.ListAll(ctx, OrderDateDesc)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, id, bets[0].ID)
	assert.Equal(t, ledger.Pending, bets[0].Outcome)
	assert.True(t, day0.Equal(bets[0].Date))

	require.NoError(t, p.Settle(ctx, id, ledger.Won, 35))
	assert.ErrorIs(t, p.Settle(ctx, id, ledger.Lost, 0), ErrAlreadySettled)

	amount := 20.0
	assert.ErrorIs(t, p.Update(ctx, id, ledger.BetPatch{Amount: &amount}), ErrAlreadySettled)
	name := "Derby day"
	require.NoError(t, p.Update(ctx, id, ledger.BetPatch{Name: &name}))

	b, err := p.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Derby day", b.Name)
	assert.Equal(t, ledger.Won, b.Outcome)
	assert.Equal(t, 35.0, b.Returns)
	assert.NotNil(t, b.SettledAt)

	require.NoError(t, p.Delete(ctx, id))
	assert.ErrorIs(t, p.Delete(ctx, id), ErrNotFound)
	_, err = p.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_OrderTiesFollowInsertion(t *testing.T) {
	p := newPostgres(t)
	ctx := context.Background()
	for _, n := range []string{"b", "a", "c"} {
		_, err := p.Create(ctx, &ledger.Bet{Name: n, Amount: 5, Odds: "2", Date: day0})
		require.NoError(t, err)
	}

	asc, err := p.ListAll(ctx, OrderDateAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names(asc))

	desc, err := p.ListAll(ctx, OrderDateDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, names(desc))
}
