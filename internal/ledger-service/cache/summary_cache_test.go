package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bettrack/internal/ledger"
)

func newCache(t *testing.T, ttl time.Duration) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestSummaryCache_MissSetHitInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, 30*time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	want := ledger.Summary{
		TotalStaked:         decimal.RequireFromString("100"),
		TotalReturned:       decimal.RequireFromString("82.28"),
		ProfitLoss:          decimal.RequireFromString("-17.72"),
		ROI:                 decimal.RequireFromString("-17.72"),
		Counts:              ledger.OutcomeCounts{Won: 1, Lost: 2, Pending: 1},
		Unsettled:           1,
		LongestLosingStreak: 2,
		Bets:                4,
	}
	require.NoError(t, c.Set(ctx, want))
	assert.Equal(t, 30*time.Second, mr.TTL(KeySummary))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, want.ProfitLoss.Equal(got.ProfitLoss))
	assert.True(t, want.TotalReturned.Equal(got.TotalReturned))
	assert.Equal(t, want.Counts, got.Counts)
	assert.Equal(t, want.LongestLosingStreak, got.LongestLosingStreak)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummaryCache_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Second)

	require.NoError(t, c.Set(ctx, ledger.Summary{Bets: 1}))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummaryCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(KeySummary, "{not json"))

	_, ok, err := c.Get(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}
