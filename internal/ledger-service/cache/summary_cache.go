package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bettrack/internal/ledger"
)

// KeySummary guarda o Summary do ledger inteiro
const KeySummary = "summary:v1"

// SummaryCache é o cache-aside do Summary no Redis
type SummaryCache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{R: r, TTL: ttl}
}

// Get devolve (summary, true) em hit e (zero, false) em miss
func (c *SummaryCache) Get(ctx context.Context) (ledger.Summary, bool, error) {
	b, err := c.R.Get(ctx, KeySummary).Bytes()
	if errors.Is(err, redis.Nil) {
		return ledger.Summary{}, false, nil
	}
	if err != nil {
		return ledger.Summary{}, false, err
	}
	var s ledger.Summary
	if err := json.Unmarshal(b, &s); err != nil {
		return ledger.Summary{}, false, err
	}
	return s, true, nil
}

func (c *SummaryCache) Set(ctx context.Context, s ledger.Summary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, KeySummary, b, c.TTL).Err()
}

// Invalidate remove o Summary após uma mutação
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	return c.R.Del(ctx, KeySummary).Err()
}
