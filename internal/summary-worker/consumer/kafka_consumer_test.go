package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	"github.com/radieske/bettrack/internal/shared/kafka"
	"github.com/radieske/bettrack/pkg/contracts/events"
)

type fakeReader struct {
	msgs []kafka.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

type fakeWriter struct{ msgs []kafka.Message }

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type fakeCache struct {
	last *ledger.Summary
	err  error
}

func (f *fakeCache) Set(_ context.Context, s ledger.Summary) error {
	if f.err != nil {
		return f.err
	}
	f.last = &s
	return nil
}

type published struct {
	channel string
	payload []byte
}

type fakeBroadcaster struct{ out []published }

func (f *fakeBroadcaster) Publish(_ context.Context, channel string, payload []byte) error {
	f.out = append(f.out, published{channel, payload})
	return nil
}

type counters struct {
	consumed, recomputed, cached, broadcast int
	errors                                  map[string]int
}

func newProcessor(t *testing.T, store BetLister) (*Processor, *fakeCache, *fakeBroadcaster, *fakeWriter, *counters) {
	t.Helper()
	c := &fakeCache{}
	b := &fakeBroadcaster{}
	dlq := &fakeWriter{}
	n := &counters{errors: map[string]int{}}
	p := &Processor{
		Log:          zaptest.NewLogger(t),
		Store:        store,
		Cache:        c,
		Broadcaster:  b,
		Channel:      "ledger_summary_broadcast",
		DLQ:          dlq,
		OnConsumed:   func() { n.consumed++ },
		OnRecomputed: func() { n.recomputed++ },
		OnCached:     func() { n.cached++ },
		OnBroadcast:  func() { n.broadcast++ },
		OnError:      func(stage string) { n.errors[stage]++ },
		now:          func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	return p, c, b, dlq, n
}

func seeded(t *testing.T) (*repo.Memory, string) {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemory()
	id, err := store.Create(ctx, &ledger.Bet{Name: "a", Amount: 100, Odds: "3/1", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, store.Settle(ctx, id, ledger.Won, 400))
	return store, id
}

func eventMsg(t *testing.T, e events.BetEvent) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Topic: "bet_events", Key: []byte(e.BetID), Value: b}
}

func TestHandle_RecomputesCachesAndBroadcasts(t *testing.T) {
	store, id := seeded(t)
	p, c, b, dlq, n := newProcessor(t, store)

	p.Handle(context.Background(), eventMsg(t, events.BetEvent{Type: events.BetSettled, BetID: id}))

	require.NotNil(t, c.last)
	assert.Equal(t, "300", c.last.ProfitLoss.String())
	require.Len(t, b.out, 1)
	assert.Equal(t, "ledger_summary_broadcast", b.out[0].channel)

	var upd events.SummaryUpdate
	require.NoError(t, json.Unmarshal(b.out[0].payload, &upd))
	assert.Equal(t, events.TypeSummary, upd.Type)
	assert.Equal(t, events.BetSettled, upd.Reason)
	assert.Equal(t, id, upd.BetID)
	assert.Equal(t, 1, upd.Summary.Counts.Won)

	assert.Empty(t, dlq.msgs)
	assert.Equal(t, counters{consumed: 1, recomputed: 1, cached: 1, broadcast: 1, errors: map[string]int{}}, *n)
}

func TestHandle_BadMessagesGoToDLQ(t *testing.T) {
	store, _ := seeded(t)
	p, c, b, dlq, n := newProcessor(t, store)
	ctx := context.Background()

	p.Handle(ctx, kafka.Message{Topic: "bet_events", Value: []byte("{oops")})
	p.Handle(ctx, eventMsg(t, events.BetEvent{Type: "bet_placed", BetID: "x"}))

	assert.Nil(t, c.last)
	assert.Empty(t, b.out)
	require.Len(t, dlq.msgs, 2)
	assert.Equal(t, []byte("{oops"), dlq.msgs[0].Value)
	assert.Equal(t, 2, n.errors["decode"])
}

func TestHandle_CacheFailureStillBroadcasts(t *testing.T) {
	store, id := seeded(t)
	p, c, b, _, n := newProcessor(t, store)
	c.err = errors.New("redis down")

	p.Handle(context.Background(), eventMsg(t, events.BetEvent{Type: events.BetCreated, BetID: id}))

	assert.Len(t, b.out, 1)
	assert.Equal(t, 1, n.errors["cache"])
	assert.Zero(t, n.cached)
}

type failingStore struct{}

func (failingStore) ListAll(context.Context, repo.Order) ([]ledger.Bet, error) {
	return nil, errors.New("pg down")
}

func TestHandle_StoreFailureSkipsCacheAndBroadcast(t *testing.T) {
	p, c, b, _, n := newProcessor(t, failingStore{})

	p.Handle(context.Background(), eventMsg(t, events.BetEvent{Type: events.BetDeleted, BetID: "x"}))

	assert.Nil(t, c.last)
	assert.Empty(t, b.out)
	assert.Equal(t, 1, n.errors["db"])
}

func TestRun_StopsOnCancel(t *testing.T) {
	store, id := seeded(t)
	p, _, b, _, _ := newProcessor(t, store)
	p.Reader = &fakeReader{msgs: []kafka.Message{
		eventMsg(t, events.BetEvent{Type: events.BetCreated, BetID: id}),
		eventMsg(t, events.BetEvent{Type: events.BetSettled, BetID: id}),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := p.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, b.out, 2)
}
