package repo

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/bettrack/internal/ledger"
)

// Memory é um store em memória com a mesma semântica do Postgres.
// Usado com STORE=memory e nos testes.
type Memory struct {
	mu   sync.RWMutex
	seq  int64
	bets map[string]memBet
	now  func() time.Time
}

type memBet struct {
	bet ledger.Bet
	seq int64
}

func NewMemory() *Memory {
	return &Memory{bets: make(map[string]memBet), now: time.Now}
}

func (m *Memory) Create(_ context.Context, b *ledger.Bet) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	m.seq++
	stored := ledger.Bet{
		ID:        uuid.NewString(),
		Name:      b.Name,
		Amount:    b.Amount,
		Odds:      b.Odds,
		Date:      b.Date,
		Outcome:   ledger.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.bets[stored.ID] = memBet{bet: stored, seq: m.seq}
	return stored.ID, nil
}

func (m *Memory) ListAll(_ context.Context, order Order) ([]ledger.Bet, error) {
	m.mu.RLock()
	rows := make([]memBet, 0, len(m.bets))
	for _, r := range m.bets {
		rows = append(rows, r)
	}
	m.mu.RUnlock()

	slices.SortFunc(rows, func(a, b memBet) int {
		switch order {
		case OrderDateAsc:
			return cmp.Or(a.bet.Date.Compare(b.bet.Date), cmp.Compare(a.seq, b.seq))
		case OrderCreated:
			return cmp.Compare(a.seq, b.seq)
		case OrderAmount:
			return cmp.Or(cmp.Compare(b.bet.Amount, a.bet.Amount), cmp.Compare(a.seq, b.seq))
		default:
			return cmp.Or(b.bet.Date.Compare(a.bet.Date), cmp.Compare(b.seq, a.seq))
		}
	})

	out := make([]ledger.Bet, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.bet)
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (ledger.Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.bets[id]
	if !ok {
		return ledger.Bet{}, ErrNotFound
	}
	return r.bet, nil
}

func (m *Memory) Update(_ context.Context, id string, patch ledger.BetPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bets[id]
	if !ok {
		return ErrNotFound
	}
	if patch.TouchesPayout() && r.bet.Outcome != ledger.Pending {
		return ErrAlreadySettled
	}
	if patch.Name != nil {
		r.bet.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Amount != nil {
		r.bet.Amount = *patch.Amount
	}
	if patch.Odds != nil {
		r.bet.Odds = strings.TrimSpace(*patch.Odds)
	}
	if patch.Date != nil {
		r.bet.Date = *patch.Date
	}
	r.bet.UpdatedAt = m.now().UTC()
	m.bets[id] = r
	return nil
}

func (m *Memory) Settle(_ context.Context, id string, outcome ledger.Outcome, returns float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bets[id]
	if !ok {
		return ErrNotFound
	}
	if r.bet.Outcome != ledger.Pending {
		return ErrAlreadySettled
	}
	now := m.now().UTC()
	r.bet.Outcome = outcome
	r.bet.Returns = returns
	r.bet.SettledAt = &now
	r.bet.UpdatedAt = now
	m.bets[id] = r
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bets[id]; !ok {
		return ErrNotFound
	}
	delete(m.bets, id)
	return nil
}
