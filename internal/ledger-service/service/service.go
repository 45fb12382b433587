package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	"github.com/radieske/bettrack/pkg/contracts/events"
)

// Store é a persistência de apostas (repo.Postgres ou repo.Memory)
type Store interface {
	Create(ctx context.Context, b *ledger.Bet) (string, error)
	ListAll(ctx context.Context, order repo.Order) ([]ledger.Bet, error)
	Get(ctx context.Context, id string) (ledger.Bet, error)
	Update(ctx context.Context, id string, patch ledger.BetPatch) error
	Settle(ctx context.Context, id string, outcome ledger.Outcome, returns float64) error
	Delete(ctx context.Context, id string) error
}

// SummaryCache guarda o último Summary calculado
type SummaryCache interface {
	Get(ctx context.Context) (ledger.Summary, bool, error)
	Set(ctx context.Context, s ledger.Summary) error
	Invalidate(ctx context.Context) error
}

// Publisher emite eventos de aposta para o summary-worker
type Publisher interface {
	PublishBetEvent(ctx context.Context, e events.BetEvent) error
}

// sideEffectTimeout limita cache/eventos depois que o store já confirmou
const sideEffectTimeout = 2 * time.Second

// Service orquestra validação, store, cache e eventos.
// Cache e Publisher são opcionais; falhas neles só geram log.
type Service struct {
	log    *zap.Logger
	store  Store
	cache  SummaryCache
	publ   Publisher
	policy ledger.PlacedPolicy

	// incrementado a cada mutação; Summary não grava no cache se mudou
	// durante o cálculo
	gen atomic.Uint64

	OnMutation  func(op string) // métricas
	OnCacheHit  func()
	OnCacheMiss func()
}

func New(log *zap.Logger, store Store, cache SummaryCache, publ Publisher, policy ledger.PlacedPolicy) *Service {
	return &Service{log: log, store: store, cache: cache, publ: publ, policy: policy}
}

// Add valida e registra uma aposta Pending
func (s *Service) Add(ctx context.Context, in ledger.BetInput) (ledger.Bet, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return ledger.Bet{}, err
	}
	b := ledger.Bet{Name: in.Name, Amount: in.Amount, Odds: in.Odds, Date: in.Date}
	id, err := s.store.Create(ctx, &b)
	if err != nil {
		return ledger.Bet{}, fmt.Errorf("create bet: %w", err)
	}
	b.ID = id
	b.Outcome = ledger.Pending

	s.afterMutation(ctx, events.BetCreated, b)
	return b, nil
}

func (s *Service) List(ctx context.Context, order repo.Order) ([]ledger.Bet, error) {
	bets, err := s.store.ListAll(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	return bets, nil
}

func (s *Service) Get(ctx context.Context, id string) (ledger.Bet, error) {
	return s.store.Get(ctx, id)
}

// Update aplica uma atualização parcial; amount/odds só enquanto Pending
func (s *Service) Update(ctx context.Context, id string, patch ledger.BetPatch) (ledger.Bet, error) {
	if err := patch.Validate(); err != nil {
		return ledger.Bet{}, err
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		return ledger.Bet{}, err
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return ledger.Bet{}, err
	}
	s.afterMutation(ctx, events.BetUpdated, b)
	return b, nil
}

// Settle calcula returns e grava o resultado terminal uma única vez
func (s *Service) Settle(ctx context.Context, id, outcome string) (ledger.Bet, error) {
	o, err := ledger.ParseOutcome(outcome)
	if err != nil {
		return ledger.Bet{}, err
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return ledger.Bet{}, err
	}
	if b.Outcome != ledger.Pending {
		return ledger.Bet{}, repo.ErrAlreadySettled
	}
	returns, err := ledger.Settle(b.Amount, b.Odds, o, s.policy)
	if err != nil {
		return ledger.Bet{}, err
	}
	if err := s.store.Settle(ctx, id, o, returns); err != nil {
		return ledger.Bet{}, err
	}
	if b, err = s.store.Get(ctx, id); err != nil {
		return ledger.Bet{}, err
	}
	s.afterMutation(ctx, events.BetSettled, b)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, events.BetDeleted, ledger.Bet{ID: id})
	return nil
}

// Summary lê do cache e, em miss, recalcula a partir do snapshot completo
func (s *Service) Summary(ctx context.Context) (ledger.Summary, error) {
	if s.cache != nil {
		sum, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.log.Warn("summary cache get failed", zap.Error(err))
		case ok:
			if s.OnCacheHit != nil {
				s.OnCacheHit()
			}
			return sum, nil
		}
		if s.OnCacheMiss != nil {
			s.OnCacheMiss()
		}
	}

	gen := s.gen.Load()
	bets, err := s.store.ListAll(ctx, repo.OrderDateAsc)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("list bets: %w", err)
	}
	sum := ledger.Summarize(bets)
	if sum.Skipped > 0 {
		s.log.Warn("malformed bets skipped", zap.Int("skipped", sum.Skipped))
	}

	switch {
	case s.cache == nil:
	case s.gen.Load() != gen:
		s.log.Debug("summary changed while computing, cache not updated")
	default:
		if err := s.cache.Set(ctx, sum); err != nil {
			s.log.Warn("summary cache set failed", zap.Error(err))
		}
	}
	return sum, nil
}

// Outcomes alimenta o gráfico de pizza por resultado
func (s *Service) Outcomes(ctx context.Context) (ledger.OutcomeCounts, error) {
	bets, err := s.store.ListAll(ctx, repo.OrderDateAsc)
	if err != nil {
		return ledger.OutcomeCounts{}, fmt.Errorf("list bets: %w", err)
	}
	return ledger.CountOutcomes(bets), nil
}

// ProfitSeries alimenta o gráfico de lucro acumulado
func (s *Service) ProfitSeries(ctx context.Context) ([]ledger.ProfitPoint, error) {
	bets, err := s.store.ListAll(ctx, repo.OrderDateAsc)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	return ledger.ProfitSeries(bets), nil
}

// afterMutation invalida o cache e publica o evento. A ação do usuário já foi
// confirmada no store, então erros aqui só vão para o log.
func (s *Service) afterMutation(ctx context.Context, typ string, b ledger.Bet) {
	s.gen.Add(1)
	if s.OnMutation != nil {
		s.OnMutation(typ)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("summary cache invalidate failed", zap.String("bet_id", b.ID), zap.Error(err))
		}
	}
	if s.publ != nil {
		if err := s.publ.PublishBetEvent(ctx, toEvent(typ, b)); err != nil {
			s.log.Warn("bet event publish failed", zap.String("type", typ), zap.String("bet_id", b.ID), zap.Error(err))
		}
	}
	s.log.Info("bet mutated", zap.String("type", typ), zap.String("bet_id", b.ID))
}

func toEvent(typ string, b ledger.Bet) events.BetEvent {
	e := events.BetEvent{Type: typ, BetID: b.ID}
	if typ == events.BetDeleted {
		return e
	}
	e.Name = b.Name
	e.Amount, _ = ledger.Finite(b.Amount)
	e.Odds = b.Odds
	if !b.Date.IsZero() {
		d := b.Date
		e.Date = &d
	}
	e.Outcome = string(b.Outcome)
	e.Returns, _ = ledger.Finite(b.Returns)
	return e
}
