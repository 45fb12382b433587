package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	"github.com/radieske/bettrack/internal/shared/kafka"
	"github.com/radieske/bettrack/pkg/contracts/events"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type BetLister interface {
	ListAll(ctx context.Context, order repo.Order) ([]ledger.Bet, error)
}

type SummaryCache interface {
	Set(ctx context.Context, s ledger.Summary) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome bet_events, recalcula o Summary a partir do Postgres,
// atualiza o cache e publica no Pub/Sub para o feed ao vivo.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log         *zap.Logger
	Reader      MessageReader
	Store       BetLister
	Cache       SummaryCache
	Broadcaster Broadcaster
	Channel     string
	DLQ         MessageWriter // opcional

	OnConsumed   func()       // métricas (counter++)
	OnRecomputed func()       // métricas
	OnCached     func()       // métricas
	OnBroadcast  func()       // métricas
	OnError      func(string) // métricas por fase

	now func() time.Time
}

var errUnknownEvent = errors.New("unknown event type")

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		p.Handle(ctx, m)
	}
}

// Handle processa uma mensagem. Erros são registrados e contados, nunca param o loop.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) {
	if p.OnConsumed != nil {
		p.OnConsumed()
	}

	ev, err := decode(m.Value)
	if err != nil {
		p.Log.Warn("invalid message", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("decode")
		p.deadLetter(ctx, m, err)
		return
	}

	bets, err := p.Store.ListAll(ctx, repo.OrderDateAsc)
	if err != nil {
		p.Log.Warn("db list failed", zap.String("bet_id", ev.BetID), zap.Error(err))
		p.fail("db")
		return
	}
	sum := ledger.Summarize(bets)
	if p.OnRecomputed != nil {
		p.OnRecomputed()
	}

	// falha no cache não bloqueia o broadcast
	if p.Cache != nil {
		if err := p.Cache.Set(ctx, sum); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			p.fail("cache")
		} else if p.OnCached != nil {
			p.OnCached()
		}
	}

	if p.Broadcaster == nil {
		return
	}
	payload, err := json.Marshal(events.SummaryUpdate{
		Type:    events.TypeSummary,
		Reason:  ev.Type,
		BetID:   ev.BetID,
		Summary: sum,
		Ts:      p.clock().UTC(),
	})
	if err != nil {
		p.Log.Warn("marshal summary update failed", zap.Error(err))
		p.fail("broadcast")
		return
	}
	if err := p.Broadcaster.Publish(ctx, p.Channel, payload); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
		p.fail("broadcast")
		return
	}
	if p.OnBroadcast != nil {
		p.OnBroadcast()
	}
}

func decode(b []byte) (events.BetEvent, error) {
	var ev events.BetEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ev, err
	}
	if !ev.Known() {
		return ev, fmt.Errorf("%w: %q", errUnknownEvent, ev.Type)
	}
	return ev, nil
}

// deadLetter copia a mensagem recebida para a DLQ com o motivo no header
func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, cause error) {
	if p.DLQ == nil {
		return
	}
	dl := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: append(m.Headers,
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "source_topic", Value: []byte(m.Topic)},
		),
	}
	if err := p.DLQ.WriteMessages(ctx, dl); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}
