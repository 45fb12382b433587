package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/radieske/bettrack/internal/shared/kafka"
	"github.com/radieske/bettrack/pkg/contracts/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica eventos de aposta no tópico bet_events
type KafkaPublisher struct {
	Writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, now: time.Now}
}

// PublishBetEvent usa o BetID como chave: eventos da mesma aposta caem na mesma partição
func (p *KafkaPublisher) PublishBetEvent(ctx context.Context, e events.BetEvent) error {
	if !e.Known() {
		return fmt.Errorf("unknown bet event type %q", e.Type)
	}
	e.TsUnixMs = p.now().UnixMilli()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal bet event: %w", err)
	}
	return kafka.WriteJSON(ctx, p.Writer, e.BetID, b)
}
