package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/bettrack/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Pub/Sub do summary-worker e repassa
// cada SummaryUpdate aos clientes do Hub. Retorna depois que a inscrição foi
// confirmada; o loop roda até o ctx ser cancelado.
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) error {
	sub := r.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var upd events.SummaryUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil || upd.Type != events.TypeSummary {
					log.Warn("ws subscriber dropped message", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()
	return nil
}
