package events

import (
	"time"

	"github.com/radieske/bettrack/internal/ledger"
)

// SummaryUpdate é publicado no canal Redis Pub/Sub e repassado aos clientes WebSocket
type SummaryUpdate struct {
	Type    string         `json:"type"`             // sempre "summary"
	Reason  string         `json:"reason,omitempty"` // tipo do evento que disparou o recálculo
	BetID   string         `json:"bet_id,omitempty"`
	Summary ledger.Summary `json:"summary"`
	Ts      time.Time      `json:"ts"`
}

const TypeSummary = "summary"
