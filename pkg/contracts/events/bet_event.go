package events

import "time"

// Tipos de evento publicados no tópico "bet_events"
const (
	BetCreated = "bet_created"
	BetUpdated = "bet_updated"
	BetSettled = "bet_settled"
	BetDeleted = "bet_deleted"
)

// BetEvent é emitido pelo ledger-service após cada mutação confirmada no store.
// A chave da mensagem Kafka é o BetID.
type BetEvent struct {
	Type     string     `json:"type"`
	BetID    string     `json:"bet_id"`
	Name     string     `json:"name,omitempty"`
	Amount   float64    `json:"amount,omitempty"`
	Odds     string     `json:"odds,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Outcome  string     `json:"outcome,omitempty"`
	Returns  float64    `json:"returns,omitempty"`
	TsUnixMs int64      `json:"ts_unix_ms"`
}

// Known indica se o tipo do evento é conhecido
func (e BetEvent) Known() bool {
	switch e.Type {
	case BetCreated, BetUpdated, BetSettled, BetDeleted:
		return true
	}
	return false
}
