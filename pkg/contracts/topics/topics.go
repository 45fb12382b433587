package topics

const (
	// Bets
	BetEvents = "bet_events"

	// DLQs
	BetEventsDLQ = "bet_events_dlq"

	// Redis Pub/Sub
	SummaryBroadcast = "ledger_summary_broadcast"
)
