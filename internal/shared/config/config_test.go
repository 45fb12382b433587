package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_LedgerServiceDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "ledger-service")

	cfg := Load()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "9099", cfg.MetricsPort)
	assert.Equal(t, "bet_events", cfg.TopicBetEvents)
	assert.Equal(t, "bet_events_dlq", cfg.TopicBetEventsDLQ)
	assert.Equal(t, "ledger_summary_broadcast", cfg.RedisPubSubChannel)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "stake", cfg.PlacedPolicy)
	assert.Equal(t, 30*time.Second, cfg.SummaryCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "summary-worker")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SUMMARY_CACHE_TTL", "2m")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://bettrack.app")
	t.Setenv("PLACED_POLICY", "half")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()

	assert.Equal(t, "", cfg.HTTPPort)
	assert.Equal(t, "9097", cfg.MetricsPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, 2*time.Minute, cfg.SummaryCacheTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://bettrack.app"}, cfg.CORSOrigins)
	assert.Equal(t, "half", cfg.PlacedPolicy)
	assert.Equal(t, "", cfg.RedisAddr)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SUMMARY_CACHE_TTL", "soon")
	assert.Equal(t, 30*time.Second, Load().SummaryCacheTTL)
}

func TestLoadFor_DefaultServiceName(t *testing.T) {
	cfg := LoadFor("summary-worker")
	assert.Equal(t, "summary-worker", cfg.ServiceName)
	assert.Equal(t, "9097", cfg.MetricsPort)

	t.Setenv("SERVICE_NAME", "ledger-service")
	assert.Equal(t, "8083", LoadFor("summary-worker").HTTPPort)
}
