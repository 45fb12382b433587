package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	lcache "github.com/radieske/bettrack/internal/ledger-service/cache"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	sharedcache "github.com/radieske/bettrack/internal/shared/cache"
	"github.com/radieske/bettrack/internal/shared/config"
	"github.com/radieske/bettrack/internal/shared/db"
	"github.com/radieske/bettrack/internal/shared/kafka"
	"github.com/radieske/bettrack/internal/shared/logger"
	"github.com/radieske/bettrack/internal/shared/metrics"
	"github.com/radieske/bettrack/internal/summary-worker/consumer"
	"github.com/radieske/bettrack/internal/summary-worker/pubsub"
)

const groupID = "summary-worker"

func main() {
	cfg := config.LoadFor("summary-worker")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()
	if err := db.Migrate(ctx, pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	redisClient, err := sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}
	if cfg.Env == "local" || cfg.Env == "dev" {
		if err := kafka.EnsureTopics(ctx, brokers, cfg.TopicBetEvents, cfg.TopicBetEventsDLQ); err != nil {
			log.Warn("failed to create kafka topics", zap.Error(err))
		}
	}
	reader := kafka.NewReader(brokers, cfg.TopicBetEvents, groupID)
	defer reader.Close()
	dlq := kafka.NewWriter(brokers, cfg.TopicBetEventsDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "summary_worker_messages_consumed_total", Help: "mensagens consumidas"})
	recomputed := prometheus.NewCounter(prometheus.CounterOpts{Name: "summary_worker_recomputed_total", Help: "summaries recalculados"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "summary_worker_cache_sets_total", Help: "sets no cache"})
	broadcast := prometheus.NewCounter(prometheus.CounterOpts{Name: "summary_worker_broadcasts_total", Help: "updates publicados no Pub/Sub"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "summary_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, recomputed, cached, broadcast, errorsBy)

	proc := &consumer.Processor{
		Log:          log,
		Reader:       reader,
		Store:        repo.NewPostgres(pg),
		Cache:        lcache.New(redisClient, cfg.SummaryCacheTTL),
		Broadcaster:  pubsub.NewRedisBroadcaster(redisClient),
		Channel:      cfg.RedisPubSubChannel,
		DLQ:          dlq,
		OnConsumed:   func() { consumed.Inc() },
		OnRecomputed: func() { recomputed.Inc() },
		OnCached:     func() { cached.Inc() },
		OnBroadcast:  func() { broadcast.Inc() },
		OnError:      func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks(map[string]metrics.HealthFunc{
		"postgres": pg.PingContext,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}), log)
	defer metricsSrv.Close()

	log.Info("summary-worker started", zap.String("topic", cfg.TopicBetEvents), zap.String("group", groupID))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("summary-worker stopped")
}
