package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	lcache "github.com/radieske/bettrack/internal/ledger-service/cache"
	httpapi "github.com/radieske/bettrack/internal/ledger-service/http"
	"github.com/radieske/bettrack/internal/ledger-service/producer"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	"github.com/radieske/bettrack/internal/ledger-service/service"
	"github.com/radieske/bettrack/internal/ledger-service/ws"
	"github.com/radieske/bettrack/internal/shared/cache"
	"github.com/radieske/bettrack/internal/shared/config"
	"github.com/radieske/bettrack/internal/shared/db"
	"github.com/radieske/bettrack/internal/shared/kafka"
	"github.com/radieske/bettrack/internal/shared/logger"
	"github.com/radieske/bettrack/internal/shared/metrics"
	"github.com/radieske/bettrack/pkg/contracts/events"
)

func main() {
	cfg := config.LoadFor("ledger-service")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	policy, err := ledger.ParsePlacedPolicy(cfg.PlacedPolicy)
	if err != nil {
		log.Fatal("invalid PLACED_POLICY", zap.Error(err))
	}

	checks := map[string]metrics.HealthFunc{}

	// Store
	var store service.Store
	switch cfg.Store {
	case "memory":
		store = repo.NewMemory()
		log.Warn("using in-memory store; data is lost on restart")
	default:
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if err := db.Migrate(ctx, pg); err != nil {
			log.Fatal("failed to migrate", zap.Error(err))
		}
		store = repo.NewPostgres(pg)
		checks["postgres"] = pingPostgres(pg)
		log.Info("postgres connected")
	}

	// Redis: cache do Summary + feed ao vivo
	var (
		rdb          *redis.Client
		summaryCache service.SummaryCache
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		summaryCache = lcache.New(rdb, cfg.SummaryCacheTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("redis connected")
	}

	// Kafka: eventos para o summary-worker
	var publ service.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		if cfg.Env == "local" || cfg.Env == "dev" {
			if err := kafka.EnsureTopics(ctx, brokers, cfg.TopicBetEvents); err != nil {
				log.Warn("failed to create kafka topic", zap.String("topic", cfg.TopicBetEvents), zap.Error(err))
			}
		}
		writer := kafka.NewWriter(brokers, cfg.TopicBetEvents)
		defer writer.Close()
		publ = producer.NewKafkaPublisher(writer)
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicBetEvents))
	}

	// Métricas
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_mutations_total", Help: "mutações confirmadas por tipo"}, []string{"type"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_summary_cache_hits_total", Help: "summary servido do cache"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_summary_cache_misses_total", Help: "summary recalculado"})
	prometheus.MustRegister(mutations, cacheHits, cacheMisses)

	svc := service.New(log, store, summaryCache, publ, policy)
	svc.OnMutation = func(op string) { mutations.WithLabelValues(op).Inc() }
	svc.OnCacheHit = func() { cacheHits.Inc() }
	svc.OnCacheMiss = func() { cacheMisses.Inc() }

	// WebSocket alimentado pelo Pub/Sub
	var wsHandler http.HandlerFunc
	if rdb != nil {
		hub := ws.NewHub(log, allowOrigin(cfg.CORSOrigins), func(ctx context.Context) ([]byte, error) {
			sum, err := svc.Summary(ctx)
			if err != nil {
				return nil, err
			}
			return json.Marshal(events.SummaryUpdate{Type: events.TypeSummary, Reason: "snapshot", Summary: sum, Ts: time.Now().UTC()})
		})
		if err := ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log); err != nil {
			log.Fatal("failed to subscribe", zap.Error(err))
		}
		wsHandler = hub.HandleWS
		log.Info("live feed ready", zap.String("channel", cfg.RedisPubSubChannel))
	}

	api := httpapi.NewAPI(log, svc, wsHandler)
	api.CORSOrigins = cfg.CORSOrigins
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, metrics.Checks(checks), log)

	go func() {
		log.Info("http listening", zap.String("addr", apiSrv.Addr), zap.String("placed_policy", string(policy)))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ledger-service stopped")
}

func pingPostgres(pg *sql.DB) metrics.HealthFunc {
	return func(ctx context.Context) error { return pg.PingContext(ctx) }
}

// allowOrigin aplica CORS_ORIGINS ao upgrade do WebSocket
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}
