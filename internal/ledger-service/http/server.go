package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
)

// Ledger é o que a API usa do service
type Ledger interface {
	Add(ctx context.Context, in ledger.BetInput) (ledger.Bet, error)
	List(ctx context.Context, order repo.Order) ([]ledger.Bet, error)
	Get(ctx context.Context, id string) (ledger.Bet, error)
	Update(ctx context.Context, id string, patch ledger.BetPatch) (ledger.Bet, error)
	Settle(ctx context.Context, id, outcome string) (ledger.Bet, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (ledger.Summary, error)
	Outcomes(ctx context.Context) (ledger.OutcomeCounts, error)
	ProfitSeries(ctx context.Context) ([]ledger.ProfitPoint, error)
}

// API expõe o ledger via REST e o feed ao vivo via WebSocket
type API struct {
	log    *zap.Logger
	ledger Ledger
	ws     http.HandlerFunc // nil quando o feed ao vivo está desligado

	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewAPI(log *zap.Logger, l Ledger, ws http.HandlerFunc) *API {
	return &API{
		log:            log,
		ledger:         l,
		ws:             ws,
		CORSOrigins:    []string{"*"},
		RequestTimeout: 15 * time.Second,
	}
}

// Router monta as rotas. O WebSocket fica fora do Timeout: a conexão é longa.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(a.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.RequestTimeout))

		r.Route("/v1/bets", func(r chi.Router) {
			r.Post("/", a.createBet)
			r.Get("/", a.listBets)
			r.Get("/export.csv", a.exportCSV)
			r.Get("/{id}", a.getBet)
			r.Patch("/{id}", a.patchBet)
			r.Delete("/{id}", a.deleteBet)
			r.Post("/{id}/settle", a.settleBet)
		})
		r.Get("/v1/summary", a.summary)
		r.Get("/v1/charts/outcomes", a.outcomes)
		r.Get("/v1/charts/profit", a.profit)
	})

	if a.ws != nil {
		r.Get("/v1/ws", a.ws)
	}
	return r
}

// requestLogger registra cada request com zap
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
