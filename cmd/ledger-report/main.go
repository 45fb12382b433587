package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bettrack/internal/ledger"
	"github.com/radieske/bettrack/internal/ledger-service/repo"
	"github.com/radieske/bettrack/internal/report"
	"github.com/radieske/bettrack/internal/shared/config"
	"github.com/radieske/bettrack/internal/shared/db"
	"github.com/radieske/bettrack/internal/shared/logger"
)

func main() {
	orderFlag := flag.String("order", string(repo.OrderDateDesc), "ordem da tabela: date_desc|date_asc|created|amount")
	summaryOnly := flag.Bool("summary-only", false, "imprime só o painel de estatísticas")
	flag.Parse()

	cfg := config.LoadFor("ledger-report")
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	order, err := repo.ParseOrder(*orderFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bets, err := repo.NewPostgres(pg).ListAll(ctx, order)
	if err != nil {
		log.Fatal("list bets", zap.Error(err))
	}

	out := report.NewConsole(os.Stdout)
	if !*summaryOnly {
		if err := out.Bets(bets); err != nil {
			log.Fatal("render bets", zap.Error(err))
		}
	}
	sum := ledger.Summarize(bets)
	if sum.Skipped > 0 {
		log.Warn("malformed bets skipped", zap.Int("skipped", sum.Skipped))
	}
	if err := out.Summary(sum); err != nil {
		log.Fatal("render summary", zap.Error(err))
	}
}
