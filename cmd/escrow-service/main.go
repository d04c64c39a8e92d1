package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/engine"
	"github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/expiry"
	ehttp "github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/http"
	kpub "github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/producer"
	"github.com/radieske/p2p-bet-escrow-poc/internal/escrow-service/wallet"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/config"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/kafka"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/logger"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("escrow-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "escrow-service"), zap.String("env", cfg.Env))

	// Ledger: wallet-service por padrão; em dev/testes pode rodar em memória
	var ledger engine.Ledger
	switch cfg.LedgerMode {
	case "memory":
		log.Warn("using in-memory ledger, balances are volatile")
		ledger = engine.NewMemoryLedger()
	default:
		ledger = wallet.New(cfg.WalletURL)
	}

	eng, err := engine.New(log, ledger, engine.Config{
		Owner:         cfg.ResolverAccount,
		EscrowAccount: cfg.EscrowAccount,
		FeeRateBps:    cfg.FeeRateBps,
	})
	if err != nil {
		log.Fatal("engine init", zap.Error(err))
	}

	// Kafka writer (topic bet_lifecycle)
	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetLifecycle)
	defer writer.Close()
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicBetLifecycle)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Zelador de expiração: devolve stakes de apostas OPEN vencidas
	sweeper := &expiry.Sweeper{
		Log:      log,
		Engine:   eng,
		Interval: 5 * time.Second,
		Publ:     publ,
	}
	go sweeper.Start(ctx)

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		// o motor é em memória; a dependência crítica é o ledger
		_, err := ledger.Balance(ctx, cfg.EscrowAccount)
		return err
	})
	defer metricsSrv.Close()
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	// HTTP público
	api := ehttp.NewServer(log, eng, publ)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}
	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = apiSrv.Shutdown(shCtx)
	}()

	log.Info("escrow-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
	log.Info("escrow-service stopped")
}
