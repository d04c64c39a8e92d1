package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/cache"
	fhttp "github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/http"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/repo"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-feed/ws"
	sharedcache "github.com/radieske/p2p-bet-escrow-poc/internal/shared/cache"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/config"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/db"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/logger"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-feed-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "bet-feed-service"), zap.String("env", cfg.Env))

	// Postgres (read model mantido pelo bet-archiver-worker)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (cache de snapshots + Pub/Sub de broadcast)
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // PoC: aceita qualquer origem
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	api := &fhttp.API{
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    cache.New(redisClient),
		Hub:      hub,
	}

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}
	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = apiSrv.Shutdown(shCtx)
	}()

	log.Info("bet-feed-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
	log.Info("bet-feed-service stopped")
}
