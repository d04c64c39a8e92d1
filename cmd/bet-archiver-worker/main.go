package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"

	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-archiver/cache"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-archiver/consumer"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-archiver/pubsub"
	"github.com/radieske/p2p-bet-escrow-poc/internal/bet-archiver/repository"
	sharedcache "github.com/radieske/p2p-bet-escrow-poc/internal/shared/cache"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/config"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/db"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/kafka"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/logger"
	"github.com/radieske/p2p-bet-escrow-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("bet-archiver-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Instancia cache Redis e repositório Postgres para o read model
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Configura o consumer Kafka (consumer group bet-archiver)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicBetLifecycle, "bet-archiver")
	defer reader.Close()

	// Mensagens indecifráveis vão para a DLQ em vez de travar o consumo
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetLifecycleDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_archiver_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_archiver_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_archiver_db_writes_total", Help: "escritas no banco (upsert+history)"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_archiver_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, persist, errorsBy)

	// Broadcaster para publicar atualizações de apostas no Redis Pub/Sub (usado pelo bet-feed-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o processor, conectando callbacks de métricas e broadcast
	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		Cache:      rcache,
		DLQ:        dlq,
		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após sucesso de persistência, envia update para o WebSocket via Redis Pub/Sub
		OnAfterPersist: func(ev events.BetLifecycle) {
			msg := pubsub.WSUpdate{BetID: ev.BetID, Payload: ev}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bet-archiver started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("bet-archiver stopped")
}
