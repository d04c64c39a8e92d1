package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/p2p-bet-escrow-poc/pkg/contracts/events"
)

// RedisCache guarda o último snapshot conhecido de cada aposta no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis do snapshot corrente de uma aposta
func key(betID int64) string { return "bet:current:" + strconv.FormatInt(betID, 10) }

// SetCurrent armazena o snapshot corrente da aposta no Redis com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, e events.BetLifecycle) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(e.BetID), b, r.TTL).Err()
}
