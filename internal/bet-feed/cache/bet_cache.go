package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Cache lê os snapshots correntes gravados pelo bet-archiver-worker
type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyBet(betID int64) string { return "bet:current:" + strconv.FormatInt(betID, 10) }

// GetCurrent retorna o snapshot JSON bruto da aposta, se presente no cache
func (c *Cache) GetCurrent(ctx context.Context, betID int64) ([]byte, bool, error) {
	b, err := c.R.Get(ctx, keyBet(betID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
