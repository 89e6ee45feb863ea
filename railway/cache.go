package railway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drfccv/mcp-server-12306/config"
)

// TicketSource is the direct-ticket query primitive consumed by the transfer
// engine and the ticket tools.
type TicketSource interface {
	QueryLeftTickets(ctx context.Context, fromCode, toCode, date, purposeCodes string) ([]TrainLeg, error)
}

// CachedTicketSource wraps a TicketSource with a short-TTL Redis cache.
// Availability data goes stale quickly, so the TTL defaults to one minute;
// cache failures degrade to the wrapped source and are only logged.
type CachedTicketSource struct {
	src TicketSource
	rdb *redis.Client
	ttl time.Duration
}

// NewCachedTicketSource wraps src with a Redis cache when cfg has an address
// configured; otherwise src is returned unchanged.
func NewCachedTicketSource(src TicketSource, cfg config.CacheConfig) TicketSource {
	if cfg.RedisAddr == "" {
		return src
	}
	return &CachedTicketSource{
		src: src,
		rdb: redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
		ttl: time.Duration(cfg.TTLSeconds) * time.Second,
	}
}

func cacheKey(fromCode, toCode, date, purposeCodes string) string {
	return fmt.Sprintf("lt:%s:%s:%s:%s", fromCode, toCode, date, purposeCodes)
}

func (c *CachedTicketSource) QueryLeftTickets(ctx context.Context, fromCode, toCode, date, purposeCodes string) ([]TrainLeg, error) {
	key := cacheKey(fromCode, toCode, date, purposeCodes)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var legs []TrainLeg
		if err := json.Unmarshal(raw, &legs); err == nil {
			return legs, nil
		}
	} else if err != redis.Nil {
		log.Printf("ticket cache read failed: %v", err)
	}
	legs, err := c.src.QueryLeftTickets(ctx, fromCode, toCode, date, purposeCodes)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(legs); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("ticket cache write failed: %v", err)
		}
	}
	return legs, nil
}
