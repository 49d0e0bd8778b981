package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const DefaultCacheTTL = 60 * time.Second

// Cache memoizes gateway estimates in Redis. Fallback quotes are never
// stored so a recovered gateway is picked up on the next call.
type Cache struct {
	client goredis.UniversalClient
	next   Provider
	ttl    time.Duration
}

func NewCache(client goredis.UniversalClient, next Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, next: next, ttl: ttl}
}

func cacheKey(amount decimal.Decimal, from, to string) string {
	return fmt.Sprintf("rate:estimate:%s:%s:%s", strings.ToLower(from), strings.ToLower(to), amount.String())
}

func (c *Cache) Estimate(ctx context.Context, amount decimal.Decimal, from, to string) (*Estimate, error) {
	key := cacheKey(amount, from, to)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var est Estimate
		if jsonErr := json.Unmarshal(raw, &est); jsonErr == nil {
			est.Source = SourceCache
			return &est, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cached estimate")
	case !errors.Is(err, goredis.Nil):
		log.Debug().Err(err).Str("key", key).Msg("rate cache read failed")
	}

	est, err := c.next.Estimate(ctx, amount, from, to)
	if err != nil {
		return nil, err
	}
	if est.Fallback {
		return est, nil
	}

	payload, err := json.Marshal(est)
	if err != nil {
		return est, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("rate cache write failed")
	}
	return est, nil
}
