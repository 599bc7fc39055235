package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	id "talentgate/pkg/domain"
)

// DefaultCacheTTL bounds staleness of cached round sequences. Reference data
// changes rarely; a short TTL keeps catalog edits visible without a redeploy.
const DefaultCacheTTL = 5 * time.Minute

// RedisCache decorates a Catalog with a Redis-backed TTL cache. Cache
// failures degrade to the underlying catalog, never to request failure.
type RedisCache struct {
	next   Catalog
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(next Catalog, client *goredis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(domainID id.DomainID) string {
	return "catalog:rounds:" + domainID.String()
}

func (c *RedisCache) OrderedRounds(ctx context.Context, domainID id.DomainID) ([]Round, error) {
	key := cacheKey(domainID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var rounds []Round
		if unmarshalErr := json.Unmarshal(raw, &rounds); unmarshalErr == nil {
			return rounds, nil
		}
		// Corrupt entry: fall through and repopulate.
	} else if err != goredis.Nil {
		c.logger.WarnContext(ctx, "catalog cache read failed", "domain_id", domainID, "error", err)
	}

	rounds, err := c.next.OrderedRounds(ctx, domainID)
	if err != nil {
		return nil, err
	}

	if encoded, marshalErr := json.Marshal(rounds); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed", "domain_id", domainID, "error", setErr)
		}
	}
	return rounds, nil
}
