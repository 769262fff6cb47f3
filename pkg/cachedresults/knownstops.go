package cachedresults

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/pidboard/pkg/config"
)

const knownStopValue = "1"

// KnownStopsCache remembers which stop ids exist upstream. Only known ids are cached so a stop that is
// added upstream later is picked up on the next lookup.
type KnownStopsCache struct {
	Lookup config.StopLookup
	Cache  *cache.Cache[string]
}

func NewKnownStopsCache(lookup config.StopLookup, client *redis.Client, expiration time.Duration) *KnownStopsCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &KnownStopsCache{
		Lookup: lookup,
		Cache:  cache.New[string](redisStore),
	}
}

func (c *KnownStopsCache) FetchKnownStops(ctx context.Context, stopIDs []string) (map[string]bool, error) {
	knownStops := map[string]bool{}
	var uncached []string

	for _, stopID := range stopIDs {
		value, err := c.Cache.Get(ctx, cacheKey(stopID))
		if err == nil && value == knownStopValue {
			knownStops[stopID] = true
			continue
		}

		uncached = append(uncached, stopID)
	}

	if len(uncached) == 0 {
		log.Debug().Int("stops", len(stopIDs)).Msg("Known stops served from cache")
		return knownStops, nil
	}

	fetched, err := c.Lookup.FetchKnownStops(ctx, uncached)
	if err != nil {
		return nil, err
	}

	for stopID, known := range fetched {
		if !known {
			continue
		}

		knownStops[stopID] = true
		if err := c.Cache.Set(ctx, cacheKey(stopID), knownStopValue); err != nil {
			log.Warn().Err(err).Str("stopid", stopID).Msg("Failed to cache known stop")
		}
	}

	return knownStops, nil
}

func cacheKey(stopID string) string {
	return fmt.Sprintf("pidboard:knownstop:%s", stopID)
}
