package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// getOrCache implements the read-through contract shared by all caches here:
// a cached entry that exists and decodes wins; any cache failure, miss or
// decode failure falls through to the source of record, whose result is
// written back best effort. Only source-of-record failures propagate.
func getOrCache[T any](
	ctx context.Context,
	store Store,
	key string,
	ttl time.Duration,
	find func(ctx context.Context) (*T, error),
	logger zerolog.Logger,
) (*T, error) {
	cached, found, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to store")
	} else if found {
		var value T
		if err := json.Unmarshal([]byte(cached), &value); err == nil {
			return &value, nil
		}
		// Stale or incompatible payload left behind by an older schema:
		// treated exactly like a miss.
		logger.Warn().Str("key", key).Msg("Cannot decode cached entry, falling back to store")
	}

	value, err := find(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cannot serialize entry for caching")
		return value, nil
	}
	if err := store.Set(ctx, key, string(payload), ttl); err != nil {
		// Cache population is best effort; the freshly read value still wins.
		logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
	return value, nil
}
