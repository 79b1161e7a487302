package cache

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/avolkov/offerhub/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// Entry is an immutable cached value. Entries are overwritten wholesale on
// refresh, never partially mutated.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	CachedAt  time.Time       `json:"cached_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Tags      []string        `json:"tags"`
}

// Store is a TTL key/value store with tag-based invalidation. Get returns
// (nil, nil) on a miss or an expired entry.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration, tags ...string) error
	InvalidateTag(ctx context.Context, tag string) error
}

// Key builds a deterministic cache key from a provider tag and request
// parameters. Structurally equal params always collide to the same key,
// regardless of map insertion order.
func Key(provider string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(provider)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// Wrap is the cache-aside helper: return the cached value when present,
// otherwise invoke producer, store its result and return it. The second
// return value reports whether the value came from cache. Cache failures
// degrade to calling the producer; a producer failure is never cached.
func Wrap[T any](ctx context.Context, store Store, key string, ttl time.Duration, tags []string, producer func(context.Context) (T, error)) (T, bool, error) {
	var value T

	provider := "unknown"
	if len(tags) > 0 {
		provider = tags[len(tags)-1]
	}

	entry, err := store.Get(ctx, key)
	if err != nil {
		log.Errorf("cache get failed for key %s: %v", key, err)
	}
	if entry != nil {
		if err = json.Unmarshal(entry.Data, &value); err == nil {
			metrics.CacheRequestsCounter.WithLabelValues(provider, "hit").Inc()
			return value, true, nil
		}
		log.Errorf("cache entry for key %s is not decodable: %v", key, err)
	}
	metrics.CacheRequestsCounter.WithLabelValues(provider, "miss").Inc()

	value, err = producer(ctx)
	if err != nil {
		return value, false, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Errorf("cache marshal failed for key %s: %v", key, err)
		return value, false, nil
	}

	if err = store.Set(ctx, key, data, ttl, tags...); err != nil {
		log.Errorf("cache set failed for key %s: %v", key, err)
	}

	return value, false, nil
}
