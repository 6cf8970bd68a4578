package usage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/voiceingest/redis"
)

// recordScript claims the attempt key and, only when the claim succeeds,
// increments the counter. Returns the new count, or 0 when the attempt
// was already recorded.
var recordScript = goredis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'EX', ARGV[2]) then
  local n = redis.call('INCR', KEYS[2])
  redis.call('EXPIRE', KEYS[2], ARGV[3])
  return n
end
return 0
`)

// RedisStore is a Store on Redis.
type RedisStore struct {
	client     *redis.Client
	attemptTTL time.Duration
	counterTTL time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. Attempt keys expire after attemptTTL
// and day counters after counterTTL.
func NewRedisStore(client *redis.Client, attemptTTL, counterTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, attemptTTL: attemptTTL, counterTTL: counterTTL}
}

// Caller-supplied parts are query-escaped so a ':' inside an identity or
// idempotency key cannot shift the part boundaries.
func (s *RedisStore) attemptKey(identity, key string) string {
	return s.client.Key("usage", "attempt", url.QueryEscape(identity), url.QueryEscape(key))
}

func (s *RedisStore) counterKey(identity, day, kind string) string {
	return s.client.Key("usage", "count", url.QueryEscape(kind), url.QueryEscape(identity), day)
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, a Attempt) (bool, error) {
	keys := []string{
		s.attemptKey(a.Identity, a.IdempotencyKey),
		s.counterKey(a.Identity, a.Day(), a.Kind),
	}
	n, err := recordScript.Run(ctx, s.client.Unwrap(), keys,
		a.At.UTC().Format(time.RFC3339),
		ttlSeconds(s.attemptTTL),
		ttlSeconds(s.counterTTL),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("record attempt: %w", err)
	}
	return n > 0, nil
}

// Count implements Store.
func (s *RedisStore) Count(ctx context.Context, identity string, day time.Time, kind string) (int64, error) {
	v, err := s.client.Unwrap().Get(ctx, s.counterKey(identity, Day(day), kind)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return strconv.ParseInt(v, 10, 64)
}

func ttlSeconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
