package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// incrScript adds ARGV[2] to KEYS[1] and arms its expiry (ARGV[1]
// milliseconds) when the key was just created or has lost its TTL.
var incrScript = redis.NewScript(`
local count = redis.call("INCRBY", KEYS[1], ARGV[2])
if count == tonumber(ARGV[2]) or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisStore is a Store shared by every instance talking to the same Redis.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// RedisConfig holds the connection settings for NewRedisClient.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// IncrWithExpiry implements Store.
func (s *RedisStore) IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, bool, error) {
	return s.IncrByWithExpiry(ctx, key, 1, ttl)
}

// IncrByWithExpiry implements Store.
func (s *RedisStore) IncrByWithExpiry(ctx context.Context, key string, n int64, ttl time.Duration) (int64, bool, error) {
	count, err := incrScript.Run(ctx, s.client, []string{key}, ttl.Milliseconds(), n).Int64()
	if err != nil {
		return 0, false, err
	}
	return count, count == n, nil
}

// Ping reports whether Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
