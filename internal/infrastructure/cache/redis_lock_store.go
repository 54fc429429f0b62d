package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockStore implements LockStore with SET NX leases.
// Suitable when several server instances match the same orders.
type RedisLockStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisLockStore connects to Redis and verifies the connection
func NewRedisLockStore(cfg RedisConfig) (*RedisLockStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisLockStoreWithClient(client, ""), nil
}

// NewRedisLockStoreWithClient wraps an existing client. An empty prefix
// leaves keys untouched.
func NewRedisLockStoreWithClient(client *redis.Client, keyPrefix string) *RedisLockStore {
	return &RedisLockStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lease with SET NX PX and a random token
func (s *RedisLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release deletes the lease if token still owns it
func (s *RedisLockStore) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, s.client, []string{s.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisLockStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisLockStore) GetClient() *redis.Client {
	return s.client
}

var _ shared.LockStore = (*RedisLockStore)(nil)
