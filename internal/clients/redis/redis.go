package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
)

// StateStore is the shared-state surface the budget and queue services depend on.
// All budget state (daily counter, circuit flag, alert markers, job lists) lives
// behind this interface so it is never held in process memory and survives
// multi-instance deployment.
type StateStore interface {
	// Get returns the stored string value, or ("", false, nil) when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes a string value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	ExpireAt(ctx context.Context, key string, at time.Time) error
	// IncrByFloat atomically increments a numeric key and returns the new total.
	IncrByFloat(ctx context.Context, key string, amount float64) (float64, error)
	Exists(ctx context.Context, key string) (bool, error)
	LPush(ctx context.Context, key string, value string) error
	// RPop returns the oldest pushed value, or ("", false, nil) when the list is empty.
	RPop(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, keys ...string) error
}

func NewClient(log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

type stateStore struct {
	rdb *goredis.Client
}

func NewStateStore(rdb *goredis.Client) StateStore {
	return &stateStore{rdb: rdb}
}

func (s *stateStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *stateStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *stateStore) ExpireAt(ctx context.Context, key string, at time.Time) error {
	return s.rdb.ExpireAt(ctx, key, at).Err()
}

func (s *stateStore) IncrByFloat(ctx context.Context, key string, amount float64) (float64, error) {
	return s.rdb.IncrByFloat(ctx, key, amount).Result()
}

func (s *stateStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *stateStore) LPush(ctx context.Context, key string, value string) error {
	return s.rdb.LPush(ctx, key, value).Err()
}

func (s *stateStore) RPop(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.RPop(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *stateStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
