package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches JSON encoded values. Implementations must treat a missing key
// as (false, nil).
type Store interface {
	GetObject(ctx context.Context, key string, dest interface{}) (bool, error)
	SetObject(ctx context.Context, key string, obj interface{}) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Connect creates a client for addr and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) GetObject(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) SetObject(ctx context.Context, key string, obj interface{}) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

// DeletePrefix removes every key starting with prefix.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Noop is used when Redis is not configured. Every lookup misses.
type Noop struct{}

func (Noop) GetObject(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) SetObject(context.Context, string, interface{}) error         { return nil }
func (Noop) DeletePrefix(context.Context, string) error                   { return nil }

// ShopPrefix is the key prefix of everything cached for one shop.
func ShopPrefix(shopID string) string {
	return "storefront:" + shopID + ":"
}

// ProductsKey builds the key of a storefront listing. The filters are hashed
// so arbitrary search strings stay out of the key.
func ProductsKey(shopID string, filters ...string) string {
	sum := md5.Sum([]byte(strings.Join(filters, "|")))
	return ShopPrefix(shopID) + "products:" + hex.EncodeToString(sum[:])
}
