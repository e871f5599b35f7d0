package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots as plain Redis string values with no
// expiry. Keys are prefixed to keep the keyspace tidy on a shared
// instance.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func ConnectRedis(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, prefix: "storefront:"}, nil
}

func (r *RedisStore) Get(key string) ([]byte, bool, error) {
	value, err := r.client.Get(context.Background(), r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (r *RedisStore) Set(key string, value []byte) error {
	return r.client.Set(context.Background(), r.prefix+key, value, 0).Err()
}

func (r *RedisStore) Delete(key string) error {
	return r.client.Del(context.Background(), r.prefix+key).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
