package localstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the encoded values in redis, each key namespaced by prefix.
// Values never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "loading %q", key)
	}
	return true, decode(key, data, v)
}

func (s *RedisStore) Save(ctx context.Context, key string, v interface{}) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	if err = s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return errors.Wrapf(err, "saving %q", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
