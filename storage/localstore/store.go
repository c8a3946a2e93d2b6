// Package localstore persists small JSON documents under string keys, the way a browser
// keeps data in local storage.
package localstore

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/coursepath/core"
)

// Store loads and saves JSON encoded values.
type Store interface {
	// Load decodes the value stored under key into v and reports whether key was found.
	Load(ctx context.Context, key string, v interface{}) (bool, error)
	Save(ctx context.Context, key string, v interface{}) error
	Close() error
}

// Open returns the Store configured by conf.Demo.
func Open(ctx context.Context, conf *core.Config) (Store, error) {
	switch conf.Demo.Store {
	case "", core.DemoStoreMemory:
		return NewMemoryStore(), nil
	case core.DemoStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Demo.RedisAddr,
			Password: conf.Demo.RedisPassword,
			DB:       conf.Demo.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Wrap(err, "connecting to redis")
		}
		return NewRedisStore(client, conf.Demo.KeyPrefix), nil
	default:
		return nil, errors.Errorf("unknown demo store %q", conf.Demo.Store)
	}
}

func encode(key string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %q", key)
	}
	return data, nil
}

func decode(key string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decoding %q", key)
	}
	return nil
}
