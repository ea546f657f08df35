package mylocalstorage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Backend   string `envconfig:"STORAGE" default:"file"`
	Dir       string `envconfig:"STORAGE_DIR" default:".canpayshop"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Owner     string `envconfig:"OWNER" default:"default"`
}

// New opens the configured backend. The returned func releases its resources.
func New(c context.Context, cfg Config) (Storage, func(), error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(), func() {}, nil
	case BackendFile:
		storage, err := NewFileStorage(cfg.Dir)
		if err != nil {
			return nil, func() {}, err
		}
		return storage, func() {}, nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		err := client.Ping(c).Err()
		if err != nil {
			client.Close()
			return nil, func() {}, fmt.Errorf("error connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStorage(client, cfg.Owner), func() { client.Close() }, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
