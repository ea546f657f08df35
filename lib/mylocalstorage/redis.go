package mylocalstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "canpayshop"

type redisStorage struct {
	client *redis.Client
	owner  string
}

// NewRedisStorage scopes all keys to one owner (shopper or kiosk), values never expire.
func NewRedisStorage(client *redis.Client, owner string) Storage {
	return &redisStorage{
		client: client,
		owner:  owner,
	}
}

func (s *redisStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(c, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStorage) Put(c context.Context, key string, value []byte) error {
	err := s.client.Set(c, s.key(key), value, 0).Err()
	if err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Delete(c context.Context, key string) error {
	err := s.client.Del(c, s.key(key)).Err()
	if err != nil {
		return fmt.Errorf("redis delete %s failed: %w", key, err)
	}
	return nil
}

func (s *redisStorage) key(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, s.owner, key)
}
