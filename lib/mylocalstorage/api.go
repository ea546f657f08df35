package mylocalstorage

import (
	"context"
)

// Storage is a durable key/value area private to one shopper, the analogue of browser local storage.
type Storage interface {
	Get(c context.Context, key string) ([]byte, bool, error)
	Put(c context.Context, key string, value []byte) error
	Delete(c context.Context, key string) error
}
