package mylocalstorage

import (
	"context"
	"sync"
)

type MemoryStorage struct {
	sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		values: map[string][]byte{},
	}
}

func (s *MemoryStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	s.Lock()
	defer s.Unlock()

	value, found := s.values[key]
	if !found {
		return nil, false, nil
	}
	return append([]byte{}, value...), true, nil
}

func (s *MemoryStorage) Put(c context.Context, key string, value []byte) error {
	s.Lock()
	defer s.Unlock()

	s.values[key] = append([]byte{}, value...)
	return nil
}

func (s *MemoryStorage) Delete(c context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.values, key)
	return nil
}
