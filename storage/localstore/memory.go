package localstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded values in a map; nothing survives the process.
type MemoryStore struct {
	sync.RWMutex
	values map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string, v interface{}) (bool, error) {
	s.RLock()
	data, ok := s.values[key]
	s.RUnlock()

	if !ok {
		return false, nil
	}
	return true, decode(key, data, v)
}

func (s *MemoryStore) Save(_ context.Context, key string, v interface{}) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()
	s.values[key] = data
	return nil
}

func (s *MemoryStore) Close() error { return nil }
