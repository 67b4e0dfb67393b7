package cartstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sufrahub/sufra/cart"
)

// MemoryStore keeps serialized carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, token string) (*cart.Cart, error) {
	s.mu.RLock()
	payload, ok := s.carts[token]
	s.mu.RUnlock()

	c := cart.New()
	if !ok {
		return c, nil
	}
	if err := json.Unmarshal(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, token string, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[token] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.carts, token)
	s.mu.Unlock()
	return nil
}
