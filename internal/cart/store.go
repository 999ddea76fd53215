package cart

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
)

// Store is the key-value persistence port for serialized carts.
type Store interface {
	// Load returns (nil, false, nil) when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// CacheStore persists carts in a cache.Cache (Redis in production) under
// "<service>:cart:<key>". A positive ttl is refreshed on every save; zero
// keeps the cart until it is cleared.
type CacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCacheStore(c cache.Cache, ttl time.Duration) *CacheStore {
	return &CacheStore{cache: c, ttl: ttl}
}

func (s *CacheStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := s.cache.Get(ctx, s.cache.GenerateKey("cart", key))
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *CacheStore) Save(ctx context.Context, key string, value []byte) error {
	return s.cache.Set(ctx, s.cache.GenerateKey("cart", key), string(value), s.ttl)
}
