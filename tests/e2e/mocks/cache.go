package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/mgnrega-dashboard/pkg/cache"
)

// InMemoryCache stores JSON encoded values like the Redis cache does.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]entry

	GetCalls int
	SetCalls int
}

type entry struct {
	raw    []byte
	expiry time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++

	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiry) {
		return cache.ErrMiss
	}
	return json.Unmarshal(e.raw, dest)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	c.data[key] = entry{raw: raw, expiry: time.Now().Add(exp)}
	return nil
}

func (c *InMemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
