package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FuturesDesk/internal/model"

	"golang.org/x/sync/singleflight"
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// Loader fetches contract metadata from the upstream source on a cache miss.
type Loader func(ctx context.Context, symbol string) (model.Contract, error)

type contractEntry struct {
	contract model.Contract
	expires  time.Time
}

// ContractCache is a thread-safe TTL cache for contract metadata.
// It is owned by whoever creates it; there is no package-level instance.
// A singleflight.Group prevents duplicate in-flight loads for the same symbol.
type ContractCache struct {
	mu      sync.RWMutex
	entries map[string]*contractEntry
	group   singleflight.Group
	ttl     time.Duration
	load    Loader
	now     Clock
}

// Option configures a ContractCache.
type Option func(*ContractCache)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(cc *ContractCache) { cc.now = c }
}

// NewContractCache creates an empty cache.
func NewContractCache(ttl time.Duration, load Loader, opts ...Option) *ContractCache {
	cc := &ContractCache{
		entries: make(map[string]*contractEntry),
		ttl:     ttl,
		load:    load,
		now:     time.Now,
	}
	for _, o := range opts {
		o(cc)
	}
	return cc
}

// Peek returns a cached contract if present and not expired.
func (cc *ContractCache) Peek(symbol string) (model.Contract, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	e, ok := cc.entries[symbol]
	if !ok || !cc.now().Before(e.expires) {
		return model.Contract{}, false
	}
	return e.contract, true
}

// Get returns the contract for symbol, loading it on a miss or after expiry.
func (cc *ContractCache) Get(ctx context.Context, symbol string) (model.Contract, error) {
	if c, ok := cc.Peek(symbol); ok {
		return c, nil
	}
	v, err, _ := cc.group.Do(symbol, func() (interface{}, error) {
		if c, ok := cc.Peek(symbol); ok {
			return c, nil
		}
		c, err := cc.load(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("load contract %s: %w", symbol, err)
		}
		cc.Put(symbol, c)
		return c, nil
	})
	if err != nil {
		return model.Contract{}, err
	}
	return v.(model.Contract), nil
}

// Put stores a contract with a fresh expiry.
func (cc *ContractCache) Put(symbol string, c model.Contract) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.entries[symbol] = &contractEntry{contract: c, expires: cc.now().Add(cc.ttl)}
}

// Invalidate drops a symbol from the cache.
func (cc *ContractCache) Invalidate(symbol string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.entries, symbol)
}

// Len returns the number of entries, expired ones included.
func (cc *ContractCache) Len() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.entries)
}
