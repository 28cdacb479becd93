package data

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ducminhle1904/dtw-pattern-finder/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string][]types.OHLCV
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]types.OHLCV),
	}
}

// Get retrieves a copy of the cached data
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores a copy of data
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]types.OHLCV)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
	logger   logrus.FieldLogger
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider, logger logrus.FieldLogger) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), logger)
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache, logger logrus.FieldLogger) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		logger:   orDiscard(logger).WithField("component", "cached_provider"),
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData serves repeated requests from the cache
func (p *CachedProvider) LoadData(ctx context.Context, req LoadRequest) ([]types.OHLCV, error) {
	key := req.CacheKey()
	if cachedData, exists := p.cache.Get(key); exists {
		p.logger.WithField("candles", len(cachedData)).Debug("cache hit")
		return cachedData, nil
	}

	data, err := p.provider.LoadData(ctx, req)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, data)
	return data, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
