package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/atanasg/ProteoVisualizer/errors"
)

type lruEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero when the cache has no TTL
}

// lruCache evicts the least recently used entry once maxSize is exceeded.
type lruCache[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	stats   *Statistics
	metrics *cacheMetrics
	evictFn EvictCallback[V]
}

// NewLRU creates an LRU cache holding at most maxSize entries.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: max size %d", errors.ErrInvalidConfig, maxSize),
			"cache", "NewLRU", "size check")
	}
	opts := applyOptions(options...)

	var metrics *cacheMetrics
	if opts.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "cache", "NewLRU", "metrics registration")
		}
	}

	return &lruCache[V]{
		maxSize: maxSize,
		ttl:     opts.ttl,
		now:     opts.now,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   NewStatistics(),
		metrics: metrics,
		evictFn: opts.evictCallback,
	}, nil
}

// Get returns the value for key and marks it as recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	element, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.stats.Miss()
		c.metrics.recordMiss()
		return zero, false
	}

	entry := element.Value.(*lruEntry[V])
	if c.expired(entry) {
		c.remove(element)
		c.mu.Unlock()
		c.stats.Expiration()
		c.stats.Miss()
		c.metrics.recordEviction("expired")
		c.metrics.recordMiss()
		c.notify(*entry)
		return zero, false
	}

	c.order.MoveToFront(element)
	value := entry.value
	c.mu.Unlock()

	c.stats.Hit()
	c.metrics.recordHit()
	return value, true
}

// Set stores value under key and marks it as recently used.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	if element, ok := c.items[key]; ok {
		entry := element.Value.(*lruEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(element)
		c.mu.Unlock()
		c.stats.Set()
		return false, nil
	}

	c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value, expiresAt: expiresAt})

	var evicted []lruEntry[V]
	for len(c.items) > c.maxSize {
		back := c.order.Back()
		evicted = append(evicted, *back.Value.(*lruEntry[V]))
		c.remove(back)
	}
	c.stats.UpdateSize(int64(len(c.items)))
	c.metrics.updateSize(len(c.items))
	c.mu.Unlock()

	c.stats.Set()
	for _, entry := range evicted {
		c.stats.Eviction()
		c.metrics.recordEviction("size")
		c.notify(entry)
	}
	return true, nil
}

// Delete removes key.
func (c *lruCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	element, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	entry := *element.Value.(*lruEntry[V])
	c.remove(element)
	c.mu.Unlock()

	c.stats.Delete()
	c.notify(entry)
	return true, nil
}

// Clear removes every entry.
func (c *lruCache[V]) Clear() error {
	c.mu.Lock()
	var removed []lruEntry[V]
	if c.evictFn != nil {
		removed = make([]lruEntry[V], 0, len(c.items))
		for element := c.order.Back(); element != nil; element = element.Prev() {
			removed = append(removed, *element.Value.(*lruEntry[V]))
		}
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.stats.UpdateSize(0)
	c.metrics.updateSize(0)
	c.mu.Unlock()

	for _, entry := range removed {
		c.notify(entry)
	}
	return nil
}

// Size returns the number of stored entries.
func (c *lruCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys lists keys, most recently used first.
func (c *lruCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry[V]).key)
	}
	return keys
}

// Stats returns the cache statistics.
func (c *lruCache[V]) Stats() *Statistics {
	return c.stats
}

func (c *lruCache[V]) expired(entry *lruEntry[V]) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}

// remove must be called with mu held.
func (c *lruCache[V]) remove(element *list.Element) {
	delete(c.items, element.Value.(*lruEntry[V]).key)
	c.order.Remove(element)
	c.stats.UpdateSize(int64(len(c.items)))
	c.metrics.updateSize(len(c.items))
}

func (c *lruCache[V]) notify(entry lruEntry[V]) {
	if c.evictFn != nil {
		c.evictFn(entry.key, entry.value)
	}
}
