package cache

import (
	"time"

	"github.com/atanasg/ProteoVisualizer/metric"
)

// Option configures a cache.
type Option[V any] func(*cacheOptions[V])

type cacheOptions[V any] struct {
	ttl           time.Duration
	metricsReg    metric.MetricsRegistrar
	metricsPrefix string
	evictCallback EvictCallback[V]
	now           func() time.Time
}

// WithTTL expires entries ttl after they were last set. Zero or negative means entries
// never expire.
func WithTTL[V any](ttl time.Duration) Option[V] {
	return func(opts *cacheOptions[V]) {
		if ttl > 0 {
			opts.ttl = ttl
		}
	}
}

// WithMetrics exports the cache statistics as Prometheus metrics labelled with prefix.
// A nil registrar or an empty prefix is ignored.
func WithMetrics[V any](registrar metric.MetricsRegistrar, prefix string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registrar != nil && prefix != "" {
			opts.metricsReg = registrar
			opts.metricsPrefix = prefix
		}
	}
}

// WithEvictionCallback sets the callback run for removed entries.
func WithEvictionCallback[V any](callback EvictCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.evictCallback = callback
	}
}

// withClock replaces time.Now in tests.
func withClock[V any](now func() time.Time) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.now = now
	}
}

func applyOptions[V any](options ...Option[V]) *cacheOptions[V] {
	opts := &cacheOptions[V]{now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
