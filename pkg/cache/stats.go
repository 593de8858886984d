package cache

import (
	"sync/atomic"
)

// Statistics counts cache operations. It is safe for concurrent use.
type Statistics struct {
	hits        atomic.Int64
	misses      atomic.Int64
	sets        atomic.Int64
	deletes     atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
	size        atomic.Int64
}

// NewStatistics returns zeroed statistics.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Hit records a hit.
func (s *Statistics) Hit() { s.hits.Add(1) }

// Miss records a miss.
func (s *Statistics) Miss() { s.misses.Add(1) }

// Set records a set.
func (s *Statistics) Set() { s.sets.Add(1) }

// Delete records a delete.
func (s *Statistics) Delete() { s.deletes.Add(1) }

// Eviction records an eviction for size.
func (s *Statistics) Eviction() { s.evictions.Add(1) }

// Expiration records an entry dropped after its TTL.
func (s *Statistics) Expiration() { s.expirations.Add(1) }

// UpdateSize records the current number of entries.
func (s *Statistics) UpdateSize(size int64) { s.size.Store(size) }

// Hits returns the number of hits.
func (s *Statistics) Hits() int64 { return s.hits.Load() }

// Misses returns the number of misses, expired lookups included.
func (s *Statistics) Misses() int64 { return s.misses.Load() }

// Sets returns the number of sets.
func (s *Statistics) Sets() int64 { return s.sets.Load() }

// Deletes returns the number of deletes.
func (s *Statistics) Deletes() int64 { return s.deletes.Load() }

// Evictions returns the number of evictions for size.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// Expirations returns the number of expired entries dropped.
func (s *Statistics) Expirations() int64 { return s.expirations.Load() }

// CurrentSize returns the last recorded size.
func (s *Statistics) CurrentSize() int64 { return s.size.Load() }

// HitRatio is hits over lookups, 0 before the first lookup.
func (s *Statistics) HitRatio() float64 {
	hits, misses := s.Hits(), s.Misses()
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}
