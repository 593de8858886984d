package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network/memnet"
	"github.com/atanasg/ProteoVisualizer/pgroup"
)

// Entry is a grouped network held by the registry.
type Entry struct {
	ID      uuid.UUID
	Network *memnet.Network
	Report  *pgroup.Report
	Created time.Time
}

// Registry keeps grouped networks by UUID. When full, the oldest entry is evicted.
type Registry struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*Entry
	order    []uuid.UUID
	capacity int
	onEvict  func(*Entry)
}

// NewRegistry creates a registry holding at most capacity networks; capacity <= 0
// means unbounded. onEvict, if not nil, is called for entries dropped by Add or Remove.
func NewRegistry(capacity int, onEvict func(*Entry)) *Registry {
	return &Registry{
		entries:  make(map[uuid.UUID]*Entry),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// Add registers net under a fresh UUID.
func (r *Registry) Add(net *memnet.Network, report *pgroup.Report) *Entry {
	entry := &Entry{
		ID:      uuid.New(),
		Network: net,
		Report:  report,
		Created: time.Now(),
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.order = append(r.order, entry.ID)
	var evicted []*Entry
	for r.capacity > 0 && len(r.order) > r.capacity {
		oldest := r.order[0]
		r.order = r.order[1:]
		evicted = append(evicted, r.entries[oldest])
		delete(r.entries, oldest)
	}
	r.mu.Unlock()

	for _, e := range evicted {
		r.evict(e)
	}
	return entry
}

// Get returns the entry registered under id.
func (r *Registry) Get(id string) (*Entry, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %q", errors.ErrNetworkNotFound, id), "Registry", "Get", "id parse")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrNetworkNotFound, id), "Registry", "Get", "lookup")
	}
	return entry, nil
}

// Remove drops the entry registered under id.
func (r *Registry) Remove(id string) error {
	entry, err := r.Get(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.entries[entry.ID]; !ok {
		r.mu.Unlock()
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrNetworkNotFound, id), "Registry", "Remove", "lookup")
	}
	delete(r.entries, entry.ID)
	for i, key := range r.order {
		if key == entry.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.evict(entry)
	return nil
}

// List returns the entries oldest first.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out
}

// Len is the number of registered networks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) evict(e *Entry) {
	if r.onEvict != nil && e != nil {
		r.onEvict(e)
	}
}
