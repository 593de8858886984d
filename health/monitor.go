package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Check reports the current status of a part on demand.
type Check func() Status

// Monitor tracks the health of named parts of the process. It is safe for concurrent use.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
	checks   map[string]Check
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		statuses: make(map[string]Status),
		checks:   make(map[string]Check),
	}
}

// Update records status under name. The name wins over status.Component, and a zero
// timestamp is set to now.
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	m.mu.Lock()
	m.statuses[name] = status
	m.mu.Unlock()
}

func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, NewHealthy(name, message))
}

func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, NewUnhealthy(name, message))
}

func (m *Monitor) UpdateDegraded(name, message string) {
	m.Update(name, NewDegraded(name, message))
}

// AddCheck registers check under name. A check shadows any status pushed with Update
// under the same name.
func (m *Monitor) AddCheck(name string, check Check) {
	m.mu.Lock()
	m.checks[name] = check
	m.mu.Unlock()
}

// Get returns the status of name, running its check if it has one.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	check, hasCheck := m.checks[name]
	status, ok := m.statuses[name]
	m.mu.RUnlock()

	if hasCheck {
		return runCheck(name, check), true
	}
	return status, ok
}

// Remove forgets name.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	delete(m.statuses, name)
	delete(m.checks, name)
	m.mu.Unlock()
}

// Count returns the number of tracked parts.
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.checks)
	for name := range m.statuses {
		if _, shadowed := m.checks[name]; !shadowed {
			n++
		}
	}
	return n
}

// AggregateHealth combines every tracked part into one status for system.
func (m *Monitor) AggregateHealth(system string) Status {
	m.mu.RLock()
	subs := make([]Status, 0, len(m.statuses)+len(m.checks))
	for name, status := range m.statuses {
		if _, shadowed := m.checks[name]; !shadowed {
			subs = append(subs, status)
		}
	}
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()

	// Checks run outside the lock; they may call back into the monitored parts.
	for name, check := range checks {
		subs = append(subs, runCheck(name, check))
	}
	return Aggregate(system, subs)
}

// Handler serves the aggregate as JSON. Unhealthy answers 503, everything else 200.
func (m *Monitor) Handler(system string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth(system)

		code := http.StatusOK
		if status.IsUnhealthy() {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}

func runCheck(name string, check Check) Status {
	status := check()
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	return status
}
