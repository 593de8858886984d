package pgroup

import (
	"github.com/atanasg/ProteoVisualizer/network"
)

// DuplicateQueue holds the nodes standing for one protein: the original first, then its
// copies. Each node is handed out once.
type DuplicateQueue struct {
	nodes []network.SUID
	next  int
}

// Claim returns the next unclaimed node.
func (q *DuplicateQueue) Claim() (network.SUID, bool) {
	if q.next >= len(q.nodes) {
		return 0, false
	}
	n := q.nodes[q.next]
	q.next++
	return n, true
}

// Remaining is the number of nodes not yet claimed.
func (q *DuplicateQueue) Remaining() int { return len(q.nodes) - q.next }

// Nodes returns all nodes of the queue, claimed or not.
func (q *DuplicateQueue) Nodes() []network.SUID {
	return append([]network.SUID(nil), q.nodes...)
}

// DuplicateRegistry maps an original node to its queue. It lives for one pipeline run.
type DuplicateRegistry struct {
	queues map[network.SUID]*DuplicateQueue
}

// NewDuplicateRegistry returns an empty registry.
func NewDuplicateRegistry() *DuplicateRegistry {
	return &DuplicateRegistry{queues: make(map[network.SUID]*DuplicateQueue)}
}

// Add registers the copies of original. The original leads the queue.
func (r *DuplicateRegistry) Add(original network.SUID, copies ...network.SUID) {
	q, ok := r.queues[original]
	if !ok {
		q = &DuplicateQueue{nodes: []network.SUID{original}}
		r.queues[original] = q
	}
	q.nodes = append(q.nodes, copies...)
}

// Queue returns the queue of original.
func (r *DuplicateRegistry) Queue(original network.SUID) (*DuplicateQueue, bool) {
	q, ok := r.queues[original]
	return q, ok
}

// Len is the number of duplicated originals.
func (r *DuplicateRegistry) Len() int { return len(r.queues) }

// Copies is the number of copies across all queues.
func (r *DuplicateRegistry) Copies() int {
	n := 0
	for _, q := range r.queues {
		n += len(q.nodes) - 1
	}
	return n
}
