package vocabulary

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Policy says how a group-node attribute is derived from member values.
type Policy int

const (
	// PolicyCopy takes the representative's value.
	PolicyCopy Policy = iota
	// PolicyConcat joins member strings.
	PolicyConcat
	// PolicyUnion merges member string lists.
	PolicyUnion
	// PolicyAverage averages member numbers.
	PolicyAverage
)

// String returns the policy name
func (p Policy) String() string {
	switch p {
	case PolicyCopy:
		return "copy"
	case PolicyConcat:
		return "concat"
	case PolicyUnion:
		return "union"
	case PolicyAverage:
		return "average"
	default:
		return "unknown"
	}
}

// ParsePolicy converts the textual form produced by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy":
		return PolicyCopy, nil
	case "concat":
		return PolicyConcat, nil
	case "union":
		return PolicyUnion, nil
	case "average", "avg":
		return PolicyAverage, nil
	default:
		return 0, fmt.Errorf("unknown attribute policy %q", s)
	}
}

// AttributePolicy binds a column (or a whole namespace) to a policy.
type AttributePolicy struct {
	Column      string
	Namespace   string
	Policy      Policy
	Description string
}

// Option configures a registered policy.
type Option func(*AttributePolicy)

// WithDescription sets the human-readable description.
func WithDescription(desc string) Option {
	return func(p *AttributePolicy) {
		p.Description = desc
	}
}

// Registry maps columns and namespaces to policies. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	columns    map[string]AttributePolicy
	order      []string
	namespaces map[string]AttributePolicy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		columns:    make(map[string]AttributePolicy),
		namespaces: make(map[string]AttributePolicy),
	}
}

// Register binds column to policy, overriding any earlier binding.
func (r *Registry) Register(column string, policy Policy, opts ...Option) {
	p := AttributePolicy{Column: column, Policy: policy}
	for _, opt := range opts {
		opt(&p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.columns[column]; !ok {
		r.order = append(r.order, column)
	}
	r.columns[column] = p
}

// RegisterNamespace binds every column of a namespace to policy. Explicit column
// bindings win over namespace bindings.
func (r *Registry) RegisterNamespace(ns string, policy Policy, opts ...Option) {
	p := AttributePolicy{Namespace: ns, Policy: policy}
	for _, opt := range opts {
		opt(&p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces[ns] = p
}

// Unregister removes a column binding.
func (r *Registry) Unregister(column string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.columns[column]; !ok {
		return
	}
	delete(r.columns, column)
	for i, c := range r.order {
		if c == column {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Columns returns the columns bound to policy in registration order.
func (r *Registry) Columns(policy Policy) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, c := range r.order {
		if r.columns[c].Policy == policy {
			out = append(out, c)
		}
	}
	return out
}

// Namespaces returns the namespaces bound to policy, sorted.
func (r *Registry) Namespaces(policy Policy) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for ns, p := range r.namespaces {
		if p.Policy == policy {
			out = append(out, ns)
		}
	}
	sort.Strings(out)
	return out
}

// Lookup returns the binding of column: its own, or its namespace's.
func (r *Registry) Lookup(column string) (AttributePolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.columns[column]; ok {
		return p, true
	}
	for ns, p := range r.namespaces {
		prefix := ns + "::"
		if len(column) > len(prefix) && strings.HasPrefix(column, prefix) {
			return p, true
		}
	}
	return AttributePolicy{}, false
}

// DefaultRegistry returns the policies used for STRING networks.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Name, PolicyCopy, WithDescription("identity"))
	r.Register(CanonicalName, PolicyCopy)
	r.Register(DatabaseIdentifier, PolicyCopy, WithDescription("external database identifier"))
	r.Register(InternalID, PolicyCopy)
	r.Register(NodeNamespace, PolicyCopy)
	r.Register(NodeType, PolicyCopy)
	r.Register(Species, PolicyCopy)
	r.Register(ImageURL, PolicyCopy)
	r.Register(EnhancedLabel, PolicyCopy, WithDescription("label style"))

	r.Register(DisplayName, PolicyConcat)
	r.Register(FullName, PolicyConcat)
	r.Register(Description, PolicyConcat)
	r.Register(Sequence, PolicyConcat)
	r.Register(DevelopmentLevel, PolicyConcat)
	r.Register(Family, PolicyConcat)

	r.Register(Structures, PolicyUnion, WithDescription("3D structure identifiers"))

	r.Register(InteractorScore, PolicyAverage)
	r.RegisterNamespace(NamespaceCompartment, PolicyAverage, WithDescription("compartment confidence"))
	r.RegisterNamespace(NamespaceTissue, PolicyAverage, WithDescription("tissue expression confidence"))

	return r
}
