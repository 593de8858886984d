package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/pkg/retry"
	"github.com/atanasg/ProteoVisualizer/pkg/security"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// Network types accepted as service defaults.
const (
	networkFunctional = "functional"
	networkPhysical   = "physical"
)

// Config is the complete application configuration.
type Config struct {
	Version   string          `json:"version"`
	NATS      NATSConfig      `json:"nats"`
	Retrieval RetrievalConfig `json:"retrieval"`
	Service   ServiceConfig   `json:"service"`
	Grouping  GroupingConfig  `json:"grouping"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs           []string      `json:"urls,omitempty"`
	Name           string        `json:"name,omitempty"`
	MaxReconnects  int           `json:"max_reconnects"`
	ReconnectWait  time.Duration `json:"reconnect_wait,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	RequestTimeout time.Duration `json:"request_timeout,omitempty"`
	Username       string        `json:"username,omitempty"`
	Password       string        `json:"password,omitempty"`
	Token          string        `json:"token,omitempty"`

	TLS security.ClientTLSConfig `json:"tls"`
}

// RetrievalConfig controls requests to the network retrieval service.
type RetrievalConfig struct {
	Subject string `json:"subject"`
	// RateLimit is requests per second; 0 disables limiting.
	RateLimit float64       `json:"rate_limit"`
	RateBurst int           `json:"rate_burst"`
	CacheSize int           `json:"cache_size"`
	CacheTTL  time.Duration `json:"cache_ttl,omitempty"`
	Retry     RetryConfig   `json:"retry"`
}

// RetryConfig mirrors retry.Config.
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay,omitempty"`
	MaxDelay     time.Duration `json:"max_delay,omitempty"`
	Multiplier   float64       `json:"multiplier,omitempty"`
	Jitter       bool          `json:"jitter"`
}

// ServiceConfig controls the grouping service and its request defaults.
type ServiceConfig struct {
	Queue          string        `json:"queue"`
	MaxNetworks    int           `json:"max_networks"`
	HandlerTimeout time.Duration `json:"handler_timeout,omitempty"`

	DefaultTaxonID     int     `json:"default_taxon_id,omitempty"`
	DefaultSpecies     string  `json:"default_species,omitempty"`
	DefaultCutoff      float64 `json:"default_cutoff"`
	DefaultNetworkType string  `json:"default_network_type"`
	Delimiter          string  `json:"delimiter"`
}

// GroupingConfig controls how groups are built and shown.
type GroupingConfig struct {
	KeepCollapsed   bool             `json:"keep_collapsed"`
	ConcatSeparator string           `json:"concat_separator"`
	GridSpacing     GridSpacing      `json:"grid_spacing"`
	Policies        []PolicyOverride `json:"policies,omitempty"`
}

// GridSpacing is the spacing of members laid out on expand.
type GridSpacing struct {
	Horizontal float64 `json:"horizontal"`
	Vertical   float64 `json:"vertical"`
}

// PolicyOverride binds a column or a namespace to an attribute policy, on top of the
// built-in policies. Exactly one of Column and Namespace is set.
type PolicyOverride struct {
	Column    string `json:"column,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Policy    string `json:"policy"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`

	TLS security.ServerTLSConfig `json:"tls"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		NATS: NATSConfig{
			URLs:           []string{"nats://localhost:4222"},
			Name:           "proteovis",
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
			Timeout:        5 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Retrieval: RetrievalConfig{
			Subject:   "string.network.retrieve",
			RateLimit: 5,
			RateBurst: 5,
			CacheSize: 64,
			CacheTTL:  10 * time.Minute,
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: 200 * time.Millisecond,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
				Jitter:       true,
			},
		},
		Service: ServiceConfig{
			Queue:              "proteovis",
			MaxNetworks:        32,
			HandlerTimeout:     2 * time.Minute,
			DefaultTaxonID:     9606,
			DefaultCutoff:      0.4,
			DefaultNetworkType: networkFunctional,
			Delimiter:          ";",
		},
		Grouping: GroupingConfig{
			KeepCollapsed:   true,
			ConcatSeparator: vocabulary.ConcatSeparator,
			GridSpacing:     GridSpacing{Horizontal: 80, Vertical: 80},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.NATS.URLs) == 0 {
		add("nats.urls is required")
	}
	for _, u := range c.NATS.URLs {
		if strings.TrimSpace(u) == "" {
			add("nats.urls contains an empty URL")
		}
	}
	for _, p := range c.NATS.TLS.Problems() {
		add("nats.tls: %s", p)
	}

	if !isValidSubject(c.Retrieval.Subject) {
		add("retrieval.subject %q is not a valid NATS subject", c.Retrieval.Subject)
	}
	if c.Retrieval.RateLimit < 0 {
		add("retrieval.rate_limit must not be negative")
	}
	if c.Retrieval.RateLimit > 0 && c.Retrieval.RateBurst < 1 {
		add("retrieval.rate_burst must be at least 1 when rate limiting")
	}
	if c.Retrieval.CacheSize < 0 {
		add("retrieval.cache_size must not be negative")
	}
	if c.Retrieval.Retry.MaxAttempts < 1 {
		add("retrieval.retry.max_attempts must be at least 1")
	}

	if c.Service.Queue != "" && !isValidSubject(c.Service.Queue) {
		add("service.queue %q is not a valid queue name", c.Service.Queue)
	}
	if c.Service.MaxNetworks < 0 {
		add("service.max_networks must not be negative")
	}
	if c.Service.DefaultCutoff < 0 || c.Service.DefaultCutoff > 1 {
		add("service.default_cutoff %v outside [0,1]", c.Service.DefaultCutoff)
	}
	switch c.Service.DefaultNetworkType {
	case networkFunctional, networkPhysical:
	default:
		add("service.default_network_type %q is unknown", c.Service.DefaultNetworkType)
	}
	if c.Service.Delimiter == "" {
		add("service.delimiter is required")
	}

	if c.Grouping.GridSpacing.Horizontal < 0 || c.Grouping.GridSpacing.Vertical < 0 {
		add("grouping.grid_spacing must not be negative")
	}
	for i, p := range c.Grouping.Policies {
		if (p.Column == "") == (p.Namespace == "") {
			add("grouping.policies[%d] needs exactly one of column and namespace", i)
		}
		if _, err := vocabulary.ParsePolicy(p.Policy); err != nil {
			add("grouping.policies[%d]: %v", i, err)
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			add("metrics.port %d outside 1-65535", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			add("metrics.path must start with /")
		}
		for _, p := range c.Metrics.TLS.Problems() {
			add("metrics.tls: %s", p)
		}
	}

	if len(problems) > 0 {
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(problems, "; ")),
			"Config", "Validate", "config check")
	}
	return nil
}

// isValidSubject reports whether s is a literal NATS subject: dot-separated tokens of
// alphanumerics, dashes and underscores.
func isValidSubject(s string) bool {
	if s == "" {
		return false
	}
	for _, token := range strings.Split(s, ".") {
		if token == "" {
			return false
		}
		for _, r := range token {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				return false
			}
		}
	}
	return true
}

// RetryConfig converts to the retry package's configuration.
func (r RetrievalConfig) RetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  r.Retry.MaxAttempts,
		InitialDelay: r.Retry.InitialDelay,
		MaxDelay:     r.Retry.MaxDelay,
		Multiplier:   r.Retry.Multiplier,
		AddJitter:    r.Retry.Jitter,
	}
}

// PolicyRegistry returns the built-in attribute policies with the overrides applied.
func (g GroupingConfig) PolicyRegistry() (*vocabulary.Registry, error) {
	registry := vocabulary.DefaultRegistry()
	for i, o := range g.Policies {
		policy, err := vocabulary.ParsePolicy(o.Policy)
		if err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: policies[%d]: %v", errors.ErrInvalidConfig, i, err),
				"GroupingConfig", "PolicyRegistry", "policy parse")
		}
		if o.Namespace != "" {
			registry.RegisterNamespace(o.Namespace, policy)
			continue
		}
		registry.Register(o.Column, policy)
	}
	return registry, nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}
	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// String returns a JSON representation with credentials masked.
func (c *Config) String() string {
	masked := c.Clone()
	if masked.NATS.Password != "" {
		masked.NATS.Password = "****"
	}
	if masked.NATS.Token != "" {
		masked.NATS.Token = "****"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Default()
	}
	return &SafeConfig{config: cfg}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "SafeConfig", "Update", "nil check")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg
	return nil
}
