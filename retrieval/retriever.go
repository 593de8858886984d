package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/metric"
	"github.com/atanasg/ProteoVisualizer/pkg/cache"
	"github.com/atanasg/ProteoVisualizer/pkg/retry"
)

// DefaultSubject is the request subject of the retrieval service.
const DefaultSubject = "string.network.retrieve"

const operation = "retrieve"

// Retriever fetches the network for a set of arguments. A retrieval that yields no
// network returns errors.ErrNoNetwork.
type Retriever interface {
	Retrieve(ctx context.Context, args Args) (*Payload, error)
}

// Requester sends a request and returns the reply. *natsclient.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// errorReply is the failure envelope of the retrieval service.
type errorReply struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

// NATSRetriever retrieves networks over NATS request/reply.
type NATSRetriever struct {
	requester Requester
	subject   string
	retry     retry.Config
	limiter   *rate.Limiter
	cache     cache.Cache[*Payload]
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// Option configures a NATSRetriever.
type Option func(*NATSRetriever)

// WithSubject overrides DefaultSubject.
func WithSubject(subject string) Option {
	return func(r *NATSRetriever) { r.subject = subject }
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg retry.Config) Option {
	return func(r *NATSRetriever) { r.retry = cfg }
}

// WithRateLimit allows perSecond requests with the given burst. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(r *NATSRetriever) {
		if perSecond <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCache serves repeated arguments from c.
func WithCache(c cache.Cache[*Payload]) Option {
	return func(r *NATSRetriever) { r.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *NATSRetriever) { r.logger = logger }
}

// WithMetrics records retrievals in the core request metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(r *NATSRetriever) { r.metrics = m }
}

// NewNATSRetriever creates a retriever sending requests through requester.
func NewNATSRetriever(requester Requester, opts ...Option) *NATSRetriever {
	r := &NATSRetriever{
		requester: requester,
		subject:   DefaultSubject,
		retry:     retry.DefaultConfig(),
		limiter:   rate.NewLimiter(rate.Limit(5), 5),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve implements Retriever.
func (r *NATSRetriever) Retrieve(ctx context.Context, args Args) (*Payload, error) {
	start := time.Now()
	if r.metrics != nil {
		r.metrics.RecordRequestReceived(operation)
	}

	payload, status, err := r.retrieve(ctx, args)
	if r.metrics != nil {
		r.metrics.RecordRequestProcessed(operation, status, time.Since(start))
		if err != nil {
			r.metrics.RecordError(operation, errors.Classify(err).String())
		}
	}
	if err != nil {
		r.logger.Error("Network retrieval failed", "subject", r.subject, "status", status, "error", err)
		return nil, err
	}
	r.logger.Info("Network retrieved", "name", payload.Name, "nodes", len(payload.Nodes),
		"edges", len(payload.Edges), "status", status, "duration", time.Since(start))
	return payload, nil
}

func (r *NATSRetriever) retrieve(ctx context.Context, args Args) (*Payload, string, error) {
	args = args.WithDefaults()
	if err := args.Validate(); err != nil {
		return nil, "invalid", err
	}

	body, err := json.Marshal(args)
	if err != nil {
		return nil, "invalid", errors.WrapInvalid(err, "NATSRetriever", "Retrieve", "request encoding")
	}
	key := cacheKey(body)
	if r.cache != nil {
		if p, ok := r.cache.Get(key); ok {
			return p, "cached", nil
		}
	}

	payload, err := retry.DoWithResult(ctx, r.retry, func() (*Payload, error) {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, retry.NonRetryable(errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrRateLimited, err),
					"NATSRetriever", "Retrieve", "rate limit wait"))
			}
		}
		reply, err := r.requester.Request(ctx, r.subject, body)
		if err != nil {
			return nil, errors.WrapTransient(err, "NATSRetriever", "Retrieve", "request")
		}
		return decodeReply(reply)
	})
	if err != nil {
		if errors.Is(err, errors.ErrNoNetwork) {
			return nil, "empty", err
		}
		return nil, "error", errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrNoNetwork, err), "NATSRetriever", "Retrieve", "retrieval")
	}

	if args.NetworkName != "" {
		payload.Name = args.NetworkName
	}
	if r.cache != nil {
		if _, err := r.cache.Set(key, payload); err != nil {
			r.logger.Warn("Payload cache write failed", "error", err)
		}
	}
	return payload, "success", nil
}

func decodeReply(reply []byte) (*Payload, error) {
	var envelope errorReply
	if err := json.Unmarshal(reply, &envelope); err == nil && envelope.Error != "" {
		err := fmt.Errorf("retrieval service: %s", envelope.Error)
		if envelope.Class == "transient" {
			return nil, errors.WrapTransient(err, "NATSRetriever", "Retrieve", "service reply")
		}
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err), "NATSRetriever", "Retrieve", "service reply")
	}

	var p Payload
	if err := json.Unmarshal(reply, &p); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "NATSRetriever", "Retrieve", "reply decode")
	}
	if p.Empty() {
		return nil, errors.WrapFatal(errors.ErrNoNetwork, "NATSRetriever", "Retrieve", "reply check")
	}
	return &p, nil
}

func cacheKey(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
