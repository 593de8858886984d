package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/natsclient"
)

// Subjects served by Handler.
const (
	SubjectRetrieve   = "proteovis.retrieve"
	SubjectGroupState = "proteovis.group.state"
	SubjectExport     = "proteovis.network.export"
	SubjectRemove     = "proteovis.network.remove"
)

// DefaultQueue is the queue group shared by service replicas.
const DefaultQueue = "proteovis"

// Subscriber registers request/reply handlers. natsclient.Client implements it.
type Subscriber interface {
	SubscribeRequest(ctx context.Context, subject, queue string, handler natsclient.RequestHandler) error
}

// GroupStateRequest is the body of a group state request.
type GroupStateRequest struct {
	NetworkID string `json:"network_id"`
	Group     string `json:"group"`
	Collapsed bool   `json:"collapsed"`
}

// NetworkRef names a registered network.
type NetworkRef struct {
	NetworkID string `json:"network_id"`
}

// RemoveReply acknowledges a removal.
type RemoveReply struct {
	NetworkID string `json:"network_id"`
	Removed   bool   `json:"removed"`
}

// Handler serves a Service over NATS request/reply.
type Handler struct {
	service    *Service
	retrieve   *validator
	groupState *validator
	networkRef *validator
	logger     *slog.Logger
}

// NewHandler compiles the request schemas. A nil logger means slog.Default().
func NewHandler(svc *Service, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{service: svc, logger: logger.With("component", "handler")}
	var err error
	if h.retrieve, err = newValidator("retrieve", retrieveSchema); err != nil {
		return nil, err
	}
	if h.groupState, err = newValidator("group_state", groupStateSchema); err != nil {
		return nil, err
	}
	if h.networkRef, err = newValidator("network_ref", networkRefSchema); err != nil {
		return nil, err
	}
	return h, nil
}

// Register subscribes every handler on sub. An empty queue means DefaultQueue.
func (h *Handler) Register(ctx context.Context, sub Subscriber, queue string) error {
	if queue == "" {
		queue = DefaultQueue
	}
	routes := []struct {
		subject string
		handler natsclient.RequestHandler
	}{
		{SubjectRetrieve, h.HandleRetrieve},
		{SubjectGroupState, h.HandleGroupState},
		{SubjectExport, h.HandleExport},
		{SubjectRemove, h.HandleRemove},
	}
	for _, r := range routes {
		if err := sub.SubscribeRequest(ctx, r.subject, queue, r.handler); err != nil {
			return errors.Wrap(err, "Handler", "Register", "subscribe "+r.subject)
		}
		h.logger.Info("serving", "subject", r.subject, "queue", queue)
	}
	return nil
}

// HandleRetrieve answers a Request with a Result.
func (h *Handler) HandleRetrieve(ctx context.Context, data []byte) ([]byte, error) {
	var req Request
	if err := h.decode(h.retrieve, data, &req); err != nil {
		return nil, err
	}
	res, err := h.service.RetrieveAndGroup(ctx, req)
	if err != nil {
		return nil, err
	}
	return encode(res)
}

// HandleGroupState answers a GroupStateRequest with a GroupState.
func (h *Handler) HandleGroupState(ctx context.Context, data []byte) ([]byte, error) {
	var req GroupStateRequest
	if err := h.decode(h.groupState, data, &req); err != nil {
		return nil, err
	}
	state, err := h.service.SetGroupState(ctx, req.NetworkID, req.Group, req.Collapsed)
	if err != nil {
		return nil, err
	}
	return encode(state)
}

// HandleExport answers a NetworkRef with the network's payload.
func (h *Handler) HandleExport(_ context.Context, data []byte) ([]byte, error) {
	var ref NetworkRef
	if err := h.decode(h.networkRef, data, &ref); err != nil {
		return nil, err
	}
	p, err := h.service.Export(ref.NetworkID)
	if err != nil {
		return nil, err
	}
	return encode(p)
}

// HandleRemove destroys the referenced network.
func (h *Handler) HandleRemove(_ context.Context, data []byte) ([]byte, error) {
	var ref NetworkRef
	if err := h.decode(h.networkRef, data, &ref); err != nil {
		return nil, err
	}
	if err := h.service.Remove(ref.NetworkID); err != nil {
		return nil, err
	}
	return encode(RemoveReply{NetworkID: ref.NetworkID, Removed: true})
}

func (h *Handler) decode(v *validator, data []byte, out any) error {
	if err := v.validate(data); err != nil {
		h.logger.Debug("request rejected", "schema", v.name, "error", err)
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err), "Handler", "decode", v.name)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapFatal(err, "Handler", "encode", "reply marshal")
	}
	return out, nil
}
