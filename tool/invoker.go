package tool

import (
	"context"
	"errors"
	"strings"
)

// Invoker executes a registered tool action through its transport adapter,
// applying the registration's retry policy and emitting observability events.
type Invoker struct {
	reg     ToolRegistration
	adapter Adapter
}

// NewInvoker resolves the adapter for a registration.
func NewInvoker(reg ToolRegistration, factory AdapterFactory) (*Invoker, error) {
	if factory == nil {
		return nil, errors.New("tool: adapter factory is nil")
	}
	adapter, err := factory.New(reg)
	if err != nil {
		return nil, err
	}
	return &Invoker{reg: reg, adapter: adapter}, nil
}

// Invoke runs one action. The tool name on the request defaults to the
// registration name when empty.
func (i *Invoker) Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
	if i == nil || i.adapter == nil {
		return InvokeResponse{}, errors.New("tool: invoker has no adapter")
	}
	if strings.TrimSpace(req.ToolName) == "" {
		req.ToolName = i.reg.Name
	}
	if req.Config == nil && len(i.reg.Config) > 0 {
		req.Config = make(map[string]any, len(i.reg.Config))
		for key, value := range i.reg.Config {
			req.Config[key] = value
		}
	}

	meta := retryObservationMeta{
		toolName:  i.reg.Name,
		action:    req.Action,
		transport: i.reg.Manifest.Transport.Type,
	}

	resp, attempts, err := invokeWithRetry(ctx, i.reg.Manifest.Transport.Retry, meta, func(ctx context.Context, attempt int) (InvokeResponse, error) {
		return i.adapter.Invoke(ctx, req)
	})

	emitInvokeObservation(ToolInvokeObservation{
		ToolName:   i.reg.Name,
		Action:     req.Action,
		Transport:  i.reg.Manifest.Transport.Type,
		Attempts:   attempts,
		DurationMS: resp.DurationMS,
		Success:    err == nil,
		ErrorCode:  toolErrorCode(err),
	})

	return resp, err
}

// Close releases adapter resources.
func (i *Invoker) Close(ctx context.Context) error {
	if i == nil || i.adapter == nil {
		return nil
	}
	return i.adapter.Close(ctx)
}
