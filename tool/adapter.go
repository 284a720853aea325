package tool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrActionNotFound indicates the requested action does not exist in a manifest.
var ErrActionNotFound = errors.New("tool: action not found")

// InvokeRequest is the transport-agnostic invocation payload.
type InvokeRequest struct {
	ToolName  string         `json:"tool_name,omitempty"`
	Action    string         `json:"action"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	Config    map[string]any `json:"config,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// InvokeResponse is the transport-agnostic invocation result.
type InvokeResponse struct {
	Outputs    map[string]any `json:"outputs,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Adapter hides transport details (native, HTTP).
type Adapter interface {
	Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error)
	Close(ctx context.Context) error
}

// AdapterFactory builds adapters from a tool registration.
type AdapterFactory interface {
	New(reg ToolRegistration) (Adapter, error)
}

// NativeLookup resolves a native tool implementation by registration name.
type NativeLookup func(name string) (NativeTool, bool)

// DefaultAdapterFactory resolves adapters using registration origin.
type DefaultAdapterFactory struct {
	NativeLookup NativeLookup
}

// New builds a transport adapter for a tool registration.
func (f DefaultAdapterFactory) New(reg ToolRegistration) (Adapter, error) {
	origin := reg.Origin
	if origin == "" {
		origin = originFromTransport(reg.Manifest.Transport.Type)
	}

	switch origin {
	case OriginNative:
		if f.NativeLookup == nil {
			return nil, fmt.Errorf("tool: native lookup is not configured for %q", reg.Name)
		}
		nativeTool, ok := f.NativeLookup(reg.Name)
		if !ok {
			return nil, fmt.Errorf("tool: native tool %q is not registered", reg.Name)
		}
		return NewNativeAdapter(nativeTool), nil
	case OriginHTTP:
		return NewHTTPAdapter(reg), nil
	default:
		return nil, fmt.Errorf("tool: unsupported transport %q for %q", reg.Manifest.Transport.Type, reg.Name)
	}
}

var _ AdapterFactory = (*DefaultAdapterFactory)(nil)

func originFromTransport(transport TransportType) ToolOrigin {
	switch transport {
	case TransportTypeNative:
		return OriginNative
	case TransportTypeHTTP:
		return OriginHTTP
	}
	return ""
}

const defaultAdapterTimeout = 30 * time.Second

func timeoutFromRegistration(reg ToolRegistration) time.Duration {
	if reg.Manifest.Transport.TimeoutMS <= 0 {
		return defaultAdapterTimeout
	}
	return time.Duration(reg.Manifest.Transport.TimeoutMS) * time.Millisecond
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
