package tool

import (
	"context"
	"errors"
	"testing"
)

// echoTool is a minimal native tool used across the package tests.
type echoTool struct {
	invoked int
	fail    error
}

func (e *echoTool) Name() string { return "echo" }

func (e *echoTool) Manifest() Manifest {
	manifest := NewManifest("echo")
	manifest.Tool.Description = "Echoes its input value."
	manifest.Transport = NewNativeTransport()
	manifest.Actions = map[string]ActionSpec{
		"echo": {
			Inputs: map[string]FieldSpec{
				"value": {Type: TypeString, Required: true},
			},
			Outputs: map[string]FieldSpec{
				"value": {Type: TypeString},
			},
			Idempotent: true,
		},
	}
	return manifest
}

func (e *echoTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	e.invoked++
	if e.fail != nil {
		return nil, e.fail
	}
	return map[string]any{"value": inputs["value"]}, nil
}

func TestNativeAdapterInvokes(t *testing.T) {
	adapter := NewNativeAdapter(&echoTool{})

	resp, err := adapter.Invoke(context.Background(), InvokeRequest{
		Action: "echo",
		Inputs: map[string]any{"value": "hi"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := resp.Outputs["value"]; got != "hi" {
		t.Fatalf("outputs[value] = %v, want %q", got, "hi")
	}
}

func TestNativeAdapterRejectsEmptyAction(t *testing.T) {
	adapter := NewNativeAdapter(&echoTool{})

	_, err := adapter.Invoke(context.Background(), InvokeRequest{})
	if !errors.Is(err, ErrActionNotFound) {
		t.Fatalf("Invoke() error = %v, want ErrActionNotFound", err)
	}
}

func TestNativeAdapterRejectsUnknownAction(t *testing.T) {
	adapter := NewNativeAdapter(&echoTool{})

	_, err := adapter.Invoke(context.Background(), InvokeRequest{Action: "shout"})
	if !errors.Is(err, ErrActionNotFound) {
		t.Fatalf("Invoke() error = %v, want ErrActionNotFound", err)
	}
}

func TestNativeAdapterValidatesInputsBeforeDispatch(t *testing.T) {
	impl := &echoTool{}
	adapter := NewNativeAdapter(impl)

	_, err := adapter.Invoke(context.Background(), InvokeRequest{
		Action: "echo",
		Inputs: map[string]any{"value": 99},
	})
	if !IsInputValidationError(err) {
		t.Fatalf("Invoke() error = %v, want input validation error", err)
	}
	if impl.invoked != 0 {
		t.Fatalf("tool invoked %d times, want 0", impl.invoked)
	}
}

func TestDefaultAdapterFactoryResolvesNative(t *testing.T) {
	impl := &echoTool{}
	factory := DefaultAdapterFactory{
		NativeLookup: func(name string) (NativeTool, bool) {
			if name == "echo" {
				return impl, true
			}
			return nil, false
		},
	}

	reg := ToolRegistration{
		Name:     "echo",
		Origin:   OriginNative,
		Manifest: impl.Manifest(),
	}
	adapter, err := factory.New(reg)
	if err != nil {
		t.Fatalf("factory.New() error = %v", err)
	}
	if _, ok := adapter.(*NativeAdapter); !ok {
		t.Fatalf("adapter type = %T, want *NativeAdapter", adapter)
	}
}

func TestDefaultAdapterFactoryInfersOriginFromTransport(t *testing.T) {
	reg := ToolRegistration{
		Name:     "remote",
		Manifest: NewManifest("remote"),
	}
	reg.Manifest.Transport = NewHTTPTransport(TransportSpec{Endpoint: "http://unit-test.local/invoke"})

	adapter, err := DefaultAdapterFactory{}.New(reg)
	if err != nil {
		t.Fatalf("factory.New() error = %v", err)
	}
	if _, ok := adapter.(*HTTPAdapter); !ok {
		t.Fatalf("adapter type = %T, want *HTTPAdapter", adapter)
	}
}

func TestDefaultAdapterFactoryFailsForUnknownNative(t *testing.T) {
	reg := ToolRegistration{
		Name:     "ghost",
		Origin:   OriginNative,
		Manifest: NewManifest("ghost"),
	}

	if _, err := (DefaultAdapterFactory{}).New(reg); err == nil {
		t.Fatal("factory.New() = nil error, want failure without native lookup")
	}

	factory := DefaultAdapterFactory{
		NativeLookup: func(string) (NativeTool, bool) { return nil, false },
	}
	if _, err := factory.New(reg); err == nil {
		t.Fatal("factory.New() = nil error, want failure for unknown tool")
	}
}
