package builtin

import (
	"context"
	"net/http"
	"testing"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// roundTripFunc lets tests stub HTTP transport behavior.
type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestRegistrationsIncludeAllBuiltins(t *testing.T) {
	regs := Registrations()

	names := map[string]tool.ToolRegistration{}
	for _, reg := range regs {
		names[reg.Name] = reg
	}

	expected := []string{
		WordCounterName,
		"time_converter",
		"file_creator",
		"file_reader",
		"url_fetcher",
		"tool_scaffold",
	}
	for _, name := range expected {
		reg, ok := names[name]
		if !ok {
			t.Fatalf("missing built-in registration %q", name)
		}
		if reg.Origin != tool.OriginNative {
			t.Fatalf("%s origin = %q, want %q", name, reg.Origin, tool.OriginNative)
		}
		if reg.Manifest.Transport.Type != tool.TransportTypeNative {
			t.Fatalf("%s transport = %q, want %q", name, reg.Manifest.Transport.Type, tool.TransportTypeNative)
		}
		if !reg.Enabled {
			t.Fatalf("%s enabled = false, want true", name)
		}
	}
	if len(regs) != len(expected) {
		t.Fatalf("len(Registrations) = %d, want %d", len(regs), len(expected))
	}
}

func TestRegistrationsAreValid(t *testing.T) {
	for _, reg := range Registrations() {
		err := tool.ValidateNewRegistration(context.Background(), reg, tool.RegistrationValidationOptions{
			NativeLookup: Lookup,
		})
		if err != nil {
			t.Fatalf("ValidateNewRegistration(%s) error = %v", reg.Name, err)
		}
	}
}

func TestRegistrationReturnsFalseForUnknownName(t *testing.T) {
	if _, ok := Registration("no_such_tool"); ok {
		t.Fatal("Registration(no_such_tool) = true, want false")
	}
}
