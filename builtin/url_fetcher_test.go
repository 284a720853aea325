package builtin

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/toolbelt-dev/toolbelt/tool"
)

func TestURLFetcherReturnsStatusAndBody(t *testing.T) {
	prevTransport := http.DefaultTransport
	http.DefaultTransport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("ok")),
			Header:     http.Header{"X-Test": []string{"yes"}},
		}, nil
	})
	t.Cleanup(func() {
		http.DefaultTransport = prevTransport
	})

	outputs, err := invokeNative(t, "url_fetcher", "fetch", map[string]any{
		"url": "http://unit-test.local/ok",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := outputs["status_code"]; got != 200 {
		t.Fatalf("status_code = %v, want 200", got)
	}
	if got := outputs["body"]; got != "ok" {
		t.Fatalf("body = %v, want %q", got, "ok")
	}
	headers, _ := outputs["headers"].(map[string]any)
	if got := headers["X-Test"]; got != "yes" {
		t.Fatalf("headers[X-Test] = %v, want %q", got, "yes")
	}
}

func TestURLFetcherSetsAuthorizationFromConfig(t *testing.T) {
	prevTransport := http.DefaultTransport
	var seenAuth string
	http.DefaultTransport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seenAuth = r.Header.Get("Authorization")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     make(http.Header),
		}, nil
	})
	t.Cleanup(func() {
		http.DefaultTransport = prevTransport
	})

	native, _ := Lookup("url_fetcher")
	_, err := native.Invoke(context.Background(), "fetch",
		map[string]any{"url": "http://unit-test.local/auth"},
		map[string]any{"authorization": "Bearer token"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if seenAuth != "Bearer token" {
		t.Fatalf("Authorization = %q, want %q", seenAuth, "Bearer token")
	}
}

func TestURLFetcherRequiresURL(t *testing.T) {
	_, err := invokeNative(t, "url_fetcher", "fetch", map[string]any{})
	if !tool.IsInputValidationError(err) {
		t.Fatalf("Invoke() error = %v, want input validation error", err)
	}
}
