package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// urlFetcherTool fetches a URL over HTTP(S) and returns status/body.
type urlFetcherTool struct{}

func (urlFetcherTool) Name() string {
	return "url_fetcher"
}

func (urlFetcherTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest("url_fetcher")
	manifest.Tool.Description = "Fetches a URL over HTTP(S) and returns status, body, and headers."
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"fetch": {
			Description: "Execute an HTTP request and return response data.",
			Inputs: map[string]tool.FieldSpec{
				"url":    {Type: tool.TypeString, Required: true},
				"method": {Type: tool.TypeString},
				"body":   {Type: tool.TypeString},
			},
			Outputs: map[string]tool.FieldSpec{
				"status_code": {Type: tool.TypeInteger},
				"body":        {Type: tool.TypeString},
				"headers":     {Type: tool.TypeObject},
			},
		},
	}
	manifest.Config = map[string]tool.FieldSpec{
		"authorization": {
			Type:        tool.TypeString,
			Sensitive:   true,
			Description: "Optional Authorization header value.",
		},
	}
	return manifest
}

func (urlFetcherTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "fetch" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	urlValue := tool.StringInput(inputs, "url", "")
	if strings.TrimSpace(urlValue) == "" {
		return nil, tool.NewInputValidationError([]tool.Diagnostic{{
			Field:    "url",
			Code:     "REQUIRED_INPUT",
			Severity: tool.SeverityError,
			Message:  "url is required",
		}})
	}

	method := http.MethodGet
	if rawMethod := strings.TrimSpace(tool.StringInput(inputs, "method", "")); rawMethod != "" {
		method = strings.ToUpper(rawMethod)
	}

	var bodyReader io.Reader
	if body := tool.StringInput(inputs, "body", ""); body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlValue, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("url_fetcher: build request: %w", err)
	}

	if auth, ok := config["authorization"].(string); ok && strings.TrimSpace(auth) != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("url_fetcher: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("url_fetcher: read response: %w", err)
	}

	headers := make(map[string]any, len(resp.Header))
	for key, values := range resp.Header {
		headers[key] = strings.Join(values, ", ")
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
		"headers":     headers,
	}, nil
}
