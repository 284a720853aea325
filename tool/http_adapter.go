package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAdapter is the runtime adapter for HTTP-backed tools. The tool endpoint
// receives the InvokeRequest envelope as a JSON POST body and responds with
// an InvokeResponse-shaped JSON object.
type HTTPAdapter struct {
	reg    ToolRegistration
	client *http.Client
}

// NewHTTPAdapter creates an HTTP adapter from a registration.
func NewHTTPAdapter(reg ToolRegistration) *HTTPAdapter {
	return &HTTPAdapter{
		reg:    reg,
		client: &http.Client{Timeout: timeoutFromRegistration(reg)},
	}
}

// Invoke executes an action over HTTP.
func (a *HTTPAdapter) Invoke(ctx context.Context, req InvokeRequest) (InvokeResponse, error) {
	if a == nil {
		return InvokeResponse{}, fmt.Errorf("tool: http adapter is nil")
	}
	endpoint := strings.TrimSpace(a.reg.Manifest.Transport.Endpoint)
	if endpoint == "" {
		return InvokeResponse{}, newToolError(ToolErrorCodeInvocationFailed, "http adapter endpoint is empty", false, nil)
	}
	if strings.TrimSpace(req.Action) == "" {
		return InvokeResponse{}, fmt.Errorf("%w: empty action", ErrActionNotFound)
	}

	payload := map[string]any{
		"tool_name":  req.ToolName,
		"action":     req.Action,
		"inputs":     req.Inputs,
		"config":     req.Config,
		"request_id": req.RequestID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return InvokeResponse{}, newToolError(ToolErrorCodeInvocationFailed, "encode HTTP invoke request", false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return InvokeResponse{}, newToolError(ToolErrorCodeInvocationFailed, "build HTTP request", false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return InvokeResponse{}, newToolError(ToolErrorCodeTimeout, "HTTP invoke cancelled", true, err)
		}
		return InvokeResponse{}, newToolError(ToolErrorCodeTransportFailure, "HTTP invoke failed", true, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return InvokeResponse{}, newToolError(ToolErrorCodeTransportFailure, "read HTTP response", true, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		retryable := resp.StatusCode >= http.StatusInternalServerError || isRetryableStatus(a.reg.Manifest.Transport.Retry, resp.StatusCode)
		return InvokeResponse{}, newToolError(ToolErrorCodeUpstreamFailure,
			fmt.Sprintf("HTTP invoke returned status %d: %s", resp.StatusCode, message), retryable, nil)
	}

	return decodeInvokeResponse(respBody, elapsedMS(start))
}

// Close releases any adapter resources.
func (a *HTTPAdapter) Close(ctx context.Context) error {
	return nil
}

func isRetryableStatus(policy RetryPolicy, status int) bool {
	for _, code := range policy.RetryableCodes {
		if code == status {
			return true
		}
	}
	return false
}

func decodeInvokeResponse(raw []byte, fallbackDuration int64) (InvokeResponse, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return InvokeResponse{DurationMS: fallbackDuration}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return InvokeResponse{}, newToolError(ToolErrorCodeDecodeFailure, "decode invoke response", false, err)
	}

	resp := InvokeResponse{DurationMS: fallbackDuration}
	if outputs, ok := obj["outputs"].(map[string]any); ok {
		resp.Outputs = outputs
	}
	if metadata, ok := obj["metadata"].(map[string]any); ok {
		resp.Metadata = metadata
	}
	if duration, ok := obj["duration_ms"].(float64); ok && duration > 0 {
		resp.DurationMS = int64(duration)
	}
	return resp, nil
}
