package tool

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ToolErrorCodeActionNotFound is returned when an action name is missing or unknown.
	ToolErrorCodeActionNotFound = "ACTION_NOT_FOUND"
	// ToolErrorCodeInvalidInput is returned when inputs fail schema validation.
	ToolErrorCodeInvalidInput = "INVALID_INPUT"
	// ToolErrorCodeTransportFailure is returned when transport I/O fails.
	ToolErrorCodeTransportFailure = "TRANSPORT_FAILURE"
	// ToolErrorCodeTimeout is returned when invocation times out.
	ToolErrorCodeTimeout = "TIMEOUT"
	// ToolErrorCodeUpstreamFailure is returned for non-success upstream responses.
	ToolErrorCodeUpstreamFailure = "UPSTREAM_FAILURE"
	// ToolErrorCodeDecodeFailure is returned when adapter response decoding fails.
	ToolErrorCodeDecodeFailure = "DECODE_FAILURE"
	// ToolErrorCodeInvocationFailed is a generic fallback for tool invocation failures.
	ToolErrorCodeInvocationFailed = "INVOCATION_FAILED"
)

// InputValidationFailedCode identifies aggregated input validation failures.
const InputValidationFailedCode = "INPUT_VALIDATION_FAILED"

// ToolError is a structured invocation error that can flow across adapters and
// CLI surfaces without losing retryability or machine-readable codes.
type ToolError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return ToolErrorCodeInvocationFailed
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *ToolError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newToolError(code, message string, retryable bool, cause error) *ToolError {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = ToolErrorCodeInvocationFailed
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &ToolError{
		Code:      cleanCode,
		Message:   cleanMsg,
		Retryable: retryable,
		Cause:     cause,
	}
}

func toolErrorFrom(err error) (*ToolError, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

func toolErrorCode(err error) string {
	if toolErr, ok := toolErrorFrom(err); ok && toolErr != nil {
		return toolErr.Code
	}
	var inputErr *InputValidationError
	if errors.As(err, &inputErr) {
		return InputValidationFailedCode
	}
	return ""
}

// InputValidationError reports that supplied inputs do not satisfy an
// action's input schema. It is never retryable.
type InputValidationError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []Diagnostic `json:"details"`
}

func (e *InputValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInputValidationError builds an input validation error from diagnostics.
func NewInputValidationError(diags []Diagnostic) *InputValidationError {
	msg := "Inputs failed validation"
	if len(diags) == 1 {
		msg = diags[0].Message
	}
	return &InputValidationError{
		Code:    InputValidationFailedCode,
		Message: msg,
		Details: diags,
	}
}

// IsInputValidationError reports whether err is an input validation failure.
func IsInputValidationError(err error) bool {
	var inputErr *InputValidationError
	return errors.As(err, &inputErr)
}
