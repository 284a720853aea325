package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Tool names may be snake_case identifiers or human-readable display names
// such as "Word Counter Tool". Action names stay machine-friendly.
var (
	toolNamePattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _-]{0,63}$`)
	actionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)
)

// RegistrationValidationFailedCode identifies aggregated registration failures.
const RegistrationValidationFailedCode = "REGISTRATION_VALIDATION_FAILED"

// RegistrationValidationError is a structured validation error payload.
type RegistrationValidationError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []Diagnostic `json:"details"`
}

func (e *RegistrationValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RegistrationValidationOptions configures validation behavior.
type RegistrationValidationOptions struct {
	Store             Store
	NativeLookup      NativeLookup
	AllowExistingName bool
}

// ValidateNewRegistration validates a registration against manifest and policy.
func ValidateNewRegistration(ctx context.Context, reg ToolRegistration, opts RegistrationValidationOptions) error {
	var pipeline Pipeline
	pipeline.AddManifestValidator(V1TypeSystemValidator{})
	pipeline.AddRegistrationValidator(RegistrationNameValidator{
		Store:         opts.Store,
		RequireUnique: !opts.AllowExistingName,
		ctx:           ctx,
	})
	pipeline.AddRegistrationValidator(ActionNameValidator{})
	pipeline.AddRegistrationValidator(TransportValidator{NativeLookup: opts.NativeLookup})

	manifestResult := pipeline.ValidateManifest(reg.Manifest)
	registrationResult := pipeline.ValidateRegistration(reg)
	diags := append(manifestResult.Diagnostics, registrationResult.Diagnostics...)

	if !hasValidationErrors(diags) {
		return nil
	}

	return &RegistrationValidationError{
		Code:    RegistrationValidationFailedCode,
		Message: "Tool registration failed validation",
		Details: diags,
	}
}

// RegistrationNameValidator validates tool names and uniqueness constraints.
type RegistrationNameValidator struct {
	Store         Store
	RequireUnique bool
	ctx           context.Context
}

// ValidateRegistration checks the name pattern and, when a store is
// configured, rejects duplicate names.
func (v RegistrationNameValidator) ValidateRegistration(reg ToolRegistration) []Diagnostic {
	diags := make([]Diagnostic, 0)

	name := strings.TrimSpace(reg.Name)
	if !toolNamePattern.MatchString(name) {
		diags = append(diags, Diagnostic{
			Field:    "name",
			Code:     "INVALID_NAME",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Tool name %q must start with a letter and contain only letters, digits, spaces, underscores, or hyphens (max 64)", reg.Name),
		})
		return diags
	}

	if v.Store == nil || !v.RequireUnique {
		return diags
	}

	ctx := v.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	_, exists, err := v.Store.Get(ctx, name)
	if err != nil {
		diags = append(diags, Diagnostic{
			Field:    "name",
			Code:     "STORE_LOOKUP_FAILED",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Checking name uniqueness: %v", err),
		})
		return diags
	}
	if exists {
		diags = append(diags, Diagnostic{
			Field:    "name",
			Code:     "DUPLICATE_NAME",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Tool %q is already registered", name),
		})
	}
	return diags
}

// ActionNameValidator requires at least one well-formed action.
type ActionNameValidator struct{}

// ValidateRegistration checks action presence and naming.
func (ActionNameValidator) ValidateRegistration(reg ToolRegistration) []Diagnostic {
	diags := make([]Diagnostic, 0)

	if len(reg.Manifest.Actions) == 0 {
		diags = append(diags, Diagnostic{
			Field:    "actions",
			Code:     "NO_ACTIONS",
			Severity: SeverityError,
			Message:  "Manifest must declare at least one action",
		})
		return diags
	}

	for _, name := range sortedActionNames(reg.Manifest.Actions) {
		if !actionNamePattern.MatchString(name) {
			diags = append(diags, Diagnostic{
				Field:    "actions." + name,
				Code:     "INVALID_ACTION_NAME",
				Severity: SeverityError,
				Message:  fmt.Sprintf("Action name %q must be lowercase snake_case", name),
			})
		}
	}
	return diags
}

// TransportValidator checks transport-specific registration requirements.
type TransportValidator struct {
	NativeLookup NativeLookup
}

// ValidateRegistration verifies native tools resolve and HTTP tools carry
// an endpoint.
func (v TransportValidator) ValidateRegistration(reg ToolRegistration) []Diagnostic {
	diags := make([]Diagnostic, 0)

	switch reg.Manifest.Transport.Type {
	case TransportTypeNative:
		if v.NativeLookup == nil {
			return diags
		}
		if _, ok := v.NativeLookup(reg.Name); !ok {
			diags = append(diags, Diagnostic{
				Field:    "transport",
				Code:     "NATIVE_NOT_FOUND",
				Severity: SeverityError,
				Message:  fmt.Sprintf("No native implementation registered for %q", reg.Name),
			})
		}
	case TransportTypeHTTP:
		if strings.TrimSpace(reg.Manifest.Transport.Endpoint) == "" {
			diags = append(diags, Diagnostic{
				Field:    "transport.endpoint",
				Code:     "REQUIRED_ENDPOINT",
				Severity: SeverityError,
				Message:  "HTTP transport requires an endpoint",
			})
		}
	default:
		diags = append(diags, Diagnostic{
			Field:    "transport.type",
			Code:     "INVALID_TRANSPORT",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Unsupported transport %q; allowed: native, http", reg.Manifest.Transport.Type),
		})
	}
	return diags
}
