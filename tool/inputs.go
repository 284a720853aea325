package tool

import "fmt"

// ValidateActionInputs checks supplied inputs against an action contract.
// It verifies that every required input is present and that every supplied
// value matches the declared type. Unknown input keys pass through so tools
// can accept optional extras.
func ValidateActionInputs(action ActionSpec, inputs map[string]any) []Diagnostic {
	diags := make([]Diagnostic, 0)

	for _, name := range sortedFieldNames(action.Inputs) {
		spec := action.Inputs[name]
		value, present := inputs[name]
		if !present {
			if spec.Required {
				diags = append(diags, Diagnostic{
					Field:    name,
					Code:     "REQUIRED_INPUT",
					Severity: SeverityError,
					Message:  fmt.Sprintf("%s is required", name),
				})
			}
			continue
		}
		if !valueMatchesType(value, spec.Type) {
			diags = append(diags, Diagnostic{
				Field:    name,
				Code:     "INPUT_TYPE",
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s must be a %s", name, spec.Type),
			})
		}
	}

	return diags
}

// CheckActionInputs validates inputs and converts findings into a typed error.
func CheckActionInputs(action ActionSpec, inputs map[string]any) error {
	diags := ValidateActionInputs(action, inputs)
	if !hasValidationErrors(diags) {
		return nil
	}
	return NewInputValidationError(diags)
}

// StringInput reads an optional string input, returning fallback when absent.
func StringInput(inputs map[string]any, key, fallback string) string {
	if value, ok := inputs[key].(string); ok {
		return value
	}
	return fallback
}

// BoolInput reads an optional boolean input, returning fallback when absent.
func BoolInput(inputs map[string]any, key string, fallback bool) bool {
	if value, ok := inputs[key].(bool); ok {
		return value
	}
	return fallback
}

// IntInput reads an optional integer input, tolerating JSON float decoding.
func IntInput(inputs map[string]any, key string, fallback int) int {
	switch value := inputs[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	}
	return fallback
}
