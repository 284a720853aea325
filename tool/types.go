package tool

import (
	"encoding/json"
	"fmt"
	"slices"
)

// V1 type system literals used by tool manifests.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
	TypeBytes   = "bytes"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeAny     = "any"
)

var validV1Types = map[string]struct{}{
	TypeString:  {},
	TypeInteger: {},
	TypeFloat:   {},
	TypeBoolean: {},
	TypeBytes:   {},
	TypeArray:   {},
	TypeObject:  {},
	TypeAny:     {},
}

// V1TypeSystemValidator validates field type declarations in a manifest.
type V1TypeSystemValidator struct{}

// ValidateManifest checks all field specs against the v1 type system.
func (V1TypeSystemValidator) ValidateManifest(manifest Manifest) []Diagnostic {
	diags := make([]Diagnostic, 0)

	for _, actionName := range sortedActionNames(manifest.Actions) {
		action := manifest.Actions[actionName]
		for _, inputName := range sortedFieldNames(action.Inputs) {
			validateFieldSpec("actions."+actionName+".inputs."+inputName, action.Inputs[inputName], &diags)
		}
		for _, outputName := range sortedFieldNames(action.Outputs) {
			validateFieldSpec("actions."+actionName+".outputs."+outputName, action.Outputs[outputName], &diags)
		}
	}

	for _, configName := range sortedFieldNames(manifest.Config) {
		validateFieldSpec("config."+configName, manifest.Config[configName], &diags)
	}

	return diags
}

func validateFieldSpec(path string, spec FieldSpec, diags *[]Diagnostic) {
	if !isValidV1Type(spec.Type) {
		*diags = append(*diags, Diagnostic{
			Field:    path + ".type",
			Code:     "INVALID_TYPE",
			Severity: SeverityError,
			Message:  fmt.Sprintf("Unsupported type %q; allowed: string, integer, float, boolean, bytes, array, object, any", spec.Type),
		})
		return
	}

	if spec.Type == TypeArray {
		if spec.Items == nil {
			*diags = append(*diags, Diagnostic{
				Field:    path + ".items",
				Code:     "REQUIRED_ITEMS",
				Severity: SeverityError,
				Message:  "items is required when type is array",
			})
			return
		}
		validateFieldSpec(path+".items", *spec.Items, diags)
	}

	for _, name := range sortedFieldNames(spec.Properties) {
		validateFieldSpec(path+".properties."+name, spec.Properties[name], diags)
	}
}

// valueMatchesType reports whether a runtime value satisfies a declared type.
// JSON decoding produces float64 for all numbers, so integer accepts any
// float64 without a fractional part.
func valueMatchesType(value any, typeName string) bool {
	if value == nil {
		return false
	}
	switch typeName {
	case TypeAny:
		return true
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBytes:
		switch value.(type) {
		case []byte, string:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeInteger:
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return v == float64(int64(v))
		case json.Number:
			_, err := v.Int64()
			return err == nil
		}
		return false
	case TypeFloat:
		switch v := value.(type) {
		case float32, float64, int, int32, int64:
			return true
		case json.Number:
			_, err := v.Float64()
			return err == nil
		}
		return false
	case TypeArray:
		_, ok := value.([]any)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}

func isValidV1Type(typeName string) bool {
	_, ok := validV1Types[typeName]
	return ok
}

func sortedActionNames(actions map[string]ActionSpec) []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func sortedFieldNames(fields map[string]FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
