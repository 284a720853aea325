package cli

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/toolbelt-dev/toolbelt/builtin"
	"github.com/toolbelt-dev/toolbelt/tool"
)

// NewInvokeCmd creates the "invoke" subcommand.
func NewInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <tool> <action>",
		Short: "Invoke a registered tool action",
		Args:  cobra.ExactArgs(2),
		RunE:  runInvoke,
	}

	cmd.Flags().StringArray("input", nil, "Input KEY=VALUE pair (repeatable)")
	cmd.Flags().String("input-json", "", "Input object as inline JSON")
	cmd.Flags().String("store-path", "", "Path to registry store; .json for file store, otherwise SQLite (default: ~/.toolbelt/toolbelt.db)")

	return cmd
}

func runInvoke(cmd *cobra.Command, args []string) error {
	name := args[0]
	action := args[1]

	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	reg, found, err := resolveRegistration(cmd.Context(), store, name)
	if err != nil {
		return exitError(exitRuntime, "loading tool: %v", err)
	}
	if !found {
		return exitError(exitValidation, "tool %q is not registered", name)
	}
	if !reg.Enabled {
		return exitError(exitValidation, "tool %q is disabled", name)
	}

	inputs, err := parseInvokeInputs(cmd)
	if err != nil {
		return exitError(exitInputParse, "parsing inputs: %v", err)
	}

	invoker, err := tool.NewInvoker(reg, tool.DefaultAdapterFactory{NativeLookup: builtin.Lookup})
	if err != nil {
		return exitError(exitRuntime, "creating adapter: %v", err)
	}
	defer invoker.Close(cmd.Context())

	resp, err := invoker.Invoke(cmd.Context(), tool.InvokeRequest{
		ToolName:  name,
		Action:    action,
		Inputs:    inputs,
		RequestID: uuid.New().String(),
	})
	if err != nil {
		if tool.IsInputValidationError(err) {
			return exitError(exitValidation, "invalid inputs: %v", err)
		}
		return exitError(exitRuntime, "invocation failed: %v", err)
	}

	result := map[string]any{
		"success":     true,
		"tool":        name,
		"action":      action,
		"duration_ms": resp.DurationMS,
		"outputs":     resp.Outputs,
	}
	if len(resp.Metadata) > 0 {
		result["metadata"] = resp.Metadata
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "encoding result: %v", err)
	}
	_, _ = cmd.OutOrStdout().Write(append(data, '\n'))
	return nil
}

func parseInvokeInputs(cmd *cobra.Command) (map[string]any, error) {
	inputs := map[string]any{}
	rawPairs, _ := cmd.Flags().GetStringArray("input")
	for _, pair := range rawPairs {
		key, value, err := parseKeyValue(pair)
		if err != nil {
			return nil, err
		}
		inputs[key] = parsePrimitiveValue(value)
	}

	inputJSON, _ := cmd.Flags().GetString("input-json")
	if strings.TrimSpace(inputJSON) == "" {
		return inputs, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(inputJSON), &obj); err != nil {
		return nil, err
	}
	for key, value := range obj {
		inputs[key] = value
	}
	return inputs, nil
}

var (
	errKeyRequired   = errors.New("key is required")
	errValueRequired = errors.New("value is required")
)

func parseKeyValue(value string) (string, string, error) {
	parts := strings.SplitN(value, "=", 2)
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return "", "", errKeyRequired
	}
	if len(parts) == 1 {
		return "", "", errValueRequired
	}
	return key, parts[1], nil
}

// parsePrimitiveValue maps flag strings to JSON-shaped primitives so typed
// input validation sees booleans and numbers rather than raw strings.
func parsePrimitiveValue(value string) any {
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "\"") {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed
		}
	}
	return value
}
