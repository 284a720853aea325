package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toolbelt-dev/toolbelt/builtin"
	"github.com/toolbelt-dev/toolbelt/tool"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a tool manifest file without registering",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().Bool("strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(filePath) // #nosec G304 -- CLI path argument.
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "file not found: %s", filePath)
		}
		return fmt.Errorf("reading file: %w", err)
	}

	diags := validateManifestBytes(cmd, data, filePath)
	printValidateDiagnostics(out, diags, format)

	hasErrs := hasErrorDiagnostics(diags)
	hasWarns := len(warningDiagnostics(diags)) > 0

	if hasErrs || (strict && hasWarns) {
		return exitError(exitValidation, "validation failed")
	}
	return nil
}

func validateManifestBytes(cmd *cobra.Command, data []byte, filePath string) []tool.Diagnostic {
	jsonData, err := yamlToJSONIfNeeded(data, filePath)
	if err != nil {
		return []tool.Diagnostic{{
			Code:     "PARSE_FAILED",
			Severity: tool.SeverityError,
			Message:  fmt.Sprintf("Failed to parse file: %v", err),
		}}
	}

	var manifest tool.Manifest
	if err := json.Unmarshal(jsonData, &manifest); err != nil {
		return []tool.Diagnostic{{
			Code:     "PARSE_FAILED",
			Severity: tool.SeverityError,
			Message:  fmt.Sprintf("Failed to decode manifest: %v", err),
		}}
	}

	reg := tool.ToolRegistration{
		Name:     manifest.Tool.Name,
		Manifest: manifest,
		Origin:   originFromTransport(manifest.Transport.Type),
	}

	err = tool.ValidateNewRegistration(cmd.Context(), reg, tool.RegistrationValidationOptions{
		NativeLookup:      builtin.Lookup,
		AllowExistingName: true,
	})
	if err == nil {
		return nil
	}

	var validationErr *tool.RegistrationValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Details
	}
	return []tool.Diagnostic{{
		Code:     "VALIDATION_FAILED",
		Severity: tool.SeverityError,
		Message:  err.Error(),
	}}
}

func printValidateDiagnostics(w io.Writer, diags []tool.Diagnostic, format string) {
	if format == "json" {
		printDiagnosticsJSON(w, diags)
		return
	}
	printDiagnosticsText(w, diags)
}

func printDiagnosticsText(w io.Writer, diags []tool.Diagnostic) {
	for _, d := range diags {
		sev := strings.ToUpper(string(d.Severity))
		if d.Field != "" {
			fmt.Fprintf(w, "%s [%s]: %s (at %s)\n", sev, d.Code, d.Message, d.Field)
		} else {
			fmt.Fprintf(w, "%s [%s]: %s\n", sev, d.Code, d.Message)
		}
	}

	errs := errorDiagnostics(diags)
	warns := warningDiagnostics(diags)

	switch {
	case len(errs) == 0 && len(warns) == 0:
		fmt.Fprintln(w, "Valid!")
	case len(errs) == 0 && len(warns) > 0:
		fmt.Fprintf(w, "\nValid! (%d %s)\n", len(warns), pluralize("warning", len(warns)))
	default:
		fmt.Fprintf(w, "\n%d %s, %d %s\n",
			len(errs), pluralize("error", len(errs)),
			len(warns), pluralize("warning", len(warns)))
	}
}

func printDiagnosticsJSON(w io.Writer, diags []tool.Diagnostic) {
	// Output an empty array rather than null when there are no diagnostics.
	if diags == nil {
		diags = []tool.Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(diags)
}

func errorDiagnostics(diags []tool.Diagnostic) []tool.Diagnostic {
	out := make([]tool.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity == tool.SeverityError {
			out = append(out, d)
		}
	}
	return out
}

func warningDiagnostics(diags []tool.Diagnostic) []tool.Diagnostic {
	out := make([]tool.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Severity == tool.SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

func hasErrorDiagnostics(diags []tool.Diagnostic) bool {
	return len(errorDiagnostics(diags)) > 0
}

// yamlToJSONIfNeeded converts YAML data to JSON if the file path indicates a
// YAML file. JSON files are returned as-is.
func yamlToJSONIfNeeded(data []byte, path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return json.Marshal(raw)
	}
	return data, nil
}

// pluralize returns the singular or plural form of a word based on count.
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
