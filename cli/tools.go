package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toolbelt-dev/toolbelt/builtin"
	"github.com/toolbelt-dev/toolbelt/tool"
)

// NewToolsCmd creates the "tools" command group.
func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage tool registrations",
	}
	cmd.PersistentFlags().String("store-path", "", "Path to registry store; .json for file store, otherwise SQLite (default: ~/.toolbelt/toolbelt.db)")

	cmd.AddCommand(newToolsRegisterCmd())
	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInspectCmd())
	cmd.AddCommand(newToolsUnregisterCmd())
	cmd.AddCommand(newToolsEnableCmd())
	cmd.AddCommand(newToolsDisableCmd())
	cmd.AddCommand(newToolsApplyCmd())
	cmd.AddCommand(newToolsHealthCmd())

	return cmd
}

func newToolsRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a tool in the local registry",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsRegister,
	}
	cmd.Flags().String("type", "", "Tool origin: native | http")
	cmd.Flags().String("manifest", "", "Path to manifest JSON or YAML")
	cmd.Flags().String("endpoint", "", "Transport endpoint override")
	return cmd
}

func runToolsRegister(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	registration, err := buildRegistrationForRegister(cmd, name)
	if err != nil {
		return err
	}
	ensureRegistrationDefaults(&registration)

	if err := tool.ValidateNewRegistration(cmd.Context(), registration, tool.RegistrationValidationOptions{
		Store:        store,
		NativeLookup: builtin.Lookup,
	}); err != nil {
		return formatRegistrationValidationError(err)
	}

	if err := store.Upsert(cmd.Context(), registration); err != nil {
		return exitError(exitRuntime, "saving registration: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered tool: %s (%s, status=%s)\n", registration.Name, registration.Origin, registration.Status)
	return nil
}

func buildRegistrationForRegister(cmd *cobra.Command, name string) (tool.ToolRegistration, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	originValue, _ := cmd.Flags().GetString("type")
	origin, err := parseToolOrigin(originValue)
	if err != nil {
		return tool.ToolRegistration{}, exitError(exitValidation, "%s", err)
	}

	if manifestPath == "" {
		if origin != "" && origin != tool.OriginNative {
			return tool.ToolRegistration{}, exitError(exitValidation, "--manifest is required for %s registrations", origin)
		}
		reg, ok := builtin.Registration(name)
		if !ok {
			return tool.ToolRegistration{}, exitError(exitValidation, "native tool %q requires --manifest (built-in not found)", name)
		}
		return reg, nil
	}

	manifest, err := loadManifestFile(manifestPath)
	if err != nil {
		return tool.ToolRegistration{}, exitError(exitValidation, "loading manifest: %v", err)
	}
	if strings.TrimSpace(manifest.Tool.Name) == "" {
		manifest.Tool.Name = name
	}
	if manifest.Tool.Name != name {
		return tool.ToolRegistration{}, exitError(exitValidation, "manifest tool.name %q does not match registration name %q", manifest.Tool.Name, name)
	}

	if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
		manifest.Transport = tool.NewHTTPTransport(tool.TransportSpec{
			Endpoint:  endpoint,
			TimeoutMS: manifest.Transport.TimeoutMS,
			Retry:     manifest.Transport.Retry,
		})
	}

	if origin == "" {
		origin = originFromTransport(manifest.Transport.Type)
	}
	if origin == "" {
		return tool.ToolRegistration{}, exitError(exitValidation, "tool origin must be set via --type or manifest transport")
	}

	return tool.ToolRegistration{
		Name:     name,
		Manifest: manifest,
		Origin:   origin,
		Status:   tool.StatusReady,
		Enabled:  true,
		Config:   map[string]string{},
	}, nil
}

func ensureRegistrationDefaults(registration *tool.ToolRegistration) {
	if registration.Status == "" {
		registration.Status = tool.StatusReady
	}
	if registration.Config == nil {
		registration.Config = map[string]string{}
	}
	registration.Enabled = true
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered and built-in tools",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	stored, err := store.List(cmd.Context())
	if err != nil {
		return exitError(exitRuntime, "listing tools: %v", err)
	}
	combined := mergeTools(builtin.Registrations(), stored)

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tTYPE\tTRANSPORT\tACTIONS\tSTATUS")
	for _, reg := range combined {
		actions := strings.Join(reg.ActionNames(), ",")
		if actions == "" {
			actions = "-"
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\n",
			reg.Name,
			displayOrigin(reg),
			displayTransport(reg.Manifest.Transport.Type),
			actions,
			reg.Status,
		)
	}
	return writer.Flush()
}

func newToolsInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Inspect a tool registration manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsInspect,
	}
	cmd.Flags().Bool("actions", false, "Show action schemas only")
	return cmd
}

func runToolsInspect(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	name := args[0]
	reg, found, err := resolveRegistration(cmd.Context(), store, name)
	if err != nil {
		return exitError(exitRuntime, "loading tool: %v", err)
	}
	if !found {
		return exitError(exitValidation, "tool %q is not registered", name)
	}

	actionsOnly, _ := cmd.Flags().GetBool("actions")
	out := cmd.OutOrStdout()
	if actionsOnly {
		data, err := json.MarshalIndent(reg.Manifest.Actions, "", "  ")
		if err != nil {
			return exitError(exitRuntime, "encoding actions: %v", err)
		}
		_, _ = out.Write(append(data, '\n'))
		return nil
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "encoding registration: %v", err)
	}
	_, _ = out.Write(append(data, '\n'))
	return nil
}

func newToolsUnregisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unregister <name>",
		Short: "Unregister a tool from the local registry",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsUnregister,
	}
}

func runToolsUnregister(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}
	name := args[0]
	if err := store.Delete(cmd.Context(), name); err != nil {
		return exitError(exitRuntime, "unregistering %q: %v", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unregistered tool: %s\n", name)
	return nil
}

func newToolsEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a registered tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setToolEnabled(cmd, args[0], true)
		},
	}
}

func newToolsDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a registered tool without removing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setToolEnabled(cmd, args[0], false)
		},
	}
}

func setToolEnabled(cmd *cobra.Command, name string, enabled bool) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	reg, found, err := store.Get(cmd.Context(), name)
	if err != nil {
		return exitError(exitRuntime, "loading tool: %v", err)
	}
	if !found {
		return exitError(exitValidation, "tool %q is not registered", name)
	}

	reg.Enabled = enabled
	if enabled {
		if reg.Status == tool.StatusDisabled {
			reg.Status = tool.StatusUnverified
		}
	} else {
		reg.Status = tool.StatusDisabled
	}

	if err := store.Upsert(cmd.Context(), reg); err != nil {
		return exitError(exitRuntime, "saving registration: %v", err)
	}

	verb := "Enabled"
	if !enabled {
		verb = "Disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s tool: %s\n", verb, name)
	return nil
}

func newToolsHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health [name]",
		Short: "Run health checks for HTTP registrations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runToolsHealth,
	}
}

func runToolsHealth(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	regs, err := store.List(cmd.Context())
	if err != nil {
		return exitError(exitRuntime, "listing tools: %v", err)
	}

	targets := make([]tool.ToolRegistration, 0, len(regs))
	if len(args) == 1 {
		reg, found, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return exitError(exitRuntime, "loading tool: %v", err)
		}
		if !found {
			return exitError(exitValidation, "tool %q is not registered", args[0])
		}
		targets = append(targets, reg)
	} else {
		for _, reg := range regs {
			if reg.Origin == tool.OriginHTTP {
				targets = append(targets, reg)
			}
		}
	}

	prober := tool.HTTPProber{}
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tSTATE\tLATENCY_MS\tERROR")

	for _, reg := range targets {
		report, err := prober.Probe(cmd.Context(), reg)
		if err != nil {
			return exitError(exitRuntime, "probing %q: %v", reg.Name, err)
		}

		switch report.State {
		case tool.HealthHealthy:
			reg.Status = tool.StatusReady
			reg.HealthFailures = 0
		case tool.HealthUnhealthy:
			reg.HealthFailures++
			reg.Status = tool.StatusUnhealthy
		}
		reg.LastHealthCheck = report.CheckedAt
		if err := store.Upsert(cmd.Context(), reg); err != nil {
			return exitError(exitRuntime, "saving health status for %q: %v", reg.Name, err)
		}

		latency := "-"
		if report.LatencyMS > 0 {
			latency = fmt.Sprintf("%d", report.LatencyMS)
		}
		errText := "-"
		if strings.TrimSpace(report.ErrorMessage) != "" {
			errText = report.ErrorMessage
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", reg.Name, report.State, latency, errText)
	}

	return writer.Flush()
}

func resolveToolStore(cmd *cobra.Command) (tool.Store, error) {
	storePath, _ := cmd.Flags().GetString("store-path")
	if strings.TrimSpace(storePath) == "" {
		storePath = os.Getenv("TOOLBELT_STORE_PATH")
	}
	if strings.TrimSpace(storePath) == "" {
		store, err := tool.NewDefaultSQLiteStore()
		if err != nil {
			return nil, exitError(exitRuntime, "opening tool store: %v", err)
		}
		return store, nil
	}

	clean := filepath.Clean(strings.TrimSpace(storePath))
	if strings.EqualFold(filepath.Ext(clean), ".json") {
		return tool.NewFileStore(clean), nil
	}
	store, err := tool.NewSQLiteStore(clean)
	if err != nil {
		return nil, exitError(exitRuntime, "opening tool store: %v", err)
	}
	return store, nil
}

func resolveRegistration(ctx context.Context, store tool.Store, name string) (tool.ToolRegistration, bool, error) {
	reg, found, err := store.Get(ctx, name)
	if err != nil {
		return tool.ToolRegistration{}, false, err
	}
	if found {
		return reg, true, nil
	}
	reg, ok := builtin.Registration(name)
	return reg, ok, nil
}

func loadManifestFile(path string) (tool.Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI path argument.
	if err != nil {
		return tool.Manifest{}, err
	}
	jsonData, err := yamlToJSONIfNeeded(data, path)
	if err != nil {
		return tool.Manifest{}, err
	}
	var manifest tool.Manifest
	if err := json.Unmarshal(jsonData, &manifest); err != nil {
		return tool.Manifest{}, err
	}
	return manifest, nil
}

func parseToolOrigin(value string) (tool.ToolOrigin, error) {
	switch strings.TrimSpace(value) {
	case "":
		return "", nil
	case string(tool.OriginNative):
		return tool.OriginNative, nil
	case string(tool.OriginHTTP):
		return tool.OriginHTTP, nil
	default:
		return "", fmt.Errorf("unsupported --type %q (use native or http)", value)
	}
}

func originFromTransport(transport tool.TransportType) tool.ToolOrigin {
	switch transport {
	case tool.TransportTypeNative:
		return tool.OriginNative
	case tool.TransportTypeHTTP:
		return tool.OriginHTTP
	default:
		return ""
	}
}

func displayOrigin(reg tool.ToolRegistration) tool.ToolOrigin {
	if reg.Origin != "" {
		return reg.Origin
	}
	return originFromTransport(reg.Manifest.Transport.Type)
}

func displayTransport(transport tool.TransportType) string {
	switch transport {
	case tool.TransportTypeNative:
		return "in-process"
	case "":
		return "-"
	default:
		return string(transport)
	}
}

func mergeTools(builtins []tool.ToolRegistration, stored []tool.ToolRegistration) []tool.ToolRegistration {
	byName := make(map[string]tool.ToolRegistration, len(builtins)+len(stored))
	for _, reg := range builtins {
		byName[reg.Name] = reg
	}
	for _, reg := range stored {
		byName[reg.Name] = reg
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]tool.ToolRegistration, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out
}

func formatRegistrationValidationError(err error) error {
	var validationErr *tool.RegistrationValidationError
	if !errors.As(err, &validationErr) {
		return exitError(exitValidation, "%s", err.Error())
	}

	builder := strings.Builder{}
	builder.WriteString(validationErr.Message)
	for _, detail := range validationErr.Details {
		builder.WriteString("\n - ")
		builder.WriteString(detail.Field)
		builder.WriteString(" [")
		builder.WriteString(detail.Code)
		builder.WriteString("] ")
		builder.WriteString(detail.Message)
	}
	return exitError(exitValidation, "%s", builder.String())
}
