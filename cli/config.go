package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/toolbelt-dev/toolbelt/builtin"
	"github.com/toolbelt-dev/toolbelt/tool"
)

const (
	projectConfigName = "toolbelt.yaml"
	homeConfigName    = "config.yaml"
)

// ToolConfigFile is the declarative config shape for tool registrations.
type ToolConfigFile struct {
	Tools map[string]ToolDeclaration `yaml:"tools"`
}

// ToolDeclaration defines one tool in toolbelt.yaml.
type ToolDeclaration struct {
	Type     string             `yaml:"type"`
	Manifest string             `yaml:"manifest,omitempty"`
	Endpoint string             `yaml:"endpoint,omitempty"`
	Config   map[string]string  `yaml:"config,omitempty"`
	Enabled  *bool              `yaml:"enabled,omitempty"`
	Health   *tool.HealthConfig `yaml:"health,omitempty"`
}

// DiscoverToolConfigPath resolves tool config location with first-match semantics.
func DiscoverToolConfigPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverToolConfigPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverToolConfigPathFrom is a testable variant of DiscoverToolConfigPath.
func DiscoverToolConfigPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, ".toolbelt", homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// If explicit path is set, not found is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

func newToolsApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Register tools declared in a toolbelt.yaml config file",
		Args:  cobra.NoArgs,
		RunE:  runToolsApply,
	}
	cmd.Flags().String("config", "", "Path to config file (default: ./toolbelt.yaml, then ~/.toolbelt/config.yaml)")
	return cmd
}

func runToolsApply(cmd *cobra.Command, args []string) error {
	store, err := resolveToolStore(cmd)
	if err != nil {
		return err
	}

	explicitPath, _ := cmd.Flags().GetString("config")
	configPath, found, err := DiscoverToolConfigPath(explicitPath)
	if err != nil {
		return exitError(exitFileNotFound, "%s", err)
	}
	if !found {
		return exitError(exitFileNotFound, "no config file found (looked for %s and ~/.toolbelt/%s)", projectConfigName, homeConfigName)
	}

	applied, err := RegisterToolsFromConfig(cmd.Context(), store, configPath)
	if err != nil {
		return err
	}

	for _, reg := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Registered tool: %s (%s, status=%s)\n", reg.Name, reg.Origin, reg.Status)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d tool(s) from %s\n", len(applied), configPath)
	return nil
}

// RegisterToolsFromConfig loads a config file and registers tool declarations
// in deterministic (name-sorted) order.
func RegisterToolsFromConfig(ctx context.Context, store tool.Store, configPath string) ([]tool.ToolRegistration, error) {
	clean := strings.TrimSpace(configPath)
	if clean == "" {
		return nil, nil
	}

	cfg, err := loadToolConfig(clean)
	if err != nil {
		return nil, exitError(exitValidation, "loading config: %v", err)
	}
	if len(cfg.Tools) == 0 {
		return nil, nil
	}

	baseDir := filepath.Dir(clean)
	names := make([]string, 0, len(cfg.Tools))
	for name := range cfg.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	registered := make([]tool.ToolRegistration, 0, len(names))
	for _, name := range names {
		reg, err := registrationFromDeclaration(name, cfg.Tools[name], baseDir)
		if err != nil {
			return nil, err
		}

		if err := tool.ValidateNewRegistration(ctx, reg, tool.RegistrationValidationOptions{
			Store:             store,
			NativeLookup:      builtin.Lookup,
			AllowExistingName: true,
		}); err != nil {
			return nil, formatRegistrationValidationError(err)
		}
		if err := store.Upsert(ctx, reg); err != nil {
			return nil, exitError(exitRuntime, "saving registration %q: %v", name, err)
		}
		registered = append(registered, reg)
	}
	return registered, nil
}

func registrationFromDeclaration(name string, decl ToolDeclaration, baseDir string) (tool.ToolRegistration, error) {
	origin, err := parseToolOrigin(decl.Type)
	if err != nil {
		return tool.ToolRegistration{}, exitError(exitValidation, "tool %q: %v", name, err)
	}

	var reg tool.ToolRegistration
	switch {
	case strings.TrimSpace(decl.Manifest) != "":
		manifestPath := decl.Manifest
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(baseDir, manifestPath)
		}
		manifest, err := loadManifestFile(manifestPath)
		if err != nil {
			return tool.ToolRegistration{}, exitError(exitValidation, "tool %q: loading manifest: %v", name, err)
		}
		if strings.TrimSpace(manifest.Tool.Name) == "" {
			manifest.Tool.Name = name
		}
		reg = tool.ToolRegistration{
			Name:     name,
			Manifest: manifest,
			Origin:   origin,
		}
	case origin == tool.OriginNative || origin == "":
		found, ok := builtin.Registration(name)
		if !ok {
			return tool.ToolRegistration{}, exitError(exitValidation, "tool %q: manifest is required (built-in not found)", name)
		}
		reg = found
	default:
		return tool.ToolRegistration{}, exitError(exitValidation, "tool %q: manifest is required for %s tools", name, origin)
	}

	if strings.TrimSpace(decl.Endpoint) != "" {
		reg.Manifest.Transport = tool.NewHTTPTransport(tool.TransportSpec{
			Endpoint:  decl.Endpoint,
			TimeoutMS: reg.Manifest.Transport.TimeoutMS,
			Retry:     reg.Manifest.Transport.Retry,
		})
	}
	if decl.Health != nil {
		if _, err := tool.ParseHealthSchedule(decl.Health.Schedule); err != nil {
			return tool.ToolRegistration{}, exitError(exitValidation, "tool %q: %v", name, err)
		}
		health := *decl.Health
		reg.Manifest.Health = &health
	}
	if reg.Origin == "" {
		reg.Origin = originFromTransport(reg.Manifest.Transport.Type)
	}

	if len(decl.Config) > 0 {
		if reg.Config == nil {
			reg.Config = make(map[string]string, len(decl.Config))
		}
		for key, value := range decl.Config {
			reg.Config[key] = value
		}
	}

	reg.Enabled = decl.Enabled == nil || *decl.Enabled
	if reg.Status == "" {
		reg.Status = tool.StatusReady
	}
	if !reg.Enabled {
		reg.Status = tool.StatusDisabled
	}
	return reg, nil
}

func loadToolConfig(path string) (ToolConfigFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI path argument.
	if err != nil {
		return ToolConfigFile{}, err
	}
	var cfg ToolConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ToolConfigFile{}, err
	}
	return cfg, nil
}
