package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/toolbelt-dev/toolbelt/builtin"
	"github.com/toolbelt-dev/toolbelt/tool"
)

func writeFileIn(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeManifestIn(t *testing.T, dir, name string, manifest map[string]any) string {
	t.Helper()
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	return writeFileIn(t, dir, name, string(data))
}

func TestDiscoverToolConfigPathFrom_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	explicit := writeFileIn(t, dir, "custom.yaml", "tools: {}\n")

	path, found, err := DiscoverToolConfigPathFrom(explicit, dir, dir)
	if err != nil {
		t.Fatalf("DiscoverToolConfigPathFrom() error = %v", err)
	}
	if !found || path != explicit {
		t.Fatalf("path = %q found = %v, want %q", path, found, explicit)
	}
}

func TestDiscoverToolConfigPathFrom_ExplicitPathMissing(t *testing.T) {
	dir := t.TempDir()
	_, _, err := DiscoverToolConfigPathFrom(filepath.Join(dir, "missing.yaml"), dir, dir)
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestDiscoverToolConfigPathFrom_ProjectBeforeHome(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Join(home, ".toolbelt"), 0755); err != nil {
		t.Fatal(err)
	}
	homeConfig := writeFileIn(t, filepath.Join(home, ".toolbelt"), homeConfigName, "tools: {}\n")

	// Only the home config exists.
	path, found, err := DiscoverToolConfigPathFrom("", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverToolConfigPathFrom() error = %v", err)
	}
	if !found || path != homeConfig {
		t.Fatalf("path = %q found = %v, want home config %q", path, found, homeConfig)
	}

	// A project config takes precedence once present.
	projectConfig := writeFileIn(t, cwd, projectConfigName, "tools: {}\n")
	path, found, err = DiscoverToolConfigPathFrom("", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverToolConfigPathFrom() error = %v", err)
	}
	if !found || path != projectConfig {
		t.Fatalf("path = %q found = %v, want project config %q", path, found, projectConfig)
	}
}

func TestDiscoverToolConfigPathFrom_NoneFound(t *testing.T) {
	path, found, err := DiscoverToolConfigPathFrom("", t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverToolConfigPathFrom() error = %v", err)
	}
	if found || path != "" {
		t.Fatalf("path = %q found = %v, want no config", path, found)
	}
}

func TestRegisterToolsFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeManifestIn(t, dir, "remote_echo.json", httpManifest("remote_echo"))
	writeManifestIn(t, dir, "disabled_echo.json", httpManifest("disabled_echo"))

	configPath := writeFileIn(t, dir, projectConfigName, `tools:
  "`+builtin.WordCounterName+`":
    type: native
  remote_echo:
    type: http
    manifest: remote_echo.json
    config:
      token: secret
    health:
      endpoint: http://unit-test.local/health
      schedule: "*/5 * * * *"
      unhealthy_threshold: 2
  disabled_echo:
    type: http
    manifest: disabled_echo.json
    enabled: false
`)

	store := tool.NewFileStore(filepath.Join(dir, "tools.json"))
	applied, err := RegisterToolsFromConfig(context.Background(), store, configPath)
	if err != nil {
		t.Fatalf("RegisterToolsFromConfig() error = %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("len(applied) = %d, want 3", len(applied))
	}

	// Declarations apply in name-sorted order.
	if applied[0].Name != builtin.WordCounterName {
		t.Errorf("applied[0] = %q, want %q", applied[0].Name, builtin.WordCounterName)
	}

	reg, found, err := store.Get(context.Background(), "remote_echo")
	if err != nil || !found {
		t.Fatalf("Get(remote_echo) = %v, %v", found, err)
	}
	if reg.Config["token"] != "secret" {
		t.Errorf("config token = %q, want %q", reg.Config["token"], "secret")
	}
	if reg.Manifest.Health == nil || reg.Manifest.Health.Schedule != "*/5 * * * *" {
		t.Errorf("health config not applied: %+v", reg.Manifest.Health)
	}
	if !reg.Enabled || reg.Status != tool.StatusReady {
		t.Errorf("enabled = %v status = %q, want enabled ready", reg.Enabled, reg.Status)
	}

	disabled, found, err := store.Get(context.Background(), "disabled_echo")
	if err != nil || !found {
		t.Fatalf("Get(disabled_echo) = %v, %v", found, err)
	}
	if disabled.Enabled || disabled.Status != tool.StatusDisabled {
		t.Errorf("enabled = %v status = %q, want disabled", disabled.Enabled, disabled.Status)
	}
}

func TestRegisterToolsFromConfig_BadHealthSchedule(t *testing.T) {
	dir := t.TempDir()
	writeManifestIn(t, dir, "remote_echo.json", httpManifest("remote_echo"))
	configPath := writeFileIn(t, dir, projectConfigName, `tools:
  remote_echo:
    type: http
    manifest: remote_echo.json
    health:
      schedule: "not a schedule"
`)

	store := tool.NewFileStore(filepath.Join(dir, "tools.json"))
	_, err := RegisterToolsFromConfig(context.Background(), store, configPath)
	if err == nil {
		t.Fatal("expected error for invalid health schedule")
	}
}

func TestRegisterToolsFromConfig_EndpointOverride(t *testing.T) {
	dir := t.TempDir()
	writeManifestIn(t, dir, "remote_echo.json", httpManifest("remote_echo"))
	configPath := writeFileIn(t, dir, projectConfigName, `tools:
  remote_echo:
    type: http
    manifest: remote_echo.json
    endpoint: http://override.local/invoke
`)

	store := tool.NewFileStore(filepath.Join(dir, "tools.json"))
	if _, err := RegisterToolsFromConfig(context.Background(), store, configPath); err != nil {
		t.Fatalf("RegisterToolsFromConfig() error = %v", err)
	}

	reg, found, err := store.Get(context.Background(), "remote_echo")
	if err != nil || !found {
		t.Fatalf("Get(remote_echo) = %v, %v", found, err)
	}
	if reg.Manifest.Transport.Endpoint != "http://override.local/invoke" {
		t.Errorf("endpoint = %q, want override", reg.Manifest.Transport.Endpoint)
	}
}

func TestToolsApply_CLI(t *testing.T) {
	setTestStore(t)
	dir := t.TempDir()
	writeManifestIn(t, dir, "remote_echo.json", httpManifest("remote_echo"))
	configPath := writeFileIn(t, dir, projectConfigName, `tools:
  remote_echo:
    type: http
    manifest: remote_echo.json
`)

	stdout, _, err := executeCommand(newTestRoot(), "tools", "apply", "--config", configPath)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if !strings.Contains(stdout, "Registered tool: remote_echo") {
		t.Errorf("unexpected output: %q", stdout)
	}
	if !strings.Contains(stdout, "Applied 1 tool(s)") {
		t.Errorf("unexpected output: %q", stdout)
	}

	listOut, _, err := executeCommand(newTestRoot(), "tools", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(listOut, "remote_echo") {
		t.Errorf("applied tool missing from list:\n%s", listOut)
	}
}

func TestToolsApply_NoConfigFound(t *testing.T) {
	setTestStore(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, err := executeCommand(newTestRoot(), "tools", "apply")
	if err == nil {
		t.Fatal("expected error when no config file exists")
	}
	if !strings.Contains(err.Error(), "no config file found") {
		t.Errorf("error = %v, want no-config message", err)
	}
}
