package builtin

import (
	"strings"
	"testing"

	"github.com/toolbelt-dev/toolbelt/tool"
)

func TestToolScaffoldGeneratesSource(t *testing.T) {
	outputs, err := invokeNative(t, "tool_scaffold", "generate", map[string]any{
		"tool_name":   "emoji_counter",
		"description": "Counts emoji in a string.",
		"action":      "count",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	source, _ := outputs["source"].(string)
	for _, want := range []string{
		"package builtin",
		"type emojiCounterTool struct{}",
		`return "emoji_counter"`,
		`"count": {`,
		"Counts emoji in a string.",
	} {
		if !strings.Contains(source, want) {
			t.Fatalf("source missing %q:\n%s", want, source)
		}
	}
}

func TestToolScaffoldDefaultsAction(t *testing.T) {
	outputs, err := invokeNative(t, "tool_scaffold", "generate", map[string]any{
		"tool_name": "noop",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	source, _ := outputs["source"].(string)
	if !strings.Contains(source, `"run": {`) {
		t.Fatalf("source missing default run action:\n%s", source)
	}
}

func TestToolScaffoldRejectsBadName(t *testing.T) {
	_, err := invokeNative(t, "tool_scaffold", "generate", map[string]any{
		"tool_name": "Not Snake Case",
	})
	if !tool.IsInputValidationError(err) {
		t.Fatalf("Invoke() error = %v, want input validation error", err)
	}
}
