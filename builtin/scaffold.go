package builtin

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/toolbelt-dev/toolbelt/tool"
)

var scaffoldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

const scaffoldSourceTemplate = `package builtin

import (
	"context"
	"fmt"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// {{.TypeName}} {{.Description}}
type {{.TypeName}} struct{}

func ({{.TypeName}}) Name() string {
	return "{{.ToolName}}"
}

func ({{.TypeName}}) Manifest() tool.Manifest {
	manifest := tool.NewManifest("{{.ToolName}}")
	manifest.Tool.Description = "{{.Description}}"
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"{{.Action}}": {
			Inputs:  map[string]tool.FieldSpec{},
			Outputs: map[string]tool.FieldSpec{},
		},
	}
	return manifest
}

func ({{.TypeName}}) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "{{.Action}}" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	return map[string]any{}, nil
}
`

// toolScaffoldTool renders a Go source skeleton for a new native tool.
type toolScaffoldTool struct{}

func (toolScaffoldTool) Name() string {
	return "tool_scaffold"
}

func (toolScaffoldTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest("tool_scaffold")
	manifest.Tool.Description = "Generates a Go source skeleton for a new native tool."
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"generate": {
			Description: "Render a native tool implementation skeleton.",
			Inputs: map[string]tool.FieldSpec{
				"tool_name": {
					Type:        tool.TypeString,
					Required:    true,
					Description: "Snake_case name of the new tool.",
				},
				"description": {
					Type:        tool.TypeString,
					Description: "One-line tool description.",
				},
				"action": {
					Type:        tool.TypeString,
					Description: "Primary action name (default: run).",
					Default:     "run",
				},
			},
			Outputs: map[string]tool.FieldSpec{
				"source": {Type: tool.TypeString},
			},
			Idempotent: true,
		},
	}
	return manifest
}

func (toolScaffoldTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "generate" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	toolName := strings.TrimSpace(tool.StringInput(inputs, "tool_name", ""))
	if !scaffoldNamePattern.MatchString(toolName) {
		return nil, tool.NewInputValidationError([]tool.Diagnostic{{
			Field:    "tool_name",
			Code:     "INVALID_NAME",
			Severity: tool.SeverityError,
			Message:  "tool_name must be lowercase snake_case",
		}})
	}

	description := strings.TrimSpace(tool.StringInput(inputs, "description", ""))
	if description == "" {
		description = "does something useful."
	}
	primaryAction := strings.TrimSpace(tool.StringInput(inputs, "action", "run"))
	if primaryAction == "" {
		primaryAction = "run"
	}

	tpl, err := template.New("tool_scaffold").Parse(scaffoldSourceTemplate)
	if err != nil {
		return nil, fmt.Errorf("tool_scaffold: parse template: %w", err)
	}

	var out bytes.Buffer
	err = tpl.Execute(&out, map[string]string{
		"ToolName":    toolName,
		"TypeName":    camelCase(toolName) + "Tool",
		"Description": description,
		"Action":      primaryAction,
	})
	if err != nil {
		return nil, fmt.Errorf("tool_scaffold: execute template: %w", err)
	}

	return map[string]any{
		"source": out.String(),
	}, nil
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
