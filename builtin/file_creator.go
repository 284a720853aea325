package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// fileCreatorTool writes a text file to the local filesystem.
type fileCreatorTool struct{}

func (fileCreatorTool) Name() string {
	return "file_creator"
}

func (fileCreatorTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest("file_creator")
	manifest.Tool.Description = "Creates a text file at the given path with the given content."
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"create": {
			Description: "Write content to a new or existing file.",
			Inputs: map[string]tool.FieldSpec{
				"path": {
					Type:        tool.TypeString,
					Required:    true,
					Description: "Destination file path.",
				},
				"content": {
					Type:        tool.TypeString,
					Description: "File content; empty creates an empty file.",
				},
				"make_parents": {
					Type:        tool.TypeBoolean,
					Description: "Create missing parent directories.",
					Default:     false,
				},
			},
			Outputs: map[string]tool.FieldSpec{
				"path":          {Type: tool.TypeString},
				"bytes_written": {Type: tool.TypeInteger},
			},
		},
	}
	return manifest
}

func (fileCreatorTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "create" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	path := tool.StringInput(inputs, "path", "")
	if path == "" {
		return nil, tool.NewInputValidationError([]tool.Diagnostic{{
			Field:    "path",
			Code:     "REQUIRED_INPUT",
			Severity: tool.SeverityError,
			Message:  "path is required",
		}})
	}
	content := tool.StringInput(inputs, "content", "")

	if tool.BoolInput(inputs, "make_parents", false) {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("file_creator: create parent directories: %w", err)
		}
	}

	// #nosec G304 -- path is explicit caller input for a file-writing tool.
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("file_creator: write file: %w", err)
	}

	return map[string]any{
		"path":          path,
		"bytes_written": len(content),
	}, nil
}
