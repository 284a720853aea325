package builtin

import (
	"context"
	"fmt"
	"os"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// Reads are capped so a tool call cannot pull an arbitrarily large file
// into an agent context.
const defaultMaxReadBytes = 1 << 20

// fileReaderTool reads a text file from the local filesystem.
type fileReaderTool struct{}

func (fileReaderTool) Name() string {
	return "file_reader"
}

func (fileReaderTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest("file_reader")
	manifest.Tool.Description = "Reads the content of a text file at the given path."
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"read": {
			Description: "Read a file and return its content.",
			Inputs: map[string]tool.FieldSpec{
				"path": {
					Type:        tool.TypeString,
					Required:    true,
					Description: "File path to read.",
				},
				"max_bytes": {
					Type:        tool.TypeInteger,
					Description: "Maximum number of bytes to return (default 1 MiB).",
				},
			},
			Outputs: map[string]tool.FieldSpec{
				"content":   {Type: tool.TypeString},
				"size":      {Type: tool.TypeInteger},
				"truncated": {Type: tool.TypeBoolean},
			},
			Idempotent: true,
		},
	}
	return manifest
}

func (fileReaderTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "read" {
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

	maxBytes := tool.IntInput(inputs, "max_bytes", defaultMaxReadBytes)
	if maxBytes <= 0 {
		maxBytes = defaultMaxReadBytes
	}

	// #nosec G304 -- path is explicit caller input for a file-reading tool.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("file_reader: read file: %w", err)
	}

	truncated := false
	if len(data) > maxBytes {
		data = data[:maxBytes]
		truncated = true
	}

	return map[string]any{
		"content":   string(data),
		"size":      len(data),
		"truncated": truncated,
	}, nil
}
