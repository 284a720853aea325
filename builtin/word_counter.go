package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolbelt-dev/toolbelt/tool"
)

// WordCounter metadata is part of the published contract: callers display
// both strings verbatim.
const (
	WordCounterName        = "Word Counter Tool"
	WordCounterDescription = "Counts the number of words in a given text."
)

// wordCounterTool counts whitespace-separated words in a text string.
type wordCounterTool struct{}

func (wordCounterTool) Name() string {
	return WordCounterName
}

func (wordCounterTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest(WordCounterName)
	manifest.Tool.Description = WordCounterDescription
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"count": {
			Description: "Count the number of whitespace-separated words in a text string.",
			Inputs: map[string]tool.FieldSpec{
				"text": {
					Type:        tool.TypeString,
					Required:    true,
					Description: "The text to count words in.",
				},
			},
			Outputs: map[string]tool.FieldSpec{
				"word_count": {Type: tool.TypeInteger},
			},
			Idempotent: true,
		},
	}
	return manifest
}

// countWordsInput is the typed input record for the count action. It is
// constructed per invocation and validated at construction time.
type countWordsInput struct {
	Text string
}

func parseCountWordsInput(inputs map[string]any) (countWordsInput, error) {
	raw, ok := inputs["text"]
	if !ok {
		return countWordsInput{}, tool.NewInputValidationError([]tool.Diagnostic{{
			Field:    "text",
			Code:     "REQUIRED_INPUT",
			Severity: tool.SeverityError,
			Message:  "text is required",
		}})
	}
	text, ok := raw.(string)
	if !ok {
		return countWordsInput{}, tool.NewInputValidationError([]tool.Diagnostic{{
			Field:    "text",
			Code:     "INPUT_TYPE",
			Severity: tool.SeverityError,
			Message:  "text must be a string",
		}})
	}
	return countWordsInput{Text: text}, nil
}

func (wordCounterTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "count" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	in, err := parseCountWordsInput(inputs)
	if err != nil {
		return nil, err
	}

	// strings.Fields splits on runs of whitespace, so leading, trailing,
	// and repeated spaces never inflate the count.
	return map[string]any{
		"word_count": len(strings.Fields(in.Text)),
	}, nil
}
