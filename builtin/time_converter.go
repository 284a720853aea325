package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/toolbelt-dev/toolbelt/tool"
)

const timeConverterLayout = "2006-01-02 15:04:05"

// timeConverterTool converts a timestamp between IANA time zones.
type timeConverterTool struct{}

func (timeConverterTool) Name() string {
	return "time_converter"
}

func (timeConverterTool) Manifest() tool.Manifest {
	manifest := tool.NewManifest("time_converter")
	manifest.Tool.Description = "Converts a date and time between time zones."
	manifest.Tool.Version = "built-in"
	manifest.Transport = tool.NewNativeTransport()
	manifest.Actions = map[string]tool.ActionSpec{
		"convert": {
			Description: "Convert a timestamp to a target time zone.",
			Inputs: map[string]tool.FieldSpec{
				"date_time": {
					Type:        tool.TypeString,
					Description: "The time to convert: NOW or YYYY-MM-DD HH:MM:SS.",
					Default:     "NOW",
				},
				"from_timezone": {
					Type:        tool.TypeString,
					Description: "IANA zone the input time is expressed in (default UTC).",
					Default:     "UTC",
				},
				"to_timezone": {
					Type:        tool.TypeString,
					Description: "IANA zone to convert to (default UTC).",
					Default:     "UTC",
				},
			},
			Outputs: map[string]tool.FieldSpec{
				"converted": {Type: tool.TypeString},
				"timezone":  {Type: tool.TypeString},
			},
			Idempotent: true,
		},
	}
	return manifest
}

func (timeConverterTool) Invoke(ctx context.Context, action string, inputs map[string]any, config map[string]any) (map[string]any, error) {
	if action != "convert" {
		return nil, fmt.Errorf("%w: %s", tool.ErrActionNotFound, action)
	}

	dateTime := tool.StringInput(inputs, "date_time", "NOW")
	fromZone := tool.StringInput(inputs, "from_timezone", "UTC")
	toZone := tool.StringInput(inputs, "to_timezone", "UTC")

	toLoc, err := time.LoadLocation(toZone)
	if err != nil {
		return nil, fmt.Errorf("time_converter: unknown timezone %q: %w", toZone, err)
	}

	var moment time.Time
	if strings.EqualFold(strings.TrimSpace(dateTime), "NOW") {
		moment = time.Now().UTC()
	} else {
		fromLoc, err := time.LoadLocation(fromZone)
		if err != nil {
			return nil, fmt.Errorf("time_converter: unknown timezone %q: %w", fromZone, err)
		}
		moment, err = time.ParseInLocation(timeConverterLayout, strings.TrimSpace(dateTime), fromLoc)
		if err != nil {
			return nil, fmt.Errorf("time_converter: invalid date and time, use YYYY-MM-DD HH:MM:SS or NOW: %w", err)
		}
	}

	converted := moment.In(toLoc)
	return map[string]any{
		"converted": converted.Format(time.RFC3339),
		"timezone":  toLoc.String(),
	}, nil
}
