package builtin

import (
	"context"
	"strings"
	"testing"

	"github.com/toolbelt-dev/toolbelt/tool"
)

func invokeTimeConverter(t *testing.T, inputs map[string]any) (map[string]any, error) {
	t.Helper()

	native, ok := Lookup("time_converter")
	if !ok {
		t.Fatal("Lookup(time_converter) = false")
	}
	adapter := tool.NewNativeAdapter(native)
	resp, err := adapter.Invoke(context.Background(), tool.InvokeRequest{
		Action: "convert",
		Inputs: inputs,
	})
	return resp.Outputs, err
}

func TestTimeConverterConvertsBetweenZones(t *testing.T) {
	outputs, err := invokeTimeConverter(t, map[string]any{
		"date_time":     "2024-03-01 12:00:00",
		"from_timezone": "UTC",
		"to_timezone":   "America/New_York",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	converted, _ := outputs["converted"].(string)
	// 12:00 UTC is 07:00 in New York (EST, winter).
	if !strings.HasPrefix(converted, "2024-03-01T07:00:00") {
		t.Fatalf("converted = %q, want 2024-03-01T07:00:00 prefix", converted)
	}
	if got := outputs["timezone"]; got != "America/New_York" {
		t.Fatalf("timezone = %v, want America/New_York", got)
	}
}

func TestTimeConverterDefaultsToNow(t *testing.T) {
	outputs, err := invokeTimeConverter(t, map[string]any{})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if outputs["converted"] == "" {
		t.Fatal("converted is empty")
	}
	if got := outputs["timezone"]; got != "UTC" {
		t.Fatalf("timezone = %v, want UTC", got)
	}
}

func TestTimeConverterRejectsUnknownZone(t *testing.T) {
	_, err := invokeTimeConverter(t, map[string]any{
		"date_time":   "2024-03-01 12:00:00",
		"to_timezone": "Mars/Olympus_Mons",
	})
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestTimeConverterRejectsBadFormat(t *testing.T) {
	_, err := invokeTimeConverter(t, map[string]any{
		"date_time": "March 1st, noon",
	})
	if err == nil {
		t.Fatal("expected error for invalid date format")
	}
}
