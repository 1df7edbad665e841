package tracing

import (
	"testing"
)

func TestValidateTraceParent(t *testing.T) {
	tests := []struct {
		name        string
		traceparent string
		want        bool
	}{
		{"valid traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", true},
		{"valid traceparent - not sampled", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-00", true},
		{"invalid - wrong number of parts", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7", false},
		{"invalid - version wrong length", "0-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", false},
		{"invalid - trace ID wrong length", "00-4bf92f3577b34da6a3ce929d0e0e473-00f067aa0ba902b7-01", false},
		{"invalid - parent ID wrong length", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902-01", false},
		{"invalid - flags wrong length", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-1", false},
		{"invalid - non-hex", "00-4bf92f3577b34da6a3ce929d0e0e473g-00f067aa0ba902b7-01", false},
		{"invalid - zero trace ID", "00-00000000000000000000000000000000-00f067aa0ba902b7-01", false},
		{"invalid - zero parent ID", "00-4bf92f3577b34da6a3ce929d0e0e4736-0000000000000000-01", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTraceParent(tt.traceparent); got != tt.want {
				t.Errorf("ValidateTraceParent(%q) = %v, want %v", tt.traceparent, got, tt.want)
			}
		})
	}
}

func TestParseTraceParent(t *testing.T) {
	version, traceID, parentID, flags, ok := ParseTraceParent("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	if !ok {
		t.Fatal("expected valid traceparent")
	}
	if version != "00" || traceID != "4bf92f3577b34da6a3ce929d0e0e4736" || parentID != "00f067aa0ba902b7" || flags != "01" {
		t.Errorf("unexpected fields: %s %s %s %s", version, traceID, parentID, flags)
	}

	if _, _, _, _, ok := ParseTraceParent("garbage"); ok {
		t.Error("expected invalid traceparent")
	}
}
