package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"string", "test message", "test message\n"},
		{"lines", []string{"https://a.example.com", "https://b.example.com"}, "https://a.example.com\nhttps://b.example.com\n"},
		{"number", 42, "42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := (&TextFormatter{}).FormatTo(buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]any{"instances": []string{"https://a.example.com"}, "count": 1}

	for _, indent := range []bool{false, true} {
		buf := &bytes.Buffer{}
		if err := (&JSONFormatter{Indent: indent}).FormatTo(buf, data); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["count"] != float64(1) {
			t.Errorf("count = %v", decoded["count"])
		}
		if indent && !bytes.Contains(buf.Bytes(), []byte("\n  ")) {
			t.Error("expected indented output")
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("FormatJSON should return a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("FormatText should return a TextFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TextFormatter); !ok {
		t.Error("unknown formats should fall back to text")
	}
}
