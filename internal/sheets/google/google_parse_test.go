package google

import (
	"strings"
	"testing"
)

func TestCheckHeader(t *testing.T) {
	full := make([]any, len(reportHeader))
	for i, h := range reportHeader {
		full[i] = h
	}

	tests := []struct {
		name      string
		row       []any
		wantEmpty bool
		wantErr   string
	}{
		{"nil row", nil, true, ""},
		{"blank cells", []any{"", " "}, true, ""},
		{"exact header", full, false, ""},
		{"case and padding", append([]any{" generated "}, full[1:]...), false, ""},
		{"extra trailing column", append(append([]any{}, full...), "Notes"), false, ""},
		{"swapped columns", append([]any{"User", "Generated"}, full[2:]...), false, "missing Generated,User"},
		{"other layout", []any{"Primary", "Secondary", "Jan"}, false, "unexpected report header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			empty, err := checkHeader(tt.row)
			if empty != tt.wantEmpty {
				t.Errorf("empty = %v, want %v", empty, tt.wantEmpty)
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLastColumn(t *testing.T) {
	if lastColumn != "M" {
		t.Fatalf("lastColumn = %q, want M for %d columns", lastColumn, len(reportHeader))
	}
}
