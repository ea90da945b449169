package bankformat

import (
	"testing"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{
			name:    "chase transaction date layout",
			headers: []string{"Transaction Date", "Description", "Amount"},
			want:    "chase",
		},
		{
			name:    "chase checking layout",
			headers: []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance"},
			want:    "chase",
		},
		{
			name:    "bank of america by keyword",
			headers: []string{"Date", "Description", "Amount", "Running Bal."},
			want:    "bank_of_america",
		},
		{
			name:    "plain date layout goes to bank of america",
			headers: []string{"Date", "Description", "Amount"},
			want:    "bank_of_america",
		},
		{
			name:    "capital one debit credit layout",
			headers: []string{"Transaction Date", "Posted Date", "Card No.", "Description", "Category", "Debit", "Credit"},
			want:    "capital_one",
		},
		{
			name:    "unrecognized headers",
			headers: []string{"foo", "bar", "baz"},
			want:    GenericFormat,
		},
		{
			name:    "empty header",
			headers: nil,
			want:    GenericFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.headers)
			if got != tt.want {
				t.Errorf("Detect(%v) = %q, want %q", tt.headers, got, tt.want)
			}
		})
	}
}

func TestFindColumnIndex(t *testing.T) {
	headers := []string{"Details", "Posting Date", "Description", "Amount", "Type"}
	cfg := Lookup("chase")

	tests := []struct {
		field Field
		want  int
	}{
		{FieldDate, 1},
		{FieldAmount, 3},
		{FieldDescription, 2},
		{FieldType, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got := FindColumnIndex(headers, cfg, tt.field)
			if got != tt.want {
				t.Errorf("FindColumnIndex(%s) = %d, want %d", tt.field, got, tt.want)
			}
		})
	}
}

func TestFindColumnIndex_Missing(t *testing.T) {
	headers := []string{"Date", "Description", "Amount"}
	cfg := Lookup("chase")
	if got := FindColumnIndex(headers, cfg, FieldType); got != -1 {
		t.Errorf("FindColumnIndex(type) = %d, want -1", got)
	}
}

func TestLookup_UnknownFallsBackToGeneric(t *testing.T) {
	cfg := Lookup("no_such_bank")
	if cfg.Name != GenericFormat {
		t.Errorf("Lookup fallback = %q, want %q", cfg.Name, GenericFormat)
	}
}
