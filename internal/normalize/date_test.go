package normalize

import (
	"testing"
)

func TestDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "01/15/2024", want: "2024-01-15"},
		{input: "2024-01-15", want: "2024-01-15"},
		{input: "1/15/2024", want: "2024-01-15"},
		{input: "01/15/24", want: "2024-01-15"},
		{input: "1/5/24", want: "2024-01-05"},
		{input: "01-15-2024", want: "2024-01-15"},
		{input: "2024-01-15T10:30:00Z", want: "2024-01-15"},
		{input: "  2024-01-15  ", want: "2024-01-15"},
		// Month-first wins the ambiguous case.
		{input: "03/04/2024", want: "2024-03-04"},
		// Day-first layouts pick up what month-first rejects.
		{input: "25/12/2024", want: "2024-12-25"},
		{input: "25-12-2024", want: "2024-12-25"},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "not a date", wantErr: true},
		{input: "13/45/2024", wantErr: true},
		{input: "02/30/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Date(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Date(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Date(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDate_TwoDigitYearsAreCurrentCentury(t *testing.T) {
	got, err := Date("06/15/85")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2085-06-15" {
		t.Errorf("Date(06/15/85) = %q, want 2085-06-15", got)
	}
}
