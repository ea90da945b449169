package normalize

import (
	"strings"
	"testing"
)

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "store number terminates the name",
			input: "STARBUCKS STORE #1234",
			want:  "STARBUCKS STORE",
		},
		{
			name:  "reference number terminates the name",
			input: "SHELL OIL 57444123456",
			want:  "SHELL OIL",
		},
		{
			name:  "purchase at",
			input: "PURCHASE AT TRADER JOES",
			want:  "TRADER JOES",
		},
		{
			name:  "payment at",
			input: "PAYMENT AT CITY GYM",
			want:  "CITY GYM",
		},
		{
			name:  "pos debit prefix",
			input: "POS DEBIT WALMART",
			want:  "WALMART",
		},
		{
			name:  "domain token",
			input: "AMAZON.COM AMZN.COM/BILL WA",
			want:  "AMAZON.COM",
		},
		{
			name:  "state and zip terminate the name",
			input: "WHOLE FOODS MKT AUSTIN TX 78701",
			want:  "WHOLE FOODS MKT AUSTIN",
		},
		{
			name:  "known prefix stripped in fallback",
			input: "CHECKCARD UBER TRIP",
			want:  "UBER TRIP",
		},
		{
			name:  "separator truncation in fallback",
			input: "NETFLIX - MONTHLY SUBSCRIPTION",
			want:  "NETFLIX",
		},
		{
			name:  "plain description passes through",
			input: "LOCAL BAKERY",
			want:  "LOCAL BAKERY",
		},
		{
			name:  "internal whitespace collapsed",
			input: "CORNER   DELI",
			want:  "CORNER",
		},
		{
			name:  "empty input",
			input: "",
			want:  "Unknown",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMerchant(tt.input)
			if got != tt.want {
				t.Errorf("ExtractMerchant(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractMerchant_Truncates(t *testing.T) {
	long := strings.Repeat("A", 300)
	got := ExtractMerchant(long)
	if len(got) > 255 {
		t.Errorf("extracted merchant is %d chars, want <= 255", len(got))
	}
}

func TestMerchant(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Starbucks", "starbucks"},
		{"  STARBUCKS  ", "starbucks"},
		{"The Home Depot", "home depot"},
		{"Acme Inc", "acme"},
		{"Acme Inc.", "acme"},
		{"Acme LLC", "acme"},
		{"Acme Corp.", "acme"},
		{"Whole   Foods", "whole foods"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Merchant(tt.input)
			if got != tt.want {
				t.Errorf("Merchant(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
