package normalize

import (
	"testing"

	"github.com/dkruglov/pennyflow/internal/domain"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantType  domain.TransactionType
		wantErr   bool
	}{
		{
			name:      "plain positive",
			input:     "5.50",
			wantCents: 550,
			wantType:  domain.TypeCredit,
		},
		{
			name:      "currency symbol and thousands separator",
			input:     "$1,234.56",
			wantCents: 123456,
			wantType:  domain.TypeCredit,
		},
		{
			name:      "leading minus is a debit",
			input:     "-50.00",
			wantCents: 5000,
			wantType:  domain.TypeDebit,
		},
		{
			name:      "parentheses are a debit",
			input:     "(50.00)",
			wantCents: 5000,
			wantType:  domain.TypeDebit,
		},
		{
			name:      "parentheses with currency symbol",
			input:     "($1,000.00)",
			wantCents: 100000,
			wantType:  domain.TypeDebit,
		},
		{
			name:      "surrounding whitespace",
			input:     "  42.00  ",
			wantCents: 4200,
			wantType:  domain.TypeCredit,
		},
		{
			name:      "integer amount",
			input:     "100",
			wantCents: 10000,
			wantType:  domain.TypeCredit,
		},
		{
			name:      "sub-cent rounds half up",
			input:     "5.505",
			wantCents: 551,
			wantType:  domain.TypeCredit,
		},
		{
			name:      "no binary float drift",
			input:     "8.20",
			wantCents: 820,
			wantType:  domain.TypeCredit,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "symbols only",
			input:   "$,",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Amount(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Amount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Cents != tt.wantCents {
				t.Errorf("Amount(%q) cents = %d, want %d", tt.input, got.Cents, tt.wantCents)
			}
			if got.Type != tt.wantType {
				t.Errorf("Amount(%q) type = %s, want %s", tt.input, got.Type, tt.wantType)
			}
			if got.Cents < 0 {
				t.Errorf("Amount(%q) returned negative magnitude %d", tt.input, got.Cents)
			}
		})
	}
}
