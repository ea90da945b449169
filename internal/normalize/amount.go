// Package normalize converts the heterogeneous amount, date, and merchant
// text found in bank CSV exports into pennyflow's canonical representation.
package normalize

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dkruglov/pennyflow/internal/domain"
)

var (
	// ErrInvalidAmount is returned when an amount string cannot be parsed.
	ErrInvalidAmount = errors.New("invalid amount format")
	// ErrInvalidDate is returned when a date string matches no known format.
	ErrInvalidDate = errors.New("invalid date format")
)

// AmountResult is a parsed amount. Cents is always the unsigned magnitude;
// Type carries the sign.
type AmountResult struct {
	Cents int64
	Type  domain.TransactionType
}

// Amount parses an amount string into integer cents. Currency symbols,
// thousands separators, and whitespace are stripped. A leading minus or
// enclosing parentheses mark the amount as a debit.
func Amount(raw string) (AmountResult, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return AmountResult{}, ErrInvalidAmount
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '£', '€', ',', ' ', '\t':
			return -1
		}
		return r
	}, s)

	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if s == "" {
		return AmountResult{}, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return AmountResult{}, ErrInvalidAmount
	}

	// Decimal arithmetic with half-up rounding; going through a float here
	// would drift on values like 8.20.
	cents := d.Shift(2).Round(0).IntPart()
	if cents < 0 {
		cents = -cents
		negative = true
	}

	typ := domain.TypeCredit
	if negative {
		typ = domain.TypeDebit
	}
	return AmountResult{Cents: cents, Type: typ}, nil
}
