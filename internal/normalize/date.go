package normalize

import (
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// isoLayouts are tried before the bank-specific formats.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	isoDate,
}

// dateLayouts is the fixed priority order for bank date formats. The first
// layout that yields a valid calendar date wins, which makes month-first the
// tie-break for ambiguous numeric dates like 03/04/2024. That bias matches
// the US bank exports this parser sees; do not reorder without a locale knob.
var dateLayouts = []struct {
	layout    string
	shortYear bool
}{
	{"01/02/2006", false},
	{"2006-01-02", false},
	{"01-02-2006", false},
	{"02/01/2006", false},
	{"02-01-2006", false},
	{"1/2/2006", false},
	{"01/02/06", true},
	{"1/2/06", true},
}

// Date parses a date string into ISO YYYY-MM-DD.
func Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidDate
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), nil
		}
	}

	for _, f := range dateLayouts {
		t, err := time.Parse(f.layout, s)
		if err != nil {
			continue
		}
		// Two-digit years are read as 2000+year; time.Parse puts 69-99
		// into the 1900s.
		if f.shortYear && t.Year() < 2000 {
			t = t.AddDate(100, 0, 0)
		}
		return t.Format(isoDate), nil
	}

	return "", ErrInvalidDate
}
