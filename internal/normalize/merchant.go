package normalize

import (
	"regexp"
	"strings"
)

const maxMerchantLen = 255

// merchantPatterns are extraction heuristics tried in order against a raw
// description; the first submatch wins.
var merchantPatterns = []*regexp.Regexp{
	// Leading name terminated by a reference number, card marker, or #NNNN.
	regexp.MustCompile(`(?i)^([A-Z0-9&'. -]+?)\s+(?:\d{6,}|POS\b|DEBIT\b|CREDIT\b|#\d+)`),
	regexp.MustCompile(`(?i)(?:PURCHASE|TRANSACTION|PAYMENT)\s+AT\s+([A-Z0-9&'. -]+)`),
	regexp.MustCompile(`(?i)POS\s+(?:DEBIT|CREDIT)\s+([A-Z0-9&'. -]+)`),
	// A domain-looking token is usually the merchant itself.
	regexp.MustCompile(`(?i)([A-Z0-9-]+\.(?:COM|NET|ORG|IO))\b`),
	// Leading name terminated by a long digit run or a state + ZIP tail.
	regexp.MustCompile(`(?i)^([A-Z0-9&'. -]+?)\s+(?:\d{4,}|[A-Z]{2}\s+\d{5})`),
}

var (
	merchantPrefixes = regexp.MustCompile(`(?i)^(?:DEBIT CARD PURCHASE|CHECK CARD PURCHASE|CHECKCARD|POS DEBIT|POS CREDIT|POS|DEBIT|CREDIT|ACH|PURCHASE|PAYMENT TO|PAYMENT)\s+`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// merchantSeparators cut the fallback description at the first token that
// usually introduces reference data rather than the merchant name.
var merchantSeparators = []string{"  ", " - ", " #", " REF", " ID"}

// markerOnly captures are transaction-type noise, not merchant names; a
// heuristic that yields one loses its turn to the next heuristic.
var markerOnly = map[string]bool{
	"POS":        true,
	"DEBIT":      true,
	"CREDIT":     true,
	"POS DEBIT":  true,
	"POS CREDIT": true,
}

// ExtractMerchant pulls a short merchant name out of a free-text bank
// description. It returns "Unknown" for empty input and falls back to the
// cleaned full description when no heuristic applies.
func ExtractMerchant(description string) string {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return "Unknown"
	}

	for _, re := range merchantPatterns {
		if m := re.FindStringSubmatch(desc); m != nil {
			if name := cleanMerchant(m[1]); name != "" && !markerOnly[strings.ToUpper(name)] {
				return name
			}
		}
	}

	s := merchantPrefixes.ReplaceAllString(desc, "")
	upper := strings.ToUpper(s)
	cut := len(s)
	for _, sep := range merchantSeparators {
		if i := strings.Index(upper, sep); i > 0 && i < cut {
			cut = i
		}
	}
	if name := cleanMerchant(s[:cut]); name != "" {
		return name
	}
	return cleanMerchant(desc)
}

// Merchant normalizes a merchant name for comparison. Duplicate hashing and
// learned-pattern matching share this transform so the same merchant lines up
// across both.
func Merchant(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimPrefix(s, "the ")
	for _, suffix := range []string{" inc.", " inc", " llc.", " llc", " corp.", " corp"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	return s
}

func cleanMerchant(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	if len(s) > maxMerchantLen {
		s = strings.TrimSpace(s[:maxMerchantLen])
	}
	return s
}
