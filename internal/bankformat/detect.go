package bankformat

import (
	"strings"
)

const (
	columnScore  = 2
	keywordScore = 3
)

// Detect scores every known config against a CSV header row and returns the
// winning format name. Exact candidate-column matches score 2, detection
// keywords found as substrings of any header cell score 3. An empty header or
// an all-zero scoreboard yields the generic format.
func Detect(headers []string) string {
	if len(headers) == 0 {
		return GenericFormat
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = strings.ToLower(strings.TrimSpace(h))
	}

	best := GenericFormat
	bestScore := 0
	for _, cfg := range configs {
		score := scoreConfig(cfg, cells)
		if score > bestScore {
			best = cfg.Name
			bestScore = score
		}
	}
	if bestScore == 0 {
		return GenericFormat
	}
	return best
}

func scoreConfig(cfg *Config, cells []string) int {
	score := 0
	for _, field := range []Field{FieldDate, FieldAmount, FieldDescription, FieldType} {
		for _, candidate := range cfg.Columns(field) {
			if containsExact(cells, strings.ToLower(candidate)) {
				score += columnScore
			}
		}
	}
	for _, kw := range cfg.DetectKeywords {
		for _, cell := range cells {
			if strings.Contains(cell, kw) {
				score += keywordScore
				break
			}
		}
	}
	return score
}

func containsExact(cells []string, want string) bool {
	for _, c := range cells {
		if c == want {
			return true
		}
	}
	return false
}

// FindColumnIndex returns the index of the first header matching any
// candidate name for the field (case-insensitive exact match), or -1.
func FindColumnIndex(headers []string, cfg *Config, field Field) int {
	for _, candidate := range cfg.Columns(field) {
		want := strings.ToLower(candidate)
		for i, h := range headers {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				return i
			}
		}
	}
	return -1
}
