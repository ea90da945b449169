package domain

import (
	"time"
)

// MatchSource says which rule layer produced a categorization.
type MatchSource string

const (
	MatchSourceLearned MatchSource = "learned"
	MatchSourceDefault MatchSource = "default"
)

// LearnedRule is a persisted merchant-pattern rule created from user
// corrections. At most one rule exists per (user, pattern, category); in
// steady state a user holds one current rule per normalized pattern.
type LearnedRule struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	MerchantPattern string    `json:"merchant_pattern"` // normalized merchant, see normalize.Merchant
	CategoryID      string    `json:"category_id"`
	Confidence      int       `json:"confidence"` // 0-100
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// CategorizationResult is the outcome of categorizing one transaction.
// CategoryID is empty exactly when Confidence is zero.
type CategorizationResult struct {
	CategoryID  string      `json:"category_id"`
	Confidence  int         `json:"confidence"`
	MatchReason string      `json:"match_reason"`
	MatchSource MatchSource `json:"match_source"`
}

// ImportRunStatus tracks the lifecycle of one batch import.
type ImportRunStatus string

const (
	RunStatusRunning ImportRunStatus = "RUNNING"
	RunStatusSuccess ImportRunStatus = "SUCCESS"
	RunStatusFailed  ImportRunStatus = "FAILED"
)

// ImportRun records one CSV import from start to finish. A run that parses
// with row errors is still a SUCCESS; only store failures mark it FAILED.
type ImportRun struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Filename       string `json:"filename"`
	DetectedFormat string `json:"detected_format"`

	TotalRows      int `json:"total_rows"`
	ImportedCount  int `json:"imported_count"`
	DuplicateCount int `json:"duplicate_count"`
	ErrorCount     int `json:"error_count"`

	Status       ImportRunStatus `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}
