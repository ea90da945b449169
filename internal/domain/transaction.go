package domain

import (
	"time"
)

// TransactionType is the direction of a transaction. The amount on a
// transaction is always the unsigned magnitude; the type carries the sign.
type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// ParsedTransaction is one normalized row produced by the CSV parser.
// It is a plain value and is not mutated after parsing, except for the
// IsDuplicate flag which duplicate filtering sets before persistence.
type ParsedTransaction struct {
	Date        string          `json:"date"`         // ISO YYYY-MM-DD
	AmountCents int64           `json:"amount_cents"` // absolute magnitude in cents
	Merchant    string          `json:"merchant"`     // extracted merchant name, "Unknown" if none
	Description string          `json:"description"`  // raw description, may be empty
	Type        TransactionType `json:"type"`         // debit or credit
	IsDuplicate bool            `json:"is_duplicate"`
}

// TransactionRecord is a persisted transaction as stored by the repositories.
type TransactionRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ImportRunID string `json:"import_run_id,omitempty"`

	Date        string          `json:"date"` // ISO YYYY-MM-DD
	AmountCents int64           `json:"amount_cents"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`

	CategoryID  string `json:"category_id,omitempty"` // empty when uncategorized
	IsDuplicate bool   `json:"is_duplicate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Category is one entry of a user's category catalog. The catalog is owned
// by the calling layer; the categorization engine only ever receives it.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
