// Package csvparse turns raw bank CSV exports into normalized transactions.
// Parsing is row-by-row and fault tolerant: a bad row is recorded as a
// ParseError and never aborts the rows around it.
package csvparse

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dkruglov/pennyflow/internal/bankformat"
	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/logger"
	"github.com/dkruglov/pennyflow/internal/normalize"
)

// requiredFields must all be locatable in the header or the whole batch
// fails without attempting any row.
var requiredFields = []bankformat.Field{
	bankformat.FieldDate,
	bankformat.FieldAmount,
	bankformat.FieldDescription,
}

// Parse parses raw CSV content into a ParseResult. The filename is used for
// logging only; format detection works from the header row alone.
func Parse(ctx context.Context, content []byte, filename string) domain.ParseResult {
	log := logger.FromContext(ctx)

	text := strings.TrimPrefix(string(content), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return domain.ParseResult{
			DetectedFormat: bankformat.GenericFormat,
			Errors:         []domain.ParseError{{Message: "CSV file is empty"}},
			ErrorCount:     1,
		}
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.ParseResult{
			DetectedFormat: bankformat.GenericFormat,
			Errors:         []domain.ParseError{{Message: fmt.Sprintf("unreadable CSV content: %v", err)}},
			ErrorCount:     1,
		}
	}

	headerIdx := -1
	for i, rec := range records {
		if !isEmptyRow(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return domain.ParseResult{
			DetectedFormat: bankformat.GenericFormat,
			Errors:         []domain.ParseError{{Message: "CSV file is empty"}},
			ErrorCount:     1,
		}
	}

	headers := records[headerIdx]
	format := bankformat.Detect(headers)
	cfg := bankformat.Lookup(format)

	log.Debug().
		Str("filename", filename).
		Str("format", format).
		Int("rows", len(records)-headerIdx-1).
		Msg("Parsing CSV batch")

	result := domain.ParseResult{DetectedFormat: format}

	indexes := map[bankformat.Field]int{}
	for _, field := range requiredFields {
		idx := bankformat.FindColumnIndex(headers, cfg, field)
		if idx == -1 {
			result.Errors = append(result.Errors, domain.ParseError{
				Row:     headerIdx + 1,
				Column:  string(field),
				Message: fmt.Sprintf("could not locate a %s column", field),
			})
			continue
		}
		indexes[field] = idx
	}
	// Missing required columns are fatal to the batch: no row is attempted.
	if len(result.Errors) > 0 {
		result.ErrorCount = len(result.Errors)
		return result
	}

	dateIdx := indexes[bankformat.FieldDate]
	amountIdx := indexes[bankformat.FieldAmount]
	descIdx := indexes[bankformat.FieldDescription]
	typeIdx := bankformat.FindColumnIndex(headers, cfg, bankformat.FieldType)

	for i := headerIdx + 1; i < len(records); i++ {
		rec := records[i]
		if isEmptyRow(rec) {
			continue
		}
		result.TotalRows++
		rowNum := i + 1

		tx, rowErr := parseRow(rec, headers, rowNum, dateIdx, amountIdx, descIdx, typeIdx)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	result.SuccessCount = len(result.Transactions)
	result.ErrorCount = len(result.Errors)

	log.Info().
		Str("filename", filename).
		Str("format", format).
		Int("total", result.TotalRows).
		Int("parsed", result.SuccessCount).
		Int("errors", result.ErrorCount).
		Msg("CSV batch parsed")

	return result
}

func parseRow(rec, headers []string, rowNum, dateIdx, amountIdx, descIdx, typeIdx int) (domain.ParsedTransaction, *domain.ParseError) {
	fail := func(colIdx int, message string) *domain.ParseError {
		return &domain.ParseError{
			Row:         rowNum,
			Column:      columnName(headers, colIdx),
			Message:     message,
			OriginalRow: originalRow(headers, rec),
		}
	}

	dateRaw := cell(rec, dateIdx)
	if strings.TrimSpace(dateRaw) == "" {
		return domain.ParsedTransaction{}, fail(dateIdx, "missing date value")
	}
	amountRaw := cell(rec, amountIdx)
	if strings.TrimSpace(amountRaw) == "" {
		return domain.ParsedTransaction{}, fail(amountIdx, "missing amount value")
	}

	date, err := normalize.Date(dateRaw)
	if err != nil {
		return domain.ParsedTransaction{}, fail(dateIdx, fmt.Sprintf("unparseable date %q", dateRaw))
	}

	amount, err := normalize.Amount(amountRaw)
	if err != nil {
		return domain.ParsedTransaction{}, fail(amountIdx, fmt.Sprintf("unparseable amount %q", amountRaw))
	}

	description := strings.TrimSpace(cell(rec, descIdx))

	txType := amount.Type
	if typeIdx >= 0 {
		if raw := strings.ToLower(strings.TrimSpace(cell(rec, typeIdx))); raw != "" {
			if strings.Contains(raw, "debit") || strings.Contains(raw, "withdrawal") {
				txType = domain.TypeDebit
			} else {
				txType = domain.TypeCredit
			}
		}
	}

	return domain.ParsedTransaction{
		Date:        date,
		AmountCents: amount.Cents,
		Merchant:    normalize.ExtractMerchant(description),
		Description: description,
		Type:        txType,
	}, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func columnName(headers []string, idx int) string {
	if idx < 0 || idx >= len(headers) {
		return ""
	}
	return strings.TrimSpace(headers[idx])
}

func originalRow(headers, rec []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		row[strings.TrimSpace(h)] = cell(rec, i)
	}
	return row
}

func isEmptyRow(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
