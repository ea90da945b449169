package csvparse

import (
	"context"
	"testing"

	"github.com/dkruglov/pennyflow/internal/domain"
)

func TestParse_ChaseExport(t *testing.T) {
	content := []byte("Transaction Date,Description,Amount\n01/15/2024,STARBUCKS STORE #1234,-5.50\n")

	result := Parse(context.Background(), content, "chase.csv")

	if result.DetectedFormat != "chase" {
		t.Errorf("detected format = %q, want chase", result.DetectedFormat)
	}
	if result.SuccessCount != 1 || len(result.Transactions) != 1 {
		t.Fatalf("success count = %d, transactions = %d, want 1 each", result.SuccessCount, len(result.Transactions))
	}
	if result.ErrorCount != 0 {
		t.Fatalf("error count = %d, errors = %v", result.ErrorCount, result.Errors)
	}

	tx := result.Transactions[0]
	if tx.Date != "2024-01-15" {
		t.Errorf("date = %q, want 2024-01-15", tx.Date)
	}
	if tx.AmountCents != 550 {
		t.Errorf("amount = %d, want 550", tx.AmountCents)
	}
	if tx.Merchant != "STARBUCKS STORE" {
		t.Errorf("merchant = %q, want STARBUCKS STORE", tx.Merchant)
	}
	if tx.Type != domain.TypeDebit {
		t.Errorf("type = %s, want debit", tx.Type)
	}
}

func TestParse_EmptyFile(t *testing.T) {
	for _, content := range []string{"", "   \n  \n"} {
		result := Parse(context.Background(), []byte(content), "empty.csv")
		if len(result.Transactions) != 0 {
			t.Errorf("Parse(%q) produced transactions", content)
		}
		if len(result.Errors) != 1 || result.Errors[0].Message != "CSV file is empty" {
			t.Errorf("Parse(%q) errors = %v, want single empty-file error", content, result.Errors)
		}
	}
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	content := []byte("Foo,Bar\n1,2\n3,4\n")

	result := Parse(context.Background(), content, "weird.csv")

	if len(result.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(result.Transactions))
	}
	// One error per missing required column, no row-level attempts.
	if len(result.Errors) != 3 {
		t.Fatalf("errors = %v, want 3 missing-column errors", result.Errors)
	}
	if result.TotalRows != 0 {
		t.Errorf("total rows = %d, want 0 (no rows attempted)", result.TotalRows)
	}
	seen := map[string]bool{}
	for _, e := range result.Errors {
		seen[e.Column] = true
	}
	for _, col := range []string{"date", "amount", "description"} {
		if !seen[col] {
			t.Errorf("no error naming missing column %q", col)
		}
	}
}

func TestParse_BadRowDoesNotBlockSiblings(t *testing.T) {
	content := []byte("Date,Description,Amount\n01/15/2024,COFFEE SHOP,4.25\n01/16/2024,BAD ROW,not-a-number\n")

	result := Parse(context.Background(), content, "mixed.csv")

	if result.SuccessCount != 1 {
		t.Errorf("success count = %d, want 1", result.SuccessCount)
	}
	if result.ErrorCount != 1 {
		t.Fatalf("error count = %d, want 1", result.ErrorCount)
	}
	if result.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", result.TotalRows)
	}

	e := result.Errors[0]
	if e.Row != 3 {
		t.Errorf("error row = %d, want 3 (header is row 1)", e.Row)
	}
	if e.Column != "Amount" {
		t.Errorf("error column = %q, want Amount", e.Column)
	}
	if e.OriginalRow["Description"] != "BAD ROW" {
		t.Errorf("original row not captured: %v", e.OriginalRow)
	}
}

func TestParse_MissingValues(t *testing.T) {
	content := []byte("Date,Description,Amount\n,NO DATE,5.00\n01/20/2024,NO AMOUNT,\n")

	result := Parse(context.Background(), content, "gaps.csv")

	if result.SuccessCount != 0 {
		t.Fatalf("success count = %d, want 0", result.SuccessCount)
	}
	if result.ErrorCount != 2 {
		t.Fatalf("error count = %d, want 2", result.ErrorCount)
	}
	if result.Errors[0].Message != "missing date value" {
		t.Errorf("first error = %q", result.Errors[0].Message)
	}
	if result.Errors[1].Message != "missing amount value" {
		t.Errorf("second error = %q", result.Errors[1].Message)
	}
}

func TestParse_TypeColumnOverridesSign(t *testing.T) {
	content := []byte("Details,Posting Date,Description,Amount,Type\n" +
		"DEBIT,01/15/2024,GROCERY MART,25.00,DEBIT\n" +
		"CREDIT,01/16/2024,PAYROLL DEPOSIT,-100.00,ACH_CREDIT\n" +
		"DEBIT,01/17/2024,ATM CASH,20.00,WITHDRAWAL\n")

	result := Parse(context.Background(), content, "chase-checking.csv")

	if result.DetectedFormat != "chase" {
		t.Errorf("detected format = %q, want chase", result.DetectedFormat)
	}
	if result.SuccessCount != 3 {
		t.Fatalf("success count = %d, errors = %v", result.SuccessCount, result.Errors)
	}
	wantTypes := []domain.TransactionType{domain.TypeDebit, domain.TypeCredit, domain.TypeDebit}
	for i, want := range wantTypes {
		if result.Transactions[i].Type != want {
			t.Errorf("transaction %d type = %s, want %s", i, result.Transactions[i].Type, want)
		}
	}
}

func TestParse_SkipsBlankRows(t *testing.T) {
	content := []byte("Date,Description,Amount\n\n01/15/2024,SANDWICH PLACE,9.99\n,,\n")

	result := Parse(context.Background(), content, "blanks.csv")

	if result.TotalRows != 1 {
		t.Errorf("total rows = %d, want 1", result.TotalRows)
	}
	if result.SuccessCount != 1 {
		t.Errorf("success count = %d, want 1", result.SuccessCount)
	}
}
