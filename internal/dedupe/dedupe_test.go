package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/dkruglov/pennyflow/internal/domain"
)

func tx(date string, cents int64, merchant string) domain.ParsedTransaction {
	return domain.ParsedTransaction{Date: date, AmountCents: cents, Merchant: merchant}
}

func TestHash_Invariants(t *testing.T) {
	base := Hash(tx("2024-01-15", 550, "Starbucks"))

	if got := Hash(tx("2024-01-15", 550, "STARBUCKS")); got != base {
		t.Errorf("hash changed under merchant case change: %q vs %q", got, base)
	}
	if got := Hash(tx("2024-01-15T10:30:00", 550, "Starbucks")); got != base {
		t.Errorf("hash changed under time-of-day suffix: %q vs %q", got, base)
	}
	if got := Hash(tx("2024-01-16", 550, "Starbucks")); got == base {
		t.Error("hash did not change under date change")
	}
	if got := Hash(tx("2024-01-15", 551, "Starbucks")); got == base {
		t.Error("hash did not change under amount change")
	}
	if got := Hash(tx("2024-01-15", 550, "Dunkin")); got == base {
		t.Error("hash did not change under merchant change")
	}
}

func TestHash_MatchesRecordHash(t *testing.T) {
	p := tx("2024-01-15", 550, "The Coffee Place LLC")
	r := domain.TransactionRecord{Date: "2024-01-15", AmountCents: 550, Merchant: "coffee place"}
	if Hash(p) != HashRecord(r) {
		t.Errorf("parsed and persisted hashes disagree: %q vs %q", Hash(p), HashRecord(r))
	}
}

func TestFilter_Skip(t *testing.T) {
	a := tx("2024-01-15", 100, "Alpha")
	b := tx("2024-01-16", 200, "Beta")
	hashes := map[string]bool{Hash(a): true}

	out := Filter([]domain.ParsedTransaction{a, b}, hashes, true)

	if len(out) != 1 {
		t.Fatalf("got %d transactions, want 1", len(out))
	}
	if out[0].Merchant != "Beta" {
		t.Errorf("wrong survivor: %+v", out[0])
	}
	if out[0].IsDuplicate {
		t.Error("survivor flagged as duplicate under skip semantics")
	}
}

func TestFilter_FlagOnly(t *testing.T) {
	a := tx("2024-01-15", 100, "Alpha")
	b := tx("2024-01-16", 200, "Beta")
	hashes := map[string]bool{Hash(a): true}

	out := Filter([]domain.ParsedTransaction{a, b}, hashes, false)

	if len(out) != 2 {
		t.Fatalf("got %d transactions, want 2 (count unchanged)", len(out))
	}
	if !out[0].IsDuplicate {
		t.Error("duplicate not flagged")
	}
	if out[1].IsDuplicate {
		t.Error("non-duplicate flagged")
	}
}

type mockTransactionReader struct {
	records []domain.TransactionRecord
	calls   int
	err     error

	gotStart, gotEnd string
}

func (m *mockTransactionReader) ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	m.calls++
	m.gotStart, m.gotEnd = startDate, endDate
	return m.records, m.err
}

func TestFindDuplicates(t *testing.T) {
	repo := &mockTransactionReader{
		records: []domain.TransactionRecord{
			{ID: "existing-1", Date: "2024-01-15", AmountCents: 550, Merchant: "starbucks"},
		},
	}
	d := NewDetector(repo)

	incoming := []domain.ParsedTransaction{
		tx("2024-01-15", 550, "STARBUCKS"),
		tx("2024-01-15", 550, "Starbucks"), // same hash, both flagged
		tx("2024-01-20", 999, "Other Shop"),
	}

	result, err := d.FindDuplicates(context.Background(), incoming, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(result.Matches))
	}
	for _, m := range result.Matches {
		if m.ExistingID != "existing-1" {
			t.Errorf("match paired with %q, want existing-1", m.ExistingID)
		}
	}
	if len(result.Hashes) != 1 {
		t.Errorf("got %d colliding hashes, want 1", len(result.Hashes))
	}
	if repo.gotStart != "2024-01-15" || repo.gotEnd != "2024-01-20" {
		t.Errorf("queried range [%s, %s], want [2024-01-15, 2024-01-20]", repo.gotStart, repo.gotEnd)
	}
}

func TestFindDuplicates_EmptyInputSkipsStore(t *testing.T) {
	repo := &mockTransactionReader{}
	d := NewDetector(repo)

	result, err := d.FindDuplicates(context.Background(), nil, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Matches) != 0 || len(result.Hashes) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if repo.calls != 0 {
		t.Errorf("store queried %d times for empty input, want 0", repo.calls)
	}
}

func TestFindDuplicates_StoreError(t *testing.T) {
	repo := &mockTransactionReader{err: errors.New("store down")}
	d := NewDetector(repo)

	_, err := d.FindDuplicates(context.Background(), []domain.ParsedTransaction{tx("2024-01-15", 1, "X")}, "user-1")
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}
