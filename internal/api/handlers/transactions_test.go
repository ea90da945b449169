package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/learning"
)

type mockTransactionStore struct {
	transactions map[string]domain.TransactionRecord
	updated      map[string]string // transaction ID -> category ID
	updateErr    error
}

func newMockTransactionStore(records ...domain.TransactionRecord) *mockTransactionStore {
	m := &mockTransactionStore{
		transactions: make(map[string]domain.TransactionRecord),
		updated:      make(map[string]string),
	}
	for _, rec := range records {
		m.transactions[rec.ID] = rec
	}
	return m
}

func (m *mockTransactionStore) ListTransactionsByDateRange(ctx context.Context, userID, startDate, endDate string) ([]domain.TransactionRecord, error) {
	var out []domain.TransactionRecord
	for _, rec := range m.transactions {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockTransactionStore) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.TransactionRecord, error) {
	rec, ok := m.transactions[transactionID]
	if !ok || rec.UserID != userID {
		return nil, nil
	}
	return &rec, nil
}

func (m *mockTransactionStore) UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated[transactionID] = categoryID
	return nil
}

// mockRuleRepo is mutex-guarded because bulk recategorize learns concurrently.
type mockRuleRepo struct {
	mu    sync.Mutex
	rules []domain.LearnedRule
}

func (m *mockRuleRepo) ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LearnedRule
	for _, r := range m.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRuleRepo) FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].UserID == userID && m.rules[i].MerchantPattern == pattern {
			return &m.rules[i], nil
		}
	}
	return nil, nil
}

func (m *mockRuleRepo) FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].UserID == userID && m.rules[i].MerchantPattern == pattern && m.rules[i].CategoryID == categoryID {
			return &m.rules[i], nil
		}
	}
	return nil, nil
}

func (m *mockRuleRepo) InsertRule(ctx context.Context, rule *domain.LearnedRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *mockRuleRepo) UpdateRule(ctx context.Context, rule *domain.LearnedRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == rule.ID {
			m.rules[i] = *rule
			return nil
		}
	}
	return errors.New("rule not found")
}

func (m *mockRuleRepo) DeleteRule(ctx context.Context, ruleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == ruleID {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return errors.New("rule not found")
}

func newTestHandler(t *testing.T, store *mockTransactionStore) (*TransactionsHandler, *mockRuleRepo) {
	t.Helper()
	repo := &mockRuleRepo{}
	learner, err := learning.NewStore(repo)
	require.NoError(t, err)
	t.Cleanup(learner.Close)
	return NewTransactionsHandler(store, learner, zerolog.Nop()), repo
}

func TestUpdateCategory(t *testing.T) {
	store := newMockTransactionStore(domain.TransactionRecord{
		ID:       "tx-1",
		UserID:   "u1",
		Merchant: "STARBUCKS STORE",
	})
	h, repo := newTestHandler(t, store)

	body := `{"user_id":"u1","category_id":"cat-dining"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transactions/tx-1/category", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.UpdateCategory(rec, req, "tx-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cat-dining", store.updated["tx-1"])

	require.Len(t, repo.rules, 1)
	assert.Equal(t, "starbucks store", repo.rules[0].MerchantPattern)
	assert.Equal(t, "cat-dining", repo.rules[0].CategoryID)
	assert.Equal(t, 100, repo.rules[0].Confidence)
}

func TestUpdateCategoryUnknownTransaction(t *testing.T) {
	h, repo := newTestHandler(t, newMockTransactionStore())

	body := `{"user_id":"u1","category_id":"cat-dining"}`
	req := httptest.NewRequest(http.MethodPut, "/api/transactions/tx-404/category", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.UpdateCategory(rec, req, "tx-404")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, repo.rules)
}

func TestUpdateCategoryValidation(t *testing.T) {
	h, _ := newTestHandler(t, newMockTransactionStore())

	req := httptest.NewRequest(http.MethodPut, "/api/transactions/tx-1/category", strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()

	h.UpdateCategory(rec, req, "tx-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkRecategorize(t *testing.T) {
	store := newMockTransactionStore(
		domain.TransactionRecord{ID: "tx-1", UserID: "u1", Merchant: "KROGER STORE"},
		domain.TransactionRecord{ID: "tx-2", UserID: "u1", Merchant: "SHELL OIL"},
	)
	h, repo := newTestHandler(t, store)

	body := `{"user_id":"u1","updates":[
		{"transaction_id":"tx-1","category_id":"cat-groceries"},
		{"transaction_id":"tx-2","category_id":"cat-transport"},
		{"transaction_id":"tx-missing","category_id":"cat-x"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/recategorize", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.BulkRecategorize(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []bulkResult `json:"results"`
		Updated int          `json:"updated"`
		Total   int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Updated)
	assert.Equal(t, 3, resp.Total)
	assert.True(t, resp.Results[0].Updated)
	assert.True(t, resp.Results[1].Updated)
	assert.False(t, resp.Results[2].Updated)
	assert.Equal(t, "transaction not found", resp.Results[2].Error)

	assert.Equal(t, "cat-groceries", store.updated["tx-1"])
	assert.Equal(t, "cat-transport", store.updated["tx-2"])
	assert.Len(t, repo.rules, 2)
}

func TestBulkRecategorizeRequiresUpdates(t *testing.T) {
	h, _ := newTestHandler(t, newMockTransactionStore())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/recategorize", strings.NewReader(`{"user_id":"u1"}`))
	rec := httptest.NewRecorder()

	h.BulkRecategorize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
