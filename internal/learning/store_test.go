package learning

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkruglov/pennyflow/internal/domain"
)

// mockRuleRepo is an in-memory RuleRepository with the same ordering
// guarantees as the real backends.
type mockRuleRepo struct {
	rules map[string]*domain.LearnedRule
}

func newMockRuleRepo() *mockRuleRepo {
	return &mockRuleRepo{rules: make(map[string]*domain.LearnedRule)}
}

func (m *mockRuleRepo) ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	var out []domain.LearnedRule
	for _, r := range m.rules {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *mockRuleRepo) FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error) {
	var best *domain.LearnedRule
	for _, r := range m.rules {
		if r.UserID != userID || r.MerchantPattern != pattern {
			continue
		}
		if best == nil || r.UpdatedAt.After(best.UpdatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *mockRuleRepo) FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error) {
	for _, r := range m.rules {
		if r.UserID == userID && r.MerchantPattern == pattern && r.CategoryID == categoryID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRuleRepo) InsertRule(ctx context.Context, rule *domain.LearnedRule) error {
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockRuleRepo) UpdateRule(ctx context.Context, rule *domain.LearnedRule) error {
	cp := *rule
	m.rules[rule.ID] = &cp
	return nil
}

func (m *mockRuleRepo) DeleteRule(ctx context.Context, ruleID string) error {
	delete(m.rules, ruleID)
	return nil
}

func (m *mockRuleRepo) rulesFor(userID string) []domain.LearnedRule {
	out, _ := m.ListRulesByUser(context.Background(), userID)
	return out
}

func newTestStore(t *testing.T, repo RuleRepository) *Store {
	t.Helper()
	s, err := NewStore(repo)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestLearnFromCorrection_CreatesRule(t *testing.T) {
	repo := newMockRuleRepo()
	s := newTestStore(t, repo)

	err := s.LearnFromCorrection(context.Background(), "u1", Correction{Merchant: "The Starbucks Inc"}, "cat-coffee")
	require.NoError(t, err)

	rules := repo.rulesFor("u1")
	require.Len(t, rules, 1)
	assert.Equal(t, "starbucks", rules[0].MerchantPattern)
	assert.Equal(t, "cat-coffee", rules[0].CategoryID)
	assert.Equal(t, 100, rules[0].Confidence)
}

func TestLearnFromCorrection_LatestCategoryWins(t *testing.T) {
	repo := newMockRuleRepo()
	s := newTestStore(t, repo)
	ctx := context.Background()

	require.NoError(t, s.LearnFromCorrection(ctx, "u1", Correction{Merchant: "Starbucks"}, "cat-dining"))
	require.NoError(t, s.LearnFromCorrection(ctx, "u1", Correction{Merchant: "STARBUCKS"}, "cat-coffee"))

	rules := repo.rulesFor("u1")
	require.Len(t, rules, 1, "exactly one rule per (user, merchant) pair")
	assert.Equal(t, "cat-coffee", rules[0].CategoryID)
}

func TestStoreLearnedPattern_RefreshesSameCategory(t *testing.T) {
	repo := newMockRuleRepo()
	s := newTestStore(t, repo)
	ctx := context.Background()

	first, err := s.StoreLearnedPattern(ctx, "u1", "starbucks", "cat-dining", 80)
	require.NoError(t, err)

	second, err := s.StoreLearnedPattern(ctx, "u1", "starbucks", "cat-dining", 100)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	rules := repo.rulesFor("u1")
	require.Len(t, rules, 1)
	assert.Equal(t, 100, rules[0].Confidence)
	assert.False(t, rules[0].UpdatedAt.Before(first.UpdatedAt))
}

func TestStoreLearnedPattern_ReconcilesHistoricalDuplicate(t *testing.T) {
	repo := newMockRuleRepo()
	s := newTestStore(t, repo)
	ctx := context.Background()

	// Two historical rules for the same pattern with different categories;
	// the dining one is newer.
	old := &domain.LearnedRule{
		ID: "rule-groceries", UserID: "u1", MerchantPattern: "corner store",
		CategoryID: "cat-groceries", Confidence: 100,
		CreatedAt: time.Now().Add(-48 * time.Hour), UpdatedAt: time.Now().Add(-48 * time.Hour),
	}
	newer := &domain.LearnedRule{
		ID: "rule-dining", UserID: "u1", MerchantPattern: "corner store",
		CategoryID: "cat-dining", Confidence: 100,
		CreatedAt: time.Now().Add(-time.Hour), UpdatedAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, repo.InsertRule(ctx, old))
	require.NoError(t, repo.InsertRule(ctx, newer))

	// Correcting back to groceries must not duplicate: the stale dining rule
	// goes away and the groceries rule survives.
	got, err := s.StoreLearnedPattern(ctx, "u1", "corner store", "cat-groceries", 100)
	require.NoError(t, err)
	assert.Equal(t, "rule-groceries", got.ID)

	rules := repo.rulesFor("u1")
	require.Len(t, rules, 1)
	assert.Equal(t, "cat-groceries", rules[0].CategoryID)
}

func TestStoreLearnedPattern_RequiresArguments(t *testing.T) {
	repo := newMockRuleRepo()
	s := newTestStore(t, repo)

	_, err := s.StoreLearnedPattern(context.Background(), "", "starbucks", "c1", 100)
	assert.Error(t, err)
	_, err = s.StoreLearnedPattern(context.Background(), "u1", "   ", "c1", 100)
	assert.Error(t, err)
	_, err = s.StoreLearnedPattern(context.Background(), "u1", "starbucks", "", 100)
	assert.Error(t, err)
}

func TestFindLearnedPatterns(t *testing.T) {
	repo := newMockRuleRepo()
	ctx := context.Background()
	now := time.Now()
	seed := []*domain.LearnedRule{
		{ID: "r-exact", UserID: "u1", MerchantPattern: "starbucks", CategoryID: "c1", Confidence: 100, UpdatedAt: now},
		{ID: "r-contained", UserID: "u1", MerchantPattern: "star", CategoryID: "c2", Confidence: 90, UpdatedAt: now},
		{ID: "r-containing", UserID: "u1", MerchantPattern: "starbucks coffee company", CategoryID: "c3", Confidence: 80, UpdatedAt: now},
		{ID: "r-desc", UserID: "u1", MerchantPattern: "store 1234", CategoryID: "c4", Confidence: 70, UpdatedAt: now},
		{ID: "r-unrelated", UserID: "u1", MerchantPattern: "kroger", CategoryID: "c5", Confidence: 100, UpdatedAt: now},
		{ID: "r-other-user", UserID: "u2", MerchantPattern: "starbucks", CategoryID: "c6", Confidence: 100, UpdatedAt: now},
	}
	for _, r := range seed {
		require.NoError(t, repo.InsertRule(ctx, r))
	}
	s := newTestStore(t, repo)

	got, err := s.FindLearnedPatterns(ctx, "u1", "STARBUCKS", "POS DEBIT STORE 1234")
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.ElementsMatch(t, []string{"r-exact", "r-contained", "r-containing", "r-desc"}, ids)
	// Repository ordering is preserved: confidence descending.
	assert.Equal(t, "r-exact", ids[0])
}

func TestFindLearnedPatterns_NoUser(t *testing.T) {
	s := newTestStore(t, newMockRuleRepo())
	got, err := s.FindLearnedPatterns(context.Background(), "", "starbucks", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
