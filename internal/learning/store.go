// Package learning records user category corrections as reusable
// merchant→category rules. The categorization engine consults these before
// any static rule, so corrections take effect on the next import.
package learning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/logger"
	"github.com/dkruglov/pennyflow/internal/normalize"
)

// RuleRepository is the persistence surface the store needs. ListRulesByUser
// must return rules ordered by confidence descending, then most recently
// updated first.
type RuleRepository interface {
	ListRulesByUser(ctx context.Context, userID string) ([]domain.LearnedRule, error)
	// FindRuleByPattern returns the user's most recently updated rule for an
	// exact normalized pattern regardless of category, or nil.
	FindRuleByPattern(ctx context.Context, userID, pattern string) (*domain.LearnedRule, error)
	// FindRuleByPatternAndCategory returns the rule for the exact
	// (user, pattern, category) triple, or nil.
	FindRuleByPatternAndCategory(ctx context.Context, userID, pattern, categoryID string) (*domain.LearnedRule, error)
	InsertRule(ctx context.Context, rule *domain.LearnedRule) error
	UpdateRule(ctx context.Context, rule *domain.LearnedRule) error
	DeleteRule(ctx context.Context, ruleID string) error
}

// Correction is the user edit the store learns from.
type Correction struct {
	Merchant    string
	Description string
}

// Store manages learned rules on top of a repository, with a small per-user
// cache in front of rule listing.
type Store struct {
	repo  RuleRepository
	cache *ristretto.Cache[string, []domain.LearnedRule]
}

// NewStore creates a learning store.
func NewStore(repo RuleRepository) (*Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []domain.LearnedRule]{
		NumCounters: 10_000, // number of keys to track frequency of
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating rule cache: %w", err)
	}
	return &Store{repo: repo, cache: cache}, nil
}

// Close releases the cache.
func (s *Store) Close() {
	s.cache.Close()
}

// ExtractMerchantPattern normalizes a merchant into the stored pattern form.
// This is the same transform duplicate hashing uses, so merchants line up
// predictably across both.
func (s *Store) ExtractMerchantPattern(merchant string) string {
	return normalize.Merchant(merchant)
}

// StoreLearnedPattern creates or reconciles the rule for (user, pattern).
// No existing rule: insert. Same category: refresh confidence and timestamp.
// Different category: repoint the rule — unless a rule for the new category
// already exists, in which case the stale rule is deleted and the existing
// one kept, preserving (user, pattern, category) uniqueness.
func (s *Store) StoreLearnedPattern(ctx context.Context, userID, pattern, categoryID string, confidence int) (*domain.LearnedRule, error) {
	pattern = normalize.Merchant(pattern)
	if userID == "" || pattern == "" || categoryID == "" {
		return nil, fmt.Errorf("StoreLearnedPattern: user, pattern, and category are required")
	}

	existing, err := s.repo.FindRuleByPattern(ctx, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("StoreLearnedPattern: looking up pattern %q: %w", pattern, err)
	}

	now := time.Now().UTC()

	if existing == nil {
		rule := &domain.LearnedRule{
			ID:              uuid.New().String(),
			UserID:          userID,
			MerchantPattern: pattern,
			CategoryID:      categoryID,
			Confidence:      confidence,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.InsertRule(ctx, rule); err != nil {
			return nil, fmt.Errorf("StoreLearnedPattern: inserting rule: %w", err)
		}
		s.invalidate(userID)
		return rule, nil
	}

	if existing.CategoryID == categoryID {
		existing.Confidence = confidence
		existing.UpdatedAt = now
		if err := s.repo.UpdateRule(ctx, existing); err != nil {
			return nil, fmt.Errorf("StoreLearnedPattern: refreshing rule %s: %w", existing.ID, err)
		}
		s.invalidate(userID)
		return existing, nil
	}

	conflict, err := s.repo.FindRuleByPatternAndCategory(ctx, userID, pattern, categoryID)
	if err != nil {
		return nil, fmt.Errorf("StoreLearnedPattern: checking for conflicting rule: %w", err)
	}
	if conflict != nil {
		// Repointing would duplicate (user, pattern, category); drop the
		// stale rule and refresh the one already holding the new category.
		if err := s.repo.DeleteRule(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("StoreLearnedPattern: deleting stale rule %s: %w", existing.ID, err)
		}
		conflict.Confidence = confidence
		conflict.UpdatedAt = now
		if err := s.repo.UpdateRule(ctx, conflict); err != nil {
			return nil, fmt.Errorf("StoreLearnedPattern: refreshing rule %s: %w", conflict.ID, err)
		}
		s.invalidate(userID)
		return conflict, nil
	}

	existing.CategoryID = categoryID
	existing.Confidence = confidence
	existing.UpdatedAt = now
	if err := s.repo.UpdateRule(ctx, existing); err != nil {
		return nil, fmt.Errorf("StoreLearnedPattern: repointing rule %s: %w", existing.ID, err)
	}
	s.invalidate(userID)
	return existing, nil
}

// FindLearnedPatterns returns every rule of the user whose pattern exactly
// equals, contains, or is contained in the normalized merchant, or appears as
// a substring of the description. Order follows the repository's
// confidence-then-recency ordering.
func (s *Store) FindLearnedPatterns(ctx context.Context, userID, merchant, description string) ([]domain.LearnedRule, error) {
	if userID == "" {
		return nil, nil
	}
	norm := normalize.Merchant(merchant)
	desc := strings.ToLower(description)

	rules, err := s.userRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("FindLearnedPatterns: listing rules: %w", err)
	}

	var matched []domain.LearnedRule
	for _, r := range rules {
		p := r.MerchantPattern
		if p == "" {
			continue
		}
		if (norm != "" && (p == norm || strings.Contains(norm, p) || strings.Contains(p, norm))) ||
			(desc != "" && strings.Contains(desc, p)) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// LearnFromCorrection records a manual category change as a full-confidence
// pattern. This is the single integration point for single and bulk edits;
// callers treat failures as best-effort and never fail the edit itself.
func (s *Store) LearnFromCorrection(ctx context.Context, userID string, correction Correction, categoryID string) error {
	pattern := s.ExtractMerchantPattern(correction.Merchant)
	if pattern == "" {
		log := logger.FromContext(ctx)
		log.Debug().
			Str("user_id", userID).
			Msg("Skipping correction with empty merchant")
		return nil
	}
	_, err := s.StoreLearnedPattern(ctx, userID, pattern, categoryID, 100)
	return err
}

// ListRules returns all of a user's learned rules, confidence-then-recency
// ordered.
func (s *Store) ListRules(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	if userID == "" {
		return nil, nil
	}
	rules, err := s.userRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListRules: listing rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes one learned rule and drops the user's cached rule set.
func (s *Store) DeleteRule(ctx context.Context, userID, ruleID string) error {
	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return fmt.Errorf("DeleteRule: %w", err)
	}
	s.invalidate(userID)
	return nil
}

func (s *Store) userRules(ctx context.Context, userID string) ([]domain.LearnedRule, error) {
	if rules, ok := s.cache.Get(userID); ok {
		return rules, nil
	}
	rules, err := s.repo.ListRulesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(userID, rules, int64(len(rules))+1)
	return rules, nil
}

func (s *Store) invalidate(userID string) {
	s.cache.Del(userID)
}
