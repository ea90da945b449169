// Package categorize assigns spending categories to transactions through a
// layered rule matcher: learned user patterns first, then static exact
// merchant rules, then merchant keywords, then description keywords.
package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkruglov/pennyflow/internal/domain"
	"github.com/dkruglov/pennyflow/internal/logger"
	"github.com/dkruglov/pennyflow/internal/normalize"
)

// RuleFinder returns a user's learned rules that could apply to a merchant or
// description. Implemented by the learning store.
type RuleFinder interface {
	FindLearnedPatterns(ctx context.Context, userID, merchant, description string) ([]domain.LearnedRule, error)
}

// Engine is the layered categorizer. A nil RuleFinder disables the learned
// layer; static rules still apply.
type Engine struct {
	rules RuleFinder
}

// NewEngine creates an engine. rules may be nil.
func NewEngine(rules RuleFinder) *Engine {
	return &Engine{rules: rules}
}

// Input is one transaction to categorize. ID is an optional caller tag
// echoed back by the batch variant.
type Input struct {
	ID          string `json:"id,omitempty"`
	Merchant    string `json:"merchant"`
	Description string `json:"description,omitempty"`
}

// BatchResult tags a categorization with the input it belongs to.
type BatchResult struct {
	ID     string                      `json:"id,omitempty"`
	Result domain.CategorizationResult `json:"result"`
}

const noMatch = "No matching rule found"

// Categorize assigns a category for one transaction. The caller supplies its
// full category catalog; a rule naming a category the caller does not own is
// skipped and the next layer is tried. userID enables the learned layer.
func (e *Engine) Categorize(ctx context.Context, in Input, categories []domain.Category, userID string) domain.CategorizationResult {
	merchant := normalize.Merchant(in.Merchant)
	if merchant == "" {
		return domain.CategorizationResult{
			Confidence:  0,
			MatchReason: "No merchant name provided",
			MatchSource: domain.MatchSourceDefault,
		}
	}

	if userID != "" && e.rules != nil {
		if res, ok := e.matchLearned(ctx, userID, in, merchant, categories); ok {
			return res
		}
	}

	if rule, ok := exactMerchantRules[merchant]; ok {
		if cat := categoryByName(categories, rule.CategoryName); cat != nil {
			return domain.CategorizationResult{
				CategoryID:  cat.ID,
				Confidence:  100,
				MatchReason: fmt.Sprintf("Merchant matches %q", merchant),
				MatchSource: domain.MatchSourceDefault,
			}
		}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.Keywords {
			if !strings.Contains(merchant, kw) {
				continue
			}
			if cat := categoryByName(categories, rule.CategoryName); cat != nil {
				return domain.CategorizationResult{
					CategoryID:  cat.ID,
					Confidence:  rule.Confidence,
					MatchReason: fmt.Sprintf("Merchant contains %q", kw),
					MatchSource: domain.MatchSourceDefault,
				}
			}
		}
	}

	if desc := strings.ToLower(strings.TrimSpace(in.Description)); desc != "" {
		for _, rule := range keywordRules {
			for _, kw := range rule.Keywords {
				if !strings.Contains(desc, kw) {
					continue
				}
				if cat := categoryByName(categories, rule.CategoryName); cat != nil {
					return domain.CategorizationResult{
						CategoryID:  cat.ID,
						Confidence:  max(rule.Confidence-10, 0),
						MatchReason: fmt.Sprintf("Description contains %q", kw),
						MatchSource: domain.MatchSourceDefault,
					}
				}
			}
		}
	}

	return domain.CategorizationResult{
		Confidence:  0,
		MatchReason: noMatch,
		MatchSource: domain.MatchSourceDefault,
	}
}

// CategorizeBatch categorizes a list of transactions in one call, preserving
// input order and echoing each input's ID.
func (e *Engine) CategorizeBatch(ctx context.Context, ins []Input, categories []domain.Category, userID string) []BatchResult {
	results := make([]BatchResult, len(ins))
	for i, in := range ins {
		results[i] = BatchResult{
			ID:     in.ID,
			Result: e.Categorize(ctx, in, categories, userID),
		}
	}
	return results
}

func (e *Engine) matchLearned(ctx context.Context, userID string, in Input, merchant string, categories []domain.Category) (domain.CategorizationResult, bool) {
	rules, err := e.rules.FindLearnedPatterns(ctx, userID, in.Merchant, in.Description)
	if err != nil {
		// Learned lookup failures degrade to static rules; categorization
		// itself must not fail.
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("user_id", userID).Msg("Learned pattern lookup failed")
		return domain.CategorizationResult{}, false
	}

	best := matchLearnedPattern(rules, merchant, in.Description)
	if best == nil {
		return domain.CategorizationResult{}, false
	}
	if categoryByID(categories, best.rule.CategoryID) == nil {
		// The winning rule points at a category this caller does not own;
		// discard the learned match and let static rules decide.
		return domain.CategorizationResult{}, false
	}
	return domain.CategorizationResult{
		CategoryID:  best.rule.CategoryID,
		Confidence:  best.confidence,
		MatchReason: best.reason,
		MatchSource: domain.MatchSourceLearned,
	}, true
}

// Learned match tiers, lower is stronger.
const (
	tierExact = iota
	tierPartial
	tierDescription
)

type learnedMatch struct {
	rule       domain.LearnedRule
	confidence int
	tier       int
	reason     string
}

// matchLearnedPattern ranks a user's candidate rules against the normalized
// merchant: exact equality keeps the rule's confidence, substring containment
// either direction costs 5, a description hit costs 10, both floored at zero.
// A stronger tier always beats a weaker one; within a tier the higher
// post-adjustment confidence wins.
func matchLearnedPattern(rules []domain.LearnedRule, merchant, description string) *learnedMatch {
	desc := strings.ToLower(description)

	var best *learnedMatch
	for _, r := range rules {
		p := r.MerchantPattern
		if p == "" {
			continue
		}

		var m *learnedMatch
		switch {
		case p == merchant:
			m = &learnedMatch{
				rule:       r,
				confidence: r.Confidence,
				tier:       tierExact,
				reason:     fmt.Sprintf("Learned pattern %q matches merchant", p),
			}
		case strings.Contains(merchant, p) || strings.Contains(p, merchant):
			m = &learnedMatch{
				rule:       r,
				confidence: max(r.Confidence-5, 0),
				tier:       tierPartial,
				reason:     fmt.Sprintf("Learned pattern %q partially matches merchant", p),
			}
		case desc != "" && strings.Contains(desc, p):
			m = &learnedMatch{
				rule:       r,
				confidence: max(r.Confidence-10, 0),
				tier:       tierDescription,
				reason:     fmt.Sprintf("Learned pattern %q found in description", p),
			}
		default:
			continue
		}

		if best == nil || m.tier < best.tier || (m.tier == best.tier && m.confidence > best.confidence) {
			best = m
		}
	}
	return best
}

func categoryByID(categories []domain.Category, id string) *domain.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}

func categoryByName(categories []domain.Category, name string) *domain.Category {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}
