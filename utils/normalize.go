package utils

import (
	"strings"

	"github.com/forPelevin/gomoji"

	"github.com/finqube/claimflow/dto"
)

// keywordRule maps free-text tokens to a category code. Used as the second
// stage of normalization when the OCR/LLM backend emits a category name that
// does not exactly match any configured option.
type keywordRule struct {
	Keywords []string
	Category string
}

var categoryKeywords = []keywordRule{
	{[]string{"cert", "exam", "course", "training", "license"}, "certification"},
	{[]string{"flight", "air", "cab", "taxi", "transport", "trip", "commute"}, "travel"},
	{[]string{"hotel", "stay", "lodging", "room"}, "accommodation"},
	{[]string{"food", "meal", "lunch", "dinner", "restaurant"}, "meals"},
	{[]string{"petrol", "diesel", "gas"}, "fuel"},
	{[]string{"phone", "mobile", "internet", "broadband", "telecom"}, "communication"},
	{[]string{"medicine", "doctor", "health", "pharmacy"}, "medical"},
	{[]string{"stationery", "supplies", "printer"}, "office_supplies"},
}

// normalizeToken folds case, strips emoji and collapses separators so that
// "Office-Supplies" and "office_supplies" compare equal.
func normalizeToken(s string) string {
	s = gomoji.RemoveEmojis(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// NormalizeCategory resolves a possibly-noisy category string against the
// loaded option list: exact match on code, API code or label first, then the
// keyword map, defaulting to "other".
func NormalizeCategory(raw string, options []dto.CategoryOption) string {
	normalized := normalizeToken(raw)
	if normalized == "" {
		return dto.CategoryOther
	}

	for _, opt := range options {
		if normalized == normalizeToken(opt.Code) ||
			(opt.APICode != "" && normalized == normalizeToken(opt.APICode)) ||
			normalized == normalizeToken(opt.Label) {
			return opt.Code
		}
	}

	loaded := make(map[string]bool, len(options))
	for _, opt := range options {
		loaded[opt.Code] = true
	}
	for _, rule := range categoryKeywords {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) && loaded[rule.Category] {
				return rule.Category
			}
		}
	}

	return dto.CategoryOther
}
