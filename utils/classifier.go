package utils

import (
	"regexp"
	"strings"
)

// categoryRule maps an expense category to the text pattern that selects it.
// Rules are evaluated in order and the first match wins, so more specific
// categories must stay above generic ones.
type categoryRule struct {
	Code    string
	Label   string
	Pattern *regexp.Regexp
}

var categoryRules = []categoryRule{
	{"certification", "Certification", regexp.MustCompile(`(?i)\b(certification|certificate|exam|course|training|udemy|coursera)\b`)},
	{"travel", "Travel", regexp.MustCompile(`(?i)\b(flight|airline|airways|train|rail|cab|taxi|uber|ola|lyft|ride|fare|toll|bus)\b`)},
	{"accommodation", "Accommodation", regexp.MustCompile(`(?i)\b(hotel|lodge|resort|stay|room|accommodation|check[- ]?in|oyo|airbnb)\b`)},
	{"meals", "Meals", regexp.MustCompile(`(?i)\b(restaurant|food|meal|lunch|dinner|breakfast|cafe|swiggy|zomato|doordash)\b`)},
	{"fuel", "Fuel", regexp.MustCompile(`(?i)\b(fuel|petrol|diesel|gas\s*station|filling\s*station)\b`)},
	{"communication", "Communication", regexp.MustCompile(`(?i)\b(mobile|phone|telecom|internet|broadband|data\s*pack|recharge)\b`)},
	{"medical", "Medical", regexp.MustCompile(`(?i)\b(pharmacy|medicine|medical|hospital|clinic|doctor)\b`)},
	{"office_supplies", "Office Supplies", regexp.MustCompile(`(?i)\b(stationery|office\s*suppl\w*|printer|cartridge|paper|toner)\b`)},
}

// DetectCategory classifies raw receipt text into a category code.
// Returns "other" when no rule matches. Pure and deterministic.
func DetectCategory(text string) string {
	if strings.TrimSpace(text) == "" {
		return "other"
	}
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		if rule.Pattern.MatchString(text) {
			return rule.Code
		}
		// The display label appearing verbatim also counts as a match.
		if strings.Contains(lower, strings.ToLower(rule.Label)) {
			return rule.Code
		}
	}
	return "other"
}

// CategoryTitle renders a category code for display: underscores become
// spaces and the first letter is capitalized.
func CategoryTitle(code string) string {
	if code == "" {
		return ""
	}
	title := strings.ReplaceAll(code, "_", " ")
	return strings.ToUpper(title[:1]) + title[1:]
}
