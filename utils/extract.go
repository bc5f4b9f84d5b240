package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldResult is the best-effort output of field extraction over raw OCR
// text. Empty fields simply mean the pattern tables found nothing; the user
// fills those in manually.
type FieldResult struct {
	Amount string
	Date   string // "2006-01-02"
	Vendor string
	Title  string
}

var (
	amountLower = decimal.NewFromInt(50)
	amountUpper = decimal.NewFromInt(100000)
)

// amountPatterns are tried in priority order; the first match whose value
// falls inside the plausible range wins and later patterns are skipped.
// The bare 3-6 digit fallback is a known-weak heuristic: it can pick up
// invoice numbers or phone fragments that happen to land in range.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:₹|Rs\.?|INR|\$|USD|€|EUR)\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)(?:grand\s*total|total|amount|fare|net\s*payable)[\s:]*(?:₹|Rs\.?|INR|\$|USD)?\s*([0-9][0-9,]*(?:\.\d{1,2})?)`),
	regexp.MustCompile(`\b([0-9]{1,3}(?:,[0-9]{3})*\.\d{1,2}|\d{2,6}\.\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{3,6})\b`),
}

// ExtractAmount pulls a plausible expense amount out of raw text.
// Thousands separators are stripped; the decimal part is kept as written.
func ExtractAmount(text string) string {
	for _, re := range amountPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			cleaned := strings.ReplaceAll(match[1], ",", "")
			value, err := decimal.NewFromString(cleaned)
			if err != nil {
				continue
			}
			if value.LessThan(amountLower) || value.GreaterThan(amountUpper) {
				continue
			}
			return cleaned
		}
	}
	return ""
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// datePattern pairs a regex with a builder that turns its submatches into a
// calendar date. Invalid constructions (day 32, month 13) return an error and
// extraction falls through to the next pattern.
type datePattern struct {
	Pattern *regexp.Regexp
	Build   func(m []string) (time.Time, error)
}

var datePatterns = []datePattern{
	{
		regexp.MustCompile(`(?i)invoice\s*date[\s:]*(\d{1,2})[/-](\d{1,2})[/-](\d{4})`),
		func(m []string) (time.Time, error) { return buildDate(m[3], m[2], m[1]) },
	},
	{
		regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+([A-Za-z]{3,9})\.?,?\s+(\d{4})`),
		func(m []string) (time.Time, error) { return buildMonthDate(m[3], m[2], m[1]) },
	},
	{
		regexp.MustCompile(`(?i)\b([A-Za-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`),
		func(m []string) (time.Time, error) { return buildMonthDate(m[3], m[1], m[2]) },
	},
	{
		regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`),
		func(m []string) (time.Time, error) { return buildDate(m[3], m[2], m[1]) },
	},
	{
		regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2})\b`),
		func(m []string) (time.Time, error) { return buildDate("20"+m[3], m[2], m[1]) },
	},
	{
		regexp.MustCompile(`(?i)date[\s:]+(\d{1,2})[/-](\d{1,2})[/-](\d{4})`),
		func(m []string) (time.Time, error) { return buildDate(m[3], m[2], m[1]) },
	},
}

func buildDate(year, month, day string) (time.Time, error) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return validDate(y, time.Month(mo), d)
}

func buildMonthDate(year, monthName, day string) (time.Time, error) {
	prefix := strings.ToLower(monthName)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	mo, ok := monthsByPrefix[prefix]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %q", monthName)
	}
	y, _ := strconv.Atoi(year)
	d, _ := strconv.Atoi(day)
	return validDate(y, mo, d)
}

func validDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid calendar date %d-%d-%d", year, month, day)
	}
	return t, nil
}

// ExtractDate returns the first valid calendar date found, as "2006-01-02".
// Two-digit years are read as 2000+YY.
func ExtractDate(text string) string {
	for _, dp := range datePatterns {
		for _, m := range dp.Pattern.FindAllStringSubmatch(text, -1) {
			if t, err := dp.Build(m); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}

// knownVendors is the brand allow-list, tried before generic heuristics.
type knownVendor struct {
	Name    string
	Pattern *regexp.Regexp
}

var knownVendors = []knownVendor{
	{"Uber", regexp.MustCompile(`(?i)\buber\b`)},
	{"Ola", regexp.MustCompile(`(?i)\bola\s*(cabs)?\b`)},
	{"Lyft", regexp.MustCompile(`(?i)\blyft\b`)},
	{"Rapido", regexp.MustCompile(`(?i)\brapido\b`)},
	{"Swiggy", regexp.MustCompile(`(?i)\bswiggy\b`)},
	{"Zomato", regexp.MustCompile(`(?i)\bzomato\b`)},
	{"DoorDash", regexp.MustCompile(`(?i)\bdoor\s*dash\b`)},
	{"MakeMyTrip", regexp.MustCompile(`(?i)\bmake\s*my\s*trip\b`)},
	{"Booking.com", regexp.MustCompile(`(?i)\bbooking\.com\b`)},
	{"Airbnb", regexp.MustCompile(`(?i)\bairbnb\b`)},
	{"OYO", regexp.MustCompile(`(?i)\boyo\s*(rooms)?\b`)},
	{"IndiGo", regexp.MustCompile(`(?i)\bindigo\b`)},
	{"Air India", regexp.MustCompile(`(?i)\bair\s*india\b`)},
	{"SpiceJet", regexp.MustCompile(`(?i)\bspice\s*jet\b`)},
	{"Vistara", regexp.MustCompile(`(?i)\bvistara\b`)},
	{"Emirates", regexp.MustCompile(`(?i)\bemirates\b`)},
	{"Amazon", regexp.MustCompile(`(?i)\bamazon\b`)},
	{"Flipkart", regexp.MustCompile(`(?i)\bflipkart\b`)},
}

var vendorLabelPattern = regexp.MustCompile(`(?i)(?:from|vendor|merchant|paid\s*to)[\s:]+([A-Za-z][A-Za-z0-9 .&'-]{1,49})`)
var vendorNamePattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)

// Words that look like capitalized names but are receipt boilerplate.
var vendorStopWords = map[string]bool{
	"invoice": true, "receipt": true, "date": true, "total": true,
	"amount": true, "bill": true, "order": true, "transaction": true,
	"paid": true, "thank": true, "you": true, "grand": true, "number": true,
}

func hasStopWord(candidate string) bool {
	for _, w := range strings.Fields(candidate) {
		if vendorStopWords[strings.ToLower(w)] {
			return true
		}
	}
	return false
}

// ExtractVendor returns the canonical brand name when the allow-list
// matches, otherwise falls back to label and capitalized-name heuristics.
// Results are capped at 50 characters.
func ExtractVendor(text string) string {
	for _, kv := range knownVendors {
		if kv.Pattern.MatchString(text) {
			return kv.Name
		}
	}
	if m := vendorLabelPattern.FindStringSubmatch(text); len(m) > 1 {
		candidate := strings.TrimSpace(m[1])
		if !hasStopWord(candidate) {
			return truncateVendor(candidate)
		}
	}
	for _, m := range vendorNamePattern.FindAllStringSubmatch(text, -1) {
		if !hasStopWord(m[1]) {
			return truncateVendor(m[1])
		}
	}
	return ""
}

func truncateVendor(v string) string {
	if len(v) > 50 {
		return v[:50]
	}
	return v
}

// BuildTitle synthesizes a claim title from the detected category and the
// extracted vendor/amount.
func BuildTitle(categoryCode, vendor, amount string) string {
	title := CategoryTitle(categoryCode)
	switch {
	case vendor != "":
		return title + " - " + vendor
	case amount != "":
		return title + " Expense - " + amount
	default:
		return title + " Expense"
	}
}

// ExtractFields runs the full pattern tables over raw text.
func ExtractFields(text string) FieldResult {
	amount := ExtractAmount(text)
	vendor := ExtractVendor(text)
	return FieldResult{
		Amount: amount,
		Date:   ExtractDate(text),
		Vendor: vendor,
		Title:  BuildTitle(DetectCategory(text), vendor, amount),
	}
}
