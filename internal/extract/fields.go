package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/dateparse"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

const (
	minInstallment = 1
	maxInstallment = 12
)

// FieldError marks a single missing or unparseable field. Per-block
// extraction collects these instead of failing fast, so the eventual
// user-facing message can name every missing field at once.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return e.Field + " not found"
}

// Negative autopay phrases are checked before positive ones: an email
// that mentions autopay only to say it is disabled must yield false.
var (
	autopayNegative = []*regexp.Regexp{
		regexp.MustCompile(`(?i)auto(?:-?pay|matic)(?:\s*pay)?(?:ment)?s?\s+(?:is\s+|are\s+|has\s+been\s+)?(?:off\b|disabled|paused|cancell?ed|turned\s+off\b|not\s+enabled|not\s+set\s+up)`),
		regexp.MustCompile(`(?i)(?:no|without|disable[d]?)\s+auto-?pay`),
		regexp.MustCompile(`(?i)auto-?pay:\s*off`),
	}
	autopayPositive = []*regexp.Regexp{
		regexp.MustCompile(`(?i)auto(?:-?pay|matic)(?:\s*pay)?(?:ment)?s?\s+(?:is\s+|are\s+)?(?:on\b|enabled|active|scheduled|turned\s+on\b)`),
		regexp.MustCompile(`(?i)auto-?pay:\s*on`),
		regexp.MustCompile(`(?i)will\s+be\s+(?:automatically\s+|auto[- ])?(?:charged|debited|collected)`),
		regexp.MustCompile(`(?i)charged\s+automatically`),
		regexp.MustCompile(`(?i)automatic\s+payments?`),
		regexp.MustCompile(`(?i)auto-?pay`),
	}

	lateFeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)late\s+fee(?:\s+of)?:?\s*\$?\s?(\d[\d,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\$\s?(\d[\d,]*(?:\.\d{1,2})?)\s+late\s+fee`),
		regexp.MustCompile(`(?i)fee\s+of\s+\$\s?(\d[\d,]*(?:\.\d{1,2})?)\s+(?:applies|will\s+be)`),
	}
)

// extractAmount tries each pattern in order and returns the first capture
// that parses to a non-negative value.
func extractAmount(text string, patterns []*regexp.Regexp) (float64, error) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := parseAmount(m[1])
		if err != nil || amount < 0 {
			continue
		}
		return amount, nil
	}
	return 0, &FieldError{Field: "Amount"}
}

// extractCurrency is a binary heuristic: a dollar sign or explicit code
// means USD, and the current scope produces nothing else, so this never
// fails.
func extractCurrency(text string) string {
	return "USD"
}

// extractDueDate finds the raw date token via the provider's chain and
// delegates calendar parsing to the dateparse package. Both the resolved
// ISO date and the original token are returned; the token is preserved on
// the Item for audit.
func extractDueDate(text string, patterns []*regexp.Regexp, locale models.DateLocale, now time.Time, tz *time.Location) (iso, raw string, err error) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw = m[1]
		iso, parseErr := dateparse.ParseToISO(raw, locale, now, tz)
		if parseErr != nil {
			// The token matched but is not a usable date; a later,
			// more permissive pattern may still find one.
			continue
		}
		return iso, raw, nil
	}
	return "", "", &FieldError{Field: "Due date"}
}

// extractInstallment looks for "payment X of Y" style phrases. Returns
// (1, false) when nothing plausible is found; never fails.
func extractInstallment(text string, patterns []*regexp.Regexp) (int, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < minInstallment || n > maxInstallment {
			continue
		}
		// When a total is captured (X of Y, X/Y) it must make sense too,
		// otherwise a bare date fragment like "10/6" could slip through.
		if len(m) > 2 && m[2] != "" {
			total, err := strconv.Atoi(m[2])
			if err != nil || total < 2 || total > maxInstallment || n > total {
				continue
			}
		}
		return n, true
	}
	return 1, false
}

// extractAutopay reports the autopay flag and whether any autopay keyword
// was present at all. Absence of a keyword yields (false, false).
func extractAutopay(text string) (value, determined bool) {
	for _, p := range autopayNegative {
		if p.MatchString(text) {
			return false, true
		}
	}
	for _, p := range autopayPositive {
		if p.MatchString(text) {
			return true, true
		}
	}
	return false, false
}

// extractLateFee is optional: absence is not an error, just 0.
func extractLateFee(text string) float64 {
	for _, p := range lateFeePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fee, err := parseAmount(m[1])
		if err != nil || fee < 0 {
			continue
		}
		return fee
	}
	return 0
}

// parseAmount converts a captured string like "1,234.56" to a float64.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return strconv.ParseFloat(s, 64)
}
