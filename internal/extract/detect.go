package extract

import (
	"regexp"
	"strings"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// keywordGuardDistance bounds how far (in characters) a guarded keyword
// may sit from an installment phrase and still count as a detection.
const keywordGuardDistance = 80

// installmentPhrase corroborates guarded keywords: "zip" in a shipping
// update is noise, "zip" next to "pay in 4" is the provider.
var installmentPhrase = regexp.MustCompile(`(?i)pay[- ]in[- ]4|pay in four|installment|instalment|payment \d+ of \d+|payment plan|final payment|amount due`)

// Shared amount chain: most specific (labelled, exact decimals) down to
// bare digits. Capture group 1 is always the numeric value.
var genericAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:amount|payment|total)(?:\s+due)?:?\s*\$\s?(\d[\d,]*\.\d{2})\b`),
	regexp.MustCompile(`\$\s?(\d[\d,]*\.\d{2})\b`),
	regexp.MustCompile(`(?i)(?:amount|payment|total)(?:\s+due)?:?\s*\$?\s?(\d[\d,]*(?:\.\d{1,2})?)\b`),
	regexp.MustCompile(`\$\s?(\d[\d,]*)\b`),
}

// Shared date chain: a labelled token is preferred over a bare one, ISO
// over slash, slash over prose.
var genericDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)due(?:\s+date)?:?\s*(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(?i)due(?:\s+date)?:?\s*(?:on\s+)?(\d{1,2}/\d{1,2}/\d{2,4})`),
	regexp.MustCompile(`(?i)due(?:\s+date)?:?\s*(?:on\s+)?([A-Za-z]{3,9} \d{1,2}(?:st|nd|rd|th)?,? \d{4})`),
	regexp.MustCompile(`(?i)due(?:\s+date)?:?\s*(?:on\s+)?(\d{1,2}(?:st|nd|rd|th)? [A-Za-z]{3,9},? \d{4})`),
	regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
	regexp.MustCompile(`(?i)\b((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2}(?:st|nd|rd|th)?,? \d{4})`),
	regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)? (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*,? \d{4})`),
}

var genericInstallmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)payment\s+(\d{1,2})\s+of\s+(\d{1,2})`),
	regexp.MustCompile(`(?i)installment\s+#?(\d{1,2})(?:\s+of\s+(\d{1,2}))?`),
	regexp.MustCompile(`(?i)instalment\s+#?(\d{1,2})(?:\s+of\s+(\d{1,2}))?`),
	regexp.MustCompile(`\b(\d{1,2})\s*/\s*(\d{1,2})(?:[^/0-9]|$)`),
}

// providerPatternSets holds the per-provider extraction configuration in
// detection priority order. Detection is first-match-wins, so the order
// here is load-bearing.
var providerPatternSets = []*models.ProviderPatternSet{
	{
		Provider: models.ProviderKlarna,
		Domains:  []string{"klarna.com"},
		Signatures: []models.Signature{
			{Substring: "klarna.com"},
			{Substring: "klarna"},
		},
		AmountPatterns: append([]*regexp.Regexp{
			regexp.MustCompile(`(?i)payment of \$\s?(\d[\d,]*\.\d{2})`),
		}, genericAmountPatterns...),
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
	{
		Provider: models.ProviderAffirm,
		Domains:  []string{"affirm.com"},
		Signatures: []models.Signature{
			{Substring: "affirm.com"},
			{Substring: "affirm"},
		},
		AmountPatterns: append([]*regexp.Regexp{
			regexp.MustCompile(`(?i)installment of \$\s?(\d[\d,]*\.\d{2})`),
		}, genericAmountPatterns...),
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
	{
		Provider: models.ProviderAfterpay,
		Domains:  []string{"afterpay.com"},
		Signatures: []models.Signature{
			{Substring: "afterpay.com"},
			{Substring: "afterpay"},
		},
		AmountPatterns:      genericAmountPatterns,
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
	{
		Provider: models.ProviderPayPalPayIn4,
		Domains:  []string{"paypal.com"},
		Signatures: []models.Signature{
			{Substring: "paypal.com"},
			{Substring: "paypal"},
		},
		AmountPatterns:      genericAmountPatterns,
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
	{
		Provider: models.ProviderZip,
		Domains:  []string{"zip.co", "quadpay.com"},
		Signatures: []models.Signature{
			{Substring: "zip.co"},
			{Substring: "quadpay.com"},
			{Substring: "quadpay"},
			{Substring: "zip", Guarded: true},
		},
		AmountPatterns:      genericAmountPatterns,
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
	{
		Provider: models.ProviderSezzle,
		Domains:  []string{"sezzle.com"},
		Signatures: []models.Signature{
			{Substring: "sezzle.com"},
			{Substring: "sezzle", Guarded: true},
		},
		AmountPatterns:      genericAmountPatterns,
		DatePatterns:        genericDatePatterns,
		InstallmentPatterns: genericInstallmentPatterns,
	},
}

// DetectProvider matches a block against known-provider signatures in
// fixed priority order. First match wins; a block is never assigned two
// providers. Returns ProviderUnknown when nothing matches.
func DetectProvider(block string) models.Provider {
	lower := strings.ToLower(block)
	for _, ps := range providerPatternSets {
		for _, sig := range ps.Signatures {
			if !strings.Contains(lower, sig.Substring) {
				continue
			}
			if sig.Guarded && !guardedKeywordOK(lower, sig.Substring, ps.Domains) {
				continue
			}
			return ps.Provider
		}
	}
	return models.ProviderUnknown
}

// patternSetFor returns the static configuration for a known provider, or
// nil for anything else.
func patternSetFor(p models.Provider) *models.ProviderPatternSet {
	for _, ps := range providerPatternSets {
		if ps.Provider == p {
			return ps
		}
	}
	return nil
}

// guardedKeywordOK accepts a guarded keyword only when the block also
// carries one of the provider's email domains, or the keyword occurs
// within keywordGuardDistance of an installment phrase.
func guardedKeywordOK(lower, keyword string, domains []string) bool {
	for _, d := range domains {
		if strings.Contains(lower, d) {
			return true
		}
	}

	phrases := installmentPhrase.FindAllStringIndex(lower, -1)
	if len(phrases) == 0 {
		return false
	}
	for _, kw := range keywordIndices(lower, keyword) {
		for _, ph := range phrases {
			if distance(kw, ph[0]) <= keywordGuardDistance {
				return true
			}
		}
	}
	return false
}

func keywordIndices(s, keyword string) []int {
	var idxs []int
	for from := 0; ; {
		i := strings.Index(s[from:], keyword)
		if i < 0 {
			return idxs
		}
		idxs = append(idxs, from+i)
		from += i + len(keyword)
	}
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
