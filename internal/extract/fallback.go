package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// fallbackProviderLabel is stored when even the loose keyword scan cannot
// name a provider. "Unknown" is never stored on an Item.
const fallbackProviderLabel = "BNPL"

// Loose keyword -> canonical name map for the fallback path. Unlike the
// detector, bare "zip"/"sezzle" are accepted here: by the time the
// fallback runs the block has already produced a plausible amount and
// date, which is corroboration enough.
var fallbackKeywords = []struct {
	keyword  string
	provider models.Provider
}{
	{"klarna", models.ProviderKlarna},
	{"affirm", models.ProviderAffirm},
	{"afterpay", models.ProviderAfterpay},
	{"paypal", models.ProviderPayPalPayIn4},
	{"quadpay", models.ProviderZip},
	{"zip", models.ProviderZip},
	{"sezzle", models.ProviderSezzle},
}

var (
	fallbackAmountPattern = regexp.MustCompile(`\$\s?(\d[\d,]*(?:\.\d{1,2})?)`)

	fallbackDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{2,4})\b`),
		regexp.MustCompile(`(?i)\b((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2}(?:st|nd|rd|th)?,? \d{4})`),
		regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)? (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*,? \d{4})`),
	}

	// A capitalized word next to a payment noun is the best available
	// guess at an unrecognized provider's name.
	namedProviderPattern = regexp.MustCompile(`\b([A-Z][A-Za-z]{2,})\s+(?:payment|installment|instalment|order|purchase|plan)\b`)
)

// Ordinary sentence words that namedProviderPattern can capture at the
// start of phrases like "Final payment due".
var notProviderWords = map[string]bool{
	"Your": true, "This": true, "The": true, "Final": true, "First": true,
	"Second": true, "Third": true, "Fourth": true, "Next": true, "Last": true,
	"Monthly": true, "Upcoming": true, "Please": true, "Auto": true,
	"One": true, "Missed": true, "New": true,
}

// fallbackExtract is the provider-agnostic, lower-confidence strategy. It
// runs when the detector returned Unknown or when provider-specific field
// extraction reported any error. It fails only when neither an amount nor
// a date token can be found, in which case the block becomes an Issue.
func fallbackExtract(block string, detected models.Provider, locale models.DateLocale, now time.Time, tz *time.Location) (models.Item, []error) {
	var errs []error

	amount, amountErr := extractAmount(block, []*regexp.Regexp{fallbackAmountPattern})
	if amountErr != nil {
		errs = append(errs, amountErr)
	}

	iso, raw, dateErr := extractDueDate(block, fallbackDatePatterns, locale, now, tz)
	if dateErr != nil {
		errs = append(errs, dateErr)
	}

	if len(errs) > 0 {
		return models.Item{}, errs
	}

	installmentNo, installmentFound := extractInstallment(block, genericInstallmentPatterns)
	autopay, autopayDetermined := extractAutopay(block)

	providerRecognized := detected.IsKnown()
	return models.Item{
		Provider:      string(inferProvider(block, detected)),
		InstallmentNo: installmentNo,
		DueDate:       iso,
		RawDueDate:    raw,
		Amount:        amount,
		Currency:      extractCurrency(block),
		Autopay:       autopay,
		LateFee:       0,
		Confidence:    confidenceScore(providerRecognized, true, true, installmentFound, autopayDetermined),
	}, nil
}

// inferProvider keeps a detector result when there is one, then falls
// back to bare keywords, a capitalized word near a payment noun, and
// finally the generic label.
func inferProvider(block string, detected models.Provider) models.Provider {
	if detected.IsKnown() {
		return detected
	}
	lower := strings.ToLower(block)
	for _, fk := range fallbackKeywords {
		if strings.Contains(lower, fk.keyword) {
			return fk.provider
		}
	}
	if m := namedProviderPattern.FindStringSubmatch(block); m != nil && !notProviderWords[m[1]] {
		return models.Provider(m[1])
	}
	return models.Provider(fallbackProviderLabel)
}
