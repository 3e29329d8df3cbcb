package models

// Provider identifies a known BNPL provider.
type Provider string

const (
	ProviderKlarna       Provider = "Klarna"
	ProviderAffirm       Provider = "Affirm"
	ProviderAfterpay     Provider = "Afterpay"
	ProviderPayPalPayIn4 Provider = "PayPalPayIn4"
	ProviderZip          Provider = "Zip"
	ProviderSezzle       Provider = "Sezzle"

	// ProviderUnknown is a detector result only. It is never stored on an
	// Item: blocks that stay unrecognized either get a free-text inferred
	// name from the fallback path or become an Issue.
	ProviderUnknown Provider = "Unknown"
)

// KnownProviders lists the closed provider set in detection priority order.
var KnownProviders = []Provider{
	ProviderKlarna,
	ProviderAffirm,
	ProviderAfterpay,
	ProviderPayPalPayIn4,
	ProviderZip,
	ProviderSezzle,
}

// IsKnown reports whether p is one of the closed provider enum values.
func (p Provider) IsKnown() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// Item is one parsed payment installment.
type Item struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	InstallmentNo int     `json:"installment_no"`
	DueDate       string  `json:"due_date"` // YYYY-MM-DD
	RawDueDate    string  `json:"raw_due_date"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Autopay       bool    `json:"autopay"`
	LateFee       float64 `json:"late_fee"`
	Confidence    float64 `json:"confidence"`
}

// Issue describes one block that could not be parsed. The snippet is
// redacted before it is attached; raw input never reaches an Issue.
type Issue struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Reason  string `json:"reason"`
}

// DateLocale selects how ambiguous slash dates are read.
type DateLocale string

const (
	LocaleUS DateLocale = "US" // month/day/year
	LocaleEU DateLocale = "EU" // day/month/year
)

// Options control a single extraction call.
type Options struct {
	DateLocale  DateLocale `json:"dateLocale,omitempty"`
	BypassCache bool       `json:"bypassCache,omitempty"`
}

// ExtractionResult is the full output of one extraction call.
type ExtractionResult struct {
	Items             []Item     `json:"items"`
	Issues            []Issue    `json:"issues"`
	DuplicatesRemoved int        `json:"duplicatesRemoved"`
	DateLocale        DateLocale `json:"dateLocale"`
}
