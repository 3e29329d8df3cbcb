package models

import "regexp"

// Signature is one provider-detection probe: a literal substring (typically
// an email domain) or a keyword that needs corroboration before it counts.
type Signature struct {
	// Substring is matched case-insensitively against the block text.
	Substring string
	// Guarded marks keywords that collide with ordinary English ("zip",
	// "sezzle" product mentions). A guarded keyword only counts when the
	// block also contains one of the provider's domains, or the keyword
	// sits near an installment phrase.
	Guarded bool
}

// ProviderPatternSet is the static per-provider extraction configuration.
// Each pattern list is ordered most-specific first; the first pattern that
// matches and yields a plausible value wins.
type ProviderPatternSet struct {
	Provider            Provider
	Signatures          []Signature
	Domains             []string
	AmountPatterns      []*regexp.Regexp
	DatePatterns        []*regexp.Regexp
	InstallmentPatterns []*regexp.Regexp
}
