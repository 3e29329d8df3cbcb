// Package extract turns pasted BNPL reminder emails into structured
// payment installments. The pipeline is synchronous and pure except for
// the result cache: cache lookup, normalize, split into blocks, then per
// block provider detection and field extraction with a generic fallback,
// deduplication, and cache store.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/cache"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
	"github.com/mmtuentertainment/PayPlan-sub009/internal/sanitize"
)

const (
	// MaxInputChars is the hard whole-input ceiling. Larger pastes are
	// rejected outright, never partially processed.
	MaxInputChars = 50000
	// LowSignalMaxChars is the lower ceiling applied when the input
	// carries no numeric, currency, or payment-keyword signal at all.
	// Legitimately long multi-email pastes always carry signals.
	LowSignalMaxChars = 10000
	// MaxItems caps the result size so pathological pastes with
	// thousands of repeated blocks cannot swamp rendering downstream.
	MaxItems = 300
	// snippetChars bounds the redacted snippet attached to an Issue.
	snippetChars = 100
)

// Input-rejection errors are thrown to the caller and are safe to display
// as-is.
var (
	ErrInputTooLarge = fmt.Errorf("input is too large (over %d characters); paste fewer emails at a time", MaxInputChars)
	ErrNoSignal      = errors.New("input is very long but contains no payment information; paste BNPL reminder emails")
)

var (
	paymentSignal = regexp.MustCompile(`(?i)[0-9$]|payment|due|installment|instalment|klarna|affirm|afterpay|paypal|zip|sezzle`)
	alphanumeric  = regexp.MustCompile(`[A-Za-z0-9]`)
)

// Pre-written, PII-free Issue text. Raw exception messages and raw input
// never reach the user.
const (
	reasonDegenerate = "No payment information found. Paste one or more BNPL reminder emails (Klarna, Affirm, Afterpay, PayPal Pay in 4, Zip, Sezzle)."
	reasonItemCap    = "Too many installments found; only the first %d are shown."
	reasonFieldsFmt  = "%s: not found. Please ensure the email contains text like \"$25.00\" and \"Due date: 2026-01-15\"."
)

// Service is the extraction pipeline plus its process-scoped result
// cache. Construct one per process (or per test) with NewService; the
// cache is reachable only through Extract.
type Service struct {
	cache *cache.Cache
	now   func() time.Time
}

// Config parameterizes a Service. Zero values select sensible defaults.
type Config struct {
	// CacheSize bounds the result cache; 0 means cache.DefaultSize.
	CacheSize int
	// Now supplies the clock for date plausibility checks. Tests inject
	// a fixed time here.
	Now func() time.Time
}

// NewService builds a ready-to-use extraction pipeline.
func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cache: cache.New(cfg.CacheSize),
		now:   now,
	}
}

// Extract runs the full pipeline over one paste. timezone is an IANA zone
// name used for date plausibility; unrecognized zones fall back to UTC.
// The returned result is immutable: on a cache hit the literal memoized
// result is returned, ids included.
func (s *Service) Extract(text, timezone string, opts models.Options) (*models.ExtractionResult, error) {
	locale := opts.DateLocale
	if locale != models.LocaleEU {
		locale = models.LocaleUS
	}

	if len([]rune(text)) > MaxInputChars {
		return nil, ErrInputTooLarge
	}
	if len([]rune(text)) > LowSignalMaxChars && !paymentSignal.MatchString(text) {
		return nil, ErrNoSignal
	}

	key := cache.Fingerprint(text, timezone, string(locale))
	if !opts.BypassCache {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
	}

	tz, err := time.LoadLocation(timezone)
	if err != nil {
		tz = time.UTC
	}

	res := s.run(text, locale, tz)
	if !opts.BypassCache {
		s.cache.Add(key, res)
	}
	return res, nil
}

// run executes every stage past the cache. It never fails: whole-input
// problems short-circuited in Extract, and nothing above the single-block
// boundary aborts processing of sibling blocks.
func (s *Service) run(text string, locale models.DateLocale, tz *time.Location) *models.ExtractionResult {
	res := &models.ExtractionResult{
		Items:      make([]models.Item, 0),
		Issues:     make([]models.Issue, 0),
		DateLocale: locale,
	}

	// Degenerate input gets one generic Issue, with no snippet: there is
	// nothing worth running block splitting or detection on.
	if !alphanumeric.MatchString(text) {
		res.Issues = append(res.Issues, models.Issue{
			ID:     uuid.NewString(),
			Reason: reasonDegenerate,
		})
		return res
	}

	normalized := sanitize.Normalize(text)
	now := s.now()

	for _, block := range splitBlocks(normalized) {
		item, issue := s.extractBlock(block, locale, now, tz)
		if item != nil {
			res.Items = append(res.Items, *item)
		} else if issue != nil {
			res.Issues = append(res.Issues, *issue)
		}
	}

	res.Items, res.DuplicatesRemoved = dedupeItems(res.Items)

	if len(res.Items) > MaxItems {
		res.Items = res.Items[:MaxItems]
		res.Issues = append(res.Issues, models.Issue{
			ID:     uuid.NewString(),
			Reason: fmt.Sprintf(reasonItemCap, MaxItems),
		})
	}

	return res
}

// extractBlock produces at most one Item or at most one Issue for a
// block, never both. Provider-path failure is a signal, not an error: the
// generic fallback runs before the block is given up on.
func (s *Service) extractBlock(block string, locale models.DateLocale, now time.Time, tz *time.Location) (*models.Item, *models.Issue) {
	provider := DetectProvider(block)

	if ps := patternSetFor(provider); ps != nil {
		if item, errs := s.extractWithProvider(block, ps, locale, now, tz); len(errs) == 0 {
			return item, nil
		}
	}

	item, errs := fallbackExtract(block, provider, locale, now, tz)
	if len(errs) == 0 {
		item.ID = uuid.NewString()
		return &item, nil
	}

	return nil, &models.Issue{
		ID:      uuid.NewString(),
		Snippet: sanitize.Snippet(block, snippetChars),
		Reason:  fmt.Sprintf(reasonFieldsFmt, missingFields(errs)),
	}
}

// extractWithProvider runs the provider-specific ordered pattern chains.
// Field errors are collected rather than returned on first failure.
func (s *Service) extractWithProvider(block string, ps *models.ProviderPatternSet, locale models.DateLocale, now time.Time, tz *time.Location) (*models.Item, []error) {
	var errs []error

	amount, amountErr := extractAmount(block, ps.AmountPatterns)
	if amountErr != nil {
		errs = append(errs, amountErr)
	}

	iso, raw, dateErr := extractDueDate(block, ps.DatePatterns, locale, now, tz)
	if dateErr != nil {
		errs = append(errs, dateErr)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	installmentNo, installmentFound := extractInstallment(block, ps.InstallmentPatterns)
	autopay, autopayDetermined := extractAutopay(block)

	return &models.Item{
		ID:            uuid.NewString(),
		Provider:      string(ps.Provider),
		InstallmentNo: installmentNo,
		DueDate:       iso,
		RawDueDate:    raw,
		Amount:        amount,
		Currency:      extractCurrency(block),
		Autopay:       autopay,
		LateFee:       extractLateFee(block),
		Confidence:    confidenceScore(true, true, true, installmentFound, autopayDetermined),
	}, nil
}

// missingFields renders collected field errors as a stable, user-facing
// list like "Amount, Due date".
func missingFields(errs []error) string {
	var fields []string
	for _, err := range errs {
		var fe *FieldError
		if errors.As(err, &fe) {
			fields = append(fields, fe.Field)
		}
	}
	if len(fields) == 0 {
		fields = []string{"Amount", "Due date"}
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}
