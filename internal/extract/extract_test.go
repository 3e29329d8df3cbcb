package extract

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// newTestService pins the clock to mid-September 2025 so the fixture
// dates stay inside the plausibility window.
func newTestService() *Service {
	return NewService(Config{
		Now: func() time.Time {
			return time.Date(2025, time.September, 15, 14, 0, 0, 0, time.UTC)
		},
	})
}

const klarnaEmail = `From: no-reply@klarna.com
Subject: Payment reminder
Payment 2 of 4: $45.00
Due date: October 6, 2025
AutoPay is ON`

func TestExtractKlarnaScenario(t *testing.T) {
	svc := newTestService()
	res, err := svc.Extract(klarnaEmail, "America/New_York", models.Options{DateLocale: models.LocaleUS})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Items) != 1 {
		t.Fatalf("got %d items (%d issues), want 1", len(res.Items), len(res.Issues))
	}
	if len(res.Issues) != 0 {
		t.Fatalf("unexpected issues: %+v", res.Issues)
	}

	item := res.Items[0]
	if item.Provider != "Klarna" {
		t.Errorf("provider = %q, want Klarna", item.Provider)
	}
	if item.InstallmentNo != 2 {
		t.Errorf("installment = %d, want 2", item.InstallmentNo)
	}
	if item.DueDate != "2025-10-06" {
		t.Errorf("due date = %q, want 2025-10-06", item.DueDate)
	}
	if item.RawDueDate != "October 6, 2025" {
		t.Errorf("raw due date = %q, want original token", item.RawDueDate)
	}
	if item.Amount != 45.00 {
		t.Errorf("amount = %v, want 45.00", item.Amount)
	}
	if item.Currency != "USD" {
		t.Errorf("currency = %q, want USD", item.Currency)
	}
	if !item.Autopay {
		t.Error("autopay = false, want true")
	}
	if item.LateFee != 0 {
		t.Errorf("late fee = %v, want 0", item.LateFee)
	}
	if math.Abs(item.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", item.Confidence)
	}
	if item.ID == "" {
		t.Error("item id is empty")
	}
}

func TestExtractFallbackActivation(t *testing.T) {
	// Unrecognized provider keyword, but a clear amount and date: still
	// one Item, at strictly lower confidence than the recognized block.
	text := `ShopPal payment reminder
Your payment of $31.25 is due 10/15/2025
Thanks for shopping with us`

	svc := newTestService()
	res, err := svc.Extract(text, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 || len(res.Issues) != 0 {
		t.Fatalf("got %d items %d issues, want 1 item", len(res.Items), len(res.Issues))
	}

	item := res.Items[0]
	if item.Provider != "ShopPal" {
		t.Errorf("provider = %q, want inferred ShopPal", item.Provider)
	}
	if item.Provider == string(models.ProviderUnknown) {
		t.Error("Unknown must never be stored on an Item")
	}
	if item.Amount != 31.25 {
		t.Errorf("amount = %v, want 31.25", item.Amount)
	}
	if item.DueDate != "2025-10-15" {
		t.Errorf("due date = %q, want 2025-10-15", item.DueDate)
	}

	klarnaRes, err := svc.Extract(klarnaEmail, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Confidence >= klarnaRes.Items[0].Confidence {
		t.Errorf("fallback confidence %v should be below provider-path %v",
			item.Confidence, klarnaRes.Items[0].Confidence)
	}
}

func TestExtractLocaleSensitivity(t *testing.T) {
	text := "Klarna payment of $20.00 due 01/02/2026 on your account"

	svc := newTestService()
	us, err := svc.Extract(text, "UTC", models.Options{DateLocale: models.LocaleUS})
	if err != nil {
		t.Fatalf("US extract failed: %v", err)
	}
	eu, err := svc.Extract(text, "UTC", models.Options{DateLocale: models.LocaleEU})
	if err != nil {
		t.Fatalf("EU extract failed: %v", err)
	}

	if us.Items[0].DueDate != "2026-01-02" {
		t.Errorf("US due date = %q, want 2026-01-02", us.Items[0].DueDate)
	}
	if eu.Items[0].DueDate != "2026-02-01" {
		t.Errorf("EU due date = %q, want 2026-02-01", eu.Items[0].DueDate)
	}
}

func TestExtractMultipleBlocksOneBadOneGood(t *testing.T) {
	text := `From: no-reply@klarna.com
Payment 1 of 4: $25.00 due 2025-10-01
---
complete gibberish block with no payment information in it at all`

	svc := newTestService()
	res, err := svc.Extract(text, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("got %d items, want 1 (bad block must not abort siblings)", len(res.Items))
	}
	if len(res.Issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(res.Issues))
	}
	if !strings.Contains(res.Issues[0].Reason, "Amount") || !strings.Contains(res.Issues[0].Reason, "Due date") {
		t.Errorf("reason %q should name every missing field", res.Issues[0].Reason)
	}
}

func TestExtractDedupPreservesDistinctAmounts(t *testing.T) {
	text := `Klarna payment 1 of 4: $45.00 due 2025-10-06
---
Klarna payment 1 of 4: $50.00 due 2025-10-06
---
Klarna payment 1 of 4: $45.00 due 2025-10-06`

	svc := newTestService()
	res, err := svc.Extract(text, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("got %d items, want 2 (same key merged, distinct amounts kept)", len(res.Items))
	}
	if res.DuplicatesRemoved != 1 {
		t.Errorf("duplicatesRemoved = %d, want 1", res.DuplicatesRemoved)
	}
}

func TestExtractDegenerateInput(t *testing.T) {
	for _, input := range []string{"", "   \n\t  ", "!!! ... ---", "@#$%^&*"} {
		svc := newTestService()
		res, err := svc.Extract(input, "UTC", models.Options{})
		if err != nil {
			t.Fatalf("Extract(%q) error: %v", input, err)
		}
		if len(res.Items) != 0 {
			t.Errorf("Extract(%q) produced %d items, want 0", input, len(res.Items))
		}
		if len(res.Issues) != 1 {
			t.Fatalf("Extract(%q) produced %d issues, want exactly 1", input, len(res.Issues))
		}
		if res.Issues[0].Snippet != "" {
			t.Errorf("Extract(%q) leaked snippet %q", input, res.Issues[0].Snippet)
		}
	}
}

func TestExtractInputRejection(t *testing.T) {
	svc := newTestService()

	_, err := svc.Extract(strings.Repeat("a", MaxInputChars+1), "UTC", models.Options{})
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("oversized input: got %v, want ErrInputTooLarge", err)
	}

	_, err = svc.Extract(strings.Repeat("lorem ipsum filler text ", 600), "UTC", models.Options{})
	if !errors.Is(err, ErrNoSignal) {
		t.Errorf("signal-free input: got %v, want ErrNoSignal", err)
	}

	// The same length with a payment signal sails through.
	long := "Klarna payment of $20.00 due 2025-10-06\n" + strings.Repeat("lorem ipsum filler text ", 600)
	if _, err := svc.Extract(long, "UTC", models.Options{}); err != nil {
		t.Errorf("long input with signal rejected: %v", err)
	}
}

func TestExtractIssueSnippetIsRedacted(t *testing.T) {
	text := `From: alerts@shoppal-example.com
your account number 12345678 has a problem
contact John Smith in our billing department today`

	svc := newTestService()
	res, err := svc.Extract(text, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
	for _, issue := range res.Issues {
		if strings.Contains(issue.Snippet, "alerts@shoppal-example.com") {
			t.Errorf("snippet leaked email: %q", issue.Snippet)
		}
		if strings.Contains(issue.Snippet, "12345678") {
			t.Errorf("snippet leaked digit run: %q", issue.Snippet)
		}
		if strings.Contains(issue.Snippet, "John Smith") {
			t.Errorf("snippet leaked name: %q", issue.Snippet)
		}
		if len([]rune(issue.Snippet)) > 100 {
			t.Errorf("snippet too long: %d runes", len([]rune(issue.Snippet)))
		}
	}
}

func TestExtractCacheHitReturnsMemoizedResult(t *testing.T) {
	svc := newTestService()

	first, err := svc.Extract(klarnaEmail, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Extract(klarnaEmail, "UTC", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("cache hit must return the literal memoized result")
	}
	if first.Items[0].ID != second.Items[0].ID {
		t.Error("cache hit changed item ids")
	}
}

func TestExtractBypassCacheIsIdempotentExceptIDs(t *testing.T) {
	svc := newTestService()
	opts := models.Options{BypassCache: true}

	first, err := svc.Extract(klarnaEmail, "UTC", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Extract(klarnaEmail, "UTC", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Fatal("bypass must recompute, not return the memoized result")
	}
	a, b := first.Items[0], second.Items[0]
	if a.ID == b.ID {
		t.Error("fresh runs should generate fresh ids")
	}
	a.ID, b.ID = "", ""
	if a != b {
		t.Errorf("field values differ across runs: %+v vs %+v", a, b)
	}
}

func TestExtractDistinctCacheKeys(t *testing.T) {
	svc := newTestService()

	us, _ := svc.Extract(klarnaEmail, "UTC", models.Options{DateLocale: models.LocaleUS})
	eu, _ := svc.Extract(klarnaEmail, "UTC", models.Options{DateLocale: models.LocaleEU})
	if us == eu {
		t.Error("different locales must not share a cache entry")
	}

	// Whitespace-different pastes are distinct entries on purpose: the
	// fingerprint covers the exact input text, not the normalized form.
	spaced, _ := svc.Extract(klarnaEmail+"\n", "UTC", models.Options{DateLocale: models.LocaleUS})
	if us == spaced {
		t.Error("whitespace-different input must not share a cache entry")
	}
}

func TestExtractInvalidTimezoneFallsBackToUTC(t *testing.T) {
	svc := newTestService()
	res, err := svc.Extract(klarnaEmail, "Not/AZone", models.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 1 {
		t.Errorf("got %d items, want 1", len(res.Items))
	}
}
