package sanitize

import (
	"regexp"
	"strings"
)

var (
	emailAddr = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	dollarAmt = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{1,2})?`)
	digitRun  = regexp.MustCompile(`\d{4,}`)
	nameRun   = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)
)

// redactStopwords are capitalized words common in payment reminders that
// the name match may hit ("Due Date", "Payment Reminder"). A run of
// capitalized words is left alone only when every word is on this list.
var redactStopwords = map[string]bool{
	"Due": true, "Date": true, "Payment": true, "Reminder": true,
	"Final": true, "Notice": true, "Installment": true, "Amount": true,
	"Late": true, "Fee": true, "Auto": true, "Pay": true, "Not": true,
	"Your": true, "This": true, "The": true, "Thank": true, "You": true,
	"Klarna": true, "Affirm": true, "Afterpay": true, "Sezzle": true,
	"Zip": true, "PayPal": true,
}

// Redact scrubs email addresses, dollar amounts, account-like digit runs,
// and likely proper names from s. Used on every snippet that can surface
// to the user.
func Redact(s string) string {
	s = emailAddr.ReplaceAllString(s, "[email]")
	s = dollarAmt.ReplaceAllString(s, "[amount]")
	s = digitRun.ReplaceAllString(s, "[account]")
	s = nameRun.ReplaceAllStringFunc(s, func(run string) string {
		for _, word := range strings.Fields(run) {
			if !redactStopwords[word] {
				return "[name]"
			}
		}
		return run
	})
	return s
}

// Snippet redacts block and truncates it to at most max runes. Redaction
// runs first so truncation can never split a match and leak a prefix.
func Snippet(block string, max int) string {
	redacted := Redact(block)
	runes := []rune(redacted)
	if len(runes) <= max {
		return redacted
	}
	return string(runes[:max])
}
