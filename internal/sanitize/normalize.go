// Package sanitize cleans raw pasted email text before extraction and
// scrubs PII from snippets that surface to the user on failure paths.
package sanitize

import (
	"regexp"
	"strings"
)

// delimPlaceholder temporarily stands in for literal block-delimiter runs
// ("---") so the SQL-comment pass ("--") cannot corrupt them. U+F8FF is
// private-use and cannot survive from the input itself: markingChars
// strips it before the substitute pass runs.
const delimPlaceholder = "\uF8FF"

var (
	// Non-printable control characters. Newlines are kept; tabs are
	// rewritten to spaces beforehand so words stay separated.
	controlChars = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

	// Zero-width and bidirectional-override characters used to visually
	// spoof amounts and dates, plus the private-use placeholder rune so
	// input text can never masquerade as a protected delimiter run.
	markingChars = regexp.MustCompile("[\u200B-\u200F\u202A-\u202E\u2060-\u2064\u2066-\u2069\uF8FF\uFEFF]")

	// Markup- and query-injection token sequences. Each is replaced with a
	// single space, leaving benign surrounding text intact.
	injectionTokens = []*regexp.Regexp{
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)vbscript\s*:`),
		regexp.MustCompile(`(?i)\bdata:[a-z]+/[a-z0-9.+-]+[;,]?`),
		regexp.MustCompile(`(?i)<!\[CDATA\[`),
		regexp.MustCompile(`\]\]>`),
		regexp.MustCompile(`(?i)\bunion\s+(?:all\s+)?select\b`),
		regexp.MustCompile(`(?i)\bdrop\s+table\b`),
		regexp.MustCompile(`(?i)\binsert\s+into\b`),
		regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	}

	delimRun   = regexp.MustCompile(`-{3,}`)
	sqlComment = regexp.MustCompile(`--`)

	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
)

// entityReplacer decodes the fixed allowlist of HTML entities. General
// entity decoding is deliberately absent so stripped sequences cannot be
// re-introduced through encodings. "&amp;" is decoded last so "&amp;lt;"
// yields the literal "&lt;", not "<".
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// Normalize makes raw pasted text safe for downstream regex extraction.
// It never fails; the worst case is returning the least-processed safe text.
func Normalize(text string) string {
	// Unify line endings.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", " ")

	// Strip control and marking characters.
	text = controlChars.ReplaceAllString(text, "")
	text = markingChars.ReplaceAllString(text, "")

	// Protect literal block-delimiter runs before neutralizing SQL-style
	// comments, then restore them.
	text = delimRun.ReplaceAllString(text, delimPlaceholder)
	for _, tok := range injectionTokens {
		text = tok.ReplaceAllString(text, " ")
	}
	text = sqlComment.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, delimPlaceholder, "---")

	// Decode the entity allowlist. Decoded angle brackets are tag syntax
	// and get stripped in the markup pass below, so nothing executable
	// can be smuggled through an entity.
	text = entityReplacer.Replace(text)
	text = strings.ReplaceAll(text, "&amp;", "&")

	// No DOM is available here, so take the textual route: drop script
	// and style bodies wholesale, then remove remaining tag syntax. Only
	// text content survives.
	text = scriptBlock.ReplaceAllString(text, " ")
	text = styleBlock.ReplaceAllString(text, " ")
	text = htmlTag.ReplaceAllString(text, " ")

	return text
}
