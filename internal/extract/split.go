package extract

import (
	"regexp"
	"strings"
)

// minBlockChars filters out fragments too short to be an email.
const minBlockChars = 20

// delimiterLine matches explicit separator lines between pasted emails.
var delimiterLine = regexp.MustCompile(`(?m)^\s*(?:-{3,}|_{3,})\s*$`)

// mail header prefixes that also act as block boundaries when a paste has
// no explicit separators.
var headerPrefixes = []string{"from:", "subject:"}

// auxiliary header prefixes that belong with the From:/Subject: lines
// around them rather than starting a new block.
var auxHeaderPrefixes = []string{"to:", "date:", "sent:", "cc:", "reply-to:"}

// splitBlocks partitions normalized text into candidate email blocks.
// Deterministic and side-effect-free. If no delimiter produces a
// non-trivial fragment, the whole input is one block.
func splitBlocks(text string) []string {
	var blocks []string
	for _, chunk := range delimiterLine.Split(text, -1) {
		blocks = append(blocks, splitOnHeaders(chunk)...)
	}

	kept := blocks[:0]
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if len([]rune(b)) >= minBlockChars {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return kept
}

// splitOnHeaders starts a new block at each From:/Subject: line, except
// when the running block is still nothing but header lines: a
// From:/Subject: pair at the top of one email must not be torn apart.
func splitOnHeaders(chunk string) []string {
	var blocks []string
	var current []string
	headerOnly := true

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
			headerOnly = true
		}
	}

	for _, line := range strings.Split(chunk, "\n") {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if isBoundaryHeader(trimmed) && !headerOnly {
			flush()
		}
		current = append(current, line)
		if trimmed != "" && !isAnyHeader(trimmed) {
			headerOnly = false
		}
	}
	flush()
	return blocks
}

func isBoundaryHeader(lower string) bool {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func isAnyHeader(lower string) bool {
	if isBoundaryHeader(lower) {
		return true
	}
	for _, p := range auxHeaderPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
