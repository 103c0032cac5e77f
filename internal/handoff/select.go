// Package handoff builds handoff documents that carry a session's context
// into a fresh session, and tracks which of them were picked up.
package handoff

import (
	"strings"
	"unicode/utf8"

	"github.com/dotcommander/dothook/internal/transcript"
)

// Budget bounds the conversation sent to the summariser. A limit <= 0 is
// treated as unlimited.
type Budget struct {
	MaxMessages int
	MaxChars    int
	KeepTail    int
}

// DefaultBudget matches the defaults in the handoff settings.
var DefaultBudget = Budget{MaxMessages: 30, MaxChars: 12000, KeepTail: 4} //nolint:gochecknoglobals // immutable default

var decisionMarkers = []string{ //nolint:gochecknoglobals // read-only lookup table
	"decided", "decision", "we'll use", "let's go with", "going with",
	"agreed", "chose", "instead of", "switch to", "must", "don't", "do not",
}

// IsDecision reports whether content reads like a decision or constraint.
func IsDecision(content string) bool {
	lower := strings.ToLower(content)
	for _, m := range decisionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Select trims msgs to fit b while keeping the messages most useful to a
// summary. The first message and the last b.KeepTail messages are protected,
// as are decision-bearing messages. The last message counts as tail even when
// b.KeepTail is zero. Unprotected messages go first (oldest
// first), then decisions, then the tail except the very last message.
// Relative order is preserved and Index values are left untouched.
func Select(msgs []transcript.ConversationMessage, b Budget) []transcript.ConversationMessage {
	n := len(msgs)
	if n == 0 {
		return nil
	}

	keep := make([]bool, n)
	count, chars := n, 0
	for i, m := range msgs {
		keep[i] = true
		chars += utf8.RuneCountInString(m.Content)
	}
	within := func() bool {
		return (b.MaxMessages <= 0 || count <= b.MaxMessages) &&
			(b.MaxChars <= 0 || chars <= b.MaxChars)
	}
	drop := func(i int) {
		keep[i] = false
		count--
		chars -= utf8.RuneCountInString(msgs[i].Content)
	}

	if !within() {
		tailStart := max(n-max(b.KeepTail, 1), 1)
		decision := make([]bool, n)
		for i, m := range msgs {
			decision[i] = IsDecision(m.Content)
		}

		for i := 1; i < tailStart && !within(); i++ {
			if !decision[i] {
				drop(i)
			}
		}
		for i := 1; i < tailStart && !within(); i++ {
			if keep[i] {
				drop(i)
			}
		}
		for i := tailStart; i < n-1 && !within(); i++ {
			drop(i)
		}
	}

	out := make([]transcript.ConversationMessage, 0, count)
	for i, m := range msgs {
		if keep[i] {
			out = append(out, m)
		}
	}
	return out
}
