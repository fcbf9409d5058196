// Package copilot runs the resume assistant's chat turns, including the
// confirm-or-cancel dialogue around staged edits.
package copilot

import (
	"regexp"
	"strings"
	"unicode"
)

// Intent is how a reply to a pending proposal is read.
type Intent int

// Intents
const (
	IntentNone Intent = iota
	IntentConfirm
	IntentCancel
)

func (i Intent) String() string {
	switch i {
	case IntentConfirm:
		return "confirm"
	case IntentCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Chinese phrases are matched with whitespace removed. Latin words must stand
// alone, so "book it" is not an "ok".
var (
	cancelRe      = regexp.MustCompile(`(取消|不改|不用|不需要|不要|算了|否|不确认|不可以|不行|不同意)`)
	confirmRe     = regexp.MustCompile(`(确认|应用|同意|好的|可以|没问题)`)
	cancelWordRe  = regexp.MustCompile(`(?i)\b(cancel|no\s*need|never\s*mind|don'?t)\b`)
	confirmWordRe = regexp.MustCompile(`(?i)\b(ok|okay|confirm|apply|agree|yes|no\s*problem)\b`)
)

// DetectIntent classifies a reply to a staged edit. Cancel wins when both
// pattern sets match, so "不确认" and "don't apply" cancel.
func DetectIntent(message string) Intent {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, message)
	matches := func(phrases, words *regexp.Regexp) bool {
		return phrases.MatchString(compact) || words.MatchString(message) || words.MatchString(compact)
	}

	switch {
	case matches(cancelRe, cancelWordRe):
		return IntentCancel
	case matches(confirmRe, confirmWordRe):
		return IntentConfirm
	default:
		return IntentNone
	}
}
