package patch

import (
	"strings"

	"github.com/jonathan/career-agent/internal/resume"
)

// AmbiguousPatchError is returned when a block names no section and there is
// no pending update to attach it to. It is a prompt for the user, not a
// failure: retry with allowRewrite to replace the whole document.
type AmbiguousPatchError struct {
	Block string
}

func (e *AmbiguousPatchError) Error() string {
	return "cannot identify the resume section for this block"
}

// Question is the yes/no prompt to show the user.
func (e *AmbiguousPatchError) Question() string {
	return AmbiguousRewriteQuestion
}

// FromBlock builds a proposal from a code block the user chose to apply. The
// first line names the section when it is a recognized heading; otherwise the
// block targets the pending update's section, and failing that the whole
// document if allowRewrite is set or the block is clearly a full resume.
func FromBlock(block string, pending *Proposal, allowRewrite bool) (Proposal, error) {
	block = strings.TrimSpace(block)
	if block == "" {
		return Proposal{}, ErrEmptyContent
	}

	first, rest, _ := strings.Cut(block, "\n")
	if key := resume.ClassifyHeading(first); key != resume.SectionNone && !looksLikeFullDocument(block) {
		p := NewUpdate(key, strings.TrimSpace(rest))
		return p, p.Validate()
	}
	if pending != nil && pending.Kind == KindUpdate && !looksLikeFullDocument(block) {
		return NewUpdate(pending.Section, block), nil
	}
	if allowRewrite || looksLikeFullDocument(block) {
		return NewRewrite(block), nil
	}
	return Proposal{}, &AmbiguousPatchError{Block: block}
}
