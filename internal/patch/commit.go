package patch

import "github.com/jonathan/career-agent/internal/resume"

// Commit applies p to base and returns the new document. It is pure: on error
// the caller's document is untouched. Updates replace the first matching
// section's body or append a new canonical section; the result is normalized.
func Commit(p Proposal, base string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	var next string
	switch p.Kind {
	case KindUpdate:
		next = resume.UpdateSection(base, p.Section, p.Content)
	case KindRewrite:
		next = p.FullContent
	}
	return resume.Normalize(next), nil
}
