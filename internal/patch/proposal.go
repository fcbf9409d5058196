// Package patch turns model replies into staged document edits and applies them.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/career-agent/internal/resume"
)

// Kind discriminates the proposal variants.
type Kind string

// Proposal kinds
const (
	KindUpdate  Kind = "update"
	KindRewrite Kind = "rewrite"
)

// Proposal is a staged edit awaiting confirmation. An update replaces the
// body of one section; a rewrite replaces the whole document.
type Proposal struct {
	Kind        Kind              `json:"type"`
	Section     resume.SectionKey `json:"section,omitempty"`
	Content     string            `json:"content,omitempty"`
	FullContent string            `json:"fullContent,omitempty"`
}

// NewUpdate stages a single-section replacement.
func NewUpdate(section resume.SectionKey, content string) Proposal {
	return Proposal{Kind: KindUpdate, Section: section, Content: content}
}

// NewRewrite stages a whole-document replacement.
func NewRewrite(full string) Proposal {
	return Proposal{Kind: KindRewrite, FullContent: full}
}

// Errors returned for malformed proposals.
var (
	ErrUnknownSection = errors.New("unknown resume section")
	ErrEmptyContent   = errors.New("proposal content is empty")
	ErrUnknownKind    = errors.New("unknown proposal kind")
)

// Validate checks the proposal is complete for its kind.
func (p Proposal) Validate() error {
	switch p.Kind {
	case KindUpdate:
		if !p.Section.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownSection, p.Section)
		}
		if strings.TrimSpace(p.Content) == "" {
			return ErrEmptyContent
		}
	case KindRewrite:
		if strings.TrimSpace(p.FullContent) == "" {
			return ErrEmptyContent
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}
	return nil
}

// RewriteLabel names the whole document in previews.
const RewriteLabel = "整份简历"

// Label names the target for previews.
func (p Proposal) Label() string {
	if p.Kind == KindRewrite {
		return RewriteLabel
	}
	return p.Section.Label()
}
