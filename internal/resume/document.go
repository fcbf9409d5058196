package resume

import (
	"regexp"
	"strings"
)

// Section is a contiguous run of lines. Header is the verbatim heading line, or
// empty for the preamble that precedes the first recognized heading.
type Section struct {
	Key    SectionKey `json:"key"`
	Header string     `json:"header"`
	Body   []string   `json:"body"`
}

// Segment splits doc into sections. Every line that is not a recognized heading
// is kept in order in the body of the section it follows.
func Segment(doc string) []Section {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")

	var sections []Section
	current := Section{Key: SectionNone}
	for _, line := range lines {
		if key := ClassifyHeading(line); key != SectionNone {
			if current.Header != "" || len(current.Body) > 0 {
				sections = append(sections, current)
			}
			current = Section{Key: key, Header: line}
			continue
		}
		current.Body = append(current.Body, line)
	}
	if current.Header != "" || len(current.Body) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// Join reassembles sections. Each renders as its header line (when present)
// followed by its trimmed body, and sections are separated by a blank line.
func Join(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		var b strings.Builder
		if s.Header != "" {
			b.WriteString(s.Header)
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(strings.Join(s.Body, "\n")))
		parts = append(parts, b.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// Find returns the index of the first section with the given key, or -1.
func Find(sections []Section, key SectionKey) int {
	for i, s := range sections {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// UpdateSection replaces the body of the first section matching key, or appends a
// new section under the canonical heading when none exists.
func UpdateSection(doc string, key SectionKey, content string) string {
	body := strings.Split(strings.TrimSpace(content), "\n")
	sections := Segment(doc)
	if i := Find(sections, key); i >= 0 {
		sections[i].Body = body
	} else {
		sections = append(sections, Section{Key: key, Header: key.Heading(), Body: body})
	}
	return Join(sections)
}

var (
	markdownHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownListRe    = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	bulletGlyphRe     = regexp.MustCompile(`^[•·●○∙\-–—]\s*(.+)$`)
	blankRunRe        = regexp.MustCompile(`\n{3,}`)
)

// plainHeadings are lines promoted to headings when a plain-text document is normalized.
var plainHeadings = map[string]struct{}{
	"基本信息": {}, "个人总结": {}, "自我评价": {}, "专业技能": {}, "核心技能": {},
	"工作经历": {}, "项目经验": {}, "教育背景": {},
	"Summary": {}, "Professional Summary": {}, "Skills": {}, "Technical Skills": {},
	"Experience": {}, "Projects": {}, "Education": {},
}

// Normalize canonicalizes line endings and trims the document. Text that already
// uses markdown headings or lists is returned otherwise untouched; plain text gets
// its known section names promoted to "## " headings and bullet glyphs rewritten
// as "- " list items.
func Normalize(text string) string {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if normalized == "" {
		return ""
	}
	if markdownHeadingRe.MatchString(normalized) || markdownListRe.MatchString(normalized) {
		return normalized
	}

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		if _, ok := plainHeadings[trimColon(trimmed)]; ok {
			lines[i] = "## " + trimmed
			continue
		}
		if m := bulletGlyphRe.FindStringSubmatch(trimmed); m != nil {
			lines[i] = "- " + m[1]
			continue
		}
		lines[i] = trimmed
	}
	return blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}

func trimColon(s string) string {
	if t, ok := strings.CutSuffix(s, ":"); ok {
		return t
	}
	if t, ok := strings.CutSuffix(s, "："); ok {
		return t
	}
	return s
}
