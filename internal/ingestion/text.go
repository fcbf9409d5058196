package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
	// Page furniture left behind by PDF text layers: "第 2 页", "- 2 -", "Page 2 of 3", "2/3".
	pageMarkerRe = regexp.MustCompile(`(?i)^(第\s*\d+\s*页(\s*/?\s*共\s*\d+\s*页)?|-\s*\d+\s*-|page\s+\d+(\s+of\s+\d+)?|\d+\s*/\s*\d+)$`)
	bulletGlyphs = []string{"•", "·", "●", "○", "▪", "■", "◆", "◇", "►", "➢", "✓"}
)

// invisibleReplacer drops zero-width characters and folds exotic spaces into
// ASCII spaces.
var invisibleReplacer = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u00a0", " ",
	"\u3000", " ",
	"\u2002", " ",
	"\u2003", " ",
)

// CleanText normalizes extracted resume or job description text. Line
// structure is kept; bullet glyphs become "- " list items, runs of spaces
// collapse, PDF page markers are dropped and at most one blank line separates
// paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = invisibleReplacer.Replace(content)

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if cleaned, keep := cleanLine(line); keep {
			out = append(out, cleaned)
		}
	}
	return strings.TrimSpace(blankRunRe.ReplaceAllString(strings.Join(out, "\n"), "\n\n"))
}

// cleanLine returns the cleaned line and false when it should be dropped.
func cleanLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", true
	}
	if pageMarkerRe.MatchString(trimmed) {
		return "", false
	}
	// Markdown headings and list items pass through with their markup intact.
	if strings.HasPrefix(trimmed, "#") {
		return trimmed, true
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + trimmed, true
	}
	if rest, ok := trimBulletGlyph(trimmed); ok {
		return "- " + spaceRunRe.ReplaceAllString(rest, " "), true
	}

	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	return strings.Repeat(" ", indent) + spaceRunRe.ReplaceAllString(trimmed, " "), true
}

// trimBulletGlyph strips a leading bullet glyph and reports whether one was found.
func trimBulletGlyph(s string) (string, bool) {
	for _, g := range bulletGlyphs {
		if rest, ok := strings.CutPrefix(s, g); ok {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return "", false
			}
			return rest, true
		}
	}
	return "", false
}
