package patch

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfirmQuestion ends every preview.
const ConfirmQuestion = "是否确认修改？回复“确认”应用，回复“取消”放弃。"

// AmbiguousRewriteQuestion asks whether an unlabelled block replaces the whole document.
const AmbiguousRewriteQuestion = "未能识别该内容对应的简历章节。是否将其作为整份简历覆盖？回复“确认”应用，回复“取消”放弃。"

var previewLabelRe = regexp.MustCompile(`修改预览（(.+?)）`)

// Preview renders the proposal as a fenced markdown block followed by the
// confirmation question.
func Preview(p Proposal) string {
	var body string
	if p.Kind == KindRewrite {
		body = p.FullContent
	} else {
		body = p.Section.Heading() + "\n" + p.Content
	}
	return fmt.Sprintf("修改预览（%s）：\n\n```markdown\n%s\n```\n\n%s", p.Label(), body, ConfirmQuestion)
}

// previewLabel returns the label of a "修改预览（…）" marker in text.
func previewLabel(text string) (string, bool) {
	m := previewLabelRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// withConfirmQuestion appends the confirmation question unless text already asks it.
func withConfirmQuestion(text string) string {
	if strings.Contains(text, "是否确认修改") {
		return text
	}
	return strings.TrimSpace(text) + "\n\n" + ConfirmQuestion
}
