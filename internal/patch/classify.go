package patch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/resume"
)

// Legacy free-text markers wrapping a JSON update payload.
const (
	UpdateStartMarker = ":::UPDATE_START:::"
	UpdateEndMarker   = ":::UPDATE_END:::"
)

// Replies used when the model returned no text of its own.
const (
	NotUnderstoodReply = "抱歉，我没有理解您的指令，请重试。"
	UpdatedReply       = "已完成更新。"
)

var (
	codeBlockRe    = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")
	payloadFenceRe = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	payloadCloseRe = regexp.MustCompile("\\s*```$")
	markdownHeadRe = regexp.MustCompile(`^\s*#{1,6}`)
)

// Input is a model reply to classify.
type Input struct {
	Content   string
	ToolCalls []llm.ToolCall
}

// Outcome is the interpretation of a reply. Proposal is nil when the reply
// carries no edit; Reply is the text to show the user.
type Outcome struct {
	Proposal *Proposal
	Reply    string
	// Ambiguous is set when a block was staged as a full rewrite only because
	// no section could be identified; Reply then asks the user to decide.
	Ambiguous bool
}

// Classifier recognizes one encoding of an edit. It reports false when the
// reply does not use that encoding.
type Classifier func(in Input) (Outcome, bool)

// FirstMatch runs classifiers in order and returns the first match.
func FirstMatch(classifiers ...Classifier) Classifier {
	return func(in Input) (Outcome, bool) {
		for _, c := range classifiers {
			if out, ok := c(in); ok {
				return out, true
			}
		}
		return Outcome{}, false
	}
}

// DefaultChain is tool calls, then legacy markers, then a fenced code block.
var DefaultChain = FirstMatch(FromToolCalls, FromMarkers, FromCodeBlock)

// Interpret classifies a reply with DefaultChain. Tool calls that could not be
// used are reported in the reply so the user can edit manually.
func Interpret(in Input) Outcome {
	out, ok := DefaultChain(in)
	if !ok {
		out = Outcome{Reply: strings.TrimSpace(in.Content)}
	}
	for _, tc := range in.ToolCalls {
		if _, err := ParseToolCall(tc); err != nil && isResumeTool(tc.Name) {
			out.Reply = strings.TrimSpace(out.Reply + "\n\n" + fmt.Sprintf("(自动更新失败: %v，请尝试手动修改)", err))
		}
	}
	if out.Reply == "" {
		out.Reply = NotUnderstoodReply
		if out.Proposal != nil {
			out.Reply = UpdatedReply
		}
	}
	return out
}

// FromToolCalls stages the last usable resume tool call.
func FromToolCalls(in Input) (Outcome, bool) {
	var (
		staged Proposal
		found  bool
	)
	for _, tc := range in.ToolCalls {
		p, err := ParseToolCall(tc)
		if err != nil {
			continue
		}
		staged, found = p, true
	}
	if !found {
		return Outcome{}, false
	}
	return Outcome{Proposal: &staged, Reply: joinReply(in.Content, Preview(staged))}, true
}

// ParseToolCall decodes an update_resume or rewrite_resume invocation.
func ParseToolCall(tc llm.ToolCall) (Proposal, error) {
	switch tc.Name {
	case llm.ToolUpdateResume:
		var args struct {
			Section string `json:"section"`
			Content string `json:"content"`
		}
		if err := llm.RecoverInto(tc.Arguments, &args); err != nil {
			return Proposal{}, err
		}
		p := NewUpdate(resume.SectionKey(args.Section), args.Content)
		return p, p.Validate()
	case llm.ToolRewriteResume:
		var args struct {
			FullContent    string `json:"full_content"`
			// Some models echo the proposal field name instead.
			FullContentAlt string `json:"fullContent"`
		}
		if err := llm.RecoverInto(tc.Arguments, &args); err != nil {
			return Proposal{}, err
		}
		if args.FullContent == "" {
			args.FullContent = args.FullContentAlt
		}
		p := NewRewrite(args.FullContent)
		return p, p.Validate()
	default:
		return Proposal{}, fmt.Errorf("unknown tool %q", tc.Name)
	}
}

func isResumeTool(name string) bool {
	return name == llm.ToolUpdateResume || name == llm.ToolRewriteResume
}

// FromMarkers reads a JSON {section, content} payload between the legacy
// markers. It only applies to replies without tool calls.
func FromMarkers(in Input) (Outcome, bool) {
	if len(in.ToolCalls) > 0 {
		return Outcome{}, false
	}
	start := strings.Index(in.Content, UpdateStartMarker)
	end := strings.Index(in.Content, UpdateEndMarker)
	if start < 0 || end < 0 || end < start {
		return Outcome{}, false
	}

	payload := strings.TrimSpace(in.Content[start+len(UpdateStartMarker) : end])
	payload = payloadFenceRe.ReplaceAllString(payload, "")
	payload = payloadCloseRe.ReplaceAllString(payload, "")

	var args struct {
		Section string `json:"section"`
		Content string `json:"content"`
	}
	if err := llm.RecoverInto(payload, &args); err != nil {
		return Outcome{}, false
	}
	p := NewUpdate(resume.SectionKey(args.Section), args.Content)
	if p.Validate() != nil {
		return Outcome{}, false
	}

	prose := in.Content[:start] + in.Content[end+len(UpdateEndMarker):]
	return Outcome{Proposal: &p, Reply: joinReply(prose, Preview(p))}, true
}

// FromCodeBlock infers an edit from the first fenced code block. A leading
// heading names the section; otherwise a "修改预览（…）" label in the reply
// does. A block with several recognized sections is a full rewrite. Anything
// else is staged as an ambiguous rewrite that the user must confirm.
func FromCodeBlock(in Input) (Outcome, bool) {
	m := codeBlockRe.FindStringSubmatch(in.Content)
	if m == nil {
		return Outcome{}, false
	}
	block := strings.TrimSpace(m[1])
	if block == "" {
		return Outcome{}, false
	}

	first, rest, _ := strings.Cut(block, "\n")
	if markdownHeadRe.MatchString(first) {
		if looksLikeFullDocument(block) {
			p := NewRewrite(block)
			return Outcome{Proposal: &p, Reply: withConfirmQuestion(in.Content)}, true
		}
		key := resume.ClassifyHeading(first)
		if key == resume.SectionNone {
			return Outcome{}, false
		}
		p := NewUpdate(key, strings.TrimSpace(rest))
		if p.Validate() != nil {
			return Outcome{}, false
		}
		return Outcome{Proposal: &p, Reply: withConfirmQuestion(in.Content)}, true
	}

	if label, ok := previewLabel(in.Content); ok {
		if key := resume.KeyForLabel(label); key != resume.SectionNone {
			p := NewUpdate(key, block)
			return Outcome{Proposal: &p, Reply: withConfirmQuestion(in.Content)}, true
		}
		if label == RewriteLabel {
			p := NewRewrite(block)
			return Outcome{Proposal: &p, Reply: withConfirmQuestion(in.Content)}, true
		}
	}

	p := NewRewrite(block)
	if looksLikeFullDocument(block) {
		return Outcome{Proposal: &p, Reply: withConfirmQuestion(in.Content)}, true
	}
	return Outcome{
		Proposal:  &p,
		Reply:     joinReply(in.Content, AmbiguousRewriteQuestion),
		Ambiguous: true,
	}, true
}

// looksLikeFullDocument reports whether text contains at least two distinct
// recognized sections.
func looksLikeFullDocument(text string) bool {
	seen := map[resume.SectionKey]struct{}{}
	for _, s := range resume.Segment(text) {
		if s.Key != resume.SectionNone {
			seen[s.Key] = struct{}{}
		}
	}
	return len(seen) >= 2
}

func joinReply(prose, tail string) string {
	prose = strings.TrimSpace(prose)
	if prose == "" {
		return tail
	}
	return prose + "\n\n" + tail
}
