// Package review turns an interview transcript into a scored review report and
// coerces whatever the model returns into the report shape.
package review

import (
	"encoding/json"
	"math"
	"strings"
)

// Defaults substituted for absent or wrong-typed report fields.
const (
	DefaultDetailedFeedback = "暂无详细分析"
	DefaultSuggestions      = "暂无建议"
	DefaultQuestion         = "未知问题"
	DefaultUserAnswer       = "未回答"
	DefaultReferenceAnswer  = "暂无参考回答"

	// FallbackSuggestions is used by every fallback report.
	FallbackSuggestions = "请补充更多有效回答后再次生成复盘报告。"
	// EmptyHistoryMessage explains a report for a conversation with no turns.
	EmptyHistoryMessage = "对话为空，无法生成复盘报告。"
)

// Report is the structured interview review.
type Report struct {
	Score             float64            `json:"score"`
	Strengths         []string           `json:"strengths"`
	Weaknesses        []string           `json:"weaknesses"`
	DetailedFeedback  string             `json:"detailedFeedback"`
	Suggestions       string             `json:"suggestions"`
	QuestionsAnalysis []QuestionAnalysis `json:"questionsAnalysis"`
}

// QuestionAnalysis reviews a single question and answer.
type QuestionAnalysis struct {
	Question        string `json:"question"`
	UserAnswer      string `json:"userAnswer"`
	ReferenceAnswer string `json:"referenceAnswer"`
}

// FallbackReport returns a zero-score report carrying message as its feedback.
func FallbackReport(message string) Report {
	return Report{
		Score:             0,
		Strengths:         []string{},
		Weaknesses:        []string{},
		DetailedFeedback:  message,
		Suggestions:       FallbackSuggestions,
		QuestionsAnalysis: []QuestionAnalysis{},
	}
}

// Sanitize coerces an arbitrary decoded JSON value into a Report. It never
// fails: absent or wrong-typed fields take their defaults, a numeric score is
// clamped to [0, 100], and non-string list entries are dropped. Sanitizing an
// already sanitized Report returns it unchanged.
func Sanitize(parsed any) Report {
	switch v := parsed.(type) {
	case Report:
		return v.normalized()
	case *Report:
		if v != nil {
			return v.normalized()
		}
	case map[string]any:
		return fromMap(v)
	}
	return fromMap(map[string]any{})
}

func fromMap(m map[string]any) Report {
	r := Report{
		Score:            numberField(m["score"]),
		Strengths:        stringList(m["strengths"]),
		Weaknesses:       stringList(m["weaknesses"]),
		DetailedFeedback: firstString(m, "detailedFeedback", "feedback", "analysis"),
		Suggestions:      firstString(m, "suggestions"),
	}
	if items, ok := m["questionsAnalysis"].([]any); ok {
		r.QuestionsAnalysis = make([]QuestionAnalysis, 0, len(items))
		for _, item := range items {
			entry, _ := item.(map[string]any)
			r.QuestionsAnalysis = append(r.QuestionsAnalysis, QuestionAnalysis{
				Question:        firstString(entry, "question"),
				UserAnswer:      firstString(entry, "userAnswer"),
				ReferenceAnswer: firstString(entry, "referenceAnswer"),
			})
		}
	}
	return r.normalized()
}

// normalized applies defaults and bounds. It is idempotent.
func (r Report) normalized() Report {
	r.Score = clampScore(r.Score)
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.Weaknesses == nil {
		r.Weaknesses = []string{}
	}
	if strings.TrimSpace(r.DetailedFeedback) == "" {
		r.DetailedFeedback = DefaultDetailedFeedback
	}
	if strings.TrimSpace(r.Suggestions) == "" {
		r.Suggestions = DefaultSuggestions
	}
	qa := make([]QuestionAnalysis, len(r.QuestionsAnalysis))
	for i, q := range r.QuestionsAnalysis {
		qa[i] = QuestionAnalysis{
			Question:        orDefault(q.Question, DefaultQuestion),
			UserAnswer:      orDefault(q.UserAnswer, DefaultUserAnswer),
			ReferenceAnswer: orDefault(q.ReferenceAnswer, DefaultReferenceAnswer),
		}
	}
	r.QuestionsAnalysis = qa
	return r
}

func clampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return math.Min(s, 100)
}

// numberField accepts only numeric JSON values; strings such as "85" yield 0.
func numberField(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func stringList(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, items...)
	}
	return out
}

// firstString returns the first non-blank string value among keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
