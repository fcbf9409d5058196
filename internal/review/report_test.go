package review

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_FullReport(t *testing.T) {
	var parsed any
	require.NoError(t, json.Unmarshal([]byte(`{
		"score": 85,
		"strengths": ["沟通清晰", 3, "结构化表达"],
		"weaknesses": "not a list",
		"detailedFeedback": "整体表现良好",
		"suggestions": "多举量化案例",
		"questionsAnalysis": [
			{"question": "介绍一个项目", "userAnswer": "支付系统", "referenceAnswer": "STAR"},
			{"question": ""},
			"garbage"
		]
	}`), &parsed))

	got := Sanitize(parsed)

	assert.Equal(t, float64(85), got.Score)
	assert.Equal(t, []string{"沟通清晰", "结构化表达"}, got.Strengths)
	assert.Equal(t, []string{}, got.Weaknesses)
	assert.Equal(t, "整体表现良好", got.DetailedFeedback)
	assert.Equal(t, "多举量化案例", got.Suggestions)
	require.Len(t, got.QuestionsAnalysis, 3)
	assert.Equal(t, QuestionAnalysis{Question: "介绍一个项目", UserAnswer: "支付系统", ReferenceAnswer: "STAR"}, got.QuestionsAnalysis[0])
	assert.Equal(t, QuestionAnalysis{Question: DefaultQuestion, UserAnswer: DefaultUserAnswer, ReferenceAnswer: DefaultReferenceAnswer}, got.QuestionsAnalysis[1])
	assert.Equal(t, got.QuestionsAnalysis[1], got.QuestionsAnalysis[2])
}

func TestSanitize_Defaults(t *testing.T) {
	for _, input := range []any{nil, "text", []any{1, 2}, map[string]any{}} {
		got := Sanitize(input)
		assert.Equal(t, float64(0), got.Score)
		assert.Equal(t, []string{}, got.Strengths)
		assert.Equal(t, []string{}, got.Weaknesses)
		assert.Equal(t, DefaultDetailedFeedback, got.DetailedFeedback)
		assert.Equal(t, DefaultSuggestions, got.Suggestions)
		assert.Equal(t, []QuestionAnalysis{}, got.QuestionsAnalysis)
	}
}

func TestSanitize_Score(t *testing.T) {
	tests := []struct {
		name  string
		score any
		want  float64
	}{
		{name: "in range", score: float64(72.5), want: 72.5},
		{name: "above range", score: float64(130), want: 100},
		{name: "negative", score: float64(-4), want: 0},
		{name: "numeric string rejected", score: "85", want: 0},
		{name: "json number", score: json.Number("64"), want: 64},
		{name: "int", score: 90, want: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(map[string]any{"score": tt.score}).Score)
		})
	}
}

func TestSanitize_FeedbackAliases(t *testing.T) {
	assert.Equal(t, "来自 feedback", Sanitize(map[string]any{"feedback": "来自 feedback"}).DetailedFeedback)
	assert.Equal(t, "来自 analysis", Sanitize(map[string]any{"detailedFeedback": 12, "analysis": "来自 analysis"}).DetailedFeedback)
	assert.Equal(t, DefaultSuggestions, Sanitize(map[string]any{"suggestions": []any{"a"}}).Suggestions)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []any{
		map[string]any{"score": float64(150), "strengths": []any{"a", nil}},
		map[string]any{"questionsAnalysis": []any{map[string]any{"question": "Q"}}},
		nil,
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once))
		assert.Equal(t, once, Sanitize(&once))

		// Round-tripping through JSON does not change the result either.
		data, err := json.Marshal(once)
		require.NoError(t, err)
		var decoded any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, once, Sanitize(decoded))
	}
}

func TestFallbackReport(t *testing.T) {
	r := FallbackReport(EmptyHistoryMessage)
	assert.Equal(t, float64(0), r.Score)
	assert.Equal(t, EmptyHistoryMessage, r.DetailedFeedback)
	assert.Equal(t, FallbackSuggestions, r.Suggestions)
	assert.Empty(t, r.Strengths)
	assert.NotNil(t, r.QuestionsAnalysis)
}
