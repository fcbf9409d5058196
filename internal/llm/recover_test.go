package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_Ladder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{
			name:     "plain JSON",
			input:    `{"score": 85}`,
			expected: map[string]any{"score": float64(85)},
		},
		{
			name:     "json code fence",
			input:    "```json\n{\"score\": 85, \"strengths\": [\"沟通清晰\"]}\n```",
			expected: map[string]any{"score": float64(85), "strengths": []any{"沟通清晰"}},
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: map[string]any{"key": "value"},
		},
		{
			name:     "fence with other language tag",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: map[string]any{"key": "value"},
		},
		{
			name:     "preamble text",
			input:    "好的，以下是复盘报告：\n{\"score\": 70} 希望对你有帮助",
			expected: map[string]any{"score": float64(70)},
		},
		{
			name:     "trailing comma",
			input:    `{"a": [1, 2,], "b": "x",}`,
			expected: map[string]any{"a": []any{float64(1), float64(2)}, "b": "x"},
		},
		{
			name:     "literal newline inside string",
			input:    "{\"detailedFeedback\": \"第一行\n第二行\"}",
			expected: map[string]any{"detailedFeedback": "第一行\n第二行"},
		},
		{
			name:     "pretty printed with broken string",
			input:    "{\n  \"summary\": \"第一行\n第二行\",\n}",
			expected: map[string]any{"summary": "第一行 第二行"},
		},
		{
			name:     "top level array",
			input:    `[1, 2]`,
			expected: []any{float64(1), float64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Recover(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecover_FenceInvariance(t *testing.T) {
	inner := `{"score": 85, "suggestions": "多举例"}`
	plain, err := Recover(inner)
	require.NoError(t, err)

	for _, fenced := range []string{"```json\n" + inner + "\n```", "```\n" + inner + "```", "  ```JSON\n" + inner + "\n```  "} {
		got, err := Recover(fenced)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestRecover_Unrecoverable(t *testing.T) {
	raw := "I'm sorry, I can't help with that."

	_, err := Recover(raw)
	require.Error(t, err)

	var formatErr *UnrecoverableFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, raw, formatErr.Raw)

	// The surfaced cause is the error from parsing the raw text.
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestRecoverObject_RejectsNonObject(t *testing.T) {
	_, err := RecoverObject(`"just a string"`)
	var formatErr *UnrecoverableFormatError
	assert.True(t, errors.As(err, &formatErr))

	obj, err := RecoverObject("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, float64(1), obj["a"])
}

func TestRecoverInto(t *testing.T) {
	var out struct {
		Section string `json:"section"`
		Content string `json:"content"`
	}
	err := RecoverInto("参数如下 {\"section\": \"skills\", \"content\": \"- Go\n- Rust\"}", &out)
	require.NoError(t, err)
	assert.Equal(t, "skills", out.Section)
	assert.Equal(t, "- Go\n- Rust", out.Content)
}

func TestRecoverInto_TypeMismatchIsNotFormatError(t *testing.T) {
	var out struct {
		Score int `json:"score"`
	}
	err := RecoverInto(`{"score": "high"}`, &out)
	require.Error(t, err)

	var formatErr *UnrecoverableFormatError
	assert.False(t, errors.As(err, &formatErr))
}

func TestUnrecoverableFormatError_Excerpt(t *testing.T) {
	err := &UnrecoverableFormatError{Raw: "复盘报告生成中出现问题"}
	assert.Equal(t, "复盘报告", err.Excerpt(4))
	assert.Equal(t, err.Raw, err.Excerpt(0))
}
