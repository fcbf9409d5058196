package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_AllDiagnosticSectionsEmbedded(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)

	for _, section := range DiagnosticSections {
		assert.Contains(t, names, "diagnostic/"+section)
	}
}

func TestValidate_Summary(t *testing.T) {
	valid := map[string]any{"score": float64(72), "title": "较为匹配", "brief": "后端经验扎实"}
	assert.NoError(t, Validate("diagnostic/summary", valid))

	err := Validate("diagnostic/summary", map[string]any{"score": "high", "title": "x"})
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "diagnostic/summary", validationErr.Schema)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "diagnostic/summary validation failed")
}

func TestValidate_LearningStrategyTimelineShapes(t *testing.T) {
	shapes := []any{
		[]any{map[string]any{"stage": "第1-3天", "task": "复习算法"}},
		"第1天：复习 第2天：刷题",
		map[string]any{"plan": "每天两小时"},
	}
	for _, timeline := range shapes {
		doc := map[string]any{"type": "冲刺型", "timeline": timeline}
		assert.NoError(t, Validate("diagnostic/learning_strategy", doc))
	}

	err := Validate("diagnostic/learning_strategy", map[string]any{"timeline": float64(3)})
	assert.Error(t, err)
}

func TestValidate_RadarDataRequiresSubject(t *testing.T) {
	doc := []any{map[string]any{"score": float64(80)}}
	assert.Error(t, Validate("diagnostic/radar_data", doc))

	doc = []any{map[string]any{"subject": "技术深度", "score": float64(80), "fullMark": float64(100)}}
	assert.NoError(t, Validate("diagnostic/radar_data", doc))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("diagnostic/nope", map[string]any{})
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString(t *testing.T) {
	schema := `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

	assert.NoError(t, ValidateJSONString(schema, `{"name":"张三"}`))

	err := ValidateJSONString(schema, `{"age": 3}`)
	require.Error(t, err)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
}

func TestValidateJSONString_InvalidSchema(t *testing.T) {
	err := ValidateJSONString(`{not json`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}
