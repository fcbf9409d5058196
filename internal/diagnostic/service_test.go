package diagnostic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/llm/mocks"
	"github.com/jonathan/career-agent/internal/types"
)

const modelAnswer = "```json\n" + `{
  "summary": {"score": 78, "title": "较为匹配", "brief": "后端经验扎实，云原生经验不足"},
  "deep_diagnostic": {"experience_match": {"score": 80, "analysis": "匹配"}, "skill_gap": {"missing_skills": ["Kubernetes"], "analysis": "缺少容器经验"}, "highlights": ["支付系统"], "risks": []},
  "skills_matrix": {"matched": ["Go"], "missing": ["Kubernetes"], "bonus": ["Rust"]},
  "optimization_tips": [{"section": "experience", "original": "负责开发", "suggestion": "量化成果", "reason": "缺少数据"}],
  "learning_strategy": {"type": "冲刺型", "focus": ["K8s"], "timeline": "第1-2天：学习容器 第3天：模拟面试", "resources": []},
  "radar_data": [{"subject": "技术深度", "score": 80}],
}` + "\n```"

func TestDiagnose_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req llm.Request) (*llm.Response, error) {
			prompt := req.Messages[0].Content
			assert.Contains(t, prompt, "JD one"+JDSeparator+"JD two")
			assert.Contains(t, prompt, "备考天数：14 天")
			assert.True(t, req.JSONMode)
			assert.Equal(t, 0.3, req.Temperature)
			return &llm.Response{Content: modelAnswer}, nil
		})

	svc := NewService(client, nil)
	res, err := svc.Diagnose(context.Background(), types.DiagnosticRequest{
		Resume: "简历",
		JDs:    []string{"JD one", "  ", "JD two"},
	})
	require.NoError(t, err)

	assert.Equal(t, Summary{Score: 78, Title: "较为匹配", Brief: "后端经验扎实，云原生经验不足"}, res.Summary)
	assert.Equal(t, []string{"Kubernetes"}, res.DeepDiagnostic.SkillGap.MissingSkills)
	assert.Equal(t, []string{}, res.DeepDiagnostic.Risks)
	assert.Equal(t, "冲刺型", res.LearningStrategy.Type)
	assert.Equal(t, []Stage{{Stage: "第1-2天", Task: "学习容器"}, {Stage: "第3天", Task: "模拟面试"}}, res.LearningStrategy.Timeline.Stages)
	require.Len(t, res.RadarData, 1)
	assert.Equal(t, float64(100), res.RadarData[0].FullMark)
}

func TestDiagnose_UnrecoverableOutputFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(&llm.Response{Content: "无法诊断"}, nil)

	svc := NewService(client, nil)
	_, err := svc.Diagnose(context.Background(), types.DiagnosticRequest{Resume: "r", JDs: []string{"jd"}})

	var formatErr *llm.UnrecoverableFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "无法诊断", formatErr.Raw)
}

func TestDiagnose_UpstreamErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, &llm.UpstreamError{Provider: llm.ProviderDeepSeek, StatusCode: 500})

	svc := NewService(client, nil)
	_, err := svc.Diagnose(context.Background(), types.DiagnosticRequest{Resume: "r", JDs: []string{"jd"}})
	assert.True(t, llm.IsUpstream(err))
}

func TestDiagnose_NoJDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(mocks.NewMockClient(ctrl), nil)

	_, err := svc.Diagnose(context.Background(), types.DiagnosticRequest{Resume: "r", JDs: []string{" "}})
	var ve *types.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, strings.HasPrefix(ve.Field, "jds"))
}

func TestAssemble_InvalidSectionsFallBack(t *testing.T) {
	svc := NewService(nil, nil)
	res := svc.Assemble(map[string]any{
		"summary":           map[string]any{"score": "high"},
		"skills_matrix":     []any{"not", "an", "object"},
		"learning_strategy": map[string]any{"focus": []any{"算法"}},
	})

	assert.Equal(t, defaultSummary, res.Summary)
	assert.Equal(t, SkillsMatrix{Matched: []string{}, Missing: []string{}, Bonus: []string{}}, res.SkillsMatrix)
	assert.Equal(t, "未知", res.LearningStrategy.Type)
	assert.Equal(t, []string{"算法"}, res.LearningStrategy.Focus)
	assert.Equal(t, []Stage{}, res.LearningStrategy.Timeline.Stages)
	assert.Equal(t, []OptimizationTip{}, res.OptimizationTips)
}
