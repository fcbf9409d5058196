package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/llm/mocks"
	"github.com/jonathan/career-agent/internal/types"
)

func TestNext_OpensInterview(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req llm.Request) (*llm.Response, error) {
			require.Len(t, req.Messages, 2)
			assert.Contains(t, req.Messages[0].Content, "用人部门技术经理")
			assert.Contains(t, req.Messages[0].Content, "第 2 轮")
			assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
			assert.Contains(t, req.Messages[1].Content, "请作为用人部门技术经理开始面试")
			assert.Equal(t, 0.7, req.Temperature)
			return &llm.Response{Content: `{"question": "你好，请介绍一下你自己。", "internalNote": "开场"}`}, nil
		})

	svc := NewService(client, nil)
	q, err := svc.Next(context.Background(), types.InterviewRequest{Stage: 1, JD: "Go 工程师"})
	require.NoError(t, err)
	assert.Equal(t, &Question{Text: "你好，请介绍一下你自己。", InternalNote: "开场"}, q)
}

func TestNext_ForwardsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().Complete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req llm.Request) (*llm.Response, error) {
			require.Len(t, req.Messages, 3)
			assert.Contains(t, req.Messages[0].Content, "候选人: 我做过支付系统")
			assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
			assert.Equal(t, llm.RoleUser, req.Messages[2].Role)
			return &llm.Response{Content: "你在支付系统里负责哪一部分？"}, nil
		})

	svc := NewService(client, nil)
	q, err := svc.Next(context.Background(), types.InterviewRequest{
		Stage: 0,
		History: types.History{
			{Role: types.RoleAssistant, Content: "请介绍一个项目"},
			{Role: types.RoleUser, Content: "我做过支付系统"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "你在支付系统里负责哪一部分？", q.Text)
	assert.Equal(t, ParseFallbackNote, q.InternalNote)
}

func TestNext_StageOutOfRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewService(mocks.NewMockClient(ctrl), nil)

	_, err := svc.Next(context.Background(), types.InterviewRequest{Stage: 5})
	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestPersonas(t *testing.T) {
	require.Len(t, Personas, 3)
	p, err := PersonaForStage(2)
	require.NoError(t, err)
	assert.Equal(t, "Director", p.ID)
	assert.Contains(t, FallbackOpening(p), "部门总监")

	_, err = PersonaForStage(-1)
	assert.Error(t, err)

	hm, stage, ok := PersonaByID("HM")
	require.True(t, ok)
	assert.Equal(t, 1, stage)
	assert.Equal(t, "用人部门技术经理", hm.Role)

	_, _, ok = PersonaByID("CEO")
	assert.False(t, ok)
}
