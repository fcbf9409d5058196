package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-agent/internal/patch"
	"github.com/jonathan/career-agent/internal/resume"
	"github.com/jonathan/career-agent/internal/review"
	"github.com/jonathan/career-agent/internal/types"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	s := New(epoch)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, types.History{{Role: types.RoleAssistant, Content: CopilotGreeting}}, s.CopilotMessages)
	assert.Equal(t, "TA", s.InterviewPersona)
	assert.Nil(t, s.Pending)
	assert.Equal(t, epoch, s.CreatedAt)
	assert.NotEqual(t, s.ID, New(epoch).ID)
}

func TestDocument_PrefersRefined(t *testing.T) {
	s := New(epoch)
	s.SetResume("original", []string{"jd"})
	assert.Equal(t, "original", s.Document())
	assert.Equal(t, []string{"jd"}, s.JobDescriptions)

	s.RefinedContent = "refined"
	assert.Equal(t, "refined", s.Document())

	s.SetResume("again", nil)
	assert.Equal(t, []string{"jd"}, s.JobDescriptions)
}

func TestApplyDocument_KeepsRepresentationsEqual(t *testing.T) {
	s := New(epoch)
	s.SetResume("old", nil)
	s.SetPending(patch.NewRewrite("new"))

	s.ApplyDocument("new")

	assert.Equal(t, "new", s.ResumeText)
	assert.Equal(t, s.ResumeText, s.RefinedContent)
	assert.Nil(t, s.Pending)
}

func TestSetPending_Replaces(t *testing.T) {
	s := New(epoch)
	s.SetPending(patch.NewUpdate(resume.SectionSkills, "Go"))
	s.SetPending(patch.NewRewrite("all"))

	require.NotNil(t, s.Pending)
	assert.Equal(t, patch.KindRewrite, s.Pending.Kind)

	s.ClearPending()
	assert.Nil(t, s.Pending)
}

func TestInterviewRecords(t *testing.T) {
	s := New(epoch)
	chat := types.History{{Role: types.RoleAssistant, Content: "自我介绍"}, {Role: types.RoleUser, Content: "你好"}}

	first := s.AddInterviewRecord("TA", review.FallbackReport("a"), chat, epoch)
	second := s.AddInterviewRecord("HM", review.FallbackReport("b"), chat, epoch.Add(time.Hour))

	require.Len(t, s.InterviewHistory, 2)
	assert.Equal(t, second.ID, s.InterviewHistory[0].ID)
	assert.Equal(t, chat, s.InterviewHistory[1].Transcript)

	chat[0].Content = "changed"
	assert.Equal(t, "自我介绍", s.InterviewHistory[1].Transcript[0].Content)

	assert.True(t, s.DeleteInterviewRecord(first.ID))
	assert.False(t, s.DeleteInterviewRecord(first.ID))
	assert.Len(t, s.InterviewHistory, 1)
}

func TestResets(t *testing.T) {
	s := New(epoch)
	s.RefinedContent = "refined"
	s.Strategy.Strengths = []string{"Go"}
	s.InterviewChat = types.History{{Role: types.RoleUser, Content: "hi"}}
	s.AppendCopilot(types.RoleUser, "帮我改技能")
	s.SetPending(patch.NewRewrite("x"))
	s.AddInterviewRecord("TA", review.FallbackReport("a"), nil, epoch)

	s.ResetRefinement()
	s.ResetInterview()
	s.ResetCopilot()
	s.ResetDiagnostic()

	assert.Empty(t, s.RefinedContent)
	assert.Empty(t, s.Strategy.Strengths)
	assert.Empty(t, s.InterviewChat)
	assert.Len(t, s.InterviewHistory, 1)
	assert.Len(t, s.CopilotMessages, 1)
	assert.Nil(t, s.Pending)
	assert.Nil(t, s.Diagnostic)
}
