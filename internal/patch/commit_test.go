package patch

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-agent/internal/resume"
)

const baseDoc = "## 个人总结\n五年经验\n\n## 核心技能\n- Java\n- Python"

func TestCommit_Update(t *testing.T) {
	got, err := Commit(NewUpdate(resume.SectionSkills, "- Go\n- Rust"), baseDoc)
	require.NoError(t, err)
	assert.Equal(t, "## 个人总结\n五年经验\n\n## 核心技能\n- Go\n- Rust", got)
}

func TestCommit_UpdateAppendsSection(t *testing.T) {
	got, err := Commit(NewUpdate(resume.SectionEducation, "北京大学"), baseDoc)
	require.NoError(t, err)
	assert.Equal(t, baseDoc+"\n\n## 教育背景\n北京大学", got)
	assert.Len(t, resume.Segment(got), len(resume.Segment(baseDoc))+1)
}

func TestCommit_RewriteNormalizes(t *testing.T) {
	got, err := Commit(NewRewrite("个人总结\r\n• 十年经验\n"), baseDoc)
	require.NoError(t, err)
	assert.Equal(t, "## 个人总结\n- 十年经验", got)
}

func TestCommit_InvalidProposal(t *testing.T) {
	tests := []struct {
		name string
		p    Proposal
		want error
	}{
		{name: "unknown section", p: NewUpdate("hobbies", "x"), want: ErrUnknownSection},
		{name: "empty update", p: NewUpdate(resume.SectionSkills, "  "), want: ErrEmptyContent},
		{name: "empty rewrite", p: NewRewrite(""), want: ErrEmptyContent},
		{name: "unknown kind", p: Proposal{Kind: "delete"}, want: ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Commit(tt.p, baseDoc)
			assert.True(t, errors.Is(err, tt.want))
			assert.Empty(t, got)
		})
	}
}

func TestPreview(t *testing.T) {
	p := Preview(NewUpdate(resume.SectionSkills, "- Go"))
	assert.Equal(t, "修改预览（核心技能）：\n\n```markdown\n## 核心技能\n- Go\n```\n\n"+ConfirmQuestion, p)

	p = Preview(NewRewrite("全文"))
	assert.True(t, strings.HasPrefix(p, "修改预览（整份简历）：\n\n```markdown\n全文\n```"))
}

func TestFromBlock(t *testing.T) {
	pending := NewUpdate(resume.SectionProjects, "旧内容")

	tests := []struct {
		name         string
		block        string
		pending      *Proposal
		allowRewrite bool
		want         Proposal
		ambiguous    bool
	}{
		{name: "heading names section", block: "核心技能：\n- Go", want: NewUpdate(resume.SectionSkills, "- Go")},
		{name: "pending section", block: "- 支付系统", pending: &pending, want: NewUpdate(resume.SectionProjects, "- 支付系统")},
		{name: "full document", block: "## 个人总结\nA\n## 核心技能\nB", want: NewRewrite("## 个人总结\nA\n## 核心技能\nB")},
		{name: "allowed rewrite", block: "随便写点", allowRewrite: true, want: NewRewrite("随便写点")},
		{name: "ambiguous", block: "随便写点", ambiguous: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromBlock(tt.block, tt.pending, tt.allowRewrite)
			if tt.ambiguous {
				var amb *AmbiguousPatchError
				require.True(t, errors.As(err, &amb))
				assert.Equal(t, AmbiguousRewriteQuestion, amb.Question())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromBlock_Empty(t *testing.T) {
	_, err := FromBlock("   ", nil, true)
	assert.ErrorIs(t, err, ErrEmptyContent)
}
