package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/resume"
)

func TestInterpret_ToolCallUpdate(t *testing.T) {
	out := Interpret(Input{
		Content: "好的，已为你润色技能部分。",
		ToolCalls: []llm.ToolCall{{
			Name:      llm.ToolUpdateResume,
			Arguments: `{"section": "skills", "content": "- Go\n- Rust"}`,
		}},
	})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, NewUpdate(resume.SectionSkills, "- Go\n- Rust"), *out.Proposal)
	assert.False(t, out.Ambiguous)
	assert.True(t, strings.HasPrefix(out.Reply, "好的，已为你润色技能部分。\n\n修改预览（核心技能）："))
	assert.Contains(t, out.Reply, "```markdown\n## 核心技能\n- Go\n- Rust\n```")
	assert.True(t, strings.HasSuffix(out.Reply, ConfirmQuestion))
}

func TestInterpret_ToolCallRewriteLastWins(t *testing.T) {
	out := Interpret(Input{
		ToolCalls: []llm.ToolCall{
			{Name: llm.ToolUpdateResume, Arguments: `{"section": "skills", "content": "- Go"}`},
			{Name: llm.ToolRewriteResume, Arguments: `{"full_content": "## 个人总结\n全新简历"}`},
		},
	})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, KindRewrite, out.Proposal.Kind)
	assert.True(t, strings.HasPrefix(out.Reply, "修改预览（整份简历）："))
}

func TestInterpret_MalformedToolCallReported(t *testing.T) {
	out := Interpret(Input{
		Content: "我来修改。",
		ToolCalls: []llm.ToolCall{
			{Name: llm.ToolUpdateResume, Arguments: `{"section": "hobbies", "content": "篮球"}`},
		},
	})

	assert.Nil(t, out.Proposal)
	assert.True(t, strings.HasPrefix(out.Reply, "我来修改。\n\n(自动更新失败:"))
	assert.Contains(t, out.Reply, "请尝试手动修改")
}

func TestInterpret_LegacyMarkers(t *testing.T) {
	content := "这是修改建议：\n" + UpdateStartMarker + "\n```json\n{\"section\": \"summary\", \"content\": \"五年 Go 经验\"}\n```\n" + UpdateEndMarker + "\n请确认。"

	out := Interpret(Input{Content: content})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, NewUpdate(resume.SectionSummary, "五年 Go 经验"), *out.Proposal)
	assert.NotContains(t, out.Reply, UpdateStartMarker)
	assert.True(t, strings.HasPrefix(out.Reply, "这是修改建议：\n\n请确认。\n\n修改预览（个人总结）："))
}

func TestFromMarkers_IgnoredWhenToolCallsPresent(t *testing.T) {
	content := UpdateStartMarker + `{"section": "summary", "content": "x"}` + UpdateEndMarker
	_, ok := FromMarkers(Input{Content: content, ToolCalls: []llm.ToolCall{{Name: "other"}}})
	assert.False(t, ok)

	_, ok = FromMarkers(Input{Content: UpdateEndMarker + "{}" + UpdateStartMarker})
	assert.False(t, ok)
}

func TestInterpret_CodeBlockWithHeading(t *testing.T) {
	content := "建议如下：\n```markdown\n## 技能清单\n- Go\n- Kubernetes\n```"

	out := Interpret(Input{Content: content})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, NewUpdate(resume.SectionSkills, "- Go\n- Kubernetes"), *out.Proposal)
	assert.Equal(t, content+"\n\n"+ConfirmQuestion, out.Reply)
}

func TestInterpret_CodeBlockUnknownHeadingIsNone(t *testing.T) {
	content := "```\n## 兴趣爱好\n篮球\n```"
	out := Interpret(Input{Content: content})

	assert.Nil(t, out.Proposal)
	assert.Equal(t, content, out.Reply)
}

func TestInterpret_CodeBlockPreviewLabel(t *testing.T) {
	content := "修改预览（教育背景）：\n\n```\n北京大学 计算机 本科\n```\n\n是否确认修改？"
	out := Interpret(Input{Content: content})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, NewUpdate(resume.SectionEducation, "北京大学 计算机 本科"), *out.Proposal)
	assert.Equal(t, content, out.Reply)
}

func TestInterpret_CodeBlockFullDocument(t *testing.T) {
	content := "```markdown\n# 张三\n## 个人总结\n五年经验\n## 工作经历\n- 某公司\n```"
	out := Interpret(Input{Content: content})

	require.NotNil(t, out.Proposal)
	assert.Equal(t, KindRewrite, out.Proposal.Kind)
	assert.False(t, out.Ambiguous)
}

func TestInterpret_CodeBlockAmbiguous(t *testing.T) {
	content := "可以这样写：\n```\n主导支付系统重构\n```"
	out := Interpret(Input{Content: content})

	require.NotNil(t, out.Proposal)
	assert.True(t, out.Ambiguous)
	assert.Equal(t, NewRewrite("主导支付系统重构"), *out.Proposal)
	assert.True(t, strings.HasSuffix(out.Reply, AmbiguousRewriteQuestion))
}

func TestInterpret_PlainText(t *testing.T) {
	out := Interpret(Input{Content: "  面试时可以多讲讲项目细节。 "})
	assert.Nil(t, out.Proposal)
	assert.Equal(t, "面试时可以多讲讲项目细节。", out.Reply)

	out = Interpret(Input{})
	assert.Equal(t, NotUnderstoodReply, out.Reply)
}

func TestFirstMatch_Order(t *testing.T) {
	var calls []string
	mk := func(name string, ok bool) Classifier {
		return func(Input) (Outcome, bool) {
			calls = append(calls, name)
			return Outcome{Reply: name}, ok
		}
	}

	out, ok := FirstMatch(mk("a", false), mk("b", true), mk("c", true))(Input{})
	assert.True(t, ok)
	assert.Equal(t, "b", out.Reply)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestParseToolCall_RewriteAcceptsCamelCaseArgument(t *testing.T) {
	p, err := ParseToolCall(llm.ToolCall{Name: llm.ToolRewriteResume, Arguments: `{"fullContent": "## 核心技能\n- Go"}`})
	require.NoError(t, err)
	assert.Equal(t, NewRewrite("## 核心技能\n- Go"), p)
}

func TestParseToolCall_RewriteMissingContent(t *testing.T) {
	_, err := ParseToolCall(llm.ToolCall{Name: llm.ToolRewriteResume, Arguments: `{}`})
	assert.ErrorIs(t, err, ErrEmptyContent)
}
