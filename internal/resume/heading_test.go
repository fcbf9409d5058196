package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHeading(t *testing.T) {
	tests := []struct {
		name string
		line string
		want SectionKey
	}{
		{name: "markdown chinese heading", line: "## 核心技能", want: SectionSkills},
		{name: "bold english heading", line: "**Work Experience**", want: SectionExperience},
		{name: "trailing full-width colon", line: "教育背景：", want: SectionEducation},
		{name: "trailing ascii colon", line: "Skills:", want: SectionSkills},
		{name: "short tail after colon still heading", line: "Skills: Go", want: SectionSkills},
		{name: "prose after colon", line: "技能：熟练掌握 Go 与 Kubernetes 部署", want: SectionNone},
		{name: "list item", line: "- 项目经验丰富", want: SectionNone},
		{name: "bullet glyph list item", line: "• Education", want: SectionNone},
		{name: "too long", line: "This is a very long line that mentions experience somewhere in it", want: SectionNone},
		{name: "project experience beats experience", line: "### 项目经历", want: SectionProjects},
		{name: "fuzzy project", line: "Selected Projects", want: SectionProjects},
		{name: "fuzzy experience", line: "实习与工作经历", want: SectionExperience},
		{name: "fuzzy skill", line: "语言能力", want: SectionSkills},
		{name: "contact", line: "Contact", want: SectionBasicInfo},
		{name: "summary synonym", line: "自我评价", want: SectionSummary},
		{name: "plain prose", line: "负责后端服务开发", want: SectionNone},
		{name: "blank", line: "   ", want: SectionNone},
		{name: "only markup", line: "##", want: SectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHeading(tt.line))
		})
	}
}

func TestSectionKeyHelpers(t *testing.T) {
	assert.Equal(t, "## 核心技能", SectionSkills.Heading())
	assert.Equal(t, "项目经验", SectionProjects.Label())
	assert.Equal(t, SectionEducation, KeyForLabel("教育背景"))
	assert.Equal(t, SectionNone, KeyForLabel("整份简历"))

	k, ok := ParseSectionKey("basicInfo")
	assert.True(t, ok)
	assert.Equal(t, SectionBasicInfo, k)

	_, ok = ParseSectionKey("certifications")
	assert.False(t, ok)
	assert.Len(t, Keys(), 6)
}
