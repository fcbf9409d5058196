package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// maxHeadingRunes is the longest line still considered a heading.
	maxHeadingRunes = 40
	// maxRunesAfterColon is the longest tail after a colon that keeps the line a heading.
	maxRunesAfterColon = 5
)

var (
	listItemRe      = regexp.MustCompile(`^[-*+•·]\s+`)
	headingMarkupRe = regexp.MustCompile(`^#{1,6}\s*`)
	trailingColonRe = regexp.MustCompile(`[:：]\s*$`)
)

// headingSynonyms maps exact lowercased heading text to a section.
var headingSynonyms = map[string]SectionKey{
	"summary":              SectionSummary,
	"professional summary": SectionSummary,
	"个人总结":                 SectionSummary,
	"自我评价":                 SectionSummary,
	"总结":                   SectionSummary,

	"experience":      SectionExperience,
	"work experience": SectionExperience,
	"work history":    SectionExperience,
	"工作经历":            SectionExperience,
	"工作履历":            SectionExperience,
	"职业经历":            SectionExperience,
	"实习经历":            SectionExperience,

	"projects":           SectionProjects,
	"project experience": SectionProjects,
	"项目经验":               SectionProjects,
	"项目经历":               SectionProjects,

	"skills":           SectionSkills,
	"technical skills": SectionSkills,
	"core skills":      SectionSkills,
	"核心技能":             SectionSkills,
	"专业技能":             SectionSkills,
	"专业能力":             SectionSkills,
	"技能清单":             SectionSkills,
	"技术栈":              SectionSkills,

	"education": SectionEducation,
	"教育背景":      SectionEducation,
	"教育经历":      SectionEducation,
	"学历信息":      SectionEducation,

	"basic info":        SectionBasicInfo,
	"basic information": SectionBasicInfo,
	"contact":           SectionBasicInfo,
	"基本信息":              SectionBasicInfo,
	"联系方式":              SectionBasicInfo,
}

// fuzzyRule matches a heading by substring when no exact synonym applies.
type fuzzyRule struct {
	key     SectionKey
	any     []string
	exclude []string
}

// Evaluated in order. "项目经历" contains both 经历 and 项目 and must land on projects,
// which the experience exclusion guarantees.
var fuzzyRules = []fuzzyRule{
	{key: SectionSummary, any: []string{"summary", "总结"}},
	{key: SectionExperience, any: []string{"experience", "经历", "履历"}, exclude: []string{"项目"}},
	{key: SectionProjects, any: []string{"project", "项目"}},
	{key: SectionSkills, any: []string{"skill", "技能", "能力"}},
	{key: SectionEducation, any: []string{"education", "教育", "学历"}},
	{key: SectionBasicInfo, any: []string{"basic", "info", "基本信息"}},
}

func (r fuzzyRule) matches(s string) bool {
	for _, ex := range r.exclude {
		if strings.Contains(s, ex) {
			return false
		}
	}
	for _, sub := range r.any {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ClassifyHeading decides whether line is a section heading and, if so, which one.
// It returns SectionNone for list items, prose with a colon followed by content,
// long lines and anything that matches no synonym.
func ClassifyHeading(line string) SectionKey {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || listItemRe.MatchString(trimmed) {
		return SectionNone
	}

	clean := headingMarkupRe.ReplaceAllString(trimmed, "")
	clean = strings.TrimPrefix(clean, "**")
	clean = strings.TrimSuffix(clean, "**")
	clean = strings.TrimSpace(clean)

	if idx := strings.IndexAny(clean, ":："); idx >= 0 {
		_, width := utf8.DecodeRuneInString(clean[idx:])
		after := strings.TrimSpace(clean[idx+width:])
		if utf8.RuneCountInString(after) > maxRunesAfterColon {
			return SectionNone
		}
		clean = strings.TrimSpace(trailingColonRe.ReplaceAllString(clean, ""))
	}

	if utf8.RuneCountInString(clean) > maxHeadingRunes {
		return SectionNone
	}

	lower := strings.ToLower(clean)
	if lower == "" {
		return SectionNone
	}
	if key, ok := headingSynonyms[lower]; ok {
		return key
	}
	for _, rule := range fuzzyRules {
		if rule.matches(lower) {
			return rule.key
		}
	}
	return SectionNone
}
