// Package resume splits a resume document into canonical sections and reassembles it.
package resume

// SectionKey identifies one of the six canonical resume sections.
type SectionKey string

const (
	// SectionNone marks a line or block that does not belong to a recognized section.
	SectionNone       SectionKey = ""
	SectionBasicInfo  SectionKey = "basicInfo"
	SectionSummary    SectionKey = "summary"
	SectionExperience SectionKey = "experience"
	SectionSkills     SectionKey = "skills"
	SectionEducation  SectionKey = "education"
	SectionProjects   SectionKey = "projects"
)

// AllSections lists the canonical keys in display order.
var AllSections = []SectionKey{
	SectionBasicInfo,
	SectionSummary,
	SectionExperience,
	SectionSkills,
	SectionEducation,
	SectionProjects,
}

var sectionLabels = map[SectionKey]string{
	SectionBasicInfo:  "基本信息",
	SectionSummary:    "个人总结",
	SectionExperience: "工作经历",
	SectionSkills:     "核心技能",
	SectionEducation:  "教育背景",
	SectionProjects:   "项目经验",
}

// Valid reports whether k is one of the canonical keys.
func (k SectionKey) Valid() bool {
	_, ok := sectionLabels[k]
	return ok
}

// Label returns the display label for the key, or the raw key when unknown.
func (k SectionKey) Label() string {
	if label, ok := sectionLabels[k]; ok {
		return label
	}
	return string(k)
}

// Heading returns the canonical level-2 heading used when a section is appended.
func (k SectionKey) Heading() string {
	return "## " + k.Label()
}

// ParseSectionKey converts a wire value into a SectionKey.
func ParseSectionKey(s string) (SectionKey, bool) {
	k := SectionKey(s)
	if !k.Valid() {
		return SectionNone, false
	}
	return k, true
}

// KeyForLabel maps a display label (e.g. "核心技能") back to its key.
func KeyForLabel(label string) SectionKey {
	for k, l := range sectionLabels {
		if l == label {
			return k
		}
	}
	return SectionNone
}

// Keys returns the canonical keys as plain strings, suitable for schema enums.
func Keys() []string {
	out := make([]string, len(AllSections))
	for i, k := range AllSections {
		out[i] = string(k)
	}
	return out
}
