package diagnostic

import (
	"regexp"
	"strings"
)

// Defaults used when a section is absent or fails its schema.
var (
	defaultSummary = Summary{Score: 0, Title: "诊断失败", Brief: "无法生成有效反馈，请重试。"}

	defaultStrategyType = "未知"
)

func defaultResult() Result {
	return Result{
		Summary: defaultSummary,
		DeepDiagnostic: DeepDiagnostic{
			SkillGap:   SkillGap{MissingSkills: []string{}},
			Highlights: []string{},
			Risks:      []string{},
		},
		SkillsMatrix:     SkillsMatrix{Matched: []string{}, Missing: []string{}, Bonus: []string{}},
		OptimizationTips: []OptimizationTip{},
		LearningStrategy: LearningStrategy{
			Type:      defaultStrategyType,
			Focus:     []string{},
			Timeline:  Timeline{Stages: []Stage{}},
			Resources: []string{},
		},
		RadarData: []RadarPoint{},
	}
}

// fillEmpty replaces nil slices and blank required strings after decoding.
func (r *Result) fillEmpty() {
	d := &r.DeepDiagnostic
	d.SkillGap.MissingSkills = nonNil(d.SkillGap.MissingSkills)
	d.Highlights = nonNil(d.Highlights)
	d.Risks = nonNil(d.Risks)

	m := &r.SkillsMatrix
	m.Matched = nonNil(m.Matched)
	m.Missing = nonNil(m.Missing)
	m.Bonus = nonNil(m.Bonus)

	if r.OptimizationTips == nil {
		r.OptimizationTips = []OptimizationTip{}
	}
	if r.RadarData == nil {
		r.RadarData = []RadarPoint{}
	}
	for i := range r.RadarData {
		if r.RadarData[i].FullMark == 0 {
			r.RadarData[i].FullMark = 100
		}
	}

	ls := &r.LearningStrategy
	if strings.TrimSpace(ls.Type) == "" {
		ls.Type = defaultStrategyType
	}
	ls.Focus = nonNil(ls.Focus)
	ls.Resources = nonNil(ls.Resources)
	ls.Timeline = splitTimeline(ls.Timeline)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var (
	dayMarkerRe   = regexp.MustCompile(`(?i)第?\d+[-~至]\d+天|第?\d+天|Day\s*\d+`)
	stageLeadinRe = regexp.MustCompile(`^[:：\s]+`)
)

// splitTimeline turns a prose plan such as "第1-3天：复习 第4天：面试" into
// stages, one per day marker. Text with fewer than two segments is kept as is.
func splitTimeline(t Timeline) Timeline {
	if t.Stages != nil {
		return t
	}
	text := strings.TrimSpace(t.Text)
	if text == "" {
		return Timeline{Stages: []Stage{}}
	}

	locs := dayMarkerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return t
	}

	var parts [][2]int
	if locs[0][0] > 0 {
		parts = append(parts, [2]int{0, locs[0][0]})
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		parts = append(parts, [2]int{loc[0], end})
	}

	var stages []Stage
	markerAt := make(map[int]int, len(locs))
	for _, loc := range locs {
		markerAt[loc[0]] = loc[1]
	}
	for _, p := range parts {
		segment := text[p[0]:p[1]]
		if strings.TrimSpace(segment) == "" {
			continue
		}
		markerEnd, isMarker := markerAt[p[0]]
		if !isMarker {
			stages = append(stages, Stage{Stage: "计划", Task: strings.TrimSpace(segment)})
			continue
		}
		stages = append(stages, Stage{
			Stage: text[p[0]:markerEnd],
			Task:  strings.TrimSpace(stageLeadinRe.ReplaceAllString(text[markerEnd:p[1]], "")),
		})
	}
	if len(stages) <= 1 {
		return t
	}
	return Timeline{Stages: stages}
}
