// Package diagnostic scores a resume against one or more job descriptions and
// produces a study plan.
package diagnostic

import (
	"encoding/json"
	"fmt"
)

// Result is the full diagnosis returned to the caller.
type Result struct {
	Summary          Summary           `json:"summary"`
	DeepDiagnostic   DeepDiagnostic    `json:"deep_diagnostic"`
	SkillsMatrix     SkillsMatrix      `json:"skills_matrix"`
	OptimizationTips []OptimizationTip `json:"optimization_tips"`
	LearningStrategy LearningStrategy  `json:"learning_strategy"`
	RadarData        []RadarPoint      `json:"radar_data"`
}

// Summary is the headline verdict.
type Summary struct {
	Score float64 `json:"score"`
	Title string  `json:"title"`
	Brief string  `json:"brief"`
}

// DeepDiagnostic breaks down the match.
type DeepDiagnostic struct {
	ExperienceMatch ScoredAnalysis `json:"experience_match"`
	SkillGap        SkillGap       `json:"skill_gap"`
	Highlights      []string       `json:"highlights"`
	Risks           []string       `json:"risks"`
}

// ScoredAnalysis pairs a score with prose.
type ScoredAnalysis struct {
	Score    float64 `json:"score"`
	Analysis string  `json:"analysis"`
}

// SkillGap lists skills the JD wants and the resume lacks.
type SkillGap struct {
	MissingSkills []string `json:"missing_skills"`
	Analysis      string   `json:"analysis"`
}

// SkillsMatrix groups skills by how they relate to the JD.
type SkillsMatrix struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Bonus   []string `json:"bonus"`
}

// OptimizationTip suggests a change to one resume section.
type OptimizationTip struct {
	Section    string `json:"section"`
	Original   string `json:"original"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// LearningStrategy is the study plan.
type LearningStrategy struct {
	Type      string   `json:"type"`
	Focus     []string `json:"focus"`
	Timeline  Timeline `json:"timeline"`
	Resources []string `json:"resources"`
}

// RadarPoint is one axis of the competency radar chart.
type RadarPoint struct {
	Subject  string  `json:"subject"`
	Score    float64 `json:"score"`
	FullMark float64 `json:"fullMark"`
}

// Timeline is either a list of stages or, when the model wrote prose that
// could not be split, a single text block. It encodes as an array or a string.
type Timeline struct {
	Stages []Stage
	Text   string
}

// Stage is one step of the study timeline.
type Stage struct {
	Stage string `json:"stage"`
	Task  string `json:"task"`
}

// MarshalJSON implements json.Marshaler.
func (t Timeline) MarshalJSON() ([]byte, error) {
	if t.Stages == nil && t.Text != "" {
		return json.Marshal(t.Text)
	}
	stages := t.Stages
	if stages == nil {
		stages = []Stage{}
	}
	return json.Marshal(stages)
}

// UnmarshalJSON accepts an array of stages, a string, or an object with a
// "plan" string.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	var stages []Stage
	if err := json.Unmarshal(data, &stages); err == nil {
		*t = Timeline{Stages: stages}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*t = Timeline{Text: text}
		return nil
	}
	var obj struct {
		Plan string `json:"plan"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*t = Timeline{Text: obj.Plan}
		return nil
	}
	return fmt.Errorf("timeline must be an array, string or object: %s", string(data))
}
