// Package interview runs the multi-stage mock interview.
package interview

import "fmt"

// Persona is one interviewer in the three-stage interview.
type Persona struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Role  string `json:"role"`
}

// Personas in stage order: recruiter screen, hiring manager, director.
var Personas = []Persona{
	{ID: "TA", Label: "HR 初筛", Role: "资深 HR 招聘官"},
	{ID: "HM", Label: "业务面", Role: "用人部门技术经理"},
	{ID: "Director", Label: "总监面", Role: "部门总监"},
}

// PersonaForStage returns the persona for a zero-based stage index.
func PersonaForStage(stage int) (Persona, error) {
	if stage < 0 || stage >= len(Personas) {
		return Persona{}, fmt.Errorf("interview stage %d out of range [0, %d)", stage, len(Personas))
	}
	return Personas[stage], nil
}

// FallbackOpening is shown when the opening question cannot be generated.
func FallbackOpening(p Persona) string {
	return fmt.Sprintf("你好，我是本次面试的%s。我们开始吧，请先做一个简短的自我介绍。", p.Role)
}

// FallbackFollowUp is shown when a follow-up question cannot be generated.
const FallbackFollowUp = "抱歉，我刚才走神了，能请你再说一遍吗？"

// PersonaByID returns the persona and its stage index.
func PersonaByID(id string) (Persona, int, bool) {
	for i, p := range Personas {
		if p.ID == id {
			return p, i, true
		}
	}
	return Persona{}, 0, false
}
