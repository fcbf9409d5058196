// Package session holds per-user assistant state and the stores that persist it.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/patch"
	"github.com/jonathan/career-agent/internal/review"
	"github.com/jonathan/career-agent/internal/types"
)

// CopilotGreeting opens every copilot conversation.
const CopilotGreeting = "你好！我是你的简历 AI 助手。你可以问我关于简历修改的问题，或者直接让我帮你优化某段经历。"

// Strategy is the candidate input for the refine step.
type Strategy struct {
	Strengths       []string `json:"strengths"`
	NewAchievements string   `json:"newAchievements"`
}

// InterviewRecord is a finished interview with its review.
type InterviewRecord struct {
	ID         string        `json:"id"`
	Date       time.Time     `json:"date"`
	Persona    string        `json:"persona"`
	Report     review.Report `json:"reviewData"`
	Transcript types.History `json:"chatHistory"`
}

// State is everything the assistant knows about one user session. Mutate it
// through its methods so the resume and refined representations stay in step.
type State struct {
	ID              string             `json:"id"`
	ResumeText      string             `json:"resumeText"`
	RefinedContent  string             `json:"refinedContent"`
	JobDescriptions []string           `json:"jobDescriptions"`
	Diagnostic      *diagnostic.Result `json:"diagnosticResult,omitempty"`
	Strategy        Strategy           `json:"strategyData"`

	CopilotMessages types.History   `json:"copilotMessages"`
	Pending         *patch.Proposal `json:"pendingUpdate,omitempty"`

	InterviewPersona string            `json:"interviewPersona"`
	InterviewChat    types.History     `json:"chatHistory"`
	InterviewHistory []InterviewRecord `json:"interviewHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a fresh session with a random ID and the copilot greeting.
func New(now time.Time) *State {
	return &State{
		ID:               uuid.NewString(),
		JobDescriptions:  []string{},
		Strategy:         Strategy{Strengths: []string{}},
		CopilotMessages:  greeting(),
		InterviewPersona: "TA",
		InterviewChat:    types.History{},
		InterviewHistory: []InterviewRecord{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func greeting() types.History {
	return types.History{{Role: types.RoleAssistant, Content: CopilotGreeting}}
}

// Document is the current working resume: the refined content when present,
// otherwise the original text.
func (s *State) Document() string {
	if strings.TrimSpace(s.RefinedContent) != "" {
		return s.RefinedContent
	}
	return s.ResumeText
}

// SetResume replaces the source resume and, optionally, the job descriptions.
func (s *State) SetResume(text string, jds []string) {
	s.ResumeText = text
	if jds != nil {
		s.JobDescriptions = jds
	}
}

// ApplyDocument sets both document representations to doc and drops any
// pending proposal.
func (s *State) ApplyDocument(doc string) {
	s.ResumeText = doc
	s.RefinedContent = doc
	s.Pending = nil
}

// SetPending stages p, replacing any earlier proposal.
func (s *State) SetPending(p patch.Proposal) {
	s.Pending = &p
}

// ClearPending discards the staged proposal.
func (s *State) ClearPending() {
	s.Pending = nil
}

// AppendCopilot records a copilot turn.
func (s *State) AppendCopilot(role, content string) {
	s.CopilotMessages = append(s.CopilotMessages, types.Turn{Role: role, Content: content})
}

// AddInterviewRecord stores a finished interview, newest first, and returns it.
func (s *State) AddInterviewRecord(persona string, report review.Report, transcript types.History, now time.Time) InterviewRecord {
	rec := InterviewRecord{
		ID:         uuid.NewString(),
		Date:       now,
		Persona:    persona,
		Report:     report,
		Transcript: append(types.History(nil), transcript...),
	}
	s.InterviewHistory = append([]InterviewRecord{rec}, s.InterviewHistory...)
	return rec
}

// DeleteInterviewRecord removes a record by ID and reports whether it existed.
func (s *State) DeleteInterviewRecord(id string) bool {
	for i, rec := range s.InterviewHistory {
		if rec.ID == id {
			s.InterviewHistory = append(s.InterviewHistory[:i], s.InterviewHistory[i+1:]...)
			return true
		}
	}
	return false
}

// ResetDiagnostic clears the diagnosis.
func (s *State) ResetDiagnostic() {
	s.Diagnostic = nil
}

// ResetRefinement clears the refine inputs and output.
func (s *State) ResetRefinement() {
	s.Strategy = Strategy{Strengths: []string{}}
	s.RefinedContent = ""
}

// ResetInterview clears the in-progress interview, keeping past records.
func (s *State) ResetInterview() {
	s.InterviewChat = types.History{}
}

// ResetCopilot restores the copilot conversation to its greeting.
func (s *State) ResetCopilot() {
	s.CopilotMessages = greeting()
	s.Pending = nil
}
