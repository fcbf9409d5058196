package types

import "strings"

// Defaults applied to a diagnostic request when the caller omits them.
const (
	DefaultPrepDays   = 14
	DefaultDailyHours = 2
)

// DiagnosticRequest asks for a resume-versus-JD diagnosis.
type DiagnosticRequest struct {
	Resume     string   `json:"resume" validate:"required"`
	JDs        []string `json:"jds" validate:"min=1,dive,required"`
	PrepDays   int      `json:"prepDays" validate:"gte=0,lte=365"`
	DailyHours float64  `json:"dailyHours" validate:"gte=0,lte=24"`
}

// Normalize trims inputs, drops blank JDs and fills defaults.
func (r *DiagnosticRequest) Normalize() {
	r.Resume = strings.TrimSpace(r.Resume)
	jds := r.JDs[:0]
	for _, jd := range r.JDs {
		if jd = strings.TrimSpace(jd); jd != "" {
			jds = append(jds, jd)
		}
	}
	r.JDs = jds
	if r.PrepDays == 0 {
		r.PrepDays = DefaultPrepDays
	}
	if r.DailyHours == 0 {
		r.DailyHours = DefaultDailyHours
	}
}

// RefineRequest asks for the whole resume to be rewritten against the JDs.
type RefineRequest struct {
	Resume          string   `json:"resume" validate:"required"`
	JDs             []string `json:"jds"`
	Strengths       []string `json:"strengths"`
	NewAchievements string   `json:"newAchievements"`
}

// HasAchievements reports whether the candidate supplied anything to add.
func (r RefineRequest) HasAchievements() bool {
	for _, s := range r.Strengths {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return strings.TrimSpace(r.NewAchievements) != ""
}

// ChatRequest is a free-text copilot message.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ApplyBlockRequest commits a code block the user picked from a copilot reply.
type ApplyBlockRequest struct {
	Block string `json:"block" validate:"required"`
	// AllowRewrite confirms that a block with no recognizable section replaces
	// the whole document.
	AllowRewrite bool `json:"allowRewrite"`
}

// InterviewRequest asks the interviewer persona for its next message.
type InterviewRequest struct {
	Resume  string  `json:"resume"`
	JD      string  `json:"jd"`
	Stage   int     `json:"stage" validate:"gte=0,lte=2"`
	History History `json:"history" validate:"dive"`
}

// ReviewRequest asks for an interview review report.
type ReviewRequest struct {
	Role    string  `json:"role" validate:"required"`
	JD      string  `json:"jd"`
	Resume  string  `json:"resume"`
	History History `json:"history" validate:"dive"`
}

// CreateSessionRequest seeds a new session.
type CreateSessionRequest struct {
	ResumeText string   `json:"resumeText"`
	JDs        []string `json:"jds"`
}

// FetchJDRequest asks for the text of a job posting.
type FetchJDRequest struct {
	URL        string `json:"url" validate:"required,http_url"`
	UseBrowser bool   `json:"useBrowser"`
}

// SessionDiagnosticRequest diagnoses the session's resume against its JDs.
type SessionDiagnosticRequest struct {
	PrepDays   int     `json:"prepDays" validate:"gte=0,lte=365"`
	DailyHours float64 `json:"dailyHours" validate:"gte=0,lte=24"`
}

// SessionRefineRequest refines the session's resume with the candidate's input.
type SessionRefineRequest struct {
	Strengths       []string `json:"strengths"`
	NewAchievements string   `json:"newAchievements"`
}

// InterviewTurnRequest advances the session's mock interview. A persona that
// differs from the current one starts a new interview with that persona.
type InterviewTurnRequest struct {
	Persona string `json:"persona" validate:"omitempty,oneof=TA HM Director"`
	Message string `json:"message"`
}
