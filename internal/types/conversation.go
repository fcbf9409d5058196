package types

import "strings"

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message of an interview or copilot conversation.
type Turn struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

// History is an ordered conversation.
type History []Turn

// Last returns the final n turns, or the whole history when it is shorter.
func (h History) Last(n int) History {
	if n <= 0 || len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// Transcript renders the history as speaker-labelled lines, with the user as
// the candidate and the assistant as the interviewer.
func (h History) Transcript() string {
	lines := make([]string, 0, len(h))
	for _, t := range h {
		speaker := "面试官"
		if t.Role == RoleUser {
			speaker = "候选人"
		}
		lines = append(lines, speaker+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}
