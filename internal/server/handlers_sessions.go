package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/career-agent/internal/resume"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// Session parts that can be reset independently.
const (
	PartDiagnostic = "diagnostic"
	PartRefine     = "refine"
	PartInterview  = "interview"
	PartCopilot    = "copilot"
)

// handleCreateSession starts a session, optionally seeded with a resume.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	state := session.New(s.now())
	if text := strings.TrimSpace(req.ResumeText); text != "" || req.JDs != nil {
		state.SetResume(resume.Normalize(text), nonBlank(req.JDs))
	}
	if err := s.store.Save(r.Context(), state); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", state.ID)
	s.jsonResponse(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetResume replaces the session's resume. Results derived from the old
// resume are discarded.
func (s *Server) handleSetResume(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	text := strings.TrimSpace(req.ResumeText)
	if text == "" {
		s.writeError(w, r, &types.ValidationError{Field: "resumeText", Message: "is required"})
		return
	}

	state, err := s.update(r.Context(), r.PathValue("id"), func(st *session.State) error {
		st.SetResume(resume.Normalize(text), nonBlank(req.JDs))
		st.ResetDiagnostic()
		st.ResetRefinement()
		st.ClearPending()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleReset clears one part of the session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	part := r.PathValue("part")
	var reset func(*session.State)
	switch part {
	case PartDiagnostic:
		reset = (*session.State).ResetDiagnostic
	case PartRefine:
		reset = (*session.State).ResetRefinement
	case PartInterview:
		reset = (*session.State).ResetInterview
	case PartCopilot:
		reset = (*session.State).ResetCopilot
	default:
		s.writeError(w, r, &types.ValidationError{Field: "part", Message: "must be one of [diagnostic refine interview copilot]"})
		return
	}

	state, err := s.update(r.Context(), r.PathValue("id"), func(st *session.State) error {
		reset(st)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

func (s *Server) handleDeleteInterviewRecord(w http.ResponseWriter, r *http.Request) {
	record := r.PathValue("record")
	_, err := s.update(r.Context(), r.PathValue("id"), func(st *session.State) error {
		if !st.DeleteInterviewRecord(record) {
			return session.ErrNotFound
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nonBlank trims items and drops empty ones. A nil slice stays nil.
func nonBlank(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
