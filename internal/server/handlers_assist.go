package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/ingestion"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// ParseFileResponse is the text extracted from an upload.
type ParseFileResponse struct {
	Text     string              `json:"text"`
	Metadata *ingestion.Metadata `json:"metadata"`
}

// FetchJDResponse is the text of a fetched job posting.
type FetchJDResponse struct {
	URL      string         `json:"url"`
	Platform fetch.Platform `json:"platform"`
	Text     string         `json:"text"`
}

// ContentResponse carries a rewritten resume.
type ContentResponse struct {
	Content string `json:"content"`
}

// handleParseFile extracts text from a multipart "file" upload.
func (s *Server) handleParseFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxFileSize+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if !errors.As(err, &maxBytesErr) {
			err = &types.ValidationError{Field: "file", Message: "multipart field is required"}
		}
		s.writeError(w, r, err)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, ingestion.MaxFileSize+1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(data) > ingestion.MaxFileSize {
		s.writeError(w, r, &types.ValidationError{Field: "file", Message: "must be at most 10MB"})
		return
	}

	text, meta, err := ingestion.ExtractText(header.Filename, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("parsed upload", "name", header.Filename, "media_type", meta.MediaType, "chars", len(text))
	s.jsonResponse(w, http.StatusOK, ParseFileResponse{Text: text, Metadata: meta})
}

// handleFetchJD fetches a job posting URL and returns its text.
func (s *Server) handleFetchJD(w http.ResponseWriter, r *http.Request) {
	var req types.FetchJDRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := types.Validate(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.cfg.Fetch
	opts.UseBrowser = opts.UseBrowser || req.UseBrowser
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	text, err := fetch.JobDescription(r.Context(), req.URL, &opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, FetchJDResponse{URL: req.URL, Platform: fetch.DetectPlatform(req.URL), Text: text})
}

// handleDiagnostic diagnoses a resume supplied in full in the body.
func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	var req types.DiagnosticRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.diagnostic.Diagnose(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleSessionDiagnostic diagnoses the session's resume and stores the result.
func (s *Server) handleSessionDiagnostic(w http.ResponseWriter, r *http.Request) {
	var req types.SessionDiagnosticRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	state, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.diagnostic.Diagnose(r.Context(), types.DiagnosticRequest{
		Resume:     state.ResumeText,
		JDs:        state.JobDescriptions,
		PrepDays:   req.PrepDays,
		DailyHours: req.DailyHours,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.update(r.Context(), id, func(st *session.State) error {
		st.Diagnostic = result
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleRefine refines a resume supplied in full in the body.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req types.RefineRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	content, err := s.refine.Refine(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ContentResponse{Content: content})
}

// handleSessionRefine refines the session's resume. The refined text becomes
// the session's working document.
func (s *Server) handleSessionRefine(w http.ResponseWriter, r *http.Request) {
	var req types.SessionRefineRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	state, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	strengths := nonBlank(req.Strengths)
	if strengths == nil {
		strengths = []string{}
	}
	content, err := s.refine.Refine(r.Context(), types.RefineRequest{
		Resume:          state.ResumeText,
		JDs:             state.JobDescriptions,
		Strengths:       strengths,
		NewAchievements: req.NewAchievements,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.update(r.Context(), id, func(st *session.State) error {
		st.Strategy = session.Strategy{Strengths: strengths, NewAchievements: req.NewAchievements}
		st.ApplyDocument(content)
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ContentResponse{Content: content})
}

// handleChat runs one copilot turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.copilot.HandleMessage(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reply)
}

// handleApplyBlock commits a code block picked from a copilot reply.
func (s *Server) handleApplyBlock(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyBlockRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	reply, err := s.copilot.ApplyCodeBlock(r.Context(), r.PathValue("id"), req.Block, req.AllowRewrite)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reply)
}
