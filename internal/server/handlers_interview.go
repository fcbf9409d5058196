package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/interview"
	"github.com/jonathan/career-agent/internal/review"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// InterviewTurnResponse is the interviewer's next message.
type InterviewTurnResponse struct {
	Question     string            `json:"question"`
	InternalNote string            `json:"internalNote,omitempty"`
	Persona      interview.Persona `json:"persona"`
	Stage        int               `json:"stage"`
	Turns        int               `json:"turns"`
	// Fallback is set when the model could not be reached and a canned
	// question was used.
	Fallback bool `json:"fallback,omitempty"`
}

// ReviewResponse is a review report, plus the interview record it was saved
// under for session reviews.
type ReviewResponse struct {
	Report   review.Report `json:"report"`
	RecordID string        `json:"recordId,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// handleInterviewTurn records the candidate's answer, if any, and asks the
// current persona for its next message.
func (s *Server) handleInterviewTurn(w http.ResponseWriter, r *http.Request) {
	var req types.InterviewTurnRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := types.Validate(&req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := r.PathValue("id")
	state, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	personaID := state.InterviewPersona
	history := append(types.History(nil), state.InterviewChat...)
	if req.Persona != "" && req.Persona != personaID {
		personaID = req.Persona
		history = types.History{}
	}
	persona, stage, ok := interview.PersonaByID(personaID)
	if !ok {
		persona, stage = interview.Personas[0], 0
	}
	if msg := strings.TrimSpace(req.Message); msg != "" {
		history = append(history, types.Turn{Role: types.RoleUser, Content: msg})
	}

	resp := InterviewTurnResponse{Persona: persona, Stage: stage}
	q, err := s.interview.Next(r.Context(), types.InterviewRequest{
		Resume:  state.Document(),
		JD:      strings.Join(state.JobDescriptions, diagnostic.JDSeparator),
		Stage:   stage,
		History: history,
	})
	switch {
	case err == nil:
		resp.Question, resp.InternalNote = q.Text, q.InternalNote
	case isValidation(err):
		s.writeError(w, r, err)
		return
	default:
		s.logger.Warn("interview question failed, using fallback", "session", id, "persona", persona.ID, "error", err)
		resp.Question, resp.Fallback = interview.FallbackFollowUp, true
		if len(history) == 0 {
			resp.Question = interview.FallbackOpening(persona)
		}
	}
	history = append(history, types.Turn{Role: types.RoleAssistant, Content: resp.Question})
	resp.Turns = len(history)

	if _, err := s.update(r.Context(), id, func(st *session.State) error {
		st.InterviewPersona = persona.ID
		st.InterviewChat = history
		return nil
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleReview reviews a conversation supplied in full in the body.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req types.ReviewRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.review.Generate(r.Context(), req)
	if err != nil {
		s.writeReviewError(w, r, report, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewResponse{Report: report})
}

// handleSessionReview reviews the session's current interview. A review of a
// non-empty conversation is archived and the interview is cleared.
func (s *Server) handleSessionReview(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, persona, err := s.reviewRequest(r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.review.Generate(r.Context(), req)
	if err != nil {
		s.writeReviewError(w, r, report, err)
		return
	}
	recordID, err := s.archiveReview(r, id, persona, report, req.History)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ReviewResponse{Report: report, RecordID: recordID})
}

// handleSessionReviewStream is handleSessionReview over SSE: delta events
// carry model output as it arrives, then a report event and a complete event.
func (s *Server) handleSessionReviewStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, persona, err := s.reviewRequest(r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.review.GenerateStream(r.Context(), req, func(delta string) {
		_ = sse.WriteDelta(delta)
	})
	if werr := sse.Err(); werr != nil {
		s.logger.Debug("client stopped reading review stream", "session", id, "events", sse.Sent(), "error", werr)
	}
	if err != nil {
		status := HTTPStatus(err)
		s.logger.Error("review stream failed", "session", id, "status", status, "error", err)
		if !isValidation(err) {
			_ = sse.WriteEvent(EventReport, report)
		}
		sse.WriteError(publicMessage(err, status), status)
		sse.WriteComplete(id, "failed")
		return
	}

	recordID, err := s.archiveReview(r, id, persona, report, req.History)
	if err != nil {
		status := HTTPStatus(err)
		sse.WriteError(publicMessage(err, status), status)
		sse.WriteComplete(id, "failed")
		return
	}
	_ = sse.WriteEvent(EventReport, ReviewResponse{Report: report, RecordID: recordID})
	sse.WriteComplete(id, "completed")
}

func (s *Server) reviewRequest(r *http.Request, id string) (types.ReviewRequest, interview.Persona, error) {
	state, err := s.store.Get(r.Context(), id)
	if err != nil {
		return types.ReviewRequest{}, interview.Persona{}, err
	}
	persona, _, ok := interview.PersonaByID(state.InterviewPersona)
	if !ok {
		persona = interview.Personas[0]
	}
	return types.ReviewRequest{
		Role:    persona.Role,
		JD:      strings.Join(state.JobDescriptions, diagnostic.JDSeparator),
		Resume:  state.Document(),
		History: state.InterviewChat,
	}, persona, nil
}

// archiveReview stores the report as an interview record and clears the
// conversation. Empty conversations are not archived.
func (s *Server) archiveReview(r *http.Request, id string, persona interview.Persona, report review.Report, transcript types.History) (string, error) {
	if len(transcript) == 0 {
		return "", nil
	}
	var recordID string
	_, err := s.update(r.Context(), id, func(st *session.State) error {
		recordID = st.AddInterviewRecord(persona.ID, report, transcript, s.now()).ID
		st.ResetInterview()
		return nil
	})
	return recordID, err
}

// writeReviewError sends the fallback report alongside the failure so the
// client can still render something.
func (s *Server) writeReviewError(w http.ResponseWriter, r *http.Request, fallback review.Report, err error) {
	if isValidation(err) {
		s.writeError(w, r, err)
		return
	}
	status := HTTPStatus(err)
	s.logger.Error("review failed", "path", r.URL.Path, "status", status, "error", err)
	s.jsonResponse(w, status, ReviewResponse{Report: fallback, Error: publicMessage(err, status)})
}

func isValidation(err error) bool {
	var ve *types.ValidationError
	return errors.As(err, &ve)
}
