package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names used by the review stream.
const (
	EventDelta    = "delta"
	EventReport   = "report"
	EventError    = "error"
	EventComplete = "complete"
)

// SSEWriter writes numbered Server-Sent Events. After the first failed write
// (usually a disconnected client) further events are dropped and Err reports
// the failure.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
	err     error
}

// NewSSEWriter sends the event-stream headers and returns a writer.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent encodes data as JSON and sends it as one event.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	if s.err != nil {
		return s.err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, payload); err != nil {
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteDelta forwards a fragment of streamed model output.
func (s *SSEWriter) WriteDelta(text string) error {
	return s.WriteEvent(EventDelta, map[string]string{"text": text})
}

// WriteError sends an error event.
func (s *SSEWriter) WriteError(message string, status int) {
	_ = s.WriteEvent(EventError, map[string]any{"error": message, "status": status})
}

// WriteComplete sends the final event of a stream.
func (s *SSEWriter) WriteComplete(sessionID, status string) {
	_ = s.WriteEvent(EventComplete, map[string]string{"sessionId": sessionID, "status": status})
}

// Sent returns the number of events written.
func (s *SSEWriter) Sent() int { return s.seq }

// Err returns the first write error, if any.
func (s *SSEWriter) Err() error { return s.err }
