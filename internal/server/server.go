// Package server provides the HTTP API of the career assistant.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/career-agent/internal/copilot"
	"github.com/jonathan/career-agent/internal/diagnostic"
	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/interview"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/refine"
	"github.com/jonathan/career-agent/internal/review"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 2 << 20

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	// RequestTimeout bounds each request, including completion calls.
	RequestTimeout time.Duration
	Copilot        copilot.Options
	Review         review.Options
	Fetch          fetch.Options
}

// Server represents the HTTP server
type Server struct {
	cfg        Config
	httpServer *http.Server
	store      session.Store
	logger     *slog.Logger
	now        func() time.Time

	diagnostic *diagnostic.Service
	refine     *refine.Service
	interview  *interview.Service
	review     *review.Service
	copilot    *copilot.Router
}

// New creates a server backed by store and client.
func New(cfg Config, store session.Store, client llm.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		cfg:        cfg,
		store:      store,
		logger:     logger.With("component", "server"),
		now:        time.Now,
		diagnostic: diagnostic.NewService(client, logger),
		refine:     refine.NewService(client, logger),
		interview:  interview.NewService(client, logger),
		review:     review.NewService(client, logger, cfg.Review),
		copilot:    copilot.NewRouter(store, client, logger, cfg.Copilot),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Streamed reviews can run for the full completion timeout.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/resume", s.handleSetResume)
	mux.HandleFunc("POST /api/sessions/{id}/reset/{part}", s.handleReset)

	mux.HandleFunc("POST /api/parse-file", s.handleParseFile)
	mux.HandleFunc("POST /api/jd/fetch", s.handleFetchJD)

	mux.HandleFunc("POST /api/sessions/{id}/diagnostic", s.handleSessionDiagnostic)
	mux.HandleFunc("POST /api/sessions/{id}/refine", s.handleSessionRefine)
	mux.HandleFunc("POST /api/sessions/{id}/chat", s.handleChat)
	mux.HandleFunc("POST /api/sessions/{id}/chat/apply", s.handleApplyBlock)
	mux.HandleFunc("POST /api/sessions/{id}/interview", s.handleInterviewTurn)
	mux.HandleFunc("POST /api/sessions/{id}/interview/review", s.handleSessionReview)
	mux.HandleFunc("POST /api/sessions/{id}/interview/review/stream", s.handleSessionReviewStream)
	mux.HandleFunc("DELETE /api/sessions/{id}/interview/history/{record}", s.handleDeleteInterviewRecord)

	mux.HandleFunc("POST /api/diagnostic", s.handleDiagnostic)
	mux.HandleFunc("POST /api/refine", s.handleRefine)
	mux.HandleFunc("POST /api/interview/review", s.handleReview)

	return s.withLogging(s.withCORS(s.withTimeout(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withTimeout bounds the request context.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	if s.cfg.RequestTimeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.errorResponse(w, status, publicMessage(err, status))
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	default:
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return &types.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
}

// update re-reads the session, applies mutate and saves it. Long completion
// calls run before update so that turns recorded meanwhile are kept.
func (s *Server) update(ctx context.Context, id string, mutate func(*session.State) error) (*session.State, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(state); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}
