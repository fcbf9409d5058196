package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/career-agent/internal/copilot"
	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/ingestion"
	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/session"
	"github.com/jonathan/career-agent/internal/types"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("streaming not supported")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *types.ValidationError
		unsupportedErr *ingestion.UnsupportedFormatError
		extractionErr  *ingestion.ExtractionError
		maxBytesErr    *http.MaxBytesError
		timeoutErr     *llm.TimeoutError
		upstreamErr    *llm.UpstreamError
		formatErr      *llm.UnrecoverableFormatError
		fetchErr       *fetch.Error
	)
	switch {
	case errors.As(err, &validationErr), errors.Is(err, ingestion.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, copilot.ErrTurnInProgress):
		return http.StatusConflict
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstreamErr), errors.As(err, &formatErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text sent to clients. Internal failures are not
// described.
func publicMessage(err error, status int) string {
	var formatErr *llm.UnrecoverableFormatError
	switch {
	case errors.As(err, &formatErr):
		return "AI response is not valid JSON"
	case status == http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
