package ingestion

import (
	"errors"
	"fmt"
)

// ErrEmptyFile is returned for zero-length uploads.
var ErrEmptyFile = errors.New("file is empty")

// UnsupportedFormatError is returned for files that are neither PDF nor plain text.
type UnsupportedFormatError struct {
	MediaType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q: upload a PDF or TXT file", e.MediaType)
}

// ExtractionError is returned when a supported file cannot be read.
type ExtractionError struct {
	Format string
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
