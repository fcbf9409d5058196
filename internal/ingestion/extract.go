// Package ingestion turns uploaded resume and job description files into clean text.
package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// Supported media types
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeText = "text/plain"
)

// MaxFileSize bounds uploads and files read from disk.
const MaxFileSize = 10 << 20

// ExtractText detects the type of data from its content and returns its
// cleaned text. Only PDF and plain text are accepted.
func ExtractText(name string, data []byte) (string, *Metadata, error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyFile
	}

	mtype := mimetype.Detect(data)
	var (
		raw string
		err error
	)
	switch {
	case mtype.Is(MediaTypePDF):
		raw, err = pdfText(data)
	case mtype.Is(MediaTypeText):
		raw, err = plainText(data)
	default:
		return "", nil, &UnsupportedFormatError{MediaType: mtype.String()}
	}
	if err != nil {
		return "", nil, err
	}

	text := CleanText(raw)
	return text, NewMetadata(name, mtype.String(), len(data), text), nil
}

// ReadFile extracts the text of a file on disk.
func ReadFile(path string) (string, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", nil, fmt.Errorf("file %s exceeds %d bytes", path, MaxFileSize)
	}
	return ExtractText(filepath.Base(path), data)
}

func plainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &ExtractionError{Format: "text", Cause: fmt.Errorf("content is not valid UTF-8")}
	}
	return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
}

// pdfText reads the text layer of a PDF. The parser panics on some malformed
// inputs, so panics are converted to errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Format: "PDF", Cause: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Format: "PDF", Cause: err}
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &ExtractionError{Format: "PDF", Cause: err}
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", &ExtractionError{Format: "PDF", Cause: err}
	}
	return buf.String(), nil
}
