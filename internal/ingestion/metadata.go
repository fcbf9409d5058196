package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

// Metadata describes an extracted document.
type Metadata struct {
	Name        string    `json:"name,omitempty"`
	MediaType   string    `json:"mediaType"`
	Size        int       `json:"size"`
	Chars       int       `json:"chars"`
	Lines       int       `json:"lines"`
	ExtractedAt time.Time `json:"extractedAt"`
	// Hash is the hex SHA-256 of the extracted text; identical documents
	// uploaded in different formats share it.
	Hash string `json:"hash"`
}

// NewMetadata summarizes text extracted from a size-byte upload.
func NewMetadata(name, mediaType string, size int, text string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	return &Metadata{
		Name:        name,
		MediaType:   mediaType,
		Size:        size,
		Chars:       utf8.RuneCountInString(text),
		Lines:       lines,
		ExtractedAt: time.Now().UTC(),
		Hash:        hex.EncodeToString(sum[:]),
	}
}
