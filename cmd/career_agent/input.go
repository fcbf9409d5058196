package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/career-agent/internal/fetch"
	"github.com/jonathan/career-agent/internal/ingestion"
)

// readDocument returns the text of path, or of in when path is "-".
// PDF and plain text files are supported.
func readDocument(path string, in io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(in, ingestion.MaxFileSize+1))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	text, _, err := ingestion.ReadFile(path)
	if err != nil {
		return "", err
	}
	return text, nil
}

// readRaw returns the bytes of path, or of in when path is "-", as text.
func readRaw(path string, in io.Reader) (string, error) {
	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// collectJDs reads job descriptions from files and fetches them from URLs.
func collectJDs(ctx context.Context, files, urls []string, opts *fetch.Options) ([]string, error) {
	jds := make([]string, 0, len(files)+len(urls))
	for _, f := range files {
		text, _, err := ingestion.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read job description %s: %w", f, err)
		}
		jds = append(jds, text)
	}
	for _, u := range urls {
		text, err := fetch.JobDescription(ctx, u, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch job description %s: %w", u, err)
		}
		jds = append(jds, text)
	}
	for _, jd := range jds {
		if strings.TrimSpace(jd) != "" {
			return jds, nil
		}
	}
	return nil, fmt.Errorf("at least one --jd or --jd-url is required")
}
