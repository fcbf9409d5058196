// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

var placeholderRe = regexp.MustCompile(`\{\{\.([A-Za-z][A-Za-z0-9_]*)\}\}`)

// Template identifies a prompt by file and key.
type Template struct {
	File string
	Key  string
}

func (t Template) String() string {
	return t.File + "#" + t.Key
}

// Templates used by the assistant flows.
var (
	Diagnose          = Template{File: "diagnostic.json", Key: "diagnose"}
	Refine            = Template{File: "refine.json", Key: "refine"}
	CopilotSystem     = Template{File: "copilot.json", Key: "system"}
	InterviewQuestion = Template{File: "interview.json", Key: "question"}
	InterviewOpening  = Template{File: "interview.json", Key: "opening"}
	ReviewReport      = Template{File: "review.json", Key: "report"}
)

// All lists every template the flows render.
var All = []Template{Diagnose, Refine, CopilotSystem, InterviewQuestion, InterviewOpening, ReviewReport}

// MissingVariablesError is returned when a template references variables the
// caller did not supply.
type MissingVariablesError struct {
	Template string
	Names    []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("prompt %s is missing variables: %s", e.Template, strings.Join(e.Names, ", "))
}

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "review.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Build loads t and renders it with vars. Every placeholder must be supplied.
func Build(t Template, vars map[string]string) (string, error) {
	tmpl, err := Get(t.File, t.Key)
	if err != nil {
		return "", err
	}
	return Render(t.String(), tmpl, vars)
}

// Render substitutes {{.Key}} placeholders in a single pass, so values that
// themselves contain placeholder syntax are inserted verbatim.
func Render(name, template string, vars map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			missing[key] = struct{}{}
			return m
		}
		return v
	})
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for k := range missing {
			names = append(names, k)
		}
		sort.Strings(names)
		return "", &MissingVariablesError{Template: name, Names: names}
	}
	return out, nil
}

// Variables lists the distinct placeholder names used by a template, sorted.
func Variables(template string) []string {
	seen := map[string]struct{}{}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		seen[m[1]] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	// Check cache first
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	// Load from embedded filesystem
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}

// Check loads every template in All and renders it with its own placeholders,
// so a missing file, key or malformed placeholder fails at startup.
func Check() error {
	var errs []error
	for _, t := range All {
		raw, err := Get(t.File, t.Key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vars := make(map[string]string)
		for _, name := range Variables(raw) {
			vars[name] = ""
		}
		if _, err := Render(t.String(), raw, vars); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
