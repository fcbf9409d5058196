// Package refine rewrites the whole resume against the target job descriptions.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/resume"
	"github.com/jonathan/career-agent/internal/types"
)

// DefaultTemperature for rewrites.
const DefaultTemperature = 0.3

// jdSeparator matches the diagnostic prompt's JD separator.
const jdSeparator = "\n\n=== NEXT JD ===\n\n"

// Service refines resumes.
type Service struct {
	client      llm.Client
	logger      *slog.Logger
	temperature float64
}

// NewService creates a refine service.
func NewService(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger.With("component", "refine"), temperature: DefaultTemperature}
}

type refineOutput struct {
	RefinedContent string `json:"refined_content"`
}

// Refine returns the rewritten resume, normalized to markdown. When the model
// ignores the JSON envelope its raw text is used instead.
func (s *Service) Refine(ctx context.Context, req types.RefineRequest) (string, error) {
	if err := types.Validate(&req); err != nil {
		return "", err
	}

	prompt, err := prompts.Build(prompts.Refine, map[string]string{
		"JDs":          orNone(strings.Join(nonBlank(req.JDs), jdSeparator)),
		"Resume":       req.Resume,
		"Achievements": achievements(req.Strengths, req.NewAchievements),
	})
	if err != nil {
		return "", fmt.Errorf("build refine prompt: %w", err)
	}

	s.logger.Info("refining resume", "jds", len(req.JDs), "strengths", len(req.Strengths))
	resp, err := s.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleSystem, Content: prompt}},
		Temperature: s.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return "", err
	}

	var out refineOutput
	if err := llm.RecoverInto(resp.Content, &out); err != nil || strings.TrimSpace(out.RefinedContent) == "" {
		s.logger.Warn("refine output missing refined_content, using raw text", "error", err)
		return resume.Normalize(resp.Content), nil
	}
	return resume.Normalize(out.RefinedContent), nil
}

// achievements renders the strength tags and free-text achievements block.
func achievements(strengths []string, added string) string {
	var lines []string
	if tags := nonBlank(strengths); len(tags) > 0 {
		lines = append(lines, "优势标签: "+strings.Join(tags, ", "))
	}
	if added = strings.TrimSpace(added); added != "" {
		lines = append(lines, "新增成就: "+added)
	}
	return orNone(strings.Join(lines, "\n"))
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "无"
	}
	return s
}
