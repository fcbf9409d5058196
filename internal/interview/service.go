package interview

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/types"
)

// DefaultTemperature gives the interviewer some variety.
const DefaultTemperature = 0.7

// ParseFallbackNote marks a question taken from non-JSON model output.
const ParseFallbackNote = "JSON 解析失败回退"

// Question is the interviewer's next message plus a private note.
type Question struct {
	Text         string `json:"question"`
	InternalNote string `json:"internalNote"`
}

// Service generates interviewer turns.
type Service struct {
	client      llm.Client
	logger      *slog.Logger
	temperature float64
}

// NewService creates an interview service.
func NewService(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger.With("component", "interview"), temperature: DefaultTemperature}
}

// Next asks the stage's persona for its next message. With an empty history
// the persona opens the interview.
func (s *Service) Next(ctx context.Context, req types.InterviewRequest) (*Question, error) {
	if err := types.Validate(&req); err != nil {
		return nil, err
	}
	persona, err := PersonaForStage(req.Stage)
	if err != nil {
		return nil, &types.ValidationError{Field: "stage", Message: err.Error()}
	}

	history := req.History
	if len(history) == 0 {
		opening, err := prompts.Build(prompts.InterviewOpening, map[string]string{"Role": persona.Role})
		if err != nil {
			return nil, fmt.Errorf("build opening prompt: %w", err)
		}
		history = types.History{{Role: types.RoleUser, Content: opening}}
	}

	system, err := prompts.Build(prompts.InterviewQuestion, map[string]string{
		"Role":    persona.Role,
		"Stage":   strconv.Itoa(req.Stage + 1),
		"JD":      req.JD,
		"Resume":  req.Resume,
		"History": orNone(req.History.Transcript()),
	})
	if err != nil {
		return nil, fmt.Errorf("build interview prompt: %w", err)
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range history {
		messages = append(messages, llm.Message{Role: llm.Role(t.Role), Content: t.Content})
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: s.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var q Question
	if err := llm.RecoverInto(resp.Content, &q); err != nil || strings.TrimSpace(q.Text) == "" {
		s.logger.Warn("interview output is not a question object, using raw text", "error", err, "stage", persona.ID)
		return &Question{Text: strings.TrimSpace(resp.Content), InternalNote: ParseFallbackNote}, nil
	}
	return &q, nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "（暂无）"
	}
	return s
}
