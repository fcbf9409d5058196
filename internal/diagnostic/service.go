package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/schemas"
	"github.com/jonathan/career-agent/internal/types"
)

// JDSeparator joins multiple job descriptions in the prompt.
const JDSeparator = "\n\n=== NEXT JD ===\n\n"

// DefaultTemperature keeps diagnoses reproducible.
const DefaultTemperature = 0.3

// Service runs resume diagnoses.
type Service struct {
	client      llm.Client
	logger      *slog.Logger
	temperature float64
}

// NewService creates a diagnostic service.
func NewService(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:      client,
		logger:      logger.With("component", "diagnostic"),
		temperature: DefaultTemperature,
	}
}

// Diagnose compares the resume with the JDs. Unlike the review flow, output
// that cannot be recovered as a JSON object is an error: a diagnosis made of
// defaults would be misleading. Individual sections that fail their schema
// fall back to defaults.
func (s *Service) Diagnose(ctx context.Context, req types.DiagnosticRequest) (*Result, error) {
	req.Normalize()
	if err := types.Validate(&req); err != nil {
		return nil, err
	}

	prompt, err := prompts.Build(prompts.Diagnose, map[string]string{
		"Resume":     req.Resume,
		"JDs":        strings.Join(req.JDs, JDSeparator),
		"PrepDays":   strconv.Itoa(req.PrepDays),
		"DailyHours": strconv.FormatFloat(req.DailyHours, 'f', -1, 64),
	})
	if err != nil {
		return nil, fmt.Errorf("build diagnostic prompt: %w", err)
	}

	s.logger.Info("running diagnosis", "jds", len(req.JDs), "prep_days", req.PrepDays)
	resp, err := s.client.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleSystem, Content: prompt}},
		Temperature: s.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	obj, err := llm.RecoverObject(resp.Content)
	if err != nil {
		s.logger.Error("diagnostic output is not a JSON object", "error", err, "raw_len", len(resp.Content))
		return nil, err
	}
	return s.Assemble(obj), nil
}

// Assemble builds a Result from a decoded model answer, validating each
// section against its schema and substituting defaults for failures.
func (s *Service) Assemble(obj map[string]any) *Result {
	res := defaultResult()
	s.decodeSection(obj, "summary", &res.Summary)
	s.decodeSection(obj, "deep_diagnostic", &res.DeepDiagnostic)
	s.decodeSection(obj, "skills_matrix", &res.SkillsMatrix)
	s.decodeSection(obj, "optimization_tips", &res.OptimizationTips)
	s.decodeSection(obj, "learning_strategy", &res.LearningStrategy)
	s.decodeSection(obj, "radar_data", &res.RadarData)
	res.fillEmpty()
	return &res
}

func (s *Service) decodeSection(obj map[string]any, key string, dst any) {
	v, ok := obj[key]
	if !ok || v == nil {
		s.logger.Warn("diagnostic section missing, using default", "section", key)
		return
	}
	if err := schemas.Validate("diagnostic/"+key, v); err != nil {
		s.logger.Warn("diagnostic section failed schema, using default", "section", key, "error", err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("diagnostic section not encodable", "section", key, "error", err)
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("diagnostic section not decodable", "section", key, "error", err)
	}
}
