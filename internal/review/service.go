package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/prompts"
	"github.com/jonathan/career-agent/internal/types"
)

const (
	// DefaultHistoryLimit is the number of most recent turns sent to the model.
	DefaultHistoryLimit = 15
	// DefaultTemperature keeps review scoring stable across runs.
	DefaultTemperature = 0.3

	rawExcerptRunes = 200
)

// Options configures a Service.
type Options struct {
	HistoryLimit int
	Temperature  float64
}

// Service generates review reports.
type Service struct {
	client       llm.Client
	logger       *slog.Logger
	historyLimit int
	temperature  float64
}

// NewService creates a review service.
func NewService(client llm.Client, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Service{
		client:       client,
		logger:       logger.With("component", "review"),
		historyLimit: opts.HistoryLimit,
		temperature:  opts.Temperature,
	}
}

// Generate produces a report for the conversation in req.
func (s *Service) Generate(ctx context.Context, req types.ReviewRequest) (Report, error) {
	return s.GenerateStream(ctx, req, nil)
}

// GenerateStream is Generate with each streamed fragment passed to onDelta.
//
// The returned report is always usable. An empty history short-circuits to a
// fallback without calling the model. Output that cannot be parsed as JSON
// degrades to a fallback quoting the raw output, with a nil error. Upstream
// failures and timeouts return a fallback together with the typed error so the
// caller can surface the failure class.
func (s *Service) GenerateStream(ctx context.Context, req types.ReviewRequest, onDelta func(string)) (Report, error) {
	if err := types.Validate(&req); err != nil {
		return Report{}, err
	}
	if len(req.History) == 0 {
		return FallbackReport(EmptyHistoryMessage), nil
	}

	recent := req.History.Last(s.historyLimit)
	prompt, err := prompts.Build(prompts.ReviewReport, map[string]string{
		"Role":       req.Role,
		"JD":         req.JD,
		"Resume":     req.Resume,
		"Transcript": recent.Transcript(),
	})
	if err != nil {
		return Report{}, fmt.Errorf("build review prompt: %w", err)
	}

	s.logger.Info("generating review report", "turns", len(req.History), "sent_turns", len(recent))
	raw, err := s.client.Stream(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleSystem, Content: prompt}},
		Temperature: s.temperature,
		JSONMode:    true,
	}, onDelta)
	if err != nil {
		s.logger.Error("review completion failed", "error", err)
		return FallbackReport("复盘生成失败：" + err.Error()), err
	}

	parsed, err := llm.Recover(raw)
	if err != nil {
		var formatErr *llm.UnrecoverableFormatError
		if !errors.As(err, &formatErr) {
			return Report{}, err
		}
		s.logger.Warn("review output is not JSON, returning fallback", "error", err, "raw_len", len(raw))
		return FormatFallbackReport(formatErr), nil
	}
	return Sanitize(parsed), nil
}

// FormatFallbackReport explains an unparseable model answer and quotes its start.
func FormatFallbackReport(err *llm.UnrecoverableFormatError) Report {
	var sb strings.Builder
	sb.WriteString("复盘报告解析失败，模型返回的内容不是有效的 JSON。")
	if excerpt := strings.TrimSpace(err.Excerpt(rawExcerptRunes)); excerpt != "" {
		sb.WriteString("\n\n原始输出片段：\n")
		sb.WriteString(excerpt)
	}
	return FallbackReport(sb.String())
}
