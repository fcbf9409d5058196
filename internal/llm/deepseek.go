package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	chatCompletionsPath = "/chat/completions"
	maxErrorBodyBytes   = 64 << 10
	streamReadChunk     = 4096
)

// DeepSeekClient implements Client for the OpenAI-compatible DeepSeek API
type DeepSeekClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeepSeekClient creates a new DeepSeek client
func NewDeepSeekClient(config *Config, apiKey string, logger *slog.Logger) (*DeepSeekClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for provider %s", config.Provider)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeepSeekClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
		timeout:    config.timeout(),
		httpClient: &http.Client{},
		logger:     logger.With("provider", string(ProviderDeepSeek)),
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	Stream         bool            `json:"stream,omitempty"`
	Tools          []chatTool      `json:"tools,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete performs a single chat completion
func (c *DeepSeekClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, c.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		if ctx.Err() != nil {
			return nil, classifyCallError(ctx, ProviderDeepSeek, c.timeout, err)
		}
		return nil, &UpstreamError{Provider: ProviderDeepSeek, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode response: %w", err)}
	}
	if len(decoded.Choices) == 0 {
		return nil, &UpstreamError{Provider: ProviderDeepSeek, StatusCode: resp.StatusCode, Cause: errors.New("no choices in response")}
	}

	msg := decoded.Choices[0].Message
	out := &Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

// Stream performs a streaming chat completion, decoding server-sent "data:" frames
// until the "[DONE]" sentinel or end of body.
func (c *DeepSeekClient) Stream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, c.buildRequest(req, true))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var (
		content strings.Builder
		decoder LineDecoder
		done    bool
	)
	handle := func(line string) {
		delta, finished := c.parseStreamLine(line)
		if finished {
			done = true
			return
		}
		if delta == "" {
			return
		}
		content.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	buf := make([]byte, streamReadChunk)
	for !done {
		n, readErr := resp.Body.Read(buf)
		for _, line := range decoder.Write(buf[:n]) {
			handle(line)
			if done {
				break
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return content.String(), classifyCallError(ctx, ProviderDeepSeek, c.timeout, readErr)
		}
	}
	if rest, ok := decoder.Flush(); ok && !done {
		handle(rest)
	}
	return content.String(), nil
}

// parseStreamLine extracts the content delta from one SSE line. Malformed frames
// are logged and skipped.
func (c *DeepSeekClient) parseStreamLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return "", false
	}
	payload = strings.TrimSpace(payload)
	if payload == "[DONE]" {
		return "", true
	}

	var chunk chatStreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		c.logger.Warn("skipping malformed stream frame", "error", err, "frame", Truncate(payload, 120))
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, false
}

// Name returns the provider name
func (c *DeepSeekClient) Name() string {
	return string(ProviderDeepSeek)
}

// Close releases resources held by the client
func (c *DeepSeekClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *DeepSeekClient) buildRequest(req Request, stream bool) chatRequest {
	out := chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if req.JSONMode {
		out.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	for _, t := range req.Tools {
		out.Tools = append(out.Tools, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.jsonSchema(),
			},
		})
	}
	return out
}

// post sends the request and returns the response when the status is 2xx.
func (c *DeepSeekClient) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyCallError(ctx, ProviderDeepSeek, c.timeout, err)
	}
	c.logger.Debug("completion response", "status", resp.StatusCode, "stream", body.Stream, "latency", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &UpstreamError{
			Provider:   ProviderDeepSeek,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(errBody)),
		}
	}
	return resp, nil
}
