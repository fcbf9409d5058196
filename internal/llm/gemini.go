package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   config.Model,
		timeout: config.timeout(),
		logger:  logger.With("provider", string(ProviderGemini)),
	}, nil
}

// Complete generates a single response, including any function calls
func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, last, err := c.startChat(req)
	if err != nil {
		return nil, err
	}

	resp, err := session.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	return responseFromGemini(resp)
}

// Stream generates a response incrementally
func (c *GeminiClient) Stream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, last, err := c.startChat(req)
	if err != nil {
		return "", err
	}

	var content strings.Builder
	iter := session.SendMessageStream(ctx, genai.Text(last))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return content.String(), c.classify(ctx, err)
		}
		delta := textFromResponse(resp)
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return content.String(), nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return string(ProviderGemini)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// startChat configures a model for req and seeds the chat history with every
// message but the last, which is returned for sending.
func (c *GeminiClient) startChat(req Request) (*genai.ChatSession, string, error) {
	if c.model == "" {
		return nil, "", fmt.Errorf("no model configured for provider %s", ProviderGemini)
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(float32(req.Temperature))
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: functionDeclarations(req.Tools)}}
	}

	var system []string
	var turns []Message
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 {
		// Prompt-only requests send the instructions as the user turn.
		if len(system) == 0 {
			return nil, "", fmt.Errorf("request has no messages")
		}
		turns = []Message{{Role: RoleUser, Content: strings.Join(system, "\n\n")}}
		system = nil
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}

	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return session, turns[len(turns)-1].Content, nil
}

func (c *GeminiClient) classify(ctx context.Context, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: ProviderGemini, StatusCode: apiErr.Code, Body: apiErr.Message, Cause: err}
	}
	return classifyCallError(ctx, ProviderGemini, c.timeout, err)
}

func geminiRole(r Role) string {
	if r == RoleAssistant {
		return "model"
	}
	return "user"
}

func functionDeclarations(tools []Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]*genai.Schema, len(t.Parameters))
		for _, p := range t.Parameters {
			props[p.Name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
				Enum:        p.Enum,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   t.required(),
			},
		})
	}
	return decls
}

// responseFromGemini collects text parts and function calls from the first candidate.
func responseFromGemini(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &UpstreamError{Provider: ProviderGemini, Cause: errors.New("no candidates in response")}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, &UpstreamError{Provider: ProviderGemini, Cause: errors.New("no content in response")}
	}

	out := &Response{}
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, fmt.Errorf("encode function call arguments: %w", err)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Arguments: string(args)})
		}
	}
	out.Content = text.String()
	return out, nil
}

// textFromResponse extracts concatenated text parts, ignoring empty chunks.
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
