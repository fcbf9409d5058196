package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Role is the author of a chat message
type Role string

// Message roles understood by both providers
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation sent to the model
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call
type Request struct {
	Messages    []Message
	Temperature float64
	// JSONMode asks the provider for a JSON object response.
	JSONMode bool
	// Tools declares functions the model may invoke instead of answering in prose.
	Tools []Tool
}

// ToolCall is a function invocation emitted by the model. Arguments is the raw
// JSON text the model produced and may itself need recovery.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Response is the result of a non-streaming completion
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// Client is an abstraction over LLM providers
type Client interface {
	// Complete performs a single completion and returns its content and tool calls
	Complete(ctx context.Context, req Request) (*Response, error)
	// Stream performs a streaming completion. onDelta, when non-nil, receives each
	// content fragment as it arrives; the accumulated content is returned.
	Stream(ctx context.Context, req Request, onDelta func(string)) (string, error)
	// Name returns the provider name
	Name() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string, logger *slog.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch config.Provider {
	case ProviderDeepSeek:
		return NewDeepSeekClient(config, apiKey, logger)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
