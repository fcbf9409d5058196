// Package llm provides the completion client abstraction used by every assistant flow,
// its DeepSeek and Gemini providers, and the recovery ladder for model-emitted JSON.
package llm

import "time"

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderDeepSeek is the OpenAI-compatible DeepSeek chat completions API
	ProviderDeepSeek Provider = "deepseek"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultTimeout bounds a single completion call, including the streamed body.
const DefaultTimeout = 60 * time.Second

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// BaseURL is only used by OpenAI-compatible providers.
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration (DeepSeek)
func DefaultConfig() *Config {
	return DefaultDeepSeekConfig()
}

// DefaultDeepSeekConfig returns the default DeepSeek configuration
func DefaultDeepSeekConfig() *Config {
	return &Config{
		Provider: ProviderDeepSeek,
		Model:    "deepseek-chat",
		BaseURL:  "https://api.deepseek.com",
		Timeout:  DefaultTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
		Timeout:  DefaultTimeout,
	}
}

// WithModel returns a copy of the config using model
func (c *Config) WithModel(model string) *Config {
	cp := *c
	cp.Model = model
	return &cp
}

// WithTimeout returns a copy of the config using timeout
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	cp := *c
	cp.Timeout = timeout
	return &cp
}

// timeout returns the configured timeout, falling back to DefaultTimeout.
func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
