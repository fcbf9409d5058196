// Package config loads the service configuration from an optional file and
// the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/career-agent/internal/llm"
	"github.com/jonathan/career-agent/internal/logger"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "CAREER_AGENT"

// Session store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config represents the full service configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Log     logger.Config `mapstructure:"log"`
}

// LLMConfig selects and configures the completion provider.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	DeepSeekAPIKey string        `mapstructure:"deepseek_api_key"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ChatConfig tunes the conversational flows.
type ChatConfig struct {
	CopilotTemperature  float64 `mapstructure:"copilot_temperature"`
	CopilotHistoryLimit int     `mapstructure:"copilot_history_limit"`
	ReviewTemperature   float64 `mapstructure:"review_temperature"`
	ReviewHistoryLimit  int     `mapstructure:"review_history_limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	Store           string        `mapstructure:"store"`
	DatabaseURL     string        `mapstructure:"database_url"`
	RedisURL        string        `mapstructure:"redis_url"`
	TTL             time.Duration `mapstructure:"ttl"`
	JanitorSchedule string        `mapstructure:"janitor_schedule"`
}

// FetchConfig configures job description fetching.
type FetchConfig struct {
	UseBrowser bool          `mapstructure:"use_browser"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from path (JSON or YAML by extension) when path is
// non-empty, then overlays the environment. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindBareEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(llm.ProviderDeepSeek))
	v.SetDefault("llm.deepseek_api_key", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)

	v.SetDefault("chat.copilot_temperature", 0.7)
	v.SetDefault("chat.copilot_history_limit", 20)
	v.SetDefault("chat.review_temperature", 0.3)
	v.SetDefault("chat.review_history_limit", 15)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 3*time.Minute)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.database_url", "")
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.janitor_schedule", "@every 10m")

	v.SetDefault("fetch.use_browser", false)
	v.SetDefault("fetch.timeout", 20*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
}

// bindBareEnv accepts the conventional unprefixed names for secrets and URLs.
// The prefixed name wins when both are set.
func bindBareEnv(v *viper.Viper) {
	bare := map[string]string{
		"llm.deepseek_api_key": "DEEPSEEK_API_KEY",
		"llm.gemini_api_key":   "GEMINI_API_KEY",
		"session.database_url": "DATABASE_URL",
		"session.redis_url":    "REDIS_URL",
	}
	for key, env := range bare {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
}

// Validate checks enums, ranges and that the selected backends are reachable
// in principle (keys and URLs present).
func (c *Config) Validate() error {
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderDeepSeek, llm.ProviderGemini:
	default:
		return fmt.Errorf("config error: unsupported llm.provider %q (want deepseek or gemini)", c.LLM.Provider)
	}
	if c.APIKey() == "" {
		return fmt.Errorf("config error: no API key configured for provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be positive")
	}
	if c.Chat.CopilotHistoryLimit <= 0 || c.Chat.ReviewHistoryLimit <= 0 {
		return fmt.Errorf("config error: history limits must be positive")
	}
	if c.Chat.CopilotTemperature < 0 || c.Chat.CopilotTemperature > 2 ||
		c.Chat.ReviewTemperature < 0 || c.Chat.ReviewTemperature > 2 {
		return fmt.Errorf("config error: temperatures must be within [0, 2]")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' %d out of range", c.Server.Port)
	}

	switch c.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Session.DatabaseURL == "" {
			return fmt.Errorf("config error: session store %q requires a database URL", StorePostgres)
		}
	case StoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("config error: session store %q requires a redis URL", StoreRedis)
		}
	default:
		return fmt.Errorf("config error: unsupported session.store %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config error: 'session.ttl' must be positive")
	}
	return nil
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	if llm.Provider(c.LLM.Provider) == llm.ProviderGemini {
		return c.LLM.GeminiAPIKey
	}
	return c.LLM.DeepSeekAPIKey
}

// ModelConfig returns the provider configuration with any overrides applied.
func (c *Config) ModelConfig() *llm.Config {
	mc := llm.DefaultDeepSeekConfig()
	if llm.Provider(c.LLM.Provider) == llm.ProviderGemini {
		mc = llm.DefaultGeminiConfig()
	}
	if c.LLM.Model != "" {
		mc = mc.WithModel(c.LLM.Model)
	}
	if c.LLM.BaseURL != "" {
		mc.BaseURL = c.LLM.BaseURL
	}
	return mc.WithTimeout(c.LLM.Timeout)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
