package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// RateLimitConfig holds settings for per-user update rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// OpenAIConfig holds the completion and transcription provider settings.
type OpenAIConfig struct {
	APIKey         string `yaml:"api_key" envconfig:"OPENAI_API_KEY"`
	BaseURL        string `yaml:"base_url" envconfig:"OPENAI_BASE_URL"`
	ChatModel      string `yaml:"chat_model"`
	WhisperModel   string `yaml:"whisper_model"`
	SystemPrompt   string `yaml:"system_prompt"`
	MaxTokens      int64  `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RatesConfig holds the currency rate provider settings.
type RatesConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ImageConfig holds the random image provider settings.
type ImageConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatConfig bounds the per-user conversation context.
type ChatConfig struct {
	MaxTurns int `yaml:"max_turns"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// Defaults applied by Normalize.
const (
	DefaultChatModel     = "gpt-4o-mini"
	DefaultWhisperModel  = "whisper-1"
	DefaultSystemPrompt  = "You are a smart Telegram bot that helps people answer their questions."
	DefaultMaxTokens     = 400
	DefaultOpenAITimeout = 15
	DefaultRatesURL      = "https://api.exchangerate-api.com/v4/latest"
	DefaultRatesTimeout  = 10
	DefaultImageURL      = "https://picsum.photos/800/600"
	DefaultImageTimeout  = 10
	DefaultChatMaxTurns  = 10
)

// Config aggregates the full bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Rates     RatesConfig     `yaml:"rates"`
	Image     ImageConfig     `yaml:"image"`
	Chat      ChatConfig      `yaml:"chat"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai api_key is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = DefaultChatModel
	}
	if cfg.OpenAI.WhisperModel == "" {
		cfg.OpenAI.WhisperModel = DefaultWhisperModel
	}
	if cfg.OpenAI.SystemPrompt == "" {
		cfg.OpenAI.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.OpenAI.MaxTokens <= 0 {
		cfg.OpenAI.MaxTokens = DefaultMaxTokens
	}
	if cfg.OpenAI.TimeoutSeconds <= 0 {
		cfg.OpenAI.TimeoutSeconds = DefaultOpenAITimeout
	}
	if cfg.Rates.URL == "" {
		cfg.Rates.URL = DefaultRatesURL
	}
	if cfg.Rates.TimeoutSeconds <= 0 {
		cfg.Rates.TimeoutSeconds = DefaultRatesTimeout
	}
	if cfg.Image.URL == "" {
		cfg.Image.URL = DefaultImageURL
	}
	if cfg.Image.TimeoutSeconds <= 0 {
		cfg.Image.TimeoutSeconds = DefaultImageTimeout
	}
	if cfg.Chat.MaxTurns <= 0 {
		cfg.Chat.MaxTurns = DefaultChatMaxTurns
	}
	return nil
}
