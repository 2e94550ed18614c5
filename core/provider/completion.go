package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/m3rciful/gptbot/core/chat"
)

// CompletionConfig carries the settings of the chat completion adapter.
type CompletionConfig struct {
	APIKey       string
	BaseURL      string // optional override, mainly for tests
	Model        string
	SystemPrompt string
	MaxTokens    int64
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Completion produces assistant replies from a conversation snapshot.
type Completion struct {
	client  openai.Client
	model   string
	system  string
	maxTok  int64
	timeout time.Duration
}

// NewCompletion builds the adapter. Retries are disabled on the SDK client:
// failures surface immediately to the orchestrator.
func NewCompletion(cfg CompletionConfig) *Completion {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Completion{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		system:  cfg.SystemPrompt,
		maxTok:  cfg.MaxTokens,
		timeout: cfg.Timeout,
	}
}

// Complete sends the system prompt plus the provided turns and returns the
// assistant text. The upstream caps the reply at the configured token budget.
func (c *Completion) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(c.system))
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			messages = append(messages, openai.UserMessage(t.Content))
		case chat.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if c.maxTok > 0 {
		params.MaxTokens = openai.Int(c.maxTok)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifySDKError(NameCompletion, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", unknownError(NameCompletion, "response missing completion text")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifySDKError maps openai-go request errors: API errors carry the
// upstream status, anything else is a transport failure.
func classifySDKError(provider string, err error) *Error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return statusError(provider, apierr.StatusCode)
	}
	return classify(provider, err)
}
