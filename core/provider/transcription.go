package provider

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// TranscriptionConfig carries the settings of the audio transcription adapter.
type TranscriptionConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Transcription converts voice payloads to text via the Whisper endpoint.
type Transcription struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewTranscription builds the adapter with SDK retries disabled.
func NewTranscription(cfg TranscriptionConfig) *Transcription {
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
	return &Transcription{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Transcribe uploads the audio bytes and returns the recognized text.
func (t *Transcription) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: t.model,
		File:  openai.File(bytes.NewReader(audio), "audio.ogg", "audio/ogg"),
	})
	if err != nil {
		return "", classifySDKError(NameTranscription, err)
	}
	if resp.Text == "" {
		return "", unknownError(NameTranscription, "response missing transcription text")
	}
	return resp.Text, nil
}
