package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m3rciful/gptbot/core/chat"
)

func completionServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Completion) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewCompletion(CompletionConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Model:        "gpt-4o-mini",
		SystemPrompt: "You are a helpful bot.",
		MaxTokens:    400,
		Timeout:      time.Second,
	})
	return srv, c
}

func TestCompletionSuccess(t *testing.T) {
	var gotBody struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int64 `json:"max_tokens"`
	}
	srv, c := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello!"}}],` +
			`"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	})
	defer srv.Close()

	reply, err := c.Complete(context.Background(), []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello!" {
		t.Fatalf("reply = %q", reply)
	}
	if gotBody.MaxTokens != 400 {
		t.Fatalf("max_tokens = %d, want 400", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}
}

func TestCompletionMissingContentIsUnknown(t *testing.T) {
	srv, c := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-2","object":"chat.completion","choices":[]}`))
	})
	defer srv.Close()

	_, err := c.Complete(context.Background(), nil)
	if KindOf(err) != KindUnknown {
		t.Fatalf("expected unknown classification for empty choices, got %v", err)
	}
}

func TestCompletionUpstreamStatus(t *testing.T) {
	srv, c := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})
	defer srv.Close()

	_, err := c.Complete(context.Background(), nil)
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != KindUpstreamStatus || pe.Code != http.StatusInternalServerError {
		t.Fatalf("expected upstream status 500, got %v", err)
	}
}

func TestCompletionSingleAttempt(t *testing.T) {
	calls := 0
	srv, c := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})
	defer srv.Close()

	_, _ = c.Complete(context.Background(), nil)
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, upstream saw %d", calls)
	}
}

func TestTranscriptionSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"what is the weather"}`))
	}))
	defer srv.Close()

	tr := NewTranscription(TranscriptionConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "whisper-1",
		Timeout: time.Second,
	})
	text, err := tr.Transcribe(context.Background(), []byte{0x4f, 0x67, 0x67, 0x53})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "what is the weather" {
		t.Fatalf("text = %q", text)
	}
}

func TestTranscriptionEmptyTextIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer srv.Close()

	tr := NewTranscription(TranscriptionConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "whisper-1",
		Timeout: time.Second,
	})
	_, err := tr.Transcribe(context.Background(), []byte{1, 2, 3})
	if KindOf(err) != KindUnknown {
		t.Fatalf("expected unknown classification for empty transcription, got %v", err)
	}
}
