// Package dialog is the conversation orchestrator. It consumes normalized
// inbound events from the transport, consults per-user state (conversation
// history, selection flow), invokes providers, and produces exactly one
// outbound response per event. Delivery is the transport's job.
package dialog

import (
	"context"

	"github.com/m3rciful/gptbot/core/chat"
)

// Button is one inline keyboard button. Data becomes the callback token the
// transport sends back verbatim.
type Button struct {
	Text string
	Data string
}

// Response is the single outbound reply for one inbound event. The transport
// renders whichever fields are set: Transcript as a preceding message, Photo
// with Caption as a photo, otherwise Text with the optional Mode hint and
// Buttons. Row layout of Buttons is left to the transport.
type Response struct {
	Transcript string
	Text       string
	Mode       string // formatting hint, opaque to the core
	Photo      string
	Caption    string
	Buttons    []Button
}

// Formatting hints passed through to the transport.
const (
	ModeMarkdown = "Markdown"
	ModeHTML     = "HTML"
)

// Completer produces an assistant reply from a conversation snapshot.
type Completer interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
}

// Transcriber converts an audio payload to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// RateSource returns the rate table for a base currency.
type RateSource interface {
	Lookup(ctx context.Context, base string) (map[string]float64, error)
}

// ImageSource resolves a random image to its final URL.
type ImageSource interface {
	Fetch(ctx context.Context) (string, error)
}
