package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/gptbot/core/chat"
	"github.com/m3rciful/gptbot/core/flow"
	"github.com/m3rciful/gptbot/core/logger"
	"github.com/m3rciful/gptbot/core/provider"
)

// defaultCurrencies is the keyboard offered by the selection flow.
var defaultCurrencies = []string{"USD", "EUR", "RUB", "GBP", "JPY", "AUD"}

// Config wires the orchestrator's collaborators.
type Config struct {
	History     *chat.History
	Completer   Completer
	Transcriber Transcriber
	Rates       RateSource
	Images      ImageSource
	// Currencies overrides the selection keyboard; defaults apply when empty.
	Currencies []string
}

// Orchestrator routes normalized inbound events through per-user state and
// the providers. State mutations for one user are applied in event receipt
// order; provider calls run without holding the user's lock.
type Orchestrator struct {
	history     *chat.History
	selections  *selectionStore
	completer   Completer
	transcriber Transcriber
	rates       RateSource
	images      ImageSource
	currencies  []string

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// New builds an orchestrator from its collaborators.
func New(cfg Config) *Orchestrator {
	history := cfg.History
	if history == nil {
		history = chat.NewHistory(chat.DefaultMaxTurns)
	}
	currencies := cfg.Currencies
	if len(currencies) == 0 {
		currencies = defaultCurrencies
	}
	return &Orchestrator{
		history:     history,
		selections:  newSelectionStore(),
		completer:   cfg.Completer,
		transcriber: cfg.Transcriber,
		rates:       cfg.Rates,
		images:      cfg.Images,
		currencies:  currencies,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing state mutations for one user.
func (o *Orchestrator) userLock(userID int64) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	mu, ok := o.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		o.locks[userID] = mu
	}
	return mu
}

// HandleText runs the completion path for a plain text message. Empty input
// is answered locally and mutates nothing.
func (o *Orchestrator) HandleText(ctx context.Context, userID int64, text string) Response {
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn(ctx, "dialog", "text.empty", slog.Int64("user_id", userID))
		return Response{Text: msgEmptyMessage}
	}
	return o.complete(ctx, userID, text)
}

// HandleVoice transcribes the audio and, on success, feeds the recognized
// text through the completion path. A transcription failure stops the event:
// the completion provider is never invoked.
func (o *Orchestrator) HandleVoice(ctx context.Context, userID int64, audio []byte) Response {
	text, err := o.transcriber.Transcribe(ctx, audio)
	if err != nil {
		logger.Warn(ctx, "dialog", "voice.transcribe.fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Response{Text: failureMessage(provider.NameTranscription, err)}
	}

	resp := o.complete(ctx, userID, text)
	resp.Transcript = text
	return resp
}

// complete snapshots the history, asks the completion provider, and commits
// both turns only after success so a failed call leaves the context intact.
func (o *Orchestrator) complete(ctx context.Context, userID int64, text string) Response {
	mu := o.userLock(userID)
	mu.Lock()
	turns := o.history.Snapshot(userID)
	mu.Unlock()

	prompt := append(turns, chat.Turn{Role: chat.RoleUser, Content: text})
	reply, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Warn(ctx, "dialog", "completion.fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Response{Text: failureMessage(provider.NameCompletion, err)}
	}

	mu.Lock()
	o.history.Append(userID, chat.RoleUser, text)
	o.history.Append(userID, chat.RoleAssistant, reply)
	mu.Unlock()

	logger.Debug(ctx, "dialog", "completion.ok",
		slog.Int64("user_id", userID),
		slog.Int("context_turns", len(prompt)),
	)
	return Response{Text: reply, Mode: ModeMarkdown}
}

// HandleSelectionStart resets the user's selection flow and offers the first
// keyboard.
func (o *Orchestrator) HandleSelectionStart(ctx context.Context, userID int64) Response {
	mu := o.userLock(userID)
	mu.Lock()
	o.selections.set(userID, flow.Selection{Phase: flow.PhaseNone})
	mu.Unlock()

	logger.Debug(ctx, "dialog", "selection.start", slog.Int64("user_id", userID))
	return Response{
		Text:    msgChooseFirst,
		Buttons: o.firstButtons(),
	}
}

// HandleSelectionCallback applies one callback token to the user's selection.
// The transition and state write happen under the user lock, so concurrent
// callbacks observe each other in receipt order; only the rate lookup runs
// unlocked.
func (o *Orchestrator) HandleSelectionCallback(ctx context.Context, userID int64, token string) Response {
	mu := o.userLock(userID)
	mu.Lock()
	sel := o.selections.get(userID)
	next, action := flow.Transition(sel, token)
	o.selections.set(userID, next)
	mu.Unlock()

	logger.Debug(ctx, "dialog", "selection.transition",
		slog.Int64("user_id", userID),
		slog.String("phase", string(next.Phase)),
		slog.String("payload", token),
	)

	switch action.Kind {
	case flow.ActionPromptSecond:
		return Response{
			Text:    msgChooseSecond,
			Buttons: o.secondButtons(action.Base),
		}

	case flow.ActionResolve:
		return o.resolveRate(ctx, userID, action.Base, action.Target)

	case flow.ActionExpired:
		logger.Debug(ctx, "dialog", "selection.expired",
			slog.Int64("user_id", userID),
			slog.String("payload", token),
		)
		return Response{Text: msgSelectionExpired}
	}

	return Response{Text: msgSelectionExpired}
}

func (o *Orchestrator) resolveRate(ctx context.Context, userID int64, base, target string) Response {
	table, err := o.rates.Lookup(ctx, base)
	if err != nil {
		logger.Warn(ctx, "dialog", "rates.fail",
			slog.Int64("user_id", userID),
			slog.String("base", base),
			slog.String("target", target),
			slog.String("err", err.Error()),
		)
		return Response{Text: failureMessage(provider.NameRates, err)}
	}

	rate, ok := table[target]
	if !ok {
		logger.Warn(ctx, "dialog", "rates.missing_target",
			slog.Int64("user_id", userID),
			slog.String("base", base),
			slog.String("target", target),
		)
		return Response{Text: msgRateNotFound}
	}

	return Response{
		Text: fmt.Sprintf("💰 %s → %s: %s", base, target, strconv.FormatFloat(rate, 'f', -1, 64)),
	}
}

// HandleImage fetches a random image URL. All failure branches are
// user-visible, none silent.
func (o *Orchestrator) HandleImage(ctx context.Context, userID int64) Response {
	url, err := o.images.Fetch(ctx)
	if err != nil {
		logger.Warn(ctx, "dialog", "image.fail",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return Response{Text: failureMessage(provider.NameImage, err)}
	}
	return Response{Photo: url, Caption: msgImageCaption}
}

func (o *Orchestrator) firstButtons() []Button {
	return o.buttons(flow.FirstToken)
}

func (o *Orchestrator) secondButtons(base string) []Button {
	return o.buttons(func(code string) string { return flow.SecondToken(base, code) })
}

func (o *Orchestrator) buttons(token func(code string) string) []Button {
	btns := make([]Button, 0, len(o.currencies))
	for _, code := range o.currencies {
		btns = append(btns, Button{Text: code, Data: token(code)})
	}
	return btns
}
