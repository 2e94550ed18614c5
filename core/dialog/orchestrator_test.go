package dialog

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m3rciful/gptbot/core/chat"
	"github.com/m3rciful/gptbot/core/provider"
)

type fakeCompleter struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeCompleter) Complete(_ context.Context, turns []chat.Turn) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeRates struct {
	table map[string]float64
	err   error
	calls atomic.Int32
	// block, when set, is closed by the test to release in-flight lookups.
	block chan struct{}
}

func (f *fakeRates) Lookup(context.Context, string) (map[string]float64, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

type fakeImages struct {
	url string
	err error
}

func (f *fakeImages) Fetch(context.Context) (string, error) {
	return f.url, f.err
}

func newTestOrchestrator(c Completer, t Transcriber, r RateSource, i ImageSource) *Orchestrator {
	return New(Config{
		History:     chat.NewHistory(10),
		Completer:   c,
		Transcriber: t,
		Rates:       r,
		Images:      i,
	})
}

func TestHandleTextEmpty(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	o := newTestOrchestrator(completer, nil, nil, nil)

	resp := o.HandleText(context.Background(), 1, "   \t ")
	if resp.Text != msgEmptyMessage {
		t.Fatalf("expected validation prompt, got %q", resp.Text)
	}
	if completer.calls.Load() != 0 {
		t.Fatal("completion must not run for empty input")
	}
	if got := o.history.Len(1); got != 0 {
		t.Fatalf("history mutated on empty input: %d turns", got)
	}
}

func TestHandleTextSuccessCommitsBothTurns(t *testing.T) {
	o := newTestOrchestrator(&fakeCompleter{reply: "42 is the answer"}, nil, nil, nil)

	resp := o.HandleText(context.Background(), 5, "what is the answer?")
	if resp.Text != "42 is the answer" {
		t.Fatalf("reply = %q", resp.Text)
	}

	turns := o.history.Snapshot(5)
	if len(turns) != 2 {
		t.Fatalf("expected 2 committed turns, got %d", len(turns))
	}
	if turns[0].Role != chat.RoleUser || turns[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", turns)
	}
}

func TestHandleTextFailureLeavesHistoryIntact(t *testing.T) {
	failing := &fakeCompleter{err: &provider.Error{Provider: provider.NameCompletion, Kind: provider.KindUpstreamStatus, Code: 500}}
	o := newTestOrchestrator(failing, nil, nil, nil)

	resp := o.HandleText(context.Background(), 9, "hello")
	if resp.Text != failureMessages[provider.NameCompletion][provider.KindUpstreamStatus] {
		t.Fatalf("unexpected failure message: %q", resp.Text)
	}
	if got := o.history.Len(9); got != 0 {
		t.Fatalf("history mutated on failed completion: %d turns", got)
	}
}

func TestHandleVoiceTranscriptionFailureStops(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	o := newTestOrchestrator(completer, &fakeTranscriber{
		err: &provider.Error{Provider: provider.NameTranscription, Kind: provider.KindTimeout},
	}, nil, nil)

	resp := o.HandleVoice(context.Background(), 2, []byte{1, 2, 3})
	if resp.Text != failureMessages[provider.NameTranscription][provider.KindTimeout] {
		t.Fatalf("expected transcription timeout message, got %q", resp.Text)
	}
	if completer.calls.Load() != 0 {
		t.Fatal("completion must not run after a failed transcription")
	}
	if resp.Transcript != "" {
		t.Fatalf("no transcript expected on failure, got %q", resp.Transcript)
	}
}

func TestHandleVoiceSuccessEchoesTranscript(t *testing.T) {
	o := newTestOrchestrator(
		&fakeCompleter{reply: "sunny, around 20°C"},
		&fakeTranscriber{text: "what is the weather"},
		nil, nil,
	)

	resp := o.HandleVoice(context.Background(), 3, []byte{1})
	if resp.Transcript != "what is the weather" {
		t.Fatalf("transcript = %q", resp.Transcript)
	}
	if resp.Text != "sunny, around 20°C" {
		t.Fatalf("reply = %q", resp.Text)
	}
	if turns := o.history.Snapshot(3); len(turns) != 2 || turns[0].Content != "what is the weather" {
		t.Fatalf("unexpected committed turns: %+v", turns)
	}
}

func TestCurrencyFlowEndToEnd(t *testing.T) {
	rates := &fakeRates{table: map[string]float64{"RUB": 90.5}}
	o := newTestOrchestrator(nil, nil, rates, nil)
	ctx := context.Background()

	start := o.HandleSelectionStart(ctx, 4)
	if start.Text != msgChooseFirst || len(start.Buttons) != 6 {
		t.Fatalf("unexpected start response: %+v", start)
	}
	if start.Buttons[0].Data != "first_USD" {
		t.Fatalf("first keyboard token = %q", start.Buttons[0].Data)
	}

	second := o.HandleSelectionCallback(ctx, 4, "first_USD")
	if second.Text != msgChooseSecond {
		t.Fatalf("expected second prompt, got %q", second.Text)
	}
	if second.Buttons[2].Data != "second_USD_RUB" {
		t.Fatalf("second keyboard token = %q", second.Buttons[2].Data)
	}

	final := o.HandleSelectionCallback(ctx, 4, "second_USD_RUB")
	if !strings.Contains(final.Text, "USD → RUB: 90.5") {
		t.Fatalf("final response = %q", final.Text)
	}
}

func TestSelectionOutOfSequenceToken(t *testing.T) {
	rates := &fakeRates{table: map[string]float64{"EUR": 0.9}}
	o := newTestOrchestrator(nil, nil, rates, nil)

	resp := o.HandleSelectionCallback(context.Background(), 6, "second_USD_EUR")
	if resp.Text != msgSelectionExpired {
		t.Fatalf("expected expired message, got %q", resp.Text)
	}
	if rates.calls.Load() != 0 {
		t.Fatal("rate lookup must not run for an out-of-sequence token")
	}
}

func TestSelectionMissingTargetRate(t *testing.T) {
	rates := &fakeRates{table: map[string]float64{"EUR": 0.9}}
	o := newTestOrchestrator(nil, nil, rates, nil)
	ctx := context.Background()

	o.HandleSelectionStart(ctx, 8)
	o.HandleSelectionCallback(ctx, 8, "first_USD")
	resp := o.HandleSelectionCallback(ctx, 8, "second_USD_JPY")
	if resp.Text != msgRateNotFound {
		t.Fatalf("expected rate-not-found message, got %q", resp.Text)
	}
}

func TestSelectionDoubleTapResolvesOnce(t *testing.T) {
	rates := &fakeRates{table: map[string]float64{"EUR": 0.9}}
	o := newTestOrchestrator(nil, nil, rates, nil)
	ctx := context.Background()

	o.HandleSelectionStart(ctx, 11)
	o.HandleSelectionCallback(ctx, 11, "first_USD")

	var wg sync.WaitGroup
	results := make([]Response, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.HandleSelectionCallback(ctx, 11, "second_USD_EUR")
		}(i)
	}
	wg.Wait()

	resolved, expired := 0, 0
	for _, r := range results {
		switch {
		case strings.Contains(r.Text, "USD → EUR"):
			resolved++
		case r.Text == msgSelectionExpired:
			expired++
		}
	}
	if resolved != 1 || expired != 1 {
		t.Fatalf("double tap: resolved=%d expired=%d, want exactly one of each", resolved, expired)
	}
}

func TestUserLockReleasedDuringProviderCall(t *testing.T) {
	rates := &fakeRates{table: map[string]float64{"EUR": 0.9}, block: make(chan struct{})}
	o := newTestOrchestrator(nil, nil, rates, nil)
	ctx := context.Background()

	o.HandleSelectionStart(ctx, 12)
	o.HandleSelectionCallback(ctx, 12, "first_USD")

	done := make(chan Response, 1)
	go func() {
		done <- o.HandleSelectionCallback(ctx, 12, "second_USD_EUR")
	}()

	// Wait until the rate lookup is in flight.
	deadline := time.After(time.Second)
	for rates.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("rate lookup never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// A new first-step token for the same user must not block behind the
	// in-flight provider call.
	restartDone := make(chan Response, 1)
	go func() {
		restartDone <- o.HandleSelectionCallback(ctx, 12, "first_GBP")
	}()
	select {
	case resp := <-restartDone:
		if resp.Text != msgChooseSecond {
			t.Fatalf("restart while lookup in flight: %q", resp.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("selection restart blocked behind a provider call")
	}

	close(rates.block)
	if resp := <-done; !strings.Contains(resp.Text, "USD → EUR") {
		t.Fatalf("delayed resolution = %q", resp.Text)
	}
}

func TestHandleImage(t *testing.T) {
	o := newTestOrchestrator(nil, nil, nil, &fakeImages{url: "https://fastly.picsum.photos/id/7/800/600.jpg"})
	resp := o.HandleImage(context.Background(), 13)
	if resp.Photo == "" || resp.Caption != msgImageCaption {
		t.Fatalf("unexpected image response: %+v", resp)
	}

	failing := newTestOrchestrator(nil, nil, nil, &fakeImages{
		err: &provider.Error{Provider: provider.NameImage, Kind: provider.KindNetwork},
	})
	resp = failing.HandleImage(context.Background(), 13)
	if resp.Text != failureMessages[provider.NameImage][provider.KindNetwork] {
		t.Fatalf("unexpected image failure message: %q", resp.Text)
	}
	if resp.Photo != "" {
		t.Fatal("no photo expected on failure")
	}
}
