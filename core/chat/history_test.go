package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestAppendKeepsOrder(t *testing.T) {
	h := NewHistory(10)
	h.Append(1, RoleUser, "hello")
	h.Append(1, RoleAssistant, "hi there")

	turns := h.Snapshot(1)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "hello" {
		t.Fatalf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "hi there" {
		t.Fatalf("unexpected second turn: %+v", turns[1])
	}
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 17; i++ {
		h.Append(7, RoleUser, fmt.Sprintf("msg-%d", i))
	}

	turns := h.Snapshot(7)
	if len(turns) != 10 {
		t.Fatalf("expected bound of 10 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		want := fmt.Sprintf("msg-%d", i+7)
		if turn.Content != want {
			t.Fatalf("turn %d = %q, want %q", i, turn.Content, want)
		}
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	h := NewHistory(10)
	h.Append(3, RoleUser, "a")
	h.Append(3, RoleAssistant, "b")

	first := h.Snapshot(3)
	second := h.Snapshot(3)
	if len(first) != len(second) {
		t.Fatalf("snapshots differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("snapshots differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(5, RoleUser, "original")

	snap := h.Snapshot(5)
	snap[0].Content = "mutated"

	if got := h.Snapshot(5)[0].Content; got != "original" {
		t.Fatalf("stored turn mutated through snapshot: %q", got)
	}
}

func TestSnapshotUnknownUser(t *testing.T) {
	h := NewHistory(10)
	if turns := h.Snapshot(42); turns != nil {
		t.Fatalf("expected nil for unknown user, got %v", turns)
	}
}

func TestConcurrentAppendsHoldBound(t *testing.T) {
	h := NewHistory(10)
	var wg sync.WaitGroup
	for u := int64(1); u <= 4; u++ {
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func(userID int64, n int) {
				defer wg.Done()
				h.Append(userID, RoleUser, fmt.Sprintf("m-%d", n))
			}(u, i)
		}
	}
	wg.Wait()

	for u := int64(1); u <= 4; u++ {
		if got := h.Len(u); got != 10 {
			t.Fatalf("user %d: expected 10 turns after concurrent appends, got %d", u, got)
		}
	}
}
