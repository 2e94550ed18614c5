// Package chat keeps bounded per-user conversation history for the
// completion flow. Storage is process-lifetime; nothing survives a restart.
package chat

import "sync"

// Role tags a turn as belonging to the user or the assistant.
type Role string

const (
	// RoleUser marks a message sent by the conversing party.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the completion provider.
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// DefaultMaxTurns bounds how many turns are retained per user.
const DefaultMaxTurns = 10

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// History stores conversation turns keyed by user id. Each user's entry is
// guarded independently so unrelated users never contend on one lock.
type History struct {
	mu       sync.RWMutex
	users    map[int64]*conversation
	maxTurns int
}

// NewHistory creates an empty history. maxTurns <= 0 falls back to
// DefaultMaxTurns.
func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &History{
		users:    make(map[int64]*conversation),
		maxTurns: maxTurns,
	}
}

func (h *History) entry(userID int64) *conversation {
	h.mu.RLock()
	conv, ok := h.users[userID]
	h.mu.RUnlock()
	if ok {
		return conv
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if conv, ok = h.users[userID]; ok {
		return conv
	}
	conv = &conversation{}
	h.users[userID] = conv
	return conv
}

// Append adds a turn to the user's history, evicting the oldest turns when the
// bound is exceeded. Appends for the same user are serialized.
func (h *History) Append(userID int64, role Role, content string) {
	conv := h.entry(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.turns = append(conv.turns, Turn{Role: role, Content: content})
	if excess := len(conv.turns) - h.maxTurns; excess > 0 {
		conv.turns = append([]Turn(nil), conv.turns[excess:]...)
	}
}

// Snapshot returns a copy of the user's turns in insertion order. It reflects
// every Append that completed before the call for the same user.
func (h *History) Snapshot(userID int64) []Turn {
	h.mu.RLock()
	conv, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()
	out := make([]Turn, len(conv.turns))
	copy(out, conv.turns)
	return out
}

// Len reports the current number of stored turns for a user.
func (h *History) Len(userID int64) int {
	h.mu.RLock()
	conv, ok := h.users[userID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	conv.mu.Lock()
	defer conv.mu.Unlock()
	return len(conv.turns)
}
