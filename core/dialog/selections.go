package dialog

import (
	"sync"

	"github.com/m3rciful/gptbot/core/flow"
)

// selectionStore keeps the live selection per user. A user has at most one
// active selection; missing entries read as the idle state.
type selectionStore struct {
	mu       sync.RWMutex
	sessions map[int64]flow.Selection
}

func newSelectionStore() *selectionStore {
	return &selectionStore{sessions: make(map[int64]flow.Selection)}
}

func (s *selectionStore) get(userID int64) flow.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sel, ok := s.sessions[userID]; ok {
		return sel
	}
	return flow.Selection{Phase: flow.PhaseNone}
}

func (s *selectionStore) set(userID int64, sel flow.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sel.Phase == flow.PhaseNone {
		delete(s.sessions, userID)
		return
	}
	s.sessions[userID] = sel
}
