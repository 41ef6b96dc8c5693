// internal/session/memory.go
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/xkilldash9x/triage-cli/api/schemas"
)

// MemoryStore keeps sessions in memory. Used for tests and for CLI runs
// without a configured database.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]schemas.Hypothesis
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]schemas.Hypothesis)}
}

// SaveHypotheses stores a defensive copy of the hypothesis list.
func (m *MemoryStore) SaveHypotheses(_ context.Context, sessionID string, hyps []schemas.Hypothesis) error {
	if sessionID == "" {
		return fmt.Errorf("session ID must not be empty")
	}
	cp := make([]schemas.Hypothesis, len(hyps))
	copy(cp, hyps)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = cp
	return nil
}

// LoadHypotheses returns the stored list for a session.
func (m *MemoryStore) LoadHypotheses(_ context.Context, sessionID string) ([]schemas.Hypothesis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hyps, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	cp := make([]schemas.Hypothesis, len(hyps))
	copy(cp, hyps)
	return cp, nil
}
