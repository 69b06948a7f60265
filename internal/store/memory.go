package store

import (
	"context"
	"sync"

	"github.com/luminathea/reflex/internal/models"
)

// MemoryStore keeps state in process memory. Used by tests and by the
// simulate command, where persistence would only slow things down.
type MemoryStore struct {
	mu            sync.RWMutex
	patterns      models.StoreState
	hasPatterns   bool
	controller    models.ControllerState
	hasController bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadPatterns returns the saved pattern state, or defaults when
// nothing has been saved yet.
func (s *MemoryStore) LoadPatterns(ctx context.Context) (models.StoreState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasPatterns {
		return defaultStoreState(), nil
	}
	return clonePatternState(s.patterns), nil
}

// SavePatterns replaces the saved pattern state.
func (s *MemoryStore) SavePatterns(ctx context.Context, state models.StoreState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patterns = clonePatternState(state)
	s.hasPatterns = true
	return nil
}

// LoadController returns the saved controller state, or defaults when
// nothing has been saved yet.
func (s *MemoryStore) LoadController(ctx context.Context) (models.ControllerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasController {
		return defaultControllerState(), nil
	}
	return cloneControllerState(s.controller), nil
}

// SaveController replaces the saved controller state.
func (s *MemoryStore) SaveController(ctx context.Context, state models.ControllerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller = cloneControllerState(state)
	s.hasController = true
	return nil
}

// Warnings always returns nil; memory never loads from anywhere.
func (s *MemoryStore) Warnings() []string {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func clonePatternState(st models.StoreState) models.StoreState {
	out := models.StoreState{NextID: st.NextID}
	if st.Patterns != nil {
		out.Patterns = make([]models.Pattern, len(st.Patterns))
		for i := range st.Patterns {
			out.Patterns[i] = st.Patterns[i].Clone()
		}
	}
	if st.RecentlyUsed != nil {
		out.RecentlyUsed = make([]int64, len(st.RecentlyUsed))
		copy(out.RecentlyUsed, st.RecentlyUsed)
	}
	return out
}

func cloneControllerState(st models.ControllerState) models.ControllerState {
	out := st
	if st.QualityWindow != nil {
		out.QualityWindow = make([]float64, len(st.QualityWindow))
		copy(out.QualityWindow, st.QualityWindow)
	}
	if st.Audits != nil {
		out.Audits = make([]models.AuditRecord, len(st.Audits))
		copy(out.Audits, st.Audits)
	}
	return out
}
