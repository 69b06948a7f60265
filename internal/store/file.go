package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/luminathea/reflex/internal/models"
)

// FileStore persists state as two JSON documents, patterns.json and
// autonomy.json, under the data directory. Thread-safe. Damaged or
// missing documents load as defaults; a damaged one is recorded in the
// warnings so the caller can tell the difference between "new install"
// and "lost state".
type FileStore struct {
	mu             sync.RWMutex
	dir            string
	patternsFile   string
	controllerFile string
	warnings       []string
}

// NewFileStore creates a file store rooted at dir, creating the
// directory if needed. An empty dir means the default data directory.
func NewFileStore(dir string) (*FileStore, error) {
	resolved, err := ResolveDataDir(dir)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(resolved); err != nil {
		return nil, err
	}
	return &FileStore{
		dir:            resolved,
		patternsFile:   filepath.Join(resolved, "patterns.json"),
		controllerFile: filepath.Join(resolved, "autonomy.json"),
	}, nil
}

// Dir returns the resolved data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// LoadPatterns reads patterns.json, substituting defaults when the file
// is absent or unreadable as JSON.
func (s *FileStore) LoadPatterns(ctx context.Context) (models.StoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := defaultStoreState()
	if err := s.loadJSON(s.patternsFile, &state); err != nil {
		return defaultStoreState(), nil
	}
	return state, nil
}

// SavePatterns writes patterns.json.
func (s *FileStore) SavePatterns(ctx context.Context, state models.StoreState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveJSON(s.patternsFile, state); err != nil {
		return fmt.Errorf("failed to write patterns: %w", err)
	}
	return nil
}

// LoadController reads autonomy.json, substituting defaults when the
// file is absent or unreadable as JSON.
func (s *FileStore) LoadController(ctx context.Context) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := defaultControllerState()
	if err := s.loadJSON(s.controllerFile, &state); err != nil {
		return defaultControllerState(), nil
	}
	return state, nil
}

// SaveController writes autonomy.json.
func (s *FileStore) SaveController(ctx context.Context, state models.ControllerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveJSON(s.controllerFile, state); err != nil {
		return fmt.Errorf("failed to write controller state: %w", err)
	}
	return nil
}

// loadJSON decodes one document into v. Missing files are fine and
// leave v untouched; anything else is recorded as a warning and
// returned so the caller can fall back to clean defaults.
func (s *FileStore) loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.warnings = append(s.warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("%s: %v", filepath.Base(path), err))
		return err
	}
	return nil
}

func (s *FileStore) saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Warnings lists load problems in the order they were found.
func (s *FileStore) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Close is a no-op; writes are flushed as they happen.
func (s *FileStore) Close() error {
	return nil
}
