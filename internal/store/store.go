// Package store provides persistence backends for the pattern store
// and autonomy controller state documents.
package store

import (
	"context"
	"fmt"

	"github.com/luminathea/reflex/internal/models"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store persists the two state documents. Loading never fails on
// missing or partially damaged data: implementations substitute
// defaults, record what went wrong, and surface it through Warnings.
// Writes replace the whole document.
type Store interface {
	LoadPatterns(ctx context.Context) (models.StoreState, error)
	SavePatterns(ctx context.Context, state models.StoreState) error
	LoadController(ctx context.Context) (models.ControllerState, error)
	SaveController(ctx context.Context, state models.ControllerState) error

	// Warnings lists recoverable problems hit while loading, in the
	// order they were found.
	Warnings() []string

	Close() error
}

// Open creates the backend named in the config. The data directory is
// created if needed; the memory backend ignores it.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// defaultStoreState is what loads return when no document exists yet.
func defaultStoreState() models.StoreState {
	return models.StoreState{NextID: 1}
}

// defaultControllerState starts at the FullGenerator floor.
func defaultControllerState() models.ControllerState {
	return models.ControllerState{Level: models.LevelFullGenerator}
}
