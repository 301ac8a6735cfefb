// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/wattsplit/internal/models"
)

// ErrNotFound is returned when no session record has been saved yet.
var ErrNotFound = errors.New("not found")

// Store defines the durable records of one wattsplit installation: the
// last editing session and the calculation history.
// This abstraction allows swapping storage backends (SQLite, Redis, memory)
// without changing the session and history layers.
type Store interface {
	// LoadSession returns the saved session record, or ErrNotFound.
	LoadSession(ctx context.Context) (*models.SessionRecord, error)

	// SaveSession overwrites the saved session record.
	SaveSession(ctx context.Context, record *models.SessionRecord) error

	// DeleteSession removes the saved session record. Deleting a missing
	// record is not an error.
	DeleteSession(ctx context.Context) error

	// LoadHistory returns every history entry, newest first.
	LoadHistory(ctx context.Context) ([]models.HistoryEntry, error)

	// SaveHistory replaces the stored history with entries, keeping order.
	SaveHistory(ctx context.Context, entries []models.HistoryEntry) error

	// Close releases any resources held by the store.
	Close() error
}

// FailureRecorder observes persistence failures that were swallowed so the
// in-memory session could carry on.
type FailureRecorder interface {
	PersistFailed(op string)
}
