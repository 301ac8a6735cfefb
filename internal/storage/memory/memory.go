// Package memory provides an in-process storage.Store. Nothing survives a
// restart; it backs tests and the "memory" backend for running without
// durable storage.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store holds copies of the records it is given.
type Store struct {
	mu      sync.Mutex
	session *models.SessionRecord
	history []models.HistoryEntry
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) LoadSession(_ context.Context) (*models.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, storage.ErrNotFound
	}
	rec := copySession(*s.session)
	return &rec, nil
}

func (s *Store) SaveSession(_ context.Context, record *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := copySession(*record)
	s.session = &rec
	return nil
}

func (s *Store) DeleteSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *Store) LoadHistory(_ context.Context) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry(nil), s.history...), nil
}

func (s *Store) SaveHistory(_ context.Context, entries []models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]models.HistoryEntry(nil), entries...)
	return nil
}

func (s *Store) Close() error { return nil }

func copySession(rec models.SessionRecord) models.SessionRecord {
	rec.Rooms = append([]models.SessionRoom(nil), rec.Rooms...)
	return rec
}
