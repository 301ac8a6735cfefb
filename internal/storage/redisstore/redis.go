// Package redisstore provides a Redis-backed implementation of the storage.Store
// interface. Each record is a JSON document under a namespaced key, so the
// layout matches what a browser would keep in local storage.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/storage"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second

	sessionSuffix = "last_bill"
	historySuffix = "history_v1"
)

var _ storage.Store = (*Store)(nil)

// Store keeps the session record and history list in Redis.
type Store struct {
	client     *redis.Client
	sessionKey string
	historyKey string
}

// NewClient returns a configured go-redis client and validates the
// connection with PING.
func NewClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

// NewStore returns a store whose keys live under prefix, e.g.
// "wattsplit:last_bill" and "wattsplit:history_v1".
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client:     client,
		sessionKey: key(prefix, sessionSuffix),
		historyKey: key(prefix, historySuffix),
	}
}

func key(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	return prefix + ":" + suffix
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// LoadSession returns the saved session record.
func (s *Store) LoadSession(ctx context.Context) (*models.SessionRecord, error) {
	data, err := s.client.Get(ctx, s.sessionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get session: %w", err)
	}
	record, err := models.DecodeSessionRecord(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveSession overwrites the session record.
func (s *Store) SaveSession(ctx context.Context, record *models.SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.sessionKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set session: %w", err)
	}
	return nil
}

// DeleteSession removes the session record.
func (s *Store) DeleteSession(ctx context.Context) error {
	if err := s.client.Del(ctx, s.sessionKey).Err(); err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

// LoadHistory returns the stored history list. A missing key or a value
// that is not a JSON array reads as empty history.
func (s *Store) LoadHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	data, err := s.client.Get(ctx, s.historyKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get history: %w", err)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// SaveHistory replaces the stored history list.
func (s *Store) SaveHistory(ctx context.Context, entries []models.HistoryEntry) error {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("redis: encode history: %w", err)
	}
	if err := s.client.Set(ctx, s.historyKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set history: %w", err)
	}
	return nil
}
