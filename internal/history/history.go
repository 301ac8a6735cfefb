// Package history keeps the bounded, newest-first log of completed
// calculations.
package history

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/storage"
)

// Limit is the maximum number of entries kept. Recording past it evicts the
// oldest entry.
const Limit = 50

// TimeLayout is the created_at format: UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Observer receives history events.
type Observer interface {
	storage.FailureRecorder
	HistoryRecorded(inserted bool)
	HistorySize(n int)
}

// History is the in-memory view of the stored history. Every mutation
// writes the whole list back to storage; write failures are logged and
// the in-memory list stays authoritative.
type History struct {
	store    storage.Store
	now      func() time.Time
	newID    func() string
	observer Observer

	entries []models.HistoryEntry
}

// Option configures a History.
type Option func(*History)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(newID func() string) Option {
	return func(h *History) { h.newID = newID }
}

// WithObserver reports history activity and swallowed persistence
// failures to o.
func WithObserver(o Observer) Option {
	return func(h *History) { h.observer = o }
}

// New loads the stored history once. A failed load starts from an empty
// history.
func New(ctx context.Context, store storage.Store, opts ...Option) *History {
	h := &History{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Reload(ctx)
	return h
}

// Reload re-reads the stored history, discarding the in-memory list.
func (h *History) Reload(ctx context.Context) {
	entries, err := h.store.LoadHistory(ctx)
	if err != nil {
		slog.Warn("History: failed to load, starting empty", "error", err)
		entries = nil
	}
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	h.entries = entries
	h.reportSize()
}

// List returns the entries, newest first.
func (h *History) List() []models.HistoryEntry {
	return append([]models.HistoryEntry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Find returns the entry with the given id.
func (h *History) Find(id string) (models.HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.HistoryEntry{}, false
}

// Record builds an entry from a fully valid input and its result, then
// prepends it unless the newest entry carries the same signature. It
// returns the built entry and whether it was inserted.
func (h *History) Record(ctx context.Context, in models.BillInput, res *models.BillResult, report string) (models.HistoryEntry, bool) {
	entry := h.build(in, res, report)

	if len(h.entries) > 0 && h.entries[0].Signature == entry.Signature {
		slog.Debug("History: skipped duplicate entry", "signature", entry.Signature)
		h.recorded(false)
		return entry, false
	}

	next := make([]models.HistoryEntry, 0, len(h.entries)+1)
	next = append(next, entry)
	next = append(next, h.entries...)
	if len(next) > Limit {
		next = next[:Limit]
	}
	h.entries = next
	h.persist(ctx)

	slog.Info("History: recorded entry", "id", entry.ID, "period", entry.Period, "entries", len(h.entries))
	h.recorded(true)
	return entry, true
}

// Delete removes the entry with the given id. Unknown ids are a no-op and
// report false.
func (h *History) Delete(ctx context.Context, id string) bool {
	for i, e := range h.entries {
		if e.ID != id {
			continue
		}
		next := make([]models.HistoryEntry, 0, len(h.entries)-1)
		next = append(next, h.entries[:i]...)
		next = append(next, h.entries[i+1:]...)
		h.entries = next
		h.persist(ctx)
		return true
	}
	return false
}

// Clear empties the history.
func (h *History) Clear(ctx context.Context) {
	h.entries = nil
	h.persist(ctx)
}

func (h *History) build(in models.BillInput, res *models.BillResult, report string) models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:         h.newID(),
		CreatedAt:  h.now().UTC().Format(TimeLayout),
		Period:     in.Period,
		TotalKwh:   res.TotalKwh,
		BillAmount: res.BillAmount,
		RoomCount:  len(in.Rooms),
		LabelMode:  in.LabelMode,
		Allocation: in.Allocation,
		SharedMode: in.SharedMode,
		Rooms:      make([]models.HistoryRoom, len(in.Rooms)),
		TextReport: report,
	}
	if in.SharedMode == models.SharedManual {
		v := in.ManualShared().Value
		entry.SharedKwh = &v
	}
	for i, room := range in.Rooms {
		entry.Rooms[i] = models.HistoryRoom{
			Label:   models.DisplayLabel(in.LabelMode, room.Label, i),
			RoomKwh: in.RoomKwh(i).Value,
		}
	}
	entry.Signature = Signature(entry)
	return entry
}

// signed lists the fields that make two entries the same calculation.
// Field order is fixed so the encoding is stable.
type signed struct {
	Period     string                  `json:"period"`
	TotalKwh   float64                 `json:"total_kwh"`
	BillAmount float64                 `json:"bill_amount"`
	Rooms      []models.HistoryRoom    `json:"rooms"`
	SharedMode models.SharedMode       `json:"shared_kwh_mode"`
	SharedKwh  *float64                `json:"shared_kwh"`
	Allocation models.AllocationMethod `json:"allocation_method"`
	LabelMode  models.LabelMode        `json:"label_mode"`
}

// Signature returns the BLAKE2b-256 hex digest of the entry's meaningful
// fields. ID, CreatedAt, RoomCount and TextReport do not contribute.
func Signature(e models.HistoryEntry) string {
	data, err := json.Marshal(signed{
		Period:     e.Period,
		TotalKwh:   e.TotalKwh,
		BillAmount: e.BillAmount,
		Rooms:      e.Rooms,
		SharedMode: e.SharedMode,
		SharedKwh:  e.SharedKwh,
		Allocation: e.Allocation,
		LabelMode:  e.LabelMode,
	})
	if err != nil {
		// Only non-finite floats fail to encode, and parsed inputs never hold one.
		panic(err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (h *History) persist(ctx context.Context) {
	if err := h.store.SaveHistory(ctx, h.entries); err != nil {
		slog.Warn("History: persistence failed, continuing in memory", "error", err)
		if h.observer != nil {
			h.observer.PersistFailed("save_history")
		}
	}
	h.reportSize()
}

func (h *History) recorded(inserted bool) {
	if h.observer != nil {
		h.observer.HistoryRecorded(inserted)
	}
}

func (h *History) reportSize() {
	if h.observer != nil {
		h.observer.HistorySize(len(h.entries))
	}
}
