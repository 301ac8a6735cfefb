// Package session owns the editable state of one billing session.
//
// A Session is the explicit replacement for page-global state: callers hold
// it and hand snapshots of its input to the calculator. Every edit writes
// the session record back to storage before returning. Write failures are
// logged and swallowed; the session keeps working in memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/storage"
)

var (
	ErrRoomIndex         = errors.New("room index out of range")
	ErrInvalidLabelMode  = errors.New("invalid label mode")
	ErrInvalidSharedMode = errors.New("invalid shared mode")
	ErrInvalidAllocation = errors.New("invalid allocation method")
)

// Session holds the current BillInput and presentation options.
// It is not safe for concurrent use.
type Session struct {
	store    storage.Store
	now      func() time.Time
	failures storage.FailureRecorder

	in   models.BillInput
	opts models.ReportOptions
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithFailureRecorder reports swallowed persistence failures to r.
func WithFailureRecorder(r storage.FailureRecorder) Option {
	return func(s *Session) { s.failures = r }
}

// New returns a fresh session backed by store. Nothing is loaded; call
// Load to resume the last saved session.
func New(store storage.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		now:   time.Now,
		in:    models.NewBillInput(),
		opts:  models.DefaultReportOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input returns a snapshot of the current input.
func (s *Session) Input() models.BillInput {
	return s.in.Clone()
}

// Options returns the current presentation options.
func (s *Session) Options() models.ReportOptions {
	return s.opts
}

// HasSaved reports whether a session record exists in storage. Storage
// errors read as false, which hides the "load last session" affordance.
func (s *Session) HasSaved(ctx context.Context) bool {
	_, err := s.store.LoadSession(ctx)
	return err == nil
}

// Load replaces the current state with the saved session record. It
// reports false and leaves the state untouched when there is no usable
// record.
func (s *Session) Load(ctx context.Context) bool {
	rec, err := s.store.LoadSession(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Session: failed to load record", "error", err)
		}
		return false
	}
	in, opts := rec.Restore()
	opts.ShowPrecisePrice = s.opts.ShowPrecisePrice
	s.in, s.opts = in, opts
	slog.Info("Session loaded", "updated_at", rec.UpdatedAt, "rooms", len(in.Rooms))
	return true
}

// Reset deletes the saved record and restores a fresh session.
func (s *Session) Reset(ctx context.Context) {
	if err := s.store.DeleteSession(ctx); err != nil {
		s.persistFailed("delete_session", err)
	}
	s.in = models.NewBillInput()
	s.opts = models.DefaultReportOptions()
}

// SetPeriod sets the free-text billing period label.
func (s *Session) SetPeriod(ctx context.Context, period string) {
	s.in.Period = period
	s.persist(ctx)
}

// SetTotalKwh stores the metered total as typed.
func (s *Session) SetTotalKwh(ctx context.Context, raw string) {
	s.in.TotalKwh = raw
	s.persist(ctx)
}

// SetBillAmount stores the bill amount as typed.
func (s *Session) SetBillAmount(ctx context.Context, raw string) {
	s.in.BillAmount = raw
	s.persist(ctx)
}

// SetRoomCount clamps n to 1..20. Growing appends empty rooms; shrinking
// drops rooms from the end and their data is gone.
func (s *Session) SetRoomCount(ctx context.Context, n int) {
	s.in.Rooms = models.ResizeRooms(s.in.Rooms, n)
	if s.in.LabelMode == models.LabelCustom {
		models.FillBlankLabels(s.in.Rooms, models.LabelAlpha)
	}
	s.persist(ctx)
}

// SetRoomKwh stores room idx's reading as typed. It returns ErrRoomIndex
// when idx is out of range.
func (s *Session) SetRoomKwh(ctx context.Context, idx int, raw string) error {
	if idx < 0 || idx >= len(s.in.Rooms) {
		return fmt.Errorf("%w: %d", ErrRoomIndex, idx)
	}
	s.in.Rooms[idx].Kwh = raw
	s.persist(ctx)
	return nil
}

// SetRoomLabel stores the custom label of room idx. The label is kept in
// every mode but only shown in custom mode.
func (s *Session) SetRoomLabel(ctx context.Context, idx int, label string) error {
	if idx < 0 || idx >= len(s.in.Rooms) {
		return fmt.Errorf("%w: %d", ErrRoomIndex, idx)
	}
	s.in.Rooms[idx].Label = label
	s.persist(ctx)
	return nil
}

// SetLabelMode switches label mode. Entering custom mode back-fills blank
// labels with the labels the previous mode showed; leaving it keeps the
// custom labels for later.
func (s *Session) SetLabelMode(ctx context.Context, mode models.LabelMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLabelMode, mode)
	}
	if mode == models.LabelCustom && s.in.LabelMode != models.LabelCustom {
		models.FillBlankLabels(s.in.Rooms, s.in.LabelMode)
	}
	s.in.LabelMode = mode
	s.persist(ctx)
	return nil
}

// SetSharedMode switches between inferred and manual shared consumption.
func (s *Session) SetSharedMode(ctx context.Context, mode models.SharedMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSharedMode, mode)
	}
	s.in.SharedMode = mode
	s.persist(ctx)
	return nil
}

// SetSharedKwhManual stores the manual shared figure. It is kept when the
// mode switches back to auto.
func (s *Session) SetSharedKwhManual(ctx context.Context, raw string) {
	s.in.SharedKwhManual = raw
	s.persist(ctx)
}

// SetAllocation selects who pays for shared consumption.
func (s *Session) SetAllocation(ctx context.Context, method models.AllocationMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAllocation, method)
	}
	s.in.Allocation = method
	s.persist(ctx)
	return nil
}

// SetOptions replaces the presentation options. ShowPrecisePrice is kept
// in memory only.
func (s *Session) SetOptions(ctx context.Context, opts models.ReportOptions) {
	s.opts = opts
	s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) {
	rec := models.NewSessionRecord(s.in, s.opts, s.now())
	if err := s.store.SaveSession(ctx, &rec); err != nil {
		s.persistFailed("save_session", err)
	}
}

func (s *Session) persistFailed(op string, err error) {
	slog.Warn("Session: persistence failed, continuing in memory", "op", op, "error", err)
	if s.failures != nil {
		s.failures.PersistFailed(op)
	}
}
