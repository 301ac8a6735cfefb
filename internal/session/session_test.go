package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/storage/memory"
)

// brokenStore fails every write, like storage with its quota exhausted.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) SaveSession(context.Context, *models.SessionRecord) error {
	return errors.New("quota exceeded")
}

func (brokenStore) DeleteSession(context.Context) error {
	return errors.New("quota exceeded")
}

type failureCounter struct{ ops []string }

func (f *failureCounter) PersistFailed(op string) { f.ops = append(f.ops, op) }

func fixedNow() time.Time {
	return time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
}

func TestNewSessionDefaults(t *testing.T) {
	s := New(memory.New())
	in := s.Input()
	if len(in.Rooms) != models.DefaultRoomCount {
		t.Errorf("len(Rooms) = %d, want %d", len(in.Rooms), models.DefaultRoomCount)
	}
	if in.LabelMode != models.LabelAlpha || in.SharedMode != models.SharedAuto || in.Allocation != models.AllocProportional {
		t.Errorf("Unexpected modes: %+v", in)
	}
	if !s.Options().ExportIncludeDate {
		t.Error("Expected ExportIncludeDate to default to true")
	}
}

func TestEditsArePersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := New(store, WithClock(fixedNow))

	if s.HasSaved(ctx) {
		t.Fatal("Expected no saved session before the first edit")
	}

	s.SetPeriod(ctx, "2025/03")
	s.SetTotalKwh(ctx, "1000")
	s.SetBillAmount(ctx, "3000")
	s.SetRoomCount(ctx, 3)
	if err := s.SetRoomKwh(ctx, 2, "400"); err != nil {
		t.Fatalf("SetRoomKwh failed: %v", err)
	}
	if err := s.SetSharedMode(ctx, models.SharedManual); err != nil {
		t.Fatalf("SetSharedMode failed: %v", err)
	}
	s.SetSharedKwhManual(ctx, "50")
	if err := s.SetAllocation(ctx, models.AllocEqual); err != nil {
		t.Fatalf("SetAllocation failed: %v", err)
	}
	s.SetOptions(ctx, models.ReportOptions{IncludeSharedNote: true, ShowPrecisePrice: true})

	rec, err := store.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if rec.Period != "2025/03" || rec.TotalKwh != "1000" || rec.BillAmount != "3000" {
		t.Errorf("Totals mismatch: %+v", rec)
	}
	if rec.RoomCount != 3 || rec.Rooms[2].RoomKwh != "400" {
		t.Errorf("Rooms mismatch: %+v", rec.Rooms)
	}
	if rec.SharedMode != models.SharedManual || rec.SharedKwh != "50" || rec.Allocation != models.AllocEqual {
		t.Errorf("Shared/allocation mismatch: %+v", rec)
	}
	if !rec.IncludeSharedNote || rec.ExportIncludeDate {
		t.Errorf("Options mismatch: %+v", rec)
	}
	if !rec.UpdatedAt.Equal(fixedNow()) {
		t.Errorf("UpdatedAt = %v", rec.UpdatedAt)
	}
	if !s.HasSaved(ctx) {
		t.Error("Expected HasSaved after edits")
	}
}

func TestSetterValidation(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New())

	if err := s.SetRoomKwh(ctx, 5, "1"); !errors.Is(err, ErrRoomIndex) {
		t.Errorf("SetRoomKwh(5) = %v, want ErrRoomIndex", err)
	}
	if err := s.SetRoomLabel(ctx, -1, "x"); !errors.Is(err, ErrRoomIndex) {
		t.Errorf("SetRoomLabel(-1) = %v, want ErrRoomIndex", err)
	}
	if err := s.SetLabelMode(ctx, "roman"); !errors.Is(err, ErrInvalidLabelMode) {
		t.Errorf("SetLabelMode = %v, want ErrInvalidLabelMode", err)
	}
	if err := s.SetSharedMode(ctx, "meter"); !errors.Is(err, ErrInvalidSharedMode) {
		t.Errorf("SetSharedMode = %v, want ErrInvalidSharedMode", err)
	}
	if err := s.SetAllocation(ctx, "tenant"); !errors.Is(err, ErrInvalidAllocation) {
		t.Errorf("SetAllocation = %v, want ErrInvalidAllocation", err)
	}
	in := s.Input()
	if in.LabelMode != models.LabelAlpha || in.SharedMode != models.SharedAuto || in.Allocation != models.AllocProportional {
		t.Errorf("Rejected edits must not change state: %+v", in)
	}
}

func TestSetRoomCount(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New())
	_ = s.SetRoomKwh(ctx, 0, "100")
	_ = s.SetRoomKwh(ctx, 4, "500")

	s.SetRoomCount(ctx, 2)
	if got := s.Input().Rooms; len(got) != 2 || got[0].Kwh != "100" {
		t.Errorf("Unexpected rooms after shrink: %+v", got)
	}

	s.SetRoomCount(ctx, 5)
	if got := s.Input().Rooms; len(got) != 5 || got[4].Kwh != "" {
		t.Errorf("Shrinking must drop data, got %+v", got)
	}

	s.SetRoomCount(ctx, 0)
	if got := len(s.Input().Rooms); got != models.MinRooms {
		t.Errorf("len = %d, want %d", got, models.MinRooms)
	}
	s.SetRoomCount(ctx, 21)
	if got := len(s.Input().Rooms); got != models.MaxRooms {
		t.Errorf("len = %d, want %d", got, models.MaxRooms)
	}
}

func TestSetLabelModeBackfillsCustomLabels(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New())
	s.SetRoomCount(ctx, 3)
	_ = s.SetLabelMode(ctx, models.LabelNumeric)
	_ = s.SetRoomLabel(ctx, 1, "小王")

	if err := s.SetLabelMode(ctx, models.LabelCustom); err != nil {
		t.Fatalf("SetLabelMode failed: %v", err)
	}
	want := []string{"1", "小王", "3"}
	for i, w := range want {
		if got := s.Input().Rooms[i].Label; got != w {
			t.Errorf("Rooms[%d].Label = %q, want %q", i, got, w)
		}
	}

	// Leaving custom mode keeps the labels for when the user comes back.
	_ = s.SetLabelMode(ctx, models.LabelAlpha)
	_ = s.SetLabelMode(ctx, models.LabelCustom)
	if got := s.Input().Rooms[0].Label; got != "1" {
		t.Errorf("Rooms[0].Label = %q, want 1", got)
	}
}

func TestInputIsSnapshot(t *testing.T) {
	s := New(memory.New())
	in := s.Input()
	in.Rooms[0].Kwh = "999"
	if s.Input().Rooms[0].Kwh != "" {
		t.Error("Mutating a snapshot must not change the session")
	}
}

func TestLoadAndReset(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	second := New(store)
	second.SetOptions(ctx, models.ReportOptions{ShowPrecisePrice: true})

	first := New(store)
	first.SetTotalKwh(ctx, "1000")
	first.SetRoomCount(ctx, 2)
	_ = first.SetLabelMode(ctx, models.LabelCustom)

	if !second.Load(ctx) {
		t.Fatal("Expected Load to find the saved session")
	}
	in := second.Input()
	if in.TotalKwh != "1000" || len(in.Rooms) != 2 || in.LabelMode != models.LabelCustom {
		t.Errorf("Unexpected loaded input: %+v", in)
	}
	if in.Rooms[0].Label != "A" || in.Rooms[1].Label != "B" {
		t.Errorf("Unexpected loaded labels: %+v", in.Rooms)
	}
	if !second.Options().ShowPrecisePrice {
		t.Error("Load must keep the in-memory precise price toggle")
	}

	second.Reset(ctx)
	if second.HasSaved(ctx) {
		t.Error("Expected Reset to delete the saved session")
	}
	if got := second.Input(); got.TotalKwh != "" || len(got.Rooms) != models.DefaultRoomCount {
		t.Errorf("Expected a fresh session after Reset, got %+v", got)
	}
	if second.Load(ctx) {
		t.Error("Expected Load to report false with nothing saved")
	}
}

func TestPersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	counter := &failureCounter{}
	s := New(brokenStore{memory.New()}, WithFailureRecorder(counter))

	s.SetTotalKwh(ctx, "1000")
	s.Reset(ctx)
	s.SetBillAmount(ctx, "3000")

	if got := s.Input().BillAmount; got != "3000" {
		t.Errorf("BillAmount = %q, want in-memory edit to survive", got)
	}
	want := []string{"save_session", "delete_session", "save_session"}
	if len(counter.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", counter.ops, want)
	}
	for i := range want {
		if counter.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, counter.ops[i], want[i])
		}
	}
	if s.HasSaved(ctx) {
		t.Error("Expected nothing to be saved")
	}
}
