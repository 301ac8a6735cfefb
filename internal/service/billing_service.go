package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/wattsplit/internal/calculator"
	"github.com/mmynk/wattsplit/internal/history"
	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/report"
	"github.com/mmynk/wattsplit/internal/session"
	"github.com/mmynk/wattsplit/pkg/api"
)

var errHistoryNotFound = errors.New("history entry not found")

// BillingService implements the Connect BillingService. It serialises all
// calls, since the session and history it wraps are single-threaded.
type BillingService struct {
	api.UnimplementedBillingServiceHandler

	mu        sync.Mutex
	session   *session.Session
	history   *history.History
	now       func() time.Time
	publicURL string
}

// Option configures a BillingService.
type Option func(*BillingService)

// WithPublicURL sets the source URL printed in export metadata.
func WithPublicURL(url string) Option {
	return func(s *BillingService) { s.publicURL = url }
}

// WithClock overrides the clock used for export metadata.
func WithClock(now func() time.Time) Option {
	return func(s *BillingService) { s.now = now }
}

// NewBillingService creates a new BillingService over a session and its history.
func NewBillingService(sess *session.Session, hist *history.History, opts ...Option) *BillingService {
	s := &BillingService{session: sess, history: hist, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSession returns the current input, warnings and unit price.
func (s *BillingService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return connect.NewResponse(&api.GetSessionResponse{State: s.state(ctx)}), nil
}

// UpdateSession applies a partial edit. The whole patch is checked before
// anything changes, so a rejected patch leaves the session untouched.
func (s *BillingService) UpdateSession(ctx context.Context, req *connect.Request[api.UpdateSessionRequest]) (*connect.Response[api.UpdateSessionResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patch := req.Msg
	if err := s.checkPatch(patch); err != nil {
		slog.Warn("UpdateSession: rejected patch", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if patch.Period != nil {
		s.session.SetPeriod(ctx, *patch.Period)
	}
	if patch.TotalKwh != nil {
		s.session.SetTotalKwh(ctx, *patch.TotalKwh)
	}
	if patch.BillAmount != nil {
		s.session.SetBillAmount(ctx, *patch.BillAmount)
	}
	if patch.RoomCount != nil {
		s.session.SetRoomCount(ctx, *patch.RoomCount)
	}
	if patch.LabelMode != nil {
		if err := s.session.SetLabelMode(ctx, models.LabelMode(*patch.LabelMode)); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	for _, edit := range patch.Rooms {
		if edit.Label != nil {
			if err := s.session.SetRoomLabel(ctx, edit.Index, *edit.Label); err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
		}
		if edit.Kwh != nil {
			if err := s.session.SetRoomKwh(ctx, edit.Index, *edit.Kwh); err != nil {
				return nil, connect.NewError(connect.CodeInvalidArgument, err)
			}
		}
	}
	if patch.SharedMode != nil {
		if err := s.session.SetSharedMode(ctx, models.SharedMode(*patch.SharedMode)); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	if patch.SharedKwh != nil {
		s.session.SetSharedKwhManual(ctx, *patch.SharedKwh)
	}
	if patch.Allocation != nil {
		if err := s.session.SetAllocation(ctx, models.AllocationMethod(*patch.Allocation)); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}
	if patch.Options != nil {
		s.session.SetOptions(ctx, fromAPIOptions(*patch.Options))
	}

	return connect.NewResponse(&api.UpdateSessionResponse{State: s.state(ctx)}), nil
}

func (s *BillingService) checkPatch(patch *api.UpdateSessionRequest) error {
	if patch.LabelMode != nil && !models.LabelMode(*patch.LabelMode).Valid() {
		return fmt.Errorf("%w: %q", session.ErrInvalidLabelMode, *patch.LabelMode)
	}
	if patch.SharedMode != nil && !models.SharedMode(*patch.SharedMode).Valid() {
		return fmt.Errorf("%w: %q", session.ErrInvalidSharedMode, *patch.SharedMode)
	}
	if patch.Allocation != nil && !models.AllocationMethod(*patch.Allocation).Valid() {
		return fmt.Errorf("%w: %q", session.ErrInvalidAllocation, *patch.Allocation)
	}

	rooms := len(s.session.Input().Rooms)
	if patch.RoomCount != nil {
		rooms = models.ClampRoomCount(*patch.RoomCount)
	}
	for _, edit := range patch.Rooms {
		if edit.Index < 0 || edit.Index >= rooms {
			return fmt.Errorf("%w: %d", session.ErrRoomIndex, edit.Index)
		}
	}
	return nil
}

// LoadLastSession restores the saved session, if there is one.
func (s *BillingService) LoadLastSession(ctx context.Context, req *connect.Request[api.LoadLastSessionRequest]) (*connect.Response[api.LoadLastSessionResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := s.session.Load(ctx)
	return connect.NewResponse(&api.LoadLastSessionResponse{
		Loaded: loaded,
		State:  s.state(ctx),
	}), nil
}

// ResetSession discards the saved session and starts over.
func (s *BillingService) ResetSession(ctx context.Context, req *connect.Request[api.ResetSessionRequest]) (*connect.Response[api.ResetSessionResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Reset(ctx)
	slog.Info("Session reset")
	return connect.NewResponse(&api.ResetSessionResponse{State: s.state(ctx)}), nil
}

// ValidateStage runs the gates up to and including the requested stage.
func (s *BillingService) ValidateStage(ctx context.Context, req *connect.Request[api.ValidateStageRequest]) (*connect.Response[api.ValidateStageResponse], error) {
	stage, err := parseStage(req.Msg.Stage)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := calculator.ValidateStage(s.session.Input(), stage)
	return connect.NewResponse(&api.ValidateStageResponse{Verdict: toAPIVerdict(v)}), nil
}

// Compute returns the allocation, or the failing verdict when the input is
// not yet valid.
func (s *BillingService) Compute(ctx context.Context, req *connect.Request[api.ComputeRequest]) (*connect.Response[api.ComputeResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.session.Input()
	res, v := compute(in)
	resp := &api.ComputeResponse{Verdict: toAPIVerdict(v)}
	if res != nil {
		resp.Available = true
		resp.Result = toAPIResult(in, res)
	}
	return connect.NewResponse(resp), nil
}

// BuildReport renders the text report for the current input.
func (s *BillingService) BuildReport(ctx context.Context, req *connect.Request[api.BuildReportRequest]) (*connect.Response[api.BuildReportResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.session.Input()
	res, v := compute(in)
	resp := &api.BuildReportResponse{Verdict: toAPIVerdict(v)}
	if res != nil {
		opts := s.session.Options()
		resp.Available = true
		resp.Report = report.Build(in, res, opts)
		resp.ExportMeta = report.ExportMeta(opts, s.now(), s.publicURL)
	}
	return connect.NewResponse(resp), nil
}

// AdvanceStage checks whether the user may leave a stage. Leaving the last
// stage records the calculation into history.
func (s *BillingService) AdvanceStage(ctx context.Context, req *connect.Request[api.AdvanceStageRequest]) (*connect.Response[api.AdvanceStageResponse], error) {
	stage, err := parseStage(req.Msg.From)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.session.Input()
	v := calculator.ValidateStage(in, stage)
	resp := &api.AdvanceStageResponse{Verdict: toAPIVerdict(v), NextStage: int(stage)}
	if !v.OK {
		slog.Debug("AdvanceStage: blocked", "from", stage, "failed_stage", v.Stage, "reason", v.Reason())
		return connect.NewResponse(resp), nil
	}

	resp.Advanced = true
	resp.NextStage = int(stage) + 1
	if stage != calculator.StageShared {
		return connect.NewResponse(resp), nil
	}

	res, err := calculator.Compute(in)
	if err != nil {
		// Unreachable: the gate above passed.
		slog.Error("AdvanceStage: compute failed after gates passed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	entry, inserted := s.history.Record(ctx, in, res, report.Build(in, res, s.session.Options()))
	resp.Recorded = inserted
	if inserted {
		e := toAPIHistoryEntry(entry)
		resp.Entry = &e
	}
	return connect.NewResponse(resp), nil
}

// ListHistory returns every history entry, newest first.
func (s *BillingService) ListHistory(ctx context.Context, req *connect.Request[api.ListHistoryRequest]) (*connect.Response[api.ListHistoryResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history.List()
	out := make([]api.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = toAPIHistoryEntry(e)
	}
	return connect.NewResponse(&api.ListHistoryResponse{Entries: out}), nil
}

// GetHistoryEntry returns one entry, or NotFound.
func (s *BillingService) GetHistoryEntry(ctx context.Context, req *connect.Request[api.GetHistoryEntryRequest]) (*connect.Response[api.GetHistoryEntryResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.history.Find(req.Msg.ID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("%w: %s", errHistoryNotFound, req.Msg.ID))
	}
	return connect.NewResponse(&api.GetHistoryEntryResponse{Entry: toAPIHistoryEntry(entry)}), nil
}

// DeleteHistoryEntry removes one entry. Unknown ids are not an error.
func (s *BillingService) DeleteHistoryEntry(ctx context.Context, req *connect.Request[api.DeleteHistoryEntryRequest]) (*connect.Response[api.DeleteHistoryEntryResponse], error) {
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := s.history.Delete(ctx, req.Msg.ID)
	slog.Info("History entry deleted", "id", req.Msg.ID, "deleted", deleted)
	return connect.NewResponse(&api.DeleteHistoryEntryResponse{Deleted: deleted}), nil
}

// ClearHistory removes every entry.
func (s *BillingService) ClearHistory(ctx context.Context, req *connect.Request[api.ClearHistoryRequest]) (*connect.Response[api.ClearHistoryResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear(ctx)
	slog.Info("History cleared")
	return connect.NewResponse(&api.ClearHistoryResponse{}), nil
}

// state snapshots the session for a response. Callers hold s.mu.
func (s *BillingService) state(ctx context.Context) api.SessionState {
	in := s.session.Input()
	opts := s.session.Options()

	st := api.SessionState{
		Session:  toAPISession(in, opts),
		HasSaved: s.session.HasSaved(ctx),
		Preview:  toAPIPreview(calculator.PreviewOf(in)),
	}
	for _, w := range calculator.Warnings(in) {
		st.Warnings = append(st.Warnings, api.Warning{Code: string(w.Code), Message: w.Message})
	}
	if avg, ok := calculator.AvgPrice(in); ok {
		st.AvgPrice = report.FormatPrice(avg, opts.ShowPrecisePrice)
	}
	return st
}

// compute runs every gate and, if they pass, the allocation.
func compute(in models.BillInput) (*models.BillResult, calculator.Verdict) {
	v := calculator.ValidateStage(in, calculator.StageShared)
	if !v.OK {
		return nil, v
	}
	res, err := calculator.Compute(in)
	if err != nil {
		return nil, v
	}
	return res, v
}

func parseStage(n int) (calculator.Stage, error) {
	stage := calculator.Stage(n)
	if stage < calculator.StageTotals || stage > calculator.StageShared {
		return 0, fmt.Errorf("%w: got %d", calculator.ErrInvalidStage, n)
	}
	return stage, nil
}
