package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/wattsplit/internal/history"
	"github.com/mmynk/wattsplit/internal/middleware"
	"github.com/mmynk/wattsplit/internal/session"
	"github.com/mmynk/wattsplit/internal/storage"
	"github.com/mmynk/wattsplit/internal/storage/sqlite"
	"github.com/mmynk/wattsplit/pkg/api"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 14, 5, 0, 0, time.UTC)
}

// newTestServer serves a BillingService over store and returns a client for it.
func newTestServer(t *testing.T, store storage.Store) api.BillingServiceClient {
	t.Helper()

	ctx := context.Background()
	sess := session.New(store, session.WithClock(fixedNow))
	hist := history.New(ctx, store, history.WithClock(fixedNow))
	svc := NewBillingService(sess, hist, WithClock(fixedNow), WithPublicURL("https://bills.example.com"))

	path, handler := api.NewBillingServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewBillingServiceClient(http.DefaultClient, server.URL)
}

// setupTestServer creates a test server with a temp-dir SQLite database.
func setupTestServer(t *testing.T) (api.BillingServiceClient, storage.Store) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return newTestServer(t, store), store
}

func ptr[T any](v T) *T { return &v }

// fillProportionalExample enters 1000 kWh / 3000 over rooms 300, 300, 400.
func fillProportionalExample(t *testing.T, client api.BillingServiceClient) *api.UpdateSessionResponse {
	t.Helper()
	resp, err := client.UpdateSession(context.Background(), connect.NewRequest(&api.UpdateSessionRequest{
		TotalKwh:   ptr("1000"),
		BillAmount: ptr("3000"),
		RoomCount:  ptr(3),
		Rooms: []api.RoomEdit{
			{Index: 0, Kwh: ptr("300")},
			{Index: 1, Kwh: ptr("300")},
			{Index: 2, Kwh: ptr("400")},
		},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	return resp.Msg
}

func TestGetSession_Defaults(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.GetSession(context.Background(), connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}

	st := resp.Msg.State
	if len(st.Session.Rooms) != 5 {
		t.Errorf("expected 5 rooms, got %d", len(st.Session.Rooms))
	}
	if st.Session.LabelMode != "alpha" || st.Session.SharedMode != "auto" || st.Session.Allocation != "proportional" {
		t.Errorf("unexpected modes: %+v", st.Session)
	}
	if !st.Session.Options.ExportIncludeDate {
		t.Error("expected export_include_date to default to true")
	}
	if st.HasSaved {
		t.Error("expected no saved session on a fresh store")
	}
	if st.AvgPrice != "" {
		t.Errorf("expected no unit price before totals, got %q", st.AvgPrice)
	}
}

func TestUpdateSession(t *testing.T) {
	client, _ := setupTestServer(t)

	st := fillProportionalExample(t, client).State
	if !st.HasSaved {
		t.Error("expected edits to be saved")
	}
	if st.AvgPrice != "3.00" {
		t.Errorf("expected avg price 3.00, got %q", st.AvgPrice)
	}
	if len(st.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", st.Warnings)
	}

	resp, err := client.UpdateSession(context.Background(), connect.NewRequest(&api.UpdateSessionRequest{
		Rooms:   []api.RoomEdit{{Index: 2, Kwh: ptr("300")}},
		Options: &api.ReportOptions{ShowPrecisePrice: true},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	st = resp.Msg.State
	if st.AvgPrice != "3.0000" {
		t.Errorf("expected precise avg price, got %q", st.AvgPrice)
	}
	if len(st.Warnings) != 1 || st.Warnings[0].Code != "rooms_below_total" {
		t.Errorf("expected rooms_below_total warning, got %+v", st.Warnings)
	}
}

func TestUpdateSession_PreviewWhileBlocked(t *testing.T) {
	client, _ := setupTestServer(t)
	fillProportionalExample(t, client)

	resp, err := client.UpdateSession(context.Background(), connect.NewRequest(&api.UpdateSessionRequest{
		Rooms: []api.RoomEdit{{Index: 1, Kwh: ptr("abc")}},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	p := resp.Msg.State.Preview
	if p.SumRoomKwh != 700 || p.DeltaKwh != 300 || p.AutoSharedKwh != 300 || p.UsageTotalKwh != 1000 {
		t.Errorf("unexpected preview: %+v", p)
	}

	v, err := client.ValidateStage(context.Background(), connect.NewRequest(&api.ValidateStageRequest{Stage: 2}))
	if err != nil {
		t.Fatalf("ValidateStage failed: %v", err)
	}
	if v.Msg.Verdict.OK {
		t.Error("expected the invalid room to block stage 2")
	}
}

func TestUpdateSession_InvalidPatch(t *testing.T) {
	client, _ := setupTestServer(t)
	fillProportionalExample(t, client)

	tests := []struct {
		name  string
		patch *api.UpdateSessionRequest
	}{
		{"unknown label mode", &api.UpdateSessionRequest{LabelMode: ptr("roman")}},
		{"unknown shared mode", &api.UpdateSessionRequest{SharedMode: ptr("meter")}},
		{"unknown allocation", &api.UpdateSessionRequest{Allocation: ptr("tenant")}},
		{"room index out of range", &api.UpdateSessionRequest{Rooms: []api.RoomEdit{{Index: 3, Kwh: ptr("1")}}}},
		{"room index beyond new count", &api.UpdateSessionRequest{
			RoomCount: ptr(2),
			Rooms:     []api.RoomEdit{{Index: 2, Kwh: ptr("1")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.patch.TotalKwh = ptr("9999")
			_, err := client.UpdateSession(context.Background(), connect.NewRequest(tt.patch))
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Fatalf("expected InvalidArgument, got %v", err)
			}
		})
	}

	resp, err := client.GetSession(context.Background(), connect.NewRequest(&api.GetSessionRequest{}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if resp.Msg.State.Session.TotalKwh != "1000" || len(resp.Msg.State.Session.Rooms) != 3 {
		t.Errorf("rejected patches must not change the session: %+v", resp.Msg.State.Session)
	}
}

func TestUpdateSession_CustomLabels(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.UpdateSession(context.Background(), connect.NewRequest(&api.UpdateSessionRequest{
		RoomCount: ptr(3),
		LabelMode: ptr("custom"),
		Rooms:     []api.RoomEdit{{Index: 1, Label: ptr("小王")}},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	rooms := resp.Msg.State.Session.Rooms
	want := []string{"A", "小王", "C"}
	for i, w := range want {
		if rooms[i].Label != w {
			t.Errorf("room %d label: expected %q, got %q", i, w, rooms[i].Label)
		}
	}
}

func TestValidateStage(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.ValidateStage(ctx, connect.NewRequest(&api.ValidateStageRequest{Stage: 1}))
	if err != nil {
		t.Fatalf("ValidateStage failed: %v", err)
	}
	if resp.Msg.Verdict.OK || resp.Msg.Verdict.Kind != "input_shape" || resp.Msg.Verdict.Reason == "" {
		t.Errorf("expected input_shape failure, got %+v", resp.Msg.Verdict)
	}

	fillProportionalExample(t, client)
	_, err = client.UpdateSession(ctx, connect.NewRequest(&api.UpdateSessionRequest{
		Rooms: []api.RoomEdit{{Index: 2, Kwh: ptr("500")}},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	// Asking about stage 3 reports the earlier stage 2 hard blocker.
	resp, err = client.ValidateStage(ctx, connect.NewRequest(&api.ValidateStageRequest{Stage: 3}))
	if err != nil {
		t.Fatalf("ValidateStage failed: %v", err)
	}
	v := resp.Msg.Verdict
	if v.OK || v.Stage != 2 || v.Kind != "hard_blocker" {
		t.Errorf("expected stage 2 hard blocker, got %+v", v)
	}

	for _, stage := range []int{0, 4} {
		_, err := client.ValidateStage(ctx, connect.NewRequest(&api.ValidateStageRequest{Stage: stage}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("stage %d: expected InvalidArgument, got %v", stage, err)
		}
	}
}

func TestCompute(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.Compute(ctx, connect.NewRequest(&api.ComputeRequest{}))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if resp.Msg.Available || resp.Msg.Result != nil || resp.Msg.Verdict.Stage != 1 {
		t.Errorf("expected result unavailable at stage 1, got %+v", resp.Msg)
	}

	fillProportionalExample(t, client)
	resp, err = client.Compute(ctx, connect.NewRequest(&api.ComputeRequest{}))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if !resp.Msg.Available || !resp.Msg.Verdict.OK {
		t.Fatalf("expected result, got %+v", resp.Msg)
	}

	res := resp.Msg.Result
	if res.AvgPrice != 3 || res.SharedKwh != 0 || res.SumFinal != 3000 {
		t.Errorf("unexpected totals: %+v", res)
	}
	wantCosts := []float64{900, 900, 1200}
	wantLabels := []string{"A房", "B房", "C房"}
	for i := range wantCosts {
		if res.Rooms[i].RawCost != wantCosts[i] {
			t.Errorf("room %d raw cost: expected %v, got %v", i, wantCosts[i], res.Rooms[i].RawCost)
		}
		if res.Rooms[i].Label != wantLabels[i] {
			t.Errorf("room %d label: expected %q, got %q", i, wantLabels[i], res.Rooms[i].Label)
		}
	}
	if res.Reconciliation.Status != "consistent" || res.Reconciliation.Notice != "房間應付加總 3,000.00 元，與帳單一致。" {
		t.Errorf("unexpected reconciliation: %+v", res.Reconciliation)
	}
}

func TestCompute_ProportionalZeroUsage(t *testing.T) {
	client, _ := setupTestServer(t)

	_, err := client.UpdateSession(context.Background(), connect.NewRequest(&api.UpdateSessionRequest{
		TotalKwh:   ptr("100"),
		BillAmount: ptr("300"),
		RoomCount:  ptr(2),
		Rooms:      []api.RoomEdit{{Index: 0, Kwh: ptr("0")}, {Index: 1, Kwh: ptr("0")}},
	}))
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	resp, err := client.Compute(context.Background(), connect.NewRequest(&api.ComputeRequest{}))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	v := resp.Msg.Verdict
	if resp.Msg.Available || v.Stage != 3 || v.Kind != "hard_blocker" {
		t.Errorf("expected stage 3 hard blocker, got %+v", resp.Msg)
	}
}

func TestBuildReport(t *testing.T) {
	client, _ := setupTestServer(t)
	fillProportionalExample(t, client)

	resp, err := client.BuildReport(context.Background(), connect.NewRequest(&api.BuildReportRequest{}))
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	want := "【本期電費明細】\n" +
		"台電總度數：1,000 度\n" +
		"台電金額：3,000 元\n" +
		"平均每度：3.00 元/度\n" +
		"公共用電：0 度（按用電比例分攤）\n" +
		"\n" +
		"A房：用電300度，應付 900.00 元\n" +
		"B房：用電300度，應付 900.00 元\n" +
		"C房：用電400度，應付 1,200.00 元\n" +
		"\n" +
		"合計：3,000.00 元（與帳單一致）"
	if resp.Msg.Report != want {
		t.Errorf("unexpected report:\n%s\nwant:\n%s", resp.Msg.Report, want)
	}
	if resp.Msg.ExportMeta != "生成日期：2025-03-01 14:05" {
		t.Errorf("unexpected export meta: %q", resp.Msg.ExportMeta)
	}
}

func TestAdvanceStage(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: 1}))
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if resp.Msg.Advanced || resp.Msg.NextStage != 1 {
		t.Errorf("expected to stay on stage 1, got %+v", resp.Msg)
	}

	fillProportionalExample(t, client)
	for from := 1; from <= 2; from++ {
		resp, err = client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: from}))
		if err != nil {
			t.Fatalf("AdvanceStage failed: %v", err)
		}
		if !resp.Msg.Advanced || resp.Msg.NextStage != from+1 || resp.Msg.Recorded {
			t.Errorf("from %d: unexpected response %+v", from, resp.Msg)
		}
	}

	resp, err = client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: 3}))
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if !resp.Msg.Advanced || resp.Msg.NextStage != 4 || !resp.Msg.Recorded || resp.Msg.Entry == nil {
		t.Fatalf("expected a recorded entry, got %+v", resp.Msg)
	}
	entry := resp.Msg.Entry
	if entry.TotalKwh != 1000 || entry.BillAmount != 3000 || entry.RoomCount != 3 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.CreatedAt != "2025-03-01T14:05:00.000Z" {
		t.Errorf("unexpected created_at: %q", entry.CreatedAt)
	}
	if entry.Title != "未填帳期 · 3,000 元 · 3 房 · 按用電比例分攤" {
		t.Errorf("unexpected title: %q", entry.Title)
	}

	// Re-advancing without changes does not grow history.
	resp, err = client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: 3}))
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if !resp.Msg.Advanced || resp.Msg.Recorded {
		t.Errorf("expected duplicate to be skipped, got %+v", resp.Msg)
	}

	list, err := client.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{}))
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(list.Msg.Entries) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(list.Msg.Entries))
	}

	_, err = client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: 4}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected InvalidArgument for stage 4, got %v", err)
	}
}

func TestHistoryRPCs(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	fillProportionalExample(t, client)
	var ids []string
	for _, kwh := range []string{"400", "350"} {
		_, err := client.UpdateSession(ctx, connect.NewRequest(&api.UpdateSessionRequest{
			Rooms: []api.RoomEdit{{Index: 2, Kwh: ptr(kwh)}},
		}))
		if err != nil {
			t.Fatalf("UpdateSession failed: %v", err)
		}
		resp, err := client.AdvanceStage(ctx, connect.NewRequest(&api.AdvanceStageRequest{From: 3}))
		if err != nil {
			t.Fatalf("AdvanceStage failed: %v", err)
		}
		if !resp.Msg.Recorded {
			t.Fatalf("expected entry for %s kWh to be recorded", kwh)
		}
		ids = append(ids, resp.Msg.Entry.ID)
	}

	t.Run("ListHistory newest first", func(t *testing.T) {
		resp, err := client.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{}))
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(resp.Msg.Entries) != 2 || resp.Msg.Entries[0].ID != ids[1] || resp.Msg.Entries[1].ID != ids[0] {
			t.Errorf("unexpected order: %+v", resp.Msg.Entries)
		}
	})

	t.Run("GetHistoryEntry", func(t *testing.T) {
		resp, err := client.GetHistoryEntry(ctx, connect.NewRequest(&api.GetHistoryEntryRequest{ID: ids[0]}))
		if err != nil {
			t.Fatalf("GetHistoryEntry failed: %v", err)
		}
		if resp.Msg.Entry.Rooms[2].RoomKwh != 400 || resp.Msg.Entry.TextReport == "" {
			t.Errorf("unexpected entry: %+v", resp.Msg.Entry)
		}

		_, err = client.GetHistoryEntry(ctx, connect.NewRequest(&api.GetHistoryEntryRequest{ID: "missing"}))
		if connect.CodeOf(err) != connect.CodeNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
		_, err = client.GetHistoryEntry(ctx, connect.NewRequest(&api.GetHistoryEntryRequest{}))
		if connect.CodeOf(err) != connect.CodeInvalidArgument {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("DeleteHistoryEntry", func(t *testing.T) {
		resp, err := client.DeleteHistoryEntry(ctx, connect.NewRequest(&api.DeleteHistoryEntryRequest{ID: ids[0]}))
		if err != nil {
			t.Fatalf("DeleteHistoryEntry failed: %v", err)
		}
		if !resp.Msg.Deleted {
			t.Error("expected entry to be deleted")
		}
		resp, err = client.DeleteHistoryEntry(ctx, connect.NewRequest(&api.DeleteHistoryEntryRequest{ID: ids[0]}))
		if err != nil {
			t.Fatalf("DeleteHistoryEntry failed: %v", err)
		}
		if resp.Msg.Deleted {
			t.Error("expected second delete to be a no-op")
		}
	})

	t.Run("ClearHistory", func(t *testing.T) {
		if _, err := client.ClearHistory(ctx, connect.NewRequest(&api.ClearHistoryRequest{})); err != nil {
			t.Fatalf("ClearHistory failed: %v", err)
		}
		resp, err := client.ListHistory(ctx, connect.NewRequest(&api.ListHistoryRequest{}))
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(resp.Msg.Entries) != 0 {
			t.Errorf("expected empty history, got %d entries", len(resp.Msg.Entries))
		}
	})
}

func TestLoadLastSessionAndReset(t *testing.T) {
	client, store := setupTestServer(t)
	ctx := context.Background()
	fillProportionalExample(t, client)

	// A second server over the same store stands in for a restart.
	restarted := newTestServer(t, store)
	resp, err := restarted.LoadLastSession(ctx, connect.NewRequest(&api.LoadLastSessionRequest{}))
	if err != nil {
		t.Fatalf("LoadLastSession failed: %v", err)
	}
	if !resp.Msg.Loaded || resp.Msg.State.Session.TotalKwh != "1000" || len(resp.Msg.State.Session.Rooms) != 3 {
		t.Errorf("expected the saved session, got %+v", resp.Msg)
	}

	reset, err := restarted.ResetSession(ctx, connect.NewRequest(&api.ResetSessionRequest{}))
	if err != nil {
		t.Fatalf("ResetSession failed: %v", err)
	}
	if reset.Msg.State.HasSaved || reset.Msg.State.Session.TotalKwh != "" || len(reset.Msg.State.Session.Rooms) != 5 {
		t.Errorf("expected a fresh session, got %+v", reset.Msg.State)
	}

	resp, err = restarted.LoadLastSession(ctx, connect.NewRequest(&api.LoadLastSessionRequest{}))
	if err != nil {
		t.Fatalf("LoadLastSession failed: %v", err)
	}
	if resp.Msg.Loaded {
		t.Error("expected nothing to load after reset")
	}
}
