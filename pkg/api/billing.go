// Package api defines the wattsplit.v1.BillingService wire messages and its
// Connect handler and client. Messages travel as JSON.
package api

import "github.com/mmynk/wattsplit/internal/models"

type Room struct {
	Label string `json:"label"`
	Kwh   string `json:"kwh"`
}

type ReportOptions struct {
	IncludeSharedNote bool `json:"include_shared_note"`
	ExportIncludeDate bool `json:"export_include_date"`
	ExportIncludeURL  bool `json:"export_include_url"`
	ShowPrecisePrice  bool `json:"show_precise_price"`
}

// Session is the editable input as the user typed it.
type Session struct {
	Period     string        `json:"period"`
	TotalKwh   string        `json:"total_kwh"`
	BillAmount string        `json:"bill_amount"`
	Rooms      []Room        `json:"rooms"`
	LabelMode  string        `json:"label_mode"`
	SharedMode string        `json:"shared_kwh_mode"`
	SharedKwh  string        `json:"shared_kwh"`
	Allocation string        `json:"allocation_method"`
	Options    ReportOptions `json:"options"`
}

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Preview carries the running kWh figures, available even while a gate
// fails. Unparseable fields count as 0.
type Preview struct {
	SumRoomKwh    float64 `json:"sum_room_kwh"`
	DeltaKwh      float64 `json:"delta_kwh"`
	AutoSharedKwh float64 `json:"auto_shared_kwh"`
	SharedKwh     float64 `json:"shared_kwh"`
	UsageTotalKwh float64 `json:"usage_total_kwh"`
	SharedValid   bool    `json:"shared_valid"`
}

// SessionState is returned by every session RPC.
type SessionState struct {
	Session  Session   `json:"session"`
	HasSaved bool      `json:"has_saved"`
	Warnings []Warning `json:"warnings,omitempty"`
	Preview  Preview   `json:"preview"`

	// AvgPrice is the formatted unit price, empty until both totals are
	// positive.
	AvgPrice string `json:"avg_price,omitempty"`
}

// Verdict is a validation gate outcome. Stage is the failing stage when
// OK is false.
type Verdict struct {
	OK     bool   `json:"ok"`
	Stage  int    `json:"stage"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// GatedResponse is implemented by responses that carry a gate verdict.
type GatedResponse interface {
	GateVerdict() Verdict
}

func (r *ValidateStageResponse) GateVerdict() Verdict { return r.Verdict }
func (r *ComputeResponse) GateVerdict() Verdict { return r.Verdict }
func (r *BuildReportResponse) GateVerdict() Verdict { return r.Verdict }
func (r *AdvanceStageResponse) GateVerdict() Verdict { return r.Verdict }

type RoomResult struct {
	Label           string  `json:"label"`
	Kwh             float64 `json:"kwh"`
	BaseCost        float64 `json:"base_cost"`
	SharedKwhShare  float64 `json:"shared_kwh_share"`
	SharedCostShare float64 `json:"shared_cost_share"`
	RawCost         float64 `json:"raw_cost"`
}

type Reconciliation struct {
	Status     string  `json:"status"`
	Difference float64 `json:"difference"`
	Notice     string  `json:"notice"`
}

type BillResult struct {
	TotalKwh       float64        `json:"total_kwh"`
	BillAmount     float64        `json:"bill_amount"`
	Allocation     string         `json:"allocation_method"`
	AvgPrice       float64        `json:"avg_price"`
	SumRoomKwh     float64        `json:"sum_room_kwh"`
	SharedKwh      float64        `json:"shared_kwh"`
	SharedCost     float64        `json:"shared_cost"`
	UsageMismatch  bool           `json:"usage_mismatch"`
	Rooms          []RoomResult   `json:"rooms"`
	SumFinal       float64        `json:"sum_final"`
	Reconciliation Reconciliation `json:"reconciliation"`
}

// HistoryEntry is a stored entry plus its display title.
type HistoryEntry struct {
	models.HistoryEntry
	Title string `json:"title"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	State SessionState `json:"state"`
}

type RoomEdit struct {
	Index int     `json:"index"`
	Label *string `json:"label,omitempty"`
	Kwh   *string `json:"kwh,omitempty"`
}

// UpdateSessionRequest is a partial edit. Nil fields are left alone. Room
// count is applied first, then label mode, then room edits.
type UpdateSessionRequest struct {
	Period     *string        `json:"period,omitempty"`
	TotalKwh   *string        `json:"total_kwh,omitempty"`
	BillAmount *string        `json:"bill_amount,omitempty"`
	RoomCount  *int           `json:"room_count,omitempty"`
	LabelMode  *string        `json:"label_mode,omitempty"`
	Rooms      []RoomEdit     `json:"rooms,omitempty"`
	SharedMode *string        `json:"shared_kwh_mode,omitempty"`
	SharedKwh  *string        `json:"shared_kwh,omitempty"`
	Allocation *string        `json:"allocation_method,omitempty"`
	Options    *ReportOptions `json:"options,omitempty"`
}

type UpdateSessionResponse struct {
	State SessionState `json:"state"`
}

type LoadLastSessionRequest struct{}

type LoadLastSessionResponse struct {
	Loaded bool         `json:"loaded"`
	State  SessionState `json:"state"`
}

type ResetSessionRequest struct{}

type ResetSessionResponse struct {
	State SessionState `json:"state"`
}

type ValidateStageRequest struct {
	Stage int `json:"stage"`
}

type ValidateStageResponse struct {
	Verdict Verdict `json:"verdict"`
}

type ComputeRequest struct{}

// ComputeResponse carries a result when every gate passes, and the
// failing verdict otherwise.
type ComputeResponse struct {
	Available bool        `json:"available"`
	Verdict   Verdict     `json:"verdict"`
	Result    *BillResult `json:"result,omitempty"`
}

type BuildReportRequest struct{}

type BuildReportResponse struct {
	Available bool    `json:"available"`
	Verdict   Verdict `json:"verdict"`
	Report    string  `json:"report,omitempty"`

	// ExportMeta is the date/source footer for exported images.
	ExportMeta string `json:"export_meta,omitempty"`
}

// AdvanceStageRequest asks to leave stage From. Leaving stage 3 records the
// calculation into history.
type AdvanceStageRequest struct {
	From int `json:"from"`
}

type AdvanceStageResponse struct {
	Advanced  bool          `json:"advanced"`
	NextStage int           `json:"next_stage"`
	Verdict   Verdict       `json:"verdict"`
	Recorded  bool          `json:"recorded"`
	Entry     *HistoryEntry `json:"entry,omitempty"`
}

type ListHistoryRequest struct{}

type ListHistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type GetHistoryEntryRequest struct {
	ID string `json:"id"`
}

type GetHistoryEntryResponse struct {
	Entry HistoryEntry `json:"entry"`
}

type DeleteHistoryEntryRequest struct {
	ID string `json:"id"`
}

type DeleteHistoryEntryResponse struct {
	Deleted bool `json:"deleted"`
}

type ClearHistoryRequest struct{}

type ClearHistoryResponse struct{}
