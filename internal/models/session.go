package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// ReportOptions are presentation toggles. They travel with the session
// but the calculator never reads them.
type ReportOptions struct {
	// IncludeSharedNote appends each room's shared charge to its report line.
	IncludeSharedNote bool
	ExportIncludeDate bool
	ExportIncludeURL  bool

	// ShowPrecisePrice shows the unit price to 4 decimals. Not persisted.
	ShowPrecisePrice bool
}

// DefaultReportOptions returns the options of a fresh session.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{ExportIncludeDate: true}
}

// SessionRoom is a room inside a SessionRecord.
type SessionRoom struct {
	Label   string `json:"label"`
	RoomKwh string `json:"room_kwh"`
}

// SessionRecord is the durable form of the current session, written after
// every edit and read back on "load last session".
type SessionRecord struct {
	Period            string           `json:"period"`
	TotalKwh          string           `json:"total_kwh"`
	BillAmount        string           `json:"bill_amount"`
	Rooms             []SessionRoom    `json:"rooms"`
	SharedMode        SharedMode       `json:"shared_kwh_mode"`
	SharedKwh         string           `json:"shared_kwh"`
	Allocation        AllocationMethod `json:"allocation_method"`
	IncludeSharedNote bool             `json:"include_shared_note"`
	ExportIncludeDate bool             `json:"export_include_date"`
	ExportIncludeURL  bool             `json:"export_include_url"`
	LabelMode         LabelMode        `json:"label_mode"`
	RoomCount         int              `json:"room_count"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewSessionRecord captures in and opts as a durable record.
func NewSessionRecord(in BillInput, opts ReportOptions, now time.Time) SessionRecord {
	rooms := make([]SessionRoom, len(in.Rooms))
	for i, room := range in.Rooms {
		rooms[i] = SessionRoom{Label: room.Label, RoomKwh: room.Kwh}
	}
	return SessionRecord{
		Period:            in.Period,
		TotalKwh:          in.TotalKwh,
		BillAmount:        in.BillAmount,
		Rooms:             rooms,
		SharedMode:        in.SharedMode,
		SharedKwh:         in.SharedKwhManual,
		Allocation:        in.Allocation,
		IncludeSharedNote: opts.IncludeSharedNote,
		ExportIncludeDate: opts.ExportIncludeDate,
		ExportIncludeURL:  opts.ExportIncludeURL,
		LabelMode:         in.LabelMode,
		RoomCount:         len(in.Rooms),
		UpdatedAt:         now.UTC(),
	}
}

// Restore turns the record back into session state. The room list is
// resized to the stored room count (or the stored room list's length, or
// DefaultRoomCount) and, in custom mode, blank labels get auto labels.
func (r SessionRecord) Restore() (BillInput, ReportOptions) {
	in := BillInput{
		Period:          r.Period,
		TotalKwh:        r.TotalKwh,
		BillAmount:      r.BillAmount,
		LabelMode:       r.LabelMode,
		SharedMode:      r.SharedMode,
		SharedKwhManual: r.SharedKwh,
		Allocation:      r.Allocation,
	}
	if !in.LabelMode.Valid() {
		in.LabelMode = LabelAlpha
	}
	if !in.SharedMode.Valid() {
		in.SharedMode = SharedAuto
	}
	if !in.Allocation.Valid() {
		in.Allocation = AllocProportional
	}

	count := r.RoomCount
	if count <= 0 {
		count = len(r.Rooms)
	}
	if count <= 0 {
		count = DefaultRoomCount
	}
	rooms := make([]RoomInput, len(r.Rooms))
	for i, room := range r.Rooms {
		rooms[i] = RoomInput{Label: room.Label, Kwh: room.RoomKwh}
	}
	in.Rooms = ResizeRooms(rooms, count)
	if in.LabelMode == LabelCustom {
		FillBlankLabels(in.Rooms, LabelAlpha)
	}

	opts := ReportOptions{
		IncludeSharedNote: r.IncludeSharedNote,
		ExportIncludeDate: r.ExportIncludeDate,
		ExportIncludeURL:  r.ExportIncludeURL,
	}
	return in, opts
}

// FillBlankLabels gives every room with a blank label the auto label of
// mode, so a custom label always starts non-empty.
func FillBlankLabels(rooms []RoomInput, mode LabelMode) {
	for i := range rooms {
		if strings.TrimSpace(rooms[i].Label) == "" {
			rooms[i].Label = AutoLabel(mode, i)
		}
	}
}

// DecodeSessionRecord parses a stored record field by field. A missing,
// null or malformed field keeps its default; only a document that is not
// a JSON object at all is an error.
func DecodeSessionRecord(data []byte) (SessionRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return SessionRecord{}, fmt.Errorf("decode session record: %w", err)
	}

	rec := SessionRecord{
		LabelMode:         LabelAlpha,
		SharedMode:        SharedAuto,
		Allocation:        AllocProportional,
		ExportIncludeDate: true,
	}
	decodeField(fields, "period", &rec.Period)
	decodeNumeric(fields, "total_kwh", &rec.TotalKwh)
	decodeNumeric(fields, "bill_amount", &rec.BillAmount)
	decodeNumeric(fields, "shared_kwh", &rec.SharedKwh)
	decodeField(fields, "shared_kwh_mode", &rec.SharedMode)
	decodeField(fields, "allocation_method", &rec.Allocation)
	decodeField(fields, "label_mode", &rec.LabelMode)
	decodeField(fields, "include_shared_note", &rec.IncludeSharedNote)
	decodeField(fields, "export_include_date", &rec.ExportIncludeDate)
	decodeField(fields, "export_include_url", &rec.ExportIncludeURL)
	decodeField(fields, "updated_at", &rec.UpdatedAt)

	var count float64
	decodeField(fields, "room_count", &count)
	if count > 0 && count == math.Trunc(count) {
		rec.RoomCount = int(count)
	}

	var rooms []json.RawMessage
	decodeField(fields, "rooms", &rooms)
	for _, raw := range rooms {
		var roomFields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &roomFields); err != nil {
			roomFields = nil
		}
		var room SessionRoom
		decodeField(roomFields, "label", &room.Label)
		decodeNumeric(roomFields, "room_kwh", &room.RoomKwh)
		rec.Rooms = append(rec.Rooms, room)
	}

	if !rec.LabelMode.Valid() {
		rec.LabelMode = LabelAlpha
	}
	if !rec.SharedMode.Valid() {
		rec.SharedMode = SharedAuto
	}
	if !rec.Allocation.Valid() {
		rec.Allocation = AllocProportional
	}
	return rec, nil
}

func decodeField[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = v
}

// decodeNumeric accepts a numeric-as-string field stored either as a JSON
// string or as a bare JSON number.
func decodeNumeric(fields map[string]json.RawMessage, key string, dst *string) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		*dst = n.String()
		return
	}
	decodeField(fields, key, dst)
}
