package models

// HistoryRoom is a room as frozen into a history entry.
type HistoryRoom struct {
	Label   string  `json:"label"`
	RoomKwh float64 `json:"room_kwh"`
}

// HistoryEntry is an immutable snapshot of a completed calculation.
// Corrections are recorded as new entries; nothing mutates an entry after
// it is created.
type HistoryEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// CreatedAt is an RFC 3339 timestamp.
	CreatedAt string `json:"created_at"`

	Period     string  `json:"period"`
	TotalKwh   float64 `json:"total_kwh"`
	BillAmount float64 `json:"bill_amount"`
	RoomCount  int     `json:"room_count"`

	LabelMode  LabelMode        `json:"label_mode"`
	Allocation AllocationMethod `json:"allocation_method"`
	SharedMode SharedMode       `json:"shared_kwh_mode"`

	// SharedKwh is nil in auto shared mode.
	SharedKwh *float64 `json:"shared_kwh"`

	// Rooms carry display labels, so custom blanks read "房間N".
	Rooms []HistoryRoom `json:"rooms"`

	TextReport string `json:"text_report"`

	// Signature is a stable content hash of the fields above, excluding
	// ID, CreatedAt and TextReport. Consecutive entries never share one.
	Signature string `json:"signature"`
}
