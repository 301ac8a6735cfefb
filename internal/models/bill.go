package models

import (
	"fmt"
	"strings"
)

const (
	// MinRooms and MaxRooms bound the number of rooms on one bill.
	MinRooms = 1
	MaxRooms = 20

	// DefaultRoomCount is used for a fresh session and for records that
	// carry neither room_count nor rooms.
	DefaultRoomCount = 5
)

// LabelMode controls how a room's display label is derived.
type LabelMode string

const (
	LabelAlpha   LabelMode = "alpha"
	LabelNumeric LabelMode = "numeric"
	LabelCustom  LabelMode = "custom"
)

// Valid reports whether m is a known label mode.
func (m LabelMode) Valid() bool {
	switch m {
	case LabelAlpha, LabelNumeric, LabelCustom:
		return true
	}
	return false
}

// SharedMode selects how shared consumption is obtained.
type SharedMode string

const (
	// SharedAuto infers shared consumption as total minus the room sum.
	SharedAuto SharedMode = "auto"
	// SharedManual takes shared consumption from SharedKwhManual.
	SharedManual SharedMode = "manual"
)

// Valid reports whether m is a known shared mode.
func (m SharedMode) Valid() bool {
	return m == SharedAuto || m == SharedManual
}

// AllocationMethod is the policy for distributing the cost of shared
// consumption across rooms.
type AllocationMethod string

const (
	// AllocLandlord leaves shared cost with the landlord.
	AllocLandlord AllocationMethod = "landlord"
	// AllocEqual splits shared cost evenly per room.
	AllocEqual AllocationMethod = "equal"
	// AllocProportional splits shared cost by each room's own consumption.
	AllocProportional AllocationMethod = "proportional"
)

var allocationNames = map[AllocationMethod]string{
	AllocLandlord:     "房東吸收",
	AllocEqual:        "平均分攤",
	AllocProportional: "按用電比例分攤",
}

// Valid reports whether m is a known allocation method.
func (m AllocationMethod) Valid() bool {
	_, ok := allocationNames[m]
	return ok
}

// DisplayName returns the human-readable policy name used in reports.
func (m AllocationMethod) DisplayName() string {
	if name, ok := allocationNames[m]; ok {
		return name
	}
	return "未指定"
}

// RoomInput is one room as typed by the user.
type RoomInput struct {
	// Label is only displayed in custom label mode, but is kept across
	// mode switches.
	Label string

	// Kwh is the room's sub-meter reading, numeric-as-string.
	Kwh string
}

// BillInput is the raw editable state of one billing session.
// All numeric fields are strings; parse them with the accessor methods.
type BillInput struct {
	// Period is an opaque label such as "2025/03". Optional.
	Period string

	TotalKwh   string
	BillAmount string

	// Rooms is ordered; its length is the room count (MinRooms..MaxRooms).
	Rooms []RoomInput

	LabelMode LabelMode

	SharedMode SharedMode
	// SharedKwhManual is only meaningful when SharedMode is SharedManual.
	SharedKwhManual string

	Allocation AllocationMethod
}

// NewBillInput returns the input of a fresh session.
func NewBillInput() BillInput {
	in := BillInput{
		LabelMode:  LabelAlpha,
		SharedMode: SharedAuto,
		Allocation: AllocProportional,
	}
	in.Rooms = ResizeRooms(nil, DefaultRoomCount)
	return in
}

// Clone returns a deep copy so callers can hand out snapshots.
func (in BillInput) Clone() BillInput {
	out := in
	out.Rooms = append([]RoomInput(nil), in.Rooms...)
	return out
}

// Total returns the parsed total consumption.
func (in BillInput) Total() Number { return ParseNumber(in.TotalKwh) }

// Bill returns the parsed bill amount.
func (in BillInput) Bill() Number { return ParseNumber(in.BillAmount) }

// ManualShared returns the parsed manual shared consumption.
func (in BillInput) ManualShared() Number { return ParseNumber(in.SharedKwhManual) }

// RoomKwh returns the parsed consumption of room i.
func (in BillInput) RoomKwh(i int) Number { return ParseNumber(in.Rooms[i].Kwh) }

// SumRoomKwh sums room consumption with invalid entries read as 0.
func (in BillInput) SumRoomKwh() float64 {
	var sum float64
	for i := range in.Rooms {
		sum += in.RoomKwh(i).Value
	}
	return sum
}

// AutoLabel returns the generated label for room index idx:
// "1", "2", ... in numeric mode and "A", "B", ... otherwise.
func AutoLabel(mode LabelMode, idx int) string {
	if mode == LabelNumeric {
		return fmt.Sprintf("%d", idx+1)
	}
	return string(rune('A' + idx))
}

// DisplayLabel returns the label shown for room idx. Custom labels are
// trimmed and fall back to "房間N" when blank; other modes ignore label.
func DisplayLabel(mode LabelMode, label string, idx int) string {
	if mode != LabelCustom {
		return AutoLabel(mode, idx)
	}
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("房間%d", idx+1)
}

// ClampRoomCount bounds n to MinRooms..MaxRooms.
func ClampRoomCount(n int) int {
	if n < MinRooms {
		return MinRooms
	}
	if n > MaxRooms {
		return MaxRooms
	}
	return n
}

// ResizeRooms grows rooms with empty entries or truncates it from the end
// so that it has exactly ClampRoomCount(n) entries.
func ResizeRooms(rooms []RoomInput, n int) []RoomInput {
	n = ClampRoomCount(n)
	if len(rooms) >= n {
		return append([]RoomInput(nil), rooms[:n]...)
	}
	out := make([]RoomInput, n)
	copy(out, rooms)
	return out
}
