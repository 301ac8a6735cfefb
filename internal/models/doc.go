// Package models defines the core domain models for wattsplit.
//
// # Input Model
//
// The raw, possibly-invalid values a user types into the bill wizard:
//   - BillInput: the whole editable session (totals, rooms, modes)
//   - RoomInput: one room's label and metered consumption
//   - Number: a numeric-as-string field parsed once, read by both display
//     code (permissive, invalid reads as 0) and gating code (strict)
//
// # Result Model
//
// Derived from a BillInput by the calculator and never persisted:
//   - BillResult: unit price, shared consumption, reconciliation
//   - RoomResult: one room's base cost, shared share and final cost
//
// # Durable Records
//
//   - SessionRecord: the "last bill" record written after every edit
//   - HistoryEntry: an immutable snapshot of a completed calculation
//
// Relationships between records use ID strings, never pointers.
package models
