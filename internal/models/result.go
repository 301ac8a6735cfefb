package models

// RoomResult is one room's share of the bill.
type RoomResult struct {
	// Label is the display label: the auto label outside custom mode, the
	// trimmed custom label or "房間N" inside it.
	Label string
	Kwh   float64

	// BaseCost is Kwh times the average unit price.
	BaseCost float64

	// SharedKwhShare and SharedCostShare are this room's portion of shared
	// consumption. Both are 0 under the landlord policy.
	SharedKwhShare  float64
	SharedCostShare float64

	// RawCost is BaseCost + SharedCostShare, unrounded.
	RawCost float64
}

// ReconcileStatus classifies how the room charges add up against the bill.
type ReconcileStatus string

const (
	// ReconcileConsistent: charges match the bill within tolerance.
	ReconcileConsistent ReconcileStatus = "consistent"
	// ReconcileMismatch: charges diverge from the bill, or the usage figures
	// disagree with the meter. Reported at error level.
	ReconcileMismatch ReconcileStatus = "mismatch"
	// ReconcileAbsorbed: landlord policy; the gap is the landlord's share.
	ReconcileAbsorbed ReconcileStatus = "absorbed"
)

// Reconciliation compares SumFinal to the bill amount.
type Reconciliation struct {
	Status ReconcileStatus

	// Difference is BillAmount - SumFinal for ReconcileAbsorbed and
	// SumFinal - BillAmount otherwise.
	Difference float64
}

// BillResult is the full allocation derived from one BillInput.
// It is recomputed on demand and never persisted.
type BillResult struct {
	TotalKwh   float64
	BillAmount float64
	Allocation AllocationMethod

	AvgPrice   float64
	SumRoomKwh float64
	SharedKwh  float64
	SharedCost float64

	// UsageMismatch is set when rooms plus shared consumption differ from
	// the metered total by more than the usage tolerance.
	UsageMismatch bool

	Rooms    []RoomResult
	SumFinal float64

	Reconciliation Reconciliation
}

// SumBaseCost returns the sum of every room's BaseCost.
func (r *BillResult) SumBaseCost() float64 {
	var sum float64
	for _, room := range r.Rooms {
		sum += room.BaseCost
	}
	return sum
}
