package calculator

import (
	"errors"
	"math"

	"github.com/mmynk/wattsplit/internal/models"
)

// BillTolerance is the currency slack allowed between the sum of room
// charges and the bill before reconciliation reports a mismatch.
const BillTolerance = 2.0

// AvgPrice returns the unit price, or false while stage 1 fails.
func AvgPrice(in models.BillInput) (float64, bool) {
	if !checkTotals(in).OK {
		return 0, false
	}
	return in.Bill().Value / in.Total().Value, true
}

// Compute allocates the bill across rooms. It runs every gate first; when
// one fails the error wraps ErrUnavailable and the gate's own error, and
// no partial result is returned.
func Compute(in models.BillInput) (*models.BillResult, error) {
	if v := ValidateStage(in, StageShared); !v.OK {
		return nil, errors.Join(ErrUnavailable, v.Err)
	}
	return compute(in), nil
}

// compute assumes the input passed every gate.
func compute(in models.BillInput) *models.BillResult {
	total := in.Total().Value
	bill := in.Bill().Value
	sumRoom := in.SumRoomKwh()
	avg := bill / total

	sharedKwh := resolveSharedKwh(in, sumRoom)
	sharedCost := sharedKwh * avg

	alloc := allocatorFor(in.Allocation)
	res := &models.BillResult{
		TotalKwh:      total,
		BillAmount:    bill,
		Allocation:    in.Allocation,
		AvgPrice:      avg,
		SumRoomKwh:    sumRoom,
		SharedKwh:     sharedKwh,
		SharedCost:    sharedCost,
		UsageMismatch: usageMismatch(sumRoom, sharedKwh, total),
		Rooms:         make([]models.RoomResult, len(in.Rooms)),
	}

	for i, room := range in.Rooms {
		kwh := in.RoomKwh(i).Value
		rr := models.RoomResult{
			Label:    models.DisplayLabel(in.LabelMode, room.Label, i),
			Kwh:      kwh,
			BaseCost: kwh * avg,
		}
		if alloc.charged() {
			rr.SharedKwhShare, rr.SharedCostShare = alloc.share(kwh, sumRoom, len(in.Rooms), sharedKwh, sharedCost)
		}
		rr.RawCost = rr.BaseCost + rr.SharedCostShare
		res.SumFinal += rr.RawCost
		res.Rooms[i] = rr
	}

	res.Reconciliation = reconcile(res)
	return res
}

// reconcile compares the room charges against the bill using raw floats;
// nothing is rounded before the comparison.
func reconcile(res *models.BillResult) models.Reconciliation {
	if res.Allocation == models.AllocLandlord {
		return models.Reconciliation{
			Status:     models.ReconcileAbsorbed,
			Difference: res.BillAmount - res.SumFinal,
		}
	}
	diff := res.SumFinal - res.BillAmount
	if res.UsageMismatch || math.Abs(diff) > BillTolerance {
		return models.Reconciliation{Status: models.ReconcileMismatch, Difference: diff}
	}
	return models.Reconciliation{Status: models.ReconcileConsistent, Difference: diff}
}
