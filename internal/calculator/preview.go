package calculator

import "github.com/mmynk/wattsplit/internal/models"

// Preview holds the running figures shown while the user is still typing.
// Unlike Compute it never fails: unparseable fields read as 0.
type Preview struct {
	// SumRoomKwh is the sum of all room readings.
	SumRoomKwh float64
	// DeltaKwh is the metered total minus SumRoomKwh, negative when the
	// rooms overshoot the meter.
	DeltaKwh float64
	// AutoSharedKwh is the remainder auto mode would treat as shared,
	// never below 0.
	AutoSharedKwh float64
	// SharedKwh is the shared figure in effect for the current mode.
	SharedKwh float64
	// UsageTotalKwh is SumRoomKwh plus SharedKwh, the figure compared
	// against the meter.
	UsageTotalKwh float64
	// SharedValid is false while a manual shared figure is blank or
	// negative.
	SharedValid bool
}

// PreviewOf derives the running figures from the same parse the gates use.
func PreviewOf(in models.BillInput) Preview {
	sum := in.SumRoomKwh()
	shared := resolveSharedKwh(in, sum)
	return Preview{
		SumRoomKwh:    sum,
		DeltaKwh:      in.Total().Value - sum,
		AutoSharedKwh: max(0, in.Total().Value-sum),
		SharedKwh:     shared,
		UsageTotalKwh: sum + shared,
		SharedValid:   in.SharedMode != models.SharedManual || in.ManualShared().NonNegative(),
	}
}
