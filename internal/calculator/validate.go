package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/wattsplit/internal/models"
)

// Stage identifies one of the three ordered input gates.
type Stage int

const (
	// StageTotals: metered total and bill amount.
	StageTotals Stage = 1
	// StageRooms: per-room consumption.
	StageRooms Stage = 2
	// StageShared: shared consumption and allocation policy.
	StageShared Stage = 3
)

// UsageTolerance is the kWh slack allowed between rooms plus shared
// consumption and the metered total.
const UsageTolerance = 0.001

// Gate errors carry the message shown to the user.
var (
	ErrInvalidTotals         = errors.New("請輸入正確的台電總度數與總金額。")
	ErrInvalidRoomKwh        = errors.New("請確認每間房的度數皆為 0 或正整數。")
	ErrRoomsExceedTotal      = errors.New("房間加總超過台電總度數，請確認輸入或改用手動公共度數。")
	ErrInvalidSharedKwh      = errors.New("手動公共用電度數需為 0 或正整數。")
	ErrProportionalZeroUsage = errors.New("房間度數加總為 0，無法使用按用電比例分攤。")

	// ErrUnavailable is returned by Compute whenever a gate fails.
	ErrUnavailable = errors.New("請先完成 Step 1～3 的輸入，再查看結果。")

	// ErrInvalidStage rejects a malformed request rather than user input.
	ErrInvalidStage = errors.New("stage must be 1, 2 or 3")
)

// Kind classifies why a gate failed.
type Kind string

const (
	// KindInputShape: a field is non-numeric or negative.
	KindInputShape Kind = "input_shape"
	// KindHardBlocker: fields are well-formed but cannot be allocated.
	KindHardBlocker Kind = "hard_blocker"
)

// Verdict is the outcome of a gate. A failed verdict names the stage that
// failed, which may be earlier than the stage asked about.
type Verdict struct {
	OK    bool
	Stage Stage
	Kind  Kind
	Err   error
}

// Reason returns the failure message, or "" for a passing verdict.
func (v Verdict) Reason() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

func pass(stage Stage) Verdict {
	return Verdict{OK: true, Stage: stage}
}

func fail(stage Stage, kind Kind, err error) Verdict {
	return Verdict{Stage: stage, Kind: kind, Err: err}
}

// ValidateStage reports whether the user may advance past stage. Gates are
// cumulative: stage 3 passes only if stages 1 and 2 pass too.
func ValidateStage(in models.BillInput, stage Stage) Verdict {
	if stage < StageTotals || stage > StageShared {
		return fail(stage, KindInputShape, fmt.Errorf("%w: got %d", ErrInvalidStage, stage))
	}
	for s := StageTotals; s <= stage; s++ {
		if v := checkStage(in, s); !v.OK {
			return v
		}
	}
	return pass(stage)
}

func checkStage(in models.BillInput, stage Stage) Verdict {
	switch stage {
	case StageTotals:
		return checkTotals(in)
	case StageRooms:
		return checkRooms(in)
	default:
		return checkShared(in)
	}
}

func checkTotals(in models.BillInput) Verdict {
	if !in.Total().Positive() || !in.Bill().Positive() {
		return fail(StageTotals, KindInputShape, ErrInvalidTotals)
	}
	return pass(StageTotals)
}

func checkRooms(in models.BillInput) Verdict {
	for i := range in.Rooms {
		if !in.RoomKwh(i).NonNegative() {
			return fail(StageRooms, KindInputShape,
				fmt.Errorf("%w（第 %d 間）", ErrInvalidRoomKwh, i+1))
		}
	}
	total := in.Total().Value
	if sum := in.SumRoomKwh(); total > 0 && sum > total {
		return fail(StageRooms, KindHardBlocker,
			fmt.Errorf("%w（房間 %s 度，台電 %s 度）", ErrRoomsExceedTotal,
				models.FormatNumber(sum), models.FormatNumber(total)))
	}
	return pass(StageRooms)
}

func checkShared(in models.BillInput) Verdict {
	if in.SharedMode == models.SharedManual && !in.ManualShared().NonNegative() {
		return fail(StageShared, KindInputShape, ErrInvalidSharedKwh)
	}
	if err := allocatorFor(in.Allocation).validate(in.SumRoomKwh()); err != nil {
		return fail(StageShared, KindHardBlocker, err)
	}
	return pass(StageShared)
}

// WarningCode identifies a non-blocking consistency warning.
type WarningCode string

const (
	// WarnRoomsBelowTotal: the remainder becomes shared consumption in
	// auto mode.
	WarnRoomsBelowTotal WarningCode = "rooms_below_total"
	// WarnUsageMismatch: rooms plus shared consumption differ from the
	// metered total, so the final sum may not match the bill.
	WarnUsageMismatch WarningCode = "usage_mismatch"
)

// Warning is informational and never blocks progress.
type Warning struct {
	Code    WarningCode
	Message string
}

// Warnings returns the consistency warnings for in. They are only raised
// once a positive metered total is known.
func Warnings(in models.BillInput) []Warning {
	total := in.Total().Value
	if total <= 0 {
		return nil
	}
	var out []Warning
	sum := in.SumRoomKwh()
	if sum < total {
		out = append(out, Warning{
			Code:    WarnRoomsBelowTotal,
			Message: fmt.Sprintf("差額 %s 度將視為公共用電（可下一步調整）。", models.FormatNumber(total-sum)),
		})
	}
	if usageMismatch(sum, resolveSharedKwh(in, sum), total) {
		out = append(out, Warning{
			Code:    WarnUsageMismatch,
			Message: "加總不等於台電總度數，最後加總可能不等於帳單。",
		})
	}
	return out
}

// resolveSharedKwh returns the manual figure in manual mode and total minus
// the room sum otherwise. A negative auto figure is clamped to zero, which
// leaves the overshoot visible as a usage mismatch.
func resolveSharedKwh(in models.BillInput, sumRoom float64) float64 {
	if in.SharedMode == models.SharedManual {
		return in.ManualShared().Value
	}
	return math.Max(0, in.Total().Value-sumRoom)
}

func usageMismatch(sumRoom, sharedKwh, total float64) bool {
	return total > 0 && math.Abs(sumRoom+sharedKwh-total) > UsageTolerance
}
