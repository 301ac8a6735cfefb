// Package report renders a computed bill as plain text for copying and
// exporting. Output is byte-for-byte reproducible for a given input.
package report

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mmynk/wattsplit/internal/models"
)

const titlePrefix = "【本期電費明細】"

// printer groups digits the zh-TW way.
var printer = message.NewPrinter(language.MustParse("zh-TW"))

// FormatQuantity renders a plain number with digit grouping and at most
// three fraction digits, e.g. 1234.5 as "1,234.5". Ties round away from
// zero.
func FormatQuantity(v float64) string {
	return printer.Sprintf("%v", number.Decimal(roundLocale(v, 3), number.MaxFractionDigits(3)))
}

// FormatMoney renders an amount with digit grouping and exactly two
// fraction digits, e.g. 1200 as "1,200.00" and 100.125 as "100.13".
func FormatMoney(v float64) string {
	return printer.Sprintf("%v", number.Decimal(roundLocale(v, 2),
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatPrice renders the unit price with 2 decimals, or 4 when precise.
// No digit grouping is applied. Rounding works on the exact binary value,
// so 3.125 gives "3.13" but 1.005 gives "1.00".
func FormatPrice(avg float64, precise bool) string {
	if precise {
		return roundFixed(avg, 4)
	}
	return roundFixed(avg, 2)
}

// RoomLabel returns the label printed for room idx: a custom label as
// typed (or "房間N"), otherwise the auto label suffixed with "房".
func RoomLabel(mode models.LabelMode, label string, idx int) string {
	base := models.DisplayLabel(mode, label, idx)
	if mode == models.LabelCustom {
		return base
	}
	return base + "房"
}

// Build renders the text report for in and its computed result.
func Build(in models.BillInput, res *models.BillResult, opts models.ReportOptions) string {
	title := titlePrefix + in.Period

	lines := []string{
		title,
		"台電總度數：" + FormatQuantity(res.TotalKwh) + " 度",
		"台電金額：" + FormatQuantity(res.BillAmount) + " 元",
		"平均每度：" + FormatPrice(res.AvgPrice, false) + " 元/度",
		"公共用電：" + FormatQuantity(res.SharedKwh) + " 度（" + res.Allocation.DisplayName() + "）",
		"",
	}

	landlord := res.Allocation == models.AllocLandlord
	for i, room := range res.Rooms {
		var b strings.Builder
		b.WriteString(RoomLabel(in.LabelMode, room.Label, i))
		b.WriteString("：用電")
		b.WriteString(FormatQuantity(room.Kwh))
		b.WriteString("度，應付 ")
		b.WriteString(FormatMoney(room.RawCost))
		b.WriteString(" 元")
		if opts.IncludeSharedNote && !landlord {
			b.WriteString("（含公共分攤 ")
			b.WriteString(FormatMoney(room.SharedCostShare))
			b.WriteString(" 元）")
		}
		lines = append(lines, b.String())
	}

	lines = append(lines, "", summaryLine(res))
	return strings.Join(lines, "\n")
}

func summaryLine(res *models.BillResult) string {
	total := "合計：" + FormatMoney(res.SumFinal) + " 元"
	if res.Allocation == models.AllocLandlord {
		return total + "（房東吸收公共費 " + FormatMoney(res.BillAmount-res.SumFinal) + " 元）"
	}
	diff := res.SumFinal - res.BillAmount
	if diff == 0 {
		return total + "（與帳單一致）"
	}
	return total + "（與帳單差 " + FormatMoney(diff) + " 元）"
}

// Notice is the one-line reconciliation message shown under the result.
func Notice(res *models.BillResult) string {
	sum := FormatMoney(res.SumFinal)
	switch res.Reconciliation.Status {
	case models.ReconcileAbsorbed:
		return "房東吸收公共費：房客合計 " + sum + " 元，較帳單少 " +
			FormatMoney(res.Reconciliation.Difference) + " 元。"
	case models.ReconcileMismatch:
		return "房間應付加總 " + sum + " 元，與帳單差 " +
			FormatMoney(res.Reconciliation.Difference) + " 元。輸入可能不一致，請回到 Step 2/3 檢查。"
	default:
		return "房間應付加總 " + sum + " 元，與帳單一致。"
	}
}

// ExportMeta renders the export footer, e.g.
// "生成日期：2025-03-01 14:05 | 來源：https://example.com".
func ExportMeta(opts models.ReportOptions, now time.Time, sourceURL string) string {
	var parts []string
	if opts.ExportIncludeDate {
		parts = append(parts, "生成日期："+now.Format("2006-01-02 15:04"))
	}
	if opts.ExportIncludeURL && sourceURL != "" {
		parts = append(parts, "來源："+sourceURL)
	}
	return strings.Join(parts, " | ")
}

// HistoryTitle is the one-line heading of a history entry, e.g.
// "2025/03 · 3,000 元 · 3 房 · 按用電比例分攤".
func HistoryTitle(e models.HistoryEntry) string {
	period := e.Period
	if period == "" {
		period = "未填帳期"
	}
	return period + " · " + FormatQuantity(e.BillAmount) + " 元 · " +
		strconv.Itoa(e.RoomCount) + " 房 · " + e.Allocation.DisplayName()
}
