package service

import (
	"github.com/mmynk/wattsplit/internal/calculator"
	"github.com/mmynk/wattsplit/internal/models"
	"github.com/mmynk/wattsplit/internal/report"
	"github.com/mmynk/wattsplit/pkg/api"
)

func toAPISession(in models.BillInput, opts models.ReportOptions) api.Session {
	rooms := make([]api.Room, len(in.Rooms))
	for i, room := range in.Rooms {
		rooms[i] = api.Room{Label: room.Label, Kwh: room.Kwh}
	}
	return api.Session{
		Period:     in.Period,
		TotalKwh:   in.TotalKwh,
		BillAmount: in.BillAmount,
		Rooms:      rooms,
		LabelMode:  string(in.LabelMode),
		SharedMode: string(in.SharedMode),
		SharedKwh:  in.SharedKwhManual,
		Allocation: string(in.Allocation),
		Options:    toAPIOptions(opts),
	}
}

func toAPIOptions(opts models.ReportOptions) api.ReportOptions {
	return api.ReportOptions{
		IncludeSharedNote: opts.IncludeSharedNote,
		ExportIncludeDate: opts.ExportIncludeDate,
		ExportIncludeURL:  opts.ExportIncludeURL,
		ShowPrecisePrice:  opts.ShowPrecisePrice,
	}
}

func fromAPIOptions(opts api.ReportOptions) models.ReportOptions {
	return models.ReportOptions{
		IncludeSharedNote: opts.IncludeSharedNote,
		ExportIncludeDate: opts.ExportIncludeDate,
		ExportIncludeURL:  opts.ExportIncludeURL,
		ShowPrecisePrice:  opts.ShowPrecisePrice,
	}
}

func toAPIVerdict(v calculator.Verdict) api.Verdict {
	return api.Verdict{
		OK:     v.OK,
		Stage:  int(v.Stage),
		Kind:   string(v.Kind),
		Reason: v.Reason(),
	}
}

// toAPIResult converts res, labelling rooms the way the report does.
func toAPIResult(in models.BillInput, res *models.BillResult) *api.BillResult {
	rooms := make([]api.RoomResult, len(res.Rooms))
	for i, room := range res.Rooms {
		rooms[i] = api.RoomResult{
			Label:           report.RoomLabel(in.LabelMode, room.Label, i),
			Kwh:             room.Kwh,
			BaseCost:        room.BaseCost,
			SharedKwhShare:  room.SharedKwhShare,
			SharedCostShare: room.SharedCostShare,
			RawCost:         room.RawCost,
		}
	}
	return &api.BillResult{
		TotalKwh:      res.TotalKwh,
		BillAmount:    res.BillAmount,
		Allocation:    string(res.Allocation),
		AvgPrice:      res.AvgPrice,
		SumRoomKwh:    res.SumRoomKwh,
		SharedKwh:     res.SharedKwh,
		SharedCost:    res.SharedCost,
		UsageMismatch: res.UsageMismatch,
		Rooms:         rooms,
		SumFinal:      res.SumFinal,
		Reconciliation: api.Reconciliation{
			Status:     string(res.Reconciliation.Status),
			Difference: res.Reconciliation.Difference,
			Notice:     report.Notice(res),
		},
	}
}

func toAPIHistoryEntry(e models.HistoryEntry) api.HistoryEntry {
	return api.HistoryEntry{HistoryEntry: e, Title: report.HistoryTitle(e)}
}

func toAPIPreview(p calculator.Preview) api.Preview {
	return api.Preview{
		SumRoomKwh:    p.SumRoomKwh,
		DeltaKwh:      p.DeltaKwh,
		AutoSharedKwh: p.AutoSharedKwh,
		SharedKwh:     p.SharedKwh,
		UsageTotalKwh: p.UsageTotalKwh,
		SharedValid:   p.SharedValid,
	}
}
