package analytics

import (
	"time"
	"wellbeing/internal/model"
)

// RecentWindow keeps the records stamped at or after now minus days.
// Order is preserved.
func RecentWindow(records []model.PredictionRecord, days int, now time.Time) []model.PredictionRecord {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]model.PredictionRecord, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Recent applies RecentWindow with the configured recent-day count
func (e Engine) Recent(records []model.PredictionRecord, now time.Time) []model.PredictionRecord {
	return RecentWindow(records, e.opts.RecentDays, now)
}

// ScoreTrends compares the older and newer half of the records inside the
// last days (TrendDays when days <= 0). The newest-first window is split at
// floor(n/2): the head is the newer half, the tail the older one. A change
// above +0.5 is "up", below -0.5 "down", anything else "neutral".
//
// A half with no usable score (an empty window, or a one-record window whose
// newer half is empty) yields a neutral trend with zero change.
func (e Engine) ScoreTrends(records []model.PredictionRecord, days int, now time.Time) model.Trends {
	if days <= 0 {
		days = e.opts.TrendDays
	}
	window := RecentWindow(records, days, now)

	mid := len(window) / 2
	newer := window[:mid]
	older := window[mid:]

	return model.Trends{
		Happiness: trendOf(older, newer, happinessOf),
		Stress:    trendOf(older, newer, stressOf),
	}
}

func trendOf(older, newer []model.PredictionRecord, metric func(*model.PredictionRecord) (float64, bool)) model.Trend {
	oldAvg, okOld := mean(older, metric)
	newAvg, okNew := mean(newer, metric)
	if !okOld || !okNew {
		return model.Trend{Direction: model.TrendNeutral}
	}

	change := newAvg - oldAvg
	return model.Trend{
		Direction: classify(change),
		Change:    round1(change),
	}
}

func classify(change float64) model.TrendDirection {
	switch {
	case change > trendThreshold:
		return model.TrendUp
	case change < -trendThreshold:
		return model.TrendDown
	default:
		return model.TrendNeutral
	}
}
