package analytics

import (
	"time"
	"wellbeing/internal/model"
)

// ScoreChart samples a newest-first sequence for the score chart.
//
// With n records and a target of points (ChartPoints when <= 0),
// step = max(1, floor(n/points)). Indices 0, step, 2*step, ... are sampled,
// at most points+1 of them, so the newest record is always included. The
// result is emitted oldest first.
func (e Engine) ScoreChart(records []model.PredictionRecord, points int, now time.Time) []model.ChartPoint {
	if points <= 0 {
		points = e.opts.ChartPoints
	}
	if points <= 0 {
		points = DefaultChartPoints
	}
	n := len(records)
	if n == 0 {
		return []model.ChartPoint{}
	}

	step := n / points
	if step < 1 {
		step = 1
	}

	count := min(points+1, (n-1)/step+1)
	out := make([]model.ChartPoint, 0, count)
	for j := count - 1; j >= 0; j-- {
		r := &records[j*step]
		out = append(out, model.ChartPoint{
			Timestamp: e.opts.Formatter.Format(r.Timestamp, now).Relative,
			Happiness: optional(r.Happiness()),
			Stress:    optional(r.Stress()),
		})
	}
	return out
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
