package analytics

import (
	"time"
	"wellbeing/internal/model"
)

// Compute builds the cacheable statistics snapshot
func (e Engine) Compute(records []model.PredictionRecord, now time.Time) model.DerivedStatistics {
	dist := e.PersonaDistribution(records)
	avg := e.AverageScores(records)

	return model.DerivedStatistics{
		TotalCount:          len(records),
		AverageHappiness:    avg.Happiness,
		AverageStress:       avg.Stress,
		MostCommonPersona:   MostCommonPersona(dist),
		PersonaDistribution: dist,
		Trend:               e.ScoreTrends(records, e.opts.TrendDays, now),
		LastUpdated:         now,
	}
}

// Dashboard builds the dashboard summary: totals, the recent-window count,
// averages, persona distribution and trends.
func (e Engine) Dashboard(records []model.PredictionRecord, now time.Time) model.DashboardStats {
	dist := e.PersonaDistribution(records)

	return model.DashboardStats{
		Total:               len(records),
		RecentCount:         len(e.Recent(records, now)),
		AverageScores:       e.AverageScores(records),
		MostCommonPersona:   MostCommonPersona(dist),
		PersonaDistribution: dist,
		Trends:              e.ScoreTrends(records, e.opts.TrendDays, now),
	}
}
