package service

import (
	"context"
	"sync"
	"time"
	"wellbeing/internal/analytics"
	"wellbeing/internal/logger"
	"wellbeing/internal/metrics"
	"wellbeing/internal/model"
	"wellbeing/internal/repository"
)

// DashboardService serves read-only analytics over the history
type DashboardService struct {
	repo   repository.PredictionRepo
	engine analytics.Engine
	now    func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo repository.PredictionRepo, engine analytics.Engine) *DashboardService {
	return &DashboardService{
		repo:   repo,
		engine: engine,
		now:    time.Now,
	}
}

// SetClock replaces time.Now
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Dashboard returns the dashboard summary
func (s *DashboardService) Dashboard(ctx context.Context) model.DashboardStats {
	return s.engine.Dashboard(s.repo.GetAll(ctx), s.now())
}

// ScoreChart returns the down-sampled score series, oldest first
func (s *DashboardService) ScoreChart(ctx context.Context, points int) []model.ChartPoint {
	return s.engine.ScoreChart(s.repo.GetAll(ctx), points, s.now())
}

// PersonaChart returns persona counts sorted largest first
func (s *DashboardService) PersonaChart(ctx context.Context) []model.PersonaSlice {
	return analytics.PersonaChart(s.engine.PersonaDistribution(s.repo.GetAll(ctx)))
}

// Trends compares the older and newer half of the last days
func (s *DashboardService) Trends(ctx context.Context, days int) model.Trends {
	return s.engine.ScoreTrends(s.repo.GetAll(ctx), days, s.now())
}

// FormatTime renders a timestamp relative to now
func (s *DashboardService) FormatTime(ts time.Time) model.FormattedTime {
	return s.engine.Options().Formatter.Format(ts, s.now())
}

// MalformedReporter logs and counts records skipped by the analytics engine.
// Every aggregation pass revisits the whole history, so each record and
// field pair is reported only the first time it is seen.
func MalformedReporter(log *logger.Logger) analytics.MalformedFunc {
	if log == nil {
		log = logger.Nop()
	}
	var (
		mu   sync.Mutex
		seen = make(map[[2]string]struct{})
	)
	return func(recordID, field string) {
		key := [2]string{recordID, field}
		mu.Lock()
		_, dup := seen[key]
		seen[key] = struct{}{}
		mu.Unlock()
		if dup {
			return
		}
		metrics.MalformedRecords.WithLabelValues(field).Inc()
		log.Warn("Skipping malformed prediction", "id", recordID, "field", field)
	}
}
