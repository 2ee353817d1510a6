package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"wellbeing/internal/analytics"
	"wellbeing/internal/logger"
	"wellbeing/internal/metrics"
	"wellbeing/internal/model"
	"wellbeing/internal/repository"
)

// HistoryService is the record store's public face: CRUD over the history
// plus the statistics refresh that follows every write.
type HistoryService struct {
	// mu serializes each write with the refresh that follows it, so the
	// cached snapshot always matches the last write
	mu sync.Mutex

	repo        repository.PredictionRepo
	engine      analytics.Engine
	log         *logger.Logger
	now         func() time.Time
	broadcaster Broadcaster
}

// NewHistoryService creates a new history service
func NewHistoryService(repo repository.PredictionRepo, engine analytics.Engine, log *logger.Logger) *HistoryService {
	if log == nil {
		log = logger.Nop()
	}
	return &HistoryService{
		repo:   repo,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

// SetBroadcaster injects the live dashboard feed
func (s *HistoryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces time.Now for statistics snapshots
func (s *HistoryService) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a newly scored assessment
func (s *HistoryService) Create(ctx context.Context, req model.CreatePredictionRequest) (*model.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.Create(ctx, req.Input, req.Output)
	if err != nil {
		s.log.Error("Saving prediction failed", "error", err)
		return nil, err
	}
	s.refreshStats(ctx)
	return rec, nil
}

// List returns the history filtered and sorted by q
func (s *HistoryService) List(ctx context.Context, q model.Query) []model.PredictionRecord {
	return analytics.ApplyQuery(s.repo.GetAll(ctx), q)
}

// ListRange returns records stamped within [start, end]
func (s *HistoryService) ListRange(ctx context.Context, start, end time.Time) []model.PredictionRecord {
	return s.repo.FilterByDateRange(ctx, start, end)
}

// Personas lists the distinct personas in first-seen order, for filter pickers
func (s *HistoryService) Personas(ctx context.Context) []string {
	dist := s.engine.PersonaDistribution(s.repo.GetAll(ctx))
	out := make([]string, 0, len(dist))
	for _, share := range dist {
		out = append(out, share.Persona)
	}
	return out
}

// Get looks up a record by id
func (s *HistoryService) Get(ctx context.Context, id string) (*model.PredictionRecord, bool) {
	return s.repo.GetByID(ctx, id)
}

// Recent returns the newest count records
func (s *HistoryService) Recent(ctx context.Context, count int) []model.PredictionRecord {
	return s.repo.Recent(ctx, count)
}

// Delete removes a record; deleting an unknown id succeeds
func (s *HistoryService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("Deleting prediction failed", "id", id, "error", err)
		return false, err
	}
	if removed {
		s.refreshStats(ctx)
	}
	return removed, nil
}

// DeleteAll clears the history and the statistics cache
func (s *HistoryService) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		s.log.Error("Clearing history failed", "error", err)
		return err
	}
	s.broadcast(s.engine.Compute(nil, s.now()))
	return nil
}

// Export returns the history as an indented JSON array
func (s *HistoryService) Export(ctx context.Context) ([]byte, error) {
	return s.repo.Export(ctx)
}

// Import replaces the history with a JSON array payload
func (s *HistoryService) Import(ctx context.Context, payload []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.repo.Import(ctx, payload)
	if err != nil {
		s.log.Warn("Import rejected", "error", err)
		return 0, err
	}
	s.log.Info("History imported", "records", n)
	s.refreshStats(ctx)
	return n, nil
}

// Stats returns the cached statistics, rebuilding the cache when it is
// missing or unreadable.
func (s *HistoryService) Stats(ctx context.Context) *model.DerivedStatistics {
	cached, err := s.repo.LoadStats(ctx)
	if err == nil && cached != nil {
		return cached
	}
	if err != nil {
		s.log.Warn("Statistics cache unusable, recomputing", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshStats(ctx)
}

// refreshStats recomputes and stores the statistics snapshot. A failed
// cache write is logged only: the snapshot is always recomputable.
// Callers hold s.mu.
func (s *HistoryService) refreshStats(ctx context.Context) *model.DerivedStatistics {
	records, err := s.repo.Load(ctx)
	if err != nil && !errors.Is(err, repository.ErrCorruptHistory) {
		s.log.Warn("Reading history for statistics failed", "error", err)
	}

	stats := s.engine.Compute(records, s.now())
	if err := s.repo.SaveStats(ctx, &stats); err != nil {
		metrics.StatsRefreshes.WithLabelValues("error").Inc()
		s.log.Warn("Saving statistics failed", "error", err)
	} else {
		metrics.StatsRefreshes.WithLabelValues("ok").Inc()
	}

	s.broadcast(stats)
	return &stats
}

func (s *HistoryService) broadcast(stats model.DerivedStatistics) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(MsgStatsUpdated, stats)
	}
}
