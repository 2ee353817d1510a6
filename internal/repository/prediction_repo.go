package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	"wellbeing/internal/analytics"
	"wellbeing/internal/logger"
	"wellbeing/internal/metrics"
	"wellbeing/internal/model"
	"wellbeing/internal/storage"

	"github.com/google/uuid"
)

// Substrate keys. One key holds the whole newest-first record array, the
// other the statistics cache.
const (
	PredictionsKey = "wellbeing_predictions"
	StatsKey       = "wellbeing_stats"
)

// DefaultRecentCount is how many records Recent returns when count <= 0
const DefaultRecentCount = 5

// PredictionRepo owns the persisted prediction history.
//
// Writes are read-modify-write cycles over a single key. They are serialized
// inside one process; processes sharing a substrate race last-write-wins.
type PredictionRepo interface {
	// Load returns the history newest-first. An absent key is an empty
	// history; an unparseable value is ErrCorruptHistory.
	Load(ctx context.Context) ([]model.PredictionRecord, error)
	// GetAll is Load that logs failures and degrades to an empty history.
	GetAll(ctx context.Context) []model.PredictionRecord
	GetByID(ctx context.Context, id string) (*model.PredictionRecord, bool)
	Recent(ctx context.Context, count int) []model.PredictionRecord
	FilterByPersona(ctx context.Context, persona string) []model.PredictionRecord
	FilterByDateRange(ctx context.Context, start, end time.Time) []model.PredictionRecord

	Create(ctx context.Context, input model.Input, output model.Outcome) (*model.PredictionRecord, error)
	// Delete removes a record. A missing id is not an error; removed reports
	// whether anything changed.
	Delete(ctx context.Context, id string) (removed bool, err error)
	// DeleteAll clears the history and the statistics cache.
	DeleteAll(ctx context.Context) error

	Export(ctx context.Context) ([]byte, error)
	// Import replaces the history with payload, which must be a JSON array.
	// Individual entries are not validated. Returns the number of entries.
	Import(ctx context.Context, payload []byte) (int, error)

	// LoadStats reads the statistics cache; nil, nil when absent.
	LoadStats(ctx context.Context) (*model.DerivedStatistics, error)
	SaveStats(ctx context.Context, stats *model.DerivedStatistics) error
}

// RepoOption customizes a PredictionRepo
type RepoOption func(*predictionRepo)

// WithClock replaces time.Now for record timestamps
func WithClock(now func() time.Time) RepoOption {
	return func(r *predictionRepo) { r.now = now }
}

// WithIDGenerator replaces the record id generator
func WithIDGenerator(newID func() string) RepoOption {
	return func(r *predictionRepo) { r.newID = newID }
}

type predictionRepo struct {
	kv    storage.KV
	log   *logger.Logger
	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

// NewPredictionRepo creates the history repository over a key-value substrate
func NewPredictionRepo(kv storage.KV, log *logger.Logger, opts ...RepoOption) PredictionRepo {
	if log == nil {
		log = logger.Nop()
	}
	r := &predictionRepo{
		kv:    kv,
		log:   log,
		now:   time.Now,
		newID: newPredictionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// newPredictionID returns "pred_" + a time-ordered UUIDv7
func newPredictionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "pred_" + id.String()
}

// recordID is the minimal shape read to match ids on raw entries
type recordID struct {
	ID json.RawMessage `json:"id"`
}

// idOf reads the id the same way decode does, so numeric ids still match
func idOf(raw json.RawMessage) string {
	var r recordID
	if err := json.Unmarshal(raw, &r); err != nil {
		return ""
	}
	return model.ParseID(r.ID)
}

// loadRaw returns the stored entries untouched. nil, nil when absent.
func (r *predictionRepo) loadRaw(ctx context.Context) ([]json.RawMessage, error) {
	data, err := r.kv.Get(ctx, PredictionsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersist, PredictionsKey, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raws); err != nil {
		metrics.CorruptReads.WithLabelValues(PredictionsKey).Inc()
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	return raws, nil
}

func (r *predictionRepo) saveRaw(ctx context.Context, raws []json.RawMessage) error {
	if raws == nil {
		raws = []json.RawMessage{}
	}
	data, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("%w: encode history: %w", ErrPersist, err)
	}
	if err := r.kv.Set(ctx, PredictionsKey, string(data)); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersist, PredictionsKey, err)
	}
	return nil
}

// decode turns raw entries into records, skipping entries that are not
// JSON objects. Fields of the wrong type decode to zero values.
func (r *predictionRepo) decode(raws []json.RawMessage) []model.PredictionRecord {
	out := make([]model.PredictionRecord, 0, len(raws))
	for i, raw := range raws {
		var rec model.PredictionRecord
		trimmed := bytes.TrimSpace(raw)
		err := json.Unmarshal(trimmed, &rec)
		if err == nil && bytes.Equal(trimmed, []byte("null")) {
			err = errors.New("null entry")
		}
		if err != nil {
			metrics.MalformedRecords.WithLabelValues("record").Inc()
			r.log.Warn("Skipping malformed prediction record", "index", i, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (r *predictionRepo) Load(ctx context.Context) ([]model.PredictionRecord, error) {
	raws, err := r.loadRaw(ctx)
	if err != nil {
		return []model.PredictionRecord{}, err
	}
	return r.decode(raws), nil
}

func (r *predictionRepo) GetAll(ctx context.Context) []model.PredictionRecord {
	records, err := r.Load(ctx)
	if err != nil {
		r.log.Warn("Reading prediction history failed, using empty history", "error", err)
		return []model.PredictionRecord{}
	}
	return records
}

func (r *predictionRepo) GetByID(ctx context.Context, id string) (*model.PredictionRecord, bool) {
	records := r.GetAll(ctx)
	for i := range records {
		if records[i].ID == id {
			return &records[i], true
		}
	}
	return nil, false
}

func (r *predictionRepo) Recent(ctx context.Context, count int) []model.PredictionRecord {
	if count <= 0 {
		count = DefaultRecentCount
	}
	records := r.GetAll(ctx)
	if len(records) > count {
		records = records[:count]
	}
	return records
}

func (r *predictionRepo) FilterByPersona(ctx context.Context, persona string) []model.PredictionRecord {
	return analytics.FilterByPersona(r.GetAll(ctx), persona)
}

func (r *predictionRepo) FilterByDateRange(ctx context.Context, start, end time.Time) []model.PredictionRecord {
	return analytics.FilterByDateRange(r.GetAll(ctx), start, end)
}

func (r *predictionRepo) Create(ctx context.Context, input model.Input, output model.Outcome) (*model.PredictionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raws, err := r.loadRaw(ctx)
	if errors.Is(err, ErrCorruptHistory) {
		// the unreadable value is replaced, as a read would have shown nothing
		r.log.Warn("Overwriting unreadable prediction history", "error", err)
		raws = nil
	} else if err != nil {
		return nil, err
	}

	live := make(map[string]bool, len(raws))
	for _, raw := range raws {
		live[idOf(raw)] = true
	}
	id := r.newID()
	for live[id] {
		id = r.newID()
	}

	if input == nil {
		input = model.Input{}
	}
	if output.Recommendations == nil {
		output.Recommendations = []string{}
	}
	rec := &model.PredictionRecord{
		ID:        id,
		Timestamp: r.now().UTC(),
		Input:     input,
		Output:    &output,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	next := make([]json.RawMessage, 0, len(raws)+1)
	next = append(next, data)
	next = append(next, raws...)
	if err := r.saveRaw(ctx, next); err != nil {
		return nil, err
	}

	metrics.RecordsCreated.Inc()
	return rec, nil
}

func (r *predictionRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raws, err := r.loadRaw(ctx)
	if errors.Is(err, ErrCorruptHistory) {
		r.log.Warn("Delete on unreadable prediction history", "id", id, "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	kept := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		if idOf(raw) != id {
			kept = append(kept, raw)
		}
	}
	if len(kept) == len(raws) {
		return false, nil
	}

	if err := r.saveRaw(ctx, kept); err != nil {
		return false, err
	}
	metrics.RecordsDeleted.Add(float64(len(raws) - len(kept)))
	return true, nil
}

func (r *predictionRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// stats first: a failure below leaves a history with no cache, which
	// is recomputed, rather than a cache describing deleted records
	if err := r.kv.Remove(ctx, StatsKey); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrPersist, StatsKey, err)
	}

	// only feeds the deleted-records counter
	raws, err := r.loadRaw(ctx)
	if err != nil {
		r.log.Warn("Reading history before clearing failed", "error", err)
	}
	if err := r.kv.Remove(ctx, PredictionsKey); err != nil {
		return fmt.Errorf("%w: remove %s: %w", ErrPersist, PredictionsKey, err)
	}
	metrics.RecordsDeleted.Add(float64(len(raws)))
	return nil
}

func (r *predictionRepo) Export(ctx context.Context) ([]byte, error) {
	raws, err := r.loadRaw(ctx)
	if errors.Is(err, ErrCorruptHistory) {
		r.log.Warn("Exporting unreadable prediction history as empty", "error", err)
		raws = nil
	} else if err != nil {
		return nil, err
	}
	if raws == nil {
		raws = []json.RawMessage{}
	}
	return json.MarshalIndent(raws, "", "  ")
}

func (r *predictionRepo) Import(ctx context.Context, payload []byte) (int, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrInvalidImport
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.saveRaw(ctx, raws); err != nil {
		return 0, err
	}
	metrics.RecordsImported.Add(float64(len(raws)))
	return len(raws), nil
}

func (r *predictionRepo) LoadStats(ctx context.Context) (*model.DerivedStatistics, error) {
	data, err := r.kv.Get(ctx, StatsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersist, StatsKey, err)
	}

	var stats model.DerivedStatistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		metrics.CorruptReads.WithLabelValues(StatsKey).Inc()
		return nil, fmt.Errorf("%w: %v", ErrCorruptStats, err)
	}
	return &stats, nil
}

func (r *predictionRepo) SaveStats(ctx context.Context, stats *model.DerivedStatistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := r.kv.Set(ctx, StatsKey, string(data)); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersist, StatsKey, err)
	}
	return nil
}
