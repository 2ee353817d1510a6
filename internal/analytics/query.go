package analytics

import (
	"sort"
	"time"
	"wellbeing/internal/model"
)

// AllPersonas is the persona filter value that matches everything
const AllPersonas = "all"

// FilterByPersona keeps records whose persona equals persona exactly.
// "all" and "" match everything.
func FilterByPersona(records []model.PredictionRecord, persona string) []model.PredictionRecord {
	if persona == "" || persona == AllPersonas {
		return records
	}
	out := make([]model.PredictionRecord, 0, len(records))
	for i := range records {
		if p, ok := records[i].Persona(); ok && p == persona {
			out = append(out, records[i])
		}
	}
	return out
}

// FilterByDateRange keeps records with start <= timestamp <= end
func FilterByDateRange(records []model.PredictionRecord, start, end time.Time) []model.PredictionRecord {
	out := make([]model.PredictionRecord, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// ParseSortKey maps user input to a sort key, defaulting to newest first
func ParseSortKey(s string) model.SortKey {
	switch model.SortKey(s) {
	case model.SortOldest, model.SortHappiness, model.SortStress:
		return model.SortKey(s)
	default:
		return model.SortNewest
	}
}

// ApplyQuery filters by persona and sorts a newest-first sequence into a
// new slice; the input is never reordered. Score sorts are descending,
// stable, and put records without a usable score last.
func ApplyQuery(records []model.PredictionRecord, q model.Query) []model.PredictionRecord {
	filtered := FilterByPersona(records, q.PersonaFilter)
	out := make([]model.PredictionRecord, len(filtered))
	copy(out, filtered)

	switch ParseSortKey(string(q.SortKey)) {
	case model.SortOldest:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	case model.SortHappiness:
		sortByScore(out, happinessOf)
	case model.SortStress:
		sortByScore(out, stressOf)
	}
	return out
}

func sortByScore(records []model.PredictionRecord, metric func(*model.PredictionRecord) (float64, bool)) {
	sort.SliceStable(records, func(i, j int) bool {
		a, okA := metric(&records[i])
		b, okB := metric(&records[j])
		if okA != okB {
			return okA
		}
		return okA && a > b
	})
}
