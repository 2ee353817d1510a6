package analytics

import (
	"sort"
	"wellbeing/internal/model"
)

// PersonaDistribution counts personas in first-occurrence order. Records
// without an outcome or persona are excluded from both the counts and the
// percentage denominator. An empty (non-nil) distribution is returned when
// nothing valid exists.
func (e Engine) PersonaDistribution(records []model.PredictionRecord) model.Distribution {
	dist := model.Distribution{}
	index := make(map[string]int)

	for i := range records {
		persona, ok := records[i].Persona()
		if !ok {
			e.malformed(records[i].ID, "persona")
			continue
		}
		pos, seen := index[persona]
		if !seen {
			pos = len(dist)
			index[persona] = pos
			dist = append(dist, model.PersonaShare{Persona: persona})
		}
		dist[pos].Count++
	}

	validTotal := dist.Total()
	if validTotal == 0 {
		return dist
	}
	for i := range dist {
		dist[i].Percentage = round1(float64(dist[i].Count) / float64(validTotal) * 100)
	}
	return dist
}

// MostCommonPersona returns the persona with the strictly highest count;
// ties go to the one seen first. model.NoPersona when dist is empty.
func MostCommonPersona(dist model.Distribution) string {
	best := model.NoPersona
	maxCount := 0
	for _, s := range dist {
		if s.Count > maxCount {
			maxCount = s.Count
			best = s.Persona
		}
	}
	return best
}

// PersonaChart turns a distribution into chart slices sorted by count,
// largest first. Equal counts keep distribution order.
func PersonaChart(dist model.Distribution) []model.PersonaSlice {
	out := make([]model.PersonaSlice, 0, len(dist))
	for _, s := range dist {
		out = append(out, model.PersonaSlice{
			Label:      s.Persona,
			Count:      s.Count,
			Percentage: s.Percentage,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
