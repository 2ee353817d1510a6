package analytics

import "wellbeing/internal/model"

// AverageScores averages happiness and stress independently. A record whose
// score is missing or not a finite number is left out of that metric's sum
// and count. Both averages are 0 when nothing valid exists.
func (e Engine) AverageScores(records []model.PredictionRecord) model.Averages {
	var hSum, sSum float64
	var hCount, sCount int

	for i := range records {
		if h, ok := records[i].Happiness(); ok {
			hSum += h
			hCount++
		} else {
			e.malformed(records[i].ID, "happiness_score")
		}
		if s, ok := records[i].Stress(); ok {
			sSum += s
			sCount++
		} else {
			e.malformed(records[i].ID, "stress_score")
		}
	}

	avg := model.Averages{}
	if hCount > 0 {
		avg.Happiness = round1(hSum / float64(hCount))
	}
	if sCount > 0 {
		avg.Stress = round1(sSum / float64(sCount))
	}
	return avg
}

// mean is the unrounded average of a metric over the valid records
func mean(records []model.PredictionRecord, metric func(*model.PredictionRecord) (float64, bool)) (float64, bool) {
	var sum float64
	n := 0
	for i := range records {
		if v, ok := metric(&records[i]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
