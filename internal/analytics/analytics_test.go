package analytics

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
	"wellbeing/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// rec builds a record aged by the given duration relative to testNow
func rec(id string, age time.Duration, persona string, happiness, stress float64) model.PredictionRecord {
	return model.PredictionRecord{
		ID:        id,
		Timestamp: testNow.Add(-age),
		Input:     model.Input{"age": 30},
		Output: &model.Outcome{
			HappinessScore:  model.NewScore(happiness),
			StressScore:     model.NewScore(stress),
			Persona:         persona,
			Recommendations: []string{"sleep more"},
		},
	}
}

// decodeRecord builds a record from raw JSON, for malformed shapes
func decodeRecord(t *testing.T, raw string) model.PredictionRecord {
	t.Helper()
	var r model.PredictionRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestPersonaDistribution(t *testing.T) {
	e := NewEngine(Options{})
	records := []model.PredictionRecord{
		rec("1", time.Hour, "Balanced", 7, 3),
		rec("2", 2*time.Hour, "Doomscroller", 4, 7),
		rec("3", 3*time.Hour, "Balanced", 8, 2),
	}

	dist := e.PersonaDistribution(records)
	require.Len(t, dist, 2)
	assert.Equal(t, "Balanced", dist[0].Persona)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, 66.7, dist[0].Percentage)
	assert.Equal(t, "Doomscroller", dist[1].Persona)
	assert.Equal(t, 33.3, dist[1].Percentage)
}

func TestPersonaDistributionSkipsMalformed(t *testing.T) {
	var skipped []string
	e := NewEngine(Options{OnMalformed: func(id, field string) {
		skipped = append(skipped, id+":"+field)
	}})

	records := []model.PredictionRecord{
		rec("1", time.Hour, "Balanced", 7, 3),
		decodeRecord(t, `{"id":"2","timestamp":"2026-03-15T10:00:00Z"}`),
		decodeRecord(t, `{"id":"3","timestamp":"2026-03-15T09:00:00Z","output":{"happiness_score":5}}`),
		rec("4", 4*time.Hour, "Night Owl", 5, 5),
	}

	dist := e.PersonaDistribution(records)
	require.Len(t, dist, 2)
	assert.Equal(t, 2, dist.Total())
	assert.Equal(t, 50.0, dist[0].Percentage)
	assert.Equal(t, 50.0, dist[1].Percentage)
	assert.Equal(t, []string{"2:persona", "3:persona"}, skipped)
}

func TestPersonaDistributionEmpty(t *testing.T) {
	e := NewEngine(Options{})
	dist := e.PersonaDistribution(nil)
	assert.NotNil(t, dist)
	assert.Empty(t, dist)
	assert.Equal(t, model.NoPersona, MostCommonPersona(dist))

	data, err := json.Marshal(dist)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestPersonaPercentagesSumToHundred(t *testing.T) {
	e := NewEngine(Options{})
	personas := []string{"A", "B", "C", "D", "E", "F", "G"}

	for n := 1; n <= 40; n++ {
		var records []model.PredictionRecord
		for i := 0; i < n; i++ {
			records = append(records, rec(fmt.Sprint(i), time.Duration(i)*time.Minute, personas[(i*i+3*i)%len(personas)], 5, 5))
		}
		dist := e.PersonaDistribution(records)

		sum := 0.0
		for _, s := range dist {
			sum += s.Percentage
		}
		assert.InDelta(t, 100.0, sum, 0.1*float64(len(dist)), "n=%d", n)
	}
}

func TestMostCommonPersonaTieGoesToFirstSeen(t *testing.T) {
	dist := model.Distribution{
		{Persona: "Night Owl", Count: 2},
		{Persona: "Balanced", Count: 3},
		{Persona: "Doomscroller", Count: 3},
	}
	assert.Equal(t, "Balanced", MostCommonPersona(dist))
}

func TestPersonaChartSortedByCount(t *testing.T) {
	dist := model.Distribution{
		{Persona: "A", Count: 1, Percentage: 16.7},
		{Persona: "B", Count: 3, Percentage: 50},
		{Persona: "C", Count: 2, Percentage: 33.3},
	}
	chart := PersonaChart(dist)
	require.Len(t, chart, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{chart[0].Label, chart[1].Label, chart[2].Label})
	assert.Equal(t, 50.0, chart[0].Percentage)
}

func TestAverageScores(t *testing.T) {
	e := NewEngine(Options{})

	assert.Equal(t, model.Averages{}, e.AverageScores(nil))

	records := []model.PredictionRecord{
		rec("1", time.Hour, "A", 8, 6),
		rec("2", time.Hour, "A", 4, 2),
	}
	assert.Equal(t, model.Averages{Happiness: 6.0, Stress: 4.0}, e.AverageScores(records))
}

func TestAverageScoresSkipsInvalidValues(t *testing.T) {
	e := NewEngine(Options{})
	records := []model.PredictionRecord{
		rec("1", time.Hour, "A", 7, 3),
		decodeRecord(t, `{"id":"2","timestamp":"2026-03-15T10:00:00Z","output":{"happiness_score":"8.5","stress_score":"n/a","persona":"A"}}`),
		decodeRecord(t, `{"id":"3","timestamp":"2026-03-15T10:00:00Z","output":{"happiness_score":null,"persona":"A"}}`),
		decodeRecord(t, `{"id":"4","timestamp":"2026-03-15T10:00:00Z"}`),
	}

	avg := e.AverageScores(records)
	assert.Equal(t, 7.8, avg.Happiness) // (7 + 8.5) / 2 = 7.75
	assert.Equal(t, 3.0, avg.Stress)
}

func TestRecentWindowInclusiveLowerBound(t *testing.T) {
	records := []model.PredictionRecord{
		rec("new", time.Hour, "A", 5, 5),
		rec("edge", 7*24*time.Hour, "A", 5, 5),
		rec("old", 7*24*time.Hour+time.Second, "A", 5, 5),
	}
	got := RecentWindow(records, 7, testNow)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)
}

func TestScoreTrends(t *testing.T) {
	e := NewEngine(Options{})

	tests := []struct {
		name      string
		happiness []float64
		stress    []float64
		wantH     model.Trend
		wantS     model.Trend
	}{
		{
			name:      "rising happiness",
			happiness: []float64{9, 9, 3, 3},
			stress:    []float64{5, 5, 5, 5},
			wantH:     model.Trend{Direction: model.TrendUp, Change: 6.0},
			wantS:     model.Trend{Direction: model.TrendNeutral, Change: 0},
		},
		{
			name:      "falling stress, odd window",
			happiness: []float64{5, 5, 5},
			stress:    []float64{2, 6, 8},
			wantH:     model.Trend{Direction: model.TrendNeutral, Change: 0},
			wantS:     model.Trend{Direction: model.TrendDown, Change: -5.0},
		},
		{
			name:      "within threshold",
			happiness: []float64{6, 5.5},
			stress:    []float64{4.5, 5},
			wantH:     model.Trend{Direction: model.TrendNeutral, Change: 0.5},
			wantS:     model.Trend{Direction: model.TrendNeutral, Change: -0.5},
		},
		{
			name:      "single record",
			happiness: []float64{9},
			stress:    []float64{1},
			wantH:     model.Trend{Direction: model.TrendNeutral},
			wantS:     model.Trend{Direction: model.TrendNeutral},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []model.PredictionRecord
			for i := range tt.happiness {
				records = append(records, rec(fmt.Sprint(i), time.Duration(i+1)*time.Hour, "A", tt.happiness[i], tt.stress[i]))
			}
			got := e.ScoreTrends(records, 30, testNow)
			assert.Equal(t, tt.wantH, got.Happiness)
			assert.Equal(t, tt.wantS, got.Stress)
		})
	}
}

func TestScoreTrendsEmptyWindow(t *testing.T) {
	e := NewEngine(Options{})
	records := []model.PredictionRecord{rec("old", 90*24*time.Hour, "A", 9, 9)}

	got := e.ScoreTrends(records, 30, testNow)
	assert.Equal(t, model.Trends{
		Happiness: model.Trend{Direction: model.TrendNeutral},
		Stress:    model.Trend{Direction: model.TrendNeutral},
	}, got)
}

func TestScoreChartDownSampling(t *testing.T) {
	e := NewEngine(Options{})

	// newest first: index 0 is one hour old, index 22 is 23 hours old
	var records []model.PredictionRecord
	for i := 0; i < 23; i++ {
		records = append(records, rec(fmt.Sprint(i), time.Duration(i+1)*time.Hour, "A", float64(i%10), 5))
	}

	points := e.ScoreChart(records, 10, testNow)
	require.LessOrEqual(t, len(points), 11)
	require.Len(t, points, 11)

	// step 2 from the newest: 0, 2, ..., 20 -> oldest first
	assert.Equal(t, "21 hours ago", points[0].Timestamp)
	assert.Equal(t, "19 hours ago", points[1].Timestamp)
	assert.Equal(t, "1 hour ago", points[10].Timestamp)
	require.NotNil(t, points[0].Happiness)
	assert.Equal(t, 0.0, *points[0].Happiness)
}

func TestScoreChartEndsAtNewestRecord(t *testing.T) {
	e := NewEngine(Options{})
	for n := 1; n <= 60; n++ {
		records := make([]model.PredictionRecord, n)
		for i := range records {
			records[i] = rec(fmt.Sprint(i), time.Duration(i+1)*time.Hour, "A", 5, 5)
		}
		for _, k := range []int{1, 3, 10} {
			points := e.ScoreChart(records, k, testNow)
			require.NotEmpty(t, points)
			assert.Equal(t, "1 hour ago", points[len(points)-1].Timestamp, "n=%d k=%d", n, k)
		}
	}

	// n=19, k=10: step 1, indices 0..10
	records := make([]model.PredictionRecord, 19)
	for i := range records {
		records[i] = rec(fmt.Sprint(i), time.Duration(i+1)*time.Hour, "A", 5, 5)
	}
	points := e.ScoreChart(records, 10, testNow)
	require.Len(t, points, 11)
	assert.Equal(t, "11 hours ago", points[0].Timestamp)
	assert.Equal(t, "1 hour ago", points[10].Timestamp)
}

func TestScoreChartSmallAndEmpty(t *testing.T) {
	e := NewEngine(Options{})
	assert.Empty(t, e.ScoreChart(nil, 10, testNow))

	records := []model.PredictionRecord{
		rec("new", time.Minute, "A", 8, 2),
		decodeRecord(t, `{"id":"old","timestamp":"2026-03-15T10:00:00Z","output":{"persona":"A"}}`),
	}
	points := e.ScoreChart(records, 0, testNow)
	require.Len(t, points, 2)
	assert.Equal(t, "2 hours ago", points[0].Timestamp)
	assert.Nil(t, points[0].Happiness)
	assert.Equal(t, "1 minute ago", points[1].Timestamp)
	require.NotNil(t, points[1].Stress)
	assert.Equal(t, 2.0, *points[1].Stress)
}

func TestScoreChartNeverExceedsPointsPlusOne(t *testing.T) {
	e := NewEngine(Options{})
	for n := 1; n <= 120; n++ {
		records := make([]model.PredictionRecord, n)
		for i := range records {
			records[i] = rec(fmt.Sprint(i), time.Duration(i)*time.Minute, "A", 5, 5)
		}
		for _, k := range []int{1, 3, 10} {
			assert.LessOrEqual(t, len(e.ScoreChart(records, k, testNow)), k+1, "n=%d k=%d", n, k)
		}
	}
}

func TestTimeFormatterBuckets(t *testing.T) {
	f := DefaultTimeFormatter()

	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "just now"},
		{45 * time.Second, "just now"},
		{59*time.Second + 999*time.Millisecond, "just now"},
		{60 * time.Second, "1 minute ago"},
		{59 * time.Minute, "59 minutes ago"},
		{60 * time.Minute, "1 hour ago"},
		{90 * time.Minute, "1 hour ago"},
		{23*time.Hour + 59*time.Minute, "23 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{10 * 24 * time.Hour, "10 days ago"},
		{29*24*time.Hour + 23*time.Hour, "29 days ago"},
		{30 * 24 * time.Hour, "13/02/2026"},
		{-time.Hour, "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			got := f.Format(testNow.Add(-tt.elapsed), testNow)
			assert.Equal(t, tt.want, got.Relative)
		})
	}
}

func TestTimeFormatterAbsoluteUsesLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	f := TimeFormatter{Location: loc, DateTimeLayout: "02/01/2006 15:04"}

	got := f.Format(testNow, testNow)
	assert.Equal(t, "15/03/2026 19:00", got.Absolute)
	assert.True(t, got.Time.Equal(testNow))
}

func TestApplyQuery(t *testing.T) {
	records := []model.PredictionRecord{
		rec("1", 1*time.Hour, "Balanced", 6, 3),
		rec("2", 2*time.Hour, "Night Owl", 9, 8),
		rec("3", 3*time.Hour, "Balanced", 8, 1),
		decodeRecord(t, `{"id":"4","timestamp":"2026-03-15T07:00:00Z","output":{"persona":"Balanced"}}`),
	}

	ids := func(rs []model.PredictionRecord) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(ApplyQuery(records, model.Query{})))
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(ApplyQuery(records, model.Query{SortKey: model.SortOldest})))
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(ApplyQuery(records, model.Query{SortKey: model.SortHappiness})))
	assert.Equal(t, []string{"2", "1", "3", "4"}, ids(ApplyQuery(records, model.Query{SortKey: model.SortStress})))
	assert.Equal(t, []string{"3", "1", "4"}, ids(ApplyQuery(records, model.Query{PersonaFilter: "Balanced", SortKey: model.SortHappiness})))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(ApplyQuery(records, model.Query{PersonaFilter: "all", SortKey: "bogus"})))

	// input order untouched
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(records))
}

func TestFilterByDateRangeInclusive(t *testing.T) {
	records := []model.PredictionRecord{
		rec("1", 1*time.Hour, "A", 5, 5),
		rec("2", 2*time.Hour, "A", 5, 5),
		rec("3", 3*time.Hour, "A", 5, 5),
	}
	got := FilterByDateRange(records, testNow.Add(-3*time.Hour), testNow.Add(-2*time.Hour))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestDashboardAndCompute(t *testing.T) {
	e := NewEngine(Options{})
	records := []model.PredictionRecord{
		rec("1", 1*time.Hour, "Balanced", 9, 2),
		rec("2", 2*24*time.Hour, "Balanced", 9, 2),
		rec("3", 10*24*time.Hour, "Night Owl", 3, 8),
		rec("4", 12*24*time.Hour, "Night Owl", 3, 8),
	}

	dash := e.Dashboard(records, testNow)
	assert.Equal(t, 4, dash.Total)
	assert.Equal(t, 2, dash.RecentCount)
	assert.Equal(t, model.Averages{Happiness: 6, Stress: 5}, dash.AverageScores)
	assert.Equal(t, "Balanced", dash.MostCommonPersona)
	assert.Equal(t, model.TrendUp, dash.Trends.Happiness.Direction)
	assert.Equal(t, model.TrendDown, dash.Trends.Stress.Direction)
	assert.Equal(t, -6.0, dash.Trends.Stress.Change)

	stats := e.Compute(records, testNow)
	assert.Equal(t, 4, stats.TotalCount)
	assert.Equal(t, 6.0, stats.AverageHappiness)
	assert.Equal(t, dash.PersonaDistribution, stats.PersonaDistribution)
	assert.Equal(t, dash.Trends, stats.Trend)
	assert.True(t, stats.LastUpdated.Equal(testNow))
}
