package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// NoPersona is reported as the most common persona when nothing valid exists
const NoPersona = "none available"

// PersonaShare is one persona's slice of the distribution
type PersonaShare struct {
	Persona    string  `json:"-"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution is the persona distribution in first-occurrence order.
// It serializes as a JSON object persona -> {count, percentage}.
type Distribution []PersonaShare

// Get looks up a persona
func (d Distribution) Get(persona string) (PersonaShare, bool) {
	for _, s := range d {
		if s.Persona == persona {
			return s, true
		}
	}
	return PersonaShare{}, false
}

// Total is the number of valid records tallied
func (d Distribution) Total() int {
	n := 0
	for _, s := range d {
		n += s.Count
	}
	return n
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Persona)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("distribution: expected object, got %v", tok)
	}

	out := Distribution{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("distribution: expected key, got %v", keyTok)
		}
		var share PersonaShare
		if err := dec.Decode(&share); err != nil {
			return err
		}
		share.Persona = key
		out = append(out, share)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// Averages holds mean scores rounded to one decimal
type Averages struct {
	Happiness float64 `json:"happiness"`
	Stress    float64 `json:"stress"`
}

// TrendDirection classifies a score change
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// Trend is a signed comparison between the older and newer half of a window
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Change    float64        `json:"change"`
}

// Trends pairs the happiness and stress trends
type Trends struct {
	Happiness Trend `json:"happiness"`
	Stress    Trend `json:"stress"`
}

// DerivedStatistics is the cached statistics snapshot. It is always
// recomputable from the record collection.
type DerivedStatistics struct {
	TotalCount          int          `json:"totalCount"`
	AverageHappiness    float64      `json:"averageHappiness"`
	AverageStress       float64      `json:"averageStress"`
	MostCommonPersona   string       `json:"mostCommonPersona"`
	PersonaDistribution Distribution `json:"personaDistribution"`
	Trend               Trends       `json:"trend"`
	LastUpdated         time.Time    `json:"lastUpdated"`
}

// DashboardStats is the dashboard summary
type DashboardStats struct {
	Total               int          `json:"total"`
	RecentCount         int          `json:"recentCount"`
	AverageScores       Averages     `json:"averageScores"`
	MostCommonPersona   string       `json:"mostCommonPersona"`
	PersonaDistribution Distribution `json:"personaDistribution"`
	Trends              Trends       `json:"trends"`
}

// ChartPoint is one sampled point of the score chart. Scores are nil when
// the record carried no usable value.
type ChartPoint struct {
	Timestamp string   `json:"timestamp"`
	Happiness *float64 `json:"happiness"`
	Stress    *float64 `json:"stress"`
}

// PersonaSlice is one bar/slice of the persona chart
type PersonaSlice struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FormattedTime is a timestamp rendered for display
type FormattedTime struct {
	Relative string    `json:"relative"`
	Absolute string    `json:"absolute"`
	Time     time.Time `json:"date"`
}

// SortKey orders a history listing
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortHappiness SortKey = "happiness"
	SortStress    SortKey = "stress"
)

// Query is the history view's filter and sort selection
type Query struct {
	PersonaFilter string  `json:"personaFilter"`
	SortKey       SortKey `json:"sortKey"`
}
