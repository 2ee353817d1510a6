package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Input is the raw survey answer set (field name -> number or string).
// It is passed through untouched.
type Input map[string]any

// Score is a 0-10 outcome score kept in its wire form so that malformed
// values survive a round trip and are only rejected when aggregated.
type Score struct {
	raw json.RawMessage
}

// NewScore builds a numeric score.
func NewScore(v float64) *Score {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &Score{raw: json.RawMessage("null")}
	}
	return &Score{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))}
}

// Value returns the score as a finite number. Numeric strings are accepted;
// anything else (missing, null, NaN, text) reports ok=false.
func (s *Score) Value() (float64, bool) {
	if s == nil || len(s.raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(s.raw, &f); err == nil {
		return f, true
	}

	var str string
	if err := json.Unmarshal(s.raw, &str); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (s Score) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

func (s *Score) UnmarshalJSON(data []byte) error {
	s.raw = append(s.raw[:0], data...)
	return nil
}

// Outcome is the externally scored result of one assessment
type Outcome struct {
	HappinessScore  *Score   `json:"happiness_score,omitempty"`
	StressScore     *Score   `json:"stress_score,omitempty"`
	Persona         string   `json:"persona"`
	Recommendations []string `json:"recommendations"`
}

// PredictionRecord is one completed assessment
type PredictionRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Input     Input     `json:"input"`
	Output    *Outcome  `json:"output"`
}

// Persona returns the outcome persona; ok is false when the outcome or the
// persona is missing.
func (r *PredictionRecord) Persona() (string, bool) {
	if r.Output == nil || r.Output.Persona == "" {
		return "", false
	}
	return r.Output.Persona, true
}

// Happiness returns the happiness score when it is a finite number.
func (r *PredictionRecord) Happiness() (float64, bool) {
	if r.Output == nil {
		return 0, false
	}
	return r.Output.HappinessScore.Value()
}

// Stress returns the stress score when it is a finite number.
func (r *PredictionRecord) Stress() (float64, bool) {
	if r.Output == nil {
		return 0, false
	}
	return r.Output.StressScore.Value()
}

// timestampLayouts are tried in order; zoneless forms are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var errNotObject = errors.New("not a JSON object")

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ParseID reads an id given as a string or a number. Anything else is "".
func ParseID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// ParseTimestamp reads an ISO-8601 string (with or without zone) or epoch
// milliseconds. Unreadable values give the zero time.
func ParseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
		return time.Time{}
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		return time.UnixMilli(int64(ms)).UTC()
	}
	return time.Time{}
}

// UnmarshalJSON accepts any object. Only the persona and the scores feed
// aggregation, so the other fields fall back to zero values when their
// type is wrong.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return errNotObject
	}
	var wire struct {
		HappinessScore  json.RawMessage `json:"happiness_score"`
		StressScore     json.RawMessage `json:"stress_score"`
		Persona         json.RawMessage `json:"persona"`
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*o = Outcome{}
	o.HappinessScore = rawScore(wire.HappinessScore)
	o.StressScore = rawScore(wire.StressScore)
	json.Unmarshal(wire.Persona, &o.Persona)
	o.Recommendations = parseRecommendations(wire.Recommendations)
	return nil
}

func rawScore(raw json.RawMessage) *Score {
	if raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return &Score{raw: raw}
}

// parseRecommendations takes a string list, keeping its string items, or a
// single string.
func parseRecommendations(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// UnmarshalJSON accepts any object; see Outcome.UnmarshalJSON
func (r *PredictionRecord) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return errNotObject
	}
	var wire struct {
		ID        json.RawMessage `json:"id"`
		Timestamp json.RawMessage `json:"timestamp"`
		Input     json.RawMessage `json:"input"`
		Output    json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = PredictionRecord{
		ID:        ParseID(wire.ID),
		Timestamp: ParseTimestamp(wire.Timestamp),
	}
	if isObject(wire.Input) {
		json.Unmarshal(wire.Input, &r.Input)
	}
	if isObject(wire.Output) {
		var out Outcome
		if err := out.UnmarshalJSON(wire.Output); err == nil {
			r.Output = &out
		}
	}
	return nil
}

// CreatePredictionRequest is the write-path payload: the survey input and
// the already computed outcome.
type CreatePredictionRequest struct {
	Input  Input   `json:"input"`
	Output Outcome `json:"output"`
}
