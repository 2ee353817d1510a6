package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)
	cases := map[string]time.Time{
		`"2025-01-01T10:30:00Z"`:      want,
		`"2025-01-01T10:30:00.000Z"`:  want,
		`"2025-01-01T10:30:00"`:       want,
		`"2025-01-01 10:30:00"`:       want,
		`"2025-01-01"`:                time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		`1735727400000`:               want,
		`"yesterday"`:                 {},
		`true`:                        {},
		`null`:                        {},
	}
	for raw, expected := range cases {
		assert.True(t, expected.Equal(ParseTimestamp(json.RawMessage(raw))), "timestamp %s", raw)
	}
}

func TestRecordDecodingOnlyRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`42`, `null`, `"junk"`, `[]`} {
		var rec PredictionRecord
		assert.Error(t, json.Unmarshal([]byte(raw), &rec), raw)
	}

	var rec PredictionRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"output":{"persona":3,"happiness_score":"6.5","recommendations":["a",2,"b"]}}`), &rec))
	assert.Equal(t, "7", rec.ID)
	assert.True(t, rec.Timestamp.IsZero())
	_, ok := rec.Persona()
	assert.False(t, ok)
	h, ok := rec.Happiness()
	assert.True(t, ok)
	assert.Equal(t, 6.5, h)
	assert.Equal(t, []string{"a", "b"}, rec.Output.Recommendations)
}
