package analytics

import (
	"fmt"
	"time"
	"wellbeing/internal/model"
)

// TimeFormatter renders record timestamps for history and chart labels
type TimeFormatter struct {
	Location       *time.Location
	DateLayout     string // used for the relative label past 30 days
	DateTimeLayout string // the absolute timestamp
}

// DefaultTimeFormatter uses UTC and day-first layouts
func DefaultTimeFormatter() TimeFormatter {
	return TimeFormatter{
		Location:       time.UTC,
		DateLayout:     "02/01/2006",
		DateTimeLayout: "02/01/2006 15:04",
	}
}

// Format renders ts relative to now. Buckets, each lower bound inclusive:
//
//	< 1 minute   just now
//	< 60 minutes N minute(s) ago
//	< 24 hours   N hour(s) ago
//	< 30 days    N day(s) ago
//	otherwise    the calendar date
//
// Timestamps in the future count as "just now".
func (f TimeFormatter) Format(ts, now time.Time) model.FormattedTime {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)

	elapsed := now.Sub(ts)
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int(elapsed / time.Minute)
	hours := int(elapsed / time.Hour)
	days := int(elapsed / (24 * time.Hour))

	var relative string
	switch {
	case minutes < 1:
		relative = "just now"
	case minutes < 60:
		relative = plural(minutes, "minute") + " ago"
	case hours < 24:
		relative = plural(hours, "hour") + " ago"
	case days < 30:
		relative = plural(days, "day") + " ago"
	default:
		relative = local.Format(layoutOr(f.DateLayout, "02/01/2006"))
	}

	return model.FormattedTime{
		Relative: relative,
		Absolute: local.Format(layoutOr(f.DateTimeLayout, "02/01/2006 15:04")),
		Time:     ts,
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func layoutOr(layout, fallback string) string {
	if layout == "" {
		return fallback
	}
	return layout
}
