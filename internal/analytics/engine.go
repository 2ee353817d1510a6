// Package analytics derives dashboard statistics, trends and chart series
// from a newest-first sequence of prediction records.
//
// Everything here is a pure function of its inputs: the clock is always
// passed in, and nothing is written back to the store. Records with missing
// or non-numeric fields are skipped by each aggregation rather than failing
// it; the optional Options.OnMalformed hook is told about every skip.
package analytics

import (
	"math"
	"wellbeing/internal/model"
)

const (
	DefaultRecentDays  = 7
	DefaultTrendDays   = 30
	DefaultChartPoints = 10

	// trendThreshold is the minimum absolute change classified as up/down
	trendThreshold = 0.5
)

// MalformedFunc is told about a record skipped by an aggregation.
// field is "persona", "happiness_score" or "stress_score".
type MalformedFunc func(recordID, field string)

// Options tunes the engine
type Options struct {
	RecentDays  int
	TrendDays   int
	ChartPoints int
	Formatter   TimeFormatter
	OnMalformed MalformedFunc
}

// DefaultOptions returns the dashboard defaults: a 7 day recent window,
// 30 day trends and 10 chart points.
func DefaultOptions() Options {
	return Options{
		RecentDays:  DefaultRecentDays,
		TrendDays:   DefaultTrendDays,
		ChartPoints: DefaultChartPoints,
		Formatter:   DefaultTimeFormatter(),
	}
}

// Engine computes statistics. It holds configuration only; build it with
// NewEngine so unset options get their defaults.
type Engine struct {
	opts Options
}

// NewEngine creates an engine, filling unset options with defaults
func NewEngine(opts Options) Engine {
	def := DefaultOptions()
	if opts.RecentDays <= 0 {
		opts.RecentDays = def.RecentDays
	}
	if opts.TrendDays <= 0 {
		opts.TrendDays = def.TrendDays
	}
	if opts.ChartPoints <= 0 {
		opts.ChartPoints = def.ChartPoints
	}
	if opts.Formatter.Location == nil {
		opts.Formatter.Location = def.Formatter.Location
	}
	if opts.Formatter.DateLayout == "" {
		opts.Formatter.DateLayout = def.Formatter.DateLayout
	}
	if opts.Formatter.DateTimeLayout == "" {
		opts.Formatter.DateTimeLayout = def.Formatter.DateTimeLayout
	}
	return Engine{opts: opts}
}

// Options returns the effective options
func (e Engine) Options() Options {
	return e.opts
}

func (e Engine) malformed(recordID, field string) {
	if e.opts.OnMalformed != nil {
		e.opts.OnMalformed(recordID, field)
	}
}

// round1 rounds to one decimal, folding -0 into 0.
func round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

func happinessOf(r *model.PredictionRecord) (float64, bool) { return r.Happiness() }
func stressOf(r *model.PredictionRecord) (float64, bool)    { return r.Stress() }
