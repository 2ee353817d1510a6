package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"time"
	"wellbeing/internal/app"
	"wellbeing/internal/config"
	"wellbeing/internal/logger"
	"wellbeing/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	count int
	days  int
	seed  uint64
	until string
}

var personas = []string{"Light User", "Moderate User", "Doom-Scroller"}

var recommendations = map[string][]string{
	"Light User": {
		"Keep up your current balance between online and offline time",
		"Spend quality time with the people close to you",
	},
	"Moderate User": {
		"Moderate stress detected. Balance work and personal time",
		"Turn off non-essential notifications",
	},
	"Doom-Scroller": {
		"Set a daily Instagram limit of one to two hours",
		"Try meditation or a short mindfulness exercise",
		"Aim for 7 to 9 hours of sleep each night",
	},
}

func main() {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the assessment history with a deterministic sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.count, "count", 40, "number of assessments to generate")
	cmd.Flags().IntVar(&opts.days, "days", 30, "spread assessments over this many days")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 2026, "random seed")
	cmd.Flags().StringVar(&opts.until, "until", "", "newest timestamp, RFC 3339 (default now)")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts seedOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	until := time.Now().UTC()
	if opts.until != "" {
		if until, err = time.Parse(time.RFC3339, opts.until); err != nil {
			return fmt.Errorf("--until: %w", err)
		}
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	payload, err := json.Marshal(generate(opts.count, opts.days, opts.seed, until))
	if err != nil {
		return err
	}
	n, err := a.History.Import(ctx, payload)
	if err != nil {
		return err
	}

	log.Info("Seeded assessment history", "records", n, "store", cfg.Store.Driver, "seed", opts.seed)
	return nil
}

// generate builds count newest-first records spread over days before until.
// The same seed always yields the same history.
func generate(count, days int, seed uint64, until time.Time) []model.PredictionRecord {
	var key [32]byte
	for i := 0; i < 8; i++ {
		key[i] = byte(seed >> (8 * i))
	}
	src := rand.NewChaCha8(key)
	rng := rand.New(src)

	if days < 1 {
		days = 1
	}
	span := time.Duration(days) * 24 * time.Hour
	records := make([]model.PredictionRecord, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.Must(uuid.NewRandomFromReader(src))
		persona := personas[rng.IntN(len(personas))]
		minutes := 30 + rng.IntN(60)
		if persona == "Doom-Scroller" {
			minutes += 180
		} else if persona == "Moderate User" {
			minutes += 60
		}

		happiness := clampScore(9 - float64(minutes)/60 + rng.NormFloat64())
		stress := clampScore(1 + float64(minutes)/50 + rng.NormFloat64())

		records = append(records, model.PredictionRecord{
			ID:        "pred_" + id.String(),
			Timestamp: until.Add(-time.Duration(rng.Int64N(int64(span)))).Truncate(time.Second),
			Input: model.Input{
				"daily_active_minutes_instagram": minutes,
				"sessions_per_day":               2 + rng.IntN(20),
				"notification_response_rate":     math.Round(rng.Float64()*100) / 100,
				"sleep_hours_per_night":          math.Round((5+rng.Float64()*4)*10) / 10,
			},
			Output: &model.Outcome{
				HappinessScore:  model.NewScore(happiness),
				StressScore:     model.NewScore(stress),
				Persona:         persona,
				Recommendations: recommendations[persona],
			},
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records
}

func clampScore(v float64) float64 {
	return math.Round(math.Max(1, math.Min(10, v))*10) / 10
}
