package app

import (
	"context"
	"testing"
	"wellbeing/internal/config"
	"wellbeing/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, a *App, persona string) {
	t.Helper()
	_, err := a.History.Create(context.Background(), model.CreatePredictionRequest{
		Output: model.Outcome{
			HappinessScore: model.NewScore(7),
			StressScore:    model.NewScore(3),
			Persona:        persona,
		},
	})
	require.NoError(t, err)
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store.BadgerPath = t.TempDir()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	create(t, a, "Balanced")
	require.NoError(t, a.Close())

	a, err = New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Len(t, a.History.List(ctx, model.Query{}), 1)
	assert.Equal(t, "Balanced", a.History.Stats(ctx).MostCommonPersona)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.RedisAddr = mr.Addr()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	create(t, a, "Night Owl")
	assert.True(t, mr.Exists(cfg.Store.RedisPrefix+"wellbeing_predictions"))
	assert.True(t, mr.Exists(cfg.Store.RedisPrefix+"wellbeing_stats"))
}

func TestMemoryStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	create(t, a, "Calm")
	assert.Equal(t, []string{"Calm"}, a.History.Personas(context.Background()))
}

func TestRedisUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverRedis
	cfg.Store.RedisAddr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
