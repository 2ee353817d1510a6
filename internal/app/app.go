// Package app assembles the history store, analytics engine and services
// from configuration. The server, the seeder and the CLI share it.
package app

import (
	"context"
	"fmt"
	"time"
	"wellbeing/internal/analytics"
	"wellbeing/internal/cache"
	"wellbeing/internal/config"
	"wellbeing/internal/logger"
	"wellbeing/internal/repository"
	"wellbeing/internal/service"
	"wellbeing/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 5 * time.Second

type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	KV        storage.KV
	Repo      repository.PredictionRepo
	Engine    analytics.Engine
	History   *service.HistoryService
	Dashboard *service.DashboardService
	Auth      *service.AuthService

	closers []func() error
}

// New opens the configured store and wires the services on top of it
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Logger: log}

	kv, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.KV = kv

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Engine = analytics.NewEngine(analytics.Options{
		RecentDays:  cfg.Analytics.RecentDays,
		TrendDays:   cfg.Analytics.TrendDays,
		ChartPoints: cfg.Analytics.ChartPoints,
		Formatter: analytics.TimeFormatter{
			Location:       loc,
			DateLayout:     cfg.Analytics.DateLayout,
			DateTimeLayout: cfg.Analytics.DateTimeLayout,
		},
		OnMalformed: service.MalformedReporter(log),
	})
	a.Repo = repository.NewPredictionRepo(kv, log)
	a.History = service.NewHistoryService(a.Repo, a.Engine, log)
	a.Dashboard = service.NewDashboardService(a.Repo, a.Engine)
	a.Auth = service.NewAuthService(cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (storage.KV, error) {
	st := a.Config.Store
	switch st.Driver {
	case config.DriverMemory:
		a.Logger.Warn("Using in-memory store; history is lost on exit")
		return storage.NewMemory(), nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: st.RedisAddr})
		a.closers = append(a.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", st.RedisAddr, err)
		}
		a.Logger.Info("Connected to Redis", "addr", st.RedisAddr)
		return cache.NewKVCache(rdb, st.RedisPrefix), nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(st.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() error {
			return client.Disconnect(context.Background())
		})

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		a.Logger.Info("Connected to MongoDB", "db", st.MongoDB)
		return repository.NewKVRepo(client.Database(st.MongoDB)), nil

	default:
		cfg := storage.DefaultBadgerConfig(st.BadgerPath)
		cfg.Logger = a.Logger
		db, err := storage.OpenBadger(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.Logger.Info("Opened BadgerDB store", "path", st.BadgerPath)
		return db, nil
	}
}

// Close releases the store connections in reverse order of opening
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
