package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverBadger = "badger"
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowedOrigins"`
	AllowedMethods string `yaml:"allowedMethods"`
	AllowedHeaders string `yaml:"allowedHeaders"`
}

// StoreConfig selects and configures the key-value substrate
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	BadgerPath  string `yaml:"badgerPath"`
	RedisAddr   string `yaml:"redisAddr"`
	RedisPrefix string `yaml:"redisPrefix"`
	MongoURI    string `yaml:"mongoUri"`
	MongoDB     string `yaml:"mongoDb"`
}

// AuthConfig holds the admin credentials guarding bulk operations
type AuthConfig struct {
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// AnalyticsConfig tunes dashboard windows and time rendering
type AnalyticsConfig struct {
	RecentDays     int    `yaml:"recentDays"`
	TrendDays      int    `yaml:"trendDays"`
	ChartPoints    int    `yaml:"chartPoints"`
	TimeZone       string `yaml:"timeZone"`
	DateLayout     string `yaml:"dateLayout"`
	DateTimeLayout string `yaml:"dateTimeLayout"`
}

// Config is the full application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	LogMode   string          `yaml:"logMode"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization",
		},
		Store: StoreConfig{
			Driver:      DriverBadger,
			BadgerPath:  "./data/wellbeing",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "wellbeing:",
			MongoURI:    "mongodb://localhost:27017",
			MongoDB:     "wellbeing",
		},
		Auth: AuthConfig{
			Username:  "admin",
			Password:  "password123",
			JWTSecret: "change-me-in-production",
			TokenTTL:  24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			RecentDays:     7,
			TrendDays:      30,
			ChartPoints:    10,
			TimeZone:       "UTC",
			DateLayout:     "02/01/2006",
			DateTimeLayout: "02/01/2006 15:04",
		},
		LogMode: "dev",
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// WELLBEING_CONFIG (if set), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("WELLBEING_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.Server.AllowedMethods)
	c.Server.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.Server.AllowedHeaders)

	c.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", c.Store.Driver))
	c.Store.BadgerPath = getEnv("BADGER_PATH", c.Store.BadgerPath)
	c.Store.RedisAddr = strings.TrimPrefix(getEnv("REDIS_URI", c.Store.RedisAddr), "redis://")
	c.Store.RedisPrefix = getEnv("REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.MongoURI = getEnv("MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getEnv("MONGO_DB", c.Store.MongoDB)

	c.Auth.Username = getEnv("ADMIN_USERNAME", c.Auth.Username)
	c.Auth.Password = getEnv("ADMIN_PASSWORD", c.Auth.Password)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Analytics.RecentDays = getEnvInt("RECENT_DAYS", c.Analytics.RecentDays)
	c.Analytics.TrendDays = getEnvInt("TREND_DAYS", c.Analytics.TrendDays)
	c.Analytics.ChartPoints = getEnvInt("CHART_POINTS", c.Analytics.ChartPoints)
	c.Analytics.TimeZone = getEnv("TIME_ZONE", c.Analytics.TimeZone)

	c.LogMode = getEnv("LOG_MODE", c.LogMode)
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverBadger, DriverMemory, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverBadger && c.Store.BadgerPath == "" {
		return fmt.Errorf("store.badgerPath is required for the badger driver")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the analytics time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Analytics.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("analytics.timeZone: %w", err)
	}
	return loc, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
