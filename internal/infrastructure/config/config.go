package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`

	Guidance  GuidanceConfig  `koanf:"guidance"`
	Benchmark BenchmarkConfig `koanf:"benchmark"`
	Security  SecurityConfig  `koanf:"security"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL      string        `koanf:"url"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

// GuidanceConfig carries the guidance pipeline limits. RowCap is clamped to
// [8, 10]: the published card layout breaks above ten rows.
type GuidanceConfig struct {
	RowCap              int           `koanf:"row_cap"`
	MinWords            int           `koanf:"min_words"`
	MaxWords            int           `koanf:"max_words"`
	AIEndpoint          string        `koanf:"ai_endpoint"`
	AITimeout           time.Duration `koanf:"ai_timeout"`
	AIRequestsPerMinute int           `koanf:"ai_requests_per_minute"`
	SchedulerInterval   time.Duration `koanf:"scheduler_interval"`
}

type BenchmarkConfig struct {
	MinCohortSize int `koanf:"min_cohort_size"`
}

type SecurityConfig struct {
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenExpiry time.Duration `koanf:"token_expiry"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:  0,
			TTL: 15 * time.Minute,
		},
		Guidance: GuidanceConfig{
			RowCap:              10,
			MinWords:            40,
			MaxWords:            1200,
			AIEndpoint:          "http://localhost:8091/v1/generate",
			AITimeout:           30 * time.Second,
			AIRequestsPerMinute: 20,
			SchedulerInterval:   time.Minute,
		},
		Benchmark: BenchmarkConfig{
			MinCohortSize: 5,
		},
		Security: SecurityConfig{
			TokenExpiry: 24 * time.Hour,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
		// config file is optional
	}

	// double underscore separates nesting levels so keys like row_cap
	// survive: AUDITREADY_GUIDANCE__ROW_CAP -> guidance.row_cap
	if err := k.Load(env.Provider("AUDITREADY_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AUDITREADY_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Guidance.RowCap < 8 || cfg.Guidance.RowCap > 10 {
		cfg.Guidance.RowCap = 10
	}
	if cfg.Benchmark.MinCohortSize < 5 {
		cfg.Benchmark.MinCohortSize = 5
	}

	return &cfg, nil
}
