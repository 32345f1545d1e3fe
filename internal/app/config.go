package app

import (
	"fmt"
	"time"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/platform/config"
	"github.com/yungbote/games-aggregator/internal/temporalx"
)

type Config struct {
	LogMode string `env:"LOG_MODE" envDefault:"development"`

	DBDriver       string `env:"DB_DRIVER" envDefault:"postgres"`
	DBDSN          string `env:"DATABASE_URL"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	// MigrateCatalogs creates the source catalog tables too (dev and test databases).
	MigrateCatalogs bool `env:"DB_MIGRATE_CATALOGS" envDefault:"false"`

	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisChannel  string `env:"REDIS_RUN_CHANNEL" envDefault:"aggregator.runs"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	OtelEnabled     bool              `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string            `env:"OTEL_SERVICE_NAME" envDefault:"games-aggregator"`
	OtelEnvironment string            `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string            `env:"OTEL_SERVICE_VERSION"`
	OtelEndpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64           `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	WorkerConcurrency int           `env:"JOB_WORKER_CONCURRENCY" envDefault:"2"`
	WorkerPoll        time.Duration `env:"JOB_WORKER_POLL" envDefault:"1s"`
	JobMaxAttempts    int           `env:"JOB_MAX_ATTEMPTS" envDefault:"3"`
	JobRetryDelay     time.Duration `env:"JOB_RETRY_DELAY" envDefault:"30s"`
	JobStaleRunning   time.Duration `env:"JOB_STALE_RUNNING" envDefault:"30m"`

	Temporal temporalx.Config

	ConfigFile string `env:"AGGREGATOR_CONFIG_FILE"`
	File       FileConfig
}

// FileConfig is the optional YAML overlay:
//
//	sources:
//	  steam: {batch_size: 500}
//	  gog:   {batch_size: 100}
//	  pcgamingwiki: {enabled: false}
type FileConfig struct {
	Sources map[string]SourceOverride `yaml:"sources"`
}

type SourceOverride struct {
	BatchSize int   `yaml:"batch_size"`
	Enabled   *bool `yaml:"enabled"`
}

// LoadConfig reads the environment, then applies the YAML overlay named by
// AGGREGATOR_CONFIG_FILE if set.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := config.LoadYAML(cfg.ConfigFile, &cfg.File); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for name := range c.File.Sources {
		if _, err := sources.ParseKind(name); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}
	if c.JobMaxAttempts <= 0 {
		return fmt.Errorf("JOB_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// BatchSizes returns the per-source batch size overrides from the config file.
func (c Config) BatchSizes() map[sources.Kind]int {
	out := map[sources.Kind]int{}
	for name, o := range c.File.Sources {
		k, err := sources.ParseKind(name)
		if err != nil || o.BatchSize <= 0 {
			continue
		}
		out[k] = o.BatchSize
	}
	return out
}

// EnabledSources lists the source kinds to run, in canonical order. Sources default to enabled.
func (c Config) EnabledSources() []sources.Kind {
	out := make([]sources.Kind, 0, len(sources.Kinds()))
	for _, k := range sources.Kinds() {
		if o, ok := c.overrideFor(k); ok && o.Enabled != nil && !*o.Enabled {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (c Config) overrideFor(k sources.Kind) (SourceOverride, bool) {
	for name, o := range c.File.Sources {
		if parsed, err := sources.ParseKind(name); err == nil && parsed == k {
			return o, true
		}
	}
	return SourceOverride{}, false
}
