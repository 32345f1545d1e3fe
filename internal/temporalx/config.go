package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/games-aggregator/internal/platform/config"
)

type Config struct {
	Address   string `env:"TEMPORAL_ADDRESS"`
	Namespace string `env:"TEMPORAL_NAMESPACE" envDefault:"games-aggregator"`
	TaskQueue string `env:"TEMPORAL_TASK_QUEUE" envDefault:"games-aggregator"`

	ClientCertPath string `env:"TEMPORAL_CLIENT_CERT_PATH"`
	ClientKeyPath  string `env:"TEMPORAL_CLIENT_KEY_PATH"`
	ClientCAPath   string `env:"TEMPORAL_CLIENT_CA_PATH"`

	AutoRegisterNamespace  bool `env:"TEMPORAL_AUTO_REGISTER_NAMESPACE" envDefault:"false"`
	NamespaceRetentionDays int  `env:"TEMPORAL_NAMESPACE_RETENTION_DAYS" envDefault:"7"`

	DialTimeout    time.Duration `env:"TEMPORAL_DIAL_TIMEOUT" envDefault:"5s"`
	DialMaxWait    time.Duration `env:"TEMPORAL_DIAL_MAX_WAIT" envDefault:"60s"`
	DialBackoff    time.Duration `env:"TEMPORAL_DIAL_BACKOFF" envDefault:"250ms"`
	DialBackoffMax time.Duration `env:"TEMPORAL_DIAL_BACKOFF_MAX" envDefault:"5s"`

	WorkerConcurrency int `env:"TEMPORAL_WORKER_CONCURRENCY" envDefault:"4"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Address) != "" }

func (c Config) hasTLS() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}
