package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ParseEnv fills target from environment variables using `env` struct tags.
func ParseEnv(target any) error {
	return env.Parse(target)
}

// LoadYAML decodes the file at path into target. An empty path is a no-op.
func LoadYAML(path string, target any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}
