// Package config loads service configuration from the environment, with an
// optional YAML file for weight and model overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"promptrefiner/internal/domain"
)

const (
	DefaultPort         = "8000"
	DefaultInferenceUrl = "https://api.studio.nebius.ai/v1"
	DefaultModel        = "meta-llama/Meta-Llama-3.1-70B-Instruct"
)

type Config struct {
	Port            string
	InferenceUrl    string
	InferenceApiKey string
	DBUrl           string
	DBApiKey        string
	AuthUrl         string
	Model           string
	Weights         domain.AspectWeights
}

// overrides is the shape of the optional YAML file pointed at by
// PROMPTREFINER_CONFIG.
type overrides struct {
	Weights map[string]float64 `yaml:"weights,omitempty"`
	Model   string             `yaml:"model,omitempty"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            envOr("GOPORT", DefaultPort),
		InferenceUrl:    envOr("INFERENCE_URL", DefaultInferenceUrl),
		InferenceApiKey: os.Getenv("INFERENCE_API_KEY"),
		DBUrl:           os.Getenv("DB_URL"),
		DBApiKey:        os.Getenv("DB_API_KEY"),
		AuthUrl:         os.Getenv("AUTH_URL"),
		Model:           envOr("INFERENCE_MODEL", DefaultModel),
		Weights:         domain.DefaultWeights(),
	}

	if cfg.InferenceApiKey == "" {
		slog.Error("INFERENCE_API_KEY environment variable not set")
	}
	if cfg.DBUrl == "" {
		slog.Error("DB_URL environment variable not set")
	}
	if cfg.DBApiKey == "" {
		slog.Error("DB_API_KEY environment variable not set")
	}

	if path := os.Getenv("PROMPTREFINER_CONFIG"); path != "" {
		if err := cfg.applyOverrides(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyOverrides(path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var o overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if o.Model != "" {
		c.Model = o.Model
	}
	for name, weight := range o.Weights {
		c.Weights[name] = weight
	}

	return nil
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
