// Package config loads and merges the engine's YAML configuration,
// following the teacher's built-in-plus-user-override loader shape
// (pkg/config/loader.go) with mergo-driven merging instead of hand
// written field copies.
package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config is the fully resolved engine configuration.
type Config struct {
	WorldModelPath     string       `yaml:"world_model_path"`
	SampleDataDir      string       `yaml:"sample_data_dir"`
	LogDir             string       `yaml:"log_dir"`
	LogLevel           string       `yaml:"log_level"`
	LogFormat          string       `yaml:"log_format"` // text|json
	RateLimit          RateLimit    `yaml:"rate_limit"`
	SnoozeDays         int          `yaml:"snooze_days"`
	ScoreThreshold     float64      `yaml:"score_threshold"`
	BaselineWindowWeeks int         `yaml:"baseline_window_weeks"`
	Priorities         Priorities   `yaml:"priorities"`
	HTTPAddr           string       `yaml:"http_addr"`
	NATSEmbeddedPort   int          `yaml:"nats_embedded_port"`
	LLM                LLMConfig    `yaml:"llm"`
}

// RateLimit configures the Execution mini-runtime's per-resource
// sliding window.
type RateLimit struct {
	MaxRequests   int `yaml:"max_requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Priorities maps agent risk level to Conflict Manager lock priority.
type Priorities struct {
	Low    int `yaml:"low"`
	Medium int `yaml:"medium"`
	High   int `yaml:"high"`
}

// LLMConfig configures whether and how the real LLMPort is wired.
type LLMConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// defaultConfig returns the engine's built-in configuration, the
// baseline every user override is merged on top of — mirroring
// pkg/config/builtin.go's role in the teacher.
func defaultConfig() Config {
	return Config{
		WorldModelPath:      "data/world_model.json",
		SampleDataDir:       "data",
		LogDir:              "logs",
		LogLevel:            "info",
		LogFormat:           "text",
		RateLimit:           RateLimit{MaxRequests: 100, WindowSeconds: 60},
		SnoozeDays:          7,
		ScoreThreshold:      0.5,
		BaselineWindowWeeks: 3,
		Priorities:          Priorities{Low: 5, Medium: 7, High: 9},
		HTTPAddr:            ":8080",
		NATSEmbeddedPort:    -1,
		LLM: LLMConfig{
			Enabled:   false,
			Model:     "claude-3-5-sonnet-20241022",
			MaxTokens: 1500,
		},
	}
}

// Load reads the built-in defaults, merges an optional user YAML file
// on top (env vars expanded first, same as ExpandEnv in the teacher),
// and validates the result.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	expanded := expandEnv(raw)

	var user Config
	if err := yaml.Unmarshal(expanded, &user); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := mergo.Merge(&cfg, user, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merging config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.BaselineWindowWeeks < 2 || cfg.BaselineWindowWeeks > 4 {
		return fmt.Errorf("baseline_window_weeks must be in [2,4], got %d", cfg.BaselineWindowWeeks)
	}
	if cfg.RateLimit.MaxRequests <= 0 || cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit must have positive max_requests and window_seconds")
	}
	if cfg.ScoreThreshold < 0 || cfg.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold must be in [0,1], got %f", cfg.ScoreThreshold)
	}
	return nil
}

// expandEnv expands ${VAR}/$VAR references in raw YAML bytes before
// unmarshalling, matching pkg/config/envexpand.go's ExpandEnv.
func expandEnv(data []byte) []byte {
	return []byte(os.Expand(string(data), os.Getenv))
}

// LLMEnabled reports whether the LLM capability should be wired,
// honoring the SIA_LLM_ENABLED environment variable over the config
// file value — the "one environment variable" gate from spec §6.
func (c Config) LLMEnabled() bool {
	if v, ok := os.LookupEnv("SIA_LLM_ENABLED"); ok {
		return v == "1" || v == "true"
	}
	return c.LLM.Enabled
}
