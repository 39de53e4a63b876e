// Package config loads the engine configuration. The loaded Config is an
// immutable value handed to constructors; there is no process-wide mutable
// registry.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	AI       AIConfig       `mapstructure:"ai"`
	Problems ProblemsConfig `mapstructure:"problems"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// DatabaseConfig selects the persistence backend. With Enabled false the
// in-memory store is used.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// AIConfig tunes the automated opponent.
type AIConfig struct {
	Level    string       `mapstructure:"level"` // easy, normal, hard
	MaxTurns int          `mapstructure:"max_turns"`
	Delays   DelaysConfig `mapstructure:"delays"`
}

// DelaysConfig paces the AI's visible steps. Zero values disable pacing.
type DelaysConfig struct {
	ChooseCardMin    time.Duration `mapstructure:"choose_card_min"`
	ChooseCardMax    time.Duration `mapstructure:"choose_card_max"`
	AnswerProblemMin time.Duration `mapstructure:"answer_problem_min"`
	AnswerProblemMax time.Duration `mapstructure:"answer_problem_max"`
	PhaseStepMin     time.Duration `mapstructure:"phase_step_min"`
	PhaseStepMax     time.Duration `mapstructure:"phase_step_max"`
}

// ProblemsConfig points at the external problem-generation service. With
// an empty ServiceURL the deterministic local generator is used alone.
type ProblemsConfig struct {
	ServiceURL     string        `mapstructure:"service_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// NotifyConfig controls the spectator websocket feed.
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Load reads configuration from the given file (optional) and DUEL_*
// environment variables, applying defaults for everything unset.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.dsn", "")
	v.SetDefault("ai.level", "normal")
	v.SetDefault("ai.max_turns", 100)
	v.SetDefault("ai.delays.choose_card_min", 0)
	v.SetDefault("ai.delays.choose_card_max", 0)
	v.SetDefault("ai.delays.answer_problem_min", 0)
	v.SetDefault("ai.delays.answer_problem_max", 0)
	v.SetDefault("ai.delays.phase_step_min", 0)
	v.SetDefault("ai.delays.phase_step_max", 0)
	v.SetDefault("problems.service_url", "")
	v.SetDefault("problems.request_timeout", 10*time.Second)
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.address", ":8090")

	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Level {
	case "easy", "normal", "hard":
	default:
		return fmt.Errorf("invalid ai.level %q: must be easy, normal, or hard", c.AI.Level)
	}
	if c.AI.MaxTurns < 1 {
		return fmt.Errorf("ai.max_turns must be positive, got %d", c.AI.MaxTurns)
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.enabled is true")
	}
	return nil
}
