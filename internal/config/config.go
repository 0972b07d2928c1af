package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the coach-api needs at startup. Values come from
// the config file, COACH_* environment variables, and bound flags, in
// ascending precedence.
type Config struct {
	Port  string `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
	JSON  bool   `mapstructure:"json"`

	Model   *ModelConfig   `mapstructure:"model"`
	Session *SessionConfig `mapstructure:"session"`
	Storage *StorageConfig `mapstructure:"storage"`
	Scraper *ScraperConfig `mapstructure:"scraper"`

	// PromptsDir overrides the embedded instruction fragments when set.
	PromptsDir string `mapstructure:"prompts-dir"`
}

type ModelConfig struct {
	// Backend is "mock" or "gemini".
	Backend       string `mapstructure:"backend"`
	APIKey        string `mapstructure:"api-key"`
	Name          string `mapstructure:"name"`
	ContextWindow int    `mapstructure:"context-window"`
}

type SessionConfig struct {
	MaxQuestions int `mapstructure:"max-questions"`

	// MaxHistoryTurns bounds how many trailing user/assistant turns are
	// rendered into a prompt. 0 disables windowing.
	MaxHistoryTurns int `mapstructure:"max-history-turns"`
}

type StorageConfig struct {
	// Backend is "memory", "sqlite" or "firestore".
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite-path"`
	GCPProject string `mapstructure:"gcp-project"`
}

type ScraperConfig struct {
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers the default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("model.backend", "mock")
	v.SetDefault("model.name", "gemini-2.5-flash")
	v.SetDefault("model.context-window", 4096)
	v.SetDefault("session.max-questions", 5)
	v.SetDefault("session.max-history-turns", 40)
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.sqlite-path", "coach.db")
	v.SetDefault("scraper.user-agent", "coach-api/1.0")
	v.SetDefault("scraper.timeout", 20*time.Second)
}

// Load unmarshals and validates the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg *Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Model.Backend {
	case "mock":
	case "gemini":
		if c.Model.APIKey == "" {
			return fmt.Errorf("model.api-key is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown model backend %q", c.Model.Backend)
	}

	if c.Model.ContextWindow <= 0 {
		return fmt.Errorf("model.context-window must be positive, got %d", c.Model.ContextWindow)
	}

	switch c.Storage.Backend {
	case "memory", "sqlite":
	case "firestore":
		if c.Storage.GCPProject == "" {
			return fmt.Errorf("storage.gcp-project is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Session.MaxQuestions <= 0 {
		return fmt.Errorf("session.max-questions must be positive, got %d", c.Session.MaxQuestions)
	}

	return nil
}
