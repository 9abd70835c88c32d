// Package config loads the researchpilot configuration from a YAML file and
// RESEARCHPILOT_* environment variables, with sensible local defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/researchpilot/researchpilot/core"
)

// Config is the complete researchpilot configuration.
type Config struct {
	Model      ModelConfig      `mapstructure:"model"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Literature LiteratureConfig `mapstructure:"literature"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ModelConfig selects and tunes the reasoning model.
type ModelConfig struct {
	// Provider selects the backend: "openai", "anthropic" or "mock".
	// "openai" also covers OpenAI-compatible gateways via Endpoint.
	Provider string `mapstructure:"provider"`
	// Name is the model identifier passed to the provider.
	Name string `mapstructure:"name"`
	// Endpoint overrides the provider base URL (OpenAI-compatible gateways).
	Endpoint string `mapstructure:"endpoint"`
	// APIKey authenticates against the provider. The provider-native
	// environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY) also work.
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// MemoryConfig selects the session memory backend.
type MemoryConfig struct {
	// Backend is "memory", "file" or "sqlite".
	Backend string `mapstructure:"backend"`
	// Path is the file or database path for durable backends.
	Path string `mapstructure:"path"`
}

// DispatchConfig tunes the stage execution policy.
type DispatchConfig struct {
	// MaxRetries is how many retries a failed external call gets.
	MaxRetries int `mapstructure:"max_retries"`
	// InitialBackoffMs seeds the exponential retry backoff.
	InitialBackoffMs int `mapstructure:"initial_backoff_ms"`
	// StageTimeoutSeconds bounds each stage attempt (0 disables).
	StageTimeoutSeconds int `mapstructure:"stage_timeout_seconds"`
	// DefaultCategory is used when classification fails.
	DefaultCategory string `mapstructure:"default_category"`
}

// LiteratureConfig tunes the literature search client.
type LiteratureConfig struct {
	// MaxResults caps papers fetched per search.
	MaxResults int `mapstructure:"max_results"`
	// CacheTTLMinutes is how long search results stay cached.
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   2048,
		},
		Memory: MemoryConfig{
			Backend: "file",
			Path:    filepath.Join(ConfigDir(), "memory.jsonl"),
		},
		Dispatch: DispatchConfig{
			MaxRetries:          2,
			InitialBackoffMs:    200,
			StageTimeoutSeconds: 60,
			DefaultCategory:     string(core.CategoryConceptual),
		},
		Literature: LiteratureConfig{
			MaxResults:      10,
			CacheTTLMinutes: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers the default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("model.provider", defaults.Model.Provider)
	viper.SetDefault("model.name", defaults.Model.Name)
	viper.SetDefault("model.endpoint", defaults.Model.Endpoint)
	viper.SetDefault("model.api_key", defaults.Model.APIKey)
	viper.SetDefault("model.temperature", defaults.Model.Temperature)
	viper.SetDefault("model.max_tokens", defaults.Model.MaxTokens)

	viper.SetDefault("memory.backend", defaults.Memory.Backend)
	viper.SetDefault("memory.path", defaults.Memory.Path)

	viper.SetDefault("dispatch.max_retries", defaults.Dispatch.MaxRetries)
	viper.SetDefault("dispatch.initial_backoff_ms", defaults.Dispatch.InitialBackoffMs)
	viper.SetDefault("dispatch.stage_timeout_seconds", defaults.Dispatch.StageTimeoutSeconds)
	viper.SetDefault("dispatch.default_category", defaults.Dispatch.DefaultCategory)

	viper.SetDefault("literature.max_results", defaults.Literature.MaxResults)
	viper.SetDefault("literature.cache_ttl_minutes", defaults.Literature.CacheTTLMinutes)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
}

// Init wires viper to the config file and environment. A missing config file
// is fine; a malformed one is an error.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(ConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RESEARCHPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from viper and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no component can accept.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("invalid model provider %q", c.Model.Provider)
	}
	switch c.Memory.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid memory backend %q", c.Memory.Backend)
	}
	if (c.Memory.Backend == "file" || c.Memory.Backend == "sqlite") && c.Memory.Path == "" {
		return fmt.Errorf("memory backend %q requires a path", c.Memory.Backend)
	}
	if !core.Category(c.Dispatch.DefaultCategory).Valid() {
		return fmt.Errorf("invalid default category %q", c.Dispatch.DefaultCategory)
	}
	if c.Dispatch.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

// ConfigDir returns the user configuration directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "researchpilot")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".researchpilot"
	}
	return filepath.Join(home, ".config", "researchpilot")
}
