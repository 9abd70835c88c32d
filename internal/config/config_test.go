package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "openai", cfg.Model.Provider)
	assert.Equal(t, "file", cfg.Memory.Backend)
	assert.Equal(t, 2, cfg.Dispatch.MaxRetries)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("RESEARCHPILOT_MODEL_PROVIDER", "anthropic")
	t.Setenv("RESEARCHPILOT_MODEL_NAME", "claude-sonnet-4-20250514")
	t.Setenv("RESEARCHPILOT_MEMORY_BACKEND", "memory")

	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.Equal(t, "memory", cfg.Memory.Backend)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.Model.Provider = "cohere" }},
		{"bad backend", func(c *Config) { c.Memory.Backend = "redis" }},
		{"missing path", func(c *Config) { c.Memory.Backend = "sqlite"; c.Memory.Path = "" }},
		{"bad category", func(c *Config) { c.Dispatch.DefaultCategory = "everything" }},
		{"negative retries", func(c *Config) { c.Dispatch.MaxRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
