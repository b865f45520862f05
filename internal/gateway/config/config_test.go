package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, envs := range envNames {
		for _, e := range envs {
			t.Setenv(e, "")
		}
	}

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8001", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "http://localhost:3000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Backend.MenuCacheTTL)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "functiongemma:270m", cfg.LLM.FunctionModel)
	assert.Equal(t, "qwen3:8b", cfg.LLM.DialogModel)
	assert.Equal(t, 3, cfg.LLM.Retries)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.RetryBase)
	assert.Zero(t, cfg.LLM.RPS)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestLoad_EnvironmentAliases(t *testing.T) {
	t.Setenv("PYTHON_SERVICE_PORT", "")
	t.Setenv("SERVICE_PORT", "9000")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("NODEJS_BACKEND_URL", "http://backend:3000/")
	t.Setenv("BACKEND_TIMEOUT", "5")
	t.Setenv("MENU_CACHE_TTL", "0")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("CORS_ORIGINS", " https://pos.example.com ,, ")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://backend:3000", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Zero(t, cfg.Backend.MenuCacheTTL)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, []string{"https://pos.example.com"}, cfg.CORSOrigins)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("PYTHON_SERVICE_PORT", "8001")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("port", "", "")
	require.NoError(t, fs.Parse([]string{"--port", ":7777"}))
	v := viper.New()
	require.NoError(t, v.BindPFlag(KeyPort, fs.Lookup("port")))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "7777", cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("BACKEND_TIMEOUT", "soon")
	_, err := Load(viper.New())
	assert.ErrorContains(t, err, "backend_timeout")

	t.Setenv("BACKEND_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load(viper.New())
	assert.Error(t, err)
}
