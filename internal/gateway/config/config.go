package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys shared with cobra flag bindings.
const (
	KeyHost          = "host"
	KeyPort          = "port"
	KeyCORSOrigins   = "cors_origins"
	KeyLogLevel      = "log_level"
	KeyBackendURL    = "backend_url"
	KeyBackendTO     = "backend_timeout"
	KeyMenuCacheTTL  = "menu_cache_ttl"
	KeyLLMProvider   = "llm_provider"
	KeyLLMBaseURL    = "llm_base_url"
	KeyLLMAPIKey     = "llm_api_key"
	KeyFunctionModel = "function_model"
	KeyDialogModel   = "dialog_model"
	KeyLLMRPS        = "llm_rps"
	KeyLLMBurst      = "llm_burst"
	KeyLLMRetries    = "llm_retries"
	KeyLLMRetryBase  = "llm_retry_base"
	KeyParallelism   = "action_parallelism"
)

// envNames lists the environment variables read for each key, first set wins.
var envNames = map[string][]string{
	KeyHost:          {"PYTHON_SERVICE_HOST", "SERVICE_HOST"},
	KeyPort:          {"PYTHON_SERVICE_PORT", "SERVICE_PORT", "PORT"},
	KeyCORSOrigins:   {"CORS_ORIGINS"},
	KeyLogLevel:      {"LOG_LEVEL"},
	KeyBackendURL:    {"BACKEND_URL", "NODEJS_BACKEND_URL"},
	KeyBackendTO:     {"BACKEND_TIMEOUT"},
	KeyMenuCacheTTL:  {"MENU_CACHE_TTL"},
	KeyLLMProvider:   {"LLM_PROVIDER"},
	KeyLLMBaseURL:    {"OLLAMA_BASE_URL", "LLM_BASE_URL"},
	KeyLLMAPIKey:     {"LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
	KeyFunctionModel: {"FUNCTION_MODEL"},
	KeyDialogModel:   {"DIALOG_MODEL"},
	KeyLLMRPS:        {"LLM_RPS"},
	KeyLLMBurst:      {"LLM_BURST"},
	KeyLLMRetries:    {"LLM_RETRIES"},
	KeyLLMRetryBase:  {"LLM_RETRY_BASE"},
	KeyParallelism:   {"ACTION_PARALLELISM"},
}

var defaults = map[string]any{
	KeyHost:          "0.0.0.0",
	KeyPort:          "8001",
	KeyCORSOrigins:   "http://localhost:5173,http://localhost:3000",
	KeyLogLevel:      "INFO",
	KeyBackendURL:    "http://localhost:3000",
	KeyBackendTO:     "30s",
	KeyMenuCacheTTL:  "30s",
	KeyLLMProvider:   "openai",
	KeyLLMBaseURL:    "http://localhost:11434",
	KeyLLMAPIKey:     "ollama",
	KeyFunctionModel: "functiongemma:270m",
	KeyDialogModel:   "qwen3:8b",
	KeyLLMRPS:        0,
	KeyLLMBurst:      1,
	KeyLLMRetries:    3,
	KeyLLMRetryBase:  "500ms",
	KeyParallelism:   4,
}

type Config struct {
	Host        string
	Port        string
	CORSOrigins []string
	LogLevel    slog.Level
	Backend     BackendConfig
	LLM         LLMConfig
	Parallelism int
}

type BackendConfig struct {
	URL          string
	Timeout      time.Duration
	MenuCacheTTL time.Duration
}

type LLMConfig struct {
	Provider      string
	BaseURL       string
	APIKey        string
	FunctionModel string
	DialogModel   string
	RPS           float64
	Burst         int
	Retries       int
	RetryBase     time.Duration
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads .env when present, then resolves every key from flags bound on
// v, the environment, and defaults, in that order.
func Load(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()
	if v == nil {
		v = viper.New()
	}
	for key, def := range defaults {
		v.SetDefault(key, def)
	}
	for key, envs := range envNames {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	level, err := parseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	backendTimeout, err := duration(v, KeyBackendTO)
	if err != nil {
		return nil, err
	}
	menuTTL, err := duration(v, KeyMenuCacheTTL)
	if err != nil {
		return nil, err
	}
	retryBase, err := duration(v, KeyLLMRetryBase)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Host:        strings.TrimSpace(v.GetString(KeyHost)),
		Port:        strings.TrimPrefix(strings.TrimSpace(v.GetString(KeyPort)), ":"),
		CORSOrigins: splitList(v.GetString(KeyCORSOrigins)),
		LogLevel:    level,
		Backend: BackendConfig{
			URL:          strings.TrimRight(strings.TrimSpace(v.GetString(KeyBackendURL)), "/"),
			Timeout:      backendTimeout,
			MenuCacheTTL: menuTTL,
		},
		LLM: LLMConfig{
			Provider:      strings.TrimSpace(v.GetString(KeyLLMProvider)),
			BaseURL:       strings.TrimSpace(v.GetString(KeyLLMBaseURL)),
			APIKey:        strings.TrimSpace(v.GetString(KeyLLMAPIKey)),
			FunctionModel: strings.TrimSpace(v.GetString(KeyFunctionModel)),
			DialogModel:   strings.TrimSpace(v.GetString(KeyDialogModel)),
			RPS:           v.GetFloat64(KeyLLMRPS),
			Burst:         v.GetInt(KeyLLMBurst),
			Retries:       v.GetInt(KeyLLMRetries),
			RetryBase:     retryBase,
		},
		Parallelism: v.GetInt(KeyParallelism),
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("config: port is empty")
	}
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("config: backend url is empty")
	}
	return cfg, nil
}

// duration accepts Go durations ("30s") and bare numbers as seconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
