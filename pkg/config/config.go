package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Request RequestConfig `yaml:"request"`
	LLM     LLMConfig     `yaml:"llm"`
	TTS     TTSConfig     `yaml:"tts"`
	Lesson  LessonConfig  `yaml:"lesson"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// RequestConfig holds outbound HTTP settings.
type RequestConfig struct {
	Timeout Duration      `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LLMConfig holds settings for the sentence-generation model provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai", "gemini", "mock"
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
	BaseURL  string `yaml:"base_url"`
}

// TTSConfig holds settings for the remote dialect speech service.
type TTSConfig struct {
	BaseURL   string   `yaml:"base_url"`
	VerifyTLS *bool    `yaml:"verify_tls"`
	APIName   string   `yaml:"api_name"`
	Timeout   Duration `yaml:"timeout"`
}

// LessonConfig holds lesson assembly settings.
type LessonConfig struct {
	CacheSize int `yaml:"cache_size"`
	BatchSize int `yaml:"batch_size"`
}

// VerifyTLSEnabled reports whether certificate verification is on.
// Unset means verify.
func (t TTSConfig) VerifyTLSEnabled() bool {
	return t.VerifyTLS == nil || *t.VerifyTLS
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	verify := true
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "static",
		},
		Log: LogConfig{
			Path:  "logs/lessonlab.log",
			Level: "INFO",
		},
		Request: RequestConfig{
			Timeout: Duration(60 * time.Second),
			Retries: 3,
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4.1-mini",
			BaseURL:  "https://api.openai.com/v1",
		},
		TTS: TTSConfig{
			BaseURL:   "https://sttg4.fhm.ch/tts/",
			VerifyTLS: &verify,
			APIName:   "speech_interface",
			Timeout:   Duration(60 * time.Second),
		},
		Lesson: LessonConfig{
			CacheSize: 24,
			BatchSize: 6,
		},
	}
}

// Load reads the configuration from path, creating it with defaults if
// it does not exist, and applies environment overrides afterwards.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if cfg.Lesson.CacheSize <= 0 {
		return nil, fmt.Errorf("lesson.cache_size must be positive, got %d", cfg.Lesson.CacheSize)
	}
	if cfg.Lesson.BatchSize <= 0 {
		return nil, fmt.Errorf("lesson.batch_size must be positive, got %d", cfg.Lesson.BatchSize)
	}

	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Env wins over file
// values so deployments can keep secrets out of the YAML.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.Key = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TTS_BASE_URL"); v != "" {
		cfg.TTS.BaseURL = v
	}
	if v, ok := os.LookupEnv("TTS_SSL_VERIFY"); ok {
		b := IsTruthy(v)
		cfg.TTS.VerifyTLS = &b
	}
}

// IsTruthy interprets a config/env string as a boolean. Empty, "0",
// "false", "no" and "off" (any case, surrounding space ignored) are
// false; everything else is true.
func IsTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# LessonLab Configuration
# ----------------------
# Durations accept Go syntax: ns, us, ms, s, m, h.
# llm.provider options: openai, gemini, mock

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault writes the default config to path unless it exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
