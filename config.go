package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the bot needs to run. Values come from an
// optional YAML file, overridden by environment variables.
type Config struct {
	TelegramToken string  `yaml:"telegram_token"`
	AllowedIDs    []int64 `yaml:"allowed_user_ids"`

	Provider     string `yaml:"provider"` // "gemini" or "openai"
	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	Model        string `yaml:"model"`

	DatabasePath string `yaml:"database_path"`
	Timezone     string `yaml:"timezone"`
	MaxHistory   int    `yaml:"max_history"`
	MetricsAddr  string `yaml:"metrics_addr"`
	LogLevel     string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Provider:     "gemini",
		DatabasePath: "finance.db",
		Timezone:     "America/Bogota",
		MaxHistory:   40,
		MetricsAddr:  ":9090",
		LogLevel:     "info",
	}
}

// loadConfig reads config.yaml when present, then applies environment
// overrides and validates the result.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("ALLOWED_USER_IDS"); v != "" {
		cfg.AllowedIDs = parseIDList(v)
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	// Legacy alias kept for existing deployments.
	if cfg.OpenAIAPIKey == "" {
		cfg.OpenAIAPIKey = os.Getenv("CHATGPT_API_KEY")
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxHistory = n
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("AI_PROVIDER=gemini but GEMINI_API_KEY not set")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("AI_PROVIDER=openai but OPENAI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q (want gemini or openai)", c.Provider)
	}
	return nil
}

// location resolves the configured timezone, falling back to UTC.
func (c Config) location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// loadDotenv loads a .env file into the environment if it exists.
// Existing variables are never overridden.
func loadDotenv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}
