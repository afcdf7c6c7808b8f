package provider

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Backend kinds accepted by Config.Kind.
const (
	KindGemini = "gemini"
	KindOpenAI = "openai"
)

// Config selects and parameterizes a provider. The choice is made once,
// here; nothing downstream branches on the backend kind.
type Config struct {
	Kind    string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration

	// Optional secondary backend tried when the primary errors.
	FallbackKind   string
	FallbackAPIKey string
	FallbackModel  string
}

// New builds the configured provider, with an optional fallback chained
// after it.
func New(cfg Config) (Provider, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: cfg.Timeout}

	primary, err := build(cfg.Kind, cfg.APIKey, cfg.Model, cfg.BaseURL, client)
	if err != nil {
		return nil, err
	}
	slog.Info("llm provider configured",
		slog.String("kind", cfg.Kind),
		slog.String("model", primary.Name()))

	if cfg.FallbackKind == "" {
		return primary, nil
	}
	fb, err := build(cfg.FallbackKind, cfg.FallbackAPIKey, cfg.FallbackModel, "", client)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	slog.Info("llm fallback configured", slog.String("kind", cfg.FallbackKind))
	return &withFallback{primary: primary, fallback: fb}, nil
}

func build(kind, apiKey, model, baseURL string, client *http.Client) (Provider, error) {
	switch kind {
	case KindGemini:
		return newGemini(apiKey, model, baseURL, client), nil
	case KindOpenAI:
		return newOpenAI(apiKey, model, baseURL, client), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}
