package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/agent"
	"github.com/pirlo1121/I-am-poor/internal/bus"
	"github.com/pirlo1121/I-am-poor/internal/provider"
	"github.com/pirlo1121/I-am-poor/internal/remind"
	"github.com/pirlo1121/I-am-poor/internal/session"
	"github.com/pirlo1121/I-am-poor/internal/store"
	"github.com/pirlo1121/I-am-poor/internal/telegram"
	"github.com/pirlo1121/I-am-poor/internal/toolreg"
	"github.com/pirlo1121/I-am-poor/internal/tools"
	"github.com/pirlo1121/I-am-poor/internal/transcribe"
)

const toolTimeout = 30 * time.Second

// botStack holds every running component of the bot.
type botStack struct {
	store     *store.Store
	bus       *bus.Bus
	loop      *agent.Loop
	telegram  *telegram.Channel
	scheduler *remind.Service
}

// buildStack wires the whole bot from configuration.
func buildStack(ctx context.Context, cfg Config) (*botStack, error) {
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	loc := cfg.location()
	registry := toolreg.NewRegistry(toolTimeout)
	tools.RegisterAll(registry, &tools.Deps{
		Store: st,
		Loc:   loc,
		Now:   time.Now,
	})
	slog.Info("tool registry initialized", slog.Int("tools", len(registry.Definitions())))

	llm, err := provider.New(providerConfig(cfg))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure model provider: %w", err)
	}

	sessions := session.NewStore(cfg.MaxHistory, agent.BuildSystemPrompt)
	loop := agent.NewLoop(llm, registry, sessions, 90*time.Second)

	b := bus.New()

	var transcriber telegram.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = transcribe.New(cfg.OpenAIAPIKey)
	} else {
		slog.Info("voice transcription disabled: no OpenAI API key")
	}

	tg, err := telegram.New(telegram.Options{
		Token:       cfg.TelegramToken,
		AllowedIDs:  cfg.AllowedIDs,
		Bus:         b,
		Store:       st,
		Transcriber: transcriber,
		Loc:         loc,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &botStack{
		store:     st,
		bus:       b,
		loop:      loop,
		telegram:  tg,
		scheduler: remind.NewService(st, b, sessions, loc),
	}, nil
}

// providerConfig maps bot configuration onto the provider stack. When the
// other provider's key is also present it becomes the fallback.
func providerConfig(cfg Config) provider.Config {
	pc := provider.Config{
		Kind:  cfg.Provider,
		Model: cfg.Model,
	}
	switch cfg.Provider {
	case provider.KindGemini:
		pc.APIKey = cfg.GeminiAPIKey
		if cfg.OpenAIAPIKey != "" {
			pc.FallbackKind = provider.KindOpenAI
			pc.FallbackAPIKey = cfg.OpenAIAPIKey
		}
	case provider.KindOpenAI:
		pc.APIKey = cfg.OpenAIAPIKey
		if cfg.GeminiAPIKey != "" {
			pc.FallbackKind = provider.KindGemini
			pc.FallbackAPIKey = cfg.GeminiAPIKey
		}
	}
	return pc
}

// runWorker consumes user messages from the bus, runs each turn, and
// queues the reply. Turns for different users run concurrently; the
// session lock serializes turns for the same user.
func (s *botStack) runWorker(ctx context.Context) error {
	for {
		msg, ok := s.bus.ConsumeInbound(ctx)
		if !ok {
			return nil
		}
		go func(m bus.Message) {
			reply, err := s.loop.HandleMessage(ctx, m.UserID, m.Text)
			if err != nil {
				slog.Error("turn error", slog.Int64("user_id", m.UserID), slog.Any("error", err))
			}
			s.bus.PublishOutbound(bus.Message{
				ID:        m.ID + "-reply",
				Source:    bus.SourceTelegram,
				UserID:    m.UserID,
				ChatID:    m.ChatID,
				Text:      reply,
				Timestamp: time.Now(),
			})
		}(msg)
	}
}

// Close releases everything the stack holds open.
func (s *botStack) Close() {
	s.bus.Close()
	if err := s.store.Close(); err != nil {
		slog.Error("close database", slog.Any("error", err))
	}
}
