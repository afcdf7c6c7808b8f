package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"

	"github.com/pirlo1121/I-am-poor/internal/classify"
	"github.com/pirlo1121/I-am-poor/internal/metrics"
	"github.com/pirlo1121/I-am-poor/internal/provider"
	"github.com/pirlo1121/I-am-poor/internal/session"
	"github.com/pirlo1121/I-am-poor/internal/toolreg"
)

const (
	// maxToolResultLen is the maximum characters for a single tool result before truncation.
	maxToolResultLen = 30000

	// replyAfterTools is sent when the model returns nothing after seeing
	// the tool results.
	replyAfterTools = "Listo ✅"

	// replyEmptyModel is sent when the model returns neither text nor tool
	// calls on the first pass.
	replyEmptyModel = "🤔 No estoy seguro de cómo ayudarte con eso. ¿Puedes darme más detalles?"
)

// Loop runs one conversation turn: a model call, the tool dispatches it
// requested, and a second model call that phrases the final answer. Each
// turn either commits to the session whole or leaves it untouched.
type Loop struct {
	provider provider.Provider
	registry *toolreg.Registry
	sessions *session.Store
	executor failsafe.Executor[*provider.Response]
}

// NewLoop wires the turn orchestrator. Model calls are retried on
// transient failures and bounded by callTimeout.
func NewLoop(p provider.Provider, r *toolreg.Registry, sessions *session.Store, callTimeout time.Duration) *Loop {
	if callTimeout <= 0 {
		callTimeout = 90 * time.Second
	}
	retry := retrypolicy.Builder[*provider.Response]().
		HandleIf(func(_ *provider.Response, err error) bool {
			return err != nil && classify.Classify(err) == classify.Transient
		}).
		WithBackoff(time.Second, 8*time.Second).
		WithMaxRetries(2).
		Build()

	return &Loop{
		provider: p,
		registry: r,
		sessions: sessions,
		executor: failsafe.NewExecutor[*provider.Response](retry, timeout.With[*provider.Response](callTimeout)),
	}
}

// HandleMessage processes one user message and returns the reply to send.
// The reply is always usable, even when err is non-nil: failures map to a
// fixed apology and the raw error is returned for logging only.
func (l *Loop) HandleMessage(ctx context.Context, userID int64, text string) (string, error) {
	start := time.Now()
	s := l.sessions.GetOrCreate(userID)
	s.Lock()
	defer s.Unlock()

	staged := []provider.Message{{Role: provider.RoleUser, Content: text}}

	resp, err := l.chat(ctx, append(s.Messages(), staged...))
	if err != nil {
		return l.fail(userID, "first model call", err)
	}

	// No tool calls: the model answered directly.
	if len(resp.ToolCalls) == 0 {
		reply := strings.TrimSpace(resp.Content)
		outcome := "ok"
		if reply == "" {
			reply = replyEmptyModel
			outcome = "fallback"
		}
		staged = append(staged, provider.Message{Role: provider.RoleAssistant, Content: reply})
		s.Commit(staged)
		metrics.Turns.WithLabelValues(outcome).Inc()
		metrics.TurnDuration.Observe(time.Since(start).Seconds())
		return reply, nil
	}

	// Tool responses must immediately follow the assistant message that
	// requested them, in the same order, one per call.
	staged = append(staged, provider.Message{
		Role:      provider.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	for _, tc := range resp.ToolCalls {
		res := l.registry.Dispatch(ctx, tc, userID)
		metrics.Dispatches.WithLabelValues(res.Name, res.Status).Inc()
		slog.Info("tool dispatched",
			slog.String("tool", res.Name),
			slog.String("status", res.Status),
			slog.Int64("user_id", userID))
		staged = append(staged, provider.Message{
			Role:       provider.RoleTool,
			Content:    truncate(res.Message, maxToolResultLen),
			ToolCallID: tc.ID,
			ToolName:   tc.Name,
		})
	}

	final, err := l.chat(ctx, append(s.Messages(), staged...))
	if err != nil {
		return l.fail(userID, "second model call", err)
	}

	reply := strings.TrimSpace(final.Content)
	if reply == "" {
		reply = replyAfterTools
	}
	staged = append(staged, provider.Message{Role: provider.RoleAssistant, Content: reply})
	s.Commit(staged)
	metrics.Turns.WithLabelValues("ok").Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	return reply, nil
}

func (l *Loop) chat(ctx context.Context, msgs []provider.Message) (*provider.Response, error) {
	defs := l.registry.Definitions()
	return l.executor.WithContext(ctx).GetWithExecution(
		func(e failsafe.Execution[*provider.Response]) (*provider.Response, error) {
			return l.provider.Chat(e.Context(), msgs, defs)
		})
}

// fail turns an orchestration error into the user-facing apology. Nothing
// staged is committed; a critical failure also resets the conversation.
func (l *Loop) fail(userID int64, stage string, err error) (string, error) {
	cat := classify.Classify(err)
	slog.Error("turn failed",
		slog.String("stage", stage),
		slog.String("category", string(cat)),
		slog.Int64("user_id", userID),
		slog.Any("error", err))
	if cat == classify.Critical {
		l.sessions.Clear(userID)
	}
	metrics.Turns.WithLabelValues(string(cat)).Inc()
	return classify.UserMessage(cat), fmt.Errorf("%s: %w", stage, err)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}
