package toolreg

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

// Tool is the interface that all model-callable tools implement. Execute
// receives the Telegram user id so every operation stays scoped to its owner.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema object
	Execute(ctx context.Context, userID int64, args map[string]any) (string, error)
}

// Dispatch statuses.
const (
	StatusOK      = "ok"
	StatusUnknown = "unknown"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// DispatchResult is what a tool call produced: always a user-presentable
// message, never a propagated error.
type DispatchResult struct {
	Name    string
	Message string
	Status  string
}

// Failed reports whether the call did not run to completion.
func (r DispatchResult) Failed() bool { return r.Status != StatusOK }

// Registry holds all registered tools. Registration happens once at
// startup; definitions keep registration order.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	timeout time.Duration
}

// NewRegistry creates an empty tool registry. timeout bounds each dispatch;
// zero means no per-call limit.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{tools: make(map[string]Tool), timeout: timeout}
}

// Register adds a tool. Duplicate names are a wiring bug and panic at startup.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("toolreg: duplicate tool %q", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tool names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions converts all registered tools to provider-neutral
// definitions, in registration order.
func (r *Registry) Definitions() []provider.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]provider.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, provider.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// Dispatch runs one model-requested tool call. It never returns an error:
// unknown tools, bad arguments, and execution failures all come back as a
// message the model can read aloud to the user.
func (r *Registry) Dispatch(ctx context.Context, call provider.ToolCall, userID int64) DispatchResult {
	t, ok := r.Get(call.Name)
	if !ok {
		slog.Warn("unknown tool requested", slog.String("tool", call.Name))
		return DispatchResult{
			Name:    call.Name,
			Message: "⚠️ No puedo procesar esa solicitud en este momento.",
			Status:  StatusUnknown,
		}
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(t.Parameters(), args); err != nil {
		slog.Warn("invalid tool arguments",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()))
		return DispatchResult{
			Name:    call.Name,
			Message: fmt.Sprintf("⚠️ Parámetros inválidos para %s: %v", call.Name, err),
			Status:  StatusInvalid,
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := t.Execute(ctx, userID, args)
	if err != nil {
		slog.Error("tool execution failed",
			slog.String("tool", call.Name),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return DispatchResult{
			Name:    call.Name,
			Message: fmt.Sprintf("⚠️ Error al ejecutar %s: %v", call.Name, err),
			Status:  StatusFailed,
		}
	}
	slog.Debug("tool executed",
		slog.String("tool", call.Name),
		slog.Int64("user_id", userID),
		slog.Duration("took", time.Since(start)))
	return DispatchResult{Name: call.Name, Message: result, Status: StatusOK}
}
