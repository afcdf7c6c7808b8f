package provider

import "context"

// Message roles in the normalized conversation transcript.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in the conversation transcript. The same transcript
// is rendered to whatever wire format the active provider expects.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
}

// ToolCall is an LLM-requested tool invocation.
type ToolCall struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Args    map[string]any `json:"arguments,omitempty"`
	RawArgs string         `json:"raw_arguments,omitempty"` // arguments as emitted by the model
}

// Response is the LLM's reply to a chat request. ToolCalls preserve the
// order in which the model emitted them.
type Response struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
}

// ToolDefinition describes a callable function in provider-neutral form.
// Parameters is a plain JSON Schema object; each adapter converts it to
// its own function-declaration dialect.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Provider is the interface for LLM backends.
type Provider interface {
	// Chat sends the full transcript (leading system message included) plus
	// the tool catalog and returns the model's next turn.
	Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error)
	// Name identifies the backend for logging.
	Name() string
}
