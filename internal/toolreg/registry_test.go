package toolreg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/provider"
)

// stubTool is a configurable test tool.
type stubTool struct {
	name   string
	params map[string]any
	result string
	err    error
	gotUID int64
	calls  int
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Parameters() map[string]any {
	if s.params != nil {
		return s.params
	}
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (s *stubTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	s.calls++
	s.gotUID = userID
	return s.result, s.err
}

func amountSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount":   map[string]any{"type": "number"},
			"category": map[string]any{"type": "string", "enum": []string{"comida", "transporte"}},
		},
		"required": []string{"amount"},
	}
}

func TestRegistry_DefinitionsOrder(t *testing.T) {
	r := NewRegistry(0)
	r.Register(&stubTool{name: "add_expense"})
	r.Register(&stubTool{name: "get_recent_expenses"})
	r.Register(&stubTool{name: "mark_bill_paid"})

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("len(defs) = %d, want 3", len(defs))
	}
	want := []string{"add_expense", "get_recent_expenses", "mark_bill_paid"}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d] = %q, want %q (registration order)", i, defs[i].Name, name)
		}
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Register() did not panic on duplicate name")
		}
	}()
	r := NewRegistry(0)
	r.Register(&stubTool{name: "add_expense"})
	r.Register(&stubTool{name: "add_expense"})
}

func TestDispatch_Success(t *testing.T) {
	tool := &stubTool{name: "add_expense", params: amountSchema(), result: "✅ Gasto registrado"}
	r := NewRegistry(0)
	r.Register(tool)

	res := r.Dispatch(context.Background(), provider.ToolCall{
		Name: "add_expense",
		Args: map[string]any{"amount": float64(15000)},
	}, 42)

	if res.Status != StatusOK {
		t.Fatalf("Status = %q, want ok", res.Status)
	}
	if res.Message != "✅ Gasto registrado" {
		t.Errorf("Message = %q", res.Message)
	}
	if res.Failed() {
		t.Error("Failed() = true for ok result")
	}
	if tool.gotUID != 42 {
		t.Errorf("userID = %d, want 42", tool.gotUID)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	r := NewRegistry(0)
	r.Register(&stubTool{name: "add_expense"})

	res := r.Dispatch(context.Background(), provider.ToolCall{Name: "launch_rocket"}, 1)
	if res.Status != StatusUnknown {
		t.Fatalf("Status = %q, want unknown", res.Status)
	}
	if !strings.Contains(res.Message, "No puedo procesar") {
		t.Errorf("Message = %q, want fixed cannot-process text", res.Message)
	}
}

func TestDispatch_InvalidArgs(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
	}{
		{"missing_required", map[string]any{}},
		{"wrong_type", map[string]any{"amount": "quince mil"}},
		{"bad_enum", map[string]any{"amount": float64(1), "category": "viajes"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tool := &stubTool{name: "add_expense", params: amountSchema()}
			r := NewRegistry(0)
			r.Register(tool)

			res := r.Dispatch(context.Background(), provider.ToolCall{Name: "add_expense", Args: tc.args}, 1)
			if res.Status != StatusInvalid {
				t.Fatalf("Status = %q, want invalid", res.Status)
			}
			if tool.calls != 0 {
				t.Error("tool executed despite invalid args")
			}
		})
	}
}

func TestDispatch_ToolErrorIsContained(t *testing.T) {
	tool := &stubTool{name: "delete_expense", err: errors.New("fila no encontrada")}
	r := NewRegistry(0)
	r.Register(tool)

	res := r.Dispatch(context.Background(), provider.ToolCall{Name: "delete_expense"}, 1)
	if res.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed", res.Status)
	}
	if !strings.Contains(res.Message, "delete_expense") || !strings.Contains(res.Message, "fila no encontrada") {
		t.Errorf("Message = %q, want tool name and cause", res.Message)
	}
}

type slowTool struct{}

func (s *slowTool) Name() string               { return "slow" }
func (s *slowTool) Description() string        { return "blocks until deadline" }
func (s *slowTool) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (s *slowTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestDispatch_Timeout(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Register(&slowTool{})

	res := r.Dispatch(context.Background(), provider.ToolCall{Name: "slow"}, 1)
	if res.Status != StatusFailed {
		t.Fatalf("Status = %q, want failed on timeout", res.Status)
	}
}

func TestValidateArgs(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expense_id": map[string]any{"type": "integer"},
			"tags":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"confirm":    map[string]any{"type": "boolean"},
		},
		"required": []string{"expense_id"},
	}

	cases := []struct {
		name    string
		args    map[string]any
		wantErr bool
	}{
		{"ok_minimal", map[string]any{"expense_id": float64(3)}, false},
		{"ok_full", map[string]any{"expense_id": float64(3), "tags": []any{"a"}, "confirm": true}, false},
		{"missing_required", map[string]any{"confirm": true}, true},
		{"float_for_integer", map[string]any{"expense_id": 3.7}, true},
		{"unknown_key_passes", map[string]any{"expense_id": float64(1), "extra": "x"}, false},
		{"bad_array", map[string]any{"expense_id": float64(1), "tags": "a"}, true},
		{"bad_bool", map[string]any{"expense_id": float64(1), "confirm": "yes"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateArgs(schema, tc.args)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateArgs() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
