package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pirlo1121/I-am-poor/internal/store"
)

func goalProgress(g store.SavingsGoal) string {
	pct := 0.0
	if g.TargetAmount > 0 {
		pct = g.CurrentAmount / g.TargetAmount * 100
	}
	line := fmt.Sprintf("🎯 %s: %s de %s (%.0f%%)", g.Name, Money(g.CurrentAmount), Money(g.TargetAmount), pct)
	if g.Deadline != "" {
		line += " — meta " + g.Deadline
	}
	return line
}

// --- add_savings_goal ---

type addGoalTool struct{ *Deps }

func (t *addGoalTool) Name() string { return "add_savings_goal" }
func (t *addGoalTool) Description() string {
	return "Crea una meta de ahorro con monto objetivo y fecha límite opcional."
}
func (t *addGoalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":          map[string]any{"type": "string", "description": "Nombre de la meta"},
			"target_amount": map[string]any{"type": "number", "description": "Monto objetivo"},
			"deadline":      map[string]any{"type": "string", "description": "Fecha límite YYYY-MM-DD (opcional)"},
		},
		"required": []string{"name", "target_amount"},
	}
}
func (t *addGoalTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	target := getFloat(args, "target_amount")
	if target <= 0 {
		return "⚠️ El monto objetivo debe ser mayor que cero.", nil
	}
	name := getString(args, "name")
	id, err := t.Store.AddGoal(ctx, userID, name, target, getString(args, "deadline"), t.now())
	if err != nil {
		return "", fmt.Errorf("guardando meta: %w", err)
	}
	return fmt.Sprintf("🎯 Meta creada [%d]: %s — objetivo %s", id, name, Money(target)), nil
}

// --- get_savings_goals ---

type listGoalsTool struct{ *Deps }

func (t *listGoalsTool) Name() string        { return "get_savings_goals" }
func (t *listGoalsTool) Description() string { return "Lista las metas de ahorro y su progreso." }
func (t *listGoalsTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *listGoalsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	goals, err := t.Store.ListGoals(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("consultando metas: %w", err)
	}
	if len(goals) == 0 {
		return "📭 No tienes metas de ahorro todavía.", nil
	}
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, fmt.Sprintf("• [%d] %s", g.ID, goalProgress(g)))
	}
	return "💎 Metas de ahorro:\n" + strings.Join(lines, "\n"), nil
}

// --- update_savings_goal ---

type updateGoalTool struct{ *Deps }

func (t *updateGoalTool) Name() string { return "update_savings_goal" }
func (t *updateGoalTool) Description() string {
	return "Modifica una meta de ahorro por su id. Solo cambia los campos indicados."
}
func (t *updateGoalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal_id":       map[string]any{"type": "integer", "description": "Id de la meta"},
			"name":          map[string]any{"type": "string", "description": "Nuevo nombre"},
			"target_amount": map[string]any{"type": "number", "description": "Nuevo monto objetivo"},
			"deadline":      map[string]any{"type": "string", "description": "Nueva fecha límite YYYY-MM-DD"},
		},
		"required": []string{"goal_id"},
	}
}
func (t *updateGoalTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "goal_id")
	ok, err := t.Store.UpdateGoal(ctx, userID, id, store.GoalUpdate{
		Name:         getStringPtr(args, "name"),
		TargetAmount: getFloatPtr(args, "target_amount"),
		Deadline:     getStringPtr(args, "deadline"),
	})
	if err != nil {
		return "", fmt.Errorf("actualizando meta: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré la meta %d o no indicaste qué cambiar.", id), nil
	}
	return fmt.Sprintf("✏️ Meta %d actualizada.", id), nil
}

// --- delete_savings_goal ---

type deleteGoalTool struct{ *Deps }

func (t *deleteGoalTool) Name() string { return "delete_savings_goal" }
func (t *deleteGoalTool) Description() string {
	return "Elimina una meta de ahorro. Conserva el historial de aportes."
}
func (t *deleteGoalTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal_id": map[string]any{"type": "integer", "description": "Id de la meta"},
		},
		"required": []string{"goal_id"},
	}
}
func (t *deleteGoalTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "goal_id")
	ok, err := t.Store.DeactivateGoal(ctx, userID, id)
	if err != nil {
		return "", fmt.Errorf("eliminando meta: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré la meta %d.", id), nil
	}
	return fmt.Sprintf("🗑️ Meta %d eliminada.", id), nil
}

// --- add_contribution_to_savings ---

type addContributionTool struct{ *Deps }

func (t *addContributionTool) Name() string { return "add_contribution_to_savings" }
func (t *addContributionTool) Description() string {
	return "Registra un aporte a una meta de ahorro buscándola por nombre aproximado."
}
func (t *addContributionTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"goal_name":   map[string]any{"type": "string", "description": "Nombre o parte del nombre de la meta"},
			"amount":      map[string]any{"type": "number", "description": "Monto del aporte"},
			"description": map[string]any{"type": "string", "description": "Nota del aporte (opcional)"},
		},
		"required": []string{"goal_name", "amount"},
	}
}
func (t *addContributionTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	amount := getFloat(args, "amount")
	if amount <= 0 {
		return "⚠️ El aporte debe ser mayor que cero.", nil
	}
	name := getString(args, "goal_name")
	goal, err := t.Store.FindGoalByName(ctx, userID, name)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("🔍 No encontré una meta parecida a %q.", name), nil
	}
	if err != nil {
		return "", fmt.Errorf("buscando meta: %w", err)
	}
	total, err := t.Store.AddContribution(ctx, userID, goal.ID, amount, getString(args, "description"), t.now())
	if err != nil {
		return "", fmt.Errorf("guardando aporte: %w", err)
	}
	msg := fmt.Sprintf("💎 Aporte de %s a %s. Llevas %s de %s.", Money(amount), goal.Name, Money(total), Money(goal.TargetAmount))
	if total >= goal.TargetAmount {
		msg += " 🎉 ¡Meta completada!"
	}
	return msg, nil
}
