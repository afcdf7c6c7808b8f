package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/pirlo1121/I-am-poor/internal/store"
)

// --- set_fixed_salary ---

type setSalaryTool struct{ *Deps }

func (t *setSalaryTool) Name() string { return "set_fixed_salary" }
func (t *setSalaryTool) Description() string {
	return "Registra o actualiza el salario fijo del mes. Solo hay un salario por mes."
}
func (t *setSalaryTool) Parameters() map[string]any {
	props := map[string]any{
		"amount": map[string]any{"type": "number", "description": "Salario mensual"},
	}
	for k, v := range monthYearProps() {
		props[k] = v
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"amount"},
	}
}
func (t *setSalaryTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	amount := getFloat(args, "amount")
	if amount <= 0 {
		return "⚠️ El salario debe ser mayor que cero.", nil
	}
	month, year := t.monthYear(args)
	replaced, err := t.Store.SetSalary(ctx, userID, amount, month, year, t.now())
	if err != nil {
		return "", fmt.Errorf("guardando salario: %w", err)
	}
	if replaced {
		return fmt.Sprintf("💵 Salario de %s actualizado a %s.", MonthName(month), Money(amount)), nil
	}
	return fmt.Sprintf("💵 Salario de %s registrado: %s.", MonthName(month), Money(amount)), nil
}

// --- add_extra_income ---

type addExtraIncomeTool struct{ *Deps }

func (t *addExtraIncomeTool) Name() string { return "add_extra_income" }
func (t *addExtraIncomeTool) Description() string {
	return "Registra un ingreso extra (freelance, prima, venta) del mes."
}
func (t *addExtraIncomeTool) Parameters() map[string]any {
	props := map[string]any{
		"amount":      map[string]any{"type": "number", "description": "Monto del ingreso"},
		"description": map[string]any{"type": "string", "description": "De dónde vino (opcional)"},
	}
	for k, v := range monthYearProps() {
		props[k] = v
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   []string{"amount"},
	}
}
func (t *addExtraIncomeTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	amount := getFloat(args, "amount")
	if amount <= 0 {
		return "⚠️ El ingreso debe ser mayor que cero.", nil
	}
	month, year := t.monthYear(args)
	desc := getString(args, "description")
	if desc == "" {
		desc = "Ingreso extra"
	}
	id, err := t.Store.AddExtraIncome(ctx, userID, amount, desc, month, year, t.now())
	if err != nil {
		return "", fmt.Errorf("guardando ingreso: %w", err)
	}
	return fmt.Sprintf("💵 Ingreso extra registrado [%d]: %s — %s (%s)", id, Money(amount), desc, MonthName(month)), nil
}

// --- get_extra_incomes ---

type extraIncomesTool struct{ *Deps }

func (t *extraIncomesTool) Name() string { return "get_extra_incomes" }
func (t *extraIncomesTool) Description() string {
	return "Lista solo los ingresos extra del mes, sin el salario fijo."
}
func (t *extraIncomesTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *extraIncomesTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	incomes, err := t.Store.IncomesByMonth(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando ingresos: %w", err)
	}
	var b strings.Builder
	var total float64
	n := 0
	for _, in := range incomes {
		if in.Type != store.IncomeExtra {
			continue
		}
		if n == 0 {
			fmt.Fprintf(&b, "💵 Ingresos extra de %s %d:\n", MonthName(month), year)
		}
		fmt.Fprintf(&b, "• [%d] %s — %s\n", in.ID, in.Description, Money(in.Amount))
		total += in.Amount
		n++
	}
	if n == 0 {
		return fmt.Sprintf("📭 Sin ingresos extra en %s %d.", MonthName(month), year), nil
	}
	fmt.Fprintf(&b, "Total extra: %s", Money(total))
	return b.String(), nil
}

// --- get_income_summary ---

type incomesByMonthTool struct{ *Deps }

func (t *incomesByMonthTool) Name() string { return "get_income_summary" }
func (t *incomesByMonthTool) Description() string {
	return "Resumen de ingresos del mes: salario fijo y extras."
}
func (t *incomesByMonthTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *incomesByMonthTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	incomes, err := t.Store.IncomesByMonth(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando ingresos: %w", err)
	}
	if len(incomes) == 0 {
		return fmt.Sprintf("📭 Sin ingresos registrados en %s %d.", MonthName(month), year), nil
	}
	var b strings.Builder
	var total float64
	fmt.Fprintf(&b, "💵 Ingresos de %s %d:\n", MonthName(month), year)
	for _, in := range incomes {
		label := in.Description
		if in.Type == store.IncomeSalary {
			label = "Salario fijo"
		}
		fmt.Fprintf(&b, "• [%d] %s — %s\n", in.ID, label, Money(in.Amount))
		total += in.Amount
	}
	fmt.Fprintf(&b, "Total: %s", Money(total))
	return b.String(), nil
}

// --- update_income ---

type updateIncomeTool struct{ *Deps }

func (t *updateIncomeTool) Name() string { return "update_income" }
func (t *updateIncomeTool) Description() string {
	return "Corrige un ingreso por su id. Solo cambia los campos indicados."
}
func (t *updateIncomeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"income_id":   map[string]any{"type": "integer", "description": "Id del ingreso"},
			"amount":      map[string]any{"type": "number", "description": "Nuevo monto"},
			"description": map[string]any{"type": "string", "description": "Nueva descripción"},
		},
		"required": []string{"income_id"},
	}
}
func (t *updateIncomeTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "income_id")
	ok, err := t.Store.UpdateIncome(ctx, userID, id, store.IncomeUpdate{
		Amount:      getFloatPtr(args, "amount"),
		Description: getStringPtr(args, "description"),
	})
	if err != nil {
		return "", fmt.Errorf("actualizando ingreso: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré el ingreso %d o no indicaste qué cambiar.", id), nil
	}
	return fmt.Sprintf("✏️ Ingreso %d actualizado.", id), nil
}

// --- delete_income ---

type deleteIncomeTool struct{ *Deps }

func (t *deleteIncomeTool) Name() string        { return "delete_income" }
func (t *deleteIncomeTool) Description() string { return "Elimina un ingreso por su id." }
func (t *deleteIncomeTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"income_id": map[string]any{"type": "integer", "description": "Id del ingreso"},
		},
		"required": []string{"income_id"},
	}
}
func (t *deleteIncomeTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "income_id")
	ok, err := t.Store.DeleteIncome(ctx, userID, id)
	if err != nil {
		return "", fmt.Errorf("eliminando ingreso: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré el ingreso %d.", id), nil
	}
	return fmt.Sprintf("🗑️ Ingreso %d eliminado.", id), nil
}
