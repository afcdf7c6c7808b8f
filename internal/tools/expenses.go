package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/store"
)

// dayRange returns [midnight, midnight+24h) for t.
func dayRange(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}

// weekRange returns the Monday-to-Monday range containing t.
func weekRange(t time.Time) (time.Time, time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday = 0
	from := midnight.AddDate(0, 0, -offset)
	return from, from.AddDate(0, 0, 7)
}

// monthRange returns the first-of-month to first-of-next-month range.
func monthRange(month, year int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// --- add_expense ---

type addExpenseTool struct{ *Deps }

func (t *addExpenseTool) Name() string { return "add_expense" }
func (t *addExpenseTool) Description() string {
	return "Registra un gasto. Úsala cuando el usuario mencione que gastó o compró algo."
}
func (t *addExpenseTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount":      map[string]any{"type": "number", "description": "Monto en pesos colombianos"},
			"description": map[string]any{"type": "string", "description": "En qué se gastó"},
			"category":    categorySchema("Categoría del gasto"),
		},
		"required": []string{"amount", "description"},
	}
}
func (t *addExpenseTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	amount := getFloat(args, "amount")
	if amount <= 0 {
		return "⚠️ El monto debe ser mayor que cero.", nil
	}
	category := getString(args, "category")
	if category == "" {
		category = "general"
	}
	description := getString(args, "description")
	id, err := t.Store.AddExpense(ctx, userID, amount, description, category, t.now())
	if err != nil {
		return "", fmt.Errorf("guardando gasto: %w", err)
	}
	return fmt.Sprintf("💰 Gasto registrado [%d]: %s — %s (%s)", id, Money(amount), description, category), nil
}

// --- get_recent_expenses ---

type recentExpensesTool struct{ *Deps }

func (t *recentExpensesTool) Name() string { return "get_recent_expenses" }
func (t *recentExpensesTool) Description() string {
	return "Muestra los últimos gastos registrados del usuario."
}
func (t *recentExpensesTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Cuántos gastos mostrar (por defecto 10)"},
		},
	}
}
func (t *recentExpensesTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	limit := getInt(args, "limit", 10)
	expenses, err := t.Store.RecentExpenses(ctx, userID, limit)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	if len(expenses) == 0 {
		return "📭 No tienes gastos registrados todavía.", nil
	}
	return fmt.Sprintf("🧾 Últimos gastos:\n%s\nTotal: %s", expenseLines(expenses), Money(sumExpenses(expenses))), nil
}

// --- update_expense ---

type updateExpenseTool struct{ *Deps }

func (t *updateExpenseTool) Name() string { return "update_expense" }
func (t *updateExpenseTool) Description() string {
	return "Corrige un gasto existente por su id. Solo cambia los campos indicados."
}
func (t *updateExpenseTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expense_id":  map[string]any{"type": "integer", "description": "Id del gasto a corregir"},
			"amount":      map[string]any{"type": "number", "description": "Nuevo monto"},
			"description": map[string]any{"type": "string", "description": "Nueva descripción"},
			"category":    categorySchema("Nueva categoría"),
		},
		"required": []string{"expense_id"},
	}
}
func (t *updateExpenseTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "expense_id")
	upd := store.ExpenseUpdate{
		Amount:      getFloatPtr(args, "amount"),
		Description: getStringPtr(args, "description"),
		Category:    getStringPtr(args, "category"),
	}
	ok, err := t.Store.UpdateExpense(ctx, userID, id, upd)
	if err != nil {
		return "", fmt.Errorf("actualizando gasto: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré el gasto %d o no indicaste qué cambiar.", id), nil
	}
	return fmt.Sprintf("✏️ Gasto %d actualizado.", id), nil
}

// --- delete_expense ---

type deleteExpenseTool struct{ *Deps }

func (t *deleteExpenseTool) Name() string        { return "delete_expense" }
func (t *deleteExpenseTool) Description() string { return "Elimina un gasto por su id." }
func (t *deleteExpenseTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expense_id": map[string]any{"type": "integer", "description": "Id del gasto a eliminar"},
		},
		"required": []string{"expense_id"},
	}
}
func (t *deleteExpenseTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "expense_id")
	ok, err := t.Store.DeleteExpense(ctx, userID, id)
	if err != nil {
		return "", fmt.Errorf("eliminando gasto: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré el gasto %d.", id), nil
	}
	return fmt.Sprintf("🗑️ Gasto %d eliminado.", id), nil
}

// --- get_expenses_by_day ---

type expensesByDayTool struct{ *Deps }

func (t *expensesByDayTool) Name() string { return "get_expenses_by_day" }
func (t *expensesByDayTool) Description() string {
	return "Muestra los gastos de un día. Sin fecha, muestra los de hoy."
}
func (t *expensesByDayTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{"type": "string", "description": "Fecha YYYY-MM-DD, por defecto hoy"},
		},
	}
}
func (t *expensesByDayTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	day := t.now()
	if raw := getString(args, "date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, t.Loc)
		if err != nil {
			return fmt.Sprintf("⚠️ Fecha inválida %q, usa el formato YYYY-MM-DD.", raw), nil
		}
		day = parsed
	}
	from, to := dayRange(day)
	expenses, err := t.Store.ExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	label := day.Format("02/01/2006")
	if len(expenses) == 0 {
		return fmt.Sprintf("📭 Sin gastos el %s.", label), nil
	}
	return fmt.Sprintf("📅 Gastos del %s:\n%s\nTotal: %s", label, expenseLines(expenses), Money(sumExpenses(expenses))), nil
}

// --- get_expenses_by_week ---

type expensesByWeekTool struct{ *Deps }

func (t *expensesByWeekTool) Name() string { return "get_expenses_by_week" }
func (t *expensesByWeekTool) Description() string {
	return "Muestra los gastos de la semana actual (desde el lunes)."
}
func (t *expensesByWeekTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *expensesByWeekTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	from, to := weekRange(t.now())
	expenses, err := t.Store.ExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	if len(expenses) == 0 {
		return "📭 Sin gastos esta semana.", nil
	}
	return fmt.Sprintf("📅 Gastos de esta semana:\n%s\nTotal: %s", expenseLines(expenses), Money(sumExpenses(expenses))), nil
}

// --- get_expenses_by_month ---

type expensesByMonthTool struct{ *Deps }

func (t *expensesByMonthTool) Name() string { return "get_expenses_by_month" }
func (t *expensesByMonthTool) Description() string {
	return "Muestra los gastos de un mes. Sin argumentos, el mes actual."
}
func (t *expensesByMonthTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *expensesByMonthTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	from, to := monthRange(month, year, t.Loc)
	expenses, err := t.Store.ExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	if len(expenses) == 0 {
		return fmt.Sprintf("📭 Sin gastos en %s %d.", MonthName(month), year), nil
	}
	return fmt.Sprintf("📅 Gastos de %s %d:\n%s\nTotal: %s",
		MonthName(month), year, expenseLines(expenses), Money(sumExpenses(expenses))), nil
}

// --- get_expenses_by_category ---

type expensesByCategoryTool struct{ *Deps }

func (t *expensesByCategoryTool) Name() string { return "get_expenses_by_category" }
func (t *expensesByCategoryTool) Description() string {
	return "Muestra los gastos de una categoría."
}
func (t *expensesByCategoryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": categorySchema("Categoría a consultar"),
		},
		"required": []string{"category"},
	}
}
func (t *expensesByCategoryTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	category := getString(args, "category")
	expenses, err := t.Store.ExpensesByCategory(ctx, userID, category)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	if len(expenses) == 0 {
		return fmt.Sprintf("📭 Sin gastos en la categoría %s.", category), nil
	}
	return fmt.Sprintf("🏷️ Gastos en %s:\n%s\nTotal: %s", category, expenseLines(expenses), Money(sumExpenses(expenses))), nil
}

// --- get_category_summary ---

type categorySummaryTool struct{ *Deps }

func (t *categorySummaryTool) Name() string { return "get_category_summary" }
func (t *categorySummaryTool) Description() string {
	return "Resumen del gasto del mes por categoría, de mayor a menor."
}
func (t *categorySummaryTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *categorySummaryTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	from, to := monthRange(month, year, t.Loc)
	totals, err := t.Store.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando resumen: %w", err)
	}
	if len(totals) == 0 {
		return fmt.Sprintf("📭 Sin gastos en %s %d.", MonthName(month), year), nil
	}
	var b strings.Builder
	var grand float64
	fmt.Fprintf(&b, "📊 Resumen de %s %d:\n", MonthName(month), year)
	for _, ct := range totals {
		fmt.Fprintf(&b, "• %s: %s (%d gastos)\n", ct.Category, Money(ct.Total), ct.Count)
		grand += ct.Total
	}
	fmt.Fprintf(&b, "Total: %s", Money(grand))
	return b.String(), nil
}

// --- compare_monthly_expenses ---

type compareMonthsTool struct{ *Deps }

func (t *compareMonthsTool) Name() string { return "compare_monthly_expenses" }
func (t *compareMonthsTool) Description() string {
	return "Compara el gasto total de dos meses."
}
func (t *compareMonthsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"month1": map[string]any{"type": "integer", "description": "Primer mes (1-12)"},
			"year1":  map[string]any{"type": "integer", "description": "Año del primer mes"},
			"month2": map[string]any{"type": "integer", "description": "Segundo mes (1-12)"},
			"year2":  map[string]any{"type": "integer", "description": "Año del segundo mes"},
		},
		"required": []string{"month1", "year1", "month2", "year2"},
	}
}
func (t *compareMonthsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	m1, y1 := getInt(args, "month1", 0), getInt(args, "year1", 0)
	m2, y2 := getInt(args, "month2", 0), getInt(args, "year2", 0)

	from1, to1 := monthRange(m1, y1, t.Loc)
	total1, err := t.Store.TotalBetween(ctx, userID, from1, to1)
	if err != nil {
		return "", fmt.Errorf("consultando total: %w", err)
	}
	from2, to2 := monthRange(m2, y2, t.Loc)
	total2, err := t.Store.TotalBetween(ctx, userID, from2, to2)
	if err != nil {
		return "", fmt.Errorf("consultando total: %w", err)
	}

	diff := total2 - total1
	trend := "⬇️ gastaste menos"
	if diff > 0 {
		trend = "⬆️ gastaste más"
	} else if diff == 0 {
		trend = "➡️ gastaste igual"
	}
	return fmt.Sprintf("📊 %s %d: %s\n📊 %s %d: %s\n%s (%s de diferencia)",
		MonthName(m1), y1, Money(total1),
		MonthName(m2), y2, Money(total2),
		trend, Money(mathAbs(diff))), nil
}

func mathAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
