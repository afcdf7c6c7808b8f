package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// --- get_financial_summary ---

type financialSummaryTool struct{ *Deps }

func (t *financialSummaryTool) Name() string { return "get_financial_summary" }
func (t *financialSummaryTool) Description() string {
	return "Resumen financiero del mes: ingresos, gastos, facturas pendientes y balance."
}
func (t *financialSummaryTool) Parameters() map[string]any {
	props := map[string]any{
		"budget": map[string]any{"type": "number", "description": "Presupuesto mensual para comparar (opcional)"},
	}
	for k, v := range monthYearProps() {
		props[k] = v
	}
	return map[string]any{"type": "object", "properties": props}
}
func (t *financialSummaryTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	from, to := monthRange(month, year, t.Loc)

	spent, err := t.Store.TotalBetween(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}
	income, err := t.Store.TotalIncome(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando ingresos: %w", err)
	}
	pending, err := t.Store.PendingBills(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando pendientes: %w", err)
	}

	pendingTotal := sumBills(pending)
	balance := income - spent - pendingTotal

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Resumen de %s %d:\n", MonthName(month), year)
	fmt.Fprintf(&b, "• Ingresos: %s\n", Money(income))
	fmt.Fprintf(&b, "• Gastado: %s\n", Money(spent))
	fmt.Fprintf(&b, "• Facturas pendientes: %s (%d)\n", Money(pendingTotal), len(pending))
	fmt.Fprintf(&b, "• Balance proyectado: %s", Money(balance))
	if budget := getFloat(args, "budget"); budget > 0 {
		left := budget - spent
		if left >= 0 {
			fmt.Fprintf(&b, "\n• Presupuesto: te quedan %s de %s", Money(left), Money(budget))
		} else {
			fmt.Fprintf(&b, "\n• Presupuesto: te pasaste por %s de %s", Money(-left), Money(budget))
		}
	}
	return b.String(), nil
}

// --- get_spending_prediction ---

type spendingPredictionTool struct{ *Deps }

func (t *spendingPredictionTool) Name() string { return "get_spending_prediction" }
func (t *spendingPredictionTool) Description() string {
	return "Proyecta el gasto del mes: promedio de los últimos 3 meses y ritmo del mes actual."
}
func (t *spendingPredictionTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": categorySchema("Limitar la proyección a una categoría (opcional)"),
		},
	}
}
func (t *spendingPredictionTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	now := t.now()
	category := getString(args, "category")

	// Average of the last three full months.
	var histTotal float64
	var histMonths int
	for i := 1; i <= 3; i++ {
		ref := now.AddDate(0, -i, 0)
		from, to := monthRange(int(ref.Month()), ref.Year(), t.Loc)
		total, err := t.totalFor(ctx, userID, category, from, to)
		if err != nil {
			return "", err
		}
		if total > 0 {
			histTotal += total
			histMonths++
		}
	}

	from, to := monthRange(int(now.Month()), now.Year(), t.Loc)
	current, err := t.totalFor(ctx, userID, category, from, to)
	if err != nil {
		return "", err
	}

	if histMonths == 0 && current == 0 {
		return "📭 Aún no hay suficientes datos para una proyección.", nil
	}

	// Linear projection from the month's daily pace.
	daysGone := now.Day()
	daysInMonth := to.AddDate(0, 0, -1).Day()
	projected := current
	if daysGone > 0 {
		projected = current / float64(daysGone) * float64(daysInMonth)
	}

	label := "total"
	if category != "" {
		label = "en " + category
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔮 Proyección de gasto %s:\n", label)
	if histMonths > 0 {
		fmt.Fprintf(&b, "• Promedio últimos %d meses: %s\n", histMonths, Money(histTotal/float64(histMonths)))
	}
	fmt.Fprintf(&b, "• Llevas %s en %d días\n", Money(current), daysGone)
	fmt.Fprintf(&b, "• A este ritmo cerrarías el mes en %s", Money(projected))
	return b.String(), nil
}

// totalFor sums the range, either everything or one category.
func (t *spendingPredictionTool) totalFor(ctx context.Context, userID int64, category string, from, to time.Time) (float64, error) {
	if category == "" {
		total, err := t.Store.TotalBetween(ctx, userID, from, to)
		if err != nil {
			return 0, fmt.Errorf("consultando gastos: %w", err)
		}
		return total, nil
	}
	totals, err := t.Store.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("consultando categorías: %w", err)
	}
	for _, ct := range totals {
		if ct.Category == category {
			return ct.Total, nil
		}
	}
	return 0, nil
}

// --- get_financial_insights ---

type financialInsightsTool struct{ *Deps }

func (t *financialInsightsTool) Name() string { return "get_financial_insights" }
func (t *financialInsightsTool) Description() string {
	return "Observaciones sobre tus finanzas: dónde gastas más y cómo vas contra el mes pasado."
}
func (t *financialInsightsTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *financialInsightsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	now := t.now()
	month, year := int(now.Month()), now.Year()
	from, to := monthRange(month, year, t.Loc)

	totals, err := t.Store.CategoryTotals(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando categorías: %w", err)
	}
	if len(totals) == 0 {
		return "📭 Aún no hay gastos este mes para analizar.", nil
	}
	spent, err := t.Store.TotalBetween(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("consultando gastos: %w", err)
	}

	prev := now.AddDate(0, -1, 0)
	pFrom, pTo := monthRange(int(prev.Month()), prev.Year(), t.Loc)
	prevSpent, err := t.Store.TotalBetween(ctx, userID, pFrom, pTo)
	if err != nil {
		return "", fmt.Errorf("consultando mes anterior: %w", err)
	}

	income, err := t.Store.TotalIncome(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando ingresos: %w", err)
	}

	var b strings.Builder
	b.WriteString("💡 Observaciones:\n")
	top := totals[0]
	share := top.Total / spent * 100
	fmt.Fprintf(&b, "• Tu mayor gasto es %s: %s (%.0f%% del mes)\n", top.Category, Money(top.Total), share)
	if prevSpent > 0 {
		delta := (spent - prevSpent) / prevSpent * 100
		if delta > 0 {
			fmt.Fprintf(&b, "• Vas %.0f%% por encima de %s\n", delta, MonthName(int(prev.Month())))
		} else {
			fmt.Fprintf(&b, "• Vas %.0f%% por debajo de %s\n", -delta, MonthName(int(prev.Month())))
		}
	}
	if income > 0 {
		rate := (income - spent) / income * 100
		fmt.Fprintf(&b, "• Has gastado %s de %s ingresados (%.0f%% disponible)", Money(spent), Money(income), rate)
	} else {
		b.WriteString("• Registra tus ingresos para calcular tu tasa de ahorro")
	}
	return b.String(), nil
}
