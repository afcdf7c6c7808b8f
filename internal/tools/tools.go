// Package tools implements the finance tool catalog exposed to the model.
// Every tool is a thin bridge from model-supplied arguments to the store,
// returning a human-readable Spanish message the model can relay.
package tools

import (
	"time"

	"github.com/pirlo1121/I-am-poor/internal/store"
	"github.com/pirlo1121/I-am-poor/internal/toolreg"
)

// Categories accepted for expenses and bills.
var Categories = []string{"comida", "transporte", "entretenimiento", "servicios", "salud", "mercado", "general"}

// Deps is what every tool needs: the store, the user's timezone, and an
// injectable clock.
type Deps struct {
	Store *store.Store
	Loc   *time.Location
	Now   func() time.Time
}

// now returns the current time in the bot's timezone.
func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().In(d.Loc)
	}
	return time.Now().In(d.Loc)
}

// monthYear resolves optional month/year args to the current month.
func (d *Deps) monthYear(args map[string]any) (int, int) {
	now := d.now()
	month := getInt(args, "month", int(now.Month()))
	year := getInt(args, "year", now.Year())
	return month, year
}

// RegisterAll registers the full tool catalog. Order matters: it is the
// order the definitions are presented to the model.
func RegisterAll(r *toolreg.Registry, deps *Deps) {
	// Expenses.
	r.Register(&addExpenseTool{deps})
	r.Register(&recentExpensesTool{deps})
	r.Register(&updateExpenseTool{deps})
	r.Register(&deleteExpenseTool{deps})
	r.Register(&expensesByDayTool{deps})
	r.Register(&expensesByWeekTool{deps})
	r.Register(&expensesByMonthTool{deps})
	r.Register(&expensesByCategoryTool{deps})
	r.Register(&categorySummaryTool{deps})
	r.Register(&compareMonthsTool{deps})

	// Recurring bills and payments.
	r.Register(&addRecurringTool{deps})
	r.Register(&listRecurringTool{deps})
	r.Register(&updateRecurringTool{deps})
	r.Register(&deleteRecurringTool{deps})
	r.Register(&pendingPaymentsTool{deps})
	r.Register(&paidPaymentsTool{deps})
	r.Register(&allMonthlyBillsTool{deps})
	r.Register(&markBillPaidTool{deps})
	r.Register(&unmarkBillPaidTool{deps})
	r.Register(&findRecurringByNameTool{deps})
	r.Register(&findRecurringForUnmarkTool{deps})

	// Savings goals.
	r.Register(&addGoalTool{deps})
	r.Register(&listGoalsTool{deps})
	r.Register(&updateGoalTool{deps})
	r.Register(&deleteGoalTool{deps})
	r.Register(&addContributionTool{deps})

	// Incomes.
	r.Register(&setSalaryTool{deps})
	r.Register(&addExtraIncomeTool{deps})
	r.Register(&extraIncomesTool{deps})
	r.Register(&incomesByMonthTool{deps})
	r.Register(&updateIncomeTool{deps})
	r.Register(&deleteIncomeTool{deps})

	// Analysis.
	r.Register(&financialSummaryTool{deps})
	r.Register(&spendingPredictionTool{deps})
	r.Register(&financialInsightsTool{deps})

	// Reminders.
	r.Register(&addReminderTool{deps})
}

// categorySchema is the shared enum property for expense categories.
func categorySchema(desc string) map[string]any {
	return map[string]any{"type": "string", "enum": Categories, "description": desc}
}

// monthYearProps are the shared optional month/year properties.
func monthYearProps() map[string]any {
	return map[string]any{
		"month": map[string]any{"type": "integer", "description": "Mes (1-12), por defecto el actual"},
		"year":  map[string]any{"type": "integer", "description": "Año, por defecto el actual"},
	}
}
