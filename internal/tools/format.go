package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/store"
)

var monthNames = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// MonthName returns the Spanish month name for 1-12.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprintf("mes %d", m)
	}
	return monthNames[m-1]
}

// Money formats a COP amount with dot thousand separators: $1.234.567.
func Money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// shortDate renders a timestamp as dd/mm HH:MM.
func shortDate(t time.Time) string {
	return t.Format("02/01 15:04")
}

// expenseLines renders a list of expenses as numbered lines.
func expenseLines(expenses []store.Expense) string {
	var b strings.Builder
	for _, e := range expenses {
		fmt.Fprintf(&b, "• [%d] %s %s (%s) — %s\n", e.ID, Money(e.Amount), e.Description, e.Category, shortDate(e.CreatedAt))
	}
	return strings.TrimRight(b.String(), "\n")
}

// sumExpenses totals a slice of expenses.
func sumExpenses(expenses []store.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// billLines renders recurring bills as numbered lines.
func billLines(bills []store.RecurringExpense) string {
	var b strings.Builder
	for _, r := range bills {
		fmt.Fprintf(&b, "• [%d] %s — %s (%s), día %d\n", r.ID, r.Description, Money(r.Amount), r.Category, r.DayOfMonth)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sumBills(bills []store.RecurringExpense) float64 {
	var total float64
	for _, r := range bills {
		total += r.Amount
	}
	return total
}
