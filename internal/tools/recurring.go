package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pirlo1121/I-am-poor/internal/store"
)

// --- add_recurring_expense ---

type addRecurringTool struct{ *Deps }

func (t *addRecurringTool) Name() string { return "add_recurring_expense" }
func (t *addRecurringTool) Description() string {
	return "Registra una factura mensual fija (arriendo, internet, suscripciones) con su día de cobro."
}
func (t *addRecurringTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description":  map[string]any{"type": "string", "description": "Nombre de la factura"},
			"amount":       map[string]any{"type": "number", "description": "Monto mensual"},
			"category":     categorySchema("Categoría"),
			"day_of_month": map[string]any{"type": "integer", "description": "Día del mes en que se cobra (1-31)"},
		},
		"required": []string{"description", "amount", "day_of_month"},
	}
}
func (t *addRecurringTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	day := getInt(args, "day_of_month", 0)
	if day < 1 || day > 31 {
		return "⚠️ El día del mes debe estar entre 1 y 31.", nil
	}
	amount := getFloat(args, "amount")
	if amount <= 0 {
		return "⚠️ El monto debe ser mayor que cero.", nil
	}
	category := getString(args, "category")
	if category == "" {
		category = "servicios"
	}
	desc := getString(args, "description")
	id, err := t.Store.AddRecurring(ctx, userID, desc, amount, category, day, t.now())
	if err != nil {
		return "", fmt.Errorf("guardando factura: %w", err)
	}
	return fmt.Sprintf("📌 Factura mensual registrada [%d]: %s — %s, día %d", id, desc, Money(amount), day), nil
}

// --- get_recurring_expenses ---

type listRecurringTool struct{ *Deps }

func (t *listRecurringTool) Name() string { return "get_recurring_expenses" }
func (t *listRecurringTool) Description() string {
	return "Lista las facturas mensuales activas del usuario."
}
func (t *listRecurringTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *listRecurringTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	bills, err := t.Store.ListRecurring(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("consultando facturas: %w", err)
	}
	if len(bills) == 0 {
		return "📭 No tienes facturas mensuales registradas.", nil
	}
	return fmt.Sprintf("📌 Facturas mensuales:\n%s\nTotal mensual: %s", billLines(bills), Money(sumBills(bills))), nil
}

// --- update_recurring_expense ---

type updateRecurringTool struct{ *Deps }

func (t *updateRecurringTool) Name() string { return "update_recurring_expense" }
func (t *updateRecurringTool) Description() string {
	return "Modifica una factura mensual por su id. Solo cambia los campos indicados."
}
func (t *updateRecurringTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recurring_expense_id": map[string]any{"type": "integer", "description": "Id de la factura"},
			"description":          map[string]any{"type": "string", "description": "Nuevo nombre"},
			"amount":               map[string]any{"type": "number", "description": "Nuevo monto"},
			"category":             categorySchema("Nueva categoría"),
			"day_of_month":         map[string]any{"type": "integer", "description": "Nuevo día de cobro"},
		},
		"required": []string{"recurring_expense_id"},
	}
}
func (t *updateRecurringTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "recurring_expense_id")
	ok, err := t.Store.UpdateRecurring(ctx, userID, id, store.RecurringUpdate{
		Description: getStringPtr(args, "description"),
		Amount:      getFloatPtr(args, "amount"),
		Category:    getStringPtr(args, "category"),
		DayOfMonth:  getIntPtr(args, "day_of_month"),
	})
	if err != nil {
		return "", fmt.Errorf("actualizando factura: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré la factura %d o no indicaste qué cambiar.", id), nil
	}
	return fmt.Sprintf("✏️ Factura %d actualizada.", id), nil
}

// --- delete_recurring_expense ---

type deleteRecurringTool struct{ *Deps }

func (t *deleteRecurringTool) Name() string { return "delete_recurring_expense" }
func (t *deleteRecurringTool) Description() string {
	return "Elimina una factura mensual. Conserva el historial de pagos."
}
func (t *deleteRecurringTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recurring_expense_id": map[string]any{"type": "integer", "description": "Id de la factura"},
		},
		"required": []string{"recurring_expense_id"},
	}
}
func (t *deleteRecurringTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "recurring_expense_id")
	ok, err := t.Store.DeactivateRecurring(ctx, userID, id)
	if err != nil {
		return "", fmt.Errorf("eliminando factura: %w", err)
	}
	if !ok {
		return fmt.Sprintf("🔍 No encontré la factura %d.", id), nil
	}
	return fmt.Sprintf("🗑️ Factura %d eliminada.", id), nil
}

// --- get_pending_payments ---

type pendingPaymentsTool struct{ *Deps }

func (t *pendingPaymentsTool) Name() string { return "get_pending_payments" }
func (t *pendingPaymentsTool) Description() string {
	return "Lista las facturas que aún no se han pagado este mes."
}
func (t *pendingPaymentsTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *pendingPaymentsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	bills, err := t.Store.PendingBills(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando pendientes: %w", err)
	}
	if len(bills) == 0 {
		return fmt.Sprintf("🎉 Todas tus facturas de %s están pagadas.", MonthName(month)), nil
	}
	return fmt.Sprintf("⏳ Pendientes de %s:\n%s\nTotal pendiente: %s",
		MonthName(month), billLines(bills), Money(sumBills(bills))), nil
}

// --- get_paid_payments ---

type paidPaymentsTool struct{ *Deps }

func (t *paidPaymentsTool) Name() string { return "get_paid_payments" }
func (t *paidPaymentsTool) Description() string {
	return "Lista las facturas ya pagadas este mes."
}
func (t *paidPaymentsTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *paidPaymentsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	bills, err := t.Store.PaidBills(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando pagadas: %w", err)
	}
	if len(bills) == 0 {
		return fmt.Sprintf("📭 Aún no has pagado facturas en %s.", MonthName(month)), nil
	}
	return fmt.Sprintf("✅ Pagadas en %s:\n%s\nTotal pagado: %s",
		MonthName(month), billLines(bills), Money(sumBills(bills))), nil
}

// --- get_all_monthly_bills ---

type allMonthlyBillsTool struct{ *Deps }

func (t *allMonthlyBillsTool) Name() string { return "get_all_monthly_bills" }
func (t *allMonthlyBillsTool) Description() string {
	return "Muestra todas las facturas del mes con su estado de pago."
}
func (t *allMonthlyBillsTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": monthYearProps()}
}
func (t *allMonthlyBillsTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	month, year := t.monthYear(args)
	paid, err := t.Store.PaidBills(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando facturas: %w", err)
	}
	pending, err := t.Store.PendingBills(ctx, userID, month, year)
	if err != nil {
		return "", fmt.Errorf("consultando facturas: %w", err)
	}
	if len(paid) == 0 && len(pending) == 0 {
		return "📭 No tienes facturas mensuales registradas.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Facturas de %s %d:\n", MonthName(month), year)
	for _, r := range paid {
		fmt.Fprintf(&b, "✅ [%d] %s — %s\n", r.ID, r.Description, Money(r.Amount))
	}
	for _, r := range pending {
		fmt.Fprintf(&b, "⏳ [%d] %s — %s (día %d)\n", r.ID, r.Description, Money(r.Amount), r.DayOfMonth)
	}
	fmt.Fprintf(&b, "Pagado: %s · Pendiente: %s", Money(sumBills(paid)), Money(sumBills(pending)))
	return b.String(), nil
}

// --- mark_bill_paid ---

type markBillPaidTool struct{ *Deps }

func (t *markBillPaidTool) Name() string { return "mark_bill_paid" }
func (t *markBillPaidTool) Description() string {
	return "Marca una factura como pagada este mes, por su id."
}
func (t *markBillPaidTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recurring_expense_id": map[string]any{"type": "integer", "description": "Id de la factura"},
		},
		"required": []string{"recurring_expense_id"},
	}
}
func (t *markBillPaidTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "recurring_expense_id")
	return t.markPaid(ctx, userID, id)
}

// markPaid is shared with the fuzzy-lookup tool.
func (d *Deps) markPaid(ctx context.Context, userID, billID int64) (string, error) {
	now := d.now()
	bill, err := d.Store.GetRecurring(ctx, userID, billID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("🔍 No encontré la factura %d.", billID), nil
	}
	if err != nil {
		return "", fmt.Errorf("consultando factura: %w", err)
	}
	already, err := d.Store.MarkPaid(ctx, userID, billID, int(now.Month()), now.Year(), now)
	if err != nil {
		return "", fmt.Errorf("marcando pago: %w", err)
	}
	if already {
		return fmt.Sprintf("ℹ️ %s ya estaba marcada como pagada en %s.", bill.Description, MonthName(int(now.Month()))), nil
	}
	return fmt.Sprintf("✅ Pago registrado: %s — %s (%s)", bill.Description, Money(bill.Amount), MonthName(int(now.Month()))), nil
}

// --- unmark_bill_paid ---

type unmarkBillPaidTool struct{ *Deps }

func (t *unmarkBillPaidTool) Name() string { return "unmark_bill_paid" }
func (t *unmarkBillPaidTool) Description() string {
	return "Desmarca una factura pagada este mes (si se marcó por error), por su id."
}
func (t *unmarkBillPaidTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recurring_expense_id": map[string]any{"type": "integer", "description": "Id de la factura"},
		},
		"required": []string{"recurring_expense_id"},
	}
}
func (t *unmarkBillPaidTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	id := getID(args, "recurring_expense_id")
	return t.unmarkPaid(ctx, userID, id)
}

func (d *Deps) unmarkPaid(ctx context.Context, userID, billID int64) (string, error) {
	now := d.now()
	bill, err := d.Store.GetRecurring(ctx, userID, billID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("🔍 No encontré la factura %d.", billID), nil
	}
	if err != nil {
		return "", fmt.Errorf("consultando factura: %w", err)
	}
	removed, err := d.Store.UnmarkPaid(ctx, userID, billID, int(now.Month()), now.Year())
	if err != nil {
		return "", fmt.Errorf("desmarcando pago: %w", err)
	}
	if !removed {
		return fmt.Sprintf("ℹ️ %s no estaba marcada como pagada en %s.", bill.Description, MonthName(int(now.Month()))), nil
	}
	return fmt.Sprintf("↩️ %s vuelve a estar pendiente en %s.", bill.Description, MonthName(int(now.Month()))), nil
}

// --- find_recurring_by_name ---

type findRecurringByNameTool struct{ *Deps }

func (t *findRecurringByNameTool) Name() string { return "find_recurring_by_name" }
func (t *findRecurringByNameTool) Description() string {
	return "Busca una factura por nombre aproximado y la marca como pagada. Úsala cuando el usuario diga que pagó algo sin dar el id."
}
func (t *findRecurringByNameTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string", "description": "Nombre o parte del nombre de la factura"},
		},
		"required": []string{"description"},
	}
}
func (t *findRecurringByNameTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	query := getString(args, "description")
	bill, err := t.Store.FindRecurringByName(ctx, userID, query)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("🔍 No encontré una factura parecida a %q.", query), nil
	}
	if err != nil {
		return "", fmt.Errorf("buscando factura: %w", err)
	}
	return t.markPaid(ctx, userID, bill.ID)
}

// --- find_recurring_by_name_for_unmark ---

type findRecurringForUnmarkTool struct{ *Deps }

func (t *findRecurringForUnmarkTool) Name() string { return "find_recurring_by_name_for_unmark" }
func (t *findRecurringForUnmarkTool) Description() string {
	return "Busca una factura por nombre aproximado y la desmarca como pagada este mes."
}
func (t *findRecurringForUnmarkTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string", "description": "Nombre o parte del nombre de la factura"},
		},
		"required": []string{"description"},
	}
}
func (t *findRecurringForUnmarkTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	query := getString(args, "description")
	bill, err := t.Store.FindRecurringByName(ctx, userID, query)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("🔍 No encontré una factura parecida a %q.", query), nil
	}
	if err != nil {
		return "", fmt.Errorf("buscando factura: %w", err)
	}
	return t.unmarkPaid(ctx, userID, bill.ID)
}
