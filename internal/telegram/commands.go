package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/tools"
)

func firstOfMonth(year, month int, loc *time.Location) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
}

const welcomeText = `¡Hola! 👋 Soy tu asistente de finanzas personales.

Cuéntame tus gastos como le contarías a un amigo ("me gasté 20 mil en almuerzo") y yo los registro. También manejo tus facturas mensuales, metas de ahorro e ingresos.

Comandos rápidos:
/gastos — últimos gastos
/resumen — resumen del mes
/facturas — facturas pendientes
/help — qué más puedo hacer`

const helpText = `Esto es lo que sé hacer:

💰 *Gastos* — "me gasté 15 mil en transporte", "borra el gasto 12", "¿cuánto llevo este mes?"
📌 *Facturas* — "agrega el arriendo, 800 mil, día 5", "ya pagué internet", "¿qué me falta pagar?"
🎯 *Metas* — "quiero ahorrar 2 millones para un viaje", "abona 100 mil a la meta del viaje"
💵 *Ingresos* — "mi salario es 3 millones", "me entraron 200 mil extra"
📊 *Análisis* — "¿cómo voy este mes?", "compárame agosto con julio", "dame un consejo"
⏰ *Recordatorios* — "recuérdame mañana a las 8 pagar la luz"

También puedes mandarme notas de voz 🎤.`

// handleCommand answers the quick commands straight from the store, no
// model call involved.
func (c *Channel) handleCommand(ctx context.Context, chatID, userID int64, command string) {
	var text string
	var err error

	switch command {
	case "start":
		text = welcomeText
	case "help":
		text = helpText
	case "gastos":
		text, err = c.recentExpenses(ctx, userID)
	case "resumen":
		text, err = c.monthSummary(ctx, userID)
	case "facturas":
		text, err = c.pendingBills(ctx, userID)
	default:
		text = "🤷 No conozco ese comando. Prueba /help."
	}

	if err != nil {
		slog.Error("command failed",
			slog.String("command", command),
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		text = "⚠️ No pude consultar tus datos. Inténtalo de nuevo."
	}
	c.reply(chatID, text)
}

func (c *Channel) recentExpenses(ctx context.Context, userID int64) (string, error) {
	expenses, err := c.store.RecentExpenses(ctx, userID, 10)
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return "📭 No tienes gastos registrados todavía.", nil
	}
	var b strings.Builder
	b.WriteString("🧾 Tus últimos gastos:\n")
	var total float64
	for _, e := range expenses {
		fmt.Fprintf(&b, "• %s — %s (%s)\n", tools.Money(e.Amount), e.Description, e.Category)
		total += e.Amount
	}
	fmt.Fprintf(&b, "Total: %s", tools.Money(total))
	return b.String(), nil
}

func (c *Channel) monthSummary(ctx context.Context, userID int64) (string, error) {
	now := c.now().In(c.loc)
	month, year := int(now.Month()), now.Year()

	from := firstOfMonth(year, month, c.loc)
	to := from.AddDate(0, 1, 0)

	income, err := c.store.TotalIncome(ctx, userID, month, year)
	if err != nil {
		return "", err
	}
	spent, err := c.store.TotalBetween(ctx, userID, from, to)
	if err != nil {
		return "", err
	}
	pending, err := c.store.PendingBills(ctx, userID, month, year)
	if err != nil {
		return "", err
	}
	var pendingTotal float64
	for _, p := range pending {
		pendingTotal += p.Amount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Resumen de %s %d:\n", tools.MonthName(month), year)
	fmt.Fprintf(&b, "• Ingresos: %s\n", tools.Money(income))
	fmt.Fprintf(&b, "• Gastado: %s\n", tools.Money(spent))
	fmt.Fprintf(&b, "• Facturas pendientes: %s (%d)\n", tools.Money(pendingTotal), len(pending))
	fmt.Fprintf(&b, "• Balance proyectado: %s", tools.Money(income-spent-pendingTotal))
	return b.String(), nil
}

func (c *Channel) pendingBills(ctx context.Context, userID int64) (string, error) {
	now := c.now().In(c.loc)
	month, year := int(now.Month()), now.Year()

	pending, err := c.store.PendingBills(ctx, userID, month, year)
	if err != nil {
		return "", err
	}
	if len(pending) == 0 {
		return fmt.Sprintf("🎉 Todas tus facturas de %s están pagadas.", tools.MonthName(month)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "⏳ Facturas pendientes de %s:\n", tools.MonthName(month))
	var total float64
	for _, p := range pending {
		fmt.Fprintf(&b, "• %s — %s (día %d)\n", p.Description, tools.Money(p.Amount), p.DayOfMonth)
		total += p.Amount
	}
	fmt.Fprintf(&b, "Total pendiente: %s", tools.Money(total))
	return b.String(), nil
}
