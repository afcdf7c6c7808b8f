package telegram

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pirlo1121/I-am-poor/internal/bus"
	"github.com/pirlo1121/I-am-poor/internal/store"
)

// newTestChannel builds a Channel backed by a temp database and a live
// bus, without connecting to the Bot API.
func newTestChannel(t *testing.T) (*Channel, *store.Store, *bus.Bus) {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	b := bus.New()
	t.Cleanup(b.Close)

	c := &Channel{
		bus:   b,
		store: st,
		loc:   time.UTC,
		now:   func() time.Time { return time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC) },
	}
	return c, st, b
}

func commandReply(t *testing.T, c *Channel, b *bus.Bus, command string) string {
	t.Helper()
	ctx := context.Background()
	c.handleCommand(ctx, 99, 42, command)
	msg, ok := b.SubscribeOutbound(ctx)
	if !ok {
		t.Fatalf("no outbound reply for /%s", command)
	}
	if msg.ChatID != 99 {
		t.Errorf("reply chat id = %d, want 99", msg.ChatID)
	}
	return msg.Text
}

func TestCommand_StartHelpUnknown(t *testing.T) {
	c, _, b := newTestChannel(t)

	if got := commandReply(t, c, b, "start"); !strings.Contains(got, "/gastos") {
		t.Errorf("/start reply %q should list quick commands", got)
	}
	if got := commandReply(t, c, b, "help"); !strings.Contains(got, "notas de voz") {
		t.Errorf("/help reply %q should mention voice notes", got)
	}
	if got := commandReply(t, c, b, "frobnicate"); !strings.Contains(got, "/help") {
		t.Errorf("unknown command reply %q should point at /help", got)
	}
}

func TestCommand_Gastos(t *testing.T) {
	c, st, b := newTestChannel(t)
	ctx := context.Background()

	if got := commandReply(t, c, b, "gastos"); !strings.Contains(got, "📭") {
		t.Errorf("empty /gastos reply = %q", got)
	}

	now := c.now()
	if _, err := st.AddExpense(ctx, 42, 20000, "almuerzo", "comida", now); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, 42, 8000, "bus", "transporte", now); err != nil {
		t.Fatal(err)
	}
	// Another user's spending stays out of the report.
	if _, err := st.AddExpense(ctx, 7, 999999, "otro", "general", now); err != nil {
		t.Fatal(err)
	}

	got := commandReply(t, c, b, "gastos")
	if !strings.Contains(got, "almuerzo") || !strings.Contains(got, "bus") {
		t.Errorf("/gastos reply missing entries: %q", got)
	}
	if !strings.Contains(got, "Total: $28.000") {
		t.Errorf("/gastos total wrong: %q", got)
	}
	if strings.Contains(got, "999.999") {
		t.Errorf("/gastos leaked another user's expense: %q", got)
	}
}

func TestCommand_Resumen(t *testing.T) {
	c, st, b := newTestChannel(t)
	ctx := context.Background()
	now := c.now()

	if _, err := st.SetSalary(ctx, 42, 3000000, 8, 2026, now); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddExpense(ctx, 42, 500000, "mercado", "mercado", now); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddRecurring(ctx, 42, "arriendo", 800000, "servicios", 5, now); err != nil {
		t.Fatal(err)
	}

	got := commandReply(t, c, b, "resumen")
	for _, want := range []string{"agosto 2026", "$3.000.000", "$500.000", "$800.000", "$1.700.000"} {
		if !strings.Contains(got, want) {
			t.Errorf("/resumen reply missing %q:\n%s", want, got)
		}
	}
}

func TestCommand_Facturas(t *testing.T) {
	c, st, b := newTestChannel(t)
	ctx := context.Background()
	now := c.now()

	if got := commandReply(t, c, b, "facturas"); !strings.Contains(got, "🎉") {
		t.Errorf("no-bills /facturas reply = %q", got)
	}

	id, err := st.AddRecurring(ctx, 42, "internet", 90000, "servicios", 10, now)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddRecurring(ctx, 42, "arriendo", 800000, "servicios", 5, now); err != nil {
		t.Fatal(err)
	}
	if _, err := st.MarkPaid(ctx, 42, id, 8, 2026, now); err != nil {
		t.Fatal(err)
	}

	got := commandReply(t, c, b, "facturas")
	if !strings.Contains(got, "arriendo") {
		t.Errorf("/facturas reply missing pending bill: %q", got)
	}
	if strings.Contains(got, "internet") {
		t.Errorf("/facturas reply lists a paid bill: %q", got)
	}
	if !strings.Contains(got, "Total pendiente: $800.000") {
		t.Errorf("/facturas total wrong: %q", got)
	}
}
