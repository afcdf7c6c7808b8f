package tools

import (
	"context"
	"fmt"
	"time"
)

// --- add_reminder ---

type addReminderTool struct{ *Deps }

func (t *addReminderTool) Name() string { return "add_reminder" }
func (t *addReminderTool) Description() string {
	return "Crea un recordatorio para una fecha y hora. El bot enviará el mensaje en ese momento."
}
func (t *addReminderTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message":   map[string]any{"type": "string", "description": "Qué recordar"},
			"remind_at": map[string]any{"type": "string", "description": "Fecha y hora ISO 8601, ej. 2026-09-01T08:00:00"},
		},
		"required": []string{"message", "remind_at"},
	}
}
func (t *addReminderTool) Execute(ctx context.Context, userID int64, args map[string]any) (string, error) {
	raw := getString(args, "remind_at")
	remindAt, err := parseRemindAt(raw, t.Loc)
	if err != nil {
		return fmt.Sprintf("⚠️ No entendí la fecha %q, usa el formato 2026-09-01T08:00:00.", raw), nil
	}
	if !remindAt.After(t.now()) {
		return "⚠️ El recordatorio debe ser en el futuro.", nil
	}
	id, err := t.Store.AddReminder(ctx, userID, getString(args, "message"), remindAt, t.now())
	if err != nil {
		return "", fmt.Errorf("guardando recordatorio: %w", err)
	}
	return fmt.Sprintf("⏰ Recordatorio [%d] programado para %s.", id, remindAt.Format("02/01/2006 15:04")), nil
}

// parseRemindAt accepts ISO 8601 with or without offset; naive timestamps
// are taken in the bot's timezone.
func parseRemindAt(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"} {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
