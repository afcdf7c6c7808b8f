package store

import (
	"context"
	"time"
)

// Reminder is a one-shot scheduled message.
type Reminder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	RemindAt  time.Time `json:"remind_at"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}

// AddReminder inserts a reminder and returns its id.
func (s *Store) AddReminder(ctx context.Context, userID int64, message string, remindAt, at time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`INSERT INTO reminders (user_id, message, remind_at, created_at) VALUES (?, ?, ?, ?)`,
		userID, message, remindAt, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DueReminders returns unsent reminders across all users whose time has come.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, message, remind_at, sent, created_at
		 FROM reminders WHERE sent = 0 AND remind_at <= ? ORDER BY remind_at ASC`,
		now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Message, &r.RemindAt, &r.Sent, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReminder removes a reminder once delivered.
func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	_, err := s.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	return err
}
