package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a row lookup matches nothing for the user.
var ErrNotFound = errors.New("not found")

// RecurringExpense is a monthly bill (rent, internet, subscriptions).
type RecurringExpense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	DayOfMonth  int       `json:"day_of_month"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecurringUpdate carries optional new values; nil fields keep the current value.
type RecurringUpdate struct {
	Description *string
	Amount      *float64
	Category    *string
	DayOfMonth  *int
}

// Payment records that a bill was paid for a given month.
type Payment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	RecurringID int64     `json:"recurring_expense_id"`
	Amount      float64   `json:"amount"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	PaidAt      time.Time `json:"paid_at"`
}

// AddRecurring inserts a monthly bill and returns its id.
func (s *Store) AddRecurring(ctx context.Context, userID int64, description string, amount float64, category string, dayOfMonth int, at time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`INSERT INTO recurring_expenses (user_id, description, amount, category, day_of_month, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, description, amount, category, dayOfMonth, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRecurring returns the user's active bills ordered by due day.
func (s *Store) ListRecurring(ctx context.Context, userID int64) ([]RecurringExpense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, description, amount, category, day_of_month, active, created_at
		 FROM recurring_expenses WHERE user_id = ? AND active = 1
		 ORDER BY day_of_month ASC, id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	return scanRecurring(rows)
}

// GetRecurring returns one active bill by id.
func (s *Store) GetRecurring(ctx context.Context, userID, id int64) (*RecurringExpense, error) {
	row := s.QueryRowContext(ctx,
		`SELECT id, user_id, description, amount, category, day_of_month, active, created_at
		 FROM recurring_expenses WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	var r RecurringExpense
	err := row.Scan(&r.ID, &r.UserID, &r.Description, &r.Amount, &r.Category, &r.DayOfMonth, &r.Active, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRecurring applies the non-nil fields of upd to the user's bill.
func (s *Store) UpdateRecurring(ctx context.Context, userID, id int64, upd RecurringUpdate) (bool, error) {
	set := ""
	var args []any
	if upd.Description != nil {
		set += "description = ?, "
		args = append(args, *upd.Description)
	}
	if upd.Amount != nil {
		set += "amount = ?, "
		args = append(args, *upd.Amount)
	}
	if upd.Category != nil {
		set += "category = ?, "
		args = append(args, *upd.Category)
	}
	if upd.DayOfMonth != nil {
		set += "day_of_month = ?, "
		args = append(args, *upd.DayOfMonth)
	}
	if set == "" {
		return false, nil
	}
	set = set[:len(set)-2]
	args = append(args, id, userID)
	res, err := s.ExecContext(ctx,
		"UPDATE recurring_expenses SET "+set+" WHERE id = ? AND user_id = ? AND active = 1", args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeactivateRecurring hides a bill without losing its payment history.
func (s *Store) DeactivateRecurring(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.ExecContext(ctx,
		`UPDATE recurring_expenses SET active = 0 WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// FindRecurringByName matches active bills whose description contains the
// query, case-insensitive. Ties resolve to the lowest id. Returns
// ErrNotFound when nothing matches.
func (s *Store) FindRecurringByName(ctx context.Context, userID int64, query string) (*RecurringExpense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, description, amount, category, day_of_month, active, created_at
		 FROM recurring_expenses WHERE user_id = ? AND active = 1 ORDER BY id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	bills, err := scanRecurring(rows)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for i := range bills {
		if strings.Contains(strings.ToLower(bills[i].Description), q) {
			return &bills[i], nil
		}
	}
	return nil, ErrNotFound
}

// MarkPaid records a payment for the bill in the given month. Returns
// already=true without modifying anything when the month is already paid.
func (s *Store) MarkPaid(ctx context.Context, userID, recurringID int64, month, year int, at time.Time) (already bool, err error) {
	bill, err := s.GetRecurring(ctx, userID, recurringID)
	if err != nil {
		return false, err
	}
	var existing int64
	err = s.QueryRowContext(ctx,
		`SELECT id FROM payments WHERE user_id = ? AND recurring_expense_id = ? AND month = ? AND year = ?`,
		userID, recurringID, month, year).Scan(&existing)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	_, err = s.ExecContext(ctx,
		`INSERT INTO payments (user_id, recurring_expense_id, amount, month, year, paid_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		userID, recurringID, bill.Amount, month, year, at)
	return false, err
}

// UnmarkPaid removes the payment record for the bill in the given month.
// Returns false when there was nothing to remove.
func (s *Store) UnmarkPaid(ctx context.Context, userID, recurringID int64, month, year int) (bool, error) {
	res, err := s.ExecContext(ctx,
		`DELETE FROM payments WHERE user_id = ? AND recurring_expense_id = ? AND month = ? AND year = ?`,
		userID, recurringID, month, year)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// PaidBills returns the user's active bills already paid in the given month.
func (s *Store) PaidBills(ctx context.Context, userID int64, month, year int) ([]RecurringExpense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.description, r.amount, r.category, r.day_of_month, r.active, r.created_at
		 FROM recurring_expenses r
		 JOIN payments p ON p.recurring_expense_id = r.id AND p.user_id = r.user_id
		 WHERE r.user_id = ? AND r.active = 1 AND p.month = ? AND p.year = ?
		 ORDER BY r.day_of_month ASC, r.id ASC`,
		userID, month, year)
	if err != nil {
		return nil, err
	}
	return scanRecurring(rows)
}

// PendingBills returns the user's active bills not yet paid in the given month.
func (s *Store) PendingBills(ctx context.Context, userID int64, month, year int) ([]RecurringExpense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, description, amount, category, day_of_month, active, created_at
		 FROM recurring_expenses
		 WHERE user_id = ? AND active = 1 AND id NOT IN (
		     SELECT recurring_expense_id FROM payments WHERE user_id = ? AND month = ? AND year = ?)
		 ORDER BY day_of_month ASC, id ASC`,
		userID, userID, month, year)
	if err != nil {
		return nil, err
	}
	return scanRecurring(rows)
}

// PendingBillsAllUsers returns every user's unpaid active bills for the
// given month. Used by the reminder scheduler.
func (s *Store) PendingBillsAllUsers(ctx context.Context, month, year int) ([]RecurringExpense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT r.id, r.user_id, r.description, r.amount, r.category, r.day_of_month, r.active, r.created_at
		 FROM recurring_expenses r
		 WHERE r.active = 1 AND NOT EXISTS (
		     SELECT 1 FROM payments p
		     WHERE p.user_id = r.user_id AND p.recurring_expense_id = r.id AND p.month = ? AND p.year = ?)
		 ORDER BY r.user_id ASC, r.day_of_month ASC`,
		month, year)
	if err != nil {
		return nil, err
	}
	return scanRecurring(rows)
}

func scanRecurring(rows *sql.Rows) ([]RecurringExpense, error) {
	defer rows.Close()
	var out []RecurringExpense
	for rows.Next() {
		var r RecurringExpense
		if err := rows.Scan(&r.ID, &r.UserID, &r.Description, &r.Amount, &r.Category, &r.DayOfMonth, &r.Active, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
