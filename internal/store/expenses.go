package store

import (
	"context"
	"database/sql"
	"time"
)

// Expense is a one-off spend entry.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseUpdate carries optional new values; nil fields keep the current value.
type ExpenseUpdate struct {
	Amount      *float64
	Description *string
	Category    *string
}

// CategoryTotal aggregates spend for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// AddExpense inserts an expense and returns its id.
func (s *Store) AddExpense(ctx context.Context, userID int64, amount float64, description, category string, at time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, description, category, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, amount, description, category, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentExpenses returns the user's last N expenses, newest first.
func (s *Store) RecentExpenses(ctx context.Context, userID int64, limit int) ([]Expense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, amount, description, category, created_at
		 FROM expenses WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

// ExpensesBetween returns expenses with from <= created_at < to, oldest first.
func (s *Store) ExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]Expense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, amount, description, category, created_at
		 FROM expenses WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at ASC, id ASC`,
		userID, from, to)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

// ExpensesByCategory returns the user's expenses in one category, newest first.
func (s *Store) ExpensesByCategory(ctx context.Context, userID int64, category string) ([]Expense, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, amount, description, category, created_at
		 FROM expenses WHERE user_id = ? AND category = ? ORDER BY created_at DESC, id DESC`,
		userID, category)
	if err != nil {
		return nil, err
	}
	return scanExpenses(rows)
}

// UpdateExpense applies the non-nil fields of upd to the user's expense.
// Returns false when the expense does not exist or belongs to someone else.
func (s *Store) UpdateExpense(ctx context.Context, userID, id int64, upd ExpenseUpdate) (bool, error) {
	set := ""
	var args []any
	if upd.Amount != nil {
		set += "amount = ?, "
		args = append(args, *upd.Amount)
	}
	if upd.Description != nil {
		set += "description = ?, "
		args = append(args, *upd.Description)
	}
	if upd.Category != nil {
		set += "category = ?, "
		args = append(args, *upd.Category)
	}
	if set == "" {
		return false, nil
	}
	set = set[:len(set)-2]
	args = append(args, id, userID)
	res, err := s.ExecContext(ctx, "UPDATE expenses SET "+set+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteExpense removes the user's expense. Returns false when nothing matched.
func (s *Store) DeleteExpense(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CategoryTotals aggregates spend per category within [from, to), biggest first.
func (s *Store) CategoryTotals(ctx context.Context, userID int64, from, to time.Time) ([]CategoryTotal, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT category, SUM(amount), COUNT(*)
		 FROM expenses WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 GROUP BY category ORDER BY SUM(amount) DESC`,
		userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// TotalBetween sums the user's spend within [from, to).
func (s *Store) TotalBetween(ctx context.Context, userID int64, from, to time.Time) (float64, error) {
	var total float64
	err := s.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?`,
		userID, from, to).Scan(&total)
	return total, err
}

func scanExpenses(rows *sql.Rows) ([]Expense, error) {
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Category, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
