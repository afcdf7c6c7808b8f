package store

import (
	"context"
	"database/sql"
	"time"
)

// Income types.
const (
	IncomeSalary = "salary"
	IncomeExtra  = "extra"
)

// Income is money coming in: the fixed monthly salary or an extra.
type Income struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncomeUpdate carries optional new values; nil fields keep the current value.
type IncomeUpdate struct {
	Amount      *float64
	Description *string
}

// SetSalary upserts the fixed salary for the given month. Returns true when
// an existing salary row was replaced.
func (s *Store) SetSalary(ctx context.Context, userID int64, amount float64, month, year int, at time.Time) (bool, error) {
	res, err := s.ExecContext(ctx,
		`UPDATE incomes SET amount = ?, created_at = ?
		 WHERE user_id = ? AND type = ? AND month = ? AND year = ?`,
		amount, at, userID, IncomeSalary, month, year)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n > 0 {
		return true, nil
	}
	_, err = s.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount, type, description, month, year, created_at)
		 VALUES (?, ?, ?, 'Salario fijo', ?, ?, ?)`,
		userID, amount, IncomeSalary, month, year, at)
	return false, err
}

// AddExtraIncome inserts an extra income for the given month and returns its id.
func (s *Store) AddExtraIncome(ctx context.Context, userID int64, amount float64, description string, month, year int, at time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`INSERT INTO incomes (user_id, amount, type, description, month, year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, amount, IncomeExtra, description, month, year, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IncomesByMonth returns all of the user's incomes for the month, salary first.
func (s *Store) IncomesByMonth(ctx context.Context, userID int64, month, year int) ([]Income, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, amount, type, description, month, year, created_at
		 FROM incomes WHERE user_id = ? AND month = ? AND year = ?
		 ORDER BY CASE type WHEN 'salary' THEN 0 ELSE 1 END, id ASC`,
		userID, month, year)
	if err != nil {
		return nil, err
	}
	return scanIncomes(rows)
}

// UpdateIncome applies the non-nil fields of upd to the user's income row.
func (s *Store) UpdateIncome(ctx context.Context, userID, id int64, upd IncomeUpdate) (bool, error) {
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
	if set == "" {
		return false, nil
	}
	set = set[:len(set)-2]
	args = append(args, id, userID)
	res, err := s.ExecContext(ctx, "UPDATE incomes SET "+set+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteIncome removes the user's income row. Returns false when nothing matched.
func (s *Store) DeleteIncome(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// TotalIncome sums the user's income for the month.
func (s *Store) TotalIncome(ctx context.Context, userID int64, month, year int) (float64, error) {
	var total float64
	err := s.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = ? AND month = ? AND year = ?`,
		userID, month, year).Scan(&total)
	return total, err
}

func scanIncomes(rows *sql.Rows) ([]Income, error) {
	defer rows.Close()
	var out []Income
	for rows.Next() {
		var in Income
		if err := rows.Scan(&in.ID, &in.UserID, &in.Amount, &in.Type, &in.Description, &in.Month, &in.Year, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
