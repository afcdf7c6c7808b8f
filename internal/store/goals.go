package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	Deadline      string    `json:"deadline,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// GoalUpdate carries optional new values; nil fields keep the current value.
type GoalUpdate struct {
	Name         *string
	TargetAmount *float64
	Deadline     *string
}

// AddGoal inserts a savings goal and returns its id.
func (s *Store) AddGoal(ctx context.Context, userID int64, name string, target float64, deadline string, at time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, name, target_amount, deadline, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, name, target, deadline, at)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGoals returns the user's active goals, oldest first.
func (s *Store) ListGoals(ctx context.Context, userID int64) ([]SavingsGoal, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, COALESCE(deadline, ''), active, created_at
		 FROM savings_goals WHERE user_id = ? AND active = 1 ORDER BY id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SavingsGoal
	for rows.Next() {
		var g SavingsGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.Active, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// FindGoalByName matches active goals whose name contains the query,
// case-insensitive. Ties resolve to the lowest id. Returns ErrNotFound when
// nothing matches.
func (s *Store) FindGoalByName(ctx context.Context, userID int64, query string) (*SavingsGoal, error) {
	goals, err := s.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	for i := range goals {
		if strings.Contains(strings.ToLower(goals[i].Name), q) {
			return &goals[i], nil
		}
	}
	return nil, ErrNotFound
}

// UpdateGoal applies the non-nil fields of upd to the user's goal.
func (s *Store) UpdateGoal(ctx context.Context, userID, id int64, upd GoalUpdate) (bool, error) {
	set := ""
	var args []any
	if upd.Name != nil {
		set += "name = ?, "
		args = append(args, *upd.Name)
	}
	if upd.TargetAmount != nil {
		set += "target_amount = ?, "
		args = append(args, *upd.TargetAmount)
	}
	if upd.Deadline != nil {
		set += "deadline = ?, "
		args = append(args, *upd.Deadline)
	}
	if set == "" {
		return false, nil
	}
	set = set[:len(set)-2]
	args = append(args, id, userID)
	res, err := s.ExecContext(ctx,
		"UPDATE savings_goals SET "+set+" WHERE id = ? AND user_id = ? AND active = 1", args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeactivateGoal hides a goal without losing its contribution history.
func (s *Store) DeactivateGoal(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.ExecContext(ctx,
		`UPDATE savings_goals SET active = 0 WHERE id = ? AND user_id = ? AND active = 1`,
		id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AddContribution records a deposit toward a goal and bumps its saved
// amount. Returns the goal's new total.
func (s *Store) AddContribution(ctx context.Context, userID, goalID int64, amount float64, description string, at time.Time) (float64, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = current_amount + ?
		 WHERE id = ? AND user_id = ? AND active = 1`,
		amount, goalID, userID)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO savings_contributions (user_id, goal_id, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, goalID, amount, description, at); err != nil {
		return 0, err
	}
	var total float64
	err = tx.QueryRowContext(ctx,
		`SELECT current_amount FROM savings_goals WHERE id = ?`, goalID).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit contribution: %w", err)
	}
	return total, nil
}
