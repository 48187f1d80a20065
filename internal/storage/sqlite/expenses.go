package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billyapp/billy/internal/models"
)

// CreateExpense persists a new shared expense and its shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := expense.Validate(); err != nil {
		return err
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Kind == "" {
		expense.Kind = models.KindExpense
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertExpense writes one expense and its shares inside an open transaction.
func insertExpense(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (id, profile_id, description, amount, paid_by, kind, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.ProfileID, expense.Description, expense.Amount,
		expense.PaidBy, expense.Kind, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, participant := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, participant, to_pay, has_paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, participant, expense.ToPay[i], expense.HasPaid[i], i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves one expense scoped to a profile, with shares in
// insertion order. Expense row and shares are read in one transaction so the
// result is a single consistent snapshot.
func (s *SQLiteStore) GetExpense(ctx context.Context, profileID, expenseID string) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	expense := &models.Expense{}
	err = tx.QueryRowContext(ctx,
		"SELECT id, profile_id, description, amount, paid_by, kind, created_at FROM expenses WHERE id = ? AND profile_id = ?",
		expenseID, profileID,
	).Scan(&expense.ID, &expense.ProfileID, &expense.Description, &expense.Amount,
		&expense.PaidBy, &expense.Kind, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense not found: %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := loadShares(ctx, tx, expense); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expense, nil
}

// ListExpensesByProfile retrieves all expenses of a profile ordered by
// creation time. The expense list and every share row are read inside one
// transaction; a redistribution committing concurrently is either fully
// visible or not at all, never half-applied.
func (s *SQLiteStore) ListExpensesByProfile(ctx context.Context, profileID string) ([]*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, profile_id, description, amount, paid_by, kind, created_at FROM expenses WHERE profile_id = ? ORDER BY created_at, id",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.ProfileID, &expense.Description, &expense.Amount,
			&expense.PaidBy, &expense.Kind, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	for _, expense := range expenses {
		if err := loadShares(ctx, tx, expense); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return expenses, nil
}

// querier is the part of sql.DB/sql.Tx that loadShares needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// loadShares fills the parallel Participants/ToPay/HasPaid slices.
func loadShares(ctx context.Context, q querier, expense *models.Expense) error {
	rows, err := q.QueryContext(ctx,
		"SELECT participant, to_pay, has_paid FROM expense_shares WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var participant string
		var toPay float64
		var hasPaid bool
		if err := rows.Scan(&participant, &toPay, &hasPaid); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		expense.Participants = append(expense.Participants, participant)
		expense.ToPay = append(expense.ToPay, toPay)
		expense.HasPaid = append(expense.HasPaid, hasPaid)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return nil
}

// DeleteExpense removes one expense; shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, profileID, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND profile_id = ?",
		expenseID, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}

// SetSharePaid flips one participant's paid flag on one expense.
func (s *SQLiteStore) SetSharePaid(ctx context.Context, profileID, expenseID, participant string, paid bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expense_shares SET has_paid = ?
		 WHERE expense_id = ? AND participant = ?
		   AND expense_id IN (SELECT id FROM expenses WHERE profile_id = ?)`,
		paid, expenseID, participant, profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("share not found: expense %s participant %s", expenseID, participant)
	}
	return nil
}

// ReplaceOutstanding commits a redistribution in one transaction: every
// outstanding share of the profile is marked paid, then the netted
// adjustment expenses become the only open obligations.
func (s *SQLiteStore) ReplaceOutstanding(ctx context.Context, profileID string, adjustments []*models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE expense_shares SET has_paid = 1
		 WHERE has_paid = 0
		   AND expense_id IN (SELECT id FROM expenses WHERE profile_id = ?)`,
		profileID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle outstanding shares: %w", err)
	}

	now := time.Now().Unix()
	for _, adjustment := range adjustments {
		if err := adjustment.Validate(); err != nil {
			return err
		}
		if adjustment.ID == "" {
			adjustment.ID = uuid.New().String()
		}
		if adjustment.CreatedAt == 0 {
			adjustment.CreatedAt = now
		}
		adjustment.ProfileID = profileID
		adjustment.Kind = models.KindAdjustment
		if err := insertExpense(ctx, tx, adjustment); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
