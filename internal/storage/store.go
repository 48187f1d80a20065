// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/billyapp/billy/internal/models"
)

// Store defines the interface for profile and expense storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateProfile persists a new profile and populates its ID.
	CreateProfile(ctx context.Context, profile *models.Profile) error

	// GetProfile retrieves a profile by its ID.
	// Returns an error if the profile is not found.
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)

	// CreateExpense persists a new shared expense and its shares.
	// The expense.ID field will be populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves one expense scoped to a profile.
	GetExpense(ctx context.Context, profileID, expenseID string) (*models.Expense, error)

	// ListExpensesByProfile retrieves all expenses of a profile ordered by
	// creation time, with shares in insertion order.
	ListExpensesByProfile(ctx context.Context, profileID string) ([]*models.Expense, error)

	// DeleteExpense removes one expense and its shares.
	// Returns an error if the expense is not found in the profile.
	DeleteExpense(ctx context.Context, profileID, expenseID string) error

	// SetSharePaid flips one participant's paid flag on one expense. It is the
	// only settlement mutation and never touches amounts or shares.
	// Returns an error if the expense or participant is not found.
	SetSharePaid(ctx context.Context, profileID, expenseID, participant string, paid bool) error

	// ReplaceOutstanding commits a redistribution: in a single transaction it
	// marks every outstanding share of the profile as paid and inserts the
	// given adjustment expenses as the new netted ground truth.
	ReplaceOutstanding(ctx context.Context, profileID string, adjustments []*models.Expense) error

	// Close releases any resources held by the store.
	Close() error
}
