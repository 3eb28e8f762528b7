// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict is returned when a settlement is no longer in the
	// status a transition expected, e.g. it was already completed.
	ErrStatusConflict = errors.New("settlement status changed concurrently")
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ExpenseStore
	SettlementStore
	ActivityStore

	// GroupLedger returns the active expenses (with shares) and all
	// settlements of a group, read in a single transaction so the two lists
	// are mutually consistent.
	GroupLedger(ctx context.Context, groupID string) (*models.Ledger, error)

	// UserLedger returns, in one transaction, the active expenses the user
	// paid or shares in and the settlements the user is party to, across
	// all groups.
	UserLedger(ctx context.Context, userID string) (*models.Ledger, error)

	// Close releases any resources held by the store.
	Close() error
}

// ExpenseStore persists expenses together with their share sets.
type ExpenseStore interface {
	// CreateExpense persists a new expense and its shares atomically.
	// ID and timestamps are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ReplaceExpense overwrites an active expense's fields and replaces its
	// full share set in one transaction.
	// Returns ErrNotFound if the expense does not exist or is deleted.
	ReplaceExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its shares, active or not.
	// Returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// DeactivateExpense soft-deletes an expense.
	// Returns ErrNotFound if the expense does not exist or is already deleted.
	DeactivateExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns the active expenses of a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListExpensesByUser returns the active expenses, across all groups,
	// that the user paid or has a share in, newest first.
	ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error)
}

// SettlementStore persists settlements and their status transitions.
type SettlementStore interface {
	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	// Returns ErrNotFound if the settlement does not exist.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlementsByGroup returns a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// ListSettlementsByUser returns settlements where the user is payer or
	// payee, newest first.
	ListSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error)

	// TransitionSettlement moves a settlement from one status to another
	// only if it is still in status from, and returns the updated record.
	// Returns ErrNotFound if it does not exist and ErrStatusConflict if its
	// current status is not from.
	TransitionSettlement(ctx context.Context, settlementID string, from, to models.SettlementStatus) (*models.Settlement, error)
}

// ActivityStore persists activity-feed entries.
type ActivityStore interface {
	// CreateActivity appends an activity entry.
	CreateActivity(ctx context.Context, activity *models.Activity) error

	// ListActivitiesByGroup returns up to limit entries of a group, newest first.
	ListActivitiesByGroup(ctx context.Context, groupID string, limit int) ([]models.Activity, error)
}
