package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, group_id, description, amount, currency, payer_id, split_strategy,
	category, notes, receipt_url, expense_date, active, created_by, created_at, updated_at`

// Filters over the expenses table, aliased e.
const (
	groupExpenses = "e.group_id = ? AND e.active = 1"
	userExpenses  = "e.active = 1 AND (e.payer_id = ? OR e.id IN (SELECT expense_id FROM shares WHERE user_id = ?))"
)

// CreateExpense persists a new expense and its shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}
	expense.Active = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.Currency,
		expense.PayerID, string(expense.Strategy), expense.Category, expense.Notes, expense.ReceiptURL,
		expense.Date, expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ReplaceExpense updates an active expense and swaps in its new share set.
func (s *SQLiteStore) ReplaceExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount = ?, currency = ?, payer_id = ?, split_strategy = ?,
		     category = ?, notes = ?, receipt_url = ?, expense_date = ?, updated_at = ?
		 WHERE id = ? AND active = 1`,
		expense.Description, expense.Amount, expense.Currency, expense.PayerID, string(expense.Strategy),
		expense.Category, expense.Notes, expense.ReceiptURL, expense.Date, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, amount, percentage, settled
		 FROM shares WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	shares, err := scanShares(rows)
	if err != nil {
		return nil, err
	}
	expense.Shares = shares[expenseID]

	return expense, nil
}

// DeactivateExpense soft-deletes an expense.
func (s *SQLiteStore) DeactivateExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET active = 0, updated_at = ? WHERE id = ? AND active = 1",
		time.Now().Unix(), expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// ListExpensesByGroup retrieves all active expenses of a group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return listExpenses(ctx, s.db, groupExpenses, groupID)
}

// ListExpensesByUser retrieves the active expenses, across all groups, that
// the user paid or has a share in.
func (s *SQLiteStore) ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	return listExpenses(ctx, s.db, userExpenses, userID, userID)
}

// listExpenses loads the expenses matching where, newest first, then
// attaches their shares with a second query over the same filter.
func listExpenses(ctx context.Context, q queryer, where string, args ...any) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE `+where+`
		 ORDER BY e.expense_date DESC, e.created_at DESC, e.rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	shareRows, err := q.QueryContext(ctx,
		`SELECT s.expense_id, s.user_id, s.amount, s.percentage, s.settled
		 FROM shares s JOIN expenses e ON e.id = s.expense_id
		 WHERE `+where+`
		 ORDER BY s.expense_id, s.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	shares, err := scanShares(shareRows)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].Shares = shares[expenses[i].ID]
	}

	return expenses, nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Shares {
		share := &expense.Shares[i]
		share.ExpenseID = expense.ID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO shares (expense_id, position, user_id, amount, percentage, settled)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			expense.ID, i, share.UserID, share.Amount, share.Percentage, share.Settled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var strategy string
	err := row.Scan(
		&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.Currency,
		&expense.PayerID, &strategy, &expense.Category, &expense.Notes, &expense.ReceiptURL,
		&expense.Date, &expense.Active, &expense.CreatedBy,
		&expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Strategy = models.SplitStrategy(strategy)
	return expense, nil
}

// scanShares drains and closes rows, grouping shares by expense ID in row order.
func scanShares(rows *sql.Rows) (map[string][]models.Share, error) {
	defer rows.Close()

	shares := make(map[string][]models.Share)
	for rows.Next() {
		var share models.Share
		if err := rows.Scan(&share.ExpenseID, &share.UserID, &share.Amount, &share.Percentage, &share.Settled); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares[share.ExpenseID] = append(shares[share.ExpenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}
