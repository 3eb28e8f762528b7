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

const settlementColumns = `id, group_id, payer_id, payee_id, amount, currency, status,
	payment_method, transaction_ref, note, created_by, created_at, updated_at, settled_at`

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	settlement.UpdatedAt = settlement.CreatedAt
	if settlement.Status == models.SettlementCompleted && settlement.SettledAt == 0 {
		settlement.SettledAt = settlement.CreatedAt
	}

	var settledAt any
	if settlement.SettledAt != 0 {
		settledAt = settlement.SettledAt
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.PayerID, settlement.PayeeID,
		settlement.Amount, settlement.Currency, string(settlement.Status),
		nullString(settlement.PaymentMethod), nullString(settlement.TransactionRef), nullString(settlement.Note),
		settlement.CreatedBy, settlement.CreatedAt, settlement.UpdatedAt, settledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return getSettlement(ctx, s.db, settlementID)
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return listSettlements(ctx, s.db, "group_id = ?", groupID)
}

// ListSettlementsByUser retrieves all settlements a user paid or received.
func (s *SQLiteStore) ListSettlementsByUser(ctx context.Context, userID string) ([]models.Settlement, error) {
	return listSettlements(ctx, s.db, "payer_id = ? OR payee_id = ?", userID, userID)
}

// TransitionSettlement moves a settlement between statuses with a
// compare-and-set on the current status, so two concurrent completions
// cannot both succeed.
func (s *SQLiteStore) TransitionSettlement(ctx context.Context, settlementID string, from, to models.SettlementStatus) (*models.Settlement, error) {
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("invalid settlement transition %s -> %s", from, to)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	var settledAt any
	if to == models.SettlementCompleted {
		settledAt = now
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE settlements SET status = ?, updated_at = ?, settled_at = COALESCE(?, settled_at)
		 WHERE id = ? AND status = ?`,
		string(to), now, settledAt, settlementID, string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check updated rows: %w", err)
	}

	current, err := getSettlement(ctx, tx, settlementID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("settlement %s is %s, not %s: %w", settlementID, current.Status, from, storage.ErrStatusConflict)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return current, nil
}

func getSettlement(ctx context.Context, q queryer, settlementID string) (*models.Settlement, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// listSettlements returns the settlements matching where, newest first.
func listSettlements(ctx context.Context, q queryer, where string, args ...any) ([]models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE "+where+" ORDER BY created_at DESC, rowid DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status string
	var paymentMethod, transactionRef, note sql.NullString
	var settledAt sql.NullInt64

	err := row.Scan(
		&settlement.ID, &settlement.GroupID, &settlement.PayerID, &settlement.PayeeID,
		&settlement.Amount, &settlement.Currency, &status,
		&paymentMethod, &transactionRef, &note,
		&settlement.CreatedBy, &settlement.CreatedAt, &settlement.UpdatedAt, &settledAt,
	)
	if err != nil {
		return nil, err
	}

	settlement.Status = models.SettlementStatus(status)
	settlement.PaymentMethod = paymentMethod.String
	settlement.TransactionRef = transactionRef.String
	settlement.Note = note.String
	settlement.SettledAt = settledAt.Int64
	return settlement, nil
}
