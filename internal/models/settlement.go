package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementCancelled SettlementStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementPending, SettlementCompleted, SettlementCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a settlement in status s may move to next.
// Only PENDING settlements transition, and only once.
func (s SettlementStatus) CanTransitionTo(next SettlementStatus) bool {
	return s == SettlementPending && (next == SettlementCompleted || next == SettlementCancelled)
}

// Settlement represents a payment between group members to clear debts.
// Only COMPLETED settlements affect balances.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// PayerID is the user who paid (debtor settling up).
	PayerID string

	// PayeeID is the user who received payment (creditor being paid).
	PayeeID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code of Amount.
	Currency string

	// Status is PENDING, COMPLETED or CANCELLED.
	Status SettlementStatus

	// PaymentMethod is a free-form label such as CASH or BANK_TRANSFER.
	PaymentMethod string

	// TransactionRef is an external payment reference, if any.
	TransactionRef string

	// Note is an optional description for the settlement.
	Note string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt, UpdatedAt and SettledAt are Unix timestamps.
	// SettledAt is zero until the settlement is COMPLETED.
	CreatedAt int64
	UpdatedAt int64
	SettledAt int64
}
