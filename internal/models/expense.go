package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitStrategy selects how an expense amount is divided among participants.
type SplitStrategy string

const (
	// SplitEqual divides the amount evenly; the last participant absorbs rounding.
	SplitEqual SplitStrategy = "EQUAL"
	// SplitExact assigns caller-provided amounts that must sum to the total.
	SplitExact SplitStrategy = "EXACT"
	// SplitPercentage assigns caller-provided percentages that must sum to 100.
	SplitPercentage SplitStrategy = "PERCENTAGE"
)

// Valid reports whether s is one of the known strategies.
func (s SplitStrategy) Valid() bool {
	switch s {
	case SplitEqual, SplitExact, SplitPercentage:
		return true
	}
	return false
}

// ParseSplitStrategy converts a case-insensitive name into a SplitStrategy.
func ParseSplitStrategy(name string) (SplitStrategy, error) {
	s := SplitStrategy(strings.ToUpper(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown split strategy: %q", name)
	}
	return s, nil
}

// Expense represents a shared expense recorded in a group.
// Expenses are soft-deleted: Active=false removes them from every balance.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Dinner", "Taxi").
	Description string

	// Amount is the gross amount paid by PayerID.
	Amount decimal.Decimal

	// Currency is the ISO 4217 code of Amount.
	Currency string

	// PayerID is the user who paid the full amount.
	PayerID string

	// Strategy is the split strategy used to compute Shares.
	Strategy SplitStrategy

	// Category is a free-form label such as FOOD or TRANSPORT.
	Category string

	// Notes and ReceiptURL are optional annotations.
	Notes      string
	ReceiptURL string

	// Date is when the expense happened (Unix seconds). It defaults to
	// CreatedAt and orders expense lists.
	Date int64

	// Active is false once the expense has been deleted.
	Active bool

	// CreatedBy is the user who recorded the expense.
	CreatedBy string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64

	// Shares are owned exclusively by this expense, in split order.
	Shares []Share
}

// Share is one participant's portion of an expense.
type Share struct {
	// ExpenseID references the owning expense.
	ExpenseID string

	// UserID is the participant.
	UserID string

	// Amount is this participant's portion.
	Amount decimal.Decimal

	// Percentage is set only for PERCENTAGE splits.
	Percentage decimal.NullDecimal

	// Settled is true for the payer's own portion, which is pre-paid.
	Settled bool
}

// Settled reports whether every share has been settled. A settled expense
// no longer changes anyone's debts and is immutable.
func (e *Expense) Settled() bool {
	for _, s := range e.Shares {
		if !s.Settled {
			return false
		}
	}
	return len(e.Shares) > 0
}

// ShareTotal returns the sum of all share amounts.
func (e *Expense) ShareTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Shares {
		total = total.Add(s.Amount)
	}
	return total
}
