package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// InvalidSplitError reports malformed or inconsistent split parameters.
// It is always a client input error and is never retried.
type InvalidSplitError struct {
	Strategy models.SplitStrategy
	Reason   string

	// Sum and Expected are set for sum mismatches.
	Sum      decimal.NullDecimal
	Expected decimal.NullDecimal
}

func (e *InvalidSplitError) Error() string {
	var b strings.Builder
	b.WriteString("invalid split")
	if e.Strategy != "" {
		fmt.Fprintf(&b, " (%s)", e.Strategy)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Sum.Valid && e.Expected.Valid {
		fmt.Fprintf(&b, ": got %s, want %s", e.Sum.Decimal.String(), e.Expected.Decimal.String())
	}
	return b.String()
}

func invalidSplit(strategy models.SplitStrategy, format string, args ...any) *InvalidSplitError {
	return &InvalidSplitError{Strategy: strategy, Reason: fmt.Sprintf(format, args...)}
}

func sumMismatch(strategy models.SplitStrategy, reason string, sum, expected decimal.Decimal) *InvalidSplitError {
	return &InvalidSplitError{
		Strategy: strategy,
		Reason:   reason,
		Sum:      decimal.NewNullDecimal(sum),
		Expected: decimal.NewNullDecimal(expected),
	}
}

// InconsistentLedgerError reports balances that do not sum to zero.
// It indicates upstream data corruption; callers must abort and alert
// rather than act on a partial result.
type InconsistentLedgerError struct {
	CreditTotal decimal.Decimal
	DebitTotal  decimal.Decimal

	// Unmatched lists users left with a non-zero remainder after matching,
	// or users whose balance is finer than the currency's minor unit.
	Unmatched []string

	// Reason is set when the totals balance but the amounts cannot be paid.
	Reason string
}

func (e *InconsistentLedgerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("inconsistent ledger: %s (unmatched: %s)", e.Reason, strings.Join(e.Unmatched, ", "))
	}
	return fmt.Sprintf("inconsistent ledger: credits %s != debits %s (unmatched: %s)",
		e.CreditTotal.String(), e.DebitTotal.String(), strings.Join(e.Unmatched, ", "))
}
