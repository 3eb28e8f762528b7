package models

// Ledger is a consistent snapshot of balance inputs: the active expenses
// (with shares) and settlements of one group, or of one user across groups
// when GroupID is empty.
type Ledger struct {
	GroupID     string
	Expenses    []Expense
	Settlements []Settlement
}

// ActivityType identifies what happened in an activity-feed entry.
type ActivityType string

const (
	ActivityExpenseAdded        ActivityType = "EXPENSE_ADDED"
	ActivityExpenseUpdated      ActivityType = "EXPENSE_UPDATED"
	ActivityExpenseDeleted      ActivityType = "EXPENSE_DELETED"
	ActivityPaymentRecorded     ActivityType = "PAYMENT_RECORDED"
	ActivitySettlementCompleted ActivityType = "SETTLEMENT_COMPLETED"
	ActivitySettlementCancelled ActivityType = "SETTLEMENT_CANCELLED"
)

// Activity is a persisted activity-feed entry.
type Activity struct {
	ID           string
	Type         ActivityType
	GroupID      string
	ActorID      string
	TargetUserID string
	Description  string
	CreatedAt    int64
}
