// Package ledgerv1 defines the splitledger.v1 wire messages.
//
// Messages are plain structs carried as JSON by the codec in
// ledgerv1connect. Money is always a decimal string ("33.34"), never a
// JSON number, so amounts survive any client exactly.
package ledgerv1

// Split strategies accepted in Strategy fields.
const (
	StrategyEqual      = "EQUAL"
	StrategyExact      = "EXACT"
	StrategyPercentage = "PERCENTAGE"
)

// Settlement statuses returned in Settlement.Status.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Allocation assigns a strategy-specific value (amount or percentage) to a user.
type Allocation struct {
	UserID string `json:"user_id"`
	Value  string `json:"value"`
}

// Share is one participant's portion of an expense.
type Share struct {
	UserID     string `json:"user_id"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage,omitempty"`
	Settled    bool   `json:"settled"`
}

// Expense is a shared expense with its shares.
type Expense struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Currency    string   `json:"currency"`
	PayerID     string   `json:"payer_id"`
	Strategy    string   `json:"strategy"`
	Category    string   `json:"category,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	ReceiptURL  string   `json:"receipt_url,omitempty"`
	Date        int64    `json:"date"`
	Active      bool     `json:"active"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	Shares      []*Share `json:"shares"`
}

// Balance is a user's signed amount. Positive = is owed money.
type Balance struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
}

// Debt is a net obligation between two users.
type Debt struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Amount     string `json:"amount"`
}

// Settlement is a recorded payment between two users.
type Settlement struct {
	ID             string `json:"id"`
	GroupID        string `json:"group_id"`
	PayerID        string `json:"payer_id"`
	PayeeID        string `json:"payee_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	Note           string `json:"note,omitempty"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
	SettledAt      int64  `json:"settled_at,omitempty"`
}

// Suggestion is a proposed payment from a debtor to a creditor.
type Suggestion struct {
	PayerID  string `json:"payer_id"`
	PayeeID  string `json:"payee_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Activity is an activity-feed entry.
type Activity struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	GroupID      string `json:"group_id"`
	ActorID      string `json:"actor_id"`
	TargetUserID string `json:"target_user_id,omitempty"`
	Description  string `json:"description"`
	CreatedAt    int64  `json:"created_at"`
}

// CreateExpenseRequest records a new expense. An empty Currency means the
// group's currency, or the server default for a group with no records yet.
// A zero Date means now.
type CreateExpenseRequest struct {
	GroupID        string        `json:"group_id"`
	Description    string        `json:"description"`
	Amount         string        `json:"amount"`
	Currency       string        `json:"currency,omitempty"`
	PayerID        string        `json:"payer_id"`
	Strategy       string        `json:"strategy"`
	ParticipantIDs []string      `json:"participant_ids,omitempty"`
	ExactAmounts   []*Allocation `json:"exact_amounts,omitempty"`
	Percentages    []*Allocation `json:"percentages,omitempty"`
	Category       string        `json:"category,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	ReceiptURL     string        `json:"receipt_url,omitempty"`
	Date           int64         `json:"date,omitempty"`
}

func (r *CreateExpenseRequest) GetGroupID() string { return r.GroupID }

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces every mutable field of an expense and
// recomputes its shares.
type UpdateExpenseRequest struct {
	ExpenseID      string        `json:"expense_id"`
	Description    string        `json:"description"`
	Amount         string        `json:"amount"`
	Currency       string        `json:"currency,omitempty"`
	PayerID        string        `json:"payer_id"`
	Strategy       string        `json:"strategy"`
	ParticipantIDs []string      `json:"participant_ids,omitempty"`
	ExactAmounts   []*Allocation `json:"exact_amounts,omitempty"`
	Percentages    []*Allocation `json:"percentages,omitempty"`
	Category       string        `json:"category,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	ReceiptURL     string        `json:"receipt_url,omitempty"`
	Date           int64         `json:"date,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
}

func (r *ListGroupExpensesRequest) GetGroupID() string { return r.GroupID }

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// ListUserExpensesRequest lists, across all groups, the active expenses a
// user paid for or has a share in. An empty UserID means the caller.
type ListUserExpensesRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type ListUserExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// PreviewSplitRequest computes shares without persisting anything.
type PreviewSplitRequest struct {
	Amount         string        `json:"amount"`
	Currency       string        `json:"currency,omitempty"`
	PayerID        string        `json:"payer_id"`
	Strategy       string        `json:"strategy"`
	ParticipantIDs []string      `json:"participant_ids,omitempty"`
	ExactAmounts   []*Allocation `json:"exact_amounts,omitempty"`
	Percentages    []*Allocation `json:"percentages,omitempty"`
}

type PreviewSplitResponse struct {
	Shares []*Share `json:"shares"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

func (r *GetGroupBalancesRequest) GetGroupID() string { return r.GroupID }

type GetGroupBalancesResponse struct {
	GroupID  string     `json:"group_id"`
	Currency string     `json:"currency"`
	Balances []*Balance `json:"balances"`
	Debts    []*Debt    `json:"debts"`
}

// GetUserBalanceRequest selects one user's balance. An empty GroupID folds
// every group the user takes part in; an empty UserID means the caller.
type GetUserBalanceRequest struct {
	GroupID string `json:"group_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

func (r *GetUserBalanceRequest) GetGroupID() string { return r.GroupID }

type GetUserBalanceResponse struct {
	UserID          string     `json:"user_id"`
	Currency        string     `json:"currency"`
	TotalOwed       string     `json:"total_owed"`
	TotalOwedToUser string     `json:"total_owed_to_user"`
	NetBalance      string     `json:"net_balance"`
	Counterparties  []*Balance `json:"counterparties"`
}

type ListGroupActivityRequest struct {
	GroupID string `json:"group_id"`
	Limit   int32  `json:"limit,omitempty"`
}

func (r *ListGroupActivityRequest) GetGroupID() string { return r.GroupID }

type ListGroupActivityResponse struct {
	Activities []*Activity `json:"activities"`
}

// GetSuggestionsRequest asks for a settlement plan. Currency is optional;
// when set it must match the currency of the group's records.
type GetSuggestionsRequest struct {
	GroupID  string `json:"group_id"`
	Currency string `json:"currency,omitempty"`
}

func (r *GetSuggestionsRequest) GetGroupID() string { return r.GroupID }

type GetSuggestionsResponse struct {
	Suggestions      []*Suggestion `json:"suggestions"`
	TransactionCount int32         `json:"transaction_count"`
	TotalAmount      string        `json:"total_amount"`
	FullySettled     bool          `json:"fully_settled"`
	Message          string        `json:"message,omitempty"`
}

// RecordSettlementRequest records a payment. It is COMPLETED immediately
// unless Pending is set. An empty Currency means the group's currency.
type RecordSettlementRequest struct {
	GroupID        string `json:"group_id"`
	PayerID        string `json:"payer_id"`
	PayeeID        string `json:"payee_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	Note           string `json:"note,omitempty"`
	Pending        bool   `json:"pending,omitempty"`
}

func (r *RecordSettlementRequest) GetGroupID() string { return r.GroupID }

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CompleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type CompleteSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type CancelSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type CancelSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

// ListSettlementsRequest filters by group or, when GroupID is empty, by user.
type ListSettlementsRequest struct {
	GroupID string `json:"group_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

func (r *ListSettlementsRequest) GetGroupID() string { return r.GroupID }

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
