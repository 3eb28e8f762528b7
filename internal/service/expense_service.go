package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	pb "github.com/mmynk/splitledger/pkg/ledgerv1"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

const (
	maxActivityLimit = 500
	maxCategoryLen   = 50
	maxNotesLen      = 500
	maxReceiptURLLen = 500
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	ledgerv1connect.UnimplementedExpenseServiceHandler
	store           storage.Store
	events          events.Publisher
	metrics         *metrics.Metrics
	defaultCurrency string
}

// NewExpenseService creates a new ExpenseService. Amounts without a currency
// are recorded in defaultCurrency.
func NewExpenseService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, defaultCurrency string) *ExpenseService {
	return &ExpenseService{
		store:           store,
		events:          publisher,
		metrics:         m,
		defaultCurrency: defaultCurrency,
	}
}

// splitInput is the part of a request that determines the shares.
type splitInput struct {
	Amount         string
	Currency       string
	PayerID        string
	Strategy       string
	ParticipantIDs []string
	ExactAmounts   []*pb.Allocation
	Percentages    []*pb.Allocation
}

// expenseDetails are the annotations of an expense that do not affect shares.
type expenseDetails struct {
	Category   string
	Notes      string
	ReceiptURL string
	Date       int64
}

func parseDetails(category, notes, receiptURL string, date int64) (expenseDetails, error) {
	d := expenseDetails{
		Category:   strings.ToUpper(strings.TrimSpace(category)),
		Notes:      strings.TrimSpace(notes),
		ReceiptURL: strings.TrimSpace(receiptURL),
		Date:       date,
	}
	if len(d.Category) > maxCategoryLen {
		return d, invalidArgument("category is longer than %d characters", maxCategoryLen)
	}
	if len(d.Notes) > maxNotesLen {
		return d, invalidArgument("notes are longer than %d characters", maxNotesLen)
	}
	if d.ReceiptURL != "" {
		if len(d.ReceiptURL) > maxReceiptURLLen {
			return d, invalidArgument("receipt_url is longer than %d characters", maxReceiptURLLen)
		}
		u, err := url.Parse(d.ReceiptURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return d, invalidArgument("receipt_url must be an absolute http(s) URL")
		}
	}
	if d.Date < 0 {
		return d, invalidArgument("date cannot be negative")
	}
	return d, nil
}

type computedSplit struct {
	amount   decimal.Decimal
	currency string
	strategy models.SplitStrategy
	shares   []models.Share
}

// computeSplit parses the request values and runs the split engine.
func (s *ExpenseService) computeSplit(in splitInput) (*computedSplit, error) {
	if err := requireField("payer_id", in.PayerID); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, s.defaultCurrency)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	strategy, err := models.ParseSplitStrategy(in.Strategy)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	exact, err := toAllocations("exact_amounts", in.ExactAmounts)
	if err != nil {
		return nil, err
	}
	percentages, err := toAllocations("percentages", in.Percentages)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	shares, err := calculator.ComputeShares(amount, in.PayerID, strategy, calculator.SplitParams{
		Currency:       currency,
		ParticipantIDs: in.ParticipantIDs,
		ExactAmounts:   exact,
		Percentages:    percentages,
	})
	s.metrics.ObserveEngine(metrics.OpSplit, start)
	s.metrics.Splits.WithLabelValues(string(strategy), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	return &computedSplit{amount: amount, currency: currency, strategy: strategy, shares: shares}, nil
}

// CreateExpense splits a new expense and persists it with its shares.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateExpense request received", "group_id", msg.GroupID, "strategy", msg.Strategy, "amount", msg.Amount)

	if err := requireField("group_id", msg.GroupID); err != nil {
		return nil, err
	}
	if err := requireField("description", msg.Description); err != nil {
		return nil, err
	}
	details, err := parseDetails(msg.Category, msg.Notes, msg.ReceiptURL, msg.Date)
	if err != nil {
		return nil, err
	}

	ledger, err := s.store.GroupLedger(ctx, msg.GroupID)
	if err != nil {
		slog.Error("CreateExpense failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	currency, err := ledgerCurrency(ledger, "", msg.Currency, s.defaultCurrency)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, err
	}

	split, err := s.computeSplit(splitInput{
		Amount:         msg.Amount,
		Currency:       currency,
		PayerID:        msg.PayerID,
		Strategy:       msg.Strategy,
		ParticipantIDs: msg.ParticipantIDs,
		ExactAmounts:   msg.ExactAmounts,
		Percentages:    msg.Percentages,
	})
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		GroupID:     msg.GroupID,
		Description: msg.Description,
		Amount:      split.amount,
		Currency:    split.currency,
		PayerID:     msg.PayerID,
		Strategy:    split.strategy,
		Category:    details.Category,
		Notes:       details.Notes,
		ReceiptURL:  details.ReceiptURL,
		Date:        details.Date,
		CreatedBy:   userID,
		Shares:      split.shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	s.events.Publish(events.Event{
		Type:        models.ActivityExpenseAdded,
		GroupID:     expense.GroupID,
		ActorID:     userID,
		Description: fmt.Sprintf("added %q (%s %s)", expense.Description, formatAmount(expense.Amount, expense.Currency), expense.Currency),
	})

	return connect.NewResponse(&pb.CreateExpenseResponse{Expense: toProtoExpense(expense)}), nil
}

// UpdateExpense recomputes the shares of an active expense and replaces the
// expense together with its full share set. Settled expenses are immutable.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[pb.UpdateExpenseRequest]) (*connect.Response[pb.UpdateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("UpdateExpense request received", "expense_id", msg.ExpenseID)

	if err := requireField("expense_id", msg.ExpenseID); err != nil {
		return nil, err
	}
	if err := requireField("description", msg.Description); err != nil {
		return nil, err
	}
	details, err := parseDetails(msg.Category, msg.Notes, msg.ReceiptURL, msg.Date)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetExpense(ctx, msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !existing.Active {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("expense %s was deleted", msg.ExpenseID))
	}
	if existing.Settled() {
		return nil, settledExpenseError(existing.ID)
	}

	ledger, err := s.store.GroupLedger(ctx, existing.GroupID)
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}
	currency, err := ledgerCurrency(ledger, existing.ID, msg.Currency, existing.Currency)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", msg.ExpenseID, "error", err)
		return nil, err
	}

	split, err := s.computeSplit(splitInput{
		Amount:         msg.Amount,
		Currency:       currency,
		PayerID:        msg.PayerID,
		Strategy:       msg.Strategy,
		ParticipantIDs: msg.ParticipantIDs,
		ExactAmounts:   msg.ExactAmounts,
		Percentages:    msg.Percentages,
	})
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	existing.Description = msg.Description
	existing.Amount = split.amount
	existing.Currency = split.currency
	existing.PayerID = msg.PayerID
	existing.Strategy = split.strategy
	existing.Category = details.Category
	existing.Notes = details.Notes
	existing.ReceiptURL = details.ReceiptURL
	if details.Date != 0 {
		existing.Date = details.Date
	}
	existing.Shares = split.shares
	if err := s.store.ReplaceExpense(ctx, existing); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	s.events.Publish(events.Event{
		Type:        models.ActivityExpenseUpdated,
		GroupID:     existing.GroupID,
		ActorID:     userID,
		Description: fmt.Sprintf("updated %q (%s %s)", existing.Description, formatAmount(existing.Amount, existing.Currency), existing.Currency),
	})

	return connect.NewResponse(&pb.UpdateExpenseResponse{Expense: toProtoExpense(existing)}), nil
}

// DeleteExpense soft-deletes an expense, removing it from every balance.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[pb.DeleteExpenseRequest]) (*connect.Response[pb.DeleteExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := requireField("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if expense.Active && expense.Settled() {
		return nil, settledExpenseError(expense.ID)
	}
	if err := s.store.DeactivateExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.events.Publish(events.Event{
		Type:        models.ActivityExpenseDeleted,
		GroupID:     expense.GroupID,
		ActorID:     userID,
		Description: fmt.Sprintf("deleted %q", expense.Description),
	})

	return connect.NewResponse(&pb.DeleteExpenseResponse{}), nil
}

// GetExpense returns an expense with its shares.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[pb.GetExpenseRequest]) (*connect.Response[pb.GetExpenseResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.GetExpenseResponse{Expense: toProtoExpense(expense)}), nil
}

// ListGroupExpenses returns a group's active expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[pb.ListGroupExpensesRequest]) (*connect.Response[pb.ListGroupExpensesResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListGroupExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Expense, len(expenses))
	for i := range expenses {
		out[i] = toProtoExpense(&expenses[i])
	}
	return connect.NewResponse(&pb.ListGroupExpensesResponse{Expenses: out}), nil
}

// ListUserExpenses returns the active expenses, across all groups, that a
// user paid or has a share in, newest first.
func (s *ExpenseService) ListUserExpenses(ctx context.Context, req *connect.Request[pb.ListUserExpensesRequest]) (*connect.Response[pb.ListUserExpensesResponse], error) {
	callerID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(req.Msg.UserID)
	if userID == "" {
		userID = callerID
	}

	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		slog.Error("ListUserExpenses failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Expense, len(expenses))
	for i := range expenses {
		out[i] = toProtoExpense(&expenses[i])
	}
	return connect.NewResponse(&pb.ListUserExpensesResponse{Expenses: out}), nil
}

// PreviewSplit computes shares without persisting anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[pb.PreviewSplitRequest]) (*connect.Response[pb.PreviewSplitResponse], error) {
	msg := req.Msg
	split, err := s.computeSplit(splitInput{
		Amount:         msg.Amount,
		Currency:       msg.Currency,
		PayerID:        msg.PayerID,
		Strategy:       msg.Strategy,
		ParticipantIDs: msg.ParticipantIDs,
		ExactAmounts:   msg.ExactAmounts,
		Percentages:    msg.Percentages,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.PreviewSplitResponse{Shares: toProtoShares(split.shares, split.currency)}), nil
}

// GetGroupBalances returns every non-zero net balance of a group, sorted by
// user ID, and the pairwise debts between members.
func (s *ExpenseService) GetGroupBalances(ctx context.Context, req *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	ledger, err := s.store.GroupLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	currency, err := ledgerCurrency(ledger, "", "", s.defaultCurrency)
	if err != nil {
		slog.Warn("GetGroupBalances rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, err
	}

	start := time.Now()
	balances := calculator.ComputeGroupBalances(ledger.Expenses, ledger.Settlements)
	debts := calculator.PairwiseBalances(ledger.Expenses, ledger.Settlements)
	s.metrics.ObserveEngine(metrics.OpBalances, start)
	s.metrics.BalanceComputations.Inc()

	resp := &pb.GetGroupBalancesResponse{
		GroupID:  req.Msg.GroupID,
		Currency: currency,
		Balances: make([]*pb.Balance, 0, len(balances)),
		Debts:    make([]*pb.Debt, len(debts)),
	}
	for _, userID := range slices.Sorted(maps.Keys(balances)) {
		resp.Balances = append(resp.Balances, &pb.Balance{UserID: userID, Amount: formatAmount(balances[userID], currency)})
	}
	for i, d := range debts {
		resp.Debts[i] = &pb.Debt{FromUserID: d.From, ToUserID: d.To, Amount: formatAmount(d.Amount, currency)}
	}
	return connect.NewResponse(resp), nil
}

// GetUserBalance returns one user's totals and per-counterparty balances
// within a group, or across every group when no group is given. The user
// defaults to the caller.
func (s *ExpenseService) GetUserBalance(ctx context.Context, req *connect.Request[pb.GetUserBalanceRequest]) (*connect.Response[pb.GetUserBalanceResponse], error) {
	callerID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(req.Msg.UserID)
	if userID == "" {
		userID = callerID
	}
	groupID := strings.TrimSpace(req.Msg.GroupID)

	var ledger *models.Ledger
	if groupID == "" {
		ledger, err = s.store.UserLedger(ctx, userID)
	} else {
		ledger, err = s.store.GroupLedger(ctx, groupID)
	}
	if err != nil {
		slog.Error("GetUserBalance failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	currency, err := ledgerCurrency(ledger, "", "", s.defaultCurrency)
	if err != nil {
		slog.Warn("GetUserBalance rejected", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}

	start := time.Now()
	ub := calculator.ComputeUserBalance(userID, ledger.Expenses, ledger.Settlements)
	s.metrics.ObserveEngine(metrics.OpBalances, start)
	s.metrics.BalanceComputations.Inc()

	counterparties := make([]*pb.Balance, len(ub.Counterparties))
	for i, c := range ub.Counterparties {
		counterparties[i] = &pb.Balance{UserID: c.UserID, Amount: formatAmount(c.Amount, currency)}
	}
	return connect.NewResponse(&pb.GetUserBalanceResponse{
		UserID:          ub.UserID,
		Currency:        currency,
		TotalOwed:       formatAmount(ub.TotalOwed, currency),
		TotalOwedToUser: formatAmount(ub.TotalOwedToUser, currency),
		NetBalance:      formatAmount(ub.NetBalance, currency),
		Counterparties:  counterparties,
	}), nil
}

// ListGroupActivity returns a group's activity feed, newest first.
func (s *ExpenseService) ListGroupActivity(ctx context.Context, req *connect.Request[pb.ListGroupActivityRequest]) (*connect.Response[pb.ListGroupActivityResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}
	limit := int(req.Msg.Limit)
	if limit < 0 || limit > maxActivityLimit {
		return nil, invalidArgument("limit must be between 0 and %d", maxActivityLimit)
	}

	activities, err := s.store.ListActivitiesByGroup(ctx, req.Msg.GroupID, limit)
	if err != nil {
		slog.Error("ListGroupActivity failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Activity, len(activities))
	for i := range activities {
		out[i] = toProtoActivity(&activities[i])
	}
	return connect.NewResponse(&pb.ListGroupActivityResponse{Activities: out}), nil
}
