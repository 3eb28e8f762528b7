package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	pb "github.com/mmynk/splitledger/pkg/ledgerv1"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	ledgerv1connect.UnimplementedSettlementServiceHandler
	store           storage.Store
	events          events.Publisher
	metrics         *metrics.Metrics
	defaultCurrency string
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, defaultCurrency string) *SettlementService {
	return &SettlementService{
		store:           store,
		events:          publisher,
		metrics:         m,
		defaultCurrency: defaultCurrency,
	}
}

// GetSuggestions returns the minimal set of payments that settles the group,
// in the currency the group's records are kept in.
func (s *SettlementService) GetSuggestions(ctx context.Context, req *connect.Request[pb.GetSuggestionsRequest]) (*connect.Response[pb.GetSuggestionsResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	if err := requireField("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	ledger, err := s.store.GroupLedger(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetSuggestions failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	currency, err := ledgerCurrency(ledger, "", req.Msg.Currency, s.defaultCurrency)
	if err != nil {
		slog.Warn("GetSuggestions rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, err
	}

	start := time.Now()
	balances := calculator.ComputeGroupBalances(ledger.Expenses, ledger.Settlements)
	plan, err := calculator.Simplify(balances, currency)
	s.metrics.ObserveEngine(metrics.OpSimplify, start)
	s.metrics.BalanceComputations.Inc()
	if err != nil {
		var inconsistent *calculator.InconsistentLedgerError
		if errors.As(err, &inconsistent) {
			s.metrics.InconsistentLedger.Inc()
			slog.Error("GetSuggestions aborted: inconsistent ledger",
				"alert", "inconsistent_ledger",
				"group_id", req.Msg.GroupID,
				"reason", inconsistent.Reason,
				"credit_total", inconsistent.CreditTotal.String(),
				"debit_total", inconsistent.DebitTotal.String(),
				"unmatched", inconsistent.Unmatched,
			)
		} else {
			slog.Error("GetSuggestions failed", "group_id", req.Msg.GroupID, "error", err)
		}
		return nil, toConnectError(err)
	}
	s.metrics.Suggestions.Add(float64(len(plan.Suggestions)))

	suggestions := make([]*pb.Suggestion, len(plan.Suggestions))
	for i, sg := range plan.Suggestions {
		suggestions[i] = &pb.Suggestion{
			PayerID:  sg.PayerID,
			PayeeID:  sg.PayeeID,
			Amount:   formatAmount(sg.Amount, sg.Currency),
			Currency: sg.Currency,
		}
	}
	return connect.NewResponse(&pb.GetSuggestionsResponse{
		Suggestions:      suggestions,
		TransactionCount: int32(plan.TransactionCount),
		TotalAmount:      formatAmount(plan.TotalAmount, currency),
		FullySettled:     plan.FullySettled,
		Message:          plan.Message,
	}), nil
}

// RecordSettlement records a payment between two users. The settlement is
// COMPLETED immediately unless the request asks for PENDING.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[pb.RecordSettlementRequest]) (*connect.Response[pb.RecordSettlementResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("RecordSettlement request received",
		"group_id", msg.GroupID, "payer_id", msg.PayerID, "payee_id", msg.PayeeID, "amount", msg.Amount)

	if err := requireField("group_id", msg.GroupID); err != nil {
		return nil, err
	}
	if err := requireField("payer_id", msg.PayerID); err != nil {
		return nil, err
	}
	if err := requireField("payee_id", msg.PayeeID); err != nil {
		return nil, err
	}
	if msg.PayerID == msg.PayeeID {
		return nil, invalidArgument("payer and payee must be different users")
	}
	amount, err := parseAmount("amount", msg.Amount)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, invalidArgument("amount must be positive, got %s", amount.String())
	}

	ledger, err := s.store.GroupLedger(ctx, msg.GroupID)
	if err != nil {
		slog.Error("RecordSettlement failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	currency, err := ledgerCurrency(ledger, "", msg.Currency, s.defaultCurrency)
	if err != nil {
		slog.Warn("RecordSettlement rejected", "group_id", msg.GroupID, "error", err)
		return nil, err
	}
	if places := calculator.MinorUnits(currency); !amount.Equal(amount.Round(places)) {
		return nil, invalidArgument("amount %s has more than %d decimal places for %s", amount.String(), places, currency)
	}

	status := models.SettlementCompleted
	if msg.Pending {
		status = models.SettlementPending
	}
	settlement := &models.Settlement{
		GroupID:        msg.GroupID,
		PayerID:        msg.PayerID,
		PayeeID:        msg.PayeeID,
		Amount:         amount,
		Currency:       currency,
		Status:         status,
		PaymentMethod:  msg.PaymentMethod,
		TransactionRef: msg.TransactionRef,
		Note:           msg.Note,
		CreatedBy:      userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "error", err)
		return nil, toConnectError(err)
	}

	s.events.Publish(events.Event{
		Type:         models.ActivityPaymentRecorded,
		GroupID:      settlement.GroupID,
		ActorID:      userID,
		TargetUserID: settlement.PayeeID,
		Description:  fmt.Sprintf("%s paid %s %s %s", settlement.PayerID, settlement.PayeeID, formatAmount(settlement.Amount, settlement.Currency), settlement.Currency),
	})

	return connect.NewResponse(&pb.RecordSettlementResponse{Settlement: toProtoSettlement(settlement)}), nil
}

// CompleteSettlement moves a PENDING settlement to COMPLETED.
func (s *SettlementService) CompleteSettlement(ctx context.Context, req *connect.Request[pb.CompleteSettlementRequest]) (*connect.Response[pb.CompleteSettlementResponse], error) {
	settlement, err := s.transition(ctx, "CompleteSettlement", req.Msg.SettlementID, models.SettlementCompleted, models.ActivitySettlementCompleted)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.CompleteSettlementResponse{Settlement: toProtoSettlement(settlement)}), nil
}

// CancelSettlement moves a PENDING settlement to CANCELLED.
func (s *SettlementService) CancelSettlement(ctx context.Context, req *connect.Request[pb.CancelSettlementRequest]) (*connect.Response[pb.CancelSettlementResponse], error) {
	settlement, err := s.transition(ctx, "CancelSettlement", req.Msg.SettlementID, models.SettlementCancelled, models.ActivitySettlementCancelled)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&pb.CancelSettlementResponse{Settlement: toProtoSettlement(settlement)}), nil
}

// transition applies a PENDING -> to status change. Only one of several
// concurrent callers succeeds; the others get FailedPrecondition.
func (s *SettlementService) transition(ctx context.Context, op, settlementID string, to models.SettlementStatus, activity models.ActivityType) (*models.Settlement, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info(op+" request received", "settlement_id", settlementID)

	if err := requireField("settlement_id", settlementID); err != nil {
		return nil, err
	}

	settlement, err := s.store.TransitionSettlement(ctx, settlementID, models.SettlementPending, to)
	if err != nil {
		if errors.Is(err, storage.ErrStatusConflict) || errors.Is(err, storage.ErrNotFound) {
			slog.Warn(op+" rejected", "settlement_id", settlementID, "error", err)
		} else {
			slog.Error(op+" failed", "settlement_id", settlementID, "error", err)
		}
		return nil, toConnectError(err)
	}

	s.events.Publish(events.Event{
		Type:         activity,
		GroupID:      settlement.GroupID,
		ActorID:      userID,
		TargetUserID: settlement.PayeeID,
		Description: fmt.Sprintf("settlement of %s %s from %s to %s is %s",
			formatAmount(settlement.Amount, settlement.Currency), settlement.Currency, settlement.PayerID, settlement.PayeeID, settlement.Status),
	})
	return settlement, nil
}

// ListSettlements returns the settlements of a group or, when no group is
// given, of a user, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[pb.ListSettlementsRequest]) (*connect.Response[pb.ListSettlementsResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	var (
		settlements []models.Settlement
		err         error
	)
	switch {
	case req.Msg.GroupID != "":
		settlements, err = s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	case req.Msg.UserID != "":
		settlements, err = s.store.ListSettlementsByUser(ctx, req.Msg.UserID)
	default:
		return nil, invalidArgument("group_id or user_id is required")
	}
	if err != nil {
		slog.Error("ListSettlements failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.ListSettlementsResponse{Settlements: toProtoSettlements(settlements)}), nil
}
