package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	pb "github.com/mmynk/splitledger/pkg/ledgerv1"
)

// parseAmount parses a decimal string from a request field.
func parseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, invalidArgument("%s is required", field)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalidArgument("%s: invalid decimal %q", field, value)
	}
	return d, nil
}

func toAllocations(field string, in []*pb.Allocation) ([]calculator.Allocation, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]calculator.Allocation, len(in))
	for i, a := range in {
		if a == nil {
			return nil, invalidArgument("%s[%d] is empty", field, i)
		}
		value, err := parseAmount(field, a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = calculator.Allocation{UserID: a.UserID, Value: value}
	}
	return out, nil
}

// formatAmount renders d with the minor units of currency, e.g. "10.00" or "1000".
func formatAmount(d decimal.Decimal, currency string) string {
	return d.StringFixed(calculator.MinorUnits(currency))
}

func toProtoShares(shares []models.Share, currency string) []*pb.Share {
	out := make([]*pb.Share, len(shares))
	for i, s := range shares {
		share := &pb.Share{
			UserID:  s.UserID,
			Amount:  formatAmount(s.Amount, currency),
			Settled: s.Settled,
		}
		if s.Percentage.Valid {
			share.Percentage = s.Percentage.Decimal.String()
		}
		out[i] = share
	}
	return out
}

func toProtoExpense(e *models.Expense) *pb.Expense {
	return &pb.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      formatAmount(e.Amount, e.Currency),
		Currency:    e.Currency,
		PayerID:     e.PayerID,
		Strategy:    string(e.Strategy),
		Category:    e.Category,
		Notes:       e.Notes,
		ReceiptURL:  e.ReceiptURL,
		Date:        e.Date,
		Active:      e.Active,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Shares:      toProtoShares(e.Shares, e.Currency),
	}
}

func toProtoSettlement(s *models.Settlement) *pb.Settlement {
	return &pb.Settlement{
		ID:             s.ID,
		GroupID:        s.GroupID,
		PayerID:        s.PayerID,
		PayeeID:        s.PayeeID,
		Amount:         formatAmount(s.Amount, s.Currency),
		Currency:       s.Currency,
		Status:         string(s.Status),
		PaymentMethod:  s.PaymentMethod,
		TransactionRef: s.TransactionRef,
		Note:           s.Note,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		SettledAt:      s.SettledAt,
	}
}

func toProtoSettlements(settlements []models.Settlement) []*pb.Settlement {
	out := make([]*pb.Settlement, len(settlements))
	for i := range settlements {
		out[i] = toProtoSettlement(&settlements[i])
	}
	return out
}

func toProtoActivity(a *models.Activity) *pb.Activity {
	return &pb.Activity{
		ID:           a.ID,
		Type:         string(a.Type),
		GroupID:      a.GroupID,
		ActorID:      a.ActorID,
		TargetUserID: a.TargetUserID,
		Description:  a.Description,
		CreatedAt:    a.CreatedAt,
	}
}
