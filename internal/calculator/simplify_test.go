package calculator

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func balancesOf(m map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = d(v)
	}
	return out
}

func formatPlan(p *Plan) string {
	var b strings.Builder
	for _, s := range p.Suggestions {
		fmt.Fprintf(&b, "%s->%s:%s;", s.PayerID, s.PayeeID, s.Amount.StringFixed(2))
	}
	return b.String()
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]string
		want     string
		total    string
	}{
		{
			name:     "one creditor two debtors",
			balances: map[string]string{"u1": "66.67", "u2": "-33.33", "u3": "-33.34"},
			want:     "u3->u1:33.34;u2->u1:33.33;",
			total:    "66.67",
		},
		{
			name:     "creditor cleared by combining debtors",
			balances: map[string]string{"a": "50", "b": "-20", "c": "-30"},
			want:     "c->a:30.00;b->a:20.00;",
			total:    "50",
		},
		{
			name:     "two creditors one debtor",
			balances: map[string]string{"x": "-75.50", "y": "50.25", "z": "25.25"},
			want:     "x->y:50.25;x->z:25.25;",
			total:    "75.50",
		},
		{
			name:     "ties break on user ID",
			balances: map[string]string{"d2": "-10", "d1": "-10", "c2": "10", "c1": "10"},
			want:     "d1->c1:10.00;d2->c2:10.00;",
			total:    "20",
		},
		{
			name:     "chain collapses to direct payments",
			balances: map[string]string{"a": "-30", "b": "10", "c": "20"},
			want:     "a->c:20.00;a->b:10.00;",
			total:    "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Simplify(balancesOf(tt.balances), "USD")
			if err != nil {
				t.Fatalf("Simplify() error = %v", err)
			}
			if got := formatPlan(plan); got != tt.want {
				t.Errorf("suggestions = %s, want %s", got, tt.want)
			}
			if plan.TransactionCount != len(plan.Suggestions) {
				t.Errorf("TransactionCount = %d, want %d", plan.TransactionCount, len(plan.Suggestions))
			}
			if !plan.TotalAmount.Equal(d(tt.total)) {
				t.Errorf("TotalAmount = %s, want %s", plan.TotalAmount, tt.total)
			}
			if plan.FullySettled {
				t.Error("FullySettled = true for a plan with suggestions")
			}
			for _, s := range plan.Suggestions {
				if s.Currency != "USD" {
					t.Errorf("suggestion currency = %q, want USD", s.Currency)
				}
			}
		})
	}
}

func TestSimplify_FullySettled(t *testing.T) {
	for _, balances := range []map[string]decimal.Decimal{nil, {}, {"a": decimal.Zero}} {
		plan, err := Simplify(balances, "USD")
		if err != nil {
			t.Fatalf("Simplify(%v) error = %v", balances, err)
		}
		if !plan.FullySettled || plan.Message != FullySettledMessage {
			t.Errorf("plan = %+v, want fully settled", plan)
		}
		if plan.TransactionCount != 0 || !plan.TotalAmount.IsZero() {
			t.Errorf("plan = %+v, want no transactions", plan)
		}
	}
}

func TestSimplify_Inconsistent(t *testing.T) {
	tests := []struct {
		name      string
		balances  map[string]string
		unmatched []string
	}{
		{
			name:      "lone creditor",
			balances:  map[string]string{"a": "10"},
			unmatched: []string{"a"},
		},
		{
			name:      "debits exceed credits",
			balances:  map[string]string{"a": "10", "b": "-15"},
			unmatched: []string{"b"},
		},
		{
			name:      "off by one cent",
			balances:  map[string]string{"a": "10.01", "b": "-5", "c": "-5"},
			unmatched: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Simplify(balancesOf(tt.balances), "USD")
			if plan != nil {
				t.Errorf("plan = %+v, want nil", plan)
			}
			var ledgerErr *InconsistentLedgerError
			if !errors.As(err, &ledgerErr) {
				t.Fatalf("error = %v, want *InconsistentLedgerError", err)
			}
			if strings.Join(ledgerErr.Unmatched, ",") != strings.Join(tt.unmatched, ",") {
				t.Errorf("Unmatched = %v, want %v", ledgerErr.Unmatched, tt.unmatched)
			}
		})
	}
}

func TestSimplify_Deterministic(t *testing.T) {
	balances := balancesOf(map[string]string{
		"a": "12.50", "b": "12.50", "c": "-5.00", "d": "-5.00", "e": "-15.00", "f": "0",
	})
	first, err := Simplify(balances, "USD")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Simplify(balances, "USD")
		if err != nil {
			t.Fatalf("Simplify() error = %v", err)
		}
		if formatPlan(again) != formatPlan(first) {
			t.Fatalf("run %d: %s, first run %s", i, formatPlan(again), formatPlan(first))
		}
	}
}

// Applying a plan as completed settlements must leave every balance at zero,
// using no more than n-1 payments for n non-zero balances.
func TestSimplify_RoundTrip(t *testing.T) {
	users := []string{"ann", "ben", "cat", "dan", "eve", "fay"}
	var expenses []models.Expense
	for i := 0; i < 25; i++ {
		amount := decimal.New(int64(911*i+123), -2)
		payer := users[(i*5)%len(users)]
		participants := users[i%3 : len(users)-(i%2)]
		shares, err := ComputeShares(amount, payer, models.SplitEqual, SplitParams{ParticipantIDs: participants})
		if err != nil {
			t.Fatalf("ComputeShares(%s) error = %v", amount, err)
		}
		expenses = append(expenses, models.Expense{PayerID: payer, Amount: amount, Active: true, Shares: shares})
	}

	balances := ComputeGroupBalances(expenses, nil)
	plan, err := Simplify(balances, "USD")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	if len(balances) > 0 && plan.TransactionCount > len(balances)-1 {
		t.Errorf("%d transactions for %d balances", plan.TransactionCount, len(balances))
	}

	var settlements []models.Settlement
	for _, s := range plan.Suggestions {
		if s.PayerID == s.PayeeID {
			t.Errorf("self payment suggested: %+v", s)
		}
		if !s.Amount.IsPositive() {
			t.Errorf("non-positive suggestion: %+v", s)
		}
		settlements = append(settlements, completed(s.PayerID, s.PayeeID, s.Amount.String()))
	}

	after := ComputeGroupBalances(expenses, settlements)
	if len(after) != 0 {
		t.Errorf("balances after settling = %v, want none", after)
	}

	again, err := Simplify(after, "USD")
	if err != nil {
		t.Fatalf("Simplify() after settling error = %v", err)
	}
	if !again.FullySettled {
		t.Errorf("plan after settling = %+v, want fully settled", again)
	}
}

func TestSimplify_SubMinorUnitBalances(t *testing.T) {
	// Exact in KWD, but not payable in whole cents.
	balances := balancesOf(map[string]string{"u1": "0.501", "u2": "-0.501"})

	plan, err := Simplify(balances, "USD")
	if plan != nil {
		t.Errorf("plan = %+v, want nil", plan)
	}
	var ledgerErr *InconsistentLedgerError
	if !errors.As(err, &ledgerErr) {
		t.Fatalf("error = %v, want *InconsistentLedgerError", err)
	}
	if got := strings.Join(ledgerErr.Unmatched, ","); got != "u1,u2" {
		t.Errorf("Unmatched = %s, want u1,u2", got)
	}
	if !strings.Contains(err.Error(), "minor unit") {
		t.Errorf("error = %q, want minor unit reason", err)
	}

	plan, err = Simplify(balances, "KWD")
	if err != nil {
		t.Fatalf("Simplify(KWD) error = %v", err)
	}
	if len(plan.Suggestions) != 1 || !plan.Suggestions[0].Amount.Equal(d("0.501")) {
		t.Errorf("suggestions = %+v, want u2->u1 0.501", plan.Suggestions)
	}
}

func TestSimplify_ZeroDecimalCurrency(t *testing.T) {
	plan, err := Simplify(balancesOf(map[string]string{"a": "1000", "b": "-400", "c": "-600"}), "JPY")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	if got := formatPlan(plan); got != "c->a:600.00;b->a:400.00;" {
		t.Errorf("suggestions = %s", got)
	}
	for _, s := range plan.Suggestions {
		if !s.Amount.Equal(s.Amount.Truncate(0)) {
			t.Errorf("suggestion %s has fractional yen", s.Amount)
		}
	}
}
