package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// FullySettledMessage is the plan message when nobody owes anything.
const FullySettledMessage = "All balances are settled up"

// Suggestion is a proposed, not yet executed, payment.
type Suggestion struct {
	PayerID  string
	PayeeID  string
	Amount   decimal.Decimal
	Currency string
}

// Plan is the output of Simplify.
type Plan struct {
	Suggestions      []Suggestion
	TransactionCount int
	TotalAmount      decimal.Decimal
	FullySettled     bool
	Message          string
}

// party is one side of the matching with the amount still to settle.
type party struct {
	userID    string
	remaining decimal.Decimal
}

// Simplify reduces net balances to a list of payments that zeroes all of them.
//
// Greedy matching: creditors and debtors are each sorted by amount
// descending (user ID ascending on ties), then the current debtor pays the
// current creditor min(remaining) and whichever side reaches zero advances.
// Every step clears at least one party, so n non-zero balances produce at
// most n-1 payments. Output depends only on the map's contents.
//
// Balances that do not sum to zero, or that are finer than the currency's
// minor unit, yield an *InconsistentLedgerError and no plan. Every
// suggested amount is therefore exact and non-zero.
func Simplify(balances map[string]decimal.Decimal, currency string) (*Plan, error) {
	places := MinorUnits(currency)

	var creditors, debtors []party
	var unpayable []string
	creditTotal, debitTotal := decimal.Zero, decimal.Zero
	for userID, bal := range balances {
		if !bal.Equal(bal.Round(places)) {
			unpayable = append(unpayable, userID)
		}
		switch bal.Sign() {
		case 1:
			creditors = append(creditors, party{userID, bal})
			creditTotal = creditTotal.Add(bal)
		case -1:
			debtors = append(debtors, party{userID, bal.Abs()})
			debitTotal = debitTotal.Add(bal.Abs())
		}
	}
	if len(unpayable) > 0 {
		sort.Strings(unpayable)
		return nil, &InconsistentLedgerError{
			CreditTotal: creditTotal,
			DebitTotal:  debitTotal,
			Unmatched:   unpayable,
			Reason:      fmt.Sprintf("balances are not whole multiples of the %s minor unit", currency),
		}
	}
	sortParties(creditors)
	sortParties(debtors)

	plan := &Plan{TotalAmount: decimal.Zero}

	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := decimal.Min(creditor.remaining, debtor.remaining)
		plan.Suggestions = append(plan.Suggestions, Suggestion{
			PayerID:  debtor.userID,
			PayeeID:  creditor.userID,
			Amount:   amount,
			Currency: currency,
		})
		plan.TotalAmount = plan.TotalAmount.Add(amount)

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Sub(amount)
		if creditor.remaining.IsZero() {
			i++
		}
		if debtor.remaining.IsZero() {
			j++
		}
	}

	if i < len(creditors) || j < len(debtors) {
		err := &InconsistentLedgerError{CreditTotal: creditTotal, DebitTotal: debitTotal}
		for ; i < len(creditors); i++ {
			err.Unmatched = append(err.Unmatched, creditors[i].userID)
		}
		for ; j < len(debtors); j++ {
			err.Unmatched = append(err.Unmatched, debtors[j].userID)
		}
		return nil, err
	}

	plan.TransactionCount = len(plan.Suggestions)
	if plan.TransactionCount == 0 {
		plan.FullySettled = true
		plan.Message = FullySettledMessage
	}
	return plan, nil
}

func sortParties(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		if c := parties[a].remaining.Cmp(parties[b].remaining); c != 0 {
			return c > 0
		}
		return parties[a].userID < parties[b].userID
	})
}
