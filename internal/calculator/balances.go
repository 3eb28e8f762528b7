package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// UserBalance is one user's view of a group's ledger.
type UserBalance struct {
	UserID string

	// TotalOwed is what this user still owes others.
	TotalOwed decimal.Decimal

	// TotalOwedToUser is what others still owe this user.
	TotalOwedToUser decimal.Decimal

	// NetBalance is TotalOwedToUser - TotalOwed.
	// Positive = owed money, negative = owes money.
	NetBalance decimal.Decimal

	// Counterparties holds the signed balance with each other user,
	// sorted by user ID. Positive = that user owes this one.
	Counterparties []CounterpartyBalance
}

// CounterpartyBalance is the directed balance between a user and one counterparty.
type CounterpartyBalance struct {
	UserID string
	Amount decimal.Decimal
}

// DebtEdge represents a net debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// ComputeGroupBalances folds a group's expenses and settlements into a signed
// net balance per user. Positive = is owed money, negative = owes money.
//
// Algorithm:
//   - For each active expense: credit the payer the gross amount, then debit
//     every share (the payer's own included) from its user
//   - For each COMPLETED settlement: add the amount to the payer, subtract it
//     from the payee
//   - Drop users whose balance is exactly zero
//
// The fold never fails. Integrity of individual records is the data
// layer's job; a corrupt share set surfaces later as a non-zero-sum result.
func ComputeGroupBalances(expenses []models.Expense, settlements []models.Settlement) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	add := func(userID string, amount decimal.Decimal) {
		balances[userID] = balances[userID].Add(amount)
	}

	for _, e := range expenses {
		if !e.Active {
			continue
		}
		add(e.PayerID, e.Amount)
		for _, s := range e.Shares {
			add(s.UserID, s.Amount.Neg())
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		add(s.PayerID, s.Amount)
		add(s.PayeeID, s.Amount.Neg())
	}

	for userID, bal := range balances {
		if bal.IsZero() {
			delete(balances, userID)
		}
	}
	return balances
}

// ComputeUserBalance returns userID's totals within a group.
//
// TotalOwed sums the user's unsettled shares on expenses someone else paid.
// TotalOwedToUser sums other participants' unsettled shares on expenses the
// user paid. A COMPLETED settlement counts as an expense paid by its payer
// with a single share owed by its payee, so NetBalance matches the user's
// entry in ComputeGroupBalances.
func ComputeUserBalance(userID string, expenses []models.Expense, settlements []models.Settlement) UserBalance {
	owed := decimal.Zero
	owedToUser := decimal.Zero
	counterparties := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		if !e.Active {
			continue
		}
		for _, s := range e.Shares {
			if s.Settled || s.UserID == e.PayerID {
				continue
			}
			switch userID {
			case e.PayerID:
				owedToUser = owedToUser.Add(s.Amount)
				counterparties[s.UserID] = counterparties[s.UserID].Add(s.Amount)
			case s.UserID:
				owed = owed.Add(s.Amount)
				counterparties[e.PayerID] = counterparties[e.PayerID].Sub(s.Amount)
			}
		}
	}

	for _, s := range settlements {
		if s.Status != models.SettlementCompleted || s.PayerID == s.PayeeID {
			continue
		}
		switch userID {
		case s.PayerID:
			owedToUser = owedToUser.Add(s.Amount)
			counterparties[s.PayeeID] = counterparties[s.PayeeID].Add(s.Amount)
		case s.PayeeID:
			owed = owed.Add(s.Amount)
			counterparties[s.PayerID] = counterparties[s.PayerID].Sub(s.Amount)
		}
	}

	result := UserBalance{
		UserID:          userID,
		TotalOwed:       owed,
		TotalOwedToUser: owedToUser,
		NetBalance:      owedToUser.Sub(owed),
	}
	for other, amount := range counterparties {
		if amount.IsZero() {
			continue
		}
		result.Counterparties = append(result.Counterparties, CounterpartyBalance{UserID: other, Amount: amount})
	}
	sort.Slice(result.Counterparties, func(i, j int) bool {
		return result.Counterparties[i].UserID < result.Counterparties[j].UserID
	})
	return result
}

// userPair is an unordered pair of users stored in canonical order (lo < hi).
type userPair struct {
	lo, hi string
}

// PairwiseBalances nets every user-to-user obligation in the group into at
// most one DebtEdge per pair, sorted by (From, To). Shares are counted the
// same way ComputeGroupBalances counts them, so each user's incoming minus
// outgoing edges equals their net balance.
func PairwiseBalances(expenses []models.Expense, settlements []models.Settlement) []DebtEdge {
	// net[pair] > 0 means pair.lo owes pair.hi.
	net := make(map[userPair]decimal.Decimal)
	owe := func(debtor, creditor string, amount decimal.Decimal) {
		if debtor == creditor {
			return
		}
		if debtor < creditor {
			p := userPair{debtor, creditor}
			net[p] = net[p].Add(amount)
		} else {
			p := userPair{creditor, debtor}
			net[p] = net[p].Sub(amount)
		}
	}

	for _, e := range expenses {
		if !e.Active {
			continue
		}
		for _, s := range e.Shares {
			owe(s.UserID, e.PayerID, s.Amount)
		}
	}
	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		// Paying reduces what the payer owes the payee.
		owe(s.PayeeID, s.PayerID, s.Amount)
	}

	edges := make([]DebtEdge, 0, len(net))
	for p, amount := range net {
		switch amount.Sign() {
		case 1:
			edges = append(edges, DebtEdge{From: p.lo, To: p.hi, Amount: amount})
		case -1:
			edges = append(edges, DebtEdge{From: p.hi, To: p.lo, Amount: amount.Neg()})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// SumBalances returns the algebraic sum of all balances. It is zero for any
// ledger whose expenses satisfy the share-sum invariant.
func SumBalances(balances map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}
