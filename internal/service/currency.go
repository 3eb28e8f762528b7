package service

import (
	"maps"
	"slices"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// ledgerCurrency returns the single currency a ledger is kept in. Balances
// are only netted within one currency, so a ledger mixing currencies, or a
// requested currency other than the ledger's, is rejected. An empty ledger
// uses requested, then def.
//
// skipExpenseID leaves one expense out, so an update may change the
// currency of a group's only record.
func ledgerCurrency(ledger *models.Ledger, skipExpenseID, requested, def string) (string, error) {
	if strings.TrimSpace(requested) != "" {
		var err error
		if requested, err = normalizeCurrency(requested, def); err != nil {
			return "", err
		}
	}

	seen := make(map[string]bool)
	for _, e := range ledger.Expenses {
		if e.Active && e.ID != skipExpenseID {
			seen[e.Currency] = true
		}
	}
	for _, s := range ledger.Settlements {
		if s.Status != models.SettlementCancelled {
			seen[s.Currency] = true
		}
	}
	currencies := slices.Sorted(maps.Keys(seen))

	switch {
	case len(currencies) > 1:
		return "", invalidArgument("records mix currencies %s; balances are kept per currency", strings.Join(currencies, ", "))
	case len(currencies) == 1:
		if requested != "" && requested != currencies[0] {
			return "", invalidArgument("currency %s does not match %s, the currency already in use", requested, currencies[0])
		}
		return currencies[0], nil
	case requested != "":
		return requested, nil
	default:
		return normalizeCurrency("", def)
	}
}
