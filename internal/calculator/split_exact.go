package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// exactStrategy uses caller-provided amounts verbatim.
type exactStrategy struct{}

func (exactStrategy) Strategy() models.SplitStrategy { return models.SplitExact }

func (exactStrategy) Validate(amount decimal.Decimal, params SplitParams) error {
	sum, err := validateAllocations(models.SplitExact, "exact amounts", params.ExactAmounts)
	if err != nil {
		return err
	}
	places := MinorUnits(params.Currency)
	for _, a := range params.ExactAmounts {
		if !a.Value.Equal(a.Value.Round(places)) {
			return invalidSplit(models.SplitExact, "amount for user %s has more than %d decimal places", a.UserID, places)
		}
	}
	// No tolerance: 99.99 against 100.00 is an error.
	if !sum.Equal(amount) {
		return sumMismatch(models.SplitExact, "exact amounts must sum to the expense amount", sum, amount)
	}
	return nil
}

func (exactStrategy) Calculate(_ decimal.Decimal, params SplitParams) ([]models.Share, error) {
	shares := make([]models.Share, len(params.ExactAmounts))
	for i, a := range params.ExactAmounts {
		shares[i] = models.Share{UserID: a.UserID, Amount: a.Value}
	}
	return shares, nil
}
