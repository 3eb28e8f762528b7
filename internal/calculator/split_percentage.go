package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// percentageStrategy splits the amount by caller-provided percentages.
type percentageStrategy struct{}

func (percentageStrategy) Strategy() models.SplitStrategy { return models.SplitPercentage }

func (percentageStrategy) Validate(_ decimal.Decimal, params SplitParams) error {
	sum, err := validateAllocations(models.SplitPercentage, "percentages", params.Percentages)
	if err != nil {
		return err
	}
	for _, p := range params.Percentages {
		if p.Value.IsZero() {
			return invalidSplit(models.SplitPercentage, "percentage for user %s must be greater than 0", p.UserID)
		}
	}
	if !sum.Equal(hundred) {
		return sumMismatch(models.SplitPercentage, "percentages must sum to 100", sum, hundred)
	}
	return nil
}

// Calculate computes amount*pct/100 rounded half-up for every entry but
// the last, which receives the remainder.
func (percentageStrategy) Calculate(amount decimal.Decimal, params SplitParams) ([]models.Share, error) {
	places := MinorUnits(params.Currency)
	n := len(params.Percentages)

	shares := make([]models.Share, n)
	allocated := decimal.Zero
	for i, p := range params.Percentages {
		var share decimal.Decimal
		if i == n-1 {
			share = amount.Sub(allocated)
		} else {
			share = amount.Mul(p.Value).DivRound(hundred, places)
			allocated = allocated.Add(share)
		}
		shares[i] = models.Share{
			UserID:     p.UserID,
			Amount:     share,
			Percentage: decimal.NewNullDecimal(p.Value),
		}
	}
	return shares, nil
}
