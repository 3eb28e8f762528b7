package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// equalStrategy divides the amount evenly among the participants.
type equalStrategy struct{}

func (equalStrategy) Strategy() models.SplitStrategy { return models.SplitEqual }

func (equalStrategy) Validate(amount decimal.Decimal, params SplitParams) error {
	if len(params.ParticipantIDs) == 0 {
		return invalidSplit(models.SplitEqual, "participant IDs are required")
	}
	seen := make(map[string]bool, len(params.ParticipantIDs))
	for _, id := range params.ParticipantIDs {
		if id == "" {
			return invalidSplit(models.SplitEqual, "participant IDs contain an empty user ID")
		}
		if seen[id] {
			return invalidSplit(models.SplitEqual, "user %s appears more than once", id)
		}
		seen[id] = true
	}
	return nil
}

// Calculate gives every participant amount/n rounded half-up to the minor
// unit, except the last, who receives whatever remains.
func (equalStrategy) Calculate(amount decimal.Decimal, params SplitParams) ([]models.Share, error) {
	n := len(params.ParticipantIDs)
	perPerson := amount.DivRound(decimal.NewFromInt(int64(n)), MinorUnits(params.Currency))

	shares := make([]models.Share, n)
	allocated := decimal.Zero
	for i, userID := range params.ParticipantIDs {
		share := perPerson
		if i == n-1 {
			share = amount.Sub(allocated)
		} else {
			allocated = allocated.Add(share)
		}
		shares[i] = models.Share{UserID: userID, Amount: share}
	}
	return shares, nil
}
