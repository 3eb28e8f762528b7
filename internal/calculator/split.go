package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Allocation pairs a user with a strategy-specific value: an amount for
// EXACT splits, a percentage for PERCENTAGE splits. Order is significant.
type Allocation struct {
	UserID string
	Value  decimal.Decimal
}

// SplitParams carries the strategy parameters for ComputeShares.
// Only the field matching the chosen strategy is read.
type SplitParams struct {
	// Currency selects the rounding precision. Empty means two places.
	Currency string

	// ParticipantIDs is required for EQUAL splits. The last participant
	// absorbs the rounding remainder.
	ParticipantIDs []string

	// ExactAmounts is required for EXACT splits.
	ExactAmounts []Allocation

	// Percentages is required for PERCENTAGE splits. The last entry
	// absorbs the rounding remainder.
	Percentages []Allocation
}

// Strategy computes the shares of one expense for a single split type.
type Strategy interface {
	// Strategy returns the split type this implementation handles.
	Strategy() models.SplitStrategy

	// Validate checks the parameters without computing anything.
	Validate(amount decimal.Decimal, params SplitParams) error

	// Calculate returns the shares in parameter order. Settled flags are
	// applied by ComputeShares.
	Calculate(amount decimal.Decimal, params SplitParams) ([]models.Share, error)
}

var strategies = map[models.SplitStrategy]Strategy{
	models.SplitEqual:      equalStrategy{},
	models.SplitExact:      exactStrategy{},
	models.SplitPercentage: percentageStrategy{},
}

// StrategyFor returns the implementation for the given split type.
func StrategyFor(s models.SplitStrategy) (Strategy, error) {
	impl, ok := strategies[s]
	if !ok {
		return nil, invalidSplit(s, "unknown split strategy")
	}
	return impl, nil
}

var hundred = decimal.NewFromInt(100)

// minorUnits lists currencies whose minor unit is not two decimal places.
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"CLP": 0,
	"ISK": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"JOD": 3,
	"TND": 3,
}

// MinorUnits returns the number of decimal places used by currency.
func MinorUnits(currency string) int32 {
	if places, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return places
	}
	return 2
}

// ComputeShares splits amount, paid by payerID, into per-participant shares.
// The result is deterministic and its amounts always sum to amount exactly.
// A share is pre-settled if and only if it belongs to the payer.
func ComputeShares(amount decimal.Decimal, payerID string, strategy models.SplitStrategy, params SplitParams) ([]models.Share, error) {
	impl, err := StrategyFor(strategy)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(strategy, amount, MinorUnits(params.Currency)); err != nil {
		return nil, err
	}
	if err := impl.Validate(amount, params); err != nil {
		return nil, err
	}

	shares, err := impl.Calculate(amount, params)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		// A remainder can only go negative when rounding of earlier
		// entries overshoots the amount.
		if shares[i].Amount.IsNegative() {
			return nil, invalidSplit(strategy, "amount %s is too small to split this way: share for user %s would be %s",
				amount.String(), shares[i].UserID, shares[i].Amount.String())
		}
		shares[i].Settled = shares[i].UserID == payerID
	}
	return shares, nil
}

func validateAmount(strategy models.SplitStrategy, amount decimal.Decimal, places int32) error {
	smallest := decimal.New(1, -places)
	if amount.LessThan(smallest) {
		return invalidSplit(strategy, "amount %s must be at least %s", amount.String(), smallest.String())
	}
	if !amount.Equal(amount.Round(places)) {
		return invalidSplit(strategy, "amount %s has more than %d decimal places", amount.String(), places)
	}
	return nil
}

// validateAllocations rejects empty lists, blank or duplicate users and
// negative values, then returns the sum of the values.
func validateAllocations(strategy models.SplitStrategy, field string, allocs []Allocation) (decimal.Decimal, error) {
	if len(allocs) == 0 {
		return decimal.Zero, invalidSplit(strategy, "%s are required", field)
	}
	seen := make(map[string]bool, len(allocs))
	sum := decimal.Zero
	for _, a := range allocs {
		if a.UserID == "" {
			return decimal.Zero, invalidSplit(strategy, "%s contain an empty user ID", field)
		}
		if seen[a.UserID] {
			return decimal.Zero, invalidSplit(strategy, "user %s appears more than once", a.UserID)
		}
		seen[a.UserID] = true
		if a.Value.IsNegative() {
			return decimal.Zero, invalidSplit(strategy, "value for user %s cannot be negative", a.UserID)
		}
		sum = sum.Add(a.Value)
	}
	return sum, nil
}
