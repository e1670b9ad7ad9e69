package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrInvalidAmount       = apperr.New(apperr.KindValidation, "amount must be a positive number with at most two decimals")
	ErrMissingParticipants = apperr.New(apperr.KindValidation, "split strategy requires at least one participant")
	ErrInvalidPercentages  = apperr.New(apperr.KindValidation, "percentages must be positive and sum to 100")
	ErrUnknownStrategy     = apperr.New(apperr.KindValidation, "unknown split strategy")
)

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -2)
)

// SplitResult is the outcome of applying a strategy to an expense.
type SplitResult struct {
	// Total is what the payer paid.
	Total decimal.Decimal
	// Shares holds one amount per participant, in input order.
	Shares []decimal.Decimal
}

// ParseAmount parses a user supplied monetary amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", s, ErrInvalidAmount)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero, negative and sub-cent amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// ComputeShares returns the per-participant share and the total paid for the
// uniform strategies. For percentage_split the share depends on each
// participant, so share is zero and Split must be used.
//
//	payer_single:     share 0, total = amount
//	payer_for_others: share = amount, total = amount x n
//	equal_split:      share = round2(amount / n), total = amount
func ComputeShares(amount decimal.Decimal, strategy models.SplitStrategy, participantCount int) (share, total decimal.Decimal, err error) {
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !strategy.Valid() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
	if strategy == models.PayerSingle {
		return decimal.Zero, amount, nil
	}
	if participantCount <= 0 {
		return decimal.Zero, decimal.Zero, ErrMissingParticipants
	}

	n := decimal.NewFromInt(int64(participantCount))
	switch strategy {
	case models.PayerForOthers:
		return amount, amount.Mul(n), nil
	case models.EqualSplit:
		return amount.DivRound(n, 2), amount, nil
	default:
		return decimal.Zero, amount, nil
	}
}

// Split computes every participant's share. percentages is only read for
// percentage_split and must have one entry per participant.
//
// Rounded shares always sum exactly to the amount being split: the residue
// left by rounding is spread one cent at a time over the leading participants.
func Split(amount decimal.Decimal, strategy models.SplitStrategy, participantCount int, percentages []decimal.Decimal) (SplitResult, error) {
	share, total, err := ComputeShares(amount, strategy, participantCount)
	if err != nil {
		return SplitResult{}, err
	}

	switch strategy {
	case models.PayerSingle:
		return SplitResult{Total: total}, nil

	case models.PayerForOthers:
		shares := make([]decimal.Decimal, participantCount)
		for i := range shares {
			shares[i] = share
		}
		return SplitResult{Total: total, Shares: shares}, nil

	case models.EqualSplit:
		shares := make([]decimal.Decimal, participantCount)
		for i := range shares {
			shares[i] = share
		}
		return SplitResult{Total: total, Shares: reconcileResidue(total, shares)}, nil

	case models.PercentageSplit:
		if err := validatePercentages(percentages, participantCount); err != nil {
			return SplitResult{}, err
		}
		shares := make([]decimal.Decimal, participantCount)
		for i, pct := range percentages {
			shares[i] = total.Mul(pct).DivRound(hundred, 2)
		}
		return SplitResult{Total: total, Shares: reconcileResidue(total, shares)}, nil
	}

	return SplitResult{}, ErrUnknownStrategy
}

func validatePercentages(percentages []decimal.Decimal, participantCount int) error {
	if len(percentages) != participantCount {
		return fmt.Errorf("got %d percentages for %d participants: %w", len(percentages), participantCount, ErrInvalidPercentages)
	}
	sum := decimal.Zero
	for _, p := range percentages {
		if !p.IsPositive() {
			return fmt.Errorf("percentage %s: %w", p, ErrInvalidPercentages)
		}
		sum = sum.Add(p)
	}
	if !sum.Equal(hundred) {
		return fmt.Errorf("percentages sum to %s: %w", sum, ErrInvalidPercentages)
	}
	return nil
}

// reconcileResidue nudges shares by one cent each, starting from the first,
// until they sum to total.
func reconcileResidue(total decimal.Decimal, shares []decimal.Decimal) []decimal.Decimal {
	if len(shares) == 0 {
		return shares
	}
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	diff := total.Sub(sum)
	step := cent
	if diff.IsNegative() {
		step = cent.Neg()
	}
	cents := diff.Abs().Div(cent).IntPart()
	for k := int64(0); k < cents; k++ {
		i := int(k % int64(len(shares)))
		shares[i] = shares[i].Add(step)
	}
	return shares
}
