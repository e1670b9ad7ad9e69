package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sum(shares []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s)
	}
	return total
}

func TestComputeShares(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		strategy  models.SplitStrategy
		count     int
		wantShare string
		wantTotal string
		wantErr   error
	}{
		{
			name:      "payer single ignores participants",
			amount:    "120.50",
			strategy:  models.PayerSingle,
			count:     0,
			wantShare: "0",
			wantTotal: "120.50",
		},
		{
			name:      "payer for others multiplies per-person amount",
			amount:    "20000",
			strategy:  models.PayerForOthers,
			count:     2,
			wantShare: "20000",
			wantTotal: "40000",
		},
		{
			name:      "equal split divides the total",
			amount:    "90000",
			strategy:  models.EqualSplit,
			count:     3,
			wantShare: "30000",
			wantTotal: "90000",
		},
		{
			name:      "equal split rounds to cents",
			amount:    "100",
			strategy:  models.EqualSplit,
			count:     3,
			wantShare: "33.33",
			wantTotal: "100",
		},
		{
			name:     "zero amount",
			amount:   "0",
			strategy: models.EqualSplit,
			count:    2,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			amount:   "-5",
			strategy: models.PayerSingle,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "sub-cent amount",
			amount:   "1.005",
			strategy: models.PayerSingle,
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "equal split without participants",
			amount:   "10",
			strategy: models.EqualSplit,
			count:    0,
			wantErr:  ErrMissingParticipants,
		},
		{
			name:     "payer for others without participants",
			amount:   "10",
			strategy: models.PayerForOthers,
			count:    0,
			wantErr:  ErrMissingParticipants,
		},
		{
			name:     "unknown strategy",
			amount:   "10",
			strategy: models.SplitStrategy("by_weight"),
			count:    2,
			wantErr:  ErrUnknownStrategy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, total, err := ComputeShares(dec(tt.amount), tt.strategy, tt.count)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, share.Equal(dec(tt.wantShare)), "share = %s, want %s", share, tt.wantShare)
			assert.True(t, total.Equal(dec(tt.wantTotal)), "total = %s, want %s", total, tt.wantTotal)
		})
	}
}

func TestSplit_EqualSplitReconcilesResidue(t *testing.T) {
	tests := []struct {
		amount string
		count  int
	}{
		{"100", 3},
		{"2", 3},
		{"0.05", 3},
		{"90000", 3},
		{"1234.57", 7},
		{"10", 6},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			res, err := Split(dec(tt.amount), models.EqualSplit, tt.count, nil)
			require.NoError(t, err)
			require.Len(t, res.Shares, tt.count)
			assert.True(t, sum(res.Shares).Equal(dec(tt.amount)), "sum %s != %s", sum(res.Shares), tt.amount)

			// No share drifts more than a cent from the even split.
			even := dec(tt.amount).DivRound(decimal.NewFromInt(int64(tt.count)), 2)
			for _, s := range res.Shares {
				assert.True(t, s.Sub(even).Abs().LessThanOrEqual(cent), "share %s too far from %s", s, even)
			}
		})
	}
}

func TestSplit_EqualSplitScenario(t *testing.T) {
	res, err := Split(dec("90000"), models.EqualSplit, 3, nil)
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(dec("90000")))
	for _, s := range res.Shares {
		assert.True(t, s.Equal(dec("30000")))
	}
}

func TestSplit_PayerForOthersScenario(t *testing.T) {
	res, err := Split(dec("20000"), models.PayerForOthers, 2, nil)
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(dec("40000")))
	require.Len(t, res.Shares, 2)
	for _, s := range res.Shares {
		assert.True(t, s.Equal(dec("20000")))
	}
}

func TestSplit_PayerSingleHasNoShares(t *testing.T) {
	res, err := Split(dec("50"), models.PayerSingle, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Shares)
	assert.True(t, res.Total.Equal(dec("50")))
}

func TestSplit_Percentage(t *testing.T) {
	t.Run("exact percentages", func(t *testing.T) {
		res, err := Split(dec("200"), models.PercentageSplit, 3, []decimal.Decimal{dec("50"), dec("30"), dec("20")})
		require.NoError(t, err)
		assert.True(t, res.Shares[0].Equal(dec("100")))
		assert.True(t, res.Shares[1].Equal(dec("60")))
		assert.True(t, res.Shares[2].Equal(dec("40")))
	})

	t.Run("rounding residue is reconciled", func(t *testing.T) {
		pcts := []decimal.Decimal{dec("33.33"), dec("33.33"), dec("33.34")}
		res, err := Split(dec("10.01"), models.PercentageSplit, 3, pcts)
		require.NoError(t, err)
		assert.True(t, sum(res.Shares).Equal(dec("10.01")))
	})

	t.Run("percentages must sum to 100", func(t *testing.T) {
		_, err := Split(dec("100"), models.PercentageSplit, 2, []decimal.Decimal{dec("50"), dec("40")})
		assert.ErrorIs(t, err, ErrInvalidPercentages)
	})

	t.Run("percentages must be positive", func(t *testing.T) {
		_, err := Split(dec("100"), models.PercentageSplit, 2, []decimal.Decimal{dec("110"), dec("-10")})
		assert.ErrorIs(t, err, ErrInvalidPercentages)
	})

	t.Run("one percentage per participant", func(t *testing.T) {
		_, err := Split(dec("100"), models.PercentageSplit, 2, []decimal.Decimal{dec("100")})
		assert.ErrorIs(t, err, ErrInvalidPercentages)
	})

	t.Run("missing participants", func(t *testing.T) {
		_, err := Split(dec("100"), models.PercentageSplit, 0, nil)
		assert.ErrorIs(t, err, ErrMissingParticipants)
	})
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"30000", true},
		{" 12.34 ", true},
		{"0.01", true},
		{"12.340", true},
		{"0", false},
		{"-1", false},
		{"abc", false},
		{"", false},
		{"1.001", false},
	}
	for _, tc := range cases {
		_, err := ParseAmount(tc.in)
		if tc.ok {
			assert.NoError(t, err, tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}
