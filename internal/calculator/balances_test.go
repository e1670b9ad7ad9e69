package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func equalSplitTx(payer models.ParticipantRef, total string, refs ...models.ParticipantRef) models.GroupTransaction {
	res, err := Split(dec(total), models.EqualSplit, len(refs), nil)
	if err != nil {
		panic(err)
	}
	tx := models.GroupTransaction{
		ID:          "tx",
		Payer:       payer,
		TotalAmount: res.Total,
		Strategy:    models.EqualSplit,
	}
	for i, r := range refs {
		tx.Participants = append(tx.Participants, models.Participant{Ref: r, ShareAmount: res.Shares[i]})
	}
	return tx
}

func findBalance(t *testing.T, balances []MemberBalance, ref models.ParticipantRef) MemberBalance {
	t.Helper()
	for _, b := range balances {
		if b.Member == ref {
			return b
		}
	}
	t.Fatalf("no balance for %s", ref.Key())
	return MemberBalance{}
}

func TestPositionFor(t *testing.T) {
	a := models.Registered("a")
	b := models.Registered("b")
	c := models.Unregistered("C@example.com")
	outsider := models.Registered("z")

	tx := equalSplitTx(a, "90000", a, b, c)

	pos, amt := PositionFor(&tx, a)
	assert.Equal(t, PositionIsOwed, pos)
	assert.True(t, amt.Equal(dec("60000")))

	pos, amt = PositionFor(&tx, b)
	assert.Equal(t, PositionOwes, pos)
	assert.True(t, amt.Equal(dec("30000")))

	pos, _ = PositionFor(&tx, outsider)
	assert.Equal(t, PositionNone, pos)

	tx.Participants[1].Settled = true
	tx.Participants[2].Settled = true

	pos, _ = PositionFor(&tx, b)
	assert.Equal(t, PositionSettled, pos)

	pos, amt = PositionFor(&tx, a)
	assert.Equal(t, PositionSettled, pos)
	assert.True(t, amt.Equal(dec("90000")))
}

func TestCalculateGroupBalances(t *testing.T) {
	a := models.Registered("a")
	b := models.Registered("b")
	c := models.Registered("c")

	t.Run("single equal split", func(t *testing.T) {
		balances, edges := CalculateGroupBalances([]models.GroupTransaction{
			equalSplitTx(a, "90000", a, b, c),
		})
		require.Len(t, balances, 3)

		ba := findBalance(t, balances, a)
		assert.True(t, ba.TotalPaid.Equal(dec("90000")))
		assert.True(t, ba.NetBalance.Equal(dec("60000")))

		bb := findBalance(t, balances, b)
		assert.True(t, bb.TotalOwed.Equal(dec("30000")))
		assert.True(t, bb.NetBalance.Equal(dec("-30000")))

		require.Len(t, edges, 2)
		for _, e := range edges {
			assert.Equal(t, a, e.To)
			assert.True(t, e.Amount.Equal(dec("30000")))
		}
	})

	t.Run("settled shares drop out", func(t *testing.T) {
		tx := equalSplitTx(a, "90", a, b, c)
		tx.Participants[1].Settled = true
		balances, edges := CalculateGroupBalances([]models.GroupTransaction{tx})

		bb := findBalance(t, balances, b)
		assert.True(t, bb.NetBalance.IsZero())

		require.Len(t, edges, 1)
		assert.Equal(t, c, edges[0].From)
		assert.True(t, edges[0].Amount.Equal(dec("30")))
	})

	t.Run("opposing debts net out", func(t *testing.T) {
		balances, edges := CalculateGroupBalances([]models.GroupTransaction{
			equalSplitTx(a, "60", a, b),
			equalSplitTx(b, "40", a, b),
		})
		assert.True(t, findBalance(t, balances, a).NetBalance.Equal(dec("10")))
		require.Len(t, edges, 1)
		assert.Equal(t, DebtEdge{From: b, To: a, Amount: edges[0].Amount}, edges[0])
		assert.True(t, edges[0].Amount.Equal(dec("10")))
	})

	t.Run("no transactions", func(t *testing.T) {
		balances, edges := CalculateGroupBalances(nil)
		assert.Empty(t, balances)
		assert.Empty(t, edges)
	})
}
