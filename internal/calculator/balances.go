package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one group actor.
type MemberBalance struct {
	Member models.ParticipantRef
	// NetBalance is positive when the actor is owed money, negative when they owe.
	NetBalance decimal.Decimal
	// TotalPaid is what the actor paid to merchants across all transactions.
	TotalPaid decimal.Decimal
	// TotalOwed is the actor's outstanding debt to others.
	TotalOwed decimal.Decimal
	// TotalReceivable is what others still owe the actor.
	TotalReceivable decimal.Decimal
}

// DebtEdge represents a debt from one actor to another.
type DebtEdge struct {
	From   models.ParticipantRef // who owes
	To     models.ParticipantRef // who is owed
	Amount decimal.Decimal
}

// Position classifies a transaction from one actor's point of view.
type Position string

const (
	PositionNone    Position = "none"
	PositionOwes    Position = "owes"
	PositionIsOwed  Position = "is_owed"
	PositionSettled Position = "settled"
)

// PositionFor tells whether actor owes money, is owed money, or is square on tx,
// along with the amount involved.
func PositionFor(tx *models.GroupTransaction, actor models.ParticipantRef) (Position, decimal.Decimal) {
	if tx.Payer == actor {
		if out := tx.Outstanding(); out.IsPositive() {
			return PositionIsOwed, out
		}
		return PositionSettled, tx.TotalAmount
	}
	for _, p := range tx.Participants {
		if p.Ref != actor {
			continue
		}
		if p.Settled {
			return PositionSettled, p.ShareAmount
		}
		return PositionOwes, p.ShareAmount
	}
	return PositionNone, decimal.Zero
}

// CalculateGroupBalances aggregates outstanding obligations across transactions.
//
// Algorithm:
// - The payer is credited with every unsettled share of other participants
// - Each unsettled participant owes their share to the payer
// - net_balance = receivable - owed
// - Debt edges: simplified using greedy matching over net balances
func CalculateGroupBalances(txs []models.GroupTransaction) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(ref models.ParticipantRef) *MemberBalance {
		key := ref.Key()
		if b, ok := balances[key]; ok {
			return b
		}
		b := &MemberBalance{Member: ref}
		balances[key] = b
		return b
	}

	for _, tx := range txs {
		if tx.Payer.IsZero() {
			continue
		}
		payer := get(tx.Payer)
		payer.TotalPaid = payer.TotalPaid.Add(tx.TotalAmount)

		for _, p := range tx.Participants {
			if p.Ref == tx.Payer {
				continue
			}
			debtor := get(p.Ref)
			if p.Settled {
				continue
			}
			debtor.TotalOwed = debtor.TotalOwed.Add(p.ShareAmount)
			payer.TotalReceivable = payer.TotalReceivable.Add(p.ShareAmount)
		}
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalReceivable.Sub(bal.TotalOwed)
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].Member.Key() < memberBalances[j].Member.Key()
	})

	// Largest debts first so the greedy pass produces few edges.
	var creditors, debtors []MemberBalance
	for _, bal := range memberBalances {
		if bal.NetBalance.IsPositive() {
			creditors = append(creditors, bal)
		} else if bal.NetBalance.IsNegative() {
			debtors = append(debtors, bal)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].NetBalance.GreaterThan(creditors[j].NetBalance)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetBalance.LessThan(debtors[j].NetBalance)
	})

	var edges []DebtEdge
	debtorLeft := make([]decimal.Decimal, len(debtors))
	for k, d := range debtors {
		debtorLeft[k] = d.NetBalance.Neg()
	}
	creditorLeft := make([]decimal.Decimal, len(creditors))
	for k, c := range creditors {
		creditorLeft[k] = c.NetBalance
	}

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtorLeft[i], creditorLeft[j])
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].Member,
				To:     creditors[j].Member,
				Amount: amount,
			})
		}
		debtorLeft[i] = debtorLeft[i].Sub(amount)
		creditorLeft[j] = creditorLeft[j].Sub(amount)
		if !debtorLeft[i].IsPositive() {
			i++
		}
		if !creditorLeft[j].IsPositive() {
			j++
		}
	}

	return memberBalances, edges
}
