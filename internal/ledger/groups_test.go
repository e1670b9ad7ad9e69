package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/notify/mocks"
	"github.com/mmynk/splitledger/internal/settlement"
)

func (f *fixture) group(owner Actor, members ...Actor) *models.Group {
	f.t.Helper()
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	g, err := f.svc.CreateGroup(f.ctx, owner, "Trip", ids)
	require.NoError(f.t, err)
	return g
}

func participants(refs ...models.ParticipantRef) []ParticipantInput {
	out := make([]ParticipantInput, len(refs))
	for i, r := range refs {
		out[i] = ParticipantInput{Ref: r}
	}
	return out
}

func (a Actor) ref() models.ParticipantRef {
	return models.Registered(a.UserID)
}

func TestCreateGroupTransaction_EqualSplit(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	carol := f.user("carol@example.com")
	g := f.group(alice, bob, carol)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: g.ID, Payer: alice.ref(), Description: "Villa", Amount: dec("90000"),
		Strategy: models.EqualSplit, CategoryID: "housing",
		Participants: participants(alice.ref(), bob.ref(), carol.ref()),
	})
	require.NoError(t, err)
	assertAmount(t, "90000", tx.TotalAmount)
	require.Len(t, tx.Participants, 3)
	for _, p := range tx.Participants {
		assertAmount(t, "30000", p.ShareAmount)
		assert.False(t, p.Settled)
	}

	sum, err := f.svc.GroupSummary(f.ctx, bob, g.ID)
	require.NoError(t, err)
	for _, b := range sum.Balances {
		if b.Member == alice.ref() {
			assertAmount(t, "90000", b.TotalPaid)
			assertAmount(t, "60000", b.TotalReceivable)
		}
	}
	require.Len(t, sum.Debts, 2)
}

func TestCreateGroupTransaction_SharesAlwaysSumToTotal(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	carol := f.user("carol@example.com")
	g := f.group(alice, bob, carol)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: g.ID, Payer: alice.ref(), Amount: dec("100"), Strategy: models.EqualSplit,
		Participants: participants(alice.ref(), bob.ref(), carol.ref()),
	})
	require.NoError(t, err)

	total := dec("0")
	for _, p := range tx.Participants {
		total = total.Add(p.ShareAmount)
	}
	assertAmount(t, "100", total)
	assertAmount(t, "33.34", tx.Participants[0].ShareAmount)
}

func TestCreateGroupTransaction_PayerForOthers(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	g := f.group(alice, bob)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: g.ID, Payer: alice.ref(), Description: "Tickets", Amount: dec("20000"),
		Strategy:     models.PayerForOthers,
		Participants: participants(bob.ref(), models.Unregistered("Dan@Example.com")),
	})
	require.NoError(t, err)
	assertAmount(t, "40000", tx.TotalAmount)
	require.Len(t, tx.Participants, 2)
	assertAmount(t, "20000", tx.Participants[0].ShareAmount)
	assertAmount(t, "20000", tx.Participants[1].ShareAmount)
	assert.Equal(t, "dan@example.com", tx.Participants[1].Ref.Email)

	stored, err := f.svc.GetGroupTransaction(f.ctx, bob, g.ID, tx.ID)
	require.NoError(t, err)
	require.Len(t, stored.Participants, 2)
	for i, p := range stored.Participants {
		assert.Equal(t, tx.Participants[i].Ref, p.Ref)
		assertAmount(t, "20000", p.ShareAmount)
		assert.Nil(t, p.Percentage)
	}
}

func TestCreateGroupTransaction_PercentageSplit(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	g := f.group(alice, bob)

	in := GroupTxInput{
		GroupID: g.ID, Payer: bob.ref(), Amount: dec("1000"), Strategy: models.PercentageSplit,
		Participants: []ParticipantInput{
			{Ref: alice.ref(), Percentage: dec("70")},
			{Ref: bob.ref(), Percentage: dec("30")},
		},
	}
	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, in)
	require.NoError(t, err)
	assertAmount(t, "700", tx.Participants[0].ShareAmount)
	require.NotNil(t, tx.Participants[0].Percentage)
	assertAmount(t, "70", *tx.Participants[0].Percentage)

	in.Participants[1].Percentage = dec("20")
	_, err = f.svc.CreateGroupTransaction(f.ctx, alice, in)
	assert.ErrorIs(t, err, calculator.ErrInvalidPercentages)
}

func TestCreateGroupTransaction_Rejections(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	eve := f.user("eve@example.com")
	g := f.group(alice, bob)

	base := func() GroupTxInput {
		return GroupTxInput{
			GroupID: g.ID, Payer: alice.ref(), Amount: dec("100"), Strategy: models.EqualSplit,
			Participants: participants(alice.ref(), bob.ref()),
		}
	}

	tests := []struct {
		name    string
		actor   Actor
		mutate  func(in *GroupTxInput)
		wantErr error
	}{
		{"outsider", eve, func(in *GroupTxInput) {}, ErrNotGroupMember},
		{"negative amount", alice, func(in *GroupTxInput) { in.Amount = dec("-1") }, calculator.ErrInvalidAmount},
		{"unknown strategy", alice, func(in *GroupTxInput) { in.Strategy = "round_robin" }, calculator.ErrUnknownStrategy},
		{"no participants", alice, func(in *GroupTxInput) { in.Participants = nil }, calculator.ErrMissingParticipants},
		{"non-member participant", alice, func(in *GroupTxInput) {
			in.Participants = participants(alice.ref(), eve.ref())
		}, ErrInvalidMember},
		{"duplicate participant", alice, func(in *GroupTxInput) {
			in.Participants = participants(bob.ref(), bob.ref())
		}, ErrDuplicateMember},
		{"non-member payer", alice, func(in *GroupTxInput) { in.Payer = eve.ref() }, ErrInvalidPayer},
		{"missing group", alice, func(in *GroupTxInput) { in.GroupID = "nope" }, ErrGroupNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := f.svc.CreateGroupTransaction(f.ctx, tt.actor, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	txs, err := f.svc.ListGroupTransactions(f.ctx, alice, g.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateGroupTransaction_PayerSingleIgnoresParticipants(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	g := f.group(alice, bob)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, bob, GroupTxInput{
		GroupID: g.ID, Payer: bob.ref(), Amount: dec("250"), Strategy: models.PayerSingle,
		Participants: participants(alice.ref()),
	})
	require.NoError(t, err)
	assertAmount(t, "250", tx.TotalAmount)
	assert.Empty(t, tx.Participants)
}

func TestSettleParticipant_IsOneWay(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	bobWallet := f.wallet(bob, "IDR", "1000")
	g := f.group(alice, bob)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: g.ID, Payer: alice.ref(), Amount: dec("900"), Strategy: models.EqualSplit,
		Participants: participants(alice.ref(), bob.ref()),
	})
	require.NoError(t, err)

	in := SettleInput{GroupID: g.ID, TransactionID: tx.ID, Participant: bob.ref(), WalletID: bobWallet.ID}
	settled, err := f.svc.SettleParticipant(f.ctx, bob, in)
	require.NoError(t, err)
	p := settled.Participants[1]
	assert.True(t, p.Settled)
	require.NotNil(t, p.SettledAt)
	assert.Equal(t, testNow.Unix(), *p.SettledAt)
	assert.Equal(t, bobWallet.ID, p.WalletID)
	assertAmount(t, "900", settled.TotalAmount)
	assertAmount(t, "450", p.ShareAmount)
	assertAmount(t, "1000", f.walletBalance(bobWallet.ID), "settlement records the wallet, it does not debit it")

	again := in
	again.WalletID = ""
	_, err = f.svc.SettleParticipant(f.ctx, alice, again)
	assert.ErrorIs(t, err, settlement.ErrAlreadySettled)

	stored, err := f.svc.GetGroupTransaction(f.ctx, alice, g.ID, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Participants[1].Settled)
	assert.False(t, stored.Participants[0].Settled)
}

func TestSettleParticipant_Rejections(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	carol := f.user("carol@example.com")
	aliceWallet := f.wallet(alice, "IDR", "1000")
	g := f.group(alice, bob, carol)
	other := f.group(bob)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, bob, GroupTxInput{
		GroupID: g.ID, Payer: bob.ref(), Amount: dec("300"), Strategy: models.EqualSplit,
		Participants: participants(bob.ref(), carol.ref(), models.Unregistered("dan@example.com")),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   Actor
		in      SettleInput
		wantErr error
	}{
		{"unrelated member", alice, SettleInput{Participant: carol.ref()}, nil},
		{"bystander", carol, SettleInput{Participant: models.Unregistered("dan@example.com")}, settlement.ErrNotAuthorized},
		{"wallet of someone else", carol, SettleInput{Participant: carol.ref(), WalletID: aliceWallet.ID}, ErrNotWalletOwner},
		{"not a participant", carol, SettleInput{Participant: alice.ref()}, settlement.ErrParticipantNotFound},
		{"group mismatch", carol, SettleInput{GroupID: other.ID, Participant: carol.ref()}, settlement.ErrInvalidReference},
		{"unknown transaction", carol, SettleInput{TransactionID: "nope", Participant: carol.ref()}, ErrTransactionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			if in.GroupID == "" {
				in.GroupID = g.ID
			}
			if in.TransactionID == "" {
				in.TransactionID = tx.ID
			}
			_, err := f.svc.SettleParticipant(f.ctx, tt.actor, in)
			if tt.wantErr == nil {
				// alice owns the group, so she may settle for anyone.
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolveInvitee_LetsInviteeSettle(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	g := f.group(alice)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: g.ID, Payer: alice.ref(), Amount: dec("50"), Strategy: models.PayerForOthers,
		Participants: participants(models.Unregistered("dan@example.com")),
	})
	require.NoError(t, err)

	dan := f.user("dan@example.com")

	// Before resolution the invitee is found through the email fallback.
	_, err = f.svc.SettleParticipant(f.ctx, dan, SettleInput{
		GroupID: g.ID, TransactionID: tx.ID, Participant: dan.ref(),
	})
	require.NoError(t, err)

	n, err := f.svc.ResolveInvitee(f.ctx, "Dan@example.com", dan.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.store.GetGroupTransaction(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, dan.ref(), stored.Participants[0].Ref)
	assert.True(t, stored.Participants[0].Settled)
}

func TestResolveInvitee_JoinsGroups(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	owed := f.group(alice)
	paid := f.group(bob)
	untouched := f.group(alice)

	_, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
		GroupID: owed.ID, Payer: alice.ref(), Amount: dec("30"), Strategy: models.PayerForOthers,
		Participants: participants(models.Unregistered("dan@example.com")),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateGroupTransaction(f.ctx, bob, GroupTxInput{
		GroupID: paid.ID, Payer: models.Unregistered("dan@example.com"), Amount: dec("20"),
		Strategy: models.PayerForOthers, Participants: participants(bob.ref()),
	})
	require.NoError(t, err)

	dan := f.user("dan@example.com")
	_, err = f.svc.GetGroup(f.ctx, dan, owed.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)

	n, err := f.svc.ResolveInvitee(f.ctx, "dan@example.com", dan.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, g := range []*models.Group{owed, paid} {
		got, err := f.svc.GetGroup(f.ctx, dan, g.ID)
		require.NoError(t, err)
		assert.True(t, got.HasMember(dan.UserID))

		_, err = f.svc.GroupSummary(f.ctx, dan, g.ID)
		assert.NoError(t, err)
	}

	_, err = f.svc.GetGroup(f.ctx, dan, untouched.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

func TestDeleteGroupTransaction(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	carol := f.user("carol@example.com")
	g := f.group(alice, bob, carol)

	tx, err := f.svc.CreateGroupTransaction(f.ctx, bob, GroupTxInput{
		GroupID: g.ID, Payer: bob.ref(), Amount: dec("10"), Strategy: models.PayerForOthers,
		Participants: participants(carol.ref()),
	})
	require.NoError(t, err)

	err = f.svc.DeleteGroupTransaction(f.ctx, carol, g.ID, tx.ID)
	assert.ErrorIs(t, err, ErrNotTxParticipant)

	require.NoError(t, f.svc.DeleteGroupTransaction(f.ctx, alice, g.ID, tx.ID))
	_, err = f.svc.GetGroupTransaction(f.ctx, alice, g.ID, tx.ID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestAddGroupMember(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	g := f.group(alice)

	_, err := f.svc.GetGroup(f.ctx, bob, g.ID)
	assert.ErrorIs(t, err, ErrNotGroupMember)

	_, err = f.svc.AddGroupMember(f.ctx, alice, g.ID, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err := f.svc.AddGroupMember(f.ctx, alice, g.ID, bob.UserID)
	require.NoError(t, err)
	assert.True(t, got.HasMember(bob.UserID))

	_, err = f.svc.AddGroupMember(f.ctx, bob, g.ID, alice.UserID)
	assert.ErrorIs(t, err, ErrNotGroupOwner)

	_, err = f.svc.AddGroupMember(f.ctx, alice, g.ID, bob.UserID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestNotifications(t *testing.T) {
	t.Run("obligation events go to debtors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)

		f := newFixture(t, WithNotifier(notifier))
		alice := f.user("alice@example.com")
		bob := f.user("bob@example.com")

		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil) // member.joined for bob
		g := f.group(alice, bob)

		var created notify.Event
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e notify.Event) error {
			created = e
			return nil
		})
		tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
			GroupID: g.ID, Payer: alice.ref(), Amount: dec("60"), Strategy: models.EqualSplit,
			Participants: participants(alice.ref(), bob.ref(), models.Unregistered("dan@example.com")),
		})
		require.NoError(t, err)

		assert.Equal(t, notify.ObligationCreated, created.Type)
		assert.Equal(t, tx.ID, created.SubjectID)
		assert.Equal(t, []string{bob.UserID, "dan@example.com"}, created.Recipients)
		assert.Equal(t, "60.00", created.Amount)
		assert.Equal(t, testNow, created.OccurredAt)
	})

	t.Run("delivery failure does not fail the operation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).AnyTimes()

		f := newFixture(t, WithNotifier(notifier))
		alice := f.user("alice@example.com")
		bob := f.user("bob@example.com")
		g := f.group(alice, bob)

		tx, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
			GroupID: g.ID, Payer: alice.ref(), Amount: dec("60"), Strategy: models.PayerForOthers,
			Participants: participants(bob.ref()),
		})
		require.NoError(t, err)

		settled, err := f.svc.SettleParticipant(f.ctx, bob, SettleInput{GroupID: g.ID, TransactionID: tx.ID, Participant: bob.ref()})
		require.NoError(t, err)
		assert.True(t, settled.Participants[0].Settled)
	})

	t.Run("rejected operations publish nothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		notifier := mocks.NewMockNotifier(ctrl)
		notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)

		f := newFixture(t, WithNotifier(notifier))
		alice := f.user("alice@example.com")
		g := f.group(alice)

		_, err := f.svc.CreateGroupTransaction(f.ctx, alice, GroupTxInput{
			GroupID: g.ID, Payer: alice.ref(), Amount: dec("0"), Strategy: models.PayerForOthers,
		})
		assert.Error(t, err)
	})
}
