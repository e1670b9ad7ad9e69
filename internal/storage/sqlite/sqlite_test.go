package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Wallets(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wallet := &models.Wallet{OwnerID: "alice", Name: "Cash", Currency: "IDR", Balance: decimal.NewFromInt(100000)}
	if err := store.CreateWallet(ctx, wallet); err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	if wallet.ID == "" {
		t.Fatal("Expected wallet ID to be generated")
	}

	t.Run("GetWallet round trips the decimal balance", func(t *testing.T) {
		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if !got.Balance.Equal(wallet.Balance) {
			t.Errorf("Balance mismatch: got %s, want %s", got.Balance, wallet.Balance)
		}
		if got.Version != 0 {
			t.Errorf("Expected version 0, got %d", got.Version)
		}
	})

	t.Run("UpdateWalletBalance is compare-and-swap", func(t *testing.T) {
		first, _ := store.GetWallet(ctx, wallet.ID)
		stale, _ := store.GetWallet(ctx, wallet.ID)

		first.Balance = decimal.NewFromInt(70000)
		if err := store.UpdateWalletBalance(ctx, first); err != nil {
			t.Fatalf("UpdateWalletBalance failed: %v", err)
		}
		if first.Version != 1 {
			t.Errorf("Expected version 1 after update, got %d", first.Version)
		}

		stale.Balance = decimal.NewFromInt(1)
		err := store.UpdateWalletBalance(ctx, stale)
		if !errors.Is(err, storage.ErrVersionConflict) {
			t.Fatalf("Expected ErrVersionConflict, got %v", err)
		}

		got, _ := store.GetWallet(ctx, wallet.ID)
		if !got.Balance.Equal(decimal.NewFromInt(70000)) {
			t.Errorf("Stale write must not land: balance %s", got.Balance)
		}
	})

	t.Run("GetWallet returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetWallet(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("personal transactions filter by type and date", func(t *testing.T) {
		loc := &models.GeoPoint{Lat: -6.2, Lng: 106.8}
		txs := []*models.PersonalTransaction{
			{WalletID: wallet.ID, UserID: "alice", Type: models.Expense, Amount: decimal.NewFromInt(10), CategoryID: "food", Date: 100, Location: loc},
			{WalletID: wallet.ID, UserID: "alice", Type: models.Income, Amount: decimal.NewFromInt(20), CategoryID: "salary", Date: 200},
			{WalletID: wallet.ID, UserID: "alice", Type: models.Expense, Amount: decimal.NewFromInt(30), CategoryID: "food", Date: 300},
		}
		for _, tx := range txs {
			if err := store.CreatePersonalTransaction(ctx, tx); err != nil {
				t.Fatalf("CreatePersonalTransaction failed: %v", err)
			}
		}

		got, err := store.ListPersonalTransactions(ctx, storage.PersonalTxFilter{WalletID: wallet.ID, Type: models.Expense})
		if err != nil {
			t.Fatalf("ListPersonalTransactions failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 expenses, got %d", len(got))
		}
		if got[0].Date != 300 {
			t.Errorf("Expected newest first, got date %d", got[0].Date)
		}

		got, err = store.ListPersonalTransactions(ctx, storage.PersonalTxFilter{WalletID: wallet.ID, From: 150, To: 250})
		if err != nil {
			t.Fatalf("ListPersonalTransactions failed: %v", err)
		}
		if len(got) != 1 || got[0].Type != models.Income {
			t.Errorf("Expected the single income in range, got %+v", got)
		}

		first, err := store.GetPersonalTransaction(ctx, txs[0].ID)
		if err != nil {
			t.Fatalf("GetPersonalTransaction failed: %v", err)
		}
		if first.Location == nil || first.Location.Lat != loc.Lat {
			t.Errorf("Location not persisted: %+v", first.Location)
		}

		if err := store.DeletePersonalTransaction(ctx, txs[0].ID); err != nil {
			t.Fatalf("DeletePersonalTransaction failed: %v", err)
		}
		if err := store.DeletePersonalTransaction(ctx, txs[0].ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSQLiteStore_WithTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	wallet := &models.Wallet{OwnerID: "alice", Name: "Cash", Currency: "USD", Balance: decimal.NewFromInt(50)}
	if err := store.CreateWallet(ctx, wallet); err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(l storage.Ledger) error {
		w, err := l.GetWallet(ctx, wallet.ID)
		if err != nil {
			return err
		}
		w.Balance = decimal.Zero
		if err := l.UpdateWalletBalance(ctx, w); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	got, _ := store.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(50)) || got.Version != 0 {
		t.Errorf("Rollback did not restore wallet: %s v%d", got.Balance, got.Version)
	}
}

func TestSQLiteStore_GroupTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Ski Trip", OwnerID: "alice", Members: []string{"bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	pct := decimal.NewFromInt(50)
	tx := &models.GroupTransaction{
		GroupID:     group.ID,
		Payer:       models.Registered("alice"),
		Description: "Cabin",
		TotalAmount: decimal.NewFromInt(300),
		Strategy:    models.PercentageSplit,
		CategoryID:  "housing",
		CreatedBy:   "alice",
		Participants: []models.Participant{
			{Ref: models.Registered("bob"), ShareAmount: decimal.NewFromInt(150), Percentage: &pct},
			{Ref: models.Unregistered("carol@example.com"), ShareAmount: decimal.NewFromInt(150), Percentage: &pct},
		},
	}
	if err := store.CreateGroupTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateGroupTransaction failed: %v", err)
	}

	t.Run("GetGroup includes owner as member", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !got.HasMember("alice") || !got.HasMember("bob") || len(got.Members) != 2 {
			t.Errorf("Unexpected members: %v", got.Members)
		}
	})

	t.Run("participants keep their order and fields", func(t *testing.T) {
		got, err := store.GetGroupTransaction(ctx, tx.ID)
		if err != nil {
			t.Fatalf("GetGroupTransaction failed: %v", err)
		}
		if len(got.Participants) != 2 {
			t.Fatalf("Expected 2 participants, got %d", len(got.Participants))
		}
		if got.Participants[0].Ref != models.Registered("bob") {
			t.Errorf("Order lost: %+v", got.Participants[0].Ref)
		}
		if got.Participants[1].Percentage == nil || !got.Participants[1].Percentage.Equal(pct) {
			t.Errorf("Percentage lost: %v", got.Participants[1].Percentage)
		}
	})

	t.Run("UpdateParticipant persists settlement", func(t *testing.T) {
		at := int64(1700000000)
		p := tx.Participants[0]
		p.Settled = true
		p.SettledAt = &at
		p.WalletID = "w1"
		if err := store.UpdateParticipant(ctx, tx.ID, 0, &p); err != nil {
			t.Fatalf("UpdateParticipant failed: %v", err)
		}

		got, _ := store.GetGroupTransaction(ctx, tx.ID)
		if !got.Participants[0].Settled || *got.Participants[0].SettledAt != at || got.Participants[0].WalletID != "w1" {
			t.Errorf("Settlement not persisted: %+v", got.Participants[0])
		}
		if got.Participants[1].Settled {
			t.Error("Other participant must stay outstanding")
		}
	})

	t.Run("ResolveInvitee registers the invitee", func(t *testing.T) {
		n, err := store.ResolveInvitee(ctx, "Carol@Example.com", "carol")
		if err != nil {
			t.Fatalf("ResolveInvitee failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 row resolved, got %d", n)
		}
		got, _ := store.GetGroupTransaction(ctx, tx.ID)
		if got.Participants[1].Ref != models.Registered("carol") {
			t.Errorf("Invitee not resolved: %+v", got.Participants[1].Ref)
		}
		g, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if !g.HasMember("carol") {
			t.Errorf("Resolved invitee not a member: %v", g.Members)
		}
	})

	t.Run("ListGroupTransactions attaches participants", func(t *testing.T) {
		txs, err := store.ListGroupTransactions(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupTransactions failed: %v", err)
		}
		if len(txs) != 1 || len(txs[0].Participants) != 2 {
			t.Errorf("Unexpected list result: %+v", txs)
		}
	})

	t.Run("DeleteGroupTransaction cascades", func(t *testing.T) {
		if err := store.DeleteGroupTransaction(ctx, tx.ID); err != nil {
			t.Fatalf("DeleteGroupTransaction failed: %v", err)
		}
		if _, err := store.GetGroupTransaction(ctx, tx.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStore_Families(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	family := &models.Family{Name: "Home", OwnerID: "alice", Currency: "IDR"}
	if err := store.CreateFamily(ctx, family); err != nil {
		t.Fatalf("CreateFamily failed: %v", err)
	}
	if err := store.AddFamilyMember(ctx, &models.Member{FamilyID: family.ID, UserID: "alice", Role: models.FamilyOwner}); err != nil {
		t.Fatalf("AddFamilyMember failed: %v", err)
	}

	bal := models.NewFamilyBalance(family.ID)
	bal.MemberBalances["alice"] = decimal.Zero
	if err := store.CreateFamilyBalance(ctx, bal); err != nil {
		t.Fatalf("CreateFamilyBalance failed: %v", err)
	}

	t.Run("SaveFamilyBalance replaces the mirror", func(t *testing.T) {
		got, err := store.GetFamilyBalance(ctx, family.ID)
		if err != nil {
			t.Fatalf("GetFamilyBalance failed: %v", err)
		}
		got.Balance = decimal.NewFromInt(50000)
		got.MemberBalances["alice"] = decimal.NewFromInt(123)
		got.MemberBalances["bob"] = decimal.NewFromInt(7)
		if err := store.SaveFamilyBalance(ctx, got); err != nil {
			t.Fatalf("SaveFamilyBalance failed: %v", err)
		}

		again, _ := store.GetFamilyBalance(ctx, family.ID)
		if !again.Balance.Equal(decimal.NewFromInt(50000)) {
			t.Errorf("Pool mismatch: %s", again.Balance)
		}
		if len(again.MemberBalances) != 2 || !again.MemberBalance("bob").Equal(decimal.NewFromInt(7)) {
			t.Errorf("Mirror mismatch: %v", again.MemberBalances)
		}

		stale := *bal
		if err := store.SaveFamilyBalance(ctx, &stale); !errors.Is(err, storage.ErrVersionConflict) {
			t.Errorf("Expected ErrVersionConflict, got %v", err)
		}
	})

	t.Run("family transactions filter by tag and scope", func(t *testing.T) {
		entries := []*models.FamilyTransaction{
			{FamilyID: family.ID, Type: models.Income, Amount: decimal.NewFromInt(100), CategoryID: "transfer",
				Scope: models.ScopeFamily, Tags: []string{models.TagTransfer, models.TagToFamily}, CreatedBy: "alice",
				LinkedWalletID: "w1", LinkedTransactionID: "ptx1"},
			{FamilyID: family.ID, Type: models.Expense, Amount: decimal.NewFromInt(40), CategoryID: "groceries",
				Scope: models.ScopeFamily, CreatedBy: "alice"},
		}
		for _, e := range entries {
			if err := store.CreateFamilyTransaction(ctx, e); err != nil {
				t.Fatalf("CreateFamilyTransaction failed: %v", err)
			}
		}

		transfers, err := store.ListFamilyTransactions(ctx, storage.FamilyTxFilter{FamilyID: family.ID, Tag: models.TagTransfer})
		if err != nil {
			t.Fatalf("ListFamilyTransactions failed: %v", err)
		}
		if len(transfers) != 1 || !transfers[0].IsTransfer() || !transfers[0].HasTag(models.TagToFamily) {
			t.Errorf("Unexpected transfers: %+v", transfers)
		}

		linked, err := store.GetFamilyTransactionByLinkedTx(ctx, "ptx1")
		if err != nil {
			t.Fatalf("GetFamilyTransactionByLinkedTx failed: %v", err)
		}
		if linked.ID != entries[0].ID || !linked.IsLinkedToWallet() {
			t.Errorf("Unexpected linked entry: %+v", linked)
		}

		all, _ := store.ListFamilyTransactions(ctx, storage.FamilyTxFilter{FamilyID: family.ID, Scope: models.ScopeFamily})
		if len(all) != 2 {
			t.Errorf("Expected 2 family-scope entries, got %d", len(all))
		}
	})

	t.Run("DeleteFamily cascades", func(t *testing.T) {
		if err := store.DeleteFamily(ctx, family.ID); err != nil {
			t.Fatalf("DeleteFamily failed: %v", err)
		}
		if _, err := store.GetFamilyBalance(ctx, family.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected balance to be gone, got %v", err)
		}
		left, _ := store.ListFamilyTransactions(ctx, storage.FamilyTxFilter{FamilyID: family.ID})
		if len(left) != 0 {
			t.Errorf("Expected no transactions left, got %d", len(left))
		}
	})
}

func TestSQLiteStore_Categories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c, err := store.GetCategory(ctx, models.TransferCategoryID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if c.Kind != "transfer" {
		t.Errorf("Unexpected transfer category: %+v", c)
	}

	all, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(all) < 10 {
		t.Errorf("Expected seeded categories, got %d", len(all))
	}

	if _, err := store.GetCategory(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID || got.Role != models.RoleUser {
		t.Errorf("Unexpected user: %+v", got)
	}

	if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	users, err := store.GetUsersByIDs(ctx, []string{user.ID, "missing"})
	if err != nil {
		t.Fatalf("GetUsersByIDs failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}
