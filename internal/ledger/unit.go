package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
)

// Apply returns balance after an income (+) or expense (-) of amount.
// Every balance change in the ledger goes through Apply or Revert.
func Apply(balance decimal.Decimal, t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return balance.Add(signed(t, amount))
}

// Revert is the exact inverse of Apply.
func Revert(balance decimal.Decimal, t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	return balance.Sub(signed(t, amount))
}

func signed(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == models.Expense {
		return amount.Neg()
	}
	return amount
}

type mirrorKey struct {
	familyID string
	userID   string
}

// unit is one attempt at a compound operation. Balance records are loaded
// once, changed in memory through Apply/Revert, checked, and written with
// compare-and-swap in flush. Everything runs inside one storage transaction.
type unit struct {
	ctx context.Context
	l   storage.Ledger
	now time.Time

	wallets  map[string]*models.Wallet
	balances map[string]*models.FamilyBalance
	dirtyW   map[string]bool
	dirtyB   map[string]bool
	dropped  map[string]bool

	// loadedW and loadedB hold balances as first read in this unit.
	loadedW map[string]decimal.Decimal
	loadedB map[string]decimal.Decimal

	// mirrors maps a member mirror entry to the wallet it follows.
	mirrors map[mirrorKey]string

	// forced skips the non-negative check. Used for compensation.
	forced bool

	events []notify.Event
}

func newUnit(ctx context.Context, l storage.Ledger, now time.Time) *unit {
	return &unit{
		ctx:      ctx,
		l:        l,
		now:      now,
		wallets:  make(map[string]*models.Wallet),
		balances: make(map[string]*models.FamilyBalance),
		dirtyW:   make(map[string]bool),
		dirtyB:   make(map[string]bool),
		dropped:  make(map[string]bool),
		loadedW:  make(map[string]decimal.Decimal),
		loadedB:  make(map[string]decimal.Decimal),
		mirrors:  make(map[mirrorKey]string),
	}
}

func (u *unit) wallet(id string) (*models.Wallet, error) {
	if w, ok := u.wallets[id]; ok {
		return w, nil
	}
	w, err := u.l.GetWallet(u.ctx, id)
	if err != nil {
		return nil, lookup(err, wrapf(ErrWalletNotFound, "wallet %s", id))
	}
	u.wallets[id] = w
	u.loadedW[id] = w.Balance
	return w, nil
}

// ownedWallet loads a wallet and checks it belongs to userID.
func (u *unit) ownedWallet(id, userID string) (*models.Wallet, error) {
	w, err := u.wallet(id)
	if err != nil {
		return nil, err
	}
	if w.OwnerID != userID {
		return nil, ErrNotWalletOwner
	}
	return w, nil
}

func (u *unit) applyToWallet(walletID string, t models.TransactionType, amount decimal.Decimal) error {
	w, err := u.wallet(walletID)
	if err != nil {
		return err
	}
	w.Balance = Apply(w.Balance, t, amount)
	u.dirtyW[walletID] = true
	return nil
}

func (u *unit) revertFromWallet(walletID string, t models.TransactionType, amount decimal.Decimal) error {
	w, err := u.wallet(walletID)
	if err != nil {
		return err
	}
	w.Balance = Revert(w.Balance, t, amount)
	u.dirtyW[walletID] = true
	return nil
}

func (u *unit) familyBalance(familyID string) (*models.FamilyBalance, error) {
	if b, ok := u.balances[familyID]; ok {
		return b, nil
	}
	b, err := u.l.GetFamilyBalance(u.ctx, familyID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrFamilyNotFound, "balance of family %s", familyID))
	}
	u.balances[familyID] = b
	u.loadedB[familyID] = b.Balance
	return b, nil
}

func (u *unit) applyToPool(familyID string, t models.TransactionType, amount decimal.Decimal) error {
	b, err := u.familyBalance(familyID)
	if err != nil {
		return err
	}
	b.Balance = Apply(b.Balance, t, amount)
	u.dirtyB[familyID] = true
	return nil
}

func (u *unit) revertFromPool(familyID string, t models.TransactionType, amount decimal.Decimal) error {
	b, err := u.familyBalance(familyID)
	if err != nil {
		return err
	}
	b.Balance = Revert(b.Balance, t, amount)
	u.dirtyB[familyID] = true
	return nil
}

// syncMirror marks the member's mirror entry to be overwritten with the
// wallet's final balance at flush time.
func (u *unit) syncMirror(familyID, userID, walletID string) error {
	if _, err := u.familyBalance(familyID); err != nil {
		return err
	}
	if _, err := u.wallet(walletID); err != nil {
		return err
	}
	u.mirrors[mirrorKey{familyID, userID}] = walletID
	u.dirtyB[familyID] = true
	return nil
}

// dropMirror removes a member's mirror entry.
func (u *unit) dropMirror(familyID, userID string) error {
	b, err := u.familyBalance(familyID)
	if err != nil {
		return err
	}
	delete(b.MemberBalances, userID)
	delete(u.mirrors, mirrorKey{familyID, userID})
	u.dirtyB[familyID] = true
	return nil
}

// dropFamily forgets a family whose rows are being deleted.
func (u *unit) dropFamily(familyID string) {
	u.dropped[familyID] = true
	delete(u.dirtyB, familyID)
	for k := range u.mirrors {
		if k.familyID == familyID {
			delete(u.mirrors, k)
		}
	}
}

func (u *unit) emit(e notify.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = u.now
	}
	u.events = append(u.events, e)
}

// flush resolves mirrors, enforces non-negative balances and writes every
// touched balance record. Nothing is written if a check fails.
func (u *unit) flush() error {
	for k, walletID := range u.mirrors {
		if u.dropped[k.familyID] {
			continue
		}
		b := u.balances[k.familyID]
		b.MemberBalances[k.userID] = u.wallets[walletID].Balance
	}

	walletIDs := sortedKeys(u.dirtyW)
	familyIDs := sortedKeys(u.dirtyB)

	if !u.forced {
		for _, id := range walletIDs {
			if overdrawn(u.wallets[id].Balance, u.loadedW[id]) {
				return wrapf(ErrInsufficientBalance, "wallet %s", id)
			}
		}
		for _, id := range familyIDs {
			if overdrawn(u.balances[id].Balance, u.loadedB[id]) {
				return wrapf(ErrInsufficientBalance, "family %s pool", id)
			}
		}
	}

	for _, id := range walletIDs {
		if err := u.l.UpdateWalletBalance(u.ctx, u.wallets[id]); err != nil {
			return internal(err)
		}
	}
	for _, id := range familyIDs {
		if err := u.l.SaveFamilyBalance(u.ctx, u.balances[id]); err != nil {
			return internal(err)
		}
	}
	return nil
}

// overdrawn reports whether a unit pushed a balance below zero. A balance
// already negative from compensation may still rise, or stay where it is.
func overdrawn(final, loaded decimal.Decimal) bool {
	return final.IsNegative() && final.LessThan(loaded)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
