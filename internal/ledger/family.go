package ledger

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/notify"
	"github.com/mmynk/splitledger/internal/storage"
)

// FamilyTxInput describes a family transaction to create or the new state of
// one being edited. On update an empty Scope keeps the current scope and an
// empty WalletID keeps the current wallet.
type FamilyTxInput struct {
	FamilyID   string
	Type       models.TransactionType
	Amount     decimal.Decimal
	CategoryID string
	Scope      models.Scope
	WalletID   string
	Tags       []string
	Note       string
	Date       int64
}

// FamilyTxResult is a family transaction with the balances it touched.
type FamilyTxResult struct {
	Transaction *models.FamilyTransaction
	Balance     *models.FamilyBalance
	// Wallet is set when the entry is linked to a wallet.
	Wallet *models.Wallet
}

// CreateFamily creates a family owned by the actor with an empty pool.
func (s *Service) CreateFamily(ctx context.Context, actor Actor, name, currency string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	f := &models.Family{Name: name, OwnerID: actor.UserID, Currency: currency}
	err = s.run(ctx, "create_family", func(u *unit) error {
		f.CreatedAt = u.now.Unix()
		if err := u.l.CreateFamily(u.ctx, f); err != nil {
			return internal(err)
		}
		owner := &models.Member{FamilyID: f.ID, UserID: actor.UserID, Role: models.FamilyOwner, JoinedAt: f.CreatedAt}
		if err := u.l.AddFamilyMember(u.ctx, owner); err != nil {
			return internal(err)
		}
		b := models.NewFamilyBalance(f.ID)
		b.MemberBalances[actor.UserID] = decimal.Zero
		b.UpdatedAt = f.CreatedAt
		return internal(u.l.CreateFamilyBalance(u.ctx, b))
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// AddFamilyMember adds a user, found by ID or email, to the family. Only the
// owner may add members.
func (s *Service) AddFamilyMember(ctx context.Context, actor Actor, familyID, userID, email string) (*models.Member, error) {
	if userID == "" && strings.TrimSpace(email) == "" {
		return nil, ErrMemberRequired
	}

	var m *models.Member
	err := s.run(ctx, "add_family_member", func(u *unit) error {
		f, err := s.family(u, familyID)
		if err != nil {
			return err
		}
		if f.OwnerID != actor.UserID {
			return ErrNotFamilyOwner
		}

		var user *models.User
		if userID != "" {
			user, err = u.l.GetUserByID(u.ctx, userID)
		} else {
			user, err = u.l.GetUserByEmail(u.ctx, email)
		}
		if err != nil {
			return lookup(err, ErrUserNotFound)
		}

		if _, err := u.l.GetFamilyMember(u.ctx, familyID, user.ID); err == nil {
			return ErrAlreadyMember
		} else if err := lookup(err, nil); err != nil {
			return err
		}

		m = &models.Member{FamilyID: familyID, UserID: user.ID, Role: models.FamilyMember, JoinedAt: u.now.Unix()}
		if err := u.l.AddFamilyMember(u.ctx, m); err != nil {
			return internal(err)
		}

		b, err := u.familyBalance(familyID)
		if err != nil {
			return err
		}
		if _, ok := b.MemberBalances[user.ID]; !ok {
			b.MemberBalances[user.ID] = decimal.Zero
			u.dirtyB[familyID] = true
		}

		u.emit(notify.Event{
			Type:       notify.MemberJoined,
			ActorID:    actor.UserID,
			ScopeID:    familyID,
			SubjectID:  user.ID,
			Recipients: []string{user.ID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveFamilyMember removes a member after reversing the balance effect of
// every transaction they recorded in the family. The owner may remove anyone
// but themself; a member may remove themself.
func (s *Service) RemoveFamilyMember(ctx context.Context, actor Actor, familyID, userID string) (*models.FamilyBalance, error) {
	var b *models.FamilyBalance
	err := s.run(ctx, "remove_family_member", func(u *unit) error {
		f, err := s.family(u, familyID)
		if err != nil {
			return err
		}
		if actor.UserID != f.OwnerID && actor.UserID != userID {
			return ErrNotFamilyOwner
		}
		if userID == f.OwnerID {
			return ErrOwnerCannotLeave
		}
		if _, err := u.l.GetFamilyMember(u.ctx, familyID, userID); err != nil {
			return lookup(err, ErrMemberNotFound)
		}

		txs, err := u.l.ListFamilyTransactions(u.ctx, storage.FamilyTxFilter{FamilyID: familyID, CreatedBy: userID})
		if err != nil {
			return internal(err)
		}
		u.forced = true
		for i := range txs {
			if err := s.reverseFamilyTx(u, &txs[i]); err != nil {
				return err
			}
			if err := u.l.DeleteFamilyTransaction(u.ctx, txs[i].ID); err != nil {
				return internal(err)
			}
		}

		if err := u.dropMirror(familyID, userID); err != nil {
			return err
		}
		if err := u.l.RemoveFamilyMember(u.ctx, familyID, userID); err != nil {
			return internal(err)
		}

		u.emit(notify.Event{
			Type:       notify.MemberRemoved,
			ActorID:    actor.UserID,
			ScopeID:    familyID,
			SubjectID:  userID,
			Recipients: []string{userID},
		})
		b, err = u.familyBalance(familyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteFamily reverses every family transaction, including linked wallet
// transactions, then deletes the family. Owner only.
func (s *Service) DeleteFamily(ctx context.Context, actor Actor, familyID string) error {
	return s.run(ctx, "delete_family", func(u *unit) error {
		f, err := s.family(u, familyID)
		if err != nil {
			return err
		}
		if f.OwnerID != actor.UserID {
			return ErrNotFamilyOwner
		}

		txs, err := u.l.ListFamilyTransactions(u.ctx, storage.FamilyTxFilter{FamilyID: familyID})
		if err != nil {
			return internal(err)
		}
		members, err := u.l.ListFamilyMembers(u.ctx, familyID)
		if err != nil {
			return internal(err)
		}

		u.forced = true
		for i := range txs {
			if err := s.reverseFamilyTx(u, &txs[i]); err != nil {
				return err
			}
		}
		u.dropFamily(familyID)
		if err := u.l.DeleteFamily(u.ctx, familyID); err != nil {
			return internal(err)
		}

		for _, m := range members {
			if m.UserID == actor.UserID {
				continue
			}
			u.emit(notify.Event{
				Type:       notify.MemberRemoved,
				ActorID:    actor.UserID,
				ScopeID:    familyID,
				SubjectID:  m.UserID,
				Recipients: []string{m.UserID},
			})
		}
		return nil
	})
}

// GetFamilyBalance returns the pool and member mirror. Members only.
func (s *Service) GetFamilyBalance(ctx context.Context, actor Actor, familyID string) (*models.FamilyBalance, error) {
	var b *models.FamilyBalance
	err := s.read(ctx, func(l storage.Ledger) error {
		if err := requireFamilyMember(ctx, l, familyID, actor.UserID); err != nil {
			return err
		}
		var err error
		b, err = l.GetFamilyBalance(ctx, familyID)
		return lookup(err, ErrFamilyNotFound)
	})
	return b, err
}

// ListFamilyMembers returns the family's members. Members only.
func (s *Service) ListFamilyMembers(ctx context.Context, actor Actor, familyID string) ([]models.Member, error) {
	var members []models.Member
	err := s.read(ctx, func(l storage.Ledger) error {
		if err := requireFamilyMember(ctx, l, familyID, actor.UserID); err != nil {
			return err
		}
		var err error
		members, err = l.ListFamilyMembers(ctx, familyID)
		return err
	})
	return members, err
}

// CreateFamilyTransaction records income or expense in a family. Family
// scope moves the pool. Personal scope requires one of the actor's wallets:
// a linked wallet transaction is created and applied, and the actor's mirror
// entry is set to the wallet's new balance.
func (s *Service) CreateFamilyTransaction(ctx context.Context, actor Actor, in FamilyTxInput) (*FamilyTxResult, error) {
	if err := validateEntry(in.Type, in.Amount); err != nil {
		return nil, err
	}
	if !in.Scope.Valid() {
		return nil, ErrInvalidScope
	}
	if in.Scope == models.ScopePersonal && in.WalletID == "" {
		return nil, ErrWalletRequired
	}
	tags, err := checkUserTags(in.Tags)
	if err != nil {
		return nil, err
	}

	var res FamilyTxResult
	err = s.run(ctx, "create_family_transaction", func(u *unit) error {
		if err := requireFamilyMember(u.ctx, u.l, in.FamilyID, actor.UserID); err != nil {
			return err
		}
		if err := requireCategory(u.ctx, u.l, in.CategoryID); err != nil {
			return err
		}

		ftx := &models.FamilyTransaction{
			FamilyID:   in.FamilyID,
			Type:       in.Type,
			Amount:     in.Amount,
			CategoryID: in.CategoryID,
			Scope:      in.Scope,
			Tags:       tags,
			CreatedBy:  actor.UserID,
			Note:       in.Note,
			Date:       dateOrNow(in.Date, u),
			CreatedAt:  u.now.Unix(),
		}

		switch in.Scope {
		case models.ScopeFamily:
			if err := u.applyToPool(in.FamilyID, ftx.Type, ftx.Amount); err != nil {
				return err
			}
		case models.ScopePersonal:
			w, err := u.ownedWallet(in.WalletID, actor.UserID)
			if err != nil {
				return err
			}
			if err := s.requireFamilyCurrency(u, in.FamilyID, w); err != nil {
				return err
			}
			ptx, err := s.createLinkedWalletTx(u, ftx, w)
			if err != nil {
				return err
			}
			ftx.LinkedWalletID = w.ID
			ftx.LinkedTransactionID = ptx.ID
			res.Wallet = w
		}

		if err := u.l.CreateFamilyTransaction(u.ctx, ftx); err != nil {
			return internal(err)
		}
		if ftx.IsLinkedToWallet() {
			if err := u.syncMirror(ftx.FamilyID, ftx.CreatedBy, ftx.LinkedWalletID); err != nil {
				return err
			}
		}

		res.Transaction = ftx
		res.Balance, err = u.familyBalance(in.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateFamilyTransaction edits a family transaction. The scope can never
// change. Family scope adjusts the pool by the difference of signed amounts.
// A linked personal entry has its wallet transaction reverted and reapplied,
// then the mirror is reset from the wallet.
func (s *Service) UpdateFamilyTransaction(ctx context.Context, actor Actor, txID string, in FamilyTxInput) (*FamilyTxResult, error) {
	if err := validateEntry(in.Type, in.Amount); err != nil {
		return nil, err
	}
	if in.Scope != "" && !in.Scope.Valid() {
		return nil, ErrInvalidScope
	}
	tags, err := checkUserTags(in.Tags)
	if err != nil {
		return nil, err
	}

	var res FamilyTxResult
	err = s.run(ctx, "update_family_transaction", func(u *unit) error {
		ftx, err := s.familyTx(u, txID)
		if err != nil {
			return err
		}
		if err := requireFamilyMember(u.ctx, u.l, ftx.FamilyID, actor.UserID); err != nil {
			return err
		}
		if in.FamilyID != "" && in.FamilyID != ftx.FamilyID {
			return wrapf(ErrTransactionNotFound, "family transaction %s in family %s", txID, in.FamilyID)
		}
		if in.Scope != "" && in.Scope != ftx.Scope {
			return ErrScopeChange
		}
		if err := s.requireEditor(u, ftx, actor); err != nil {
			return err
		}
		if ftx.IsTransfer() {
			return ErrTransferImmutable
		}
		if err := requireCategory(u.ctx, u.l, in.CategoryID); err != nil {
			return err
		}

		switch {
		case ftx.Scope == models.ScopeFamily:
			if err := u.revertFromPool(ftx.FamilyID, ftx.Type, ftx.Amount); err != nil {
				return err
			}
			if err := u.applyToPool(ftx.FamilyID, in.Type, in.Amount); err != nil {
				return err
			}
		case ftx.IsLinkedToWallet():
			w, err := s.resyncLinkedWalletTx(u, ftx, in)
			if err != nil {
				return err
			}
			res.Wallet = w
		}

		ftx.Type = in.Type
		ftx.Amount = in.Amount
		ftx.CategoryID = in.CategoryID
		ftx.Note = in.Note
		ftx.Tags = tags
		if in.Date != 0 {
			ftx.Date = in.Date
		}
		if err := u.l.UpdateFamilyTransaction(u.ctx, ftx); err != nil {
			return internal(err)
		}

		res.Transaction = ftx
		res.Balance, err = u.familyBalance(ftx.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteFamilyTransaction reverses and deletes a family transaction,
// including its linked wallet transaction.
func (s *Service) DeleteFamilyTransaction(ctx context.Context, actor Actor, txID string) (*models.FamilyBalance, error) {
	var b *models.FamilyBalance
	err := s.run(ctx, "delete_family_transaction", func(u *unit) error {
		ftx, err := s.familyTx(u, txID)
		if err != nil {
			return err
		}
		if err := requireFamilyMember(u.ctx, u.l, ftx.FamilyID, actor.UserID); err != nil {
			return err
		}
		if err := s.requireEditor(u, ftx, actor); err != nil {
			return err
		}

		if err := s.reverseFamilyTx(u, ftx); err != nil {
			return err
		}
		if err := u.l.DeleteFamilyTransaction(u.ctx, ftx.ID); err != nil {
			return internal(err)
		}
		if ftx.IsLinkedToWallet() {
			if err := u.syncMirror(ftx.FamilyID, ftx.CreatedBy, ftx.LinkedWalletID); err != nil {
				return err
			}
		}

		b, err = u.familyBalance(ftx.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListFamilyTransactions returns matching family transactions. Members only.
func (s *Service) ListFamilyTransactions(ctx context.Context, actor Actor, filter storage.FamilyTxFilter) ([]models.FamilyTransaction, error) {
	var txs []models.FamilyTransaction
	err := s.read(ctx, func(l storage.Ledger) error {
		if err := requireFamilyMember(ctx, l, filter.FamilyID, actor.UserID); err != nil {
			return err
		}
		var err error
		txs, err = l.ListFamilyTransactions(ctx, filter)
		return err
	})
	return txs, err
}

// reverseFamilyTx undoes a family transaction's balance effects: the signed
// amount on the pool for family scope, and the linked wallet transaction
// (reverted and deleted) when there is one. The family row is left in place.
func (s *Service) reverseFamilyTx(u *unit, ftx *models.FamilyTransaction) error {
	if ftx.Scope == models.ScopeFamily {
		if err := u.revertFromPool(ftx.FamilyID, ftx.Type, ftx.Amount); err != nil {
			return err
		}
	}
	if !ftx.IsLinkedToWallet() {
		return nil
	}

	ptx, err := u.l.GetPersonalTransaction(u.ctx, ftx.LinkedTransactionID)
	if err != nil {
		return lookup(err, wrapf(ErrTransactionNotFound, "linked wallet transaction %s", ftx.LinkedTransactionID))
	}
	if err := u.revertFromWallet(ptx.WalletID, ptx.Type, ptx.Amount); err != nil {
		return err
	}
	return internal(u.l.DeletePersonalTransaction(u.ctx, ptx.ID))
}

func (s *Service) family(u *unit, familyID string) (*models.Family, error) {
	f, err := u.l.GetFamily(u.ctx, familyID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrFamilyNotFound, "family %s", familyID))
	}
	return f, nil
}

func (s *Service) familyTx(u *unit, txID string) (*models.FamilyTransaction, error) {
	ftx, err := u.l.GetFamilyTransaction(u.ctx, txID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrTransactionNotFound, "family transaction %s", txID))
	}
	return ftx, nil
}

// requireEditor allows the creator and the family owner.
func (s *Service) requireEditor(u *unit, ftx *models.FamilyTransaction, actor Actor) error {
	if ftx.CreatedBy == actor.UserID {
		return nil
	}
	f, err := s.family(u, ftx.FamilyID)
	if err != nil {
		return err
	}
	if f.OwnerID != actor.UserID {
		return ErrNotEditor
	}
	return nil
}

func (s *Service) requireFamilyCurrency(u *unit, familyID string, w *models.Wallet) error {
	f, err := s.family(u, familyID)
	if err != nil {
		return err
	}
	if f.Currency != w.Currency {
		return wrapf(ErrCurrencyMismatch, "wallet %s is %s, family is %s", w.ID, w.Currency, f.Currency)
	}
	return nil
}

func requireFamilyMember(ctx context.Context, l storage.FamilyStore, familyID, userID string) error {
	if _, err := l.GetFamily(ctx, familyID); err != nil {
		return lookup(err, wrapf(ErrFamilyNotFound, "family %s", familyID))
	}
	if _, err := l.GetFamilyMember(ctx, familyID, userID); err != nil {
		return lookup(err, ErrNotFamilyMember)
	}
	return nil
}
