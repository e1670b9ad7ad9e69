package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// LinkWallet binds a personal-scope family transaction to one of its
// creator's wallets: a wallet transaction is created and applied and the
// creator's mirror entry follows the wallet. Linking twice is a conflict.
func (s *Service) LinkWallet(ctx context.Context, actor Actor, familyTxID, walletID string) (*FamilyTxResult, error) {
	if walletID == "" {
		return nil, ErrWalletRequired
	}

	var res FamilyTxResult
	err := s.run(ctx, "link_wallet", func(u *unit) error {
		ftx, err := s.familyTx(u, familyTxID)
		if err != nil {
			return err
		}
		if err := requireFamilyMember(u.ctx, u.l, ftx.FamilyID, actor.UserID); err != nil {
			return err
		}
		if ftx.IsLinkedToWallet() {
			return ErrAlreadyLinked
		}
		if ftx.Scope != models.ScopePersonal {
			return ErrPersonalScopeOnly
		}
		// Only the creator can draw on their own wallet.
		if ftx.CreatedBy != actor.UserID {
			return ErrNotEditor
		}
		w, err := u.ownedWallet(walletID, actor.UserID)
		if err != nil {
			return err
		}
		if err := s.requireFamilyCurrency(u, ftx.FamilyID, w); err != nil {
			return err
		}

		ptx, err := s.createLinkedWalletTx(u, ftx, w)
		if err != nil {
			return err
		}
		ftx.LinkedWalletID = w.ID
		ftx.LinkedTransactionID = ptx.ID
		if err := u.l.UpdateFamilyTransaction(u.ctx, ftx); err != nil {
			return internal(err)
		}
		if err := u.syncMirror(ftx.FamilyID, ftx.CreatedBy, w.ID); err != nil {
			return err
		}

		res.Transaction = ftx
		res.Wallet = w
		res.Balance, err = u.familyBalance(ftx.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UnlinkWallet deletes the wallet transaction behind a personal-scope family
// transaction, reverting it from the wallet and resetting the mirror. The
// family pool is never touched.
func (s *Service) UnlinkWallet(ctx context.Context, actor Actor, familyTxID string) (*FamilyTxResult, error) {
	var res FamilyTxResult
	err := s.run(ctx, "unlink_wallet", func(u *unit) error {
		ftx, err := s.familyTx(u, familyTxID)
		if err != nil {
			return err
		}
		if err := requireFamilyMember(u.ctx, u.l, ftx.FamilyID, actor.UserID); err != nil {
			return err
		}
		if !ftx.IsLinkedToWallet() {
			return ErrNotLinked
		}
		if ftx.IsTransfer() {
			return ErrTransferImmutable
		}
		if err := s.requireEditor(u, ftx, actor); err != nil {
			return err
		}

		walletID := ftx.LinkedWalletID
		ptx, err := u.l.GetPersonalTransaction(u.ctx, ftx.LinkedTransactionID)
		if err != nil {
			return lookup(err, wrapf(ErrTransactionNotFound, "linked wallet transaction %s", ftx.LinkedTransactionID))
		}
		if err := u.revertFromWallet(ptx.WalletID, ptx.Type, ptx.Amount); err != nil {
			return err
		}
		if err := u.l.DeletePersonalTransaction(u.ctx, ptx.ID); err != nil {
			return internal(err)
		}

		ftx.LinkedWalletID = ""
		ftx.LinkedTransactionID = ""
		if err := u.l.UpdateFamilyTransaction(u.ctx, ftx); err != nil {
			return internal(err)
		}
		if err := u.syncMirror(ftx.FamilyID, ftx.CreatedBy, walletID); err != nil {
			return err
		}

		res.Transaction = ftx
		res.Wallet, err = u.wallet(walletID)
		if err != nil {
			return err
		}
		res.Balance, err = u.familyBalance(ftx.FamilyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// createLinkedWalletTx creates the wallet side of a family entry and applies it.
func (s *Service) createLinkedWalletTx(u *unit, ftx *models.FamilyTransaction, w *models.Wallet) (*models.PersonalTransaction, error) {
	ptx := &models.PersonalTransaction{
		WalletID:   w.ID,
		UserID:     ftx.CreatedBy,
		Type:       ftx.Type,
		Amount:     ftx.Amount,
		CategoryID: ftx.CategoryID,
		Note:       ftx.Note,
		Date:       dateOrNow(ftx.Date, u),
		CreatedAt:  u.now.Unix(),
	}
	if err := u.l.CreatePersonalTransaction(u.ctx, ptx); err != nil {
		return nil, internal(err)
	}
	if err := u.applyToWallet(w.ID, ptx.Type, ptx.Amount); err != nil {
		return nil, err
	}
	return ptx, nil
}

// resyncLinkedWalletTx reverts the linked wallet transaction and reapplies it
// with the edited fields, moving it to another of the creator's wallets when
// in.WalletID says so.
func (s *Service) resyncLinkedWalletTx(u *unit, ftx *models.FamilyTransaction, in FamilyTxInput) (*models.Wallet, error) {
	ptx, err := u.l.GetPersonalTransaction(u.ctx, ftx.LinkedTransactionID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrTransactionNotFound, "linked wallet transaction %s", ftx.LinkedTransactionID))
	}

	newWalletID := in.WalletID
	if newWalletID == "" {
		newWalletID = ptx.WalletID
	}
	w, err := u.ownedWallet(newWalletID, ftx.CreatedBy)
	if err != nil {
		return nil, err
	}
	if newWalletID != ptx.WalletID {
		if err := s.requireFamilyCurrency(u, ftx.FamilyID, w); err != nil {
			return nil, err
		}
	}

	if err := u.revertFromWallet(ptx.WalletID, ptx.Type, ptx.Amount); err != nil {
		return nil, err
	}
	ptx.WalletID = newWalletID
	ptx.Type = in.Type
	ptx.Amount = in.Amount
	ptx.CategoryID = in.CategoryID
	ptx.Note = in.Note
	if in.Date != 0 {
		ptx.Date = in.Date
	}
	if err := u.applyToWallet(ptx.WalletID, ptx.Type, ptx.Amount); err != nil {
		return nil, err
	}
	if err := u.l.UpdatePersonalTransaction(u.ctx, ptx); err != nil {
		return nil, internal(err)
	}

	ftx.LinkedWalletID = newWalletID
	if err := u.syncMirror(ftx.FamilyID, ftx.CreatedBy, newWalletID); err != nil {
		return nil, err
	}
	return w, nil
}
