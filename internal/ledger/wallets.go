package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateWalletInput describes a new wallet.
type CreateWalletInput struct {
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
}

// WalletTxInput describes a wallet transaction to create or the new state of one being edited.
type WalletTxInput struct {
	WalletID   string
	Type       models.TransactionType
	Amount     decimal.Decimal
	CategoryID string
	Note       string
	Location   *models.GeoPoint
	// Date defaults to now when zero.
	Date int64
}

// WalletTxResult is a wallet transaction with the wallet balance after it.
type WalletTxResult struct {
	Transaction *models.PersonalTransaction
	Wallet      *models.Wallet
}

// CreateWallet opens a wallet for the actor.
func (s *Service) CreateWallet(ctx context.Context, actor Actor, in CreateWalletInput) (*models.Wallet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	if in.InitialBalance.IsNegative() || !in.InitialBalance.Equal(in.InitialBalance.Round(2)) {
		return nil, ErrInvalidBalance
	}

	w := &models.Wallet{
		OwnerID:  actor.UserID,
		Name:     name,
		Currency: currency,
		Balance:  in.InitialBalance,
	}
	err = s.run(ctx, "create_wallet", func(u *unit) error {
		w.CreatedAt = u.now.Unix()
		return u.l.CreateWallet(u.ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetWallet returns one of the actor's wallets.
func (s *Service) GetWallet(ctx context.Context, actor Actor, walletID string) (*models.Wallet, error) {
	var w *models.Wallet
	err := s.read(ctx, func(l storage.Ledger) error {
		var err error
		w, err = l.GetWallet(ctx, walletID)
		if err != nil {
			return lookup(err, ErrWalletNotFound)
		}
		if w.OwnerID != actor.UserID {
			return ErrNotWalletOwner
		}
		return nil
	})
	return w, err
}

// ListWallets returns the actor's wallets.
func (s *Service) ListWallets(ctx context.Context, actor Actor) ([]models.Wallet, error) {
	wallets, err := s.store.ListWallets(ctx, actor.UserID)
	return wallets, internal(err)
}

// CreateWalletTransaction records an income or expense on one of the actor's wallets.
func (s *Service) CreateWalletTransaction(ctx context.Context, actor Actor, in WalletTxInput) (*WalletTxResult, error) {
	if err := validateEntry(in.Type, in.Amount); err != nil {
		return nil, err
	}

	var res WalletTxResult
	err := s.run(ctx, "create_wallet_transaction", func(u *unit) error {
		w, err := u.ownedWallet(in.WalletID, actor.UserID)
		if err != nil {
			return err
		}
		if err := requireCategory(u.ctx, u.l, in.CategoryID); err != nil {
			return err
		}

		tx := &models.PersonalTransaction{
			WalletID:   w.ID,
			UserID:     actor.UserID,
			Type:       in.Type,
			Amount:     in.Amount,
			CategoryID: in.CategoryID,
			Note:       in.Note,
			Location:   in.Location,
			Date:       dateOrNow(in.Date, u),
			CreatedAt:  u.now.Unix(),
		}
		if err := u.l.CreatePersonalTransaction(u.ctx, tx); err != nil {
			return internal(err)
		}
		if err := u.applyToWallet(w.ID, tx.Type, tx.Amount); err != nil {
			return err
		}
		res = WalletTxResult{Transaction: tx, Wallet: w}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateWalletTransaction rewrites a wallet transaction. The old effect is
// always reverted from the old wallet before the new one is applied, possibly
// to another wallet. Edits to a transaction linked from a personal-scope
// family entry are carried over to that entry and its mirror.
func (s *Service) UpdateWalletTransaction(ctx context.Context, actor Actor, txID string, in WalletTxInput) (*WalletTxResult, error) {
	if err := validateEntry(in.Type, in.Amount); err != nil {
		return nil, err
	}

	var res WalletTxResult
	err := s.run(ctx, "update_wallet_transaction", func(u *unit) error {
		tx, err := s.ownedWalletTx(u, actor, txID)
		if err != nil {
			return err
		}
		linked, err := linkedFamilyTx(u, tx.ID)
		if err != nil {
			return err
		}
		if linked != nil && linked.IsTransfer() {
			return ErrBacksTransfer
		}
		if err := requireCategory(u.ctx, u.l, in.CategoryID); err != nil {
			return err
		}

		newWalletID := in.WalletID
		if newWalletID == "" {
			newWalletID = tx.WalletID
		}
		newWallet, err := u.ownedWallet(newWalletID, actor.UserID)
		if err != nil {
			return err
		}
		if linked != nil && newWalletID != tx.WalletID {
			if err := s.requireFamilyCurrency(u, linked.FamilyID, newWallet); err != nil {
				return err
			}
		}

		if err := u.revertFromWallet(tx.WalletID, tx.Type, tx.Amount); err != nil {
			return err
		}
		tx.WalletID = newWalletID
		tx.Type = in.Type
		tx.Amount = in.Amount
		tx.CategoryID = in.CategoryID
		tx.Note = in.Note
		tx.Location = in.Location
		if in.Date != 0 {
			tx.Date = in.Date
		}
		if err := u.applyToWallet(tx.WalletID, tx.Type, tx.Amount); err != nil {
			return err
		}
		if err := u.l.UpdatePersonalTransaction(u.ctx, tx); err != nil {
			return internal(err)
		}

		if linked != nil {
			linked.Type = tx.Type
			linked.Amount = tx.Amount
			linked.CategoryID = tx.CategoryID
			linked.Date = tx.Date
			linked.LinkedWalletID = tx.WalletID
			if err := u.l.UpdateFamilyTransaction(u.ctx, linked); err != nil {
				return internal(err)
			}
			if err := u.syncMirror(linked.FamilyID, linked.CreatedBy, tx.WalletID); err != nil {
				return err
			}
		}

		res = WalletTxResult{Transaction: tx, Wallet: newWallet}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteWalletTransaction removes a wallet transaction and reverts its effect.
// A personal-scope family entry linked to it is unlinked and its mirror reset.
func (s *Service) DeleteWalletTransaction(ctx context.Context, actor Actor, txID string) (*models.Wallet, error) {
	var w *models.Wallet
	err := s.run(ctx, "delete_wallet_transaction", func(u *unit) error {
		tx, err := s.ownedWalletTx(u, actor, txID)
		if err != nil {
			return err
		}
		linked, err := linkedFamilyTx(u, tx.ID)
		if err != nil {
			return err
		}
		if linked != nil && linked.IsTransfer() {
			return ErrBacksTransfer
		}

		if err := u.revertFromWallet(tx.WalletID, tx.Type, tx.Amount); err != nil {
			return err
		}
		if err := u.l.DeletePersonalTransaction(u.ctx, tx.ID); err != nil {
			return internal(err)
		}

		if linked != nil {
			linked.LinkedWalletID = ""
			linked.LinkedTransactionID = ""
			if err := u.l.UpdateFamilyTransaction(u.ctx, linked); err != nil {
				return internal(err)
			}
			if err := u.syncMirror(linked.FamilyID, linked.CreatedBy, tx.WalletID); err != nil {
				return err
			}
		}

		w, err = u.wallet(tx.WalletID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWalletTransactions returns the actor's wallet transactions matching filter.
func (s *Service) ListWalletTransactions(ctx context.Context, actor Actor, filter storage.PersonalTxFilter) ([]models.PersonalTransaction, error) {
	if filter.WalletID != "" {
		if _, err := s.GetWallet(ctx, actor, filter.WalletID); err != nil {
			return nil, err
		}
	}
	filter.UserID = actor.UserID
	txs, err := s.store.ListPersonalTransactions(ctx, filter)
	return txs, internal(err)
}

// ListCategories returns the category directory.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	return categories, internal(err)
}

func (s *Service) ownedWalletTx(u *unit, actor Actor, txID string) (*models.PersonalTransaction, error) {
	tx, err := u.l.GetPersonalTransaction(u.ctx, txID)
	if err != nil {
		return nil, lookup(err, wrapf(ErrTransactionNotFound, "wallet transaction %s", txID))
	}
	if _, err := u.ownedWallet(tx.WalletID, actor.UserID); err != nil {
		return nil, err
	}
	return tx, nil
}

// linkedFamilyTx returns the family entry linked to a wallet transaction, or nil.
func linkedFamilyTx(u *unit, personalTxID string) (*models.FamilyTransaction, error) {
	ftx, err := u.l.GetFamilyTransactionByLinkedTx(u.ctx, personalTxID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return ftx, nil
}

func dateOrNow(date int64, u *unit) int64 {
	if date != 0 {
		return date
	}
	return u.now.Unix()
}
