package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// TransferInput moves money between one of the actor's wallets and a family pool.
type TransferInput struct {
	FamilyID string
	WalletID string
	Amount   decimal.Decimal
	Note     string
	Date     int64
}

// TransferResult holds both sides of a transfer and the balances after it.
type TransferResult struct {
	FamilyTransaction *models.FamilyTransaction
	WalletTransaction *models.PersonalTransaction
	Wallet            *models.Wallet
	Balance           *models.FamilyBalance
}

// TransferToFamily debits the wallet and credits the family pool.
func (s *Service) TransferToFamily(ctx context.Context, actor Actor, in TransferInput) (*TransferResult, error) {
	return s.transfer(ctx, actor, in, models.Expense, models.TagToFamily, "transfer_to_family")
}

// TransferFromFamily debits the family pool and credits the wallet.
func (s *Service) TransferFromFamily(ctx context.Context, actor Actor, in TransferInput) (*TransferResult, error) {
	return s.transfer(ctx, actor, in, models.Income, models.TagFromFamily, "transfer_from_family")
}

// transfer books walletType on the wallet and the opposite type on the pool,
// as a tagged family activity linked to a mirrored wallet transaction.
// Balances are checked before anything is written.
func (s *Service) transfer(ctx context.Context, actor Actor, in TransferInput, walletType models.TransactionType, direction, op string) (*TransferResult, error) {
	if err := calculator.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if in.WalletID == "" {
		return nil, ErrWalletRequired
	}

	var res TransferResult
	err := s.run(ctx, op, func(u *unit) error {
		if err := requireFamilyMember(u.ctx, u.l, in.FamilyID, actor.UserID); err != nil {
			return err
		}
		w, err := u.ownedWallet(in.WalletID, actor.UserID)
		if err != nil {
			return err
		}
		if err := s.requireFamilyCurrency(u, in.FamilyID, w); err != nil {
			return err
		}
		b, err := u.familyBalance(in.FamilyID)
		if err != nil {
			return err
		}

		debited := w.Balance
		if walletType == models.Income {
			debited = b.Balance
		}
		if debited.LessThan(in.Amount) {
			return wrapf(ErrInsufficientBalance, "need %s, have %s", in.Amount, debited)
		}

		now := u.now.Unix()
		date := dateOrNow(in.Date, u)
		ptx := &models.PersonalTransaction{
			WalletID:   w.ID,
			UserID:     actor.UserID,
			Type:       walletType,
			Amount:     in.Amount,
			CategoryID: models.TransferCategoryID,
			Note:       in.Note,
			Date:       date,
			CreatedAt:  now,
		}
		if err := u.l.CreatePersonalTransaction(u.ctx, ptx); err != nil {
			return internal(err)
		}
		if err := u.applyToWallet(w.ID, ptx.Type, ptx.Amount); err != nil {
			return err
		}

		ftx := &models.FamilyTransaction{
			FamilyID:            in.FamilyID,
			Type:                walletType.Opposite(),
			Amount:              in.Amount,
			CategoryID:          models.TransferCategoryID,
			Scope:               models.ScopeFamily,
			Tags:                []string{models.TagTransfer, direction},
			LinkedWalletID:      w.ID,
			LinkedTransactionID: ptx.ID,
			CreatedBy:           actor.UserID,
			Note:                in.Note,
			Date:                date,
			CreatedAt:           now,
		}
		if err := u.l.CreateFamilyTransaction(u.ctx, ftx); err != nil {
			return internal(err)
		}
		if err := u.applyToPool(in.FamilyID, ftx.Type, ftx.Amount); err != nil {
			return err
		}
		if err := u.syncMirror(in.FamilyID, actor.UserID, w.ID); err != nil {
			return err
		}

		res = TransferResult{FamilyTransaction: ftx, WalletTransaction: ptx, Wallet: w, Balance: b}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
