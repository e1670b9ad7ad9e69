package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	ErrInvalidType       = apperr.New(apperr.KindValidation, "type must be income or expense")
	ErrInvalidScope      = apperr.New(apperr.KindValidation, "scope must be family or personal")
	ErrWalletRequired    = apperr.New(apperr.KindValidation, "a wallet is required for personal-scope transactions")
	ErrUnknownCategory   = apperr.New(apperr.KindValidation, "unknown category")
	ErrCurrencyMismatch  = apperr.New(apperr.KindValidation, "wallet currency does not match family currency")
	ErrInvalidCurrency   = apperr.New(apperr.KindValidation, "currency must be a three letter code")
	ErrNameRequired      = apperr.New(apperr.KindValidation, "name is required")
	ErrReservedTag       = apperr.New(apperr.KindValidation, "transfer tags are reserved for transfers")
	ErrInvalidPayer      = apperr.New(apperr.KindValidation, "payer must be a group member or an invitee email")
	ErrInvalidMember     = apperr.New(apperr.KindValidation, "participant is not a group member")
	ErrDuplicateMember   = apperr.New(apperr.KindValidation, "participant listed twice")
	ErrInvalidBalance    = apperr.New(apperr.KindValidation, "initial balance must be zero or positive with at most two decimals")
	ErrMemberRequired    = apperr.New(apperr.KindValidation, "a user id or email is required")
	ErrPersonalScopeOnly = apperr.New(apperr.KindValidation, "only personal-scope transactions can be linked to a wallet")

	ErrWalletNotFound      = apperr.New(apperr.KindNotFound, "wallet not found")
	ErrTransactionNotFound = apperr.New(apperr.KindNotFound, "transaction not found")
	ErrFamilyNotFound      = apperr.New(apperr.KindNotFound, "family not found")
	ErrGroupNotFound       = apperr.New(apperr.KindNotFound, "group not found")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "user not found")
	ErrMemberNotFound      = apperr.New(apperr.KindNotFound, "member not found")

	ErrNotWalletOwner   = apperr.New(apperr.KindForbidden, "wallet belongs to another user")
	ErrNotFamilyMember  = apperr.New(apperr.KindForbidden, "not a member of this family")
	ErrNotFamilyOwner   = apperr.New(apperr.KindForbidden, "only the family owner may do this")
	ErrNotEditor        = apperr.New(apperr.KindForbidden, "only the creator or the family owner may change this transaction")
	ErrNotGroupMember   = apperr.New(apperr.KindForbidden, "not a member of this group")
	ErrNotGroupOwner    = apperr.New(apperr.KindForbidden, "only the group owner may do this")
	ErrNotTxParticipant = apperr.New(apperr.KindForbidden, "only the creator, the payer or the group owner may delete this transaction")

	ErrInsufficientBalance = apperr.New(apperr.KindConflict, "insufficient balance")
	ErrScopeChange         = apperr.New(apperr.KindConflict, "transaction scope cannot change")
	ErrAlreadyLinked       = apperr.New(apperr.KindConflict, "transaction is already linked to a wallet")
	ErrNotLinked           = apperr.New(apperr.KindConflict, "transaction is not linked to a wallet")
	ErrTransferImmutable   = apperr.New(apperr.KindConflict, "transfers cannot be edited; delete and recreate instead")
	ErrBacksTransfer       = apperr.New(apperr.KindConflict, "wallet transaction belongs to a family transfer; delete the transfer instead")
	ErrAlreadyMember       = apperr.New(apperr.KindConflict, "user is already a member")
	ErrOwnerCannotLeave    = apperr.New(apperr.KindConflict, "the family owner cannot be removed; delete the family instead")
	ErrConcurrentUpdate    = apperr.New(apperr.KindConflict, "balance changed concurrently, please retry")
)

// lookup turns storage.ErrNotFound into the domain sentinel and anything else
// into an internal error.
func lookup(err error, sentinel error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return sentinel
	}
	return internal(err)
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.KindInternal, err, "storage failure")
}

func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
