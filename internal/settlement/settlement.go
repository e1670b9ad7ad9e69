// Package settlement implements the lifecycle of a participant obligation:
// Outstanding on creation, Settled once, never back.
package settlement

import (
	"time"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrParticipantNotFound = apperr.New(apperr.KindNotFound, "participant not found on transaction")
	ErrNotAuthorized       = apperr.New(apperr.KindForbidden, "only the participant, the payer or the group owner may settle")
	ErrAlreadySettled      = apperr.New(apperr.KindConflict, "participant already settled")
	ErrInvalidReference    = apperr.New(apperr.KindValidation, "transaction does not belong to this group")
)

// State is the settlement state of one participant.
type State string

const (
	Outstanding State = "outstanding"
	Settled     State = "settled"
)

// StateOf returns the state of p.
func StateOf(p *models.Participant) State {
	if p.Settled {
		return Settled
	}
	return Outstanding
}

// Requester is the authenticated principal asking for a transition.
type Requester struct {
	UserID string
	Email  string
}

// Request names the obligation to settle.
type Request struct {
	// GroupID is the group the caller addressed; it must match the transaction.
	GroupID string
	// Participant is who is settling. A registered ref is looked up by user
	// id first, then by the requester's email among invitees.
	Participant models.ParticipantRef
	// WalletID optionally records which wallet paid.
	WalletID string
}

// Locate finds the participant index for req on tx.
func Locate(tx *models.GroupTransaction, req Request, requester Requester) (int, error) {
	var idx int
	if req.Participant.IsRegistered() {
		idx = tx.FindParticipant(req.Participant.UserID, requester.Email)
	} else {
		idx = tx.FindParticipant("", req.Participant.Email)
	}
	if idx < 0 {
		return -1, ErrParticipantNotFound
	}
	return idx, nil
}

// Authorize checks that requester may settle participant idx on tx.
func Authorize(group *models.Group, tx *models.GroupTransaction, idx int, requester Requester) error {
	p := tx.Participants[idx]
	switch {
	case p.Ref.IsUser(requester.UserID):
	case !p.Ref.IsRegistered() && p.Ref.Email != "" && p.Ref.Email == models.NormalizeEmail(requester.Email):
	case tx.Payer.IsUser(requester.UserID):
	case group != nil && group.OwnerID != "" && group.OwnerID == requester.UserID:
	default:
		return ErrNotAuthorized
	}
	return nil
}

// Settle validates and applies the Outstanding -> Settled transition in place.
// The transaction's amounts are never touched.
func Settle(group *models.Group, tx *models.GroupTransaction, req Request, requester Requester, now time.Time) (*models.Participant, error) {
	if req.GroupID != "" && req.GroupID != tx.GroupID {
		return nil, ErrInvalidReference
	}
	idx, err := Locate(tx, req, requester)
	if err != nil {
		return nil, err
	}
	if err := Authorize(group, tx, idx, requester); err != nil {
		return nil, err
	}

	p := &tx.Participants[idx]
	if StateOf(p) == Settled {
		return nil, ErrAlreadySettled
	}
	at := now.Unix()
	p.Settled = true
	p.SettledAt = &at
	if req.WalletID != "" {
		p.WalletID = req.WalletID
	}
	return p, nil
}
