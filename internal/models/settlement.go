package models

import (
	"github.com/shopspring/decimal"
)

// ParticipantRef identifies who owes (or paid) in a group transaction.
// Exactly one of UserID and Email is set: a registered user, or an invitee
// known only by email until they create an account.
type ParticipantRef struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Registered references a user account.
func Registered(userID string) ParticipantRef {
	return ParticipantRef{UserID: userID}
}

// Unregistered references an invitee by email.
func Unregistered(email string) ParticipantRef {
	return ParticipantRef{Email: NormalizeEmail(email)}
}

// IsRegistered reports whether the ref points at a user account.
func (r ParticipantRef) IsRegistered() bool {
	return r.UserID != ""
}

// IsZero reports whether the ref is empty.
func (r ParticipantRef) IsZero() bool {
	return r.UserID == "" && r.Email == ""
}

// Key is a stable identity for maps: "user:<id>" or "email:<addr>".
func (r ParticipantRef) Key() string {
	if r.IsRegistered() {
		return "user:" + r.UserID
	}
	return "email:" + r.Email
}

// IsUser reports whether the ref is the registered user userID.
func (r ParticipantRef) IsUser(userID string) bool {
	return userID != "" && r.UserID == userID
}

// Participant is one obligation inside a group transaction.
//
// Lifecycle: created Outstanding with the transaction, flips to Settled once,
// removed only with its transaction.
type Participant struct {
	Ref ParticipantRef `json:"ref"`

	// ShareAmount is what this participant owes the payer.
	ShareAmount decimal.Decimal `json:"shareAmount"`

	// Percentage is the requested share for percentage_split, nil otherwise.
	Percentage *decimal.Decimal `json:"percentage,omitempty"`

	Settled bool `json:"settled"`

	// SettledAt is set only on the transition to settled.
	SettledAt *int64 `json:"settledAt,omitempty"`

	// WalletID records which wallet the settlement drew from. It is a weak
	// reference into a wallet owned by the participant.
	WalletID string `json:"walletId,omitempty"`
}
