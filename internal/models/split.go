package models

import "github.com/shopspring/decimal"

// SplitStrategy is the rule deriving participant shares from a paid expense.
type SplitStrategy string

const (
	// PayerSingle: the payer bears everything, no participants are recorded.
	PayerSingle SplitStrategy = "payer_single"
	// PayerForOthers: the amount is per participant; the payer's own cost is not a participant.
	PayerForOthers SplitStrategy = "payer_for_others"
	// EqualSplit: the amount is the total, divided evenly; the payer is usually a participant.
	EqualSplit SplitStrategy = "equal_split"
	// PercentageSplit: each participant supplies a percentage of the total.
	PercentageSplit SplitStrategy = "percentage_split"
)

// Valid reports whether s is a known strategy.
func (s SplitStrategy) Valid() bool {
	switch s {
	case PayerSingle, PayerForOthers, EqualSplit, PercentageSplit:
		return true
	}
	return false
}

// GroupTransaction represents one paid expense inside a group.
// It is immutable after creation apart from participant settlement flags.
type GroupTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	GroupID string `json:"groupId"`

	// Payer is who paid the merchant; a user or an external invitee.
	Payer ParticipantRef `json:"payer"`

	Description string `json:"description"`

	// TotalAmount is what the payer paid in total.
	TotalAmount decimal.Decimal `json:"totalAmount"`

	Strategy SplitStrategy `json:"strategy"`

	// Participants are the obligations, in the order they were submitted.
	Participants []Participant `json:"participants"`

	CategoryID string `json:"categoryId"`

	// CreatedBy is the user who recorded the expense.
	CreatedBy string `json:"createdBy"`

	CreatedAt int64 `json:"createdAt"`
}

// FindParticipant returns the index of the participant registered as userID,
// falling back to an invitee whose email matches email. Returns -1 if none.
func (t *GroupTransaction) FindParticipant(userID, email string) int {
	for i, p := range t.Participants {
		if p.Ref.IsUser(userID) {
			return i
		}
	}
	email = NormalizeEmail(email)
	if email == "" {
		return -1
	}
	for i, p := range t.Participants {
		if !p.Ref.IsRegistered() && p.Ref.Email == email {
			return i
		}
	}
	return -1
}

// Outstanding sums the shares not yet settled, excluding the payer's own share.
func (t *GroupTransaction) Outstanding() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Participants {
		if p.Settled || p.Ref == t.Payer {
			continue
		}
		sum = sum.Add(p.ShareAmount)
	}
	return sum
}
