package models

import (
	"github.com/shopspring/decimal"
)

// Scope says whether a family transaction moves the shared pool or a member's wallet.
type Scope string

const (
	ScopeFamily   Scope = "family"
	ScopePersonal Scope = "personal"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeFamily || s == ScopePersonal
}

// Tags on transfer activities.
const (
	TagTransfer   = "transfer"
	TagToFamily   = "to-family"
	TagFromFamily = "from-family"
)

// FamilyRole is a member's role inside one family.
type FamilyRole string

const (
	FamilyOwner  FamilyRole = "owner"
	FamilyMember FamilyRole = "member"
)

// Family is a household with a shared pool.
type Family struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Currency  string `json:"currency"`
	CreatedAt int64  `json:"createdAt"`
}

// Member is a user's membership in a family.
type Member struct {
	FamilyID string     `json:"familyId"`
	UserID   string     `json:"userId"`
	Role     FamilyRole `json:"role"`
	JoinedAt int64      `json:"joinedAt"`
}

// FamilyBalance holds the shared pool and the per-member mirror.
//
// MemberBalances is a read-through projection of wallet balances: each entry
// is overwritten with the linked wallet's balance after every linked mutation
// and never adjusted by deltas.
type FamilyBalance struct {
	FamilyID       string                     `json:"familyId"`
	Balance        decimal.Decimal            `json:"familyBalance"`
	MemberBalances map[string]decimal.Decimal `json:"memberBalances"`
	Version        int64                      `json:"version"`
	UpdatedAt      int64                      `json:"updatedAt"`
}

// NewFamilyBalance returns an empty balance record.
func NewFamilyBalance(familyID string) *FamilyBalance {
	return &FamilyBalance{
		FamilyID:       familyID,
		Balance:        decimal.Zero,
		MemberBalances: make(map[string]decimal.Decimal),
	}
}

// MemberBalance returns the mirrored balance for userID (zero if absent).
func (b *FamilyBalance) MemberBalance(userID string) decimal.Decimal {
	return b.MemberBalances[userID]
}

// FamilyTransaction is an income or expense recorded inside a family.
type FamilyTransaction struct {
	ID         string          `json:"id"`
	FamilyID   string          `json:"familyId"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
	Scope      Scope           `json:"scope"`
	Tags       []string        `json:"tags,omitempty"`

	// LinkedWalletID and LinkedTransactionID bind this entry to a wallet transaction.
	LinkedWalletID      string `json:"linkedWalletId,omitempty"`
	LinkedTransactionID string `json:"linkedTransactionId,omitempty"`

	CreatedBy string `json:"createdBy"`
	Note      string `json:"note,omitempty"`
	Date      int64  `json:"date"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// IsLinkedToWallet reports whether a wallet transaction mirrors this entry.
func (t *FamilyTransaction) IsLinkedToWallet() bool {
	return t.LinkedWalletID != "" && t.LinkedTransactionID != ""
}

// HasTag reports whether tag is present.
func (t *FamilyTransaction) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// IsTransfer reports whether this entry records money moving between a wallet and the pool.
func (t *FamilyTransaction) IsTransfer() bool {
	return t.HasTag(TagTransfer)
}
