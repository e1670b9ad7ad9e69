package models

import "github.com/shopspring/decimal"

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Opposite returns the other direction. Transfers book the wallet side with
// the opposite type of the family side.
func (t TransactionType) Opposite() TransactionType {
	if t == Income {
		return Expense
	}
	return Income
}

// Wallet is a user's account with a single running balance.
type Wallet struct {
	ID       string          `json:"id"`
	OwnerID  string          `json:"ownerId"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`

	// Version increments on every balance write and guards compare-and-swap updates.
	Version int64 `json:"version"`

	CreatedAt int64 `json:"createdAt"`
}

// GeoPoint is an optional location attached to a transaction.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PersonalTransaction is one income or expense entry on a wallet.
type PersonalTransaction struct {
	ID         string          `json:"id"`
	WalletID   string          `json:"walletId"`
	UserID     string          `json:"userId"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
	Note       string          `json:"note,omitempty"`
	Location   *GeoPoint       `json:"location,omitempty"`

	// Date is when the money moved; CreatedAt is when it was recorded.
	Date      int64 `json:"date"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}
