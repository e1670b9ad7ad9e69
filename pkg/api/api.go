// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON; money is a decimal string and
// timestamps are Unix seconds.
package api

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
	// ResolvedObligations counts group obligations that were addressed to the
	// new account's email and now point at the account.
	ResolvedObligations int `json:"resolvedObligations"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *models.User `json:"user"`
}

// Wallets

type CreateWalletRequest struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type WalletResponse struct {
	Wallet *models.Wallet `json:"wallet"`
}

type GetWalletRequest struct {
	WalletID string `json:"walletId"`
}

type ListWalletsRequest struct{}

type ListWalletsResponse struct {
	Wallets []models.Wallet `json:"wallets"`
}

// WalletTransaction is the editable part of a wallet transaction.
type WalletTransaction struct {
	WalletID   string                 `json:"walletId"`
	Type       models.TransactionType `json:"type"`
	Amount     decimal.Decimal        `json:"amount"`
	CategoryID string                 `json:"categoryId"`
	Note       string                 `json:"note,omitempty"`
	Location   *models.GeoPoint       `json:"location,omitempty"`
	Date       int64                  `json:"date,omitempty"`
}

type CreateWalletTransactionRequest struct {
	WalletTransaction
}

type UpdateWalletTransactionRequest struct {
	TransactionID string `json:"transactionId"`
	WalletTransaction
}

type WalletTransactionResponse struct {
	Transaction *models.PersonalTransaction `json:"transaction"`
	Wallet      *models.Wallet              `json:"wallet"`
}

type DeleteWalletTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type ListWalletTransactionsRequest struct {
	WalletID string                 `json:"walletId,omitempty"`
	Type     models.TransactionType `json:"type,omitempty"`
	From     int64                  `json:"from,omitempty"`
	To       int64                  `json:"to,omitempty"`
}

type ListWalletTransactionsResponse struct {
	Transactions []models.PersonalTransaction `json:"transactions"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

// Families

type CreateFamilyRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

type CreateFamilyResponse struct {
	Family *models.Family `json:"family"`
}

// AddFamilyMemberRequest names the new member by user ID or, failing that, email.
type AddFamilyMemberRequest struct {
	FamilyID string `json:"familyId"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
}

type AddFamilyMemberResponse struct {
	Member *models.Member `json:"member"`
}

type RemoveFamilyMemberRequest struct {
	FamilyID string `json:"familyId"`
	UserID   string `json:"userId"`
}

type FamilyBalanceResponse struct {
	Balance *models.FamilyBalance `json:"balance"`
}

type DeleteFamilyRequest struct {
	FamilyID string `json:"familyId"`
}

type DeleteFamilyResponse struct{}

type GetFamilyBalanceRequest struct {
	FamilyID string `json:"familyId"`
}

type GetFamilyBalanceResponse struct {
	Balance *models.FamilyBalance `json:"balance"`
	Members []models.Member       `json:"members"`
}

// FamilyTransaction is the editable part of a family transaction. On update
// an empty scope or wallet keeps the current value.
type FamilyTransaction struct {
	FamilyID   string                 `json:"familyId,omitempty"`
	Type       models.TransactionType `json:"type"`
	Amount     decimal.Decimal        `json:"amount"`
	CategoryID string                 `json:"categoryId"`
	Scope      models.Scope           `json:"scope,omitempty"`
	WalletID   string                 `json:"walletId,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Note       string                 `json:"note,omitempty"`
	Date       int64                  `json:"date,omitempty"`
}

type CreateFamilyTransactionRequest struct {
	FamilyTransaction
}

type UpdateFamilyTransactionRequest struct {
	TransactionID string `json:"transactionId"`
	FamilyTransaction
}

type FamilyTransactionResponse struct {
	Transaction *models.FamilyTransaction `json:"transaction"`
	Balance     *models.FamilyBalance     `json:"balance"`
	Wallet      *models.Wallet            `json:"wallet,omitempty"`
}

type DeleteFamilyTransactionRequest struct {
	TransactionID string `json:"transactionId"`
}

type ListFamilyTransactionsRequest struct {
	FamilyID  string       `json:"familyId"`
	CreatedBy string       `json:"createdBy,omitempty"`
	Scope     models.Scope `json:"scope,omitempty"`
	Tag       string       `json:"tag,omitempty"`
	From      int64        `json:"from,omitempty"`
	To        int64        `json:"to,omitempty"`
}

type ListFamilyTransactionsResponse struct {
	Transactions []models.FamilyTransaction `json:"transactions"`
}

type TransferRequest struct {
	FamilyID string          `json:"familyId"`
	WalletID string          `json:"walletId"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
	Date     int64           `json:"date,omitempty"`
}

type TransferResponse struct {
	FamilyTransaction *models.FamilyTransaction   `json:"familyTransaction"`
	WalletTransaction *models.PersonalTransaction `json:"walletTransaction"`
	Wallet            *models.Wallet              `json:"wallet"`
	Balance           *models.FamilyBalance       `json:"balance"`
}

type LinkWalletRequest struct {
	TransactionID string `json:"transactionId"`
	WalletID      string `json:"walletId"`
}

type UnlinkWalletRequest struct {
	TransactionID string `json:"transactionId"`
}

// Groups

type CreateGroupRequest struct {
	Name string `json:"name"`
	// Members are user IDs; the caller is added as owner.
	Members []string `json:"members,omitempty"`
}

type GroupResponse struct {
	Group *models.Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type AddGroupMemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

// Share names one participant of a split. Percentage is read only for
// percentage_split.
type Share struct {
	models.ParticipantRef
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type CreateGroupTransactionRequest struct {
	GroupID     string                `json:"groupId"`
	Payer       models.ParticipantRef `json:"payer"`
	Description string                `json:"description"`
	Amount      decimal.Decimal       `json:"amount"`
	Strategy    models.SplitStrategy  `json:"strategy"`
	CategoryID  string                `json:"categoryId,omitempty"`
	Shares      []Share               `json:"shares,omitempty"`
}

type GroupTransactionResponse struct {
	Transaction *models.GroupTransaction `json:"transaction"`
}

type GetGroupTransactionRequest struct {
	GroupID       string `json:"groupId"`
	TransactionID string `json:"transactionId"`
}

type ListGroupTransactionsRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupTransactionsResponse struct {
	Transactions []models.GroupTransaction `json:"transactions"`
}

type DeleteGroupTransactionRequest struct {
	GroupID       string `json:"groupId"`
	TransactionID string `json:"transactionId"`
}

type DeleteGroupTransactionResponse struct{}

type SettleParticipantRequest struct {
	GroupID       string                `json:"groupId"`
	TransactionID string                `json:"transactionId"`
	Participant   models.ParticipantRef `json:"participant"`
	// WalletID optionally records which of the caller's wallets paid.
	WalletID string `json:"walletId,omitempty"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"groupId"`
}

type MemberBalance struct {
	Member          models.ParticipantRef `json:"member"`
	NetBalance      decimal.Decimal       `json:"netBalance"`
	TotalPaid       decimal.Decimal       `json:"totalPaid"`
	TotalOwed       decimal.Decimal       `json:"totalOwed"`
	TotalReceivable decimal.Decimal       `json:"totalReceivable"`
}

type Debt struct {
	From   models.ParticipantRef `json:"from"`
	To     models.ParticipantRef `json:"to"`
	Amount decimal.Decimal       `json:"amount"`
}

type GetGroupSummaryResponse struct {
	Group    *models.Group   `json:"group"`
	Balances []MemberBalance `json:"balances"`
	Debts    []Debt          `json:"debts"`
}
