// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned by point lookups when no row matches.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by compare-and-swap writes when the
	// stored version no longer matches the version that was read.
	ErrVersionConflict = errors.New("version conflict")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// CategoryStore reads the seeded category directory.
type CategoryStore interface {
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// PersonalTxFilter narrows ListPersonalTransactions. Zero fields match everything.
type PersonalTxFilter struct {
	WalletID string
	UserID   string
	Type     models.TransactionType
	// From and To bound Date inclusively (Unix seconds).
	From int64
	To   int64
}

// WalletStore persists wallets and their transactions.
type WalletStore interface {
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	ListWallets(ctx context.Context, ownerID string) ([]models.Wallet, error)

	// UpdateWalletBalance writes wallet.Balance only if the stored version
	// equals wallet.Version, then bumps wallet.Version.
	// Returns ErrVersionConflict otherwise.
	UpdateWalletBalance(ctx context.Context, wallet *models.Wallet) error

	CreatePersonalTransaction(ctx context.Context, tx *models.PersonalTransaction) error
	GetPersonalTransaction(ctx context.Context, id string) (*models.PersonalTransaction, error)
	UpdatePersonalTransaction(ctx context.Context, tx *models.PersonalTransaction) error
	DeletePersonalTransaction(ctx context.Context, id string) error
	ListPersonalTransactions(ctx context.Context, filter PersonalTxFilter) ([]models.PersonalTransaction, error)
}

// GroupStore persists groups and their shared expenses.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// CreateGroupTransaction stores the transaction and its participants in order.
	CreateGroupTransaction(ctx context.Context, tx *models.GroupTransaction) error
	GetGroupTransaction(ctx context.Context, id string) (*models.GroupTransaction, error)
	ListGroupTransactions(ctx context.Context, groupID string) ([]models.GroupTransaction, error)
	DeleteGroupTransaction(ctx context.Context, id string) error

	// UpdateParticipant rewrites the settlement fields of the participant at
	// position index.
	UpdateParticipant(ctx context.Context, txID string, index int, p *models.Participant) error

	// ResolveInvitee turns every Unregistered(email) payer or participant into
	// Registered(userID) and makes userID a member of every affected group.
	// It returns the number of rows rewritten.
	ResolveInvitee(ctx context.Context, email, userID string) (int, error)
}

// FamilyTxFilter narrows ListFamilyTransactions. Zero fields match everything.
type FamilyTxFilter struct {
	FamilyID  string
	CreatedBy string
	Scope     models.Scope
	Tag       string
	From      int64
	To        int64
}

// FamilyStore persists families, their shared balance and transactions.
type FamilyStore interface {
	CreateFamily(ctx context.Context, family *models.Family) error
	GetFamily(ctx context.Context, id string) (*models.Family, error)

	// DeleteFamily removes the family and everything it owns. Wallet rows
	// are never touched.
	DeleteFamily(ctx context.Context, id string) error

	AddFamilyMember(ctx context.Context, member *models.Member) error
	GetFamilyMember(ctx context.Context, familyID, userID string) (*models.Member, error)
	ListFamilyMembers(ctx context.Context, familyID string) ([]models.Member, error)
	RemoveFamilyMember(ctx context.Context, familyID, userID string) error

	CreateFamilyBalance(ctx context.Context, balance *models.FamilyBalance) error
	GetFamilyBalance(ctx context.Context, familyID string) (*models.FamilyBalance, error)

	// SaveFamilyBalance is a compare-and-swap on balance.Version that also
	// replaces the member mirror. Returns ErrVersionConflict on mismatch.
	SaveFamilyBalance(ctx context.Context, balance *models.FamilyBalance) error

	CreateFamilyTransaction(ctx context.Context, tx *models.FamilyTransaction) error
	GetFamilyTransaction(ctx context.Context, id string) (*models.FamilyTransaction, error)

	// GetFamilyTransactionByLinkedTx finds the family entry linked to a
	// personal transaction.
	GetFamilyTransactionByLinkedTx(ctx context.Context, personalTxID string) (*models.FamilyTransaction, error)
	UpdateFamilyTransaction(ctx context.Context, tx *models.FamilyTransaction) error
	DeleteFamilyTransaction(ctx context.Context, id string) error
	ListFamilyTransactions(ctx context.Context, filter FamilyTxFilter) ([]models.FamilyTransaction, error)
}

// Ledger is every read and write the domain needs. Inside Store.WithTx it is
// bound to a single database transaction.
type Ledger interface {
	UserStore
	CategoryStore
	WalletStore
	GroupStore
	FamilyStore
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Ledger

	// WithTx runs fn as one unit of work. If fn returns an error every write
	// it made is rolled back.
	WithTx(ctx context.Context, fn func(Ledger) error) error

	// Close releases any resources held by the store.
	Close() error
}
