package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// FamilyService implements the Connect FamilyService.
type FamilyService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewFamilyService creates a FamilyService over the ledger.
func NewFamilyService(l *ledger.Service, logger *slog.Logger) *FamilyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyService{ledger: l, logger: logger}
}

// CreateFamily creates a family owned by the caller.
func (s *FamilyService) CreateFamily(ctx context.Context, req *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	f, err := s.ledger.CreateFamily(ctx, actor, req.Msg.Name, req.Msg.Currency)
	if err != nil {
		return nil, fail(s.logger, "CreateFamily failed", err, "user_id", actor.UserID)
	}

	s.logger.Info("Family created", "family_id", f.ID, "owner_id", f.OwnerID)
	return connect.NewResponse(&api.CreateFamilyResponse{Family: f}), nil
}

// AddMember adds a registered user to the family.
func (s *FamilyService) AddMember(ctx context.Context, req *connect.Request[api.AddFamilyMemberRequest]) (*connect.Response[api.AddFamilyMemberResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	m, err := s.ledger.AddFamilyMember(ctx, actor, req.Msg.FamilyID, req.Msg.UserID, req.Msg.Email)
	if err != nil {
		return nil, fail(s.logger, "AddMember failed", err, "family_id", req.Msg.FamilyID)
	}

	s.logger.Info("Family member added", "family_id", m.FamilyID, "user_id", m.UserID)
	return connect.NewResponse(&api.AddFamilyMemberResponse{Member: m}), nil
}

// RemoveMember removes a member and reverses what they recorded.
func (s *FamilyService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveFamilyMemberRequest]) (*connect.Response[api.FamilyBalanceResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.RemoveFamilyMember(ctx, actor, req.Msg.FamilyID, req.Msg.UserID)
	if err != nil {
		return nil, fail(s.logger, "RemoveMember failed", err, "family_id", req.Msg.FamilyID, "user_id", req.Msg.UserID)
	}

	s.logger.Info("Family member removed",
		"family_id", req.Msg.FamilyID,
		"user_id", req.Msg.UserID,
		"family_balance", b.Balance.String(),
	)
	return connect.NewResponse(&api.FamilyBalanceResponse{Balance: b}), nil
}

// DeleteFamily deletes the family and reverses every wallet-linked entry.
func (s *FamilyService) DeleteFamily(ctx context.Context, req *connect.Request[api.DeleteFamilyRequest]) (*connect.Response[api.DeleteFamilyResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteFamily(ctx, actor, req.Msg.FamilyID); err != nil {
		return nil, fail(s.logger, "DeleteFamily failed", err, "family_id", req.Msg.FamilyID)
	}

	s.logger.Info("Family deleted", "family_id", req.Msg.FamilyID)
	return connect.NewResponse(&api.DeleteFamilyResponse{}), nil
}

// GetBalance returns the pool, the member mirrors and the member list.
func (s *FamilyService) GetBalance(ctx context.Context, req *connect.Request[api.GetFamilyBalanceRequest]) (*connect.Response[api.GetFamilyBalanceResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.GetFamilyBalance(ctx, actor, req.Msg.FamilyID)
	if err != nil {
		return nil, fail(s.logger, "GetBalance failed", err, "family_id", req.Msg.FamilyID)
	}
	members, err := s.ledger.ListFamilyMembers(ctx, actor, req.Msg.FamilyID)
	if err != nil {
		return nil, fail(s.logger, "GetBalance failed", err, "family_id", req.Msg.FamilyID)
	}
	return connect.NewResponse(&api.GetFamilyBalanceResponse{Balance: b, Members: members}), nil
}

// CreateTransaction records a family or personal-scope family entry.
func (s *FamilyService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.CreateFamilyTransaction(ctx, actor, familyTxInput(req.Msg.FamilyTransaction))
	if err != nil {
		return nil, fail(s.logger, "CreateTransaction failed", err, "family_id", req.Msg.FamilyID)
	}

	s.logger.Info("Family transaction created",
		"transaction_id", res.Transaction.ID,
		"family_id", res.Transaction.FamilyID,
		"scope", res.Transaction.Scope,
	)
	return connect.NewResponse(familyTxResponse(res)), nil
}

// UpdateTransaction rewrites a family entry without changing its scope.
func (s *FamilyService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.UpdateFamilyTransaction(ctx, actor, req.Msg.TransactionID, familyTxInput(req.Msg.FamilyTransaction))
	if err != nil {
		return nil, fail(s.logger, "UpdateTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Family transaction updated", "transaction_id", res.Transaction.ID)
	return connect.NewResponse(familyTxResponse(res)), nil
}

// DeleteTransaction removes a family entry and reverts its effect.
func (s *FamilyService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteFamilyTransactionRequest]) (*connect.Response[api.FamilyBalanceResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.DeleteFamilyTransaction(ctx, actor, req.Msg.TransactionID)
	if err != nil {
		return nil, fail(s.logger, "DeleteTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Family transaction deleted", "transaction_id", req.Msg.TransactionID)
	return connect.NewResponse(&api.FamilyBalanceResponse{Balance: b}), nil
}

// ListTransactions lists family entries by date range, tag, scope or creator.
func (s *FamilyService) ListTransactions(ctx context.Context, req *connect.Request[api.ListFamilyTransactionsRequest]) (*connect.Response[api.ListFamilyTransactionsResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListFamilyTransactions(ctx, actor, storage.FamilyTxFilter{
		FamilyID:  req.Msg.FamilyID,
		CreatedBy: req.Msg.CreatedBy,
		Scope:     req.Msg.Scope,
		Tag:       req.Msg.Tag,
		From:      req.Msg.From,
		To:        req.Msg.To,
	})
	if err != nil {
		return nil, fail(s.logger, "ListTransactions failed", err, "family_id", req.Msg.FamilyID)
	}
	return connect.NewResponse(&api.ListFamilyTransactionsResponse{Transactions: txs}), nil
}

// TransferToFamily moves money from a wallet into the pool.
func (s *FamilyService) TransferToFamily(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.TransferToFamily(ctx, actor, transferInput(req.Msg))
	if err != nil {
		return nil, fail(s.logger, "TransferToFamily failed", err, "family_id", req.Msg.FamilyID, "wallet_id", req.Msg.WalletID)
	}

	s.logger.Info("Transfer to family", "family_id", req.Msg.FamilyID, "amount", req.Msg.Amount.String())
	return connect.NewResponse(transferResponse(res)), nil
}

// TransferFromFamily moves money from the pool into a wallet.
func (s *FamilyService) TransferFromFamily(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.TransferFromFamily(ctx, actor, transferInput(req.Msg))
	if err != nil {
		return nil, fail(s.logger, "TransferFromFamily failed", err, "family_id", req.Msg.FamilyID, "wallet_id", req.Msg.WalletID)
	}

	s.logger.Info("Transfer from family", "family_id", req.Msg.FamilyID, "amount", req.Msg.Amount.String())
	return connect.NewResponse(transferResponse(res)), nil
}

// LinkWallet attaches a wallet to a personal-scope entry.
func (s *FamilyService) LinkWallet(ctx context.Context, req *connect.Request[api.LinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.LinkWallet(ctx, actor, req.Msg.TransactionID, req.Msg.WalletID)
	if err != nil {
		return nil, fail(s.logger, "LinkWallet failed", err, "transaction_id", req.Msg.TransactionID, "wallet_id", req.Msg.WalletID)
	}

	s.logger.Info("Wallet linked", "transaction_id", req.Msg.TransactionID, "wallet_id", req.Msg.WalletID)
	return connect.NewResponse(familyTxResponse(res)), nil
}

// UnlinkWallet detaches the wallet from an entry.
func (s *FamilyService) UnlinkWallet(ctx context.Context, req *connect.Request[api.UnlinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.UnlinkWallet(ctx, actor, req.Msg.TransactionID)
	if err != nil {
		return nil, fail(s.logger, "UnlinkWallet failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Wallet unlinked", "transaction_id", req.Msg.TransactionID)
	return connect.NewResponse(familyTxResponse(res)), nil
}

func familyTxInput(m api.FamilyTransaction) ledger.FamilyTxInput {
	return ledger.FamilyTxInput{
		FamilyID:   m.FamilyID,
		Type:       m.Type,
		Amount:     m.Amount,
		CategoryID: m.CategoryID,
		Scope:      m.Scope,
		WalletID:   m.WalletID,
		Tags:       m.Tags,
		Note:       m.Note,
		Date:       m.Date,
	}
}

func familyTxResponse(res *ledger.FamilyTxResult) *api.FamilyTransactionResponse {
	return &api.FamilyTransactionResponse{
		Transaction: res.Transaction,
		Balance:     res.Balance,
		Wallet:      res.Wallet,
	}
}

func transferInput(m *api.TransferRequest) ledger.TransferInput {
	return ledger.TransferInput{
		FamilyID: m.FamilyID,
		WalletID: m.WalletID,
		Amount:   m.Amount,
		Note:     m.Note,
		Date:     m.Date,
	}
}

func transferResponse(res *ledger.TransferResult) *api.TransferResponse {
	return &api.TransferResponse{
		FamilyTransaction: res.FamilyTransaction,
		WalletTransaction: res.WalletTransaction,
		Wallet:            res.Wallet,
		Balance:           res.Balance,
	}
}
