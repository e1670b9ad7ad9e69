package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// WalletService implements the Connect WalletService.
type WalletService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewWalletService creates a WalletService over the ledger.
func NewWalletService(l *ledger.Service, logger *slog.Logger) *WalletService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletService{ledger: l, logger: logger}
}

// CreateWallet opens a wallet for the caller.
func (s *WalletService) CreateWallet(ctx context.Context, req *connect.Request[api.CreateWalletRequest]) (*connect.Response[api.WalletResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	w, err := s.ledger.CreateWallet(ctx, actor, ledger.CreateWalletInput{
		Name:           req.Msg.Name,
		Currency:       req.Msg.Currency,
		InitialBalance: req.Msg.InitialBalance,
	})
	if err != nil {
		return nil, fail(s.logger, "CreateWallet failed", err, "user_id", actor.UserID)
	}

	s.logger.Info("Wallet created", "wallet_id", w.ID, "currency", w.Currency)
	return connect.NewResponse(&api.WalletResponse{Wallet: w}), nil
}

// GetWallet returns one of the caller's wallets.
func (s *WalletService) GetWallet(ctx context.Context, req *connect.Request[api.GetWalletRequest]) (*connect.Response[api.WalletResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	w, err := s.ledger.GetWallet(ctx, actor, req.Msg.WalletID)
	if err != nil {
		return nil, fail(s.logger, "GetWallet failed", err, "wallet_id", req.Msg.WalletID)
	}
	return connect.NewResponse(&api.WalletResponse{Wallet: w}), nil
}

// ListWallets returns the caller's wallets.
func (s *WalletService) ListWallets(ctx context.Context, req *connect.Request[api.ListWalletsRequest]) (*connect.Response[api.ListWalletsResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	wallets, err := s.ledger.ListWallets(ctx, actor)
	if err != nil {
		return nil, fail(s.logger, "ListWallets failed", err, "user_id", actor.UserID)
	}
	return connect.NewResponse(&api.ListWalletsResponse{Wallets: wallets}), nil
}

// CreateTransaction records an income or expense on a wallet.
func (s *WalletService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.CreateWalletTransaction(ctx, actor, walletTxInput(req.Msg.WalletTransaction))
	if err != nil {
		return nil, fail(s.logger, "CreateTransaction failed", err, "wallet_id", req.Msg.WalletID)
	}

	s.logger.Info("Wallet transaction created",
		"transaction_id", res.Transaction.ID,
		"wallet_id", res.Wallet.ID,
		"balance", res.Wallet.Balance.String(),
	)
	return connect.NewResponse(&api.WalletTransactionResponse{Transaction: res.Transaction, Wallet: res.Wallet}), nil
}

// UpdateTransaction rewrites a wallet transaction.
func (s *WalletService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.UpdateWalletTransaction(ctx, actor, req.Msg.TransactionID, walletTxInput(req.Msg.WalletTransaction))
	if err != nil {
		return nil, fail(s.logger, "UpdateTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Wallet transaction updated", "transaction_id", res.Transaction.ID, "wallet_id", res.Wallet.ID)
	return connect.NewResponse(&api.WalletTransactionResponse{Transaction: res.Transaction, Wallet: res.Wallet}), nil
}

// DeleteTransaction removes a wallet transaction and reverts its effect.
func (s *WalletService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteWalletTransactionRequest]) (*connect.Response[api.WalletResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	w, err := s.ledger.DeleteWalletTransaction(ctx, actor, req.Msg.TransactionID)
	if err != nil {
		return nil, fail(s.logger, "DeleteTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Wallet transaction deleted", "transaction_id", req.Msg.TransactionID, "wallet_id", w.ID)
	return connect.NewResponse(&api.WalletResponse{Wallet: w}), nil
}

// ListTransactions lists the caller's wallet transactions.
func (s *WalletService) ListTransactions(ctx context.Context, req *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListWalletTransactions(ctx, actor, storage.PersonalTxFilter{
		WalletID: req.Msg.WalletID,
		Type:     req.Msg.Type,
		From:     req.Msg.From,
		To:       req.Msg.To,
	})
	if err != nil {
		return nil, fail(s.logger, "ListTransactions failed", err, "wallet_id", req.Msg.WalletID)
	}
	return connect.NewResponse(&api.ListWalletTransactionsResponse{Transactions: txs}), nil
}

// ListCategories returns the category directory.
func (s *WalletService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories, err := s.ledger.ListCategories(ctx)
	if err != nil {
		return nil, fail(s.logger, "ListCategories failed", err)
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: categories}), nil
}

func walletTxInput(m api.WalletTransaction) ledger.WalletTxInput {
	return ledger.WalletTxInput{
		WalletID:   m.WalletID,
		Type:       m.Type,
		Amount:     m.Amount,
		CategoryID: m.CategoryID,
		Note:       m.Note,
		Location:   m.Location,
		Date:       m.Date,
	}
}
