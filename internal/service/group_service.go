package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewGroupService creates a GroupService over the ledger.
func NewGroupService(l *ledger.Service, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{ledger: l, logger: logger}
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CreateGroup request received", "name", req.Msg.Name, "members_count", len(req.Msg.Members))

	g, err := s.ledger.CreateGroup(ctx, actor, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, fail(s.logger, "CreateGroup failed", err)
	}

	s.logger.Info("Group created", "group_id", g.ID)
	return connect.NewResponse(&api.GroupResponse{Group: g}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	g, err := s.ledger.GetGroup(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, fail(s.logger, "GetGroup failed", err, "group_id", req.Msg.GroupID)
	}
	return connect.NewResponse(&api.GroupResponse{Group: g}), nil
}

// AddMember adds a registered user to the group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	g, err := s.ledger.AddGroupMember(ctx, actor, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, fail(s.logger, "AddMember failed", err, "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)
	}

	s.logger.Info("Group member added", "group_id", g.ID, "user_id", req.Msg.UserID)
	return connect.NewResponse(&api.GroupResponse{Group: g}), nil
}

// CreateTransaction splits a paid expense between participants.
func (s *GroupService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	participants := make([]ledger.ParticipantInput, len(req.Msg.Shares))
	for i, sh := range req.Msg.Shares {
		participants[i] = ledger.ParticipantInput{Ref: sh.ParticipantRef}
		if sh.Percentage != nil {
			participants[i].Percentage = *sh.Percentage
		}
	}

	tx, err := s.ledger.CreateGroupTransaction(ctx, actor, ledger.GroupTxInput{
		GroupID:      req.Msg.GroupID,
		Payer:        req.Msg.Payer,
		Description:  req.Msg.Description,
		Amount:       req.Msg.Amount,
		Strategy:     req.Msg.Strategy,
		CategoryID:   req.Msg.CategoryID,
		Participants: participants,
	})
	if err != nil {
		return nil, fail(s.logger, "CreateTransaction failed", err, "group_id", req.Msg.GroupID, "strategy", req.Msg.Strategy)
	}

	s.logger.Info("Group transaction created",
		"transaction_id", tx.ID,
		"group_id", tx.GroupID,
		"participants", len(tx.Participants),
	)
	return connect.NewResponse(&api.GroupTransactionResponse{Transaction: tx}), nil
}

// GetTransaction returns one group transaction.
func (s *GroupService) GetTransaction(ctx context.Context, req *connect.Request[api.GetGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.GetGroupTransaction(ctx, actor, req.Msg.GroupID, req.Msg.TransactionID)
	if err != nil {
		return nil, fail(s.logger, "GetTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}
	return connect.NewResponse(&api.GroupTransactionResponse{Transaction: tx}), nil
}

// ListTransactions lists a group's transactions.
func (s *GroupService) ListTransactions(ctx context.Context, req *connect.Request[api.ListGroupTransactionsRequest]) (*connect.Response[api.ListGroupTransactionsResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListGroupTransactions(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, fail(s.logger, "ListTransactions failed", err, "group_id", req.Msg.GroupID)
	}
	return connect.NewResponse(&api.ListGroupTransactionsResponse{Transactions: txs}), nil
}

// DeleteTransaction removes a group transaction.
func (s *GroupService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteGroupTransactionRequest]) (*connect.Response[api.DeleteGroupTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteGroupTransaction(ctx, actor, req.Msg.GroupID, req.Msg.TransactionID); err != nil {
		return nil, fail(s.logger, "DeleteTransaction failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Group transaction deleted", "transaction_id", req.Msg.TransactionID)
	return connect.NewResponse(&api.DeleteGroupTransactionResponse{}), nil
}

// SettleParticipant marks one participant's share as paid.
func (s *GroupService) SettleParticipant(ctx context.Context, req *connect.Request[api.SettleParticipantRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.SettleParticipant(ctx, actor, ledger.SettleInput{
		GroupID:       req.Msg.GroupID,
		TransactionID: req.Msg.TransactionID,
		Participant:   req.Msg.Participant,
		WalletID:      req.Msg.WalletID,
	})
	if err != nil {
		return nil, fail(s.logger, "SettleParticipant failed", err, "transaction_id", req.Msg.TransactionID)
	}

	s.logger.Info("Participant settled", "transaction_id", tx.ID, "participant", req.Msg.Participant.Key())
	return connect.NewResponse(&api.GroupTransactionResponse{Transaction: tx}), nil
}

// GetSummary returns per-member totals and simplified debts.
func (s *GroupService) GetSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}

	sum, err := s.ledger.GroupSummary(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, fail(s.logger, "GetSummary failed", err, "group_id", req.Msg.GroupID)
	}

	resp := &api.GetGroupSummaryResponse{
		Group:    sum.Group,
		Balances: make([]api.MemberBalance, len(sum.Balances)),
		Debts:    make([]api.Debt, len(sum.Debts)),
	}
	for i, b := range sum.Balances {
		resp.Balances[i] = api.MemberBalance{
			Member:          b.Member,
			NetBalance:      round(b.NetBalance),
			TotalPaid:       round(b.TotalPaid),
			TotalOwed:       round(b.TotalOwed),
			TotalReceivable: round(b.TotalReceivable),
		}
	}
	for i, d := range sum.Debts {
		resp.Debts[i] = api.Debt{From: d.From, To: d.To, Amount: round(d.Amount)}
	}

	s.logger.Info("GetSummary successful", "group_id", req.Msg.GroupID, "debts", len(resp.Debts))
	return connect.NewResponse(resp), nil
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
