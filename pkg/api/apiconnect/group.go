package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "splitledger.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure       = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure          = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceAddMemberProcedure         = "/splitledger.v1.GroupService/AddMember"
	GroupServiceCreateTransactionProcedure = "/splitledger.v1.GroupService/CreateTransaction"
	GroupServiceGetTransactionProcedure    = "/splitledger.v1.GroupService/GetTransaction"
	GroupServiceListTransactionsProcedure  = "/splitledger.v1.GroupService/ListTransactions"
	GroupServiceDeleteTransactionProcedure = "/splitledger.v1.GroupService/DeleteTransaction"
	GroupServiceSettleParticipantProcedure = "/splitledger.v1.GroupService/SettleParticipant"
	GroupServiceGetSummaryProcedure        = "/splitledger.v1.GroupService/GetSummary"
)

// GroupServiceHandler is implemented by the group service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.GroupResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListGroupTransactionsRequest]) (*connect.Response[api.ListGroupTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteGroupTransactionRequest]) (*connect.Response[api.DeleteGroupTransactionResponse], error)
	SettleParticipant(context.Context, *connect.Request[api.SettleParticipantRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewGroupServiceHandler returns the mount path and handler for svc.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + GroupServiceName + "/", route(map[string]*connect.Handler{
		GroupServiceCreateGroupProcedure:       unary(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts),
		GroupServiceGetGroupProcedure:          unary(GroupServiceGetGroupProcedure, svc.GetGroup, opts),
		GroupServiceAddMemberProcedure:         unary(GroupServiceAddMemberProcedure, svc.AddMember, opts),
		GroupServiceCreateTransactionProcedure: unary(GroupServiceCreateTransactionProcedure, svc.CreateTransaction, opts),
		GroupServiceGetTransactionProcedure:    unary(GroupServiceGetTransactionProcedure, svc.GetTransaction, opts),
		GroupServiceListTransactionsProcedure:  unary(GroupServiceListTransactionsProcedure, svc.ListTransactions, opts),
		GroupServiceDeleteTransactionProcedure: unary(GroupServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts),
		GroupServiceSettleParticipantProcedure: unary(GroupServiceSettleParticipantProcedure, svc.SettleParticipant, opts),
		GroupServiceGetSummaryProcedure:        unary(GroupServiceGetSummaryProcedure, svc.GetSummary, opts),
	})
}

// GroupServiceClient is a client for the GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.GroupResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListGroupTransactionsRequest]) (*connect.Response[api.ListGroupTransactionsResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteGroupTransactionRequest]) (*connect.Response[api.DeleteGroupTransactionResponse], error)
	SettleParticipant(context.Context, *connect.Request[api.SettleParticipantRequest]) (*connect.Response[api.GroupTransactionResponse], error)
	GetSummary(context.Context, *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService service.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	return &groupServiceClient{
		createGroup:       client[api.CreateGroupRequest, api.GroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:          client[api.GetGroupRequest, api.GroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		addMember:         client[api.AddGroupMemberRequest, api.GroupResponse](httpClient, baseURL, GroupServiceAddMemberProcedure, opts),
		createTransaction: client[api.CreateGroupTransactionRequest, api.GroupTransactionResponse](httpClient, baseURL, GroupServiceCreateTransactionProcedure, opts),
		getTransaction:    client[api.GetGroupTransactionRequest, api.GroupTransactionResponse](httpClient, baseURL, GroupServiceGetTransactionProcedure, opts),
		listTransactions:  client[api.ListGroupTransactionsRequest, api.ListGroupTransactionsResponse](httpClient, baseURL, GroupServiceListTransactionsProcedure, opts),
		deleteTransaction: client[api.DeleteGroupTransactionRequest, api.DeleteGroupTransactionResponse](httpClient, baseURL, GroupServiceDeleteTransactionProcedure, opts),
		settleParticipant: client[api.SettleParticipantRequest, api.GroupTransactionResponse](httpClient, baseURL, GroupServiceSettleParticipantProcedure, opts),
		getSummary:        client[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse](httpClient, baseURL, GroupServiceGetSummaryProcedure, opts),
	}
}

type groupServiceClient struct {
	createGroup       *connect.Client[api.CreateGroupRequest, api.GroupResponse]
	getGroup          *connect.Client[api.GetGroupRequest, api.GroupResponse]
	addMember         *connect.Client[api.AddGroupMemberRequest, api.GroupResponse]
	createTransaction *connect.Client[api.CreateGroupTransactionRequest, api.GroupTransactionResponse]
	getTransaction    *connect.Client[api.GetGroupTransactionRequest, api.GroupTransactionResponse]
	listTransactions  *connect.Client[api.ListGroupTransactionsRequest, api.ListGroupTransactionsResponse]
	deleteTransaction *connect.Client[api.DeleteGroupTransactionRequest, api.DeleteGroupTransactionResponse]
	settleParticipant *connect.Client[api.SettleParticipantRequest, api.GroupTransactionResponse]
	getSummary        *connect.Client[api.GetGroupSummaryRequest, api.GetGroupSummaryResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.GroupResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetTransaction(ctx context.Context, req *connect.Request[api.GetGroupTransactionRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListGroupTransactionsRequest]) (*connect.Response[api.ListGroupTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *groupServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteGroupTransactionRequest]) (*connect.Response[api.DeleteGroupTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *groupServiceClient) SettleParticipant(ctx context.Context, req *connect.Request[api.SettleParticipantRequest]) (*connect.Response[api.GroupTransactionResponse], error) {
	return c.settleParticipant.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	return c.getSummary.CallUnary(ctx, req)
}
