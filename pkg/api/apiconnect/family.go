package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// FamilyServiceName is the fully-qualified name of the FamilyService service.
const FamilyServiceName = "splitledger.v1.FamilyService"

const (
	FamilyServiceCreateFamilyProcedure       = "/splitledger.v1.FamilyService/CreateFamily"
	FamilyServiceAddMemberProcedure          = "/splitledger.v1.FamilyService/AddMember"
	FamilyServiceRemoveMemberProcedure       = "/splitledger.v1.FamilyService/RemoveMember"
	FamilyServiceDeleteFamilyProcedure       = "/splitledger.v1.FamilyService/DeleteFamily"
	FamilyServiceGetBalanceProcedure         = "/splitledger.v1.FamilyService/GetBalance"
	FamilyServiceCreateTransactionProcedure  = "/splitledger.v1.FamilyService/CreateTransaction"
	FamilyServiceUpdateTransactionProcedure  = "/splitledger.v1.FamilyService/UpdateTransaction"
	FamilyServiceDeleteTransactionProcedure  = "/splitledger.v1.FamilyService/DeleteTransaction"
	FamilyServiceListTransactionsProcedure   = "/splitledger.v1.FamilyService/ListTransactions"
	FamilyServiceTransferToFamilyProcedure   = "/splitledger.v1.FamilyService/TransferToFamily"
	FamilyServiceTransferFromFamilyProcedure = "/splitledger.v1.FamilyService/TransferFromFamily"
	FamilyServiceLinkWalletProcedure         = "/splitledger.v1.FamilyService/LinkWallet"
	FamilyServiceUnlinkWalletProcedure       = "/splitledger.v1.FamilyService/UnlinkWallet"
)

// FamilyServiceHandler is implemented by the family service.
type FamilyServiceHandler interface {
	CreateFamily(context.Context, *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error)
	AddMember(context.Context, *connect.Request[api.AddFamilyMemberRequest]) (*connect.Response[api.AddFamilyMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveFamilyMemberRequest]) (*connect.Response[api.FamilyBalanceResponse], error)
	DeleteFamily(context.Context, *connect.Request[api.DeleteFamilyRequest]) (*connect.Response[api.DeleteFamilyResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetFamilyBalanceRequest]) (*connect.Response[api.GetFamilyBalanceResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteFamilyTransactionRequest]) (*connect.Response[api.FamilyBalanceResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListFamilyTransactionsRequest]) (*connect.Response[api.ListFamilyTransactionsResponse], error)
	TransferToFamily(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	TransferFromFamily(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	LinkWallet(context.Context, *connect.Request[api.LinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	UnlinkWallet(context.Context, *connect.Request[api.UnlinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
}

// NewFamilyServiceHandler returns the mount path and handler for svc.
func NewFamilyServiceHandler(svc FamilyServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + FamilyServiceName + "/", route(map[string]*connect.Handler{
		FamilyServiceCreateFamilyProcedure:       unary(FamilyServiceCreateFamilyProcedure, svc.CreateFamily, opts),
		FamilyServiceAddMemberProcedure:          unary(FamilyServiceAddMemberProcedure, svc.AddMember, opts),
		FamilyServiceRemoveMemberProcedure:       unary(FamilyServiceRemoveMemberProcedure, svc.RemoveMember, opts),
		FamilyServiceDeleteFamilyProcedure:       unary(FamilyServiceDeleteFamilyProcedure, svc.DeleteFamily, opts),
		FamilyServiceGetBalanceProcedure:         unary(FamilyServiceGetBalanceProcedure, svc.GetBalance, opts),
		FamilyServiceCreateTransactionProcedure:  unary(FamilyServiceCreateTransactionProcedure, svc.CreateTransaction, opts),
		FamilyServiceUpdateTransactionProcedure:  unary(FamilyServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts),
		FamilyServiceDeleteTransactionProcedure:  unary(FamilyServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts),
		FamilyServiceListTransactionsProcedure:   unary(FamilyServiceListTransactionsProcedure, svc.ListTransactions, opts),
		FamilyServiceTransferToFamilyProcedure:   unary(FamilyServiceTransferToFamilyProcedure, svc.TransferToFamily, opts),
		FamilyServiceTransferFromFamilyProcedure: unary(FamilyServiceTransferFromFamilyProcedure, svc.TransferFromFamily, opts),
		FamilyServiceLinkWalletProcedure:         unary(FamilyServiceLinkWalletProcedure, svc.LinkWallet, opts),
		FamilyServiceUnlinkWalletProcedure:       unary(FamilyServiceUnlinkWalletProcedure, svc.UnlinkWallet, opts),
	})
}

// FamilyServiceClient is a client for the FamilyService service.
type FamilyServiceClient interface {
	CreateFamily(context.Context, *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error)
	AddMember(context.Context, *connect.Request[api.AddFamilyMemberRequest]) (*connect.Response[api.AddFamilyMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveFamilyMemberRequest]) (*connect.Response[api.FamilyBalanceResponse], error)
	DeleteFamily(context.Context, *connect.Request[api.DeleteFamilyRequest]) (*connect.Response[api.DeleteFamilyResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetFamilyBalanceRequest]) (*connect.Response[api.GetFamilyBalanceResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteFamilyTransactionRequest]) (*connect.Response[api.FamilyBalanceResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListFamilyTransactionsRequest]) (*connect.Response[api.ListFamilyTransactionsResponse], error)
	TransferToFamily(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	TransferFromFamily(context.Context, *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error)
	LinkWallet(context.Context, *connect.Request[api.LinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
	UnlinkWallet(context.Context, *connect.Request[api.UnlinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error)
}

// NewFamilyServiceClient constructs a client for the FamilyService service.
func NewFamilyServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FamilyServiceClient {
	return &familyServiceClient{
		createFamily:       client[api.CreateFamilyRequest, api.CreateFamilyResponse](httpClient, baseURL, FamilyServiceCreateFamilyProcedure, opts),
		addMember:          client[api.AddFamilyMemberRequest, api.AddFamilyMemberResponse](httpClient, baseURL, FamilyServiceAddMemberProcedure, opts),
		removeMember:       client[api.RemoveFamilyMemberRequest, api.FamilyBalanceResponse](httpClient, baseURL, FamilyServiceRemoveMemberProcedure, opts),
		deleteFamily:       client[api.DeleteFamilyRequest, api.DeleteFamilyResponse](httpClient, baseURL, FamilyServiceDeleteFamilyProcedure, opts),
		getBalance:         client[api.GetFamilyBalanceRequest, api.GetFamilyBalanceResponse](httpClient, baseURL, FamilyServiceGetBalanceProcedure, opts),
		createTransaction:  client[api.CreateFamilyTransactionRequest, api.FamilyTransactionResponse](httpClient, baseURL, FamilyServiceCreateTransactionProcedure, opts),
		updateTransaction:  client[api.UpdateFamilyTransactionRequest, api.FamilyTransactionResponse](httpClient, baseURL, FamilyServiceUpdateTransactionProcedure, opts),
		deleteTransaction:  client[api.DeleteFamilyTransactionRequest, api.FamilyBalanceResponse](httpClient, baseURL, FamilyServiceDeleteTransactionProcedure, opts),
		listTransactions:   client[api.ListFamilyTransactionsRequest, api.ListFamilyTransactionsResponse](httpClient, baseURL, FamilyServiceListTransactionsProcedure, opts),
		transferToFamily:   client[api.TransferRequest, api.TransferResponse](httpClient, baseURL, FamilyServiceTransferToFamilyProcedure, opts),
		transferFromFamily: client[api.TransferRequest, api.TransferResponse](httpClient, baseURL, FamilyServiceTransferFromFamilyProcedure, opts),
		linkWallet:         client[api.LinkWalletRequest, api.FamilyTransactionResponse](httpClient, baseURL, FamilyServiceLinkWalletProcedure, opts),
		unlinkWallet:       client[api.UnlinkWalletRequest, api.FamilyTransactionResponse](httpClient, baseURL, FamilyServiceUnlinkWalletProcedure, opts),
	}
}

type familyServiceClient struct {
	createFamily       *connect.Client[api.CreateFamilyRequest, api.CreateFamilyResponse]
	addMember          *connect.Client[api.AddFamilyMemberRequest, api.AddFamilyMemberResponse]
	removeMember       *connect.Client[api.RemoveFamilyMemberRequest, api.FamilyBalanceResponse]
	deleteFamily       *connect.Client[api.DeleteFamilyRequest, api.DeleteFamilyResponse]
	getBalance         *connect.Client[api.GetFamilyBalanceRequest, api.GetFamilyBalanceResponse]
	createTransaction  *connect.Client[api.CreateFamilyTransactionRequest, api.FamilyTransactionResponse]
	updateTransaction  *connect.Client[api.UpdateFamilyTransactionRequest, api.FamilyTransactionResponse]
	deleteTransaction  *connect.Client[api.DeleteFamilyTransactionRequest, api.FamilyBalanceResponse]
	listTransactions   *connect.Client[api.ListFamilyTransactionsRequest, api.ListFamilyTransactionsResponse]
	transferToFamily   *connect.Client[api.TransferRequest, api.TransferResponse]
	transferFromFamily *connect.Client[api.TransferRequest, api.TransferResponse]
	linkWallet         *connect.Client[api.LinkWalletRequest, api.FamilyTransactionResponse]
	unlinkWallet       *connect.Client[api.UnlinkWalletRequest, api.FamilyTransactionResponse]
}

func (c *familyServiceClient) CreateFamily(ctx context.Context, req *connect.Request[api.CreateFamilyRequest]) (*connect.Response[api.CreateFamilyResponse], error) {
	return c.createFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddFamilyMemberRequest]) (*connect.Response[api.AddFamilyMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *familyServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveFamilyMemberRequest]) (*connect.Response[api.FamilyBalanceResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

func (c *familyServiceClient) DeleteFamily(ctx context.Context, req *connect.Request[api.DeleteFamilyRequest]) (*connect.Response[api.DeleteFamilyResponse], error) {
	return c.deleteFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetFamilyBalanceRequest]) (*connect.Response[api.GetFamilyBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *familyServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *familyServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateFamilyTransactionRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *familyServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteFamilyTransactionRequest]) (*connect.Response[api.FamilyBalanceResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *familyServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListFamilyTransactionsRequest]) (*connect.Response[api.ListFamilyTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *familyServiceClient) TransferToFamily(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	return c.transferToFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) TransferFromFamily(ctx context.Context, req *connect.Request[api.TransferRequest]) (*connect.Response[api.TransferResponse], error) {
	return c.transferFromFamily.CallUnary(ctx, req)
}

func (c *familyServiceClient) LinkWallet(ctx context.Context, req *connect.Request[api.LinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	return c.linkWallet.CallUnary(ctx, req)
}

func (c *familyServiceClient) UnlinkWallet(ctx context.Context, req *connect.Request[api.UnlinkWalletRequest]) (*connect.Response[api.FamilyTransactionResponse], error) {
	return c.unlinkWallet.CallUnary(ctx, req)
}
