package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// WalletServiceName is the fully-qualified name of the WalletService service.
const WalletServiceName = "splitledger.v1.WalletService"

const (
	WalletServiceCreateWalletProcedure      = "/splitledger.v1.WalletService/CreateWallet"
	WalletServiceGetWalletProcedure         = "/splitledger.v1.WalletService/GetWallet"
	WalletServiceListWalletsProcedure       = "/splitledger.v1.WalletService/ListWallets"
	WalletServiceCreateTransactionProcedure = "/splitledger.v1.WalletService/CreateTransaction"
	WalletServiceUpdateTransactionProcedure = "/splitledger.v1.WalletService/UpdateTransaction"
	WalletServiceDeleteTransactionProcedure = "/splitledger.v1.WalletService/DeleteTransaction"
	WalletServiceListTransactionsProcedure  = "/splitledger.v1.WalletService/ListTransactions"
	WalletServiceListCategoriesProcedure    = "/splitledger.v1.WalletService/ListCategories"
)

// WalletServiceHandler is implemented by the wallet service.
type WalletServiceHandler interface {
	CreateWallet(context.Context, *connect.Request[api.CreateWalletRequest]) (*connect.Response[api.WalletResponse], error)
	GetWallet(context.Context, *connect.Request[api.GetWalletRequest]) (*connect.Response[api.WalletResponse], error)
	ListWallets(context.Context, *connect.Request[api.ListWalletsRequest]) (*connect.Response[api.ListWalletsResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteWalletTransactionRequest]) (*connect.Response[api.WalletResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewWalletServiceHandler returns the mount path and handler for svc.
func NewWalletServiceHandler(svc WalletServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + WalletServiceName + "/", route(map[string]*connect.Handler{
		WalletServiceCreateWalletProcedure:      unary(WalletServiceCreateWalletProcedure, svc.CreateWallet, opts),
		WalletServiceGetWalletProcedure:         unary(WalletServiceGetWalletProcedure, svc.GetWallet, opts),
		WalletServiceListWalletsProcedure:       unary(WalletServiceListWalletsProcedure, svc.ListWallets, opts),
		WalletServiceCreateTransactionProcedure: unary(WalletServiceCreateTransactionProcedure, svc.CreateTransaction, opts),
		WalletServiceUpdateTransactionProcedure: unary(WalletServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts),
		WalletServiceDeleteTransactionProcedure: unary(WalletServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts),
		WalletServiceListTransactionsProcedure:  unary(WalletServiceListTransactionsProcedure, svc.ListTransactions, opts),
		WalletServiceListCategoriesProcedure:    unary(WalletServiceListCategoriesProcedure, svc.ListCategories, opts),
	})
}

// WalletServiceClient is a client for the WalletService service.
type WalletServiceClient interface {
	CreateWallet(context.Context, *connect.Request[api.CreateWalletRequest]) (*connect.Response[api.WalletResponse], error)
	GetWallet(context.Context, *connect.Request[api.GetWalletRequest]) (*connect.Response[api.WalletResponse], error)
	ListWallets(context.Context, *connect.Request[api.ListWalletsRequest]) (*connect.Response[api.ListWalletsResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteWalletTransactionRequest]) (*connect.Response[api.WalletResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
}

// NewWalletServiceClient constructs a client for the WalletService service.
func NewWalletServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) WalletServiceClient {
	return &walletServiceClient{
		createWallet:      client[api.CreateWalletRequest, api.WalletResponse](httpClient, baseURL, WalletServiceCreateWalletProcedure, opts),
		getWallet:         client[api.GetWalletRequest, api.WalletResponse](httpClient, baseURL, WalletServiceGetWalletProcedure, opts),
		listWallets:       client[api.ListWalletsRequest, api.ListWalletsResponse](httpClient, baseURL, WalletServiceListWalletsProcedure, opts),
		createTransaction: client[api.CreateWalletTransactionRequest, api.WalletTransactionResponse](httpClient, baseURL, WalletServiceCreateTransactionProcedure, opts),
		updateTransaction: client[api.UpdateWalletTransactionRequest, api.WalletTransactionResponse](httpClient, baseURL, WalletServiceUpdateTransactionProcedure, opts),
		deleteTransaction: client[api.DeleteWalletTransactionRequest, api.WalletResponse](httpClient, baseURL, WalletServiceDeleteTransactionProcedure, opts),
		listTransactions:  client[api.ListWalletTransactionsRequest, api.ListWalletTransactionsResponse](httpClient, baseURL, WalletServiceListTransactionsProcedure, opts),
		listCategories:    client[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL, WalletServiceListCategoriesProcedure, opts),
	}
}

type walletServiceClient struct {
	createWallet      *connect.Client[api.CreateWalletRequest, api.WalletResponse]
	getWallet         *connect.Client[api.GetWalletRequest, api.WalletResponse]
	listWallets       *connect.Client[api.ListWalletsRequest, api.ListWalletsResponse]
	createTransaction *connect.Client[api.CreateWalletTransactionRequest, api.WalletTransactionResponse]
	updateTransaction *connect.Client[api.UpdateWalletTransactionRequest, api.WalletTransactionResponse]
	deleteTransaction *connect.Client[api.DeleteWalletTransactionRequest, api.WalletResponse]
	listTransactions  *connect.Client[api.ListWalletTransactionsRequest, api.ListWalletTransactionsResponse]
	listCategories    *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
}

func (c *walletServiceClient) CreateWallet(ctx context.Context, req *connect.Request[api.CreateWalletRequest]) (*connect.Response[api.WalletResponse], error) {
	return c.createWallet.CallUnary(ctx, req)
}

func (c *walletServiceClient) GetWallet(ctx context.Context, req *connect.Request[api.GetWalletRequest]) (*connect.Response[api.WalletResponse], error) {
	return c.getWallet.CallUnary(ctx, req)
}

func (c *walletServiceClient) ListWallets(ctx context.Context, req *connect.Request[api.ListWalletsRequest]) (*connect.Response[api.ListWalletsResponse], error) {
	return c.listWallets.CallUnary(ctx, req)
}

func (c *walletServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *walletServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateWalletTransactionRequest]) (*connect.Response[api.WalletTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *walletServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteWalletTransactionRequest]) (*connect.Response[api.WalletResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *walletServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListWalletTransactionsRequest]) (*connect.Response[api.ListWalletTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *walletServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}
