package ledgerv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/mmynk/splitledger/pkg/ledgerv1"
)

const (
	// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	// SettlementServiceName is the fully-qualified name of the SettlementService service.
	SettlementServiceName = "splitledger.v1.SettlementService"
)

// Procedure names, in the form "/<service>/<method>".
const (
	ExpenseServiceCreateExpenseProcedure     = "/splitledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceUpdateExpenseProcedure     = "/splitledger.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure     = "/splitledger.v1.ExpenseService/DeleteExpense"
	ExpenseServiceGetExpenseProcedure        = "/splitledger.v1.ExpenseService/GetExpense"
	ExpenseServiceListGroupExpensesProcedure = "/splitledger.v1.ExpenseService/ListGroupExpenses"
	ExpenseServiceListUserExpensesProcedure  = "/splitledger.v1.ExpenseService/ListUserExpenses"
	ExpenseServicePreviewSplitProcedure      = "/splitledger.v1.ExpenseService/PreviewSplit"
	ExpenseServiceGetGroupBalancesProcedure  = "/splitledger.v1.ExpenseService/GetGroupBalances"
	ExpenseServiceGetUserBalanceProcedure    = "/splitledger.v1.ExpenseService/GetUserBalance"
	ExpenseServiceListGroupActivityProcedure = "/splitledger.v1.ExpenseService/ListGroupActivity"

	SettlementServiceGetSuggestionsProcedure     = "/splitledger.v1.SettlementService/GetSuggestions"
	SettlementServiceRecordSettlementProcedure   = "/splitledger.v1.SettlementService/RecordSettlement"
	SettlementServiceCompleteSettlementProcedure = "/splitledger.v1.SettlementService/CompleteSettlement"
	SettlementServiceCancelSettlementProcedure   = "/splitledger.v1.SettlementService/CancelSettlement"
	SettlementServiceListSettlementsProcedure    = "/splitledger.v1.SettlementService/ListSettlements"
)

// ExpenseServiceClient is a client for the splitledger.v1.ExpenseService service.
type ExpenseServiceClient interface {
	CreateExpense(context.Context, *connect.Request[v1.CreateExpenseRequest]) (*connect.Response[v1.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[v1.UpdateExpenseRequest]) (*connect.Response[v1.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[v1.DeleteExpenseRequest]) (*connect.Response[v1.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[v1.GetExpenseRequest]) (*connect.Response[v1.GetExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[v1.ListGroupExpensesRequest]) (*connect.Response[v1.ListGroupExpensesResponse], error)
	ListUserExpenses(context.Context, *connect.Request[v1.ListUserExpensesRequest]) (*connect.Response[v1.ListUserExpensesResponse], error)
	PreviewSplit(context.Context, *connect.Request[v1.PreviewSplitRequest]) (*connect.Response[v1.PreviewSplitResponse], error)
	GetGroupBalances(context.Context, *connect.Request[v1.GetGroupBalancesRequest]) (*connect.Response[v1.GetGroupBalancesResponse], error)
	GetUserBalance(context.Context, *connect.Request[v1.GetUserBalanceRequest]) (*connect.Response[v1.GetUserBalanceResponse], error)
	ListGroupActivity(context.Context, *connect.Request[v1.ListGroupActivityRequest]) (*connect.Response[v1.ListGroupActivityResponse], error)
}

// NewExpenseServiceClient constructs a client for the splitledger.v1.ExpenseService
// service. Messages are sent as JSON.
//
// The URL supplied here should be the base URL for the Connect server
// (for example, http://api.acme.com or https://acme.com/grpc).
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &expenseServiceClient{
		createExpense: connect.NewClient[v1.CreateExpenseRequest, v1.CreateExpenseResponse](
			httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opt),
		updateExpense: connect.NewClient[v1.UpdateExpenseRequest, v1.UpdateExpenseResponse](
			httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opt),
		deleteExpense: connect.NewClient[v1.DeleteExpenseRequest, v1.DeleteExpenseResponse](
			httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opt),
		getExpense: connect.NewClient[v1.GetExpenseRequest, v1.GetExpenseResponse](
			httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opt),
		listGroupExpenses: connect.NewClient[v1.ListGroupExpensesRequest, v1.ListGroupExpensesResponse](
			httpClient, baseURL+ExpenseServiceListGroupExpensesProcedure, opt),
		listUserExpenses: connect.NewClient[v1.ListUserExpensesRequest, v1.ListUserExpensesResponse](
			httpClient, baseURL+ExpenseServiceListUserExpensesProcedure, opt),
		previewSplit: connect.NewClient[v1.PreviewSplitRequest, v1.PreviewSplitResponse](
			httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opt),
		getGroupBalances: connect.NewClient[v1.GetGroupBalancesRequest, v1.GetGroupBalancesResponse](
			httpClient, baseURL+ExpenseServiceGetGroupBalancesProcedure, opt),
		getUserBalance: connect.NewClient[v1.GetUserBalanceRequest, v1.GetUserBalanceResponse](
			httpClient, baseURL+ExpenseServiceGetUserBalanceProcedure, opt),
		listGroupActivity: connect.NewClient[v1.ListGroupActivityRequest, v1.ListGroupActivityResponse](
			httpClient, baseURL+ExpenseServiceListGroupActivityProcedure, opt),
	}
}

type expenseServiceClient struct {
	createExpense     *connect.Client[v1.CreateExpenseRequest, v1.CreateExpenseResponse]
	updateExpense     *connect.Client[v1.UpdateExpenseRequest, v1.UpdateExpenseResponse]
	deleteExpense     *connect.Client[v1.DeleteExpenseRequest, v1.DeleteExpenseResponse]
	getExpense        *connect.Client[v1.GetExpenseRequest, v1.GetExpenseResponse]
	listGroupExpenses *connect.Client[v1.ListGroupExpensesRequest, v1.ListGroupExpensesResponse]
	listUserExpenses  *connect.Client[v1.ListUserExpensesRequest, v1.ListUserExpensesResponse]
	previewSplit      *connect.Client[v1.PreviewSplitRequest, v1.PreviewSplitResponse]
	getGroupBalances  *connect.Client[v1.GetGroupBalancesRequest, v1.GetGroupBalancesResponse]
	getUserBalance    *connect.Client[v1.GetUserBalanceRequest, v1.GetUserBalanceResponse]
	listGroupActivity *connect.Client[v1.ListGroupActivityRequest, v1.ListGroupActivityResponse]
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[v1.CreateExpenseRequest]) (*connect.Response[v1.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[v1.UpdateExpenseRequest]) (*connect.Response[v1.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[v1.DeleteExpenseRequest]) (*connect.Response[v1.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[v1.GetExpenseRequest]) (*connect.Response[v1.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[v1.ListGroupExpensesRequest]) (*connect.Response[v1.ListGroupExpensesResponse], error) {
	return c.listGroupExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListUserExpenses(ctx context.Context, req *connect.Request[v1.ListUserExpensesRequest]) (*connect.Response[v1.ListUserExpensesResponse], error) {
	return c.listUserExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[v1.PreviewSplitRequest]) (*connect.Response[v1.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[v1.GetGroupBalancesRequest]) (*connect.Response[v1.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetUserBalance(ctx context.Context, req *connect.Request[v1.GetUserBalanceRequest]) (*connect.Response[v1.GetUserBalanceResponse], error) {
	return c.getUserBalance.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListGroupActivity(ctx context.Context, req *connect.Request[v1.ListGroupActivityRequest]) (*connect.Response[v1.ListGroupActivityResponse], error) {
	return c.listGroupActivity.CallUnary(ctx, req)
}

// ExpenseServiceHandler is an implementation of the splitledger.v1.ExpenseService service.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[v1.CreateExpenseRequest]) (*connect.Response[v1.CreateExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[v1.UpdateExpenseRequest]) (*connect.Response[v1.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[v1.DeleteExpenseRequest]) (*connect.Response[v1.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[v1.GetExpenseRequest]) (*connect.Response[v1.GetExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[v1.ListGroupExpensesRequest]) (*connect.Response[v1.ListGroupExpensesResponse], error)
	ListUserExpenses(context.Context, *connect.Request[v1.ListUserExpensesRequest]) (*connect.Response[v1.ListUserExpensesResponse], error)
	PreviewSplit(context.Context, *connect.Request[v1.PreviewSplitRequest]) (*connect.Response[v1.PreviewSplitResponse], error)
	GetGroupBalances(context.Context, *connect.Request[v1.GetGroupBalancesRequest]) (*connect.Response[v1.GetGroupBalancesResponse], error)
	GetUserBalance(context.Context, *connect.Request[v1.GetUserBalanceRequest]) (*connect.Response[v1.GetUserBalanceResponse], error)
	ListGroupActivity(context.Context, *connect.Request[v1.ListGroupActivityRequest]) (*connect.Response[v1.ListGroupActivityResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opt))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opt))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opt))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opt))
	mux.Handle(ExpenseServiceListGroupExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opt))
	mux.Handle(ExpenseServiceListUserExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListUserExpensesProcedure, svc.ListUserExpenses, opt))
	mux.Handle(ExpenseServicePreviewSplitProcedure, connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opt))
	mux.Handle(ExpenseServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(ExpenseServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opt))
	mux.Handle(ExpenseServiceGetUserBalanceProcedure, connect.NewUnaryHandler(ExpenseServiceGetUserBalanceProcedure, svc.GetUserBalance, opt))
	mux.Handle(ExpenseServiceListGroupActivityProcedure, connect.NewUnaryHandler(ExpenseServiceListGroupActivityProcedure, svc.ListGroupActivity, opt))
	return "/" + ExpenseServiceName + "/", mux
}

// UnimplementedExpenseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedExpenseServiceHandler struct{}

func (UnimplementedExpenseServiceHandler) CreateExpense(context.Context, *connect.Request[v1.CreateExpenseRequest]) (*connect.Response[v1.CreateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceCreateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) UpdateExpense(context.Context, *connect.Request[v1.UpdateExpenseRequest]) (*connect.Response[v1.UpdateExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceUpdateExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) DeleteExpense(context.Context, *connect.Request[v1.DeleteExpenseRequest]) (*connect.Response[v1.DeleteExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceDeleteExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) GetExpense(context.Context, *connect.Request[v1.GetExpenseRequest]) (*connect.Response[v1.GetExpenseResponse], error) {
	return nil, unimplemented(ExpenseServiceGetExpenseProcedure)
}

func (UnimplementedExpenseServiceHandler) ListGroupExpenses(context.Context, *connect.Request[v1.ListGroupExpensesRequest]) (*connect.Response[v1.ListGroupExpensesResponse], error) {
	return nil, unimplemented(ExpenseServiceListGroupExpensesProcedure)
}

func (UnimplementedExpenseServiceHandler) ListUserExpenses(context.Context, *connect.Request[v1.ListUserExpensesRequest]) (*connect.Response[v1.ListUserExpensesResponse], error) {
	return nil, unimplemented(ExpenseServiceListUserExpensesProcedure)
}

func (UnimplementedExpenseServiceHandler) PreviewSplit(context.Context, *connect.Request[v1.PreviewSplitRequest]) (*connect.Response[v1.PreviewSplitResponse], error) {
	return nil, unimplemented(ExpenseServicePreviewSplitProcedure)
}

func (UnimplementedExpenseServiceHandler) GetGroupBalances(context.Context, *connect.Request[v1.GetGroupBalancesRequest]) (*connect.Response[v1.GetGroupBalancesResponse], error) {
	return nil, unimplemented(ExpenseServiceGetGroupBalancesProcedure)
}

func (UnimplementedExpenseServiceHandler) GetUserBalance(context.Context, *connect.Request[v1.GetUserBalanceRequest]) (*connect.Response[v1.GetUserBalanceResponse], error) {
	return nil, unimplemented(ExpenseServiceGetUserBalanceProcedure)
}

func (UnimplementedExpenseServiceHandler) ListGroupActivity(context.Context, *connect.Request[v1.ListGroupActivityRequest]) (*connect.Response[v1.ListGroupActivityResponse], error) {
	return nil, unimplemented(ExpenseServiceListGroupActivityProcedure)
}

// SettlementServiceClient is a client for the splitledger.v1.SettlementService service.
type SettlementServiceClient interface {
	GetSuggestions(context.Context, *connect.Request[v1.GetSuggestionsRequest]) (*connect.Response[v1.GetSuggestionsResponse], error)
	RecordSettlement(context.Context, *connect.Request[v1.RecordSettlementRequest]) (*connect.Response[v1.RecordSettlementResponse], error)
	CompleteSettlement(context.Context, *connect.Request[v1.CompleteSettlementRequest]) (*connect.Response[v1.CompleteSettlementResponse], error)
	CancelSettlement(context.Context, *connect.Request[v1.CancelSettlementRequest]) (*connect.Response[v1.CancelSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[v1.ListSettlementsRequest]) (*connect.Response[v1.ListSettlementsResponse], error)
}

// NewSettlementServiceClient constructs a client for the
// splitledger.v1.SettlementService service. Messages are sent as JSON.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opt := clientOptions(opts)
	return &settlementServiceClient{
		getSuggestions: connect.NewClient[v1.GetSuggestionsRequest, v1.GetSuggestionsResponse](
			httpClient, baseURL+SettlementServiceGetSuggestionsProcedure, opt),
		recordSettlement: connect.NewClient[v1.RecordSettlementRequest, v1.RecordSettlementResponse](
			httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opt),
		completeSettlement: connect.NewClient[v1.CompleteSettlementRequest, v1.CompleteSettlementResponse](
			httpClient, baseURL+SettlementServiceCompleteSettlementProcedure, opt),
		cancelSettlement: connect.NewClient[v1.CancelSettlementRequest, v1.CancelSettlementResponse](
			httpClient, baseURL+SettlementServiceCancelSettlementProcedure, opt),
		listSettlements: connect.NewClient[v1.ListSettlementsRequest, v1.ListSettlementsResponse](
			httpClient, baseURL+SettlementServiceListSettlementsProcedure, opt),
	}
}

type settlementServiceClient struct {
	getSuggestions     *connect.Client[v1.GetSuggestionsRequest, v1.GetSuggestionsResponse]
	recordSettlement   *connect.Client[v1.RecordSettlementRequest, v1.RecordSettlementResponse]
	completeSettlement *connect.Client[v1.CompleteSettlementRequest, v1.CompleteSettlementResponse]
	cancelSettlement   *connect.Client[v1.CancelSettlementRequest, v1.CancelSettlementResponse]
	listSettlements    *connect.Client[v1.ListSettlementsRequest, v1.ListSettlementsResponse]
}

func (c *settlementServiceClient) GetSuggestions(ctx context.Context, req *connect.Request[v1.GetSuggestionsRequest]) (*connect.Response[v1.GetSuggestionsResponse], error) {
	return c.getSuggestions.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[v1.RecordSettlementRequest]) (*connect.Response[v1.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CompleteSettlement(ctx context.Context, req *connect.Request[v1.CompleteSettlementRequest]) (*connect.Response[v1.CompleteSettlementResponse], error) {
	return c.completeSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) CancelSettlement(ctx context.Context, req *connect.Request[v1.CancelSettlementRequest]) (*connect.Response[v1.CancelSettlementResponse], error) {
	return c.cancelSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[v1.ListSettlementsRequest]) (*connect.Response[v1.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// SettlementServiceHandler is an implementation of the splitledger.v1.SettlementService service.
type SettlementServiceHandler interface {
	GetSuggestions(context.Context, *connect.Request[v1.GetSuggestionsRequest]) (*connect.Response[v1.GetSuggestionsResponse], error)
	RecordSettlement(context.Context, *connect.Request[v1.RecordSettlementRequest]) (*connect.Response[v1.RecordSettlementResponse], error)
	CompleteSettlement(context.Context, *connect.Request[v1.CompleteSettlementRequest]) (*connect.Response[v1.CompleteSettlementResponse], error)
	CancelSettlement(context.Context, *connect.Request[v1.CancelSettlementRequest]) (*connect.Response[v1.CancelSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[v1.ListSettlementsRequest]) (*connect.Response[v1.ListSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opt := handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceGetSuggestionsProcedure, connect.NewUnaryHandler(SettlementServiceGetSuggestionsProcedure, svc.GetSuggestions, opt))
	mux.Handle(SettlementServiceRecordSettlementProcedure, connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opt))
	mux.Handle(SettlementServiceCompleteSettlementProcedure, connect.NewUnaryHandler(SettlementServiceCompleteSettlementProcedure, svc.CompleteSettlement, opt))
	mux.Handle(SettlementServiceCancelSettlementProcedure, connect.NewUnaryHandler(SettlementServiceCancelSettlementProcedure, svc.CancelSettlement, opt))
	mux.Handle(SettlementServiceListSettlementsProcedure, connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opt))
	return "/" + SettlementServiceName + "/", mux
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) GetSuggestions(context.Context, *connect.Request[v1.GetSuggestionsRequest]) (*connect.Response[v1.GetSuggestionsResponse], error) {
	return nil, unimplemented(SettlementServiceGetSuggestionsProcedure)
}

func (UnimplementedSettlementServiceHandler) RecordSettlement(context.Context, *connect.Request[v1.RecordSettlementRequest]) (*connect.Response[v1.RecordSettlementResponse], error) {
	return nil, unimplemented(SettlementServiceRecordSettlementProcedure)
}

func (UnimplementedSettlementServiceHandler) CompleteSettlement(context.Context, *connect.Request[v1.CompleteSettlementRequest]) (*connect.Response[v1.CompleteSettlementResponse], error) {
	return nil, unimplemented(SettlementServiceCompleteSettlementProcedure)
}

func (UnimplementedSettlementServiceHandler) CancelSettlement(context.Context, *connect.Request[v1.CancelSettlementRequest]) (*connect.Response[v1.CancelSettlementResponse], error) {
	return nil, unimplemented(SettlementServiceCancelSettlementProcedure)
}

func (UnimplementedSettlementServiceHandler) ListSettlements(context.Context, *connect.Request[v1.ListSettlementsRequest]) (*connect.Response[v1.ListSettlementsResponse], error) {
	return nil, unimplemented(SettlementServiceListSettlementsProcedure)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure[1:]+" is not implemented"))
}
