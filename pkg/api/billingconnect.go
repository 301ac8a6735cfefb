package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillingServiceName is the fully-qualified name of the BillingService service.
const BillingServiceName = "wattsplit.v1.BillingService"

// These constants are the fully-qualified names of the RPCs defined in this package. They're
// exposed at runtime as Spec.Procedure and as the final two segments of the HTTP route.
const (
	// BillingServiceGetSessionProcedure is the fully-qualified name of the BillingService's GetSession RPC.
	BillingServiceGetSessionProcedure = "/wattsplit.v1.BillingService/GetSession"
	// BillingServiceUpdateSessionProcedure is the fully-qualified name of the BillingService's UpdateSession RPC.
	BillingServiceUpdateSessionProcedure = "/wattsplit.v1.BillingService/UpdateSession"
	// BillingServiceLoadLastSessionProcedure is the fully-qualified name of the BillingService's LoadLastSession RPC.
	BillingServiceLoadLastSessionProcedure = "/wattsplit.v1.BillingService/LoadLastSession"
	// BillingServiceResetSessionProcedure is the fully-qualified name of the BillingService's ResetSession RPC.
	BillingServiceResetSessionProcedure = "/wattsplit.v1.BillingService/ResetSession"
	// BillingServiceValidateStageProcedure is the fully-qualified name of the BillingService's ValidateStage RPC.
	BillingServiceValidateStageProcedure = "/wattsplit.v1.BillingService/ValidateStage"
	// BillingServiceComputeProcedure is the fully-qualified name of the BillingService's Compute RPC.
	BillingServiceComputeProcedure = "/wattsplit.v1.BillingService/Compute"
	// BillingServiceBuildReportProcedure is the fully-qualified name of the BillingService's BuildReport RPC.
	BillingServiceBuildReportProcedure = "/wattsplit.v1.BillingService/BuildReport"
	// BillingServiceAdvanceStageProcedure is the fully-qualified name of the BillingService's AdvanceStage RPC.
	BillingServiceAdvanceStageProcedure = "/wattsplit.v1.BillingService/AdvanceStage"
	// BillingServiceListHistoryProcedure is the fully-qualified name of the BillingService's ListHistory RPC.
	BillingServiceListHistoryProcedure = "/wattsplit.v1.BillingService/ListHistory"
	// BillingServiceGetHistoryEntryProcedure is the fully-qualified name of the BillingService's GetHistoryEntry RPC.
	BillingServiceGetHistoryEntryProcedure = "/wattsplit.v1.BillingService/GetHistoryEntry"
	// BillingServiceDeleteHistoryEntryProcedure is the fully-qualified name of the BillingService's DeleteHistoryEntry RPC.
	BillingServiceDeleteHistoryEntryProcedure = "/wattsplit.v1.BillingService/DeleteHistoryEntry"
	// BillingServiceClearHistoryProcedure is the fully-qualified name of the BillingService's ClearHistory RPC.
	BillingServiceClearHistoryProcedure = "/wattsplit.v1.BillingService/ClearHistory"
)

// BillingServiceClient is a client for the wattsplit.v1.BillingService service.
type BillingServiceClient interface {
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error)
	UpdateSession(context.Context, *connect.Request[UpdateSessionRequest]) (*connect.Response[UpdateSessionResponse], error)
	LoadLastSession(context.Context, *connect.Request[LoadLastSessionRequest]) (*connect.Response[LoadLastSessionResponse], error)
	ResetSession(context.Context, *connect.Request[ResetSessionRequest]) (*connect.Response[ResetSessionResponse], error)
	ValidateStage(context.Context, *connect.Request[ValidateStageRequest]) (*connect.Response[ValidateStageResponse], error)
	Compute(context.Context, *connect.Request[ComputeRequest]) (*connect.Response[ComputeResponse], error)
	BuildReport(context.Context, *connect.Request[BuildReportRequest]) (*connect.Response[BuildReportResponse], error)
	AdvanceStage(context.Context, *connect.Request[AdvanceStageRequest]) (*connect.Response[AdvanceStageResponse], error)
	ListHistory(context.Context, *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error)
	GetHistoryEntry(context.Context, *connect.Request[GetHistoryEntryRequest]) (*connect.Response[GetHistoryEntryResponse], error)
	DeleteHistoryEntry(context.Context, *connect.Request[DeleteHistoryEntryRequest]) (*connect.Response[DeleteHistoryEntryResponse], error)
	ClearHistory(context.Context, *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error)
}

// NewBillingServiceClient constructs a client for the wattsplit.v1.BillingService service. The
// client speaks JSON; options are applied after the codec option.
//
// The URL supplied here should be the base URL for the Connect server (for example,
// http://api.acme.com or https://acme.com/grpc).
func NewBillingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &billingServiceClient{
		getSession: connect.NewClient[GetSessionRequest, GetSessionResponse](
			httpClient,
			baseURL+BillingServiceGetSessionProcedure,
			opts...,
		),
		updateSession: connect.NewClient[UpdateSessionRequest, UpdateSessionResponse](
			httpClient,
			baseURL+BillingServiceUpdateSessionProcedure,
			opts...,
		),
		loadLastSession: connect.NewClient[LoadLastSessionRequest, LoadLastSessionResponse](
			httpClient,
			baseURL+BillingServiceLoadLastSessionProcedure,
			opts...,
		),
		resetSession: connect.NewClient[ResetSessionRequest, ResetSessionResponse](
			httpClient,
			baseURL+BillingServiceResetSessionProcedure,
			opts...,
		),
		validateStage: connect.NewClient[ValidateStageRequest, ValidateStageResponse](
			httpClient,
			baseURL+BillingServiceValidateStageProcedure,
			opts...,
		),
		compute: connect.NewClient[ComputeRequest, ComputeResponse](
			httpClient,
			baseURL+BillingServiceComputeProcedure,
			opts...,
		),
		buildReport: connect.NewClient[BuildReportRequest, BuildReportResponse](
			httpClient,
			baseURL+BillingServiceBuildReportProcedure,
			opts...,
		),
		advanceStage: connect.NewClient[AdvanceStageRequest, AdvanceStageResponse](
			httpClient,
			baseURL+BillingServiceAdvanceStageProcedure,
			opts...,
		),
		listHistory: connect.NewClient[ListHistoryRequest, ListHistoryResponse](
			httpClient,
			baseURL+BillingServiceListHistoryProcedure,
			opts...,
		),
		getHistoryEntry: connect.NewClient[GetHistoryEntryRequest, GetHistoryEntryResponse](
			httpClient,
			baseURL+BillingServiceGetHistoryEntryProcedure,
			opts...,
		),
		deleteHistoryEntry: connect.NewClient[DeleteHistoryEntryRequest, DeleteHistoryEntryResponse](
			httpClient,
			baseURL+BillingServiceDeleteHistoryEntryProcedure,
			opts...,
		),
		clearHistory: connect.NewClient[ClearHistoryRequest, ClearHistoryResponse](
			httpClient,
			baseURL+BillingServiceClearHistoryProcedure,
			opts...,
		),
	}
}

// billingServiceClient implements BillingServiceClient.
type billingServiceClient struct {
	getSession         *connect.Client[GetSessionRequest, GetSessionResponse]
	updateSession      *connect.Client[UpdateSessionRequest, UpdateSessionResponse]
	loadLastSession    *connect.Client[LoadLastSessionRequest, LoadLastSessionResponse]
	resetSession       *connect.Client[ResetSessionRequest, ResetSessionResponse]
	validateStage      *connect.Client[ValidateStageRequest, ValidateStageResponse]
	compute            *connect.Client[ComputeRequest, ComputeResponse]
	buildReport        *connect.Client[BuildReportRequest, BuildReportResponse]
	advanceStage       *connect.Client[AdvanceStageRequest, AdvanceStageResponse]
	listHistory        *connect.Client[ListHistoryRequest, ListHistoryResponse]
	getHistoryEntry    *connect.Client[GetHistoryEntryRequest, GetHistoryEntryResponse]
	deleteHistoryEntry *connect.Client[DeleteHistoryEntryRequest, DeleteHistoryEntryResponse]
	clearHistory       *connect.Client[ClearHistoryRequest, ClearHistoryResponse]
}

// GetSession calls wattsplit.v1.BillingService.GetSession.
func (c *billingServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

// UpdateSession calls wattsplit.v1.BillingService.UpdateSession.
func (c *billingServiceClient) UpdateSession(ctx context.Context, req *connect.Request[UpdateSessionRequest]) (*connect.Response[UpdateSessionResponse], error) {
	return c.updateSession.CallUnary(ctx, req)
}

// LoadLastSession calls wattsplit.v1.BillingService.LoadLastSession.
func (c *billingServiceClient) LoadLastSession(ctx context.Context, req *connect.Request[LoadLastSessionRequest]) (*connect.Response[LoadLastSessionResponse], error) {
	return c.loadLastSession.CallUnary(ctx, req)
}

// ResetSession calls wattsplit.v1.BillingService.ResetSession.
func (c *billingServiceClient) ResetSession(ctx context.Context, req *connect.Request[ResetSessionRequest]) (*connect.Response[ResetSessionResponse], error) {
	return c.resetSession.CallUnary(ctx, req)
}

// ValidateStage calls wattsplit.v1.BillingService.ValidateStage.
func (c *billingServiceClient) ValidateStage(ctx context.Context, req *connect.Request[ValidateStageRequest]) (*connect.Response[ValidateStageResponse], error) {
	return c.validateStage.CallUnary(ctx, req)
}

// Compute calls wattsplit.v1.BillingService.Compute.
func (c *billingServiceClient) Compute(ctx context.Context, req *connect.Request[ComputeRequest]) (*connect.Response[ComputeResponse], error) {
	return c.compute.CallUnary(ctx, req)
}

// BuildReport calls wattsplit.v1.BillingService.BuildReport.
func (c *billingServiceClient) BuildReport(ctx context.Context, req *connect.Request[BuildReportRequest]) (*connect.Response[BuildReportResponse], error) {
	return c.buildReport.CallUnary(ctx, req)
}

// AdvanceStage calls wattsplit.v1.BillingService.AdvanceStage.
func (c *billingServiceClient) AdvanceStage(ctx context.Context, req *connect.Request[AdvanceStageRequest]) (*connect.Response[AdvanceStageResponse], error) {
	return c.advanceStage.CallUnary(ctx, req)
}

// ListHistory calls wattsplit.v1.BillingService.ListHistory.
func (c *billingServiceClient) ListHistory(ctx context.Context, req *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error) {
	return c.listHistory.CallUnary(ctx, req)
}

// GetHistoryEntry calls wattsplit.v1.BillingService.GetHistoryEntry.
func (c *billingServiceClient) GetHistoryEntry(ctx context.Context, req *connect.Request[GetHistoryEntryRequest]) (*connect.Response[GetHistoryEntryResponse], error) {
	return c.getHistoryEntry.CallUnary(ctx, req)
}

// DeleteHistoryEntry calls wattsplit.v1.BillingService.DeleteHistoryEntry.
func (c *billingServiceClient) DeleteHistoryEntry(ctx context.Context, req *connect.Request[DeleteHistoryEntryRequest]) (*connect.Response[DeleteHistoryEntryResponse], error) {
	return c.deleteHistoryEntry.CallUnary(ctx, req)
}

// ClearHistory calls wattsplit.v1.BillingService.ClearHistory.
func (c *billingServiceClient) ClearHistory(ctx context.Context, req *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error) {
	return c.clearHistory.CallUnary(ctx, req)
}

// BillingServiceHandler is an implementation of the wattsplit.v1.BillingService service.
type BillingServiceHandler interface {
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error)
	UpdateSession(context.Context, *connect.Request[UpdateSessionRequest]) (*connect.Response[UpdateSessionResponse], error)
	LoadLastSession(context.Context, *connect.Request[LoadLastSessionRequest]) (*connect.Response[LoadLastSessionResponse], error)
	ResetSession(context.Context, *connect.Request[ResetSessionRequest]) (*connect.Response[ResetSessionResponse], error)
	ValidateStage(context.Context, *connect.Request[ValidateStageRequest]) (*connect.Response[ValidateStageResponse], error)
	Compute(context.Context, *connect.Request[ComputeRequest]) (*connect.Response[ComputeResponse], error)
	BuildReport(context.Context, *connect.Request[BuildReportRequest]) (*connect.Response[BuildReportResponse], error)
	AdvanceStage(context.Context, *connect.Request[AdvanceStageRequest]) (*connect.Response[AdvanceStageResponse], error)
	ListHistory(context.Context, *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error)
	GetHistoryEntry(context.Context, *connect.Request[GetHistoryEntryRequest]) (*connect.Response[GetHistoryEntryResponse], error)
	DeleteHistoryEntry(context.Context, *connect.Request[DeleteHistoryEntryRequest]) (*connect.Response[DeleteHistoryEntryResponse], error)
	ClearHistory(context.Context, *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error)
}

// NewBillingServiceHandler builds an HTTP handler from the service implementation. It returns the
// path on which to mount the handler and the handler itself.
func NewBillingServiceHandler(svc BillingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	billingServiceGetSessionHandler := connect.NewUnaryHandler(
		BillingServiceGetSessionProcedure,
		svc.GetSession,
		opts...,
	)
	billingServiceUpdateSessionHandler := connect.NewUnaryHandler(
		BillingServiceUpdateSessionProcedure,
		svc.UpdateSession,
		opts...,
	)
	billingServiceLoadLastSessionHandler := connect.NewUnaryHandler(
		BillingServiceLoadLastSessionProcedure,
		svc.LoadLastSession,
		opts...,
	)
	billingServiceResetSessionHandler := connect.NewUnaryHandler(
		BillingServiceResetSessionProcedure,
		svc.ResetSession,
		opts...,
	)
	billingServiceValidateStageHandler := connect.NewUnaryHandler(
		BillingServiceValidateStageProcedure,
		svc.ValidateStage,
		opts...,
	)
	billingServiceComputeHandler := connect.NewUnaryHandler(
		BillingServiceComputeProcedure,
		svc.Compute,
		opts...,
	)
	billingServiceBuildReportHandler := connect.NewUnaryHandler(
		BillingServiceBuildReportProcedure,
		svc.BuildReport,
		opts...,
	)
	billingServiceAdvanceStageHandler := connect.NewUnaryHandler(
		BillingServiceAdvanceStageProcedure,
		svc.AdvanceStage,
		opts...,
	)
	billingServiceListHistoryHandler := connect.NewUnaryHandler(
		BillingServiceListHistoryProcedure,
		svc.ListHistory,
		opts...,
	)
	billingServiceGetHistoryEntryHandler := connect.NewUnaryHandler(
		BillingServiceGetHistoryEntryProcedure,
		svc.GetHistoryEntry,
		opts...,
	)
	billingServiceDeleteHistoryEntryHandler := connect.NewUnaryHandler(
		BillingServiceDeleteHistoryEntryProcedure,
		svc.DeleteHistoryEntry,
		opts...,
	)
	billingServiceClearHistoryHandler := connect.NewUnaryHandler(
		BillingServiceClearHistoryProcedure,
		svc.ClearHistory,
		opts...,
	)
	return "/wattsplit.v1.BillingService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillingServiceGetSessionProcedure:
			billingServiceGetSessionHandler.ServeHTTP(w, r)
		case BillingServiceUpdateSessionProcedure:
			billingServiceUpdateSessionHandler.ServeHTTP(w, r)
		case BillingServiceLoadLastSessionProcedure:
			billingServiceLoadLastSessionHandler.ServeHTTP(w, r)
		case BillingServiceResetSessionProcedure:
			billingServiceResetSessionHandler.ServeHTTP(w, r)
		case BillingServiceValidateStageProcedure:
			billingServiceValidateStageHandler.ServeHTTP(w, r)
		case BillingServiceComputeProcedure:
			billingServiceComputeHandler.ServeHTTP(w, r)
		case BillingServiceBuildReportProcedure:
			billingServiceBuildReportHandler.ServeHTTP(w, r)
		case BillingServiceAdvanceStageProcedure:
			billingServiceAdvanceStageHandler.ServeHTTP(w, r)
		case BillingServiceListHistoryProcedure:
			billingServiceListHistoryHandler.ServeHTTP(w, r)
		case BillingServiceGetHistoryEntryProcedure:
			billingServiceGetHistoryEntryHandler.ServeHTTP(w, r)
		case BillingServiceDeleteHistoryEntryProcedure:
			billingServiceDeleteHistoryEntryHandler.ServeHTTP(w, r)
		case BillingServiceClearHistoryProcedure:
			billingServiceClearHistoryHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedBillingServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBillingServiceHandler struct{}

func (UnimplementedBillingServiceHandler) GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.GetSession is not implemented"))
}

func (UnimplementedBillingServiceHandler) UpdateSession(context.Context, *connect.Request[UpdateSessionRequest]) (*connect.Response[UpdateSessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.UpdateSession is not implemented"))
}

func (UnimplementedBillingServiceHandler) LoadLastSession(context.Context, *connect.Request[LoadLastSessionRequest]) (*connect.Response[LoadLastSessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.LoadLastSession is not implemented"))
}

func (UnimplementedBillingServiceHandler) ResetSession(context.Context, *connect.Request[ResetSessionRequest]) (*connect.Response[ResetSessionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.ResetSession is not implemented"))
}

func (UnimplementedBillingServiceHandler) ValidateStage(context.Context, *connect.Request[ValidateStageRequest]) (*connect.Response[ValidateStageResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.ValidateStage is not implemented"))
}

func (UnimplementedBillingServiceHandler) Compute(context.Context, *connect.Request[ComputeRequest]) (*connect.Response[ComputeResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.Compute is not implemented"))
}

func (UnimplementedBillingServiceHandler) BuildReport(context.Context, *connect.Request[BuildReportRequest]) (*connect.Response[BuildReportResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.BuildReport is not implemented"))
}

func (UnimplementedBillingServiceHandler) AdvanceStage(context.Context, *connect.Request[AdvanceStageRequest]) (*connect.Response[AdvanceStageResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.AdvanceStage is not implemented"))
}

func (UnimplementedBillingServiceHandler) ListHistory(context.Context, *connect.Request[ListHistoryRequest]) (*connect.Response[ListHistoryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.ListHistory is not implemented"))
}

func (UnimplementedBillingServiceHandler) GetHistoryEntry(context.Context, *connect.Request[GetHistoryEntryRequest]) (*connect.Response[GetHistoryEntryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.GetHistoryEntry is not implemented"))
}

func (UnimplementedBillingServiceHandler) DeleteHistoryEntry(context.Context, *connect.Request[DeleteHistoryEntryRequest]) (*connect.Response[DeleteHistoryEntryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.DeleteHistoryEntry is not implemented"))
}

func (UnimplementedBillingServiceHandler) ClearHistory(context.Context, *connect.Request[ClearHistoryRequest]) (*connect.Response[ClearHistoryResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("wattsplit.v1.BillingService.ClearHistory is not implemented"))
}
