package ledgerv1connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/mmynk/splitledger/pkg/ledgerv1"
)

type stubExpenseService struct {
	UnimplementedExpenseServiceHandler
	got *v1.PreviewSplitRequest
}

func (s *stubExpenseService) PreviewSplit(_ context.Context, req *connect.Request[v1.PreviewSplitRequest]) (*connect.Response[v1.PreviewSplitResponse], error) {
	s.got = req.Msg
	return connect.NewResponse(&v1.PreviewSplitResponse{
		Shares: []*v1.Share{{UserID: "a", Amount: "5.00", Settled: true}, {UserID: "b", Amount: "5.00"}},
	}), nil
}

func TestCodec(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&v1.Balance{UserID: "a", Amount: "-1.50"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"a","amount":"-1.50"}`, string(data))

	var b v1.Balance
	require.NoError(t, c.Unmarshal([]byte(`{"user_id":"b","amount":"2"}`), &b))
	assert.Equal(t, v1.Balance{UserID: "b", Amount: "2"}, b)

	require.NoError(t, c.Unmarshal(nil, &b), "empty body is the zero message")
	assert.Error(t, c.Unmarshal([]byte(`{`), &b))
}

func TestExpenseService_RoundTrip(t *testing.T) {
	svc := &stubExpenseService{}
	path, handler := NewExpenseServiceHandler(svc)
	assert.Equal(t, "/splitledger.v1.ExpenseService/", path)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewExpenseServiceClient(http.DefaultClient, server.URL+"/")
	resp, err := client.PreviewSplit(context.Background(), connect.NewRequest(&v1.PreviewSplitRequest{
		Amount:         "10.00",
		PayerID:        "a",
		Strategy:       v1.StrategyEqual,
		ParticipantIDs: []string{"a", "b"},
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Shares, 2)
	assert.True(t, resp.Msg.Shares[0].Settled)
	assert.Equal(t, []string{"a", "b"}, svc.got.ParticipantIDs)

	_, err = client.CreateExpense(context.Background(), connect.NewRequest(&v1.CreateExpenseRequest{GroupID: "g1"}))
	assert.Equal(t, connect.CodeUnimplemented, connect.CodeOf(err))
}

func TestSettlementService_PlainHTTP(t *testing.T) {
	path, handler := NewSettlementServiceHandler(UnimplementedSettlementServiceHandler{})
	assert.Equal(t, "/splitledger.v1.SettlementService/", path)

	server := httptest.NewServer(handler)
	defer server.Close()

	// Any HTTP client can speak the Connect protocol with a JSON body.
	resp, err := http.Post(server.URL+SettlementServiceGetSuggestionsProcedure, "application/json",
		strings.NewReader(`{"group_id":"g1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	missing, err := http.Post(server.URL+"/splitledger.v1.SettlementService/Nope", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}
