package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
)

const testUser = "alice"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, middleware.UserIDKey, testUser)
			return next(ctx, req)
		}
	}
}

// recordingPublisher captures published events synchronously.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []models.ActivityType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.ActivityType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	expenses    ledgerv1connect.ExpenseServiceClient
	settlements ledgerv1connect.SettlementServiceClient
	store       *sqlite.SQLiteStore
	metrics     *metrics.Metrics
	publisher   *recordingPublisher
}

type envOptions struct {
	// newPublisher replaces the recording publisher when set.
	newPublisher    func(store *sqlite.SQLiteStore, m *metrics.Metrics) events.Publisher
	unauthenticated bool
}

// setupTestServer creates a test server backed by a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	return setupTestServerWith(t, envOptions{})
}

func setupTestServerWith(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:     store,
		metrics:   metrics.New(prometheus.NewRegistry()),
		publisher: &recordingPublisher{},
	}
	var publisher events.Publisher = env.publisher
	if opts.newPublisher != nil {
		publisher = opts.newPublisher(store, env.metrics)
	}

	var handlerOpts []connect.HandlerOption
	if !opts.unauthenticated {
		handlerOpts = append(handlerOpts, connect.WithInterceptors(testAuthInterceptor()))
	}

	expensePath, expenseHandler := ledgerv1connect.NewExpenseServiceHandler(
		NewExpenseService(store, publisher, env.metrics, "USD"), handlerOpts...)
	settlementPath, settlementHandler := ledgerv1connect.NewSettlementServiceHandler(
		NewSettlementService(store, publisher, env.metrics, "USD"), handlerOpts...)

	mux := http.NewServeMux()
	mux.Handle(expensePath, expenseHandler)
	mux.Handle(settlementPath, settlementHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	env.expenses = ledgerv1connect.NewExpenseServiceClient(http.DefaultClient, server.URL)
	env.settlements = ledgerv1connect.NewSettlementServiceClient(http.DefaultClient, server.URL)
	return env
}

// requireCode asserts err is a Connect error with the given code.
func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected *connect.Error, got %T: %v", err, err)
	require.Equal(t, code, connectErr.Code(), "error: %v", err)
}
