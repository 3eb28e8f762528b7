package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/ledgerv1/ledgerv1connect"
	"github.com/mmynk/splitledger/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.Setup(level)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	m := metrics.New(prometheus.DefaultRegisterer)

	sinks := []events.Sink{events.NewStoreSink(store)}
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		sinks = append(sinks, events.NewRedisSink(rdb, cfg.Redis.ChannelPrefix, cfg.Redis.PublishTimeout()))
		slog.Info("Redis event sink enabled", "address", cfg.Redis.Address, "channel_prefix", cfg.Redis.ChannelPrefix)
	}
	queue := events.NewQueue(cfg.Events.BufferSize, cfg.Events.Workers, m, sinks...)
	queue.Start()

	interceptors := connect.WithInterceptors(identityInterceptor(cfg), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register Connect services
	expensePath, expenseHandler := ledgerv1connect.NewExpenseServiceHandler(
		service.NewExpenseService(store, queue, m, cfg.Ledger.DefaultCurrency), interceptors)
	mux.Handle(expensePath, expenseHandler)

	settlementPath, settlementHandler := ledgerv1connect.NewSettlementServiceHandler(
		service.NewSettlementService(store, queue, m, cfg.Ledger.DefaultCurrency), interceptors)
	mux.Handle(settlementPath, settlementHandler)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(accessLogMiddleware(corsMiddleware(mux)), &http2.Server{})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting",
			"address", srv.Addr,
			"environment", cfg.Server.Environment,
			"url", fmt.Sprintf("http://localhost%s", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	// Drain after HTTP so in-flight requests can still publish.
	if err := queue.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Event queue did not drain", "pending", queue.Pending(), "error", err)
	}
	slog.Info("Server stopped")
	return nil
}

// identityInterceptor verifies JWTs when a secret is configured and otherwise
// trusts the gateway-provided X-User-Id header.
func identityInterceptor(cfg *config.Config) connect.Interceptor {
	if cfg.Auth.SecretKey == "" {
		slog.Warn("JWT_SECRET_KEY not set; trusting " + middleware.UserIDHeader + " header for identity")
		return middleware.HeaderIdentity()
	}
	jwtManager := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	return middleware.RequireAuth(jwtManager)
}

// accessLogMiddleware logs every HTTP request at debug level.
// RPC outcomes are logged by middleware.LoggingInterceptor.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Authorization, "+middleware.UserIDHeader+", Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
