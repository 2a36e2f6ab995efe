package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/wildlings-backend/internal/adapter/postgres"
	"github.com/heartmarshall/wildlings-backend/internal/adapter/postgres/logstore"
	"github.com/heartmarshall/wildlings-backend/internal/adapter/postgres/opledger"
	"github.com/heartmarshall/wildlings-backend/internal/auth"
	"github.com/heartmarshall/wildlings-backend/internal/config"
	syncsvc "github.com/heartmarshall/wildlings-backend/internal/service/sync"
	"github.com/heartmarshall/wildlings-backend/internal/transport/middleware"
	"github.com/heartmarshall/wildlings-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// storage, service, and transport layers, and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	logRepo := logstore.New(pool)
	ledger := opledger.New(pool)
	txManager := postgres.NewTxManager(pool)

	syncService := syncsvc.NewService(
		logger, logRepo, ledger, txManager, clockwork.NewRealClock(), cfg.Sync,
	)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.DeviceTokenTTL)

	handler := newRouter(cfg, logger, syncService, jwtManager, pool)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	syncService *syncsvc.Service,
	jwtManager *auth.JWTManager,
	pool interface {
		Ping(ctx context.Context) error
	},
) http.Handler {
	syncHandler := rest.NewSyncHandler(syncService, logger)
	deviceHandler := rest.NewDeviceHandler(jwtManager, logger)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	gate := middleware.SyncAuth(cfg.Auth.SyncToken, jwtManager)

	mux := http.NewServeMux()
	mux.Handle("POST /sync/push", gate(http.HandlerFunc(syncHandler.Push)))
	mux.Handle("GET /sync/pull", gate(http.HandlerFunc(syncHandler.Pull)))
	mux.Handle("POST /devices/register",
		middleware.InternalOnly(cfg.Auth.SyncToken)(http.HandlerFunc(deviceHandler.Register)))
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if cfg.Server.RateLimitPerMin > 0 {
		limiter := middleware.NewRateLimiter(time.Minute)
		mws = append(mws, limiter.Limit(cfg.Server.RateLimitPerMin))
	}

	return middleware.Chain(mws...)(mux)
}
