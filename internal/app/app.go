// Package app initializes and runs the loan service.
// It configures logging, tracing, storage, the HTTP and gRPC transports,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/libloans/internal/config"
	"github.com/patric-chuzhbe/libloans/internal/db/jsondb"
	"github.com/patric-chuzhbe/libloans/internal/db/memorystorage"
	"github.com/patric-chuzhbe/libloans/internal/db/postgresdb"
	"github.com/patric-chuzhbe/libloans/internal/db/storage"
	"github.com/patric-chuzhbe/libloans/internal/grpcserver"
	"github.com/patric-chuzhbe/libloans/internal/ipchecker"
	"github.com/patric-chuzhbe/libloans/internal/logger"
	"github.com/patric-chuzhbe/libloans/internal/models"
	"github.com/patric-chuzhbe/libloans/internal/router"
	"github.com/patric-chuzhbe/libloans/internal/service"
	"github.com/patric-chuzhbe/libloans/internal/tracing"
)

const (
	serviceName     = "libloans"
	shutdownTimeout = 10 * time.Second
)

// App encapsulates the configuration, transports and storage backend
// needed to run the loan service.
type App struct {
	cfg             *config.Config
	db              storage.Storage
	httpHandler     http.Handler
	grpcServer      *grpc.Server
	grpcListener    net.Listener
	shutdownTracing tracing.ShutdownFunc
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger and tracing
// - selecting and setting up storage
// - setting up the loan service, the router and the optional gRPC server
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel, logger.WithFormat(app.cfg.LogFormat))
	if err != nil {
		return nil, err
	}

	location, err := app.cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `app.cfg.Location()` calling: %w", err)
	}

	app.shutdownTracing, err = tracing.Init(context.Background(), app.cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		app.db,
		service.WithClock(func() time.Time {
			return time.Now().In(location)
		}),
	)

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		svc,
		checker,
		router.WithRateLimit(app.cfg.RateLimitRPS, app.cfg.RateLimitBurst),
	)

	if app.cfg.GRPCAddr != "" {
		app.grpcServer, app.grpcListener, err = grpcserver.NewGRPCServer(
			app.cfg.GRPCAddr,
			grpcserver.NewLoanHandler(svc),
		)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run starts the HTTP server, and the gRPC server when configured, with
// graceful shutdown support. It listens for system signals and cleans up
// resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr, "GRPCAddr", a.cfg.GRPCAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	if a.grpcServer != nil {
		go func() {
			if err := a.grpcServer.Serve(a.grpcListener); err != nil {
				serverErrCh <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		return a.shutdown(server)

	case err := <-serverErrCh:
		return errors.Join(err, a.shutdown(server))
	}
}

func (a *App) shutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close error: %w", err))
	}
	if err := a.shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown error: %w", err))
	}

	return errors.Join(errs...)
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
