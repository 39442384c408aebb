package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/config"
	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"github.com/godilite/mgnrega-dashboard/internal/geo"
	"github.com/godilite/mgnrega-dashboard/internal/httpapi"
	"github.com/godilite/mgnrega-dashboard/internal/metrics"
	"github.com/godilite/mgnrega-dashboard/internal/repository"
	"github.com/godilite/mgnrega-dashboard/internal/service"
	"github.com/godilite/mgnrega-dashboard/pkg/cache"
	dbbuilder "github.com/godilite/mgnrega-dashboard/pkg/database"
	grpcsrv "github.com/godilite/mgnrega-dashboard/pkg/grpc/server"
	httpsrv "github.com/godilite/mgnrega-dashboard/pkg/http/server"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	cacheKeyPrefix  = "mgnrega:"

	healthFetchLog = "fetch-log"
	healthCache    = "records-cache"
)

type App struct {
	logger     *zap.Logger
	closers    []namedCloser
	httpServer *httpsrv.Server
	grpcServer *grpcsrv.Server
}

type namedCloser struct {
	name string
	c    io.Closer
}

// NewApp wires storage, upstream client, service and both servers. Anything
// opened before a failure is closed again.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.closeAll()
		}
	}()

	dbPool, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	a.track("database", dbPool)
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	fetchLog := repository.NewFetchLogRepository(dbPool)
	if err := fetchLog.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	client, err := datagov.New(cfg.DataGovAPIKey,
		datagov.WithEndpoint(cfg.DataGovEndpoint),
		datagov.WithState(cfg.DataGovState),
		datagov.WithTimeout(cfg.UpstreamTimeout),
		datagov.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("data.gov.in client init failed: %w", err)
	}

	svcOpts := []service.Option{service.WithFetchLog(fetchLog)}
	if cfg.CacheEnabled() {
		cacheClient, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPrefix(cacheKeyPrefix),
		)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.track("cache", cacheClient)
		svcOpts = append(svcOpts, service.WithCache(cacheClient, cfg.RecordsCacheTTL))
		logger.Info("Cache client initialized",
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("ttl", cfg.RecordsCacheTTL))
	}

	var locator geo.IPLocator
	if cfg.GeoIPDBPath != "" {
		geoip, err := geo.OpenGeoIP(cfg.GeoIPDBPath)
		if err != nil {
			return nil, err
		}
		a.track("geoip", geoip)
		locator = geoip
		logger.Info("GeoIP database opened", zap.String("path", cfg.GeoIPDBPath))
	}

	dashboard := service.NewDashboardService(client, logger, svcOpts...)
	resolver := geo.NewResolver(geo.MaharashtraDistricts(), locator, logger)
	handlers := httpapi.NewHandlers(dashboard, resolver, logger)

	httpServer, err := httpsrv.New(
		httpsrv.WithPort(cfg.HTTPPort),
		httpsrv.WithLogger(logger),
		httpsrv.WithAllowedOrigins(cfg.CORSAllowedOrigins...),
		httpsrv.WithTimeouts(15*time.Second, cfg.UpstreamTimeout+15*time.Second),
		httpsrv.WithObserver(metrics.ObserveHTTP),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}
	a.httpServer = httpServer
	handlers.Register(httpServer.Router())
	httpServer.Router().Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	a.grpcServer = grpcServer
	grpcServer.SetServing(healthFetchLog, true)
	if cfg.CacheEnabled() {
		grpcServer.SetServing(healthCache, true)
	}

	return a, nil
}

func (a *App) track(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// closeAll releases resources in reverse order of acquisition.
func (a *App) closeAll() {
	if a.httpServer != nil {
		_ = a.httpServer.Shutdown(context.Background())
	}
	if a.grpcServer != nil {
		_ = a.grpcServer.Shutdown(context.Background())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			a.logger.Error("shutdown error", zap.String("component", nc.name), zap.Error(err))
		}
	}
	a.closers = nil
}

// HTTPAddr returns the address the HTTP API listens on.
func (a *App) HTTPAddr() net.Addr {
	return a.httpServer.Addr()
}

// GRPCAddr returns the address the gRPC health service listens on.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// Run starts both servers and blocks until ctx is done or a shutdown signal
// is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	a.httpServer.Start()
	a.grpcServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		a.logger.Info("context done")
	}

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	a.httpServer, a.grpcServer = nil, nil
	a.closeAll()

	a.logger.Info("graceful shutdown completed")
	_ = a.logger.Sync()
	return nil
}
