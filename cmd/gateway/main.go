package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	httptransport "github.com/spec-kit/coworking/internal/api/http"
	"github.com/spec-kit/coworking/internal/api/http/handlers"
	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/config"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/observability"
	"github.com/spec-kit/coworking/internal/rpc"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadGateway(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	adminConn, err := rpc.Dial(cfg.Admin.Address)
	if err != nil {
		logger.Fatal("failed to dial admin service", zap.Error(err))
	}
	defer adminConn.Close()

	clientConn, err := rpc.Dial(cfg.Client.Address)
	if err != nil {
		logger.Fatal("failed to dial client service", zap.Error(err))
	}
	defer clientConn.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	admins := rpc.NewAdminClient(adminConn, cfg.Admin.RPCTimeout)
	clients := rpc.NewClientClient(clientConn, cfg.Client.RPCTimeout)

	resolver := auth.NewResolver(map[domain.Label]auth.TokenValidator{
		domain.LabelAdmin:  auth.AdminValidator(admins),
		domain.LabelClient: auth.ClientValidator(clients),
	}, auth.ResolverOptions{
		Timeout: cfg.ValidateTimeout,
		Logger:  logger,
		Metrics: metrics,
	})

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.HealthCheck{
		domain.LabelAdmin.String():  healthCheck(adminConn),
		domain.LabelClient.String(): healthCheck(clientConn),
	}, logger)

	app := httptransport.NewApp(cfg.App.Name, httptransport.AppDependencies{
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout,
	}, httptransport.RouteConfig{
		Health:   healthHandler,
		Admins:   handlers.NewAdminHandler(admins),
		Clients:  handlers.NewClientHandler(clients),
		Identity: handlers.NewIdentityHandler(),
		Resolver: resolver,
		Gatherer: registry,
	})

	go func() {
		if err := app.Listen(cfg.App.Address); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func healthCheck(conn grpc.ClientConnInterface) handlers.HealthCheck {
	return func(ctx context.Context) error {
		return rpc.CheckHealth(ctx, conn)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
