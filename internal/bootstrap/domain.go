package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/spec-kit/coworking/internal/auth"
	"github.com/spec-kit/coworking/internal/config"
	"github.com/spec-kit/coworking/internal/domain"
	"github.com/spec-kit/coworking/internal/events"
	"github.com/spec-kit/coworking/internal/observability"
	"github.com/spec-kit/coworking/internal/persistence"
	"github.com/spec-kit/coworking/internal/repository"
	"github.com/spec-kit/coworking/internal/rpc"
	"github.com/spec-kit/coworking/internal/service"
	"github.com/spec-kit/coworking/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var prefixes = map[domain.Label]string{
	domain.LabelAdmin:  config.AdminPrefix,
	domain.LabelClient: config.ClientPrefix,
}

// RunDomain starts the identity service of one domain and blocks until ctx
// is cancelled.
func RunDomain(ctx context.Context, label domain.Label) error {
	prefix, ok := prefixes[label]
	if !ok {
		return fmt.Errorf("unknown domain %q", label)
	}
	cfg, err := config.LoadDomain(ctx, prefix)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("domain", label.String()))

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(label, cfg.Postgres.DSN, logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	key, err := auth.NewDomainKey(label, cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	deps := service.Dependencies{
		Hasher:   hasher,
		Events:   dispatcher,
		Throttle: service.NewRedisThrottle(redis.Client, label.String(), cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow),
		Logger:   logger,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	srv := rpc.NewServer(logger, metrics)
	if err := registerService(srv.GRPC, label, key, pg, deps); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	serveErr := make(chan error, 2)
	go func() {
		logger.Info("identity service listening", zap.String("address", cfg.Address))
		serveErr <- srv.GRPC.Serve(lis)
	}()

	var metricsSrv *http.Server
	if cfg.MetricsAddress != "" {
		metricsSrv = &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	go watchDatabase(ctx, srv, pg, logger)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	srv.Stop(shutdownCtx)
	return nil
}

func registerService(s *grpc.Server, label domain.Label, key auth.DomainKey, pg *persistence.Postgres, deps service.Dependencies) error {
	switch label {
	case domain.LabelAdmin:
		svc, err := service.NewAdminService(key, repository.NewAdminRepository(pg.PoolHandle()), deps)
		if err != nil {
			return err
		}
		rpc.RegisterAdminServer(s, svc)
	case domain.LabelClient:
		svc, err := service.NewClientService(key, repository.NewClientRepository(pg.PoolHandle()), deps)
		if err != nil {
			return err
		}
		rpc.RegisterClientServer(s, svc)
	}
	return nil
}

// watchDatabase keeps the health status in step with database reachability.
func watchDatabase(ctx context.Context, srv *rpc.Server, pg *persistence.Postgres, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	serving := false
	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := pg.Ping(pingCtx)
		cancel()

		if up := err == nil; up != serving {
			serving = up
			srv.SetServing(up)
			if up {
				logger.Info("database reachable, serving")
			} else {
				logger.Warn("database unreachable, not serving", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
