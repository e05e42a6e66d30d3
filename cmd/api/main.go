package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/medmais/sistema-indicadores/internal/api/http"
	"github.com/medmais/sistema-indicadores/internal/api/http/handlers"
	"github.com/medmais/sistema-indicadores/internal/app"
	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/observability"
	"github.com/medmais/sistema-indicadores/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	deps, err := app.Build(ctx, *cfg, logger, app.Options{Metrics: metrics})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}
	defer deps.Close()

	worker.StartNotificationWorker(deps.Notifications)
	warmer := worker.NewCacheWarmer(deps.Reference, cfg.Redis.WarmInterval, deps.Clock, logger)
	go warmer.Run(ctx)

	probes := map[string]handlers.Pinger{"postgres": nil, "redis": nil}
	if deps.Postgres.PoolHandle() != nil {
		probes["postgres"] = deps.Postgres
	}
	if deps.Redis != nil && deps.Redis.Client != nil {
		probes["redis"] = deps.Redis
	}

	server := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 4 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(server, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes),
		Auth:           handlers.NewAuthHandler(deps.Auth),
		Users:          handlers.NewUsersHandler(deps.Users),
		Lancamentos:    handlers.NewLancamentosHandler(deps.Lancamentos, deps.Export),
		Reference:      handlers.NewReferenceHandler(deps.Reference),
		Reports:        handlers.NewReportsHandler(deps.Compliance, deps.Analytics),
		Feedback:       handlers.NewFeedbackHandler(deps.Feedback),
		AuthMiddleware: auth.NewAuthMiddleware(deps.Tokens, deps.Repos.Users),
		Metrics:        promhttp.Handler(),
	})

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = server.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
