// Package app assembles storage, cache and services from configuration.
// Both the HTTP server and the command line tool start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/cache"
	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/observability"
	"github.com/medmais/sistema-indicadores/internal/persistence"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/internal/repository/memrepo"
	"github.com/medmais/sistema-indicadores/internal/service"
	"github.com/medmais/sistema-indicadores/migrations"
)

// Options tune Build.
type Options struct {
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	// SkipRedis leaves the reference cache disabled.
	SkipRedis bool
}

// App holds the wired dependencies.
type App struct {
	Config     config.Config
	Logger     *zap.Logger
	Clock      clockwork.Clock
	Metrics    *observability.Metrics
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Repos      repository.Set
	Cache      cache.Cache
	Dispatcher events.Dispatcher
	Guard      *daterange.Guard
	Tokens     *auth.TokenManager

	Auth          *service.AuthService
	Users         *service.UserService
	Reference     *service.ReferenceService
	Lancamentos   *service.LancamentoService
	Export        *service.ExportService
	Compliance    *service.ComplianceService
	Analytics     *service.AnalyticsService
	Feedback      *service.FeedbackService
	Notifications *service.NotificationService
}

// Build connects to Postgres when a DSN is configured, otherwise it uses an
// in-memory store seeded with the indicator table.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	loc := cfg.App.Location()
	a := &App{
		Config:     cfg,
		Logger:     logger,
		Clock:      clock,
		Metrics:    opts.Metrics,
		Dispatcher: events.NewInMemoryDispatcher(),
		Guard:      daterange.NewGuard(clock, loc, cfg.Lancamento.MaxRangeMonths),
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.Postgres = pg
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if _, err := persistence.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		a.Repos = repository.NewPostgresSet(pool, a.Guard)
	} else {
		store := memrepo.New(clock, a.Guard)
		store.SeedIndicadores(IndicadorNames())
		a.Repos = store.Set()
	}

	a.Cache = cache.Noop{}
	if !opts.SkipRedis {
		a.Redis = persistence.NewRedis(cfg.Redis, logger)
		a.Cache = cache.NewRedis(a.Redis.Client, cfg.Redis.CacheTTL, a.Metrics)
	}

	a.wireServices()

	if err := a.bootstrapAdmin(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wireServices() {
	cfg, logger, clock := a.Config, a.Logger, a.Clock

	a.Tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, clock)
	a.Auth = service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:     a.Repos.Users,
		TokenManager: a.Tokens,
	})
	a.Users = service.NewUserService(cfg, service.UserDependencies{
		UserRepo:   a.Repos.Users,
		BaseRepo:   a.Repos.Bases,
		EquipeRepo: a.Repos.Equipes,
		Dispatcher: a.Dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	a.Reference = service.NewReferenceService(service.ReferenceDependencies{
		BaseRepo:        a.Repos.Bases,
		EquipeRepo:      a.Repos.Equipes,
		ColaboradorRepo: a.Repos.Colaboradores,
		IndicadorRepo:   a.Repos.Indicadores,
		Cache:           a.Cache,
		Dispatcher:      a.Dispatcher,
		Clock:           clock,
		Logger:          logger,
	})
	a.Lancamentos = service.NewLancamentoService(cfg, service.LancamentoDependencies{
		LancamentoRepo: a.Repos.Lancamentos,
		IndicadorRepo:  a.Repos.Indicadores,
		Guard:          a.Guard,
		Dispatcher:     a.Dispatcher,
		Metrics:        a.Metrics,
		Clock:          clock,
		Logger:         logger,
	})
	a.Export = service.NewExportService(cfg, service.ExportDependencies{
		Lancamentos: a.Lancamentos,
		Reference:   a.Reference,
		UserRepo:    a.Repos.Users,
		Metrics:     a.Metrics,
		Clock:       clock,
	})
	a.Compliance = service.NewComplianceService(service.ComplianceDependencies{
		Reference:      a.Reference,
		UserRepo:       a.Repos.Users,
		LancamentoRepo: a.Repos.Lancamentos,
		Evaluator:      compliance.NewEvaluator(clock, cfg.App.Location()),
	})
	a.Analytics = service.NewAnalyticsService(a.Lancamentos, a.Reference)
	a.Feedback = service.NewFeedbackService(service.FeedbackDependencies{
		FeedbackRepo: a.Repos.Feedbacks,
		Dispatcher:   a.Dispatcher,
		Clock:        clock,
		Logger:       logger,
	})
	a.Notifications = service.NewNotificationService(a.Dispatcher, a.Cache, logger)
}

// bootstrapAdmin creates the configured geral account once.
func (a *App) bootstrapAdmin(ctx context.Context) error {
	email, password := a.Config.Auth.BootstrapEmail, a.Config.Auth.BootstrapPassword
	if email == "" || password == "" {
		return nil
	}
	_, err := a.Repos.Users.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("look up bootstrap user: %w", err)
	}
	hash, err := auth.HashPassword(password, a.Config.Auth.BcryptCost)
	if err != nil {
		return err
	}
	profile := &domain.Profile{Nome: "Administrador", Role: domain.RoleGeral}
	if err := a.Repos.Users.Create(ctx, &domain.Account{Email: email, PasswordHash: hash}, profile); err != nil {
		return fmt.Errorf("create bootstrap user: %w", err)
	}
	a.Logger.Info("bootstrap user created", zap.String("email", email), zap.String("profile_id", profile.ID))
	return nil
}

// Close releases connections.
func (a *App) Close() {
	a.Redis.Close()
	a.Postgres.Close()
}

// IndicadorNames maps every schema type to the name used by the seed migration.
func IndicadorNames() map[domain.SchemaType]string {
	names := map[domain.SchemaType]string{}
	for _, r := range compliance.Rules() {
		names[r.SchemaType] = r.Nome
	}
	return names
}
