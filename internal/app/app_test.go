package app

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		App:        config.AppConfig{TimeZone: "UTC"},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Lancamento: config.LancamentoConfig{SaveTimeout: 35 * time.Second, MaxRangeMonths: 12},
		Export:     config.ExportConfig{FilenamePrefix: "relatorio"},
	}
}

func TestBuildInMemory(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	a, err := Build(ctx, testConfig(), zap.NewNop(), Options{Clock: clock, SkipRedis: true})
	require.NoError(t, err)
	defer a.Close()

	inds, err := a.Reference.Indicadores(ctx)
	require.NoError(t, err)
	assert.Len(t, inds, len(compliance.Rules()))

	geral := domain.Profile{Role: domain.RoleGeral}
	profiles, err := a.Repos.Users.ListProfiles(ctx, repository.ProfileFilter{})
	require.NoError(t, err)
	assert.Empty(t, profiles)

	base, err := a.Reference.CreateBase(ctx, geral, "Goiânia")
	require.NoError(t, err)
	assert.NotEmpty(t, base.ID)
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Auth.BootstrapEmail = "admin@example.com"
	cfg.Auth.BootstrapPassword = "senha123"

	a, err := Build(ctx, cfg, zap.NewNop(), Options{SkipRedis: true})
	require.NoError(t, err)
	defer a.Close()

	session, err := a.Auth.Login(ctx, "admin@example.com", "senha123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleGeral, session.Profile.Role)

	require.NoError(t, a.bootstrapAdmin(ctx))
	profiles, err := a.Repos.Users.ListProfiles(ctx, repository.ProfileFilter{})
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestIndicadorNamesCoversEveryRule(t *testing.T) {
	names := IndicadorNames()
	for _, r := range compliance.Rules() {
		assert.Equal(t, r.Nome, names[r.SchemaType])
	}
}
