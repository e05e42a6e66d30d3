package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/observability"
	"github.com/medmais/sistema-indicadores/internal/repository/memrepo"
)

// fakeClock is the part of the clockwork fake used by these tests.
type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
	BlockUntilContext(ctx context.Context, n int) error
}

// env wires every service over one in-memory store at a fixed instant.
type env struct {
	cfg        config.Config
	clock      fakeClock
	store      *memrepo.Store
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	guard      *daterange.Guard

	indicadores map[domain.SchemaType]domain.IndicadorConfig
	baseA       domain.Base
	baseB       domain.Base
	alfa        domain.Equipe
	bravo       domain.Equipe
	geral       domain.Profile
	chefeAlfa   domain.Profile
	chefeBravo  domain.Profile
	gerenteA    domain.Profile

	reference   *ReferenceService
	lancamentos *LancamentoService
}

func testConfig() config.Config {
	return config.Config{
		App:        config.AppConfig{TimeZone: "UTC"},
		Auth:       config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Lancamento: config.LancamentoConfig{SaveTimeout: 35 * time.Second, MaxRangeMonths: 12},
		Export:     config.ExportConfig{FilenamePrefix: "relatorio"},
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	e := &env{
		cfg:        testConfig(),
		clock:      clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)),
		metrics:    observability.NewMetricsForTesting(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	e.guard = daterange.NewGuard(e.clock, time.UTC, 12)
	e.store = memrepo.New(e.clock, e.guard)

	names := map[domain.SchemaType]string{}
	for _, r := range compliance.Rules() {
		names[r.SchemaType] = r.Nome
	}
	e.indicadores = map[domain.SchemaType]domain.IndicadorConfig{}
	for _, ind := range e.store.SeedIndicadores(names) {
		e.indicadores[ind.SchemaType] = ind
	}

	e.baseA, e.baseB = domain.Base{Nome: "Goiânia"}, domain.Base{Nome: "Brasília"}
	require.NoError(t, e.store.Bases().Create(ctx, &e.baseA))
	require.NoError(t, e.store.Bases().Create(ctx, &e.baseB))
	e.alfa, e.bravo = domain.Equipe{Nome: "Alfa"}, domain.Equipe{Nome: "Bravo"}
	require.NoError(t, e.store.Equipes().Create(ctx, &e.alfa))
	require.NoError(t, e.store.Equipes().Create(ctx, &e.bravo))

	e.geral = e.addUser(t, "geral@example.com", domain.Profile{Nome: "Gestora", Role: domain.RoleGeral})
	e.chefeAlfa = e.addUser(t, "alfa@example.com", domain.Profile{Nome: "Chefe Alfa", Role: domain.RoleChefe, BaseID: &e.baseA.ID, EquipeID: &e.alfa.ID})
	e.chefeBravo = e.addUser(t, "bravo@example.com", domain.Profile{Nome: "Chefe Bravo", Role: domain.RoleChefe, BaseID: &e.baseA.ID, EquipeID: &e.bravo.ID})
	e.gerenteA = e.addUser(t, "gerente@example.com", domain.Profile{Nome: "Gerente", Role: domain.RoleGerenteSCI, BaseID: &e.baseA.ID})

	e.reference = NewReferenceService(ReferenceDependencies{
		BaseRepo:        e.store.Bases(),
		EquipeRepo:      e.store.Equipes(),
		ColaboradorRepo: e.store.Colaboradores(),
		IndicadorRepo:   e.store.Indicadores(),
		Dispatcher:      e.dispatcher,
		Clock:           e.clock,
	})
	e.lancamentos = NewLancamentoService(e.cfg, e.lancamentoDeps())
	return e
}

func (e *env) lancamentoDeps() LancamentoDependencies {
	return LancamentoDependencies{
		LancamentoRepo: e.store.Lancamentos(),
		IndicadorRepo:  e.store.Indicadores(),
		Guard:          e.guard,
		Dispatcher:     e.dispatcher,
		Metrics:        e.metrics,
		Clock:          e.clock,
	}
}

// addUser stores a profile whose password is "senha123".
func (e *env) addUser(t *testing.T, email string, p domain.Profile) domain.Profile {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.store.Users().Create(context.Background(), &domain.Account{Email: email, PasswordHash: string(hash)}, &p))
	return p
}

// submit stores a controle_trocas submission through the service.
func (e *env) submit(t *testing.T, actor domain.Profile, date string) *domain.Lancamento {
	t.Helper()
	l, err := e.lancamentos.Save(context.Background(), actor, SaveLancamentoInput{
		DataReferencia: date,
		IndicadorID:    e.indicadores[domain.SchemaControleTrocas].ID,
		Conteudo:       json.RawMessage(`{"qtd_trocas":2}`),
	})
	require.NoError(t, err)
	return l
}
