package memrepo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

type fixture struct {
	store  *Store
	base   domain.Base
	equipe domain.Equipe
	ind    domain.IndicadorConfig
	user   domain.Profile
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	s := New(clock, daterange.NewGuard(clock, time.UTC, 12))

	f := fixture{store: s, base: domain.Base{Nome: "Goiânia"}, equipe: domain.Equipe{Nome: "Alfa"}}
	require.NoError(t, s.Bases().Create(ctx, &f.base))
	require.NoError(t, s.Equipes().Create(ctx, &f.equipe))
	f.ind = s.SeedIndicadores(map[domain.SchemaType]string{domain.SchemaControleTrocas: "Controle de Trocas"})[0]

	f.user = domain.Profile{Nome: "Chefe", Role: domain.RoleChefe, BaseID: &f.base.ID, EquipeID: &f.equipe.ID}
	require.NoError(t, s.Users().Create(ctx, &domain.Account{Email: "Chefe@Example.com ", PasswordHash: "x"}, &f.user))
	return f
}

func (f fixture) lanc(date string) *domain.Lancamento {
	return &domain.Lancamento{
		DataReferencia: date,
		BaseID:         f.base.ID,
		EquipeID:       f.equipe.ID,
		UserID:         f.user.ID,
		IndicadorID:    f.ind.ID,
		Conteudo:       json.RawMessage(`{"qtd_trocas":1}`),
	}
}

func TestUsersEmailIsNormalisedAndUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.store.Users().GetAccountByEmail(ctx, "chefe@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, acc.ID)

	err = f.store.Users().Create(ctx, &domain.Account{Email: "CHEFE@example.com"}, &domain.Profile{Nome: "Dup", Role: domain.RoleGeral})
	assert.Equal(t, errorutil.CodeConflict, errorutil.ToDomainError(err).Code)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lanc("2024-06-10")
	require.NoError(t, f.store.Lancamentos().Create(ctx, l))

	require.NoError(t, f.store.Users().Delete(ctx, f.user.ID))

	_, err := f.store.Users().GetProfile(ctx, f.user.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = f.store.Lancamentos().GetByID(ctx, l.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestLancamentoListFiltersAndClamps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, d := range []string{"2022-01-10", "2023-06-01", "2024-06-01", "2024-06-14"} {
		require.NoError(t, f.store.Lancamentos().Create(ctx, f.lanc(d)))
	}

	got, err := f.store.Lancamentos().List(ctx, domain.LancamentoFilter{DataInicio: "2022-01-01", DataFim: "2024-06-15"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-06-14", got[0].DataReferencia)
	assert.Equal(t, "2023-06-01", got[2].DataReferencia)

	page, err := f.store.Lancamentos().List(ctx, domain.LancamentoFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2024-06-01", page[0].DataReferencia)
}

func TestLancamentoRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	l := f.lanc("2024-06-10")
	l.IndicadorID = "missing"
	err := f.store.Lancamentos().Create(context.Background(), l)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestUpdateKeepsCreationTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lanc("2024-06-10")
	require.NoError(t, f.store.Lancamentos().Create(ctx, l))

	upd := *l
	upd.CreatedAt = time.Time{}
	upd.DataReferencia = "2024-06-11"
	require.NoError(t, f.store.Lancamentos().Update(ctx, &upd))
	assert.Equal(t, l.CreatedAt, upd.CreatedAt)

	got, err := f.store.Lancamentos().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-11", got.DataReferencia)

	upd.UserID = "ghost"
	err = f.store.Lancamentos().Update(ctx, &upd)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestColaboradorBatchIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Colaboradores().CreateBatch(ctx, []domain.Colaborador{
		{Nome: "A", BaseID: f.base.ID, Ativo: true},
		{Nome: "B", BaseID: "missing", Ativo: true},
	})
	require.Error(t, err)

	all, err := f.store.Colaboradores().List(ctx, repository.ColaboradorFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	created, err := f.store.Colaboradores().CreateBatch(ctx, []domain.Colaborador{
		{Nome: "B", BaseID: f.base.ID, Ativo: true},
		{Nome: "A", BaseID: f.base.ID, Ativo: false},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEmpty(t, created[0].ID)

	ativos, err := f.store.Colaboradores().List(ctx, repository.ColaboradorFilter{BaseID: f.base.ID, SomenteAtivos: true})
	require.NoError(t, err)
	require.Len(t, ativos, 1)
	assert.Equal(t, "B", ativos[0].Nome)
}

func TestBaseNamesAreUnique(t *testing.T) {
	f := newFixture(t)
	err := f.store.Bases().Create(context.Background(), &domain.Base{Nome: "goiânia"})
	assert.Equal(t, errorutil.CodeConflict, errorutil.ToDomainError(err).Code)
}
