package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

func newUserService(e *env) *UserService {
	return NewUserService(e.cfg, UserDependencies{
		UserRepo:   e.store.Users(),
		BaseRepo:   e.store.Bases(),
		EquipeRepo: e.store.Equipes(),
		Dispatcher: e.dispatcher,
		Clock:      e.clock,
	})
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestCreateUserRoleScoping(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, e.geral, CreateUserInput{Email: "x@example.com", Password: "segredo1", Role: domain.RoleChefe})
	assert.Equal(t, "Campos obrigatórios: email, password, nome, role", errorutil.ToDomainError(err).Message)

	_, err = svc.CreateUser(ctx, e.geral, CreateUserInput{
		Email: "x@example.com", Password: "segredo1", Nome: "X", Role: domain.RoleChefe, BaseID: &e.baseA.ID,
	})
	assert.Equal(t, "Chefe de Equipe precisa de base_id e equipe_id", errorutil.ToDomainError(err).Message)

	_, err = svc.CreateUser(ctx, e.geral, CreateUserInput{Email: "x@example.com", Password: "segredo1", Nome: "X", Role: domain.RoleGerenteSCI})
	assert.Equal(t, "Gerente de SCI precisa de base_id", errorutil.ToDomainError(err).Message)

	gerente, err := svc.CreateUser(ctx, e.geral, CreateUserInput{
		Email: " Novo@Example.com", Password: "segredo1", Nome: "Novo", Role: domain.RoleGerenteSCI,
		BaseID: &e.baseB.ID, EquipeID: &e.alfa.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "novo@example.com", gerente.Email)
	assert.Equal(t, e.baseB.ID, gerente.Profile.BaseIDValue())
	assert.Nil(t, gerente.Profile.EquipeID)

	geral, err := svc.CreateUser(ctx, e.geral, CreateUserInput{
		Email: "g2@example.com", Password: "segredo1", Nome: "G2", Role: domain.RoleGeral, BaseID: &e.baseA.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, geral.Profile.BaseID)

	_, err = svc.CreateUser(ctx, e.geral, CreateUserInput{
		Email: "y@example.com", Password: "segredo1", Nome: "Y", Role: domain.RoleChefe,
		BaseID: strPtr("missing"), EquipeID: &e.alfa.ID,
	})
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestCreateUserAcessoGerenteSCI(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	ctx := context.Background()
	in := CreateUserInput{
		Email: "c@example.com", Password: "segredo1", Nome: "C", Role: domain.RoleChefe,
		BaseID: &e.baseA.ID, EquipeID: &e.alfa.ID, AcessoGerenteSCI: boolPtr(true),
	}

	_, err := svc.CreateUser(ctx, e.gerenteA, in)
	assert.Equal(t, errorutil.CodeForbidden, errorutil.ToDomainError(err).Code)

	created, err := svc.CreateUser(ctx, e.geral, in)
	require.NoError(t, err)
	assert.True(t, created.Profile.AcessoGerenteSCI)

	_, err = svc.CreateUser(ctx, e.geral, CreateUserInput{
		Email: "a@example.com", Password: "segredo1", Nome: "A", Role: domain.RoleAuxiliar,
		BaseID: &e.baseA.ID, EquipeID: &e.alfa.ID, AcessoGerenteSCI: boolPtr(true),
	})
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	_, err := newUserService(e).CreateUser(context.Background(), e.geral, CreateUserInput{
		Email: "ALFA@example.com", Password: "segredo1", Nome: "Dup", Role: domain.RoleGeral,
	})
	assert.Equal(t, errorutil.CodeConflict, errorutil.ToDomainError(err).Code)
}

func TestUpdateUser(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	ctx := context.Background()

	_, err := svc.UpdateUser(ctx, e.geral, UpdateUserInput{ID: "missing", Nome: "X", Role: domain.RoleGeral})
	assert.Equal(t, errorutil.CodeNotFound, errorutil.ToDomainError(err).Code)

	_, err = svc.UpdateUser(ctx, e.geral, UpdateUserInput{ID: e.chefeAlfa.ID, Role: domain.RoleChefe})
	assert.Equal(t, "Campos obrigatórios: id, nome, role", errorutil.ToDomainError(err).Message)

	promoted, err := svc.UpdateUser(ctx, e.geral, UpdateUserInput{
		ID: e.chefeAlfa.ID, Nome: "Chefe Alfa", Role: domain.RoleChefe,
		BaseID: &e.baseA.ID, EquipeID: &e.alfa.ID, AcessoGerenteSCI: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, promoted.Profile.AcessoGerenteSCI)

	demoted, err := svc.UpdateUser(ctx, e.geral, UpdateUserInput{
		ID: e.chefeAlfa.ID, Nome: "Ex Chefe", Role: domain.RoleGerenteSCI, BaseID: &e.baseA.ID,
		Email: strPtr("novo@example.com"), Password: strPtr("outrasenha"),
	})
	require.NoError(t, err)
	assert.False(t, demoted.Profile.AcessoGerenteSCI)
	assert.Nil(t, demoted.Profile.EquipeID)
	assert.Equal(t, "novo@example.com", demoted.Email)

	auth := NewAuthService(e.cfg, AuthDependencies{UserRepo: e.store.Users()})
	_, err = auth.Login(ctx, "novo@example.com", "outrasenha")
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	ctx := context.Background()
	l := e.submit(t, e.chefeAlfa, "2024-06-14")

	err := svc.DeleteUser(ctx, e.geral, " ")
	assert.Equal(t, "userId é obrigatório no corpo da requisição", errorutil.ToDomainError(err).Message)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(svc.DeleteUser(ctx, e.geral, e.geral.ID)).Code)
	assert.Equal(t, errorutil.CodeNotFound, errorutil.ToDomainError(svc.DeleteUser(ctx, e.geral, "missing")).Code)

	require.NoError(t, svc.DeleteUser(ctx, e.geral, e.chefeAlfa.ID))
	_, err = e.store.Lancamentos().GetByID(ctx, l.ID)
	assert.Equal(t, errorutil.CodeNotFound, errorutil.ToDomainError(err).Code)

	role := domain.RoleChefe
	users, err := svc.ListUsers(ctx, e.geral, repository.ProfileFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bravo@example.com", users[0].Email)
}

func TestSCIManagerIsHeldToOwnBase(t *testing.T) {
	e := newEnv(t)
	svc := newUserService(e)
	ctx := context.Background()
	chefeB := e.addUser(t, "chefeb@example.com", domain.Profile{Nome: "Chefe B", Role: domain.RoleChefe, BaseID: &e.baseB.ID, EquipeID: &e.alfa.ID})

	forbidden := func(t *testing.T, err error) {
		t.Helper()
		require.Error(t, err)
		assert.Equal(t, errorutil.CodeForbidden, errorutil.ToDomainError(err).Code)
	}

	t.Run("create", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, e.gerenteA, CreateUserInput{
			Email: "geral2@example.com", Password: "segredo1", Nome: "G2", Role: domain.RoleGeral,
		})
		forbidden(t, err)

		_, err = svc.CreateUser(ctx, e.gerenteA, CreateUserInput{
			Email: "ger2@example.com", Password: "segredo1", Nome: "Ger2", Role: domain.RoleGerenteSCI, BaseID: &e.baseA.ID,
		})
		forbidden(t, err)

		created, err := svc.CreateUser(ctx, e.gerenteA, CreateUserInput{
			Email: "novo@example.com", Password: "segredo1", Nome: "Novo", Role: domain.RoleChefe,
			BaseID: &e.baseB.ID, EquipeID: &e.alfa.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, e.baseA.ID, created.Profile.BaseIDValue())
	})

	t.Run("update", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, e.gerenteA, UpdateUserInput{ID: e.geral.ID, Nome: "Gestora", Role: domain.RoleGeral})
		forbidden(t, err)

		_, err = svc.UpdateUser(ctx, e.gerenteA, UpdateUserInput{
			ID: chefeB.ID, Nome: "Chefe B", Role: domain.RoleChefe, BaseID: &e.baseB.ID, EquipeID: &e.alfa.ID,
		})
		forbidden(t, err)

		_, err = svc.UpdateUser(ctx, e.gerenteA, UpdateUserInput{
			ID: e.chefeAlfa.ID, Nome: "Chefe Alfa", Role: domain.RoleGeral,
		})
		forbidden(t, err)

		moved, err := svc.UpdateUser(ctx, e.gerenteA, UpdateUserInput{
			ID: e.chefeAlfa.ID, Nome: "Chefe Alfa", Role: domain.RoleAuxiliar, BaseID: &e.baseB.ID, EquipeID: &e.alfa.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, e.baseA.ID, moved.Profile.BaseIDValue())
		assert.Equal(t, domain.RoleAuxiliar, moved.Profile.Role)
	})

	t.Run("delete", func(t *testing.T) {
		forbidden(t, svc.DeleteUser(ctx, e.gerenteA, e.geral.ID))
		forbidden(t, svc.DeleteUser(ctx, e.gerenteA, chefeB.ID))
		require.NoError(t, svc.DeleteUser(ctx, e.gerenteA, e.chefeBravo.ID))
	})

	t.Run("list", func(t *testing.T) {
		other := e.baseB.ID
		users, err := svc.ListUsers(ctx, e.gerenteA, repository.ProfileFilter{BaseID: &other})
		require.NoError(t, err)
		require.NotEmpty(t, users)
		for _, u := range users {
			assert.Equal(t, e.baseA.ID, u.Profile.BaseIDValue())
		}

		_, err = svc.ListUsers(ctx, e.chefeAlfa, repository.ProfileFilter{})
		forbidden(t, err)
	})
}
