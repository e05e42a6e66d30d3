package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// UserService implements the privileged user administration endpoints.
type UserService struct {
	users      repository.UserRepository
	bases      repository.BaseRepository
	equipes    repository.EquipeRepository
	bcryptCost int
	events     publisher
}

// UserDependencies bundles what UserService needs.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	BaseRepo   repository.BaseRepository
	EquipeRepo repository.EquipeRepository
	Dispatcher events.Dispatcher
	Clock      clockwork.Clock
	Logger     *zap.Logger
}

// CreateUserInput is the create-user request body.
type CreateUserInput struct {
	Email            string
	Password         string
	Nome             string
	Role             domain.Role
	BaseID           *string
	EquipeID         *string
	AcessoGerenteSCI *bool
}

// UpdateUserInput is the update-user request body. Nil Email and Password
// leave the credentials unchanged.
type UpdateUserInput struct {
	ID               string
	Nome             string
	Role             domain.Role
	BaseID           *string
	EquipeID         *string
	Email            *string
	Password         *string
	AcessoGerenteSCI *bool
}

// UserView is a profile with its login email.
type UserView struct {
	Profile domain.Profile
	Email   string
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		bases:      deps.BaseRepo,
		equipes:    deps.EquipeRepo,
		bcryptCost: cfg.Auth.BcryptCost,
		events:     newPublisher(deps.Dispatcher, deps.Clock, deps.Logger),
	}
}

// CreateUser creates the account and its profile in one step.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Profile, in CreateUserInput) (*UserView, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Nome = strings.TrimSpace(in.Nome)
	if in.Email == "" || in.Password == "" || in.Nome == "" || in.Role == "" {
		return nil, apperrors.NewValidationError("Campos obrigatórios: email, password, nome, role", nil)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.NewValidationError("a senha deve ter pelo menos 6 caracteres", nil)
	}

	if caller.Role == domain.RoleGerenteSCI {
		in.BaseID = callerBase(caller)
	}
	if !manageable(caller, in.Role, valueOf(in.BaseID)) {
		return nil, apperrors.NewForbidden("sem permissão para criar usuário com este perfil ou base")
	}

	profile := domain.Profile{Nome: in.Nome, Role: in.Role}
	if err := s.scope(ctx, &profile, in.BaseID, in.EquipeID); err != nil {
		return nil, err
	}
	acesso, err := resolveAcessoGerenteSCI(caller, in.Role, in.AcessoGerenteSCI, false)
	if err != nil {
		return nil, err
	}
	profile.AcessoGerenteSCI = acesso

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, account, &profile); err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.EventUserChanged, profile.ID, caller.ID, events.UserPayload{Op: "create", Role: profile.Role})
	return &UserView{Profile: profile, Email: account.Email}, nil
}

// UpdateUser changes a profile and, optionally, its credentials.
func (s *UserService) UpdateUser(ctx context.Context, caller domain.Profile, in UpdateUserInput) (*UserView, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Nome = strings.TrimSpace(in.Nome)
	if in.ID == "" || in.Nome == "" || in.Role == "" {
		return nil, apperrors.NewValidationError("Campos obrigatórios: id, nome, role", nil)
	}

	current, err := s.users.GetProfile(ctx, in.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", map[string]any{"id": in.ID})
		}
		return nil, err
	}
	if !manageable(caller, current.Role, current.BaseIDValue()) {
		return nil, apperrors.NewForbidden("sem permissão para editar este usuário")
	}
	if caller.Role == domain.RoleGerenteSCI {
		in.BaseID = callerBase(caller)
	}
	if !manageable(caller, in.Role, valueOf(in.BaseID)) {
		return nil, apperrors.NewForbidden("sem permissão para atribuir este perfil ou base")
	}

	profile := *current
	profile.Nome = in.Nome
	profile.Role = in.Role
	if err := s.scope(ctx, &profile, in.BaseID, in.EquipeID); err != nil {
		return nil, err
	}
	acesso, err := resolveAcessoGerenteSCI(caller, in.Role, in.AcessoGerenteSCI, current.AcessoGerenteSCI)
	if err != nil {
		return nil, err
	}
	profile.AcessoGerenteSCI = acesso

	var change repository.AccountChange
	if email := trimmedPtr(in.Email); email != nil {
		change.Email = email
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < MinPasswordLength {
			return nil, apperrors.NewValidationError("a senha deve ter pelo menos 6 caracteres", nil)
		}
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		change.PasswordHash = &hash
	}

	if err := s.users.Update(ctx, &profile, change); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", map[string]any{"id": in.ID})
		}
		return nil, err
	}
	account, err := s.users.GetAccount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.EventUserChanged, profile.ID, caller.ID, events.UserPayload{Op: "update", Role: profile.Role})
	return &UserView{Profile: profile, Email: account.Email}, nil
}

// DeleteUser removes the account. The profile and its submissions go with it.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Profile, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewValidationError("userId é obrigatório no corpo da requisição", nil)
	}
	if userID == caller.ID {
		return apperrors.NewValidationError("não é possível excluir o próprio usuário", nil)
	}
	target, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Usuário", map[string]any{"id": userID})
		}
		return err
	}
	if !manageable(caller, target.Role, target.BaseIDValue()) {
		return apperrors.NewForbidden("sem permissão para excluir este usuário")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Usuário", map[string]any{"id": userID})
		}
		return err
	}
	s.events.publish(ctx, events.EventUserChanged, userID, caller.ID, events.UserPayload{Op: "delete"})
	return nil
}

// ListUsers returns profiles with their emails, optionally narrowed. The SCI
// manager only sees their own base.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Profile, filter repository.ProfileFilter) ([]UserView, error) {
	switch caller.Role {
	case domain.RoleGeral:
	case domain.RoleGerenteSCI:
		filter.BaseID = callerBase(caller)
		if filter.BaseID == nil {
			return []UserView{}, nil
		}
	default:
		return nil, apperrors.NewForbidden("sem permissão para listar usuários")
	}
	profiles, err := s.users.ListProfiles(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(profiles))
	for _, p := range profiles {
		view := UserView{Profile: p}
		if acc, err := s.users.GetAccount(ctx, p.ID); err == nil {
			view.Email = acc.Email
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// manageable reports whether caller may administer a user holding role in
// baseID. geral manages everyone; the SCI manager only team leads and
// auxiliaries of their own base.
func manageable(caller domain.Profile, role domain.Role, baseID string) bool {
	switch caller.Role {
	case domain.RoleGeral:
		return true
	case domain.RoleGerenteSCI:
		return (role == domain.RoleChefe || role == domain.RoleAuxiliar) &&
			caller.BaseIDValue() != "" && caller.BaseIDValue() == baseID
	}
	return false
}

func callerBase(caller domain.Profile) *string {
	base := caller.BaseIDValue()
	if base == "" {
		return nil
	}
	return &base
}

func valueOf(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// scope applies the role rules for base and equipe: team roles need both,
// the SCI manager needs a base and never has a team, geral has neither.
func (s *UserService) scope(ctx context.Context, p *domain.Profile, baseID, equipeID *string) error {
	if !p.Role.Valid() {
		return apperrors.NewValidationError("role inválido", map[string]any{"role": string(p.Role)})
	}
	baseID, equipeID = trimmedPtr(baseID), trimmedPtr(equipeID)

	switch p.Role {
	case domain.RoleChefe:
		if baseID == nil || equipeID == nil {
			return apperrors.NewValidationError("Chefe de Equipe precisa de base_id e equipe_id", nil)
		}
	case domain.RoleAuxiliar:
		if baseID == nil || equipeID == nil {
			return apperrors.NewValidationError("Auxiliar precisa de base_id e equipe_id", nil)
		}
	case domain.RoleGerenteSCI:
		if baseID == nil {
			return apperrors.NewValidationError("Gerente de SCI precisa de base_id", nil)
		}
		equipeID = nil
	case domain.RoleGeral:
		baseID, equipeID = nil, nil
	}

	if baseID != nil {
		if _, err := s.bases.GetByID(ctx, *baseID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("base não encontrada", map[string]any{"base_id": *baseID})
			}
			return err
		}
	}
	if equipeID != nil {
		if _, err := s.equipes.GetByID(ctx, *equipeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("equipe não encontrada", map[string]any{"equipe_id": *equipeID})
			}
			return err
		}
	}
	p.BaseID, p.EquipeID = baseID, equipeID
	return nil
}

// resolveAcessoGerenteSCI decides the SCI dashboard flag. Only team leads can
// hold it and only geral may set it; an omitted value keeps the current one.
func resolveAcessoGerenteSCI(caller domain.Profile, role domain.Role, requested *bool, current bool) (bool, error) {
	if requested == nil {
		return role == domain.RoleChefe && current, nil
	}
	if role != domain.RoleChefe {
		if *requested {
			return false, apperrors.NewValidationError("acesso_gerente_sci só se aplica a Chefes de Equipe", nil)
		}
		return false, nil
	}
	if caller.Role != domain.RoleGeral {
		return false, apperrors.NewForbidden("Apenas Gerente Geral pode alterar o acesso ao painel Gerente de SCI")
	}
	return *requested, nil
}
