package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// MinPasswordLength is the shortest password accepted on creation or change.
const MinPasswordLength = 6

// AuthService coordinates login and password flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
}

// Session is the result of a successful login.
type Session struct {
	Profile   domain.Profile
	Email     string
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, nil)
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("email e senha são obrigatórios", nil)
	}
	account, err := s.users.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	profile, err := s.users.GetProfile(ctx, account.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("Perfil do usuário não encontrado")
		}
		return nil, err
	}
	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: *profile, Email: account.Email, Token: token, ExpiresAt: exp}, nil
}

// Me returns the caller's profile and login email.
func (s *AuthService) Me(ctx context.Context, profileID string) (*domain.Profile, string, error) {
	profile, err := s.users.GetProfile(ctx, profileID)
	if err != nil {
		return nil, "", err
	}
	account, err := s.users.GetAccount(ctx, profileID)
	if err != nil {
		return nil, "", err
	}
	return profile, account.Email, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, profileID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError("a nova senha deve ter pelo menos 6 caracteres", nil)
	}
	account, err := s.users.GetAccount(ctx, profileID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	profile, err := s.users.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, profile, repository.AccountChange{PasswordHash: &hash})
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
