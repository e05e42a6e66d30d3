package memrepo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

type userRepo struct{ s *Store }

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (r userRepo) emailTakenLocked(email, exceptID string) bool {
	for id, a := range r.s.accounts {
		if id != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

func (r userRepo) Create(_ context.Context, account *domain.Account, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := normEmail(account.Email)
	if r.emailTakenLocked(email, "") {
		return errorutil.NewConflict("resource already exists", map[string]any{"constraint": "accounts_email_key"})
	}
	now := r.s.clock.Now()
	account.ID = uuid.NewString()
	account.Email = email
	account.CreatedAt, account.UpdatedAt = now, now
	profile.ID = account.ID
	profile.CreatedAt, profile.UpdatedAt = now, now
	r.s.accounts[account.ID] = *account
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r userRepo) Update(_ context.Context, profile *domain.Profile, change repository.AccountChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.profiles[profile.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	acc := r.s.accounts[profile.ID]
	if change.Email != nil {
		email := normEmail(*change.Email)
		if r.emailTakenLocked(email, profile.ID) {
			return errorutil.NewConflict("resource already exists", map[string]any{"constraint": "accounts_email_key"})
		}
		acc.Email = email
	}
	if change.PasswordHash != nil {
		acc.PasswordHash = *change.PasswordHash
	}
	now := r.s.clock.Now()
	if change.Email != nil || change.PasswordHash != nil {
		acc.UpdatedAt = now
		r.s.accounts[acc.ID] = acc
	}
	profile.CreatedAt = cur.CreatedAt
	profile.UpdatedAt = now
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.accounts, id)
	delete(r.s.profiles, id)
	for k, l := range r.s.lancamentos {
		if l.UserID == id {
			delete(r.s.lancamentos, k)
		}
	}
	for k, f := range r.s.feedbacks {
		if f.UserID == id {
			delete(r.s.feedbacks, k)
		}
	}
	return nil
}

func (r userRepo) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (r userRepo) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (r userRepo) GetAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = normEmail(email)
	for _, a := range r.s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ListProfiles(_ context.Context, filter repository.ProfileFilter) ([]domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Profile
	for _, p := range sortedValues(r.s.profiles, func(a, b domain.Profile) bool { return a.Nome < b.Nome }) {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		if filter.BaseID != nil && p.BaseIDValue() != *filter.BaseID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
