package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// UserRepository persists login accounts and their profiles. An account and
// its profile share the same id and are always written together.
type UserRepository interface {
	Create(ctx context.Context, account *domain.Account, profile *domain.Profile) error
	Update(ctx context.Context, profile *domain.Profile, change AccountChange) error
	Delete(ctx context.Context, id string) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]domain.Profile, error)
}

// AccountChange carries optional credential updates. Nil fields are left as is.
type AccountChange struct {
	Email        *string
	PasswordHash *string
}

// ProfileFilter narrows profile listing.
type ProfileFilter struct {
	Role   *domain.Role
	BaseID *string
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Create inserts the account and the profile in one transaction.
func (r *userRepository) Create(ctx context.Context, account *domain.Account, profile *domain.Profile) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertAccount = `
            INSERT INTO accounts (email, password_hash)
            VALUES ($1, $2)
            RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertAccount,
			strings.ToLower(strings.TrimSpace(account.Email)),
			account.PasswordHash,
		).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return fmt.Errorf("insert account: %w", err)
		}

		const insertProfile = `
            INSERT INTO profiles (id, nome, role, base_id, equipe_id, acesso_gerente_sci)
            VALUES ($1,$2,$3,$4,$5,$6)
            RETURNING created_at, updated_at`
		profile.ID = account.ID
		if err := tx.QueryRow(ctx, insertProfile,
			profile.ID,
			profile.Nome,
			profile.Role,
			profile.BaseID,
			profile.EquipeID,
			profile.AcessoGerenteSCI,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, profile *domain.Profile, change AccountChange) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const updateProfile = `
            UPDATE profiles
            SET nome=$1, role=$2, base_id=$3, equipe_id=$4, acesso_gerente_sci=$5, updated_at=NOW()
            WHERE id=$6
            RETURNING updated_at`
		if err := tx.QueryRow(ctx, updateProfile,
			profile.Nome,
			profile.Role,
			profile.BaseID,
			profile.EquipeID,
			profile.AcessoGerenteSCI,
			profile.ID,
		).Scan(&profile.UpdatedAt); err != nil {
			return err
		}

		if change.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*change.Email))
			if err := execOne(ctx, tx, `UPDATE accounts SET email=$1, updated_at=NOW() WHERE id=$2`, email, profile.ID); err != nil {
				return fmt.Errorf("update email: %w", err)
			}
		}
		if change.PasswordHash != nil {
			if err := execOne(ctx, tx, `UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`, *change.PasswordHash, profile.ID); err != nil {
				return fmt.Errorf("update password: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the account; the profile and its submissions cascade.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM accounts WHERE id=$1`, id)
}

const selectProfile = `
        SELECT id, nome, role, base_id, equipe_id, acesso_gerente_sci, created_at, updated_at
        FROM profiles`

func (r *userRepository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.pool.QueryRow(ctx, selectProfile+` WHERE id=$1`, id).Scan(
		&p.ID,
		&p.Nome,
		&p.Role,
		&p.BaseID,
		&p.EquipeID,
		&p.AcessoGerenteSCI,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *userRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return r.getAccount(ctx, `WHERE id=$1`, id)
}

func (r *userRepository) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getAccount(ctx, `WHERE email=$1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) getAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM accounts ` + where
	var a domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *userRepository) ListProfiles(ctx context.Context, filter ProfileFilter) ([]domain.Profile, error) {
	query := selectProfile
	args := []any{}
	clauses := []string{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.BaseID != nil {
		args = append(args, *filter.BaseID)
		clauses = append(clauses, fmt.Sprintf("base_id=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY nome"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(
			&p.ID,
			&p.Nome,
			&p.Role,
			&p.BaseID,
			&p.EquipeID,
			&p.AcessoGerenteSCI,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
