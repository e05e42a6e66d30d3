package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// BaseRepository manages fire station persistence.
type BaseRepository interface {
	Create(ctx context.Context, base *domain.Base) error
	Update(ctx context.Context, base *domain.Base) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Base, error)
	List(ctx context.Context) ([]domain.Base, error)
}

type baseRepository struct {
	pool *pgxpool.Pool
}

// NewBaseRepository builds the repository.
func NewBaseRepository(pool *pgxpool.Pool) BaseRepository {
	return &baseRepository{pool: pool}
}

func (r *baseRepository) Create(ctx context.Context, base *domain.Base) error {
	const query = `
        INSERT INTO bases (nome)
        VALUES ($1)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, base.Nome).Scan(&base.ID, &base.CreatedAt)
}

func (r *baseRepository) Update(ctx context.Context, base *domain.Base) error {
	return execOne(ctx, r.pool, `UPDATE bases SET nome=$1 WHERE id=$2`, base.Nome, base.ID)
}

func (r *baseRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM bases WHERE id=$1`, id)
}

func (r *baseRepository) GetByID(ctx context.Context, id string) (*domain.Base, error) {
	var base domain.Base
	if err := r.pool.QueryRow(ctx, `SELECT id, nome, created_at FROM bases WHERE id=$1`, id).
		Scan(&base.ID, &base.Nome, &base.CreatedAt); err != nil {
		return nil, err
	}
	return &base, nil
}

func (r *baseRepository) List(ctx context.Context) ([]domain.Base, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nome, created_at FROM bases ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Base
	for rows.Next() {
		var base domain.Base
		if err := rows.Scan(&base.ID, &base.Nome, &base.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, base)
	}
	return result, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db execer, query string, args ...any) error {
	cmd, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
