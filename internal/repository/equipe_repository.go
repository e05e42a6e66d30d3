package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// EquipeRepository manages shift team persistence. Teams are shared by all bases.
type EquipeRepository interface {
	Create(ctx context.Context, equipe *domain.Equipe) error
	Update(ctx context.Context, equipe *domain.Equipe) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Equipe, error)
	List(ctx context.Context) ([]domain.Equipe, error)
}

type equipeRepository struct {
	pool *pgxpool.Pool
}

// NewEquipeRepository builds the repository.
func NewEquipeRepository(pool *pgxpool.Pool) EquipeRepository {
	return &equipeRepository{pool: pool}
}

func (r *equipeRepository) Create(ctx context.Context, equipe *domain.Equipe) error {
	const query = `
        INSERT INTO equipes (nome)
        VALUES ($1)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, equipe.Nome).Scan(&equipe.ID, &equipe.CreatedAt)
}

func (r *equipeRepository) Update(ctx context.Context, equipe *domain.Equipe) error {
	return execOne(ctx, r.pool, `UPDATE equipes SET nome=$1 WHERE id=$2`, equipe.Nome, equipe.ID)
}

func (r *equipeRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM equipes WHERE id=$1`, id)
}

func (r *equipeRepository) GetByID(ctx context.Context, id string) (*domain.Equipe, error) {
	var equipe domain.Equipe
	if err := r.pool.QueryRow(ctx, `SELECT id, nome, created_at FROM equipes WHERE id=$1`, id).
		Scan(&equipe.ID, &equipe.Nome, &equipe.CreatedAt); err != nil {
		return nil, err
	}
	return &equipe, nil
}

func (r *equipeRepository) List(ctx context.Context) ([]domain.Equipe, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nome, created_at FROM equipes ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Equipe
	for rows.Next() {
		var equipe domain.Equipe
		if err := rows.Scan(&equipe.ID, &equipe.Nome, &equipe.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, equipe)
	}
	return result, rows.Err()
}
