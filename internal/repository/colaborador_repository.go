package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// ColaboradorRepository manages firefighters registered at each base.
type ColaboradorRepository interface {
	Create(ctx context.Context, c *domain.Colaborador) error
	CreateBatch(ctx context.Context, items []domain.Colaborador) ([]domain.Colaborador, error)
	Update(ctx context.Context, c *domain.Colaborador) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Colaborador, error)
	List(ctx context.Context, filter ColaboradorFilter) ([]domain.Colaborador, error)
}

// ColaboradorFilter narrows the listing. Empty BaseID lists every base.
type ColaboradorFilter struct {
	BaseID        string
	SomenteAtivos bool
}

type colaboradorRepository struct {
	pool *pgxpool.Pool
}

// NewColaboradorRepository builds the repository.
func NewColaboradorRepository(pool *pgxpool.Pool) ColaboradorRepository {
	return &colaboradorRepository{pool: pool}
}

const insertColaborador = `
        INSERT INTO colaboradores (nome, base_id, ativo)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

func (r *colaboradorRepository) Create(ctx context.Context, c *domain.Colaborador) error {
	return r.pool.QueryRow(ctx, insertColaborador, c.Nome, c.BaseID, c.Ativo).Scan(&c.ID, &c.CreatedAt)
}

// CreateBatch inserts all items in one round trip inside a transaction, so a
// failing row leaves nothing behind.
func (r *colaboradorRepository) CreateBatch(ctx context.Context, items []domain.Colaborador) ([]domain.Colaborador, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]domain.Colaborador, len(items))
	copy(out, items)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range out {
			c := &out[i]
			batch.Queue(insertColaborador, c.Nome, c.BaseID, c.Ativo).QueryRow(func(row pgx.Row) error {
				return row.Scan(&c.ID, &c.CreatedAt)
			})
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, fmt.Errorf("insert colaboradores: %w", err)
	}
	return out, nil
}

func (r *colaboradorRepository) Update(ctx context.Context, c *domain.Colaborador) error {
	return execOne(ctx, r.pool, `UPDATE colaboradores SET nome=$1, base_id=$2, ativo=$3 WHERE id=$4`,
		c.Nome, c.BaseID, c.Ativo, c.ID)
}

func (r *colaboradorRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM colaboradores WHERE id=$1`, id)
}

func (r *colaboradorRepository) GetByID(ctx context.Context, id string) (*domain.Colaborador, error) {
	const query = `SELECT id, nome, base_id, ativo, created_at FROM colaboradores WHERE id=$1`
	var c domain.Colaborador
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Nome, &c.BaseID, &c.Ativo, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *colaboradorRepository) List(ctx context.Context, filter ColaboradorFilter) ([]domain.Colaborador, error) {
	query := `SELECT id, nome, base_id, ativo, created_at FROM colaboradores WHERE TRUE`
	args := []any{}
	if filter.BaseID != "" {
		args = append(args, filter.BaseID)
		query += fmt.Sprintf(" AND base_id=$%d", len(args))
	}
	if filter.SomenteAtivos {
		query += " AND ativo = TRUE"
	}
	query += " ORDER BY nome"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Colaborador
	for rows.Next() {
		var c domain.Colaborador
		if err := rows.Scan(&c.ID, &c.Nome, &c.BaseID, &c.Ativo, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
