package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// IndicadorRepository reads the configured indicator types. The table is
// seeded by migrations and not edited through the API.
type IndicadorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.IndicadorConfig, error)
	GetBySchemaType(ctx context.Context, schemaType domain.SchemaType) (*domain.IndicadorConfig, error)
	List(ctx context.Context) ([]domain.IndicadorConfig, error)
}

type indicadorRepository struct {
	pool *pgxpool.Pool
}

// NewIndicadorRepository builds the repository.
func NewIndicadorRepository(pool *pgxpool.Pool) IndicadorRepository {
	return &indicadorRepository{pool: pool}
}

const selectIndicador = `SELECT id, nome, schema_type, created_at FROM indicadores_config`

func (r *indicadorRepository) GetByID(ctx context.Context, id string) (*domain.IndicadorConfig, error) {
	var ind domain.IndicadorConfig
	if err := r.pool.QueryRow(ctx, selectIndicador+` WHERE id=$1`, id).
		Scan(&ind.ID, &ind.Nome, &ind.SchemaType, &ind.CreatedAt); err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *indicadorRepository) GetBySchemaType(ctx context.Context, schemaType domain.SchemaType) (*domain.IndicadorConfig, error) {
	var ind domain.IndicadorConfig
	if err := r.pool.QueryRow(ctx, selectIndicador+` WHERE schema_type=$1`, schemaType).
		Scan(&ind.ID, &ind.Nome, &ind.SchemaType, &ind.CreatedAt); err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *indicadorRepository) List(ctx context.Context) ([]domain.IndicadorConfig, error) {
	rows, err := r.pool.Query(ctx, selectIndicador+` ORDER BY nome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IndicadorConfig
	for rows.Next() {
		var ind domain.IndicadorConfig
		if err := rows.Scan(&ind.ID, &ind.Nome, &ind.SchemaType, &ind.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, ind)
	}
	return result, rows.Err()
}
