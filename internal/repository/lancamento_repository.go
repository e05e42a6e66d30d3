package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
)

// LancamentoRepository persists indicator submissions. Update records the
// editing user as the submission's user.
type LancamentoRepository interface {
	Create(ctx context.Context, l *domain.Lancamento) error
	Update(ctx context.Context, l *domain.Lancamento) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Lancamento, error)
	List(ctx context.Context, filter domain.LancamentoFilter) ([]domain.Lancamento, error)
}

type lancamentoRepository struct {
	pool  *pgxpool.Pool
	guard *daterange.Guard
}

// NewLancamentoRepository builds the repository. When guard is set, any
// listing that filters by date has its range clamped before querying.
func NewLancamentoRepository(pool *pgxpool.Pool, guard *daterange.Guard) LancamentoRepository {
	return &lancamentoRepository{pool: pool, guard: guard}
}

func (r *lancamentoRepository) Create(ctx context.Context, l *domain.Lancamento) error {
	day, err := parseDay(l.DataReferencia)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO lancamentos (data_referencia, base_id, equipe_id, user_id, indicador_id, conteudo)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		day,
		l.BaseID,
		l.EquipeID,
		l.UserID,
		l.IndicadorID,
		l.Conteudo,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *lancamentoRepository) Update(ctx context.Context, l *domain.Lancamento) error {
	day, err := parseDay(l.DataReferencia)
	if err != nil {
		return err
	}
	const query = `
        UPDATE lancamentos
        SET data_referencia=$1, base_id=$2, equipe_id=$3, user_id=$4, indicador_id=$5, conteudo=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		day,
		l.BaseID,
		l.EquipeID,
		l.UserID,
		l.IndicadorID,
		l.Conteudo,
		l.ID,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *lancamentoRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM lancamentos WHERE id=$1`, id)
}

const selectLancamento = `
        SELECT id, data_referencia::text, base_id, equipe_id, user_id, indicador_id, conteudo, created_at, updated_at
        FROM lancamentos`

func (r *lancamentoRepository) GetByID(ctx context.Context, id string) (*domain.Lancamento, error) {
	rows, err := r.pool.Query(ctx, selectLancamento+` WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result, err := scanLancamentos(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &result[0], nil
}

func (r *lancamentoRepository) List(ctx context.Context, filter domain.LancamentoFilter) ([]domain.Lancamento, error) {
	args := []any{}
	clauses := []string{"TRUE"}

	if filter.DataInicio != "" || filter.DataFim != "" {
		rng := daterange.Range{Start: filter.DataInicio, End: filter.DataFim}
		if r.guard != nil {
			rng = r.guard.Enforce(filter.DataInicio, filter.DataFim)
		}
		if rng.Start != "" {
			start, err := parseDay(rng.Start)
			if err != nil {
				return nil, err
			}
			args = append(args, start)
			clauses = append(clauses, fmt.Sprintf("data_referencia >= $%d", len(args)))
		}
		if rng.End != "" {
			end, err := parseDay(rng.End)
			if err != nil {
				return nil, err
			}
			args = append(args, end)
			clauses = append(clauses, fmt.Sprintf("data_referencia <= $%d", len(args)))
		}
	}
	if filter.BaseID != "" {
		args = append(args, filter.BaseID)
		clauses = append(clauses, fmt.Sprintf("base_id=$%d", len(args)))
	}
	if filter.EquipeID != "" {
		args = append(args, filter.EquipeID)
		clauses = append(clauses, fmt.Sprintf("equipe_id=$%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.IndicadorID != "" {
		args = append(args, filter.IndicadorID)
		clauses = append(clauses, fmt.Sprintf("indicador_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY data_referencia DESC, created_at DESC`,
		selectLancamento, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLancamentos(rows)
}

func scanLancamentos(rows pgx.Rows) ([]domain.Lancamento, error) {
	var result []domain.Lancamento
	for rows.Next() {
		var l domain.Lancamento
		if err := rows.Scan(
			&l.ID,
			&l.DataReferencia,
			&l.BaseID,
			&l.EquipeID,
			&l.UserID,
			&l.IndicadorID,
			&l.Conteudo,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func parseDay(s string) (time.Time, error) {
	day, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid data_referencia %q: %w", s, err)
	}
	return day, nil
}
