package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// FeedbackRepository manages support messages.
type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.Feedback) error
	Update(ctx context.Context, f *domain.Feedback) error
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
}

// FeedbackFilter narrows listing. Empty fields do not filter.
type FeedbackFilter struct {
	UserID string
	Status domain.FeedbackStatus
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository builds repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	const query = `
        INSERT INTO feedbacks (user_id, tipo, mensagem, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		f.UserID,
		f.Tipo,
		f.Mensagem,
		f.Status,
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *feedbackRepository) Update(ctx context.Context, f *domain.Feedback) error {
	const query = `
        UPDATE feedbacks SET status=$1, tratativa_tipo=$2, resposta_suporte=$3
        WHERE id=$4`
	return execOne(ctx, r.pool, query, f.Status, f.TratativaTipo, f.RespostaSuporte, f.ID)
}

const selectFeedback = `
        SELECT id, user_id, tipo, mensagem, status, tratativa_tipo, resposta_suporte, created_at
        FROM feedbacks`

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	var f domain.Feedback
	if err := r.pool.QueryRow(ctx, selectFeedback+` WHERE id=$1`, id).Scan(
		&f.ID,
		&f.UserID,
		&f.Tipo,
		&f.Mensagem,
		&f.Status,
		&f.TratativaTipo,
		&f.RespostaSuporte,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	query := selectFeedback + ` WHERE TRUE`
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id=$%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.Tipo,
			&f.Mensagem,
			&f.Status,
			&f.TratativaTipo,
			&f.RespostaSuporte,
			&f.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
