package memrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

type lancamentoRepo struct{ s *Store }

func (r lancamentoRepo) checkRefsLocked(l *domain.Lancamento) error {
	refs := []struct {
		field string
		ok    bool
	}{
		{"base_id", has(r.s.bases, l.BaseID)},
		{"equipe_id", has(r.s.equipes, l.EquipeID)},
		{"indicador_id", has(r.s.indicadores, l.IndicadorID)},
	}
	for _, ref := range refs {
		if !ref.ok {
			return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"field": ref.field})
		}
	}
	return nil
}

func has[T any](m map[string]T, id string) bool {
	_, ok := m[id]
	return ok
}

func (r lancamentoRepo) Create(_ context.Context, l *domain.Lancamento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefsLocked(l); err != nil {
		return err
	}
	if !has(r.s.profiles, l.UserID) {
		return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"field": "user_id"})
	}
	now := r.s.clock.Now()
	l.ID = uuid.NewString()
	l.CreatedAt, l.UpdatedAt = now, now
	r.s.lancamentos[l.ID] = *l
	return nil
}

func (r lancamentoRepo) Update(_ context.Context, l *domain.Lancamento) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.lancamentos[l.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := r.checkRefsLocked(l); err != nil {
		return err
	}
	if !has(r.s.profiles, l.UserID) {
		return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"field": "user_id"})
	}
	l.CreatedAt = cur.CreatedAt
	l.UpdatedAt = r.s.clock.Now()
	r.s.lancamentos[l.ID] = *l
	return nil
}

func (r lancamentoRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lancamentos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.lancamentos, id)
	return nil
}

func (r lancamentoRepo) GetByID(_ context.Context, id string) (*domain.Lancamento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lancamentos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &l, nil
}

func (r lancamentoRepo) List(_ context.Context, filter domain.LancamentoFilter) ([]domain.Lancamento, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	start, end := filter.DataInicio, filter.DataFim
	if (start != "" || end != "") && r.s.guard != nil {
		rng := r.s.guard.Enforce(start, end)
		start, end = rng.Start, rng.End
	}

	all := sortedValues(r.s.lancamentos, func(a, b domain.Lancamento) bool {
		if a.DataReferencia != b.DataReferencia {
			return a.DataReferencia > b.DataReferencia
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	out := []domain.Lancamento{}
	for _, l := range all {
		switch {
		case start != "" && l.DataReferencia < start,
			end != "" && l.DataReferencia > end,
			filter.BaseID != "" && l.BaseID != filter.BaseID,
			filter.EquipeID != "" && l.EquipeID != filter.EquipeID,
			filter.UserID != "" && l.UserID != filter.UserID,
			filter.IndicadorID != "" && l.IndicadorID != filter.IndicadorID:
			continue
		}
		out = append(out, l)
	}
	if filter.Limit > 0 {
		offset := max(filter.Offset, 0)
		if offset >= len(out) {
			return []domain.Lancamento{}, nil
		}
		out = out[offset:min(offset+filter.Limit, len(out))]
	}
	return out, nil
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(_ context.Context, f *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !has(r.s.profiles, f.UserID) {
		return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"field": "user_id"})
	}
	f.ID = uuid.NewString()
	f.CreatedAt = r.s.clock.Now()
	r.s.feedbacks[f.ID] = *f
	return nil
}

func (r feedbackRepo) Update(_ context.Context, f *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.feedbacks[f.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cur.Status, cur.TratativaTipo, cur.RespostaSuporte = f.Status, f.TratativaTipo, f.RespostaSuporte
	r.s.feedbacks[f.ID] = cur
	*f = cur
	return nil
}

func (r feedbackRepo) GetByID(_ context.Context, id string) (*domain.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.feedbacks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &f, nil
}

func (r feedbackRepo) List(_ context.Context, filter repository.FeedbackFilter) ([]domain.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Feedback
	for _, f := range sortedValues(r.s.feedbacks, func(a, b domain.Feedback) bool { return a.CreatedAt.After(b.CreatedAt) }) {
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
