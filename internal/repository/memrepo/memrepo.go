// Package memrepo implements the repository interfaces in memory. It backs
// tests and lets the API run without a database during development.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"

	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// Store holds every table behind one lock so cascades stay consistent.
type Store struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	guard *daterange.Guard

	bases         map[string]domain.Base
	equipes       map[string]domain.Equipe
	colaboradores map[string]domain.Colaborador
	indicadores   map[string]domain.IndicadorConfig
	accounts      map[string]domain.Account
	profiles      map[string]domain.Profile
	lancamentos   map[string]domain.Lancamento
	feedbacks     map[string]domain.Feedback
}

// New returns an empty store. A nil clock uses real time; a nil guard leaves
// listing ranges untouched.
func New(clock clockwork.Clock, guard *daterange.Guard) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:         clock,
		guard:         guard,
		bases:         map[string]domain.Base{},
		equipes:       map[string]domain.Equipe{},
		colaboradores: map[string]domain.Colaborador{},
		indicadores:   map[string]domain.IndicadorConfig{},
		accounts:      map[string]domain.Account{},
		profiles:      map[string]domain.Profile{},
		lancamentos:   map[string]domain.Lancamento{},
		feedbacks:     map[string]domain.Feedback{},
	}
}

// SeedIndicadores registers one indicator config per schema type using the
// given display names, mirroring the seed migration.
func (s *Store) SeedIndicadores(names map[domain.SchemaType]string) []domain.IndicadorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.IndicadorConfig, 0, len(names))
	for _, st := range domain.AllSchemaTypes() {
		nome, ok := names[st]
		if !ok {
			continue
		}
		ind := domain.IndicadorConfig{ID: uuid.NewString(), Nome: nome, SchemaType: st, CreatedAt: s.clock.Now()}
		s.indicadores[ind.ID] = ind
		out = append(out, ind)
	}
	return out
}

// Set exposes the store through the repository interfaces.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Bases:         s.Bases(),
		Equipes:       s.Equipes(),
		Colaboradores: s.Colaboradores(),
		Indicadores:   s.Indicadores(),
		Users:         s.Users(),
		Lancamentos:   s.Lancamentos(),
		Feedbacks:     s.Feedbacks(),
	}
}

func (s *Store) Bases() repository.BaseRepository                { return baseRepo{s} }
func (s *Store) Equipes() repository.EquipeRepository            { return equipeRepo{s} }
func (s *Store) Colaboradores() repository.ColaboradorRepository { return colaboradorRepo{s} }
func (s *Store) Indicadores() repository.IndicadorRepository     { return indicadorRepo{s} }
func (s *Store) Users() repository.UserRepository                { return userRepo{s} }
func (s *Store) Lancamentos() repository.LancamentoRepository    { return lancamentoRepo{s} }
func (s *Store) Feedbacks() repository.FeedbackRepository        { return feedbackRepo{s} }

func nameTaken[T any](items map[string]T, id, nome string, nameOf func(T) string) bool {
	for k, v := range items {
		if k != id && strings.EqualFold(nameOf(v), nome) {
			return true
		}
	}
	return false
}

func sortedValues[T any](items map[string]T, less func(a, b T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type baseRepo struct{ s *Store }

func (r baseRepo) Create(_ context.Context, b *domain.Base) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if nameTaken(r.s.bases, "", b.Nome, func(v domain.Base) string { return v.Nome }) {
		return errorutil.NewConflict("base already exists", map[string]any{"nome": b.Nome})
	}
	b.ID = uuid.NewString()
	b.CreatedAt = r.s.clock.Now()
	r.s.bases[b.ID] = *b
	return nil
}

func (r baseRepo) Update(_ context.Context, b *domain.Base) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.bases[b.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if nameTaken(r.s.bases, b.ID, b.Nome, func(v domain.Base) string { return v.Nome }) {
		return errorutil.NewConflict("base already exists", map[string]any{"nome": b.Nome})
	}
	cur.Nome = b.Nome
	r.s.bases[b.ID] = cur
	*b = cur
	return nil
}

func (r baseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bases[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, l := range r.s.lancamentos {
		if l.BaseID == id {
			return errorutil.NewConflict("base has submissions", map[string]any{"base_id": id})
		}
	}
	for k, c := range r.s.colaboradores {
		if c.BaseID == id {
			delete(r.s.colaboradores, k)
		}
	}
	delete(r.s.bases, id)
	return nil
}

func (r baseRepo) GetByID(_ context.Context, id string) (*domain.Base, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &b, nil
}

func (r baseRepo) List(_ context.Context) ([]domain.Base, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.bases, func(a, b domain.Base) bool { return a.Nome < b.Nome }), nil
}

type equipeRepo struct{ s *Store }

func (r equipeRepo) Create(_ context.Context, e *domain.Equipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if nameTaken(r.s.equipes, "", e.Nome, func(v domain.Equipe) string { return v.Nome }) {
		return errorutil.NewConflict("equipe already exists", map[string]any{"nome": e.Nome})
	}
	e.ID = uuid.NewString()
	e.CreatedAt = r.s.clock.Now()
	r.s.equipes[e.ID] = *e
	return nil
}

func (r equipeRepo) Update(_ context.Context, e *domain.Equipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.equipes[e.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if nameTaken(r.s.equipes, e.ID, e.Nome, func(v domain.Equipe) string { return v.Nome }) {
		return errorutil.NewConflict("equipe already exists", map[string]any{"nome": e.Nome})
	}
	cur.Nome = e.Nome
	r.s.equipes[e.ID] = cur
	*e = cur
	return nil
}

func (r equipeRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.equipes[id]; !ok {
		return pgx.ErrNoRows
	}
	for _, l := range r.s.lancamentos {
		if l.EquipeID == id {
			return errorutil.NewConflict("equipe has submissions", map[string]any{"equipe_id": id})
		}
	}
	delete(r.s.equipes, id)
	return nil
}

func (r equipeRepo) GetByID(_ context.Context, id string) (*domain.Equipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.equipes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r equipeRepo) List(_ context.Context) ([]domain.Equipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.equipes, func(a, b domain.Equipe) bool { return a.Nome < b.Nome }), nil
}

type colaboradorRepo struct{ s *Store }

func (r colaboradorRepo) Create(_ context.Context, c *domain.Colaborador) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(c)
}

func (r colaboradorRepo) insertLocked(c *domain.Colaborador) error {
	if _, ok := r.s.bases[c.BaseID]; !ok {
		return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"base_id": c.BaseID})
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.clock.Now()
	r.s.colaboradores[c.ID] = *c
	return nil
}

func (r colaboradorRepo) CreateBatch(_ context.Context, items []domain.Colaborador) ([]domain.Colaborador, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range items {
		if _, ok := r.s.bases[c.BaseID]; !ok {
			return nil, errorutil.NewValidationError("referenced resource does not exist", map[string]any{"base_id": c.BaseID})
		}
	}
	out := make([]domain.Colaborador, len(items))
	copy(out, items)
	for i := range out {
		if err := r.insertLocked(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r colaboradorRepo) Update(_ context.Context, c *domain.Colaborador) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.colaboradores[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if _, ok := r.s.bases[c.BaseID]; !ok {
		return errorutil.NewValidationError("referenced resource does not exist", map[string]any{"base_id": c.BaseID})
	}
	cur.Nome, cur.BaseID, cur.Ativo = c.Nome, c.BaseID, c.Ativo
	r.s.colaboradores[c.ID] = cur
	*c = cur
	return nil
}

func (r colaboradorRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.colaboradores[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.colaboradores, id)
	return nil
}

func (r colaboradorRepo) GetByID(_ context.Context, id string) (*domain.Colaborador, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.colaboradores[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r colaboradorRepo) List(_ context.Context, filter repository.ColaboradorFilter) ([]domain.Colaborador, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Colaborador
	for _, c := range sortedValues(r.s.colaboradores, func(a, b domain.Colaborador) bool { return a.Nome < b.Nome }) {
		if filter.BaseID != "" && c.BaseID != filter.BaseID {
			continue
		}
		if filter.SomenteAtivos && !c.Ativo {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type indicadorRepo struct{ s *Store }

func (r indicadorRepo) GetByID(_ context.Context, id string) (*domain.IndicadorConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ind, ok := r.s.indicadores[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ind, nil
}

func (r indicadorRepo) GetBySchemaType(_ context.Context, st domain.SchemaType) (*domain.IndicadorConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ind := range r.s.indicadores {
		if ind.SchemaType == st {
			return &ind, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r indicadorRepo) List(_ context.Context) ([]domain.IndicadorConfig, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sortedValues(r.s.indicadores, func(a, b domain.IndicadorConfig) bool { return a.Nome < b.Nome }), nil
}
