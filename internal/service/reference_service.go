package service

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/cache"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// Reference table names carried by reference_changed events.
const (
	TableBases         = "bases"
	TableEquipes       = "equipes"
	TableColaboradores = "colaboradores"
)

// ReferenceService manages bases, equipes, colaboradores and the read-only
// indicator catalogue. The small tables are served through the cache.
type ReferenceService struct {
	bases         repository.BaseRepository
	equipes       repository.EquipeRepository
	colaboradores repository.ColaboradorRepository
	indicadores   repository.IndicadorRepository
	cache         cache.Cache
	logger        *zap.Logger
	events        publisher
}

// ReferenceDependencies bundles what ReferenceService needs.
type ReferenceDependencies struct {
	BaseRepo        repository.BaseRepository
	EquipeRepo      repository.EquipeRepository
	ColaboradorRepo repository.ColaboradorRepository
	IndicadorRepo   repository.IndicadorRepository
	Cache           cache.Cache
	Dispatcher      events.Dispatcher
	Clock           clockwork.Clock
	Logger          *zap.Logger
}

// NewReferenceService constructs the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		bases:         deps.BaseRepo,
		equipes:       deps.EquipeRepo,
		colaboradores: deps.ColaboradorRepo,
		indicadores:   deps.IndicadorRepo,
		cache:         c,
		logger:        logger,
		events:        newPublisher(deps.Dispatcher, deps.Clock, logger),
	}
}

func (s *ReferenceService) Bases(ctx context.Context) ([]domain.Base, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.KeyBases, s.bases.List)
}

func (s *ReferenceService) Equipes(ctx context.Context) ([]domain.Equipe, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.KeyEquipes, s.equipes.List)
}

func (s *ReferenceService) Indicadores(ctx context.Context) ([]domain.IndicadorConfig, error) {
	return cache.Remember(ctx, s.cache, s.logger, cache.KeyIndicadores, s.indicadores.List)
}

// Invalidate drops the cached reference tables so the next read goes to the
// database.
func (s *ReferenceService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, cache.ReferenceKeys...)
}

// BaseNames maps base id to name.
func (s *ReferenceService) BaseNames(ctx context.Context) (map[string]string, error) {
	bases, err := s.Bases(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(bases))
	for _, b := range bases {
		out[b.ID] = b.Nome
	}
	return out, nil
}

// EquipeNames maps equipe id to name.
func (s *ReferenceService) EquipeNames(ctx context.Context) (map[string]string, error) {
	equipes, err := s.Equipes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(equipes))
	for _, e := range equipes {
		out[e.ID] = e.Nome
	}
	return out, nil
}

// IndicadorBySchemaType returns the configured indicator of a schema type.
func (s *ReferenceService) IndicadorBySchemaType(ctx context.Context, st domain.SchemaType) (*domain.IndicadorConfig, error) {
	all, err := s.Indicadores(ctx)
	if err != nil {
		return nil, err
	}
	for _, ind := range all {
		if ind.SchemaType == st {
			return &ind, nil
		}
	}
	return nil, apperrors.NewNotFound("indicador", map[string]any{"schema_type": string(st)})
}

func (s *ReferenceService) CreateBase(ctx context.Context, actor domain.Profile, nome string) (*domain.Base, error) {
	b := &domain.Base{Nome: strings.TrimSpace(nome)}
	if b.Nome == "" {
		return nil, apperrors.NewValidationError("nome da base é obrigatório", nil)
	}
	if err := s.bases.Create(ctx, b); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableBases, "create", b.ID)
	return b, nil
}

func (s *ReferenceService) UpdateBase(ctx context.Context, actor domain.Profile, id, nome string) (*domain.Base, error) {
	b := &domain.Base{ID: id, Nome: strings.TrimSpace(nome)}
	if b.Nome == "" {
		return nil, apperrors.NewValidationError("nome da base é obrigatório", nil)
	}
	if err := s.bases.Update(ctx, b); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableBases, "update", b.ID)
	return b, nil
}

func (s *ReferenceService) DeleteBase(ctx context.Context, actor domain.Profile, id string) error {
	if err := s.bases.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, actor, TableBases, "delete", id)
	return nil
}

func (s *ReferenceService) CreateEquipe(ctx context.Context, actor domain.Profile, nome string) (*domain.Equipe, error) {
	e := &domain.Equipe{Nome: strings.TrimSpace(nome)}
	if e.Nome == "" {
		return nil, apperrors.NewValidationError("nome da equipe é obrigatório", nil)
	}
	if err := s.equipes.Create(ctx, e); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableEquipes, "create", e.ID)
	return e, nil
}

func (s *ReferenceService) UpdateEquipe(ctx context.Context, actor domain.Profile, id, nome string) (*domain.Equipe, error) {
	e := &domain.Equipe{ID: id, Nome: strings.TrimSpace(nome)}
	if e.Nome == "" {
		return nil, apperrors.NewValidationError("nome da equipe é obrigatório", nil)
	}
	if err := s.equipes.Update(ctx, e); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableEquipes, "update", e.ID)
	return e, nil
}

func (s *ReferenceService) DeleteEquipe(ctx context.Context, actor domain.Profile, id string) error {
	if err := s.equipes.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, actor, TableEquipes, "delete", id)
	return nil
}

// ListColaboradores lists firefighters of a base, or of every base when
// baseID is empty.
func (s *ReferenceService) ListColaboradores(ctx context.Context, baseID string, somenteAtivos bool) ([]domain.Colaborador, error) {
	return s.colaboradores.List(ctx, repository.ColaboradorFilter{BaseID: baseID, SomenteAtivos: somenteAtivos})
}

func (s *ReferenceService) Colaborador(ctx context.Context, id string) (*domain.Colaborador, error) {
	return s.colaboradores.GetByID(ctx, id)
}

func (s *ReferenceService) CreateColaborador(ctx context.Context, actor domain.Profile, c domain.Colaborador) (*domain.Colaborador, error) {
	c.Nome = strings.TrimSpace(c.Nome)
	c.BaseID = strings.TrimSpace(c.BaseID)
	if c.Nome == "" || c.BaseID == "" {
		return nil, apperrors.NewValidationError("nome e base são obrigatórios", nil)
	}
	if !canManageRoster(actor, c.BaseID) {
		return nil, errRosterForbidden()
	}
	if err := s.colaboradores.Create(ctx, &c); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableColaboradores, "create", c.ID)
	return &c, nil
}

func (s *ReferenceService) UpdateColaborador(ctx context.Context, actor domain.Profile, c domain.Colaborador) (*domain.Colaborador, error) {
	c.Nome = strings.TrimSpace(c.Nome)
	c.BaseID = strings.TrimSpace(c.BaseID)
	if c.Nome == "" || c.BaseID == "" {
		return nil, apperrors.NewValidationError("nome e base são obrigatórios", nil)
	}
	current, err := s.colaboradores.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !canManageRoster(actor, current.BaseID) || !canManageRoster(actor, c.BaseID) {
		return nil, errRosterForbidden()
	}
	if err := s.colaboradores.Update(ctx, &c); err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableColaboradores, "update", c.ID)
	return &c, nil
}

func (s *ReferenceService) DeleteColaborador(ctx context.Context, actor domain.Profile, id string) error {
	current, err := s.colaboradores.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canManageRoster(actor, current.BaseID) {
		return errRosterForbidden()
	}
	if err := s.colaboradores.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, actor, TableColaboradores, "delete", id)
	return nil
}

// CreateColaboradoresBatch registers one active firefighter per name. Blank
// lines and repeated names are skipped.
func (s *ReferenceService) CreateColaboradoresBatch(ctx context.Context, actor domain.Profile, baseID string, nomes []string) ([]domain.Colaborador, error) {
	items := make([]domain.Colaborador, 0, len(nomes))
	for _, n := range nomes {
		items = append(items, domain.Colaborador{Nome: n, Ativo: true})
	}
	return s.createBatch(ctx, actor, baseID, items)
}

// colaboradorRecord is one line of a colaborador import file.
type colaboradorRecord struct {
	Nome  string `csv:"nome"`
	Ativo string `csv:"ativo,omitempty"`
}

// ImportColaboradoresCSV registers the firefighters listed in a CSV file with
// a "nome" column and an optional "ativo" column. The file is stored in one
// batch, so a bad row stores nothing.
func (s *ReferenceService) ImportColaboradoresCSV(ctx context.Context, actor domain.Profile, baseID string, data []byte) ([]domain.Colaborador, error) {
	var records []colaboradorRecord
	if err := gocsv.UnmarshalBytes(bytes.TrimPrefix(data, []byte("\ufeff")), &records); err != nil {
		return nil, apperrors.NewValidationError("arquivo CSV inválido", map[string]any{"reason": err.Error()})
	}
	items := make([]domain.Colaborador, 0, len(records))
	for _, r := range records {
		items = append(items, domain.Colaborador{Nome: r.Nome, Ativo: parseAtivo(r.Ativo)})
	}
	return s.createBatch(ctx, actor, baseID, items)
}

func (s *ReferenceService) createBatch(ctx context.Context, actor domain.Profile, baseID string, items []domain.Colaborador) ([]domain.Colaborador, error) {
	baseID = strings.TrimSpace(baseID)
	if baseID == "" {
		return nil, apperrors.NewValidationError("base é obrigatória", nil)
	}
	if !canManageRoster(actor, baseID) {
		return nil, errRosterForbidden()
	}
	if _, err := s.bases.GetByID(ctx, baseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("base não encontrada", map[string]any{"base_id": baseID})
		}
		return nil, err
	}

	seen := map[string]bool{}
	batch := make([]domain.Colaborador, 0, len(items))
	for _, c := range items {
		c.Nome = strings.Join(strings.Fields(c.Nome), " ")
		key := strings.ToLower(c.Nome)
		if c.Nome == "" || seen[key] {
			continue
		}
		seen[key] = true
		c.BaseID = baseID
		batch = append(batch, c)
	}
	if len(batch) == 0 {
		return nil, apperrors.NewValidationError("informe ao menos um nome", nil)
	}

	created, err := s.colaboradores.CreateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, actor, TableColaboradores, "batch", baseID)
	return created, nil
}

func errRosterForbidden() error {
	return apperrors.NewForbidden("sem permissão para alterar colaboradores desta base")
}

// canManageRoster reports whether actor may change the firefighters of
// baseID: geral anywhere, the SCI manager only in their own base.
func canManageRoster(actor domain.Profile, baseID string) bool {
	switch actor.Role {
	case domain.RoleGeral:
		return true
	case domain.RoleGerenteSCI:
		return actor.BaseIDValue() != "" && actor.BaseIDValue() == baseID
	}
	return false
}

func parseAtivo(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "1", "true", "sim", "s", "ativo":
		return true
	}
	return false
}

func (s *ReferenceService) changed(ctx context.Context, actor domain.Profile, table, op, subjectID string) {
	s.events.publish(ctx, events.EventReferenceChanged, subjectID, actor.ID, events.ReferencePayload{Table: table, Op: op})
}
