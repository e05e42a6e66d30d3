package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/indicador"
	"github.com/medmais/sistema-indicadores/internal/observability"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// LancamentoService owns the submission write path and scoped reads.
type LancamentoService struct {
	lancamentos repository.LancamentoRepository
	indicadores repository.IndicadorRepository
	guard       *daterange.Guard
	metrics     *observability.Metrics
	clock       clockwork.Clock
	loc         *time.Location
	saveTimeout time.Duration
	logger      *zap.Logger
	events      publisher
}

// LancamentoDependencies bundles what LancamentoService needs.
type LancamentoDependencies struct {
	LancamentoRepo repository.LancamentoRepository
	IndicadorRepo  repository.IndicadorRepository
	Guard          *daterange.Guard
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Clock          clockwork.Clock
	Logger         *zap.Logger
}

// SaveLancamentoInput is a submission as sent by a form. An empty ID inserts.
type SaveLancamentoInput struct {
	ID             string
	DataReferencia string
	IndicadorID    string
	BaseID         string
	EquipeID       string
	Conteudo       json.RawMessage
}

// NewLancamentoService constructs the service.
func NewLancamentoService(cfg config.Config, deps LancamentoDependencies) *LancamentoService {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.App.Location()
	guard := deps.Guard
	if guard == nil {
		guard = daterange.NewGuard(clock, loc, cfg.Lancamento.MaxRangeMonths)
	}
	timeout := cfg.Lancamento.SaveTimeout
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &LancamentoService{
		lancamentos: deps.LancamentoRepo,
		indicadores: deps.IndicadorRepo,
		guard:       guard,
		metrics:     deps.Metrics,
		clock:       clock,
		loc:         loc,
		saveTimeout: timeout,
		logger:      logger,
		events:      newPublisher(deps.Dispatcher, clock, logger),
	}
}

// Save inserts or updates a submission under the save timeout. The editor of
// an existing submission becomes its user.
func (s *LancamentoService) Save(ctx context.Context, actor domain.Profile, in SaveLancamentoInput) (*domain.Lancamento, error) {
	l, err := withTimeout(ctx, s.clock, s.saveTimeout, func(ctx context.Context) (*domain.Lancamento, error) {
		return s.save(ctx, actor, in)
	})
	if errors.Is(err, errTimedOut) {
		s.metrics.RecordSaveTimeout()
		s.logger.Warn("lancamento save timed out",
			zap.String("user_id", actor.ID),
			zap.String("indicador_id", in.IndicadorID),
			zap.Duration("timeout", s.saveTimeout))
	}
	if err != nil {
		return nil, mapSaveError(err)
	}
	return l, nil
}

func (s *LancamentoService) save(ctx context.Context, actor domain.Profile, in SaveLancamentoInput) (*domain.Lancamento, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("Usuário não autenticado")
	}

	baseID := strings.TrimSpace(in.BaseID)
	if baseID == "" {
		baseID = actor.BaseIDValue()
	}
	equipeID := strings.TrimSpace(in.EquipeID)
	if equipeID == "" {
		equipeID = actor.EquipeIDValue()
	}
	if baseID == "" || equipeID == "" {
		return nil, apperrors.NewValidationError("Base e Equipe são obrigatórios", nil)
	}
	if !InScope(actor, baseID, equipeID) {
		return nil, apperrors.NewForbidden("sem permissão para lançar nesta base ou equipe")
	}

	day, err := NormalizeDate(in.DataReferencia, s.loc)
	if err != nil {
		return nil, err
	}

	ind, err := s.indicadores.GetByID(ctx, strings.TrimSpace(in.IndicadorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("indicador não encontrado", map[string]any{"indicador_id": in.IndicadorID})
		}
		return nil, err
	}
	_, conteudo, err := indicador.Prepare(ind.SchemaType, in.Conteudo)
	if err != nil {
		return nil, err
	}

	l := &domain.Lancamento{
		ID:             strings.TrimSpace(in.ID),
		DataReferencia: day,
		BaseID:         baseID,
		EquipeID:       equipeID,
		UserID:         actor.ID,
		IndicadorID:    ind.ID,
		Conteudo:       conteudo,
	}

	op := "insert"
	if l.ID != "" {
		op = "update"
		existing, err := s.lancamentos.GetByID(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		if !CanEdit(actor, *existing) || !CanEdit(actor, *l) {
			return nil, apperrors.NewForbidden("sem permissão para editar este lançamento")
		}
		if err := s.lancamentos.Update(ctx, l); err != nil {
			return nil, err
		}
	} else if err := s.lancamentos.Create(ctx, l); err != nil {
		return nil, err
	}

	s.metrics.RecordSave(string(ind.SchemaType), op)
	s.events.publish(ctx, events.EventLancamentoSaved, l.ID, actor.ID, events.LancamentoPayload{
		Op:             op,
		SchemaType:     ind.SchemaType,
		BaseID:         l.BaseID,
		EquipeID:       l.EquipeID,
		DataReferencia: l.DataReferencia,
	})
	return l, nil
}

// Get returns a submission the actor may see.
func (s *LancamentoService) Get(ctx context.Context, actor domain.Profile, id string) (*domain.Lancamento, error) {
	l, err := s.lancamentos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, *l) {
		return nil, apperrors.NewNotFound("lançamento", map[string]any{"id": id})
	}
	return l, nil
}

// Delete removes a submission the actor may edit.
func (s *LancamentoService) Delete(ctx context.Context, actor domain.Profile, id string) error {
	l, err := s.lancamentos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanEdit(actor, *l) {
		return apperrors.NewForbidden("sem permissão para excluir este lançamento")
	}
	if err := s.lancamentos.Delete(ctx, id); err != nil {
		return err
	}
	s.events.publish(ctx, events.EventLancamentoDeleted, id, actor.ID, events.LancamentoPayload{
		Op:             "delete",
		BaseID:         l.BaseID,
		EquipeID:       l.EquipeID,
		DataReferencia: l.DataReferencia,
	})
	return nil
}

// List returns submissions within a bounded range, scoped to the actor's
// base unless the actor is geral. Without dates the current month is used.
func (s *LancamentoService) List(ctx context.Context, actor domain.Profile, filter domain.LancamentoFilter) ([]domain.Lancamento, daterange.Range, error) {
	rng := s.guard.Enforce(filter.DataInicio, filter.DataFim)
	filter.DataInicio, filter.DataFim = rng.Start, rng.End
	if actor.Role != domain.RoleGeral {
		filter.BaseID = actor.BaseIDValue()
		if filter.BaseID == "" {
			return nil, rng, nil
		}
	}
	items, err := s.lancamentos.List(ctx, filter)
	return items, rng, err
}

// CanEdit reports whether actor may change or delete l: geral edits anything,
// the SCI manager edits within their base, a team lead within their team and
// an auxiliar only their own submissions.
func CanEdit(actor domain.Profile, l domain.Lancamento) bool {
	switch actor.Role {
	case domain.RoleGeral:
		return true
	case domain.RoleGerenteSCI:
		return actor.BaseIDValue() != "" && actor.BaseIDValue() == l.BaseID
	case domain.RoleChefe:
		return actor.EquipeIDValue() != "" && actor.EquipeIDValue() == l.EquipeID
	case domain.RoleAuxiliar:
		return actor.ID != "" && actor.ID == l.UserID
	}
	return false
}

// InScope reports whether actor may tag a submission with baseID and
// equipeID. The SCI manager is held to their base; team leads and auxiliaries
// to their base and team.
func InScope(actor domain.Profile, baseID, equipeID string) bool {
	switch actor.Role {
	case domain.RoleGeral:
		return true
	case domain.RoleGerenteSCI:
		return actor.BaseIDValue() != "" && actor.BaseIDValue() == baseID
	case domain.RoleChefe, domain.RoleAuxiliar:
		return actor.BaseIDValue() != "" && actor.BaseIDValue() == baseID &&
			actor.EquipeIDValue() != "" && actor.EquipeIDValue() == equipeID
	}
	return false
}

// CanView reports whether actor may read l.
func CanView(actor domain.Profile, l domain.Lancamento) bool {
	if actor.Role == domain.RoleGeral {
		return true
	}
	return actor.BaseIDValue() != "" && actor.BaseIDValue() == l.BaseID
}

var (
	isoDay   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	brazDate = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// NormalizeDate turns a form date into YYYY-MM-DD. It accepts YYYY-MM-DD,
// ISO timestamps (the date part before "T" is kept without zone shifting)
// and DD/MM/YYYY.
func NormalizeDate(raw string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", apperrors.NewValidationError("data_referencia é obrigatória", nil)
	}
	if i := strings.IndexByte(v, 'T'); i > 0 {
		v = v[:i]
	}
	var (
		t   time.Time
		err error
	)
	switch {
	case isoDay.MatchString(v):
		t, err = time.ParseInLocation(domain.DateLayout, v, loc)
	case brazDate.MatchString(v):
		t, err = time.ParseInLocation("2/1/2006", v, loc)
	default:
		err = errors.New("unsupported layout")
	}
	if err != nil {
		return "", apperrors.NewValidationError("data_referencia inválida", map[string]any{"data_referencia": raw})
	}
	return t.Format(domain.DateLayout), nil
}
