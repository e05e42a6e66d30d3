package service

import (
	"context"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/medmais/sistema-indicadores/internal/config"
	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/export"
	"github.com/medmais/sistema-indicadores/internal/observability"
	"github.com/medmais/sistema-indicadores/internal/repository"
)

// ExportService renders submission listings as CSV.
type ExportService struct {
	lancamentos *LancamentoService
	reference   *ReferenceService
	users       repository.UserRepository
	metrics     *observability.Metrics
	clock       clockwork.Clock
	loc         *time.Location
	prefix      string
}

// ExportDependencies bundles what ExportService needs.
type ExportDependencies struct {
	Lancamentos *LancamentoService
	Reference   *ReferenceService
	UserRepo    repository.UserRepository
	Metrics     *observability.Metrics
	Clock       clockwork.Clock
}

// ExportResult describes a written export.
type ExportResult struct {
	Filename string
	Rows     int
	Range    daterange.Range
}

// NewExportService constructs the service.
func NewExportService(cfg config.Config, deps ExportDependencies) *ExportService {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ExportService{
		lancamentos: deps.Lancamentos,
		reference:   deps.Reference,
		users:       deps.UserRepo,
		metrics:     deps.Metrics,
		clock:       clock,
		loc:         cfg.App.Location(),
		prefix:      cfg.Export.FilenamePrefix,
	}
}

// Filename returns the name an export produced now would carry.
func (s *ExportService) Filename() string {
	return export.Filename(s.prefix, s.clock.Now().In(s.loc))
}

// Export writes the actor's submissions matching filter to w. Pagination in
// filter is ignored so the file covers the whole range.
func (s *ExportService) Export(ctx context.Context, actor domain.Profile, filter domain.LancamentoFilter, w io.Writer) (*ExportResult, error) {
	filter.Limit, filter.Offset = 0, 0
	items, rng, err := s.lancamentos.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	var (
		bases       map[string]string
		equipes     map[string]string
		usuarios    map[string]string
		indicadores map[string]domain.IndicadorConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bases, err = s.reference.BaseNames(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		equipes, err = s.reference.EquipeNames(gctx)
		return err
	})
	g.Go(func() error {
		all, err := s.reference.Indicadores(gctx)
		if err != nil {
			return err
		}
		indicadores = make(map[string]domain.IndicadorConfig, len(all))
		for _, ind := range all {
			indicadores[ind.ID] = ind
		}
		return nil
	})
	g.Go(func() error {
		profiles, err := s.users.ListProfiles(gctx, repository.ProfileFilter{})
		if err != nil {
			return err
		}
		usuarios = make(map[string]string, len(profiles))
		for _, p := range profiles {
			usuarios[p.ID] = p.Nome
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []export.Row
	for _, l := range items {
		ind, ok := indicadores[l.IndicadorID]
		if !ok {
			ind = domain.IndicadorConfig{ID: l.IndicadorID}
		}
		rows = append(rows, export.FlattenLancamento(export.Source{
			Lancamento: l,
			Indicador:  ind,
			Usuario:    usuarios[l.UserID],
			Base:       bases[l.BaseID],
			Equipe:     equipes[l.EquipeID],
			Location:   s.loc,
		})...)
	}

	n, err := export.WriteCSV(w, rows)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordExportRows(n)
	return &ExportResult{Filename: s.Filename(), Rows: n, Range: rng}, nil
}
