package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// ComplianceService builds the adherence dashboard.
type ComplianceService struct {
	reference   *ReferenceService
	users       repository.UserRepository
	lancamentos repository.LancamentoRepository
	evaluator   *compliance.Evaluator
}

// ComplianceDependencies bundles what ComplianceService needs.
type ComplianceDependencies struct {
	Reference      *ReferenceService
	UserRepo       repository.UserRepository
	LancamentoRepo repository.LancamentoRepository
	Evaluator      *compliance.Evaluator
}

// NewComplianceService constructs the service.
func NewComplianceService(deps ComplianceDependencies) *ComplianceService {
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = compliance.NewEvaluator(nil, nil)
	}
	return &ComplianceService{
		reference:   deps.Reference,
		users:       deps.UserRepo,
		lancamentos: deps.LancamentoRepo,
		evaluator:   evaluator,
	}
}

// Report evaluates adherence for mes ("YYYY-MM", empty for the current
// month). Non-geral callers only see their own base.
func (s *ComplianceService) Report(ctx context.Context, actor domain.Profile, mes string) (*compliance.Report, error) {
	monthStart, err := s.evaluator.ParseMonth(mes)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"mes": mes})
	}
	monthEnd := monthStart.AddDate(0, 1, -1)
	today := s.evaluator.Today()
	windowStart := today.AddDate(0, 0, -compliance.InactivityWindowDays)

	var (
		snap       compliance.Snapshot
		inMonth    []domain.Lancamento
		inWindow   []domain.Lancamento
		baseFilter string
	)
	if actor.Role != domain.RoleGeral {
		baseFilter = actor.BaseIDValue()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bases, err := s.reference.Bases(gctx)
		if err != nil {
			return err
		}
		for _, b := range bases {
			if baseFilter == "" || b.ID == baseFilter {
				snap.Bases = append(snap.Bases, b)
			}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap.Indicadores, err = s.reference.Indicadores(gctx)
		return err
	})
	g.Go(func() error {
		filter := repository.ProfileFilter{}
		if baseFilter != "" {
			filter.BaseID = &baseFilter
		}
		var err error
		snap.Profiles, err = s.users.ListProfiles(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		inMonth, err = s.lancamentos.List(gctx, rangeFilter(monthStart, monthEnd, baseFilter))
		return err
	})
	g.Go(func() error {
		var err error
		inWindow, err = s.lancamentos.List(gctx, rangeFilter(windowStart, today, baseFilter))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Lancamentos = mergeLancamentos(inMonth, inWindow)
	report := s.evaluator.Evaluate(monthStart, snap)
	return &report, nil
}

func rangeFilter(start, end time.Time, baseID string) domain.LancamentoFilter {
	return domain.LancamentoFilter{
		DataInicio: start.Format(domain.DateLayout),
		DataFim:    end.Format(domain.DateLayout),
		BaseID:     baseID,
	}
}

func mergeLancamentos(groups ...[]domain.Lancamento) []domain.Lancamento {
	seen := map[string]bool{}
	var out []domain.Lancamento
	for _, g := range groups {
		for _, l := range g {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			out = append(out, l)
		}
	}
	return out
}
