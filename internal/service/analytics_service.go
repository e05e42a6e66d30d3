package service

import (
	"context"

	"github.com/medmais/sistema-indicadores/internal/analytics"
	"github.com/medmais/sistema-indicadores/internal/daterange"
	"github.com/medmais/sistema-indicadores/internal/domain"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// AnalyticsService computes dashboard figures for one indicator type.
type AnalyticsService struct {
	lancamentos *LancamentoService
	reference   *ReferenceService
}

// AnalyticsQuery selects the submissions to aggregate.
type AnalyticsQuery struct {
	SchemaType  domain.SchemaType
	Filter      domain.LancamentoFilter
	Colaborador string
}

// AnalyticsResult is the payload of an analytics dashboard.
type AnalyticsResult struct {
	SchemaType domain.SchemaType      `json:"schema_type"`
	Indicador  string                 `json:"indicador"`
	Periodo    daterange.Range        `json:"periodo"`
	Contagem   analytics.CountSummary `json:"contagem"`
	Resumo     any                    `json:"resumo,omitempty"`
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(lancamentos *LancamentoService, reference *ReferenceService) *AnalyticsService {
	return &AnalyticsService{lancamentos: lancamentos, reference: reference}
}

// Summary aggregates the actor's submissions of q.SchemaType in the range.
// Types without a dedicated summary only get the counts.
func (s *AnalyticsService) Summary(ctx context.Context, actor domain.Profile, q AnalyticsQuery) (*AnalyticsResult, error) {
	if !q.SchemaType.Valid() {
		return nil, apperrors.NewValidationError("tipo de indicador desconhecido", map[string]any{"schema_type": string(q.SchemaType)})
	}
	ind, err := s.reference.IndicadorBySchemaType(ctx, q.SchemaType)
	if err != nil {
		return nil, err
	}

	filter := q.Filter
	filter.IndicadorID = ind.ID
	filter.Limit, filter.Offset = 0, 0
	items, rng, err := s.lancamentos.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	bases, err := s.reference.BaseNames(ctx)
	if err != nil {
		return nil, err
	}

	entries := analytics.Entries(items, []domain.IndicadorConfig{*ind})
	if q.Colaborador != "" {
		entries = analytics.FilterByColaborador(entries, q.Colaborador)
	}
	result := &AnalyticsResult{
		SchemaType: q.SchemaType,
		Indicador:  ind.Label(),
		Periodo:    rng,
		Contagem:   analytics.SummarizeCounts(entries, bases),
	}

	switch q.SchemaType {
	case domain.SchemaTAF:
		result.Resumo = analytics.SummarizeTAF(entries, q.Colaborador)
	case domain.SchemaProvaTeorica:
		result.Resumo = analytics.SummarizeProvaTeorica(entries, q.Colaborador)
	case domain.SchemaTempoTPEPR:
		equipes, err := s.reference.EquipeNames(ctx)
		if err != nil {
			return nil, err
		}
		result.Resumo = analytics.SummarizeTPEPR(entries, q.Colaborador, equipes)
	case domain.SchemaTempoResposta:
		result.Resumo = analytics.SummarizeTempoResposta(entries, q.Colaborador)
	case domain.SchemaControleEPI:
		result.Resumo = analytics.SummarizeEPI(entries, q.Colaborador)
	case domain.SchemaTreinamento:
		equipes, err := s.reference.EquipeNames(ctx)
		if err != nil {
			return nil, err
		}
		result.Resumo = analytics.SummarizeTreinamento(entries, q.Colaborador, equipes)
	case domain.SchemaInspecaoViaturas:
		result.Resumo = analytics.SummarizeInspecao(entries)
	case domain.SchemaEstoque:
		result.Resumo = analytics.SummarizeEstoque(entries, bases)
	case domain.SchemaOcorrenciaAero:
		result.Resumo = analytics.SummarizeOcorrenciaAero(entries)
	case domain.SchemaOcorrenciaNaoAero:
		result.Resumo = analytics.SummarizeOcorrenciaNaoAero(entries)
	}
	return result, nil
}
