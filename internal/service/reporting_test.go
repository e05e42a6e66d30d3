package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/analytics"
	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/export"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

const tafConteudo = `{"avaliados":[
	{"nome":"Ana Lúcia","idade":35,"tempo":"02:10"},
	{"nome":"Bruno","idade":45,"tempo":"04:30"}
]}`

func (e *env) submitTAF(t *testing.T, actor domain.Profile, date string) *domain.Lancamento {
	t.Helper()
	l, err := e.lancamentos.Save(context.Background(), actor, SaveLancamentoInput{
		DataReferencia: date,
		IndicadorID:    e.indicadores[domain.SchemaTAF].ID,
		Conteudo:       json.RawMessage(tafConteudo),
	})
	require.NoError(t, err)
	return l
}

func newComplianceService(e *env) *ComplianceService {
	return NewComplianceService(ComplianceDependencies{
		Reference:      e.reference,
		UserRepo:       e.store.Users(),
		LancamentoRepo: e.store.Lancamentos(),
		Evaluator:      compliance.NewEvaluator(e.clock, nil),
	})
}

func TestComplianceReport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.submit(t, e.chefeAlfa, "2024-06-14")
	svc := newComplianceService(e)

	report, err := svc.Report(ctx, e.geral, "2024-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-06", report.Mes)
	assert.Equal(t, "2024-06-15", report.Hoje)
	require.Len(t, report.Bases, 2)
	goiania := report.Bases[1]
	assert.Equal(t, "Goiânia", goiania.BaseNome)
	assert.Equal(t, 1, goiania.GrupoC.Entregues)
	assert.Equal(t, 9, goiania.GrupoC.Total)
	assert.Equal(t, compliance.MonthlyPending, goiania.GrupoC.Status)
	assert.NotContains(t, goiania.GrupoC.Faltantes, "Controle de Trocas")

	var inativos []string
	for _, u := range report.UsuariosInativos {
		inativos = append(inativos, u.Nome)
	}
	assert.Equal(t, []string{"Chefe Bravo", "Gerente"}, inativos)

	scoped, err := svc.Report(ctx, e.chefeBravo, "2024-05")
	require.NoError(t, err)
	require.Len(t, scoped.Bases, 1)
	assert.Equal(t, e.baseA.ID, scoped.Bases[0].BaseID)
	assert.Equal(t, 0, scoped.Bases[0].GrupoC.Entregues)
	assert.Equal(t, compliance.MonthlyNonCompliant, scoped.Bases[0].GrupoC.Status)

	_, err = svc.Report(ctx, e.geral, "2024/05")
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestExportWritesFlattenedRows(t *testing.T) {
	e := newEnv(t)
	e.submitTAF(t, e.chefeAlfa, "2024-06-14")
	e.submit(t, e.chefeAlfa, "2024-06-13")
	svc := NewExportService(e.cfg, ExportDependencies{
		Lancamentos: e.lancamentos,
		Reference:   e.reference,
		UserRepo:    e.store.Users(),
		Metrics:     e.metrics,
		Clock:       e.clock,
	})

	var buf bytes.Buffer
	res, err := svc.Export(context.Background(), e.geral, domain.LancamentoFilter{DataInicio: "2024-06-01", DataFim: "2024-06-15", Limit: 1}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "relatorio_15062024.csv", res.Filename)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3.0, testutil.ToFloat64(e.metrics.CSVRowsExported))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, export.BOM))
	lines := strings.Split(strings.TrimPrefix(out, export.BOM), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "indicador_tipo")
	assert.Contains(t, out, "Chefe Alfa")
	assert.Contains(t, out, "Goiânia")
	assert.Contains(t, out, `"02:10"`)
}

func TestAnalyticsSummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.submitTAF(t, e.chefeAlfa, "2024-06-14")
	e.submit(t, e.chefeAlfa, "2024-06-14")
	svc := NewAnalyticsService(e.lancamentos, e.reference)

	res, err := svc.Summary(ctx, e.geral, AnalyticsQuery{SchemaType: domain.SchemaTAF})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Contagem.Total)
	taf, ok := res.Resumo.(analytics.TAFSummary)
	require.True(t, ok)
	assert.Equal(t, 2, taf.Total)
	assert.Equal(t, 1, taf.Aprovados)

	res, err = svc.Summary(ctx, e.geral, AnalyticsQuery{SchemaType: domain.SchemaTAF, Colaborador: "ana lucia"})
	require.NoError(t, err)
	taf = res.Resumo.(analytics.TAFSummary)
	assert.Equal(t, 1, taf.Total)
	assert.Equal(t, 1, taf.Aprovados)

	res, err = svc.Summary(ctx, e.geral, AnalyticsQuery{SchemaType: domain.SchemaControleTrocas})
	require.NoError(t, err)
	assert.Nil(t, res.Resumo)
	assert.Equal(t, 1, res.Contagem.PorBase["Goiânia"])

	_, err = svc.Summary(ctx, e.geral, AnalyticsQuery{SchemaType: "desconhecido"})
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestAnalyticsOperationalSummaries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewAnalyticsService(e.lancamentos, e.reference)

	tests := []struct {
		schema   domain.SchemaType
		conteudo string
		check    func(t *testing.T, resumo any)
	}{
		{
			schema:   domain.SchemaTreinamento,
			conteudo: `{"participantes":[{"nome":"Ana Lúcia","horas":"17:00"},{"nome":"Bruno","horas":"03:00"}]}`,
			check: func(t *testing.T, resumo any) {
				s, ok := resumo.(analytics.TreinamentoSummary)
				require.True(t, ok)
				assert.Equal(t, 2, s.Efetivo)
				assert.Equal(t, 1, s.Conformes)
				assert.Len(t, s.MediaPorEquipe, 1)
			},
		},
		{
			schema:   domain.SchemaInspecaoViaturas,
			conteudo: `{"inspecoes":[{"viatura":"CCI 01","qtd_inspecoes":4,"qtd_nao_conforme":1}]}`,
			check: func(t *testing.T, resumo any) {
				s, ok := resumo.(analytics.InspecaoSummary)
				require.True(t, ok)
				assert.Equal(t, 75.0, s.TaxaConformidade)
			},
		},
		{
			schema:   domain.SchemaEstoque,
			conteudo: `{"po_quimico_atual":50,"po_quimico_exigido":100,"lge_atual":10,"lge_exigido":10,"nitrogenio_atual":2,"nitrogenio_exigido":2}`,
			check: func(t *testing.T, resumo any) {
				s, ok := resumo.(analytics.EstoqueSummary)
				require.True(t, ok)
				assert.Equal(t, 50.0, s.Materiais[0].Cobertura)
				require.Len(t, s.Alertas, 1)
				assert.Equal(t, "Goiânia", s.Alertas[0].Base)
			},
		},
		{
			schema:   domain.SchemaOcorrenciaAero,
			conteudo: `{"acao":"Posicionamento","local":"Pista","tempo_chegada_1_cci":"02:10"}`,
			check: func(t *testing.T, resumo any) {
				s, ok := resumo.(analytics.OcorrenciaAeroSummary)
				require.True(t, ok)
				assert.Equal(t, "02:10", s.TempoMedio1CCI)
			},
		},
		{
			schema:   domain.SchemaOcorrenciaNaoAero,
			conteudo: `{"tipo_ocorrencia":"Resgate","local":"Pátio","hora_acionamento":"10:00","hora_chegada":"10:04","hora_termino":"10:40"}`,
			check: func(t *testing.T, resumo any) {
				s, ok := resumo.(analytics.OcorrenciaNaoAeroSummary)
				require.True(t, ok)
				assert.Equal(t, "00:40", s.DuracaoTotal)
				assert.Equal(t, "00:04", s.TempoRespostaMedio)
			},
		},
	}

	for _, tc := range tests {
		t.Run(string(tc.schema), func(t *testing.T) {
			_, err := e.lancamentos.Save(ctx, e.chefeAlfa, SaveLancamentoInput{
				DataReferencia: "2024-06-14",
				IndicadorID:    e.indicadores[tc.schema].ID,
				Conteudo:       json.RawMessage(tc.conteudo),
			})
			require.NoError(t, err)

			res, err := svc.Summary(ctx, e.geral, AnalyticsQuery{SchemaType: tc.schema})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Contagem.Total)
			tc.check(t, res.Resumo)
		})
	}
}

func TestAuthLoginAndPasswordChange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewAuthService(e.cfg, AuthDependencies{UserRepo: e.store.Users()})

	session, err := svc.Login(ctx, "ALFA@example.com", "senha123")
	require.NoError(t, err)
	assert.Equal(t, e.chefeAlfa.ID, session.Profile.ID)
	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, e.chefeAlfa.ID, claims.Subject)
	assert.Equal(t, domain.RoleChefe, claims.Role)

	for _, bad := range [][2]string{{"alfa@example.com", "errada"}, {"ninguem@example.com", "senha123"}} {
		_, err := svc.Login(ctx, bad[0], bad[1])
		de := errorutil.ToDomainError(err)
		assert.Equal(t, errorutil.CodeUnauthorized, de.Code)
		assert.Equal(t, "invalid credentials", de.Message)
	}

	err = svc.ChangePassword(ctx, e.chefeAlfa.ID, "errada", "novasenha")
	assert.Equal(t, errorutil.CodeUnauthorized, errorutil.ToDomainError(err).Code)
	err = svc.ChangePassword(ctx, e.chefeAlfa.ID, "senha123", "curta")
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
	require.NoError(t, svc.ChangePassword(ctx, e.chefeAlfa.ID, "senha123", "novasenha"))

	_, err = svc.Login(ctx, "alfa@example.com", "novasenha")
	require.NoError(t, err)

	profile, email, err := svc.Me(ctx, e.chefeAlfa.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chefe Alfa", profile.Nome)
	assert.Equal(t, "alfa@example.com", email)
}

func TestFeedbackVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewFeedbackService(FeedbackDependencies{FeedbackRepo: e.store.Feedbacks(), Dispatcher: e.dispatcher, Clock: e.clock})

	_, err := svc.Create(ctx, e.chefeAlfa, "elogio", "ok")
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
	f, err := svc.Create(ctx, e.chefeAlfa, domain.FeedbackBug, "  botão não salva  ")
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackPendente, f.Status)
	assert.Equal(t, "botão não salva", f.Mensagem)

	mine, err := svc.List(ctx, e.chefeBravo, "")
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := svc.List(ctx, e.geral, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	bogus := domain.FeedbackStatus("arquivado")
	_, err = svc.Update(ctx, f.ID, FeedbackUpdate{Status: &bogus})
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)

	resolvido := domain.FeedbackResolvido
	updated, err := svc.Update(ctx, f.ID, FeedbackUpdate{Status: &resolvido, RespostaSuporte: strPtr(" corrigido ")})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackResolvido, updated.Status)
	require.NotNil(t, updated.RespostaSuporte)
	assert.Equal(t, "corrigido", *updated.RespostaSuporte)

	pendentes, err := svc.List(ctx, e.geral, domain.FeedbackPendente)
	require.NoError(t, err)
	assert.Empty(t, pendentes)
}
