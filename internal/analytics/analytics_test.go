package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

var testIndicadores = []domain.IndicadorConfig{
	{ID: "i-taf", SchemaType: domain.SchemaTAF},
	{ID: "i-prova", SchemaType: domain.SchemaProvaTeorica},
	{ID: "i-tp", SchemaType: domain.SchemaTempoTPEPR},
	{ID: "i-resp", SchemaType: domain.SchemaTempoResposta},
	{ID: "i-epi", SchemaType: domain.SchemaControleEPI},
	{ID: "i-trocas", SchemaType: domain.SchemaControleTrocas},
}

func l(id, ind, date, base, equipe, conteudo string) domain.Lancamento {
	return domain.Lancamento{
		ID: id, IndicadorID: ind, DataReferencia: date, BaseID: base, EquipeID: equipe,
		Conteudo: json.RawMessage(conteudo),
	}
}

func TestEntriesDropsUnknownIndicators(t *testing.T) {
	entries := Entries([]domain.Lancamento{
		l("1", "i-trocas", "2024-01-01", "b1", "e1", `{"qtd_trocas":1}`),
		l("2", "i-missing", "2024-01-01", "b1", "e1", `{}`),
	}, testIndicadores)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.SchemaControleTrocas, entries[0].SchemaType)
}

func TestGrouping(t *testing.T) {
	entries := Entries([]domain.Lancamento{
		l("1", "i-trocas", "2024-02-01", "b1", "e1", `{"qtd_trocas":1}`),
		l("2", "i-trocas", "2024-01-15", "b2", "e1", `{"qtd_trocas":1}`),
		l("3", "i-trocas", "2024-02-20", "b1", "e2", `{"qtd_trocas":1}`),
		l("4", "i-trocas", "not-a-date", "b1", "e2", `{"qtd_trocas":1}`),
	}, testIndicadores)

	months := GroupByMonth(entries)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-01", months[0].Key)
	assert.Len(t, months[1].Entries, 2)

	bases := GroupByBase(entries, map[string]string{"b1": "Goiânia"})
	require.Len(t, bases, 2)
	assert.Equal(t, "Goiânia", bases[0].Key)
	assert.Equal(t, "b2", bases[1].Key)

	equipes := GroupByEquipe(entries, nil)
	assert.Len(t, equipes, 2)

	counts := SummarizeCounts(entries, map[string]string{"b1": "Goiânia"})
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, 2, counts.PorMes["2024-02"])
	assert.Equal(t, 3, counts.PorBase["Goiânia"])
}

func TestFold(t *testing.T) {
	assert.Equal(t, "jose", Fold("  JOSÉ "))
	assert.Equal(t, "conceicao", Fold("Conceição"))
}

func TestFilterByColaborador(t *testing.T) {
	entries := Entries([]domain.Lancamento{
		l("1", "i-taf", "2024-01-01", "b1", "e1", `{"avaliados":[{"nome":"José Silva","idade":30,"tempo":"02:00"}]}`),
		l("2", "i-resp", "2024-01-01", "b1", "e1", `{"afericoes":[{"viatura":"CCI 01","motorista":"Maria Jose","local":"x","tempo":"01:00"}]}`),
		l("3", "i-epi", "2024-01-01", "b1", "e1", `{"colaboradores":[{"nome":"Pedro"}]}`),
		l("4", "i-trocas", "2024-01-01", "b1", "e1", `{"qtd_trocas":2}`),
	}, testIndicadores)

	got := FilterByColaborador(entries, "jose")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Lancamento.ID)
	assert.Equal(t, "2", got[1].Lancamento.ID)

	assert.Len(t, FilterByColaborador(entries, ""), 4)
	assert.Empty(t, FilterByColaborador(entries, "ninguém"))
}

func TestSummarizeTAF(t *testing.T) {
	entries := Entries([]domain.Lancamento{
		l("1", "i-taf", "2024-02-10", "b1", "e1", `{"avaliados":[
			{"nome":"Ana","idade":25,"tempo":"02:00","status":"Aprovado","nota":10},
			{"nome":"Beto","idade":45,"tempo":"04:10","status":"-"}
		]}`),
		l("2", "i-taf", "2024-01-10", "b1", "e1", `{"avaliados":[
			{"nome":"Caio","idade":35,"tempo":"02:30","nota":9}
		]}`),
	}, testIndicadores)

	s := SummarizeTAF(entries, "")
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Aprovados)
	assert.Equal(t, 1, s.Reprovados)
	assert.Equal(t, 66.7, s.TaxaAprovacao)
	assert.Equal(t, "02:00", s.MelhorTempo)
	assert.Equal(t, "02:53", s.TempoMedio)

	require.Len(t, s.EvolucaoMensal, 2)
	assert.Equal(t, "2024-01", s.EvolucaoMensal[0].Key)
	assert.Equal(t, "2024-02", s.EvolucaoMensal[1].Key)
	assert.Equal(t, "03:05", s.EvolucaoMensal[1].MediaFormatada)

	require.Len(t, s.PorFaixaEtaria, 3)
	assert.Equal(t, FaixaAte30, s.PorFaixaEtaria[0].Key)
	assert.Equal(t, FaixaAcima40, s.PorFaixaEtaria[2].Key)

	require.Len(t, s.DistribuicaoNota, 2)
	assert.Equal(t, 10, s.DistribuicaoNota[0].Nota)

	only := SummarizeTAF(entries, "ANA")
	assert.Equal(t, 1, only.Total)
	assert.Equal(t, 100.0, only.TaxaAprovacao)
}

func TestSummarizeOthers(t *testing.T) {
	entries := Entries([]domain.Lancamento{
		l("1", "i-prova", "2024-01-10", "b1", "e1", `{"avaliados":[{"nome":"A","nota":8},{"nome":"B","nota":7}]}`),
		l("2", "i-tp", "2024-01-10", "b1", "e1", `{"avaliados":[{"nome":"A","tempo":"00:50"},{"nome":"B","tempo":"01:10"}]}`),
		l("3", "i-resp", "2024-01-10", "b1", "e1", `{"afericoes":[
			{"viatura":"CCI 01","motorista":"A","local":"x","tempo":"02:00"},
			{"viatura":"CCI 01","motorista":"B","local":"x","tempo":"03:00"},
			{"viatura":"CCI 02","motorista":"C","local":"x","tempo":"01:00"}
		]}`),
		l("4", "i-epi", "2024-01-10", "b1", "e1", `{"colaboradores":[
			{"nome":"A","epi_entregue":1,"epi_previsto":2,"unif_entregue":1,"unif_previsto":1},
			{"nome":"B","epi_entregue":2,"epi_previsto":2,"unif_entregue":1,"unif_previsto":1}
		]}`),
	}, testIndicadores)

	prova := SummarizeProvaTeorica(entries, "")
	assert.Equal(t, 2, prova.Total)
	assert.Equal(t, 50.0, prova.TaxaAprovacao)
	assert.Equal(t, 7.5, prova.NotaMedia)

	tp := SummarizeTPEPR(entries, "", map[string]string{"e1": "Alfa"})
	assert.Equal(t, 1, tp.Aprovados)
	assert.Equal(t, "01:00", tp.TempoMedio)
	require.Len(t, tp.PorEquipe, 1)
	assert.Equal(t, "Alfa", tp.PorEquipe[0].Key)

	resp := SummarizeTempoResposta(entries, "")
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.PorViatura, 2)
	assert.Equal(t, ViaturaStat{Viatura: "CCI 01", Quantidade: 2, Media: "02:30", Minimo: "02:00", Maximo: "03:00"}, resp.PorViatura[0])

	epi := SummarizeEPI(entries, "")
	assert.Equal(t, 2, epi.Colaboradores)
	assert.Equal(t, 75.0, epi.MediaEPIPct)
	assert.Equal(t, 100.0, epi.MediaUnifPct)
	assert.Equal(t, 1, epi.Abaixo100EPI)
}
