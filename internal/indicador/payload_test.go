package indicador

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medmais/sistema-indicadores/internal/classify"
	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

func TestEverySchemaTypeHasPayloadAndRule(t *testing.T) {
	for _, st := range domain.AllSchemaTypes() {
		p, err := New(st)
		require.NoErrorf(t, err, "schema %s", st)
		assert.Equal(t, st, p.SchemaType())

		_, ok := compliance.RuleFor(st)
		assert.Truef(t, ok, "schema %s has no compliance rule", st)
	}
}

func TestDecodeUnknownSchemaType(t *testing.T) {
	_, err := Decode("desconhecido", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestDecodeRejectsEmptyContent(t *testing.T) {
	_, err := Decode(domain.SchemaTAF, nil)
	require.Error(t, err)
	_, err = Decode(domain.SchemaTAF, json.RawMessage(`null`))
	require.Error(t, err)
}

func TestPrepareTAFClassifiesServerSide(t *testing.T) {
	raw := json.RawMessage(`{"avaliados":[
		{"nome":"Ana","idade":39,"tempo":"02:00","status":"Reprovado"},
		{"nome":"Beto","idade":40,"tempo":"04:01","nota":10}
	]}`)
	p, stored, err := Prepare(domain.SchemaTAF, raw)
	require.NoError(t, err)

	taf := p.(*TAF)
	assert.Equal(t, classify.StatusAprovado, taf.Avaliados[0].Status)
	require.NotNil(t, taf.Avaliados[0].Nota)
	assert.Equal(t, 10, *taf.Avaliados[0].Nota)
	assert.Equal(t, classify.StatusReprovado, taf.Avaliados[1].Status)
	assert.Nil(t, taf.Avaliados[1].Nota)

	var back TAF
	require.NoError(t, json.Unmarshal(stored, &back))
	assert.Equal(t, taf.Avaliados, back.Avaliados)
}

func TestValidateRejectsIncompleteForms(t *testing.T) {
	cases := []struct {
		name   string
		schema domain.SchemaType
		raw    string
	}{
		{"taf without avaliados", domain.SchemaTAF, `{"avaliados":[]}`},
		{"taf time above limit", domain.SchemaTAF, `{"avaliados":[{"nome":"A","idade":30,"tempo":"05:10"}]}`},
		{"prova nota above 10", domain.SchemaProvaTeorica, `{"avaliados":[{"nome":"A","nota":11}]}`},
		{"prova missing nota", domain.SchemaProvaTeorica, `{"avaliados":[{"nome":"A"}]}`},
		{"tp epr missing name", domain.SchemaTempoTPEPR, `{"avaliados":[{"nome":"","tempo":"00:40"}]}`},
		{"resposta unknown viatura", domain.SchemaTempoResposta, `{"afericoes":[{"viatura":"X","motorista":"M","local":"L","tempo":"01:00"}]}`},
		{"atividade zero bombeiros", domain.SchemaAtividadesAcessorias, `{"tipo_atividade":"Inspeção de pista","qtd_equipamentos":1,"qtd_bombeiros":0,"tempo_gasto":"01:00"}`},
		{"inspecao negative", domain.SchemaInspecaoViaturas, `{"inspecoes":[{"viatura":"CCI 01","qtd_inspecoes":-1}]}`},
		{"epi previsto zero", domain.SchemaControleEPI, `{"colaboradores":[{"nome":"A","epi_entregue":1,"epi_previsto":0,"unif_entregue":1,"unif_previsto":1}]}`},
		{"estoque negative", domain.SchemaEstoque, `{"lge_atual":-2}`},
		{"verificacao conformes above verificados", domain.SchemaVerificacaoTP, `{"qtd_conformes":5,"qtd_verificados":3}`},
		{"ocorrencia aero bad acao", domain.SchemaOcorrenciaAero, `{"acao":"Nada","local":"Pista"}`},
		{"ocorrencia nao aero bad hour", domain.SchemaOcorrenciaNaoAero, `{"tipo_ocorrencia":"Incêndio","local":"Pátio","hora_acionamento":"25:00"}`},
		{"treinamento bad horas", domain.SchemaTreinamento, `{"participantes":[{"nome":"A","horas":"x"}]}`},
		{"trocas negative", domain.SchemaControleTrocas, `{"qtd_trocas":-1}`},
		{"higienizacao negative", domain.SchemaHigienizacaoTP, `{"qtd_total_sci":-1}`},
		{"wrong field type", domain.SchemaControleTrocas, `{"qtd_trocas":"muitas"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Prepare(tc.schema, json.RawMessage(tc.raw))
			require.Error(t, err)
			assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
		})
	}
}

func TestPrepareAcceptsValidForms(t *testing.T) {
	cases := map[domain.SchemaType]string{
		domain.SchemaOcorrenciaAero:       `{"acao":"Intervenção","local":"Cabeceira 07","tempo_chegada_1_cci":"02:10"}`,
		domain.SchemaOcorrenciaNaoAero:    `{"tipo_ocorrencia":"Incêndio em vegetação","local":"Pátio","hora_acionamento":"10:00","hora_termino":"11:15"}`,
		domain.SchemaAtividadesAcessorias: `{"tipo_atividade":"Ronda TPS","qtd_equipamentos":0,"qtd_bombeiros":2,"tempo_gasto":"00:45"}`,
		domain.SchemaProvaTeorica:         `{"avaliados":[{"nome":"A","nota":8}]}`,
		domain.SchemaTreinamento:          `{"participantes":[{"nome":"A","horas":"02:00"}]}`,
		domain.SchemaTempoTPEPR:           `{"avaliados":[{"nome":"A","tempo":"00:59"}]}`,
		domain.SchemaTempoResposta:        `{"afericoes":[{"viatura":"CCI 01","motorista":"M","local":"Cabeceira","tempo":"02:30"}]}`,
		domain.SchemaInspecaoViaturas:     `{"inspecoes":[{"viatura":"CCI 02","qtd_inspecoes":4,"qtd_nao_conforme":1}]}`,
		domain.SchemaEstoque:              `{"po_quimico_atual":100.5,"po_quimico_exigido":90}`,
		domain.SchemaControleEPI:          `{"colaboradores":[{"nome":"A","epi_entregue":2,"epi_previsto":3,"unif_entregue":1,"unif_previsto":1}]}`,
		domain.SchemaControleTrocas:       `{"qtd_trocas":3}`,
		domain.SchemaVerificacaoTP:        `{"qtd_conformes":3,"qtd_verificados":3,"qtd_total_equipe":5}`,
		domain.SchemaHigienizacaoTP:       `{"qtd_higienizados_mes":2,"qtd_total_sci":10}`,
	}
	for st, raw := range cases {
		t.Run(string(st), func(t *testing.T) {
			_, _, err := Prepare(st, json.RawMessage(raw))
			assert.NoError(t, err)
		})
	}
}

func TestClassifyDerivedFields(t *testing.T) {
	epi := &ControleEPI{Colaboradores: []ColaboradorEPI{{Nome: "A", EPIEntregue: 2, EPIPrevisto: 3, UnifEntregue: 1, UnifPrevisto: 1, TotalEPIPct: 999}}}
	epi.Classify()
	assert.Equal(t, 67, epi.Colaboradores[0].TotalEPIPct)
	assert.Equal(t, 100, epi.Colaboradores[0].TotalUnifPct)

	oc := &OcorrenciaNaoAero{HoraAcionamento: "23:30", HoraTermino: "00:45"}
	oc.Classify()
	assert.Equal(t, "01:15", oc.DuracaoTotal)

	tp := &TempoTPEPR{Avaliados: []TPEPRAvaliado{{Nome: "A", Tempo: "01:00"}}}
	tp.Classify()
	assert.Equal(t, classify.StatusReprovado, tp.Avaliados[0].Status)
}

func TestDecodeLenientFallsBackToGeneric(t *testing.T) {
	p := DecodeLenient(domain.SchemaControleTrocas, json.RawMessage(`{"qtd_trocas":"muitas"}`))
	g, ok := p.(*Generic)
	require.True(t, ok)
	assert.Equal(t, "muitas", g.Fields["qtd_trocas"])

	p = DecodeLenient("legado", json.RawMessage(`{"a":1}`))
	assert.Equal(t, domain.SchemaType("legado"), p.SchemaType())
}

func TestFlattenListPayload(t *testing.T) {
	nota := 9
	taf := &TAF{
		Common:    Common{Observacoes: "chuva"},
		Avaliados: []TAFAvaliado{{Nome: "Ana", Idade: 30, Tempo: "02:10", Status: classify.StatusAprovado, Nota: &nota}},
	}
	got := Flatten(taf)
	want := Flat{
		ListKey: KeyAvaliados,
		Items:   []map[string]string{{"nome": "Ana", "idade": "30", "tempo": "02:10", "status": "Aprovado", "nota": "9"}},
		Fields:  map[string]string{"observacoes": "chuva"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenScalarPayload(t *testing.T) {
	got := Flatten(&Estoque{PoQuimicoAtual: 10.5, LGEExigido: 3})
	assert.Empty(t, got.ListKey)
	assert.Equal(t, "10.5", got.Fields["po_quimico_atual"])
	assert.Equal(t, "3", got.Fields["lge_exigido"])
	assert.NotContains(t, got.Fields, "observacoes")
}

func TestFlattenGeneric(t *testing.T) {
	g := NewGeneric("legado", json.RawMessage(`{"colaboradores":[{"nome":"A","extra":{"x":1}}],"turno":"B","ok":true}`))
	got := Flatten(g)
	assert.Equal(t, KeyColaboradores, got.ListKey)
	require.Len(t, got.Items, 1)
	assert.Equal(t, `{"x":1}`, got.Items[0]["extra"])
	assert.Equal(t, "B", got.Fields["turno"])
	assert.Equal(t, "true", got.Fields["ok"])
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"M1", "M2"}, Names(&TempoResposta{Afericoes: []Afericao{{Motorista: "M1"}, {Motorista: "M2"}}}))
	assert.Nil(t, Names(&Estoque{}))

	g := NewGeneric("legado", json.RawMessage(`{"afericoes":[{"motorista":"Zé"}],"avaliados":[{"nome":"Ana"}]}`))
	assert.ElementsMatch(t, []string{"Zé", "Ana"}, Names(g))
}
