package indicador

import (
	"slices"

	"github.com/medmais/sistema-indicadores/internal/classify"
	"github.com/medmais/sistema-indicadores/internal/domain"
)

// MaxTempoMinutes bounds every mm:ss measurement typed into a form.
const MaxTempoMinutes = 4

// TiposAtividade are the accepted accessory activity kinds.
var TiposAtividade = []string{
	"Inspeção de extintores e mangueiras",
	"Inspeção de pista",
	"Inspeção de fauna",
	"Derramamento de combustível",
	"Acompanhamento de serviços",
	"Inspeção em área de cessionários",
	"Ronda TPS",
}

// Viaturas are the vehicles measured in response time drills.
var Viaturas = []string{
	"CCI 01", "CCI 02", "CCI 03", "CCI 04", "CCI 05", "CCI 06",
	"CRS 01", "CRS 02", "CRS 03",
	"CCI RT 01", "CCI RT 02", "CCI RT 03",
	"CA 01", "CA 02",
}

// AcoesOcorrenciaAero are the crew responses to an aeronautical occurrence.
var AcoesOcorrenciaAero = []string{"Posicionamento", "Intervenção"}

type OcorrenciaAero struct {
	Common
	TipoOcorrencia     string `json:"tipo_ocorrencia,omitempty"`
	Acao               string `json:"acao"`
	Local              string `json:"local"`
	HoraAcionamento    string `json:"hora_acionamento,omitempty"`
	TempoChegada1CCI   string `json:"tempo_chegada_1_cci,omitempty"`
	TempoChegadaUltCCI string `json:"tempo_chegada_ult_cci,omitempty"`
	TerminoOcorrencia  string `json:"termino_ocorrencia,omitempty"`
}

func (*OcorrenciaAero) SchemaType() domain.SchemaType { return domain.SchemaOcorrenciaAero }
func (*OcorrenciaAero) Classify()                     {}

func (p *OcorrenciaAero) Validate() error {
	var errs problems
	if !slices.Contains(AcoesOcorrenciaAero, p.Acao) {
		errs.addf("ação deve ser Posicionamento ou Intervenção")
	}
	if blank(p.Local) {
		errs.addf("local é obrigatório")
	}
	for _, f := range []struct{ name, v string }{
		{"tempo_chegada_1_cci", p.TempoChegada1CCI},
		{"tempo_chegada_ult_cci", p.TempoChegadaUltCCI},
	} {
		if f.v != "" && !classify.ValidMMSS(f.v, 59) {
			errs.addf("%s em formato inválido (mm:ss)", f.name)
		}
	}
	for _, f := range []struct{ name, v string }{
		{"hora_acionamento", p.HoraAcionamento},
		{"termino_ocorrencia", p.TerminoOcorrencia},
	} {
		if f.v != "" && !classify.ValidHHMM(f.v) {
			errs.addf("%s em formato inválido (HH:mm)", f.name)
		}
	}
	return errs.err(p.SchemaType())
}

type OcorrenciaNaoAero struct {
	Common
	TipoOcorrencia  string `json:"tipo_ocorrencia"`
	Local           string `json:"local"`
	HoraAcionamento string `json:"hora_acionamento,omitempty"`
	HoraChegada     string `json:"hora_chegada,omitempty"`
	HoraTermino     string `json:"hora_termino,omitempty"`
	DuracaoTotal    string `json:"duracao_total,omitempty"`
}

func (*OcorrenciaNaoAero) SchemaType() domain.SchemaType { return domain.SchemaOcorrenciaNaoAero }

// Classify derives the total duration from the call and end times when missing.
func (p *OcorrenciaNaoAero) Classify() {
	if p.DuracaoTotal != "" {
		return
	}
	start, ok1 := classify.TimeToMinutes(p.HoraAcionamento)
	end, ok2 := classify.TimeToMinutes(p.HoraTermino)
	if !ok1 || !ok2 {
		return
	}
	if end < start {
		end += 24 * 60
	}
	p.DuracaoTotal = classify.MinutesToTime(end - start)
}

func (p *OcorrenciaNaoAero) Validate() error {
	var errs problems
	if blank(p.TipoOcorrencia) {
		errs.addf("tipo de ocorrência é obrigatório")
	}
	if blank(p.Local) {
		errs.addf("local é obrigatório")
	}
	for _, f := range []struct{ name, v string }{
		{"hora_acionamento", p.HoraAcionamento},
		{"hora_chegada", p.HoraChegada},
		{"hora_termino", p.HoraTermino},
	} {
		if f.v != "" && !classify.ValidHHMM(f.v) {
			errs.addf("%s em formato inválido (HH:mm)", f.name)
		}
	}
	return errs.err(p.SchemaType())
}

type AtividadesAcessorias struct {
	Common
	TipoAtividade   string `json:"tipo_atividade"`
	QtdEquipamentos int    `json:"qtd_equipamentos"`
	QtdBombeiros    int    `json:"qtd_bombeiros"`
	TempoGasto      string `json:"tempo_gasto"`
}

func (*AtividadesAcessorias) SchemaType() domain.SchemaType { return domain.SchemaAtividadesAcessorias }
func (*AtividadesAcessorias) Classify()                     {}

func (p *AtividadesAcessorias) Validate() error {
	var errs problems
	if !slices.Contains(TiposAtividade, p.TipoAtividade) {
		errs.addf("selecione o tipo de atividade")
	}
	if p.QtdEquipamentos < 0 {
		errs.addf("informe a quantidade de equipamentos")
	}
	if p.QtdBombeiros < 1 {
		errs.addf("mínimo 1 bombeiro")
	}
	if !classify.ValidHHMM(p.TempoGasto) {
		errs.addf("tempo gasto em formato inválido (HH:mm)")
	}
	return errs.err(p.SchemaType())
}

type TAFAvaliado struct {
	Nome   string          `json:"nome"`
	Idade  int             `json:"idade"`
	Tempo  string          `json:"tempo"`
	Status classify.Status `json:"status,omitempty"`
	Nota   *int            `json:"nota,omitempty"`
}

type TAF struct {
	Common
	Avaliados []TAFAvaliado `json:"avaliados"`
}

func (*TAF) SchemaType() domain.SchemaType { return domain.SchemaTAF }

func (p *TAF) Classify() {
	for i := range p.Avaliados {
		a := &p.Avaliados[i]
		res := classify.TAFStatus(a.Idade, a.Tempo)
		a.Status = res.Status
		a.Nota = nil
		if res.Status == classify.StatusAprovado {
			nota := res.Nota
			a.Nota = &nota
		}
	}
}

func (p *TAF) Validate() error {
	var errs problems
	if len(p.Avaliados) == 0 {
		errs.addf("preencha pelo menos um avaliado")
	}
	for i, a := range p.Avaliados {
		if blank(a.Nome) || a.Idade < 1 || !classify.ValidMMSS(a.Tempo, MaxTempoMinutes) {
			errs.addf("avaliado %d: preencha nome, idade e tempo (mm:ss, máx 04:59)", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type ProvaTeoricaAvaliado struct {
	Nome   string          `json:"nome"`
	Nota   *float64        `json:"nota"`
	Status classify.Status `json:"status,omitempty"`
}

type ProvaTeorica struct {
	Common
	Avaliados []ProvaTeoricaAvaliado `json:"avaliados"`
}

func (*ProvaTeorica) SchemaType() domain.SchemaType { return domain.SchemaProvaTeorica }

func (p *ProvaTeorica) Classify() {
	for i := range p.Avaliados {
		a := &p.Avaliados[i]
		if a.Nota == nil {
			a.Status = classify.StatusUnknown
			continue
		}
		a.Status = classify.ProvaTeoricaStatus(*a.Nota)
	}
}

func (p *ProvaTeorica) Validate() error {
	var errs problems
	if len(p.Avaliados) == 0 {
		errs.addf("preencha pelo menos um avaliado")
	}
	for i, a := range p.Avaliados {
		if blank(a.Nome) || a.Nota == nil || *a.Nota < 0 || *a.Nota > 10 {
			errs.addf("avaliado %d: preencha nome e nota entre 0 e 10", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type Participante struct {
	Nome  string `json:"nome"`
	Horas string `json:"horas"`
}

type Treinamento struct {
	Common
	Participantes []Participante `json:"participantes"`
}

func (*Treinamento) SchemaType() domain.SchemaType { return domain.SchemaTreinamento }
func (*Treinamento) Classify()                     {}

func (p *Treinamento) Validate() error {
	var errs problems
	if len(p.Participantes) == 0 {
		errs.addf("adicione pelo menos um participante")
	}
	for i, part := range p.Participantes {
		if blank(part.Nome) || !classify.ValidHHMM(part.Horas) {
			errs.addf("participante %d: preencha nome e horas (HH:mm)", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type TPEPRAvaliado struct {
	Nome   string          `json:"nome"`
	Tempo  string          `json:"tempo"`
	Status classify.Status `json:"status,omitempty"`
}

type TempoTPEPR struct {
	Common
	Avaliados []TPEPRAvaliado `json:"avaliados"`
}

func (*TempoTPEPR) SchemaType() domain.SchemaType { return domain.SchemaTempoTPEPR }

func (p *TempoTPEPR) Classify() {
	for i := range p.Avaliados {
		p.Avaliados[i].Status = classify.TPEPRStatus(p.Avaliados[i].Tempo)
	}
}

func (p *TempoTPEPR) Validate() error {
	var errs problems
	if len(p.Avaliados) == 0 {
		errs.addf("adicione pelo menos um avaliado")
	}
	for i, a := range p.Avaliados {
		if blank(a.Nome) {
			errs.addf("avaliado %d: nome é obrigatório", i+1)
		}
		if !classify.ValidMMSS(a.Tempo, MaxTempoMinutes) {
			errs.addf("avaliado %d: tempo em formato inválido (mm:ss, máx 04:59)", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type Afericao struct {
	Viatura   string `json:"viatura"`
	Motorista string `json:"motorista"`
	Local     string `json:"local"`
	Tempo     string `json:"tempo"`
}

type TempoResposta struct {
	Common
	Afericoes []Afericao `json:"afericoes"`
}

func (*TempoResposta) SchemaType() domain.SchemaType { return domain.SchemaTempoResposta }
func (*TempoResposta) Classify()                     {}

func (p *TempoResposta) Validate() error {
	var errs problems
	if len(p.Afericoes) == 0 {
		errs.addf("adicione pelo menos uma aferição")
	}
	for i, a := range p.Afericoes {
		if !slices.Contains(Viaturas, a.Viatura) {
			errs.addf("aferição %d: selecione uma viatura", i+1)
		}
		if blank(a.Motorista) {
			errs.addf("aferição %d: nome do motorista é obrigatório", i+1)
		}
		if blank(a.Local) {
			errs.addf("aferição %d: local é obrigatório", i+1)
		}
		if !classify.ValidMMSS(a.Tempo, MaxTempoMinutes) {
			errs.addf("aferição %d: tempo em formato inválido (mm:ss, máx 04:59)", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type Inspecao struct {
	Viatura        string `json:"viatura"`
	QtdInspecoes   int    `json:"qtd_inspecoes"`
	QtdNaoConforme int    `json:"qtd_nao_conforme"`
}

type InspecaoViaturas struct {
	Common
	Inspecoes []Inspecao `json:"inspecoes"`
}

func (*InspecaoViaturas) SchemaType() domain.SchemaType { return domain.SchemaInspecaoViaturas }
func (*InspecaoViaturas) Classify()                     {}

func (p *InspecaoViaturas) Validate() error {
	var errs problems
	if len(p.Inspecoes) == 0 {
		errs.addf("adicione pelo menos uma inspeção")
	}
	for i, insp := range p.Inspecoes {
		if blank(insp.Viatura) {
			errs.addf("inspeção %d: viatura é obrigatória", i+1)
		}
		if insp.QtdInspecoes < 0 || insp.QtdNaoConforme < 0 {
			errs.addf("inspeção %d: quantidades devem ser maiores ou iguais a 0", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type Estoque struct {
	Common
	PoQuimicoAtual    float64 `json:"po_quimico_atual"`
	PoQuimicoExigido  float64 `json:"po_quimico_exigido"`
	LGEAtual          float64 `json:"lge_atual"`
	LGEExigido        float64 `json:"lge_exigido"`
	NitrogenioAtual   float64 `json:"nitrogenio_atual"`
	NitrogenioExigido float64 `json:"nitrogenio_exigido"`
}

func (*Estoque) SchemaType() domain.SchemaType { return domain.SchemaEstoque }
func (*Estoque) Classify()                     {}

func (p *Estoque) Validate() error {
	var errs problems
	for _, v := range []float64{p.PoQuimicoAtual, p.PoQuimicoExigido, p.LGEAtual, p.LGEExigido, p.NitrogenioAtual, p.NitrogenioExigido} {
		if v < 0 {
			errs.addf("quantidades de estoque devem ser maiores ou iguais a 0")
			break
		}
	}
	return errs.err(p.SchemaType())
}

type ColaboradorEPI struct {
	Nome         string `json:"nome"`
	EPIEntregue  int    `json:"epi_entregue"`
	EPIPrevisto  int    `json:"epi_previsto"`
	UnifEntregue int    `json:"unif_entregue"`
	UnifPrevisto int    `json:"unif_previsto"`
	TotalEPIPct  int    `json:"total_epi_pct"`
	TotalUnifPct int    `json:"total_unif_pct"`
}

type ControleEPI struct {
	Common
	Colaboradores []ColaboradorEPI `json:"colaboradores"`
}

func (*ControleEPI) SchemaType() domain.SchemaType { return domain.SchemaControleEPI }

func (p *ControleEPI) Classify() {
	for i := range p.Colaboradores {
		c := &p.Colaboradores[i]
		c.TotalEPIPct = classify.Percentage(float64(c.EPIEntregue), float64(c.EPIPrevisto))
		c.TotalUnifPct = classify.Percentage(float64(c.UnifEntregue), float64(c.UnifPrevisto))
	}
}

func (p *ControleEPI) Validate() error {
	var errs problems
	if len(p.Colaboradores) == 0 {
		errs.addf("adicione pelo menos um colaborador")
	}
	for i, c := range p.Colaboradores {
		if blank(c.Nome) || c.EPIEntregue < 0 || c.EPIPrevisto < 1 || c.UnifEntregue < 0 || c.UnifPrevisto < 1 {
			errs.addf("colaborador %d: preencha EPI e uniforme entregues/previstos", i+1)
		}
	}
	return errs.err(p.SchemaType())
}

type ControleTrocas struct {
	Common
	QtdTrocas int `json:"qtd_trocas"`
}

func (*ControleTrocas) SchemaType() domain.SchemaType { return domain.SchemaControleTrocas }
func (*ControleTrocas) Classify()                     {}

func (p *ControleTrocas) Validate() error {
	var errs problems
	if p.QtdTrocas < 0 {
		errs.addf("quantidade de trocas deve ser maior ou igual a 0")
	}
	return errs.err(p.SchemaType())
}

type VerificacaoTP struct {
	Common
	QtdConformes   int `json:"qtd_conformes"`
	QtdVerificados int `json:"qtd_verificados"`
	QtdTotalEquipe int `json:"qtd_total_equipe"`
}

func (*VerificacaoTP) SchemaType() domain.SchemaType { return domain.SchemaVerificacaoTP }
func (*VerificacaoTP) Classify()                     {}

func (p *VerificacaoTP) Validate() error {
	var errs problems
	if p.QtdConformes < 0 || p.QtdVerificados < 0 || p.QtdTotalEquipe < 0 {
		errs.addf("quantidades devem ser maiores ou iguais a 0")
	}
	if p.QtdConformes > p.QtdVerificados {
		errs.addf("conformes não pode exceder verificados")
	}
	return errs.err(p.SchemaType())
}

type HigienizacaoTP struct {
	Common
	QtdHigienizadosMes int `json:"qtd_higienizados_mes"`
	QtdTotalSCI        int `json:"qtd_total_sci"`
}

func (*HigienizacaoTP) SchemaType() domain.SchemaType { return domain.SchemaHigienizacaoTP }
func (*HigienizacaoTP) Classify()                     {}

func (p *HigienizacaoTP) Validate() error {
	var errs problems
	if p.QtdHigienizadosMes < 0 || p.QtdTotalSCI < 0 {
		errs.addf("quantidade deve ser maior ou igual a 0")
	}
	return errs.err(p.SchemaType())
}
