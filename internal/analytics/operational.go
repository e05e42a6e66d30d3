package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/medmais/sistema-indicadores/internal/classify"
	"github.com/medmais/sistema-indicadores/internal/indicador"
)

// MetaHorasTreinamento is the monthly training goal per firefighter, in minutes.
const MetaHorasTreinamento = 16 * 60

const (
	TreinamentoConforme    = "Conforme"
	TreinamentoNaoConforme = "Não Conforme"
)

// Hour ranges of the training workload histogram.
const (
	FaixaHoras0a8   = "0-8h"
	FaixaHoras8a15  = "8-15h"
	FaixaHoras16a24 = "16-24h"
	FaixaHoras25    = "25h+"
)

const naoInformado = "Não informado"

type FaixaCount struct {
	Faixa      string `json:"faixa"`
	Quantidade int    `json:"quantidade"`
}

type EquipeHoras struct {
	Equipe     string  `json:"equipe"`
	MediaHoras float64 `json:"media_horas"`
}

// ParticipanteHoras is one firefighter's training total for one month.
type ParticipanteHoras struct {
	Nome     string `json:"nome"`
	Mes      string `json:"mes"`
	EquipeID string `json:"equipe_id"`
	Minutos  int    `json:"minutos"`
	Horas    string `json:"horas"`
	Status   string `json:"status"`
}

type TreinamentoSummary struct {
	Efetivo            int                 `json:"efetivo"`
	Conformes          int                 `json:"conformes"`
	NaoConformes       int                 `json:"nao_conformes"`
	PercentualConforme float64             `json:"percentual_conforme"`
	MediaHoras         float64             `json:"media_horas"`
	DistribuicaoHoras  []FaixaCount        `json:"distribuicao_horas"`
	MediaPorEquipe     []EquipeHoras       `json:"media_por_equipe"`
	Participantes      []ParticipanteHoras `json:"participantes"`
}

// SummarizeTreinamento totals training hours per firefighter and month and
// checks each total against MetaHorasTreinamento. A person is counted once
// per month; names are matched case and accent insensitively.
func SummarizeTreinamento(entries []Entry, nome string, equipes map[string]string) TreinamentoSummary {
	needle := Fold(nome)
	type key struct{ mes, nome string }
	totals := map[key]*ParticipanteHoras{}
	var order []key
	for _, e := range entries {
		tr, ok := e.Payload.(*indicador.Treinamento)
		if !ok {
			continue
		}
		mes := e.Month()
		if mes == "" {
			continue
		}
		for _, p := range tr.Participantes {
			if strings.TrimSpace(p.Nome) == "" || !nameMatches(p.Nome, needle) {
				continue
			}
			mins, ok := classify.TimeToMinutes(p.Horas)
			if !ok {
				continue
			}
			k := key{mes: mes, nome: Fold(p.Nome)}
			cur := totals[k]
			if cur == nil {
				cur = &ParticipanteHoras{Nome: strings.TrimSpace(p.Nome), Mes: mes, EquipeID: e.Lancamento.EquipeID}
				totals[k] = cur
				order = append(order, k)
			}
			cur.Minutos += mins
		}
	}

	s := TreinamentoSummary{Efetivo: len(order), Participantes: []ParticipanteHoras{}}
	faixas := map[string]int{}
	type teamAcc struct{ minutos, n int }
	teams := map[string]*teamAcc{}
	var soma int
	for _, k := range order {
		p := totals[k]
		p.Horas = classify.MinutesToTime(p.Minutos)
		p.Status = TreinamentoNaoConforme
		if p.Minutos >= MetaHorasTreinamento {
			p.Status = TreinamentoConforme
			s.Conformes++
		} else {
			s.NaoConformes++
		}
		soma += p.Minutos
		faixas[faixaHoras(p.Minutos)]++
		team := nameOr(equipes, p.EquipeID)
		if teams[team] == nil {
			teams[team] = &teamAcc{}
		}
		teams[team].minutos += p.Minutos
		teams[team].n++
		s.Participantes = append(s.Participantes, *p)
	}
	sort.SliceStable(s.Participantes, func(i, j int) bool {
		a, b := s.Participantes[i], s.Participantes[j]
		if a.Mes != b.Mes {
			return a.Mes < b.Mes
		}
		return a.Nome < b.Nome
	})

	s.PercentualConforme = rate(s.Conformes, s.Efetivo)
	if s.Efetivo > 0 {
		s.MediaHoras = round2(float64(soma) / 60 / float64(s.Efetivo))
	}
	s.DistribuicaoHoras = []FaixaCount{}
	for _, f := range []string{FaixaHoras0a8, FaixaHoras8a15, FaixaHoras16a24, FaixaHoras25} {
		if faixas[f] > 0 {
			s.DistribuicaoHoras = append(s.DistribuicaoHoras, FaixaCount{Faixa: f, Quantidade: faixas[f]})
		}
	}
	s.MediaPorEquipe = []EquipeHoras{}
	for team, acc := range teams {
		s.MediaPorEquipe = append(s.MediaPorEquipe, EquipeHoras{
			Equipe:     team,
			MediaHoras: round2(float64(acc.minutos) / 60 / float64(acc.n)),
		})
	}
	sort.Slice(s.MediaPorEquipe, func(i, j int) bool {
		a, b := s.MediaPorEquipe[i], s.MediaPorEquipe[j]
		if a.MediaHoras != b.MediaHoras {
			return a.MediaHoras > b.MediaHoras
		}
		return a.Equipe < b.Equipe
	})
	return s
}

func faixaHoras(minutos int) string {
	switch {
	case minutos < 8*60:
		return FaixaHoras0a8
	case minutos < 16*60:
		return FaixaHoras8a15
	case minutos <= 24*60:
		return FaixaHoras16a24
	default:
		return FaixaHoras25
	}
}

type ViaturaInspecao struct {
	Viatura     string `json:"viatura"`
	Inspecoes   int    `json:"inspecoes"`
	NaoConforme int    `json:"nao_conforme"`
}

type InspecaoSummary struct {
	TotalInspecoes    int               `json:"total_inspecoes"`
	TotalNaoConforme  int               `json:"total_nao_conforme"`
	TaxaConformidade  float64           `json:"taxa_conformidade"`
	MaisCritica       *ViaturaInspecao  `json:"mais_critica,omitempty"`
	PorViatura        []ViaturaInspecao `json:"por_viatura"`
	NaoConformePorMes map[string]int    `json:"nao_conforme_por_mes"`
}

// SummarizeInspecao computes the fleet conformity rate. With no inspections
// the rate is 100.
func SummarizeInspecao(entries []Entry) InspecaoSummary {
	s := InspecaoSummary{PorViatura: []ViaturaInspecao{}, NaoConformePorMes: map[string]int{}}
	per := map[string]*ViaturaInspecao{}
	for _, e := range entries {
		iv, ok := e.Payload.(*indicador.InspecaoViaturas)
		if !ok {
			continue
		}
		mes := e.Month()
		for _, insp := range iv.Inspecoes {
			viatura := strings.TrimSpace(insp.Viatura)
			if viatura == "" {
				viatura = naoInformado
			}
			s.TotalInspecoes += insp.QtdInspecoes
			s.TotalNaoConforme += insp.QtdNaoConforme
			v := per[viatura]
			if v == nil {
				v = &ViaturaInspecao{Viatura: viatura}
				per[viatura] = v
			}
			v.Inspecoes += insp.QtdInspecoes
			v.NaoConforme += insp.QtdNaoConforme
			if mes != "" {
				s.NaoConformePorMes[mes] += insp.QtdNaoConforme
			}
		}
	}

	s.TaxaConformidade = 100
	if s.TotalInspecoes > 0 {
		conformes := max(s.TotalInspecoes-s.TotalNaoConforme, 0)
		s.TaxaConformidade = round2(float64(conformes) / float64(s.TotalInspecoes) * 100)
	}
	for _, v := range per {
		s.PorViatura = append(s.PorViatura, *v)
	}
	sort.Slice(s.PorViatura, func(i, j int) bool {
		a, b := s.PorViatura[i], s.PorViatura[j]
		if a.NaoConforme != b.NaoConforme {
			return a.NaoConforme > b.NaoConforme
		}
		return a.Viatura < b.Viatura
	})
	if len(s.PorViatura) > 0 && s.PorViatura[0].NaoConforme > 0 {
		top := s.PorViatura[0]
		s.MaisCritica = &top
	}
	return s
}

// Stock materials.
const (
	MaterialPoQuimico  = "Pó Químico"
	MaterialLGE        = "LGE"
	MaterialNitrogenio = "Nitrogênio"
)

type MaterialCobertura struct {
	Material  string  `json:"material"`
	Atual     float64 `json:"atual"`
	Exigido   float64 `json:"exigido"`
	Cobertura float64 `json:"cobertura"`
}

type AlertaMaterial struct {
	Base     string  `json:"base"`
	Material string  `json:"material"`
	Falta    float64 `json:"falta"`
}

type EstoqueSummary struct {
	Materiais       []MaterialCobertura `json:"materiais"`
	BasesComDeficit int                 `json:"bases_com_deficit"`
	Alertas         []AlertaMaterial    `json:"alertas"`
}

// SummarizeEstoque takes the most recent stock count of each base and
// reports coverage (current over required, in percent) per material across
// all bases. A material nobody requires is fully covered.
func SummarizeEstoque(entries []Entry, bases map[string]string) EstoqueSummary {
	type latest struct {
		date string
		e    *indicador.Estoque
	}
	per := map[string]latest{}
	for _, e := range entries {
		est, ok := e.Payload.(*indicador.Estoque)
		if !ok {
			continue
		}
		base := e.Lancamento.BaseID
		if cur, ok := per[base]; ok && cur.date > e.Lancamento.DataReferencia {
			continue
		}
		per[base] = latest{date: e.Lancamento.DataReferencia, e: est}
	}

	totals := []MaterialCobertura{{Material: MaterialPoQuimico}, {Material: MaterialLGE}, {Material: MaterialNitrogenio}}
	s := EstoqueSummary{Alertas: []AlertaMaterial{}}
	baseIDs := make([]string, 0, len(per))
	for id := range per {
		baseIDs = append(baseIDs, id)
	}
	sort.Strings(baseIDs)
	for _, id := range baseIDs {
		est := per[id].e
		counts := [3][2]float64{
			{est.PoQuimicoAtual, est.PoQuimicoExigido},
			{est.LGEAtual, est.LGEExigido},
			{est.NitrogenioAtual, est.NitrogenioExigido},
		}
		deficit := false
		for i, c := range counts {
			totals[i].Atual += c[0]
			totals[i].Exigido += c[1]
			if c[0] < c[1] {
				deficit = true
				s.Alertas = append(s.Alertas, AlertaMaterial{
					Base:     nameOr(bases, id),
					Material: totals[i].Material,
					Falta:    round2(c[1] - c[0]),
				})
			}
		}
		if deficit {
			s.BasesComDeficit++
		}
	}
	for i := range totals {
		totals[i].Cobertura = 100
		if totals[i].Exigido > 0 {
			totals[i].Cobertura = round2(totals[i].Atual / totals[i].Exigido * 100)
		}
	}
	s.Materiais = totals
	return s
}

type LocalCount struct {
	Local      string `json:"local"`
	Quantidade int    `json:"quantidade"`
}

type OcorrenciaAeroSummary struct {
	Total                  int          `json:"total"`
	TempoMedio1CCI         string       `json:"tempo_medio_1_cci"`
	PiorTempo1CCI          string       `json:"pior_tempo_1_cci"`
	PiorTempoUltCCI        string       `json:"pior_tempo_ult_cci"`
	PercentualIntervencoes float64      `json:"percentual_intervencoes"`
	DuracaoTotal           string       `json:"duracao_total"`
	TempoMedio1CCIPorMes   []TimeStat   `json:"tempo_medio_1_cci_por_mes"`
	TopLocais              []LocalCount `json:"top_locais"`
}

// SummarizeOcorrenciaAero aggregates aeronautical occurrences: arrival times
// of the first and last fire truck and total time from call to end.
func SummarizeOcorrenciaAero(entries []Entry) OcorrenciaAeroSummary {
	var s OcorrenciaAeroSummary
	byMonth := newAverager()
	locais := map[string]int{}
	var sum1, n1, pior1, piorUlt, intervencoes, duracao int
	for _, e := range entries {
		oc, ok := e.Payload.(*indicador.OcorrenciaAero)
		if !ok {
			continue
		}
		s.Total++
		if oc.Acao == "Intervenção" {
			intervencoes++
		}
		locais[localOr(oc.Local)]++
		if secs, ok := classify.TimeToSeconds(oc.TempoChegada1CCI); ok && secs > 0 {
			sum1 += secs
			n1++
			pior1 = max(pior1, secs)
			if mes := e.Month(); mes != "" {
				byMonth.add(mes, secs)
			}
		}
		if secs, ok := classify.TimeToSeconds(oc.TempoChegadaUltCCI); ok {
			piorUlt = max(piorUlt, secs)
		}
		if mins, ok := clockSpan(oc.HoraAcionamento, oc.TerminoOcorrencia); ok {
			duracao += mins
		}
	}

	s.TempoMedio1CCI = classify.SecondsToTime(0)
	if n1 > 0 {
		s.TempoMedio1CCI = classify.SecondsToTime(int(math.Round(float64(sum1) / float64(n1))))
	}
	s.PiorTempo1CCI = classify.SecondsToTime(pior1)
	s.PiorTempoUltCCI = classify.SecondsToTime(piorUlt)
	s.PercentualIntervencoes = rate(intervencoes, s.Total)
	s.DuracaoTotal = classify.MinutesToTime(duracao)
	s.TempoMedio1CCIPorMes = byMonth.stats(nil)
	s.TopLocais = topCounts(locais, 5)
	return s
}

type TipoCount struct {
	Tipo       string `json:"tipo"`
	Quantidade int    `json:"quantidade"`
}

type OcorrenciaNaoAeroSummary struct {
	Total              int            `json:"total"`
	DuracaoTotal       string         `json:"duracao_total"`
	DuracaoMedia       string         `json:"duracao_media"`
	TempoRespostaMedio string         `json:"tempo_resposta_medio"`
	DuracaoPorMes      map[string]int `json:"duracao_por_mes"`
	TopTipos           []TipoCount    `json:"top_tipos"`
	TopLocais          []LocalCount   `json:"top_locais"`
}

// SummarizeOcorrenciaNaoAero aggregates non-aeronautical occurrences.
// Duration uses duracao_total when filled, otherwise call to end time.
// Response time is call to arrival. Both wrap past midnight and are "HH:MM".
func SummarizeOcorrenciaNaoAero(entries []Entry) OcorrenciaNaoAeroSummary {
	s := OcorrenciaNaoAeroSummary{DuracaoPorMes: map[string]int{}}
	tipos := map[string]int{}
	locais := map[string]int{}
	var duracao, nDuracao, resposta, nResposta int
	for _, e := range entries {
		oc, ok := e.Payload.(*indicador.OcorrenciaNaoAero)
		if !ok {
			continue
		}
		s.Total++
		tipo := strings.TrimSpace(oc.TipoOcorrencia)
		if tipo == "" {
			tipo = naoInformado
		}
		tipos[tipo]++
		locais[localOr(oc.Local)]++

		mins, ok := classify.TimeToMinutes(oc.DuracaoTotal)
		if !ok {
			mins, ok = clockSpan(oc.HoraAcionamento, oc.HoraTermino)
		}
		if ok {
			duracao += mins
			nDuracao++
			if mes := e.Month(); mes != "" {
				s.DuracaoPorMes[mes] += mins
			}
		}
		if mins, ok := clockSpan(oc.HoraAcionamento, oc.HoraChegada); ok {
			resposta += mins
			nResposta++
		}
	}

	s.DuracaoTotal = classify.MinutesToTime(duracao)
	s.DuracaoMedia = classify.MinutesToTime(0)
	if nDuracao > 0 {
		s.DuracaoMedia = classify.MinutesToTime(int(math.Round(float64(duracao) / float64(nDuracao))))
	}
	s.TempoRespostaMedio = classify.MinutesToTime(0)
	if nResposta > 0 {
		s.TempoRespostaMedio = classify.MinutesToTime(int(math.Round(float64(resposta) / float64(nResposta))))
	}
	s.TopTipos = []TipoCount{}
	for _, c := range topCounts(tipos, 5) {
		s.TopTipos = append(s.TopTipos, TipoCount{Tipo: c.Local, Quantidade: c.Quantidade})
	}
	s.TopLocais = topCounts(locais, 5)
	return s
}

// clockSpan returns the minutes from start to end, both "HH:MM". An end
// before the start is taken to be on the next day.
func clockSpan(start, end string) (int, bool) {
	a, ok := classify.TimeToMinutes(start)
	if !ok {
		return 0, false
	}
	b, ok := classify.TimeToMinutes(end)
	if !ok {
		return 0, false
	}
	if b < a {
		b += 24 * 60
	}
	return b - a, true
}

func localOr(local string) string {
	if l := strings.TrimSpace(local); l != "" {
		return l
	}
	return naoInformado
}

// topCounts returns the n largest counts, ties broken by name.
func topCounts(counts map[string]int, n int) []LocalCount {
	out := make([]LocalCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, LocalCount{Local: k, Quantidade: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantidade != out[j].Quantidade {
			return out[i].Quantidade > out[j].Quantidade
		}
		return out[i].Local < out[j].Local
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
