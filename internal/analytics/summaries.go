package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/medmais/sistema-indicadores/internal/classify"
	"github.com/medmais/sistema-indicadores/internal/indicador"
)

// Age brackets of the fitness test performance chart.
const (
	FaixaAte30   = "Até 30 anos"
	Faixa31a40   = "31-40 anos"
	FaixaAcima40 = "Acima de 40 anos"
)

type TimeStat struct {
	Key            string  `json:"key"`
	Quantidade     int     `json:"quantidade"`
	MediaSegundos  float64 `json:"media_segundos"`
	MediaFormatada string  `json:"media_formatada"`
}

type NotaCount struct {
	Nota       int `json:"nota"`
	Quantidade int `json:"quantidade"`
}

// TAFAvaliado is one evaluated firefighter as seen by the dashboards.
type TAFAvaliado struct {
	Nome           string          `json:"nome"`
	Idade          int             `json:"idade"`
	Tempo          string          `json:"tempo"`
	Status         classify.Status `json:"status"`
	Nota           *int            `json:"nota,omitempty"`
	DataReferencia string          `json:"data_referencia"`
	EquipeID       string          `json:"equipe_id"`
}

type TAFSummary struct {
	Total            int           `json:"total"`
	Aprovados        int           `json:"aprovados"`
	Reprovados       int           `json:"reprovados"`
	TaxaAprovacao    float64       `json:"taxa_aprovacao"`
	MelhorTempo      string        `json:"melhor_tempo"`
	TempoMedio       string        `json:"tempo_medio"`
	EvolucaoMensal   []TimeStat    `json:"evolucao_mensal"`
	PorFaixaEtaria   []TimeStat    `json:"por_faixa_etaria"`
	DistribuicaoNota []NotaCount   `json:"distribuicao_notas"`
	Avaliados        []TAFAvaliado `json:"avaliados"`
}

// SummarizeTAF aggregates fitness tests. When nome is set only matching
// evaluated people are counted.
func SummarizeTAF(entries []Entry, nome string) TAFSummary {
	needle := Fold(nome)
	var avaliados []TAFAvaliado
	for _, e := range entries {
		taf, ok := e.Payload.(*indicador.TAF)
		if !ok {
			continue
		}
		for _, a := range taf.Avaliados {
			if !nameMatches(a.Nome, needle) {
				continue
			}
			status := classify.Status(strings.TrimSpace(string(a.Status)))
			if status == "" || status == classify.StatusUnknown {
				status = classify.TAFStatus(a.Idade, a.Tempo).Status
			}
			avaliados = append(avaliados, TAFAvaliado{
				Nome:           a.Nome,
				Idade:          a.Idade,
				Tempo:          a.Tempo,
				Status:         status,
				Nota:           a.Nota,
				DataReferencia: e.Lancamento.DataReferencia,
				EquipeID:       e.Lancamento.EquipeID,
			})
		}
	}

	s := TAFSummary{Total: len(avaliados), Avaliados: avaliados}
	if s.Avaliados == nil {
		s.Avaliados = []TAFAvaliado{}
	}

	byMonth := newAverager()
	byFaixa := newAverager()
	notas := map[int]int{}
	var tempos []int
	for _, a := range avaliados {
		switch strings.ToLower(string(a.Status)) {
		case "aprovado":
			s.Aprovados++
		case "reprovado":
			s.Reprovados++
		}
		if a.Nota != nil {
			notas[*a.Nota]++
		}
		secs, ok := classify.TimeToSeconds(a.Tempo)
		if !ok {
			continue
		}
		tempos = append(tempos, secs)
		if len(a.DataReferencia) >= 7 {
			byMonth.add(a.DataReferencia[:7], secs)
		}
		if a.Idade > 0 {
			byFaixa.add(faixaEtaria(a.Idade), secs)
		}
	}

	s.TaxaAprovacao = rate(s.Aprovados, s.Total)
	if len(tempos) > 0 {
		best, sum := tempos[0], 0
		for _, t := range tempos {
			sum += t
			if t < best {
				best = t
			}
		}
		s.MelhorTempo = classify.SecondsToTime(best)
		s.TempoMedio = classify.SecondsToTime(int(math.Round(float64(sum) / float64(len(tempos)))))
	} else {
		s.MelhorTempo = classify.SecondsToTime(0)
		s.TempoMedio = classify.SecondsToTime(0)
	}

	s.EvolucaoMensal = byMonth.stats(nil)
	s.PorFaixaEtaria = byFaixa.stats([]string{FaixaAte30, Faixa31a40, FaixaAcima40})

	s.DistribuicaoNota = []NotaCount{}
	for nota, qtd := range notas {
		s.DistribuicaoNota = append(s.DistribuicaoNota, NotaCount{Nota: nota, Quantidade: qtd})
	}
	sort.Slice(s.DistribuicaoNota, func(i, j int) bool { return s.DistribuicaoNota[i].Nota > s.DistribuicaoNota[j].Nota })
	return s
}

func faixaEtaria(idade int) string {
	switch {
	case idade <= 30:
		return FaixaAte30
	case idade <= 40:
		return Faixa31a40
	default:
		return FaixaAcima40
	}
}

type ProvaTeoricaSummary struct {
	Total         int     `json:"total"`
	Aprovados     int     `json:"aprovados"`
	Reprovados    int     `json:"reprovados"`
	TaxaAprovacao float64 `json:"taxa_aprovacao"`
	NotaMedia     float64 `json:"nota_media"`
}

func SummarizeProvaTeorica(entries []Entry, nome string) ProvaTeoricaSummary {
	needle := Fold(nome)
	var s ProvaTeoricaSummary
	var soma float64
	var comNota int
	for _, e := range entries {
		prova, ok := e.Payload.(*indicador.ProvaTeorica)
		if !ok {
			continue
		}
		for _, a := range prova.Avaliados {
			if !nameMatches(a.Nome, needle) {
				continue
			}
			s.Total++
			if a.Nota == nil {
				continue
			}
			comNota++
			soma += *a.Nota
			if classify.ProvaTeoricaStatus(*a.Nota) == classify.StatusAprovado {
				s.Aprovados++
			} else {
				s.Reprovados++
			}
		}
	}
	s.TaxaAprovacao = rate(s.Aprovados, s.Total)
	if comNota > 0 {
		s.NotaMedia = round1(soma / float64(comNota))
	}
	return s
}

type TPEPRSummary struct {
	Total         int        `json:"total"`
	Aprovados     int        `json:"aprovados"`
	Reprovados    int        `json:"reprovados"`
	TaxaAprovacao float64    `json:"taxa_aprovacao"`
	TempoMedio    string     `json:"tempo_medio"`
	PorEquipe     []TimeStat `json:"por_equipe"`
}

func SummarizeTPEPR(entries []Entry, nome string, equipes map[string]string) TPEPRSummary {
	needle := Fold(nome)
	var s TPEPRSummary
	all := newAverager()
	byEquipe := newAverager()
	for _, e := range entries {
		tp, ok := e.Payload.(*indicador.TempoTPEPR)
		if !ok {
			continue
		}
		for _, a := range tp.Avaliados {
			if !nameMatches(a.Nome, needle) {
				continue
			}
			s.Total++
			secs, ok := classify.TimeToSeconds(a.Tempo)
			if !ok {
				continue
			}
			if secs <= classify.TPEPRMaxSeconds {
				s.Aprovados++
			} else {
				s.Reprovados++
			}
			all.add("all", secs)
			byEquipe.add(nameOr(equipes, e.Lancamento.EquipeID), secs)
		}
	}
	s.TaxaAprovacao = rate(s.Aprovados, s.Total)
	s.TempoMedio = classify.SecondsToTime(0)
	if st := all.stats(nil); len(st) == 1 {
		s.TempoMedio = st[0].MediaFormatada
	}
	s.PorEquipe = byEquipe.stats(nil)
	return s
}

type ViaturaStat struct {
	Viatura    string `json:"viatura"`
	Quantidade int    `json:"quantidade"`
	Media      string `json:"media"`
	Minimo     string `json:"minimo"`
	Maximo     string `json:"maximo"`
}

type TempoRespostaSummary struct {
	Total      int           `json:"total"`
	Media      string        `json:"media"`
	PorViatura []ViaturaStat `json:"por_viatura"`
}

func SummarizeTempoResposta(entries []Entry, nome string) TempoRespostaSummary {
	needle := Fold(nome)
	type acc struct{ n, sum, min, max int }
	per := map[string]*acc{}
	var total, sum int
	for _, e := range entries {
		tr, ok := e.Payload.(*indicador.TempoResposta)
		if !ok {
			continue
		}
		for _, a := range tr.Afericoes {
			if !nameMatches(a.Motorista, needle) {
				continue
			}
			secs, ok := classify.TimeToSeconds(a.Tempo)
			if !ok {
				continue
			}
			total++
			sum += secs
			v := per[a.Viatura]
			if v == nil {
				v = &acc{min: secs, max: secs}
				per[a.Viatura] = v
			}
			v.n++
			v.sum += secs
			v.min = min(v.min, secs)
			v.max = max(v.max, secs)
		}
	}
	s := TempoRespostaSummary{Total: total, Media: classify.SecondsToTime(0), PorViatura: []ViaturaStat{}}
	if total > 0 {
		s.Media = classify.SecondsToTime(int(math.Round(float64(sum) / float64(total))))
	}
	for viatura, v := range per {
		s.PorViatura = append(s.PorViatura, ViaturaStat{
			Viatura:    viatura,
			Quantidade: v.n,
			Media:      classify.SecondsToTime(int(math.Round(float64(v.sum) / float64(v.n)))),
			Minimo:     classify.SecondsToTime(v.min),
			Maximo:     classify.SecondsToTime(v.max),
		})
	}
	sort.Slice(s.PorViatura, func(i, j int) bool { return s.PorViatura[i].Viatura < s.PorViatura[j].Viatura })
	return s
}

type EPISummary struct {
	Colaboradores int     `json:"colaboradores"`
	MediaEPIPct   float64 `json:"media_epi_pct"`
	MediaUnifPct  float64 `json:"media_unif_pct"`
	Abaixo100EPI  int     `json:"abaixo_100_epi"`
	Abaixo100Unif int     `json:"abaixo_100_unif"`
}

func SummarizeEPI(entries []Entry, nome string) EPISummary {
	needle := Fold(nome)
	var s EPISummary
	var sumEPI, sumUnif int
	for _, e := range entries {
		epi, ok := e.Payload.(*indicador.ControleEPI)
		if !ok {
			continue
		}
		for _, c := range epi.Colaboradores {
			if !nameMatches(c.Nome, needle) {
				continue
			}
			epiPct := classify.Percentage(float64(c.EPIEntregue), float64(c.EPIPrevisto))
			unifPct := classify.Percentage(float64(c.UnifEntregue), float64(c.UnifPrevisto))
			s.Colaboradores++
			sumEPI += epiPct
			sumUnif += unifPct
			if epiPct < 100 {
				s.Abaixo100EPI++
			}
			if unifPct < 100 {
				s.Abaixo100Unif++
			}
		}
	}
	if s.Colaboradores > 0 {
		s.MediaEPIPct = round1(float64(sumEPI) / float64(s.Colaboradores))
		s.MediaUnifPct = round1(float64(sumUnif) / float64(s.Colaboradores))
	}
	return s
}

// CountSummary is the fallback view for indicators without a dedicated one.
type CountSummary struct {
	Total   int            `json:"total"`
	PorMes  map[string]int `json:"por_mes"`
	PorBase map[string]int `json:"por_base"`
}

// SummarizeCounts counts entries per month and per base name.
func SummarizeCounts(entries []Entry, bases map[string]string) CountSummary {
	s := CountSummary{Total: len(entries), PorMes: map[string]int{}, PorBase: map[string]int{}}
	for _, g := range GroupByMonth(entries) {
		s.PorMes[g.Key] = len(g.Entries)
	}
	for _, g := range GroupByBase(entries, bases) {
		s.PorBase[g.Key] = len(g.Entries)
	}
	return s
}

type averager struct {
	order []string
	acc   map[string][2]int
}

func newAverager() *averager { return &averager{acc: map[string][2]int{}} }

func (a *averager) add(key string, secs int) {
	cur, ok := a.acc[key]
	if !ok {
		a.order = append(a.order, key)
	}
	a.acc[key] = [2]int{cur[0] + secs, cur[1] + 1}
}

// stats returns averages in the given key order, or sorted by key when order is nil.
func (a *averager) stats(order []string) []TimeStat {
	keys := order
	if keys == nil {
		keys = append([]string(nil), a.order...)
		sort.Strings(keys)
	}
	out := []TimeStat{}
	for _, k := range keys {
		v, ok := a.acc[k]
		if !ok || v[1] == 0 {
			continue
		}
		avg := float64(v[0]) / float64(v[1])
		out = append(out, TimeStat{
			Key:            k,
			Quantidade:     v[1],
			MediaSegundos:  round1(avg),
			MediaFormatada: classify.SecondsToTime(int(math.Round(avg))),
		})
	}
	return out
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
