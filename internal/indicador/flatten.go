package indicador

import (
	"encoding/json"
	"strconv"
)

// List keys of list-valued payloads, in the order they are looked up.
const (
	KeyAvaliados     = "avaliados"
	KeyColaboradores = "colaboradores"
	KeyInspecoes     = "inspecoes"
	KeyAfericoes     = "afericoes"
	KeyParticipantes = "participantes"
)

var listKeys = []string{KeyAvaliados, KeyColaboradores, KeyInspecoes, KeyAfericoes, KeyParticipantes}

// Flat is the tabular view of a payload. List payloads carry one Items entry
// per sub-item; Fields holds the scalar content outside the list.
type Flat struct {
	ListKey string
	Items   []map[string]string
	Fields  map[string]string
}

// Flatten converts a payload into columns.
func Flatten(p Payload) Flat {
	f := Flat{Fields: map[string]string{}}
	switch v := p.(type) {
	case *OcorrenciaAero:
		f.Fields["local"] = v.Local
		f.Fields["acao"] = v.Acao
		f.Fields["tempo_chegada_1_cci"] = v.TempoChegada1CCI
		f.Fields["tempo_chegada_ult_cci"] = v.TempoChegadaUltCCI
	case *OcorrenciaNaoAero:
		f.Fields["tipo_ocorrencia"] = v.TipoOcorrencia
		f.Fields["local"] = v.Local
		f.Fields["duracao"] = v.DuracaoTotal
		f.Fields["hora_acionamento"] = v.HoraAcionamento
		f.Fields["hora_chegada"] = v.HoraChegada
	case *AtividadesAcessorias:
		f.Fields["tipo_atividade"] = v.TipoAtividade
		f.Fields["qtd_bombeiros"] = itoa(v.QtdBombeiros)
		f.Fields["tempo_gasto"] = v.TempoGasto
		f.Fields["qtd_equipamentos"] = itoa(v.QtdEquipamentos)
	case *TAF:
		f.ListKey = KeyAvaliados
		for _, a := range v.Avaliados {
			item := map[string]string{
				"nome":   a.Nome,
				"idade":  itoa(a.Idade),
				"tempo":  a.Tempo,
				"status": string(a.Status),
			}
			if a.Nota != nil {
				item["nota"] = itoa(*a.Nota)
			}
			f.Items = append(f.Items, item)
		}
	case *ProvaTeorica:
		f.ListKey = KeyAvaliados
		for _, a := range v.Avaliados {
			item := map[string]string{"nome": a.Nome, "status": string(a.Status)}
			if a.Nota != nil {
				item["nota"] = ftoa(*a.Nota)
			}
			f.Items = append(f.Items, item)
		}
	case *Treinamento:
		f.ListKey = KeyParticipantes
		for _, part := range v.Participantes {
			f.Items = append(f.Items, map[string]string{"nome": part.Nome, "horas": part.Horas})
		}
	case *TempoTPEPR:
		f.ListKey = KeyAvaliados
		for _, a := range v.Avaliados {
			f.Items = append(f.Items, map[string]string{"nome": a.Nome, "tempo": a.Tempo, "status": string(a.Status)})
		}
	case *TempoResposta:
		f.ListKey = KeyAfericoes
		for _, a := range v.Afericoes {
			f.Items = append(f.Items, map[string]string{
				"viatura":   a.Viatura,
				"motorista": a.Motorista,
				"local":     a.Local,
				"tempo":     a.Tempo,
			})
		}
	case *InspecaoViaturas:
		f.ListKey = KeyInspecoes
		for _, insp := range v.Inspecoes {
			f.Items = append(f.Items, map[string]string{
				"viatura":          insp.Viatura,
				"qtd_inspecoes":    itoa(insp.QtdInspecoes),
				"qtd_nao_conforme": itoa(insp.QtdNaoConforme),
			})
		}
	case *Estoque:
		f.Fields["po_quimico_atual"] = ftoa(v.PoQuimicoAtual)
		f.Fields["po_quimico_exigido"] = ftoa(v.PoQuimicoExigido)
		f.Fields["lge_atual"] = ftoa(v.LGEAtual)
		f.Fields["lge_exigido"] = ftoa(v.LGEExigido)
		f.Fields["nitrogenio_atual"] = ftoa(v.NitrogenioAtual)
		f.Fields["nitrogenio_exigido"] = ftoa(v.NitrogenioExigido)
	case *ControleEPI:
		f.ListKey = KeyColaboradores
		for _, c := range v.Colaboradores {
			f.Items = append(f.Items, map[string]string{
				"nome":           c.Nome,
				"epi_entregue":   itoa(c.EPIEntregue),
				"epi_previsto":   itoa(c.EPIPrevisto),
				"unif_entregue":  itoa(c.UnifEntregue),
				"unif_previsto":  itoa(c.UnifPrevisto),
				"total_epi_pct":  itoa(c.TotalEPIPct),
				"total_unif_pct": itoa(c.TotalUnifPct),
			})
		}
	case *ControleTrocas:
		f.Fields["qtd_trocas"] = itoa(v.QtdTrocas)
	case *VerificacaoTP:
		f.Fields["qtd_conformes"] = itoa(v.QtdConformes)
		f.Fields["qtd_verificados"] = itoa(v.QtdVerificados)
		f.Fields["qtd_total_equipe"] = itoa(v.QtdTotalEquipe)
	case *HigienizacaoTP:
		f.Fields["qtd_higienizados_mes"] = itoa(v.QtdHigienizadosMes)
		f.Fields["qtd_total_sci"] = itoa(v.QtdTotalSCI)
	case *Generic:
		return flattenGeneric(v)
	}

	if obs := observacoes(p); obs != "" {
		f.Fields["observacoes"] = obs
	}
	return f
}

func flattenGeneric(g *Generic) Flat {
	f := Flat{Fields: map[string]string{}}
	for _, key := range listKeys {
		if list, ok := g.Fields[key].([]any); ok {
			f.ListKey = key
			for _, raw := range list {
				obj, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				item := map[string]string{}
				for k, val := range obj {
					if val != nil {
						item[k] = formatAny(val)
					}
				}
				f.Items = append(f.Items, item)
			}
			break
		}
	}
	for k, val := range g.Fields {
		if k == f.ListKey || val == nil {
			continue
		}
		if _, isList := val.([]any); isList && f.ListKey == "" {
			continue
		}
		f.Fields[k] = formatAny(val)
	}
	return f
}

// Names returns the people named in list payloads: evaluated firefighters,
// trainees, drivers and EPI recipients.
func Names(p Payload) []string {
	var names []string
	switch v := p.(type) {
	case *TAF:
		for _, a := range v.Avaliados {
			names = append(names, a.Nome)
		}
	case *ProvaTeorica:
		for _, a := range v.Avaliados {
			names = append(names, a.Nome)
		}
	case *TempoTPEPR:
		for _, a := range v.Avaliados {
			names = append(names, a.Nome)
		}
	case *Treinamento:
		for _, part := range v.Participantes {
			names = append(names, part.Nome)
		}
	case *TempoResposta:
		for _, a := range v.Afericoes {
			names = append(names, a.Motorista)
		}
	case *ControleEPI:
		for _, c := range v.Colaboradores {
			names = append(names, c.Nome)
		}
	case *Generic:
		for _, key := range []string{KeyAvaliados, KeyParticipantes, KeyAfericoes, KeyColaboradores} {
			list, _ := v.Fields[key].([]any)
			for _, raw := range list {
				obj, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				if n, ok := obj["nome"].(string); ok && n != "" {
					names = append(names, n)
				} else if n, ok := obj["motorista"].(string); ok {
					names = append(names, n)
				}
			}
		}
	}
	return names
}

func observacoes(p Payload) string {
	type withCommon interface{ common() Common }
	if c, ok := p.(withCommon); ok {
		return c.common().Observacoes
	}
	return ""
}

func (c Common) common() Common { return c }

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatAny(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return ftoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
