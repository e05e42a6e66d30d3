// Package analytics aggregates indicator submissions into dashboard figures.
package analytics

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/indicador"
)

// Entry is a submission with its decoded content.
type Entry struct {
	Lancamento domain.Lancamento
	SchemaType domain.SchemaType
	Payload    indicador.Payload
}

// Month returns the "YYYY-MM" key of the entry, or "" when its date is invalid.
func (e Entry) Month() string {
	t, err := time.Parse(domain.DateLayout, e.Lancamento.DataReferencia)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// Entries decodes submissions using the schema type of their indicator.
// Submissions of unknown indicators are dropped.
func Entries(lancamentos []domain.Lancamento, indicadores []domain.IndicadorConfig) []Entry {
	schemas := make(map[string]domain.SchemaType, len(indicadores))
	for _, ind := range indicadores {
		schemas[ind.ID] = ind.SchemaType
	}
	out := make([]Entry, 0, len(lancamentos))
	for _, l := range lancamentos {
		st, ok := schemas[l.IndicadorID]
		if !ok {
			continue
		}
		out = append(out, Entry{Lancamento: l, SchemaType: st, Payload: indicador.DecodeLenient(st, l.Conteudo)})
	}
	return out
}

// Group is a labelled bucket of entries.
type Group struct {
	Key     string
	Entries []Entry
}

// GroupByMonth buckets entries by "YYYY-MM" in chronological order.
// Entries with invalid dates are skipped.
func GroupByMonth(entries []Entry) []Group {
	return group(entries, func(e Entry) string { return e.Month() })
}

// GroupByBase buckets entries by base name, falling back to the id.
func GroupByBase(entries []Entry, names map[string]string) []Group {
	return group(entries, func(e Entry) string { return nameOr(names, e.Lancamento.BaseID) })
}

// GroupByEquipe buckets entries by team name, falling back to the id.
func GroupByEquipe(entries []Entry, names map[string]string) []Group {
	return group(entries, func(e Entry) string { return nameOr(names, e.Lancamento.EquipeID) })
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

func group(entries []Entry, keyOf func(Entry) string) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, e := range entries {
		k := keyOf(e)
		if k == "" {
			continue
		}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// FilterByColaborador keeps entries naming someone whose name contains nome,
// ignoring case and accents. An empty nome keeps everything.
func FilterByColaborador(entries []Entry, nome string) []Entry {
	needle := Fold(nome)
	if needle == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		for _, n := range indicador.Names(e.Payload) {
			if strings.Contains(Fold(n), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Fold strips accents and case so "JOSÉ" and "jose" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func nameMatches(name, needle string) bool {
	return needle == "" || strings.Contains(Fold(name), needle)
}
