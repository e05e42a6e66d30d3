package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// InactivityWindowDays is how long a user may go without submitting before
// being listed as inactive.
const InactivityWindowDays = 30

// DailyStatus is the adherence state of a group A indicator.
type DailyStatus string

const (
	DailyOK       DailyStatus = "ok"
	DailyPendente DailyStatus = "pendente"
	DailyAtrasado DailyStatus = "atrasado"
)

// MonthlyStatus is the adherence state of the group C goal.
type MonthlyStatus string

const (
	MonthlyCompliant    MonthlyStatus = "compliant"
	MonthlyNonCompliant MonthlyStatus = "non-compliant"
	MonthlyPending      MonthlyStatus = "pending"
)

// Snapshot is the data an evaluation runs over. Lancamentos must cover the
// selected month and the inactivity window.
type Snapshot struct {
	Bases       []domain.Base
	Indicadores []domain.IndicadorConfig
	Profiles    []domain.Profile
	Lancamentos []domain.Lancamento
}

type DailyItem struct {
	SchemaType       domain.SchemaType `json:"schema_type"`
	Nome             string            `json:"nome"`
	Status           DailyStatus       `json:"status"`
	UltimoLancamento string            `json:"ultimo_lancamento,omitempty"`
}

type EventItem struct {
	SchemaType       domain.SchemaType `json:"schema_type"`
	Nome             string            `json:"nome"`
	UltimaOcorrencia string            `json:"ultima_ocorrencia,omitempty"`
}

type MonthlySummary struct {
	Entregues int           `json:"entregues"`
	Total     int           `json:"total"`
	Faltantes []string      `json:"faltantes"`
	Status    MonthlyStatus `json:"status"`
}

// BaseStatus is the adherence picture of one base.
type BaseStatus struct {
	BaseID   string         `json:"base_id"`
	BaseNome string         `json:"base_nome"`
	GrupoA   []DailyItem    `json:"grupo_a"`
	GrupoB   []EventItem    `json:"grupo_b"`
	GrupoC   MonthlySummary `json:"grupo_c"`
}

type InactiveUser struct {
	ProfileID        string      `json:"profile_id"`
	Nome             string      `json:"nome"`
	Role             domain.Role `json:"role"`
	BaseID           string      `json:"base_id,omitempty"`
	UltimoLancamento string      `json:"ultimo_lancamento,omitempty"`
}

// Report is the full adherence dashboard.
type Report struct {
	Mes              string         `json:"mes"`
	Hoje             string         `json:"hoje"`
	Bases            []BaseStatus   `json:"bases"`
	UsuariosInativos []InactiveUser `json:"usuarios_inativos"`
}

// Evaluator computes adherence reports relative to the clock's current day.
type Evaluator struct {
	clock clockwork.Clock
	loc   *time.Location
}

// NewEvaluator builds an evaluator. A nil clock uses real time, a nil location UTC.
func NewEvaluator(clock clockwork.Clock, loc *time.Location) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{clock: clock, loc: loc}
}

// Today returns the evaluator's current date at midnight.
func (e *Evaluator) Today() time.Time {
	now := e.clock.Now().In(e.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
}

// ParseMonth parses "YYYY-MM" into the first day of that month. Empty input
// selects the current month.
func (e *Evaluator) ParseMonth(mes string) (time.Time, error) {
	if mes == "" {
		today := e.Today()
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, e.loc), nil
	}
	t, err := time.ParseInLocation("2006-01", mes, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", mes)
	}
	return t, nil
}

// Evaluate builds the adherence report for the month starting at monthStart.
func (e *Evaluator) Evaluate(monthStart time.Time, snap Snapshot) Report {
	today := e.Today()
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, e.loc)
	monthEnd := monthStart.AddDate(0, 1, -1)
	currentMonthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, e.loc)
	monthClosed := monthStart.Before(currentMonthStart)

	schemaByIndicador := make(map[string]domain.SchemaType, len(snap.Indicadores))
	configBySchema := make(map[domain.SchemaType]domain.IndicadorConfig, len(snap.Indicadores))
	for _, ind := range snap.Indicadores {
		schemaByIndicador[ind.ID] = ind.SchemaType
		configBySchema[ind.SchemaType] = ind
	}

	type key struct {
		base   string
		schema domain.SchemaType
	}
	latest := make(map[key]time.Time)
	inMonth := make(map[key]bool)
	latestByUser := make(map[string]time.Time)

	for _, l := range snap.Lancamentos {
		day, err := time.ParseInLocation(domain.DateLayout, l.DataReferencia, e.loc)
		if err != nil {
			continue
		}
		if prev, ok := latestByUser[l.UserID]; !ok || day.After(prev) {
			latestByUser[l.UserID] = day
		}
		schema, ok := schemaByIndicador[l.IndicadorID]
		if !ok {
			continue
		}
		k := key{l.BaseID, schema}
		if prev, ok := latest[k]; !ok || day.After(prev) {
			latest[k] = day
		}
		if !day.Before(monthStart) && !day.After(monthEnd) {
			inMonth[k] = true
		}
	}

	report := Report{
		Mes:  monthStart.Format("2006-01"),
		Hoje: today.Format(domain.DateLayout),
	}

	for _, base := range snap.Bases {
		status := BaseStatus{BaseID: base.ID, BaseNome: base.Nome}

		for _, rule := range RulesByGroup(GroupA) {
			item := DailyItem{SchemaType: rule.SchemaType, Nome: rule.Nome, Status: DailyAtrasado}
			if last, ok := latest[key{base.ID, rule.SchemaType}]; ok {
				item.UltimoLancamento = last.Format(domain.DateLayout)
				item.Status = dailyStatus(daysBetween(last, today))
			}
			status.GrupoA = append(status.GrupoA, item)
		}

		for _, rule := range RulesByGroup(GroupB) {
			item := EventItem{SchemaType: rule.SchemaType, Nome: rule.Nome}
			if last, ok := latest[key{base.ID, rule.SchemaType}]; ok {
				item.UltimaOcorrencia = last.Format(domain.DateLayout)
			}
			status.GrupoB = append(status.GrupoB, item)
		}

		groupC := RulesByGroup(GroupC)
		summary := MonthlySummary{Total: len(groupC), Faltantes: []string{}}
		for _, rule := range groupC {
			if _, configured := configBySchema[rule.SchemaType]; !configured {
				continue
			}
			if inMonth[key{base.ID, rule.SchemaType}] {
				summary.Entregues++
			} else {
				summary.Faltantes = append(summary.Faltantes, rule.Nome)
			}
		}
		switch {
		case summary.Entregues >= summary.Total:
			summary.Status = MonthlyCompliant
		case monthClosed:
			summary.Status = MonthlyNonCompliant
		default:
			summary.Status = MonthlyPending
		}
		status.GrupoC = summary

		report.Bases = append(report.Bases, status)
	}
	sort.SliceStable(report.Bases, func(i, j int) bool { return report.Bases[i].BaseNome < report.Bases[j].BaseNome })

	report.UsuariosInativos = e.inactiveUsers(snap.Profiles, latestByUser, today)
	return report
}

func (e *Evaluator) inactiveUsers(profiles []domain.Profile, latestByUser map[string]time.Time, today time.Time) []InactiveUser {
	cutoff := today.AddDate(0, 0, -InactivityWindowDays)
	out := []InactiveUser{}
	for _, p := range profiles {
		if p.Role == domain.RoleGeral {
			continue
		}
		last, ok := latestByUser[p.ID]
		if ok && !last.Before(cutoff) {
			continue
		}
		u := InactiveUser{ProfileID: p.ID, Nome: p.Nome, Role: p.Role, BaseID: p.BaseIDValue()}
		if ok {
			u.UltimoLancamento = last.Format(domain.DateLayout)
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out
}

// dailyStatus maps the days since the last submission to a status. A
// submission dated in the future does not count as today's and stays pending.
func dailyStatus(days int) DailyStatus {
	switch {
	case days == 0:
		return DailyOK
	case days == 1, days < 0:
		return DailyPendente
	default:
		return DailyAtrasado
	}
}

// daysBetween counts calendar days from a to b, both at local midnight.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
