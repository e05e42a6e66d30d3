// Package compliance holds the fixed submission-frequency rules of every
// indicator and evaluates per-base adherence against them.
package compliance

import "github.com/medmais/sistema-indicadores/internal/domain"

// Group is a compliance bucket.
type Group string

const (
	GroupA Group = "A" // daily, mandatory
	GroupB Group = "B" // event driven, no deadline
	GroupC Group = "C" // monthly, mandatory
)

// Periodicity is the expected submission cadence.
type Periodicity string

const (
	Diario   Periodicity = "diario"
	Eventual Periodicity = "eventual"
	Mensal   Periodicity = "mensal"
)

// Rule describes the expected cadence for one indicator type.
type Rule struct {
	SchemaType    domain.SchemaType `json:"schema_type" yaml:"schema_type"`
	Nome          string            `json:"nome" yaml:"nome"`
	Grupo         Group             `json:"grupo" yaml:"grupo"`
	Periodicidade Periodicity       `json:"periodicidade" yaml:"periodicidade"`
	Obrigatorio   bool              `json:"obrigatorio" yaml:"obrigatorio"`
}

var table = [...]Rule{
	{domain.SchemaAtividadesAcessorias, "Atividades Acessórias", GroupA, Diario, true},
	{domain.SchemaTreinamento, "PTR-BA - Horas treinamento diário", GroupA, Diario, true},

	{domain.SchemaOcorrenciaAero, "Ocorrência Aeronáutica", GroupB, Eventual, false},
	{domain.SchemaOcorrenciaNaoAero, "Ocorrência Não Aeronáutica", GroupB, Eventual, false},
	{domain.SchemaTAF, "Teste de Aptidão Física (TAF)", GroupB, Eventual, false},

	{domain.SchemaProvaTeorica, "Prova Teórica", GroupC, Mensal, true},
	{domain.SchemaInspecaoViaturas, "Inspeção de Viaturas", GroupC, Mensal, true},
	{domain.SchemaTempoTPEPR, "Tempo de TP/EPR", GroupC, Mensal, true},
	{domain.SchemaTempoResposta, "Tempo Resposta", GroupC, Mensal, true},
	{domain.SchemaEstoque, "Controle de Estoque", GroupC, Mensal, true},
	{domain.SchemaControleTrocas, "Controle de Trocas", GroupC, Mensal, true},
	{domain.SchemaVerificacaoTP, "Verificação de TP", GroupC, Mensal, true},
	{domain.SchemaHigienizacaoTP, "Higienização de TP", GroupC, Mensal, true},
	{domain.SchemaControleEPI, "Controle de EPI", GroupC, Mensal, true},
}

// Rules returns a copy of the whole table.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table[:])
	return out
}

// RuleFor looks up the rule of a schema type.
func RuleFor(schemaType domain.SchemaType) (Rule, bool) {
	for _, r := range table {
		if r.SchemaType == schemaType {
			return r, true
		}
	}
	return Rule{}, false
}

// RulesByGroup returns the rules of one group in table order.
func RulesByGroup(g Group) []Rule {
	var out []Rule
	for _, r := range table {
		if r.Grupo == g {
			out = append(out, r)
		}
	}
	return out
}

// IsGroupA reports whether schemaType is a daily indicator.
func IsGroupA(schemaType domain.SchemaType) bool { return inGroup(schemaType, GroupA) }

// IsGroupB reports whether schemaType is an event-driven indicator with no deadline.
func IsGroupB(schemaType domain.SchemaType) bool { return inGroup(schemaType, GroupB) }

// IsGroupC reports whether schemaType is a monthly indicator.
func IsGroupC(schemaType domain.SchemaType) bool { return inGroup(schemaType, GroupC) }

func inGroup(schemaType domain.SchemaType, g Group) bool {
	r, ok := RuleFor(schemaType)
	return ok && r.Grupo == g
}
