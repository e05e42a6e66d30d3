package domain

// SchemaType identifies the payload shape of an indicator.
type SchemaType string

const (
	SchemaOcorrenciaAero       SchemaType = "ocorrencia_aero"
	SchemaOcorrenciaNaoAero    SchemaType = "ocorrencia_nao_aero"
	SchemaAtividadesAcessorias SchemaType = "atividades_acessorias"
	SchemaTAF                  SchemaType = "taf"
	SchemaProvaTeorica         SchemaType = "prova_teorica"
	SchemaTreinamento          SchemaType = "treinamento"
	SchemaTempoTPEPR           SchemaType = "tempo_tp_epr"
	SchemaTempoResposta        SchemaType = "tempo_resposta"
	SchemaInspecaoViaturas     SchemaType = "inspecao_viaturas"
	SchemaEstoque              SchemaType = "estoque"
	SchemaControleEPI          SchemaType = "controle_epi"
	SchemaControleTrocas       SchemaType = "controle_trocas"
	SchemaVerificacaoTP        SchemaType = "verificacao_tp"
	SchemaHigienizacaoTP       SchemaType = "higienizacao_tp"
)

// AllSchemaTypes lists every known indicator type in menu order.
func AllSchemaTypes() []SchemaType {
	return []SchemaType{
		SchemaOcorrenciaAero,
		SchemaOcorrenciaNaoAero,
		SchemaAtividadesAcessorias,
		SchemaTAF,
		SchemaProvaTeorica,
		SchemaTreinamento,
		SchemaTempoTPEPR,
		SchemaTempoResposta,
		SchemaInspecaoViaturas,
		SchemaEstoque,
		SchemaControleEPI,
		SchemaControleTrocas,
		SchemaVerificacaoTP,
		SchemaHigienizacaoTP,
	}
}

// Valid reports whether s is one of the known schema types.
func (s SchemaType) Valid() bool {
	for _, known := range AllSchemaTypes() {
		if s == known {
			return true
		}
	}
	return false
}

func (s SchemaType) String() string { return string(s) }

var displayNameOverrides = map[SchemaType]string{
	SchemaTreinamento: "PTR-BA - Horas treinamento diário",
}

// DisplayName returns the label shown for an indicator, preferring the
// fixed override for the schema type over the stored name.
func DisplayName(schemaType SchemaType, storedName string) string {
	if name, ok := displayNameOverrides[schemaType]; ok {
		return name
	}
	return storedName
}
