// Package indicador defines the typed content of each indicator submission.
//
// Every schema type has its own payload struct. Decode picks the struct from
// the schema type, Validate enforces the form rules, and Classify fills the
// derived status fields so they are computed server side and never trusted
// from the client.
package indicador

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// Payload is the content of one submission.
type Payload interface {
	SchemaType() domain.SchemaType
	Validate() error
	Classify()
}

// Common carries fields accepted by every form.
type Common struct {
	Observacoes string `json:"observacoes,omitempty"`
}

// New returns an empty payload for the schema type.
func New(schemaType domain.SchemaType) (Payload, error) {
	switch schemaType {
	case domain.SchemaOcorrenciaAero:
		return &OcorrenciaAero{}, nil
	case domain.SchemaOcorrenciaNaoAero:
		return &OcorrenciaNaoAero{}, nil
	case domain.SchemaAtividadesAcessorias:
		return &AtividadesAcessorias{}, nil
	case domain.SchemaTAF:
		return &TAF{}, nil
	case domain.SchemaProvaTeorica:
		return &ProvaTeorica{}, nil
	case domain.SchemaTreinamento:
		return &Treinamento{}, nil
	case domain.SchemaTempoTPEPR:
		return &TempoTPEPR{}, nil
	case domain.SchemaTempoResposta:
		return &TempoResposta{}, nil
	case domain.SchemaInspecaoViaturas:
		return &InspecaoViaturas{}, nil
	case domain.SchemaEstoque:
		return &Estoque{}, nil
	case domain.SchemaControleEPI:
		return &ControleEPI{}, nil
	case domain.SchemaControleTrocas:
		return &ControleTrocas{}, nil
	case domain.SchemaVerificacaoTP:
		return &VerificacaoTP{}, nil
	case domain.SchemaHigienizacaoTP:
		return &HigienizacaoTP{}, nil
	}
	return nil, errorutil.NewValidationError("tipo de indicador desconhecido", map[string]any{"schema_type": string(schemaType)})
}

// Decode parses raw JSON into the payload of schemaType.
func Decode(schemaType domain.SchemaType, raw json.RawMessage) (Payload, error) {
	p, err := New(schemaType)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errorutil.NewValidationError("conteúdo do lançamento é obrigatório", nil)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, errorutil.NewValidationError("conteúdo inválido para o indicador", map[string]any{
			"schema_type": string(schemaType),
			"reason":      err.Error(),
		})
	}
	return p, nil
}

// DecodeLenient decodes stored content for reading. Content that does not fit
// its typed payload, or has an unknown schema type, comes back as Generic.
func DecodeLenient(schemaType domain.SchemaType, raw json.RawMessage) Payload {
	if p, err := Decode(schemaType, raw); err == nil {
		return p
	}
	return NewGeneric(schemaType, raw)
}

// Prepare decodes, classifies and validates client content, returning the
// normalised JSON to store.
func Prepare(schemaType domain.SchemaType, raw json.RawMessage) (Payload, json.RawMessage, error) {
	p, err := Decode(schemaType, raw)
	if err != nil {
		return nil, nil, err
	}
	p.Classify()
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	out, err := json.Marshal(p)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s payload: %w", schemaType, err)
	}
	return p, out, nil
}

// problems collects form validation messages.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err(schemaType domain.SchemaType) error {
	if len(p) == 0 {
		return nil
	}
	return errorutil.NewValidationError(strings.Join(p, "; "), map[string]any{
		"schema_type": string(schemaType),
		"problems":    []string(p),
	})
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
