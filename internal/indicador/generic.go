package indicador

import (
	"encoding/json"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// Generic holds stored content that does not match its typed payload, such
// as rows written before a form changed. It is read-only.
type Generic struct {
	Type   domain.SchemaType
	Fields map[string]any
}

// NewGeneric wraps raw content. Non-object content yields an empty field set.
func NewGeneric(schemaType domain.SchemaType, raw json.RawMessage) *Generic {
	fields := map[string]any{}
	_ = json.Unmarshal(raw, &fields)
	if fields == nil {
		fields = map[string]any{}
	}
	return &Generic{Type: schemaType, Fields: fields}
}

func (g *Generic) SchemaType() domain.SchemaType { return g.Type }
func (*Generic) Classify()                       {}
func (*Generic) Validate() error                 { return nil }

// MarshalJSON keeps the original object shape.
func (g *Generic) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Fields)
}
