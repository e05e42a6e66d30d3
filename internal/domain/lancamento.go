package domain

import (
	"encoding/json"
	"time"
)

// DateLayout is the storage format of reference dates.
const DateLayout = "2006-01-02"

// Lancamento is one indicator submission.
type Lancamento struct {
	ID             string
	DataReferencia string
	BaseID         string
	EquipeID       string
	UserID         string
	IndicadorID    string
	Conteudo       json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LancamentoFilter narrows a submission listing. Empty fields do not filter.
type LancamentoFilter struct {
	DataInicio  string
	DataFim     string
	BaseID      string
	EquipeID    string
	UserID      string
	IndicadorID string
	Limit       int
	Offset      int
}
