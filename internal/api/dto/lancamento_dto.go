package dto

import (
	"encoding/json"
	"time"
)

// SaveLancamentoRequest payload for POST /lancamentos and PUT /lancamentos/:id.
type SaveLancamentoRequest struct {
	DataReferencia string          `json:"data_referencia"`
	IndicadorID    string          `json:"indicador_id"`
	BaseID         string          `json:"base_id"`
	EquipeID       string          `json:"equipe_id"`
	Conteudo       json.RawMessage `json:"conteudo"`
}

// LancamentoResponse is one submission.
type LancamentoResponse struct {
	ID             string          `json:"id"`
	DataReferencia string          `json:"data_referencia"`
	BaseID         string          `json:"base_id"`
	EquipeID       string          `json:"equipe_id"`
	UserID         string          `json:"user_id"`
	IndicadorID    string          `json:"indicador_id"`
	Conteudo       json.RawMessage `json:"conteudo"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LancamentoListResponse carries a page and the range actually applied.
type LancamentoListResponse struct {
	Items      []LancamentoResponse `json:"items"`
	DataInicio string               `json:"data_inicio"`
	DataFim    string               `json:"data_fim"`
}
