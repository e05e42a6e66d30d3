package dto

import (
	"time"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// NomeRequest is the body of base and equipe writes.
type NomeRequest struct {
	Nome string `json:"nome"`
}

// ColaboradorRequest payload for single colaborador writes.
type ColaboradorRequest struct {
	Nome   string `json:"nome"`
	BaseID string `json:"base_id"`
	Ativo  *bool  `json:"ativo"`
}

// ColaboradoresBatchRequest registers many names at one base.
type ColaboradoresBatchRequest struct {
	BaseID string   `json:"base_id"`
	Nomes  []string `json:"nomes"`
}

type BaseResponse struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	CreatedAt time.Time `json:"created_at"`
}

type EquipeResponse struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	CreatedAt time.Time `json:"created_at"`
}

type ColaboradorResponse struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	BaseID    string    `json:"base_id"`
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"created_at"`
}

type IndicadorResponse struct {
	ID         string            `json:"id"`
	Nome       string            `json:"nome"`
	SchemaType domain.SchemaType `json:"schema_type"`
}

// FeedbackRequest payload for POST /feedbacks.
type FeedbackRequest struct {
	Tipo     domain.FeedbackTipo `json:"tipo"`
	Mensagem string              `json:"mensagem"`
}

// FeedbackUpdateRequest payload for PATCH /feedbacks/:id.
type FeedbackUpdateRequest struct {
	Status          *domain.FeedbackStatus `json:"status"`
	TratativaTipo   *string                `json:"tratativa_tipo"`
	RespostaSuporte *string                `json:"resposta_suporte"`
}

type FeedbackResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	Tipo            domain.FeedbackTipo   `json:"tipo"`
	Mensagem        string                `json:"mensagem"`
	Status          domain.FeedbackStatus `json:"status"`
	TratativaTipo   *string               `json:"tratativa_tipo"`
	RespostaSuporte *string               `json:"resposta_suporte"`
	CreatedAt       time.Time             `json:"created_at"`
}
