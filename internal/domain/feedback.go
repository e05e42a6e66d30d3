package domain

import "time"

// FeedbackTipo classifies a support message.
type FeedbackTipo string

const (
	FeedbackBug      FeedbackTipo = "bug"
	FeedbackSugestao FeedbackTipo = "sugestao"
	FeedbackOutros   FeedbackTipo = "outros"
)

func (t FeedbackTipo) Valid() bool {
	switch t {
	case FeedbackBug, FeedbackSugestao, FeedbackOutros:
		return true
	}
	return false
}

// FeedbackStatus tracks support handling.
type FeedbackStatus string

const (
	FeedbackPendente    FeedbackStatus = "pendente"
	FeedbackEmAndamento FeedbackStatus = "em_andamento"
	FeedbackResolvido   FeedbackStatus = "resolvido"
	FeedbackFechado     FeedbackStatus = "fechado"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackPendente, FeedbackEmAndamento, FeedbackResolvido, FeedbackFechado:
		return true
	}
	return false
}

// Feedback is a user support message.
type Feedback struct {
	ID              string
	UserID          string
	Tipo            FeedbackTipo
	Mensagem        string
	Status          FeedbackStatus
	TratativaTipo   *string
	RespostaSuporte *string
	CreatedAt       time.Time
}
