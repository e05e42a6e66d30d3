package service

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/events"
	"github.com/medmais/sistema-indicadores/internal/repository"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// FeedbackService handles support messages.
type FeedbackService struct {
	feedbacks repository.FeedbackRepository
	events    publisher
}

// FeedbackDependencies bundles what FeedbackService needs.
type FeedbackDependencies struct {
	FeedbackRepo repository.FeedbackRepository
	Dispatcher   events.Dispatcher
	Clock        clockwork.Clock
	Logger       *zap.Logger
}

// FeedbackUpdate is the support side of a feedback. Nil fields are kept.
type FeedbackUpdate struct {
	Status          *domain.FeedbackStatus
	TratativaTipo   *string
	RespostaSuporte *string
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{
		feedbacks: deps.FeedbackRepo,
		events:    newPublisher(deps.Dispatcher, deps.Clock, deps.Logger),
	}
}

// Create records a message from actor. New messages are always pending.
func (s *FeedbackService) Create(ctx context.Context, actor domain.Profile, tipo domain.FeedbackTipo, mensagem string) (*domain.Feedback, error) {
	mensagem = strings.TrimSpace(mensagem)
	if !tipo.Valid() {
		return nil, apperrors.NewValidationError("tipo de feedback inválido", map[string]any{"tipo": string(tipo)})
	}
	if mensagem == "" {
		return nil, apperrors.NewValidationError("mensagem é obrigatória", nil)
	}
	f := &domain.Feedback{UserID: actor.ID, Tipo: tipo, Mensagem: mensagem, Status: domain.FeedbackPendente}
	if err := s.feedbacks.Create(ctx, f); err != nil {
		return nil, err
	}
	s.events.publish(ctx, events.EventFeedbackCreated, f.ID, actor.ID, events.FeedbackPayload{
		Tipo:    f.Tipo,
		Preview: stringPreview(f.Mensagem, 120),
	})
	return f, nil
}

// List returns every message for geral and only their own for anyone else.
func (s *FeedbackService) List(ctx context.Context, actor domain.Profile, status domain.FeedbackStatus) ([]domain.Feedback, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status inválido", map[string]any{"status": string(status)})
	}
	filter := repository.FeedbackFilter{Status: status}
	if actor.Role != domain.RoleGeral {
		filter.UserID = actor.ID
	}
	return s.feedbacks.List(ctx, filter)
}

// Update records the support handling of a message.
func (s *FeedbackService) Update(ctx context.Context, id string, in FeedbackUpdate) (*domain.Feedback, error) {
	f, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.NewValidationError("status inválido", map[string]any{"status": string(*in.Status)})
		}
		f.Status = *in.Status
	}
	if in.TratativaTipo != nil {
		f.TratativaTipo = trimmedPtr(in.TratativaTipo)
	}
	if in.RespostaSuporte != nil {
		f.RespostaSuporte = trimmedPtr(in.RespostaSuporte)
	}
	if err := s.feedbacks.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
