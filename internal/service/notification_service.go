package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/cache"
	"github.com/medmais/sistema-indicadores/internal/events"
)

// NotificationService reacts to domain events: it drops cached reference
// tables when they change and logs every notable event.
type NotificationService struct {
	dispatcher events.Dispatcher
	cache      cache.Cache
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, c cache.Cache, logger *zap.Logger) *NotificationService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		cache:      c,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReferenceChanged, n.handleReferenceChanged)
	n.dispatcher.Subscribe(events.EventLancamentoSaved, n.handleLancamento)
	n.dispatcher.Subscribe(events.EventLancamentoDeleted, n.handleLancamento)
	n.dispatcher.Subscribe(events.EventUserChanged, n.handleUserChanged)
	n.dispatcher.Subscribe(events.EventFeedbackCreated, n.handleFeedbackCreated)
}

func (n *NotificationService) handleReferenceChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ReferenceChanged", zap.String("subject_id", event.SubjectID), zap.Any("payload", event.Payload))
	return n.cache.Delete(ctx, cache.ReferenceKeys...)
}

func (n *NotificationService) handleLancamento(_ context.Context, event events.Event) error {
	n.logger.Info("Lancamento",
		zap.String("event_type", string(event.Type)),
		zap.String("lancamento_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleUserChanged(_ context.Context, event events.Event) error {
	n.logger.Info("UserChanged",
		zap.String("profile_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleFeedbackCreated(_ context.Context, event events.Event) error {
	n.logger.Info("FeedbackCreated", zap.String("feedback_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}
