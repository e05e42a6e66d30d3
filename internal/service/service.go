package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/events"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// SaveTimeoutMessage is returned when a save outlives the timeout guard.
const SaveTimeoutMessage = "A requisição demorou muito. Verifique sua conexão e tente novamente."

// publisher stamps and publishes domain events. Handler failures are logged
// and never fail the operation that produced the event.
type publisher struct {
	dispatcher events.Dispatcher
	clock      clockwork.Clock
	logger     *zap.Logger
}

func newPublisher(dispatcher events.Dispatcher, clock clockwork.Clock, logger *zap.Logger) publisher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, clock: clock, logger: logger}
}

func (p publisher) publish(ctx context.Context, t events.EventType, subjectID, actorID string, payload any) {
	if p.dispatcher == nil {
		return
	}
	event := events.New(t, subjectID, actorID, p.clock.Now(), payload)
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed",
			zap.String("event_type", string(t)),
			zap.String("subject_id", subjectID),
			zap.Error(err))
	}
}

// errTimedOut marks a guarded call whose deadline fired first.
var errTimedOut = errors.New("operation timed out")

// withTimeout runs fn and returns whatever finishes first: fn or the timer.
// fn receives a context that is cancelled when the timer fires, so it can
// stop its own work. A cancelled parent context is reported as is.
func withTimeout[T any](ctx context.Context, clock clockwork.Clock, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.value, r.err
	case <-timer.Chan():
		return zero, errTimedOut
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// mapSaveError turns storage failures into what the caller should see:
// session problems ask for a new login, everything else keeps its mapping.
func mapSaveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errTimedOut) {
		return apperrors.NewTimeout(SaveTimeoutMessage)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == apperrors.CodeUnauthorized {
			return apperrors.NewSessionExpired()
		}
		return domainErr
	}
	if apperrors.IsSessionExpired(err) {
		return apperrors.NewSessionExpired()
	}
	return apperrors.MapError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
