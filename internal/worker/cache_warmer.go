package worker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

// ReferenceLoader reads the cached reference tables. Each read refills the
// cache entry on a miss; Invalidate drops every entry.
type ReferenceLoader interface {
	Invalidate(ctx context.Context) error
	Bases(ctx context.Context) ([]domain.Base, error)
	Equipes(ctx context.Context) ([]domain.Equipe, error)
	Indicadores(ctx context.Context) ([]domain.IndicadorConfig, error)
}

// CacheWarmer periodically drops and reloads the cached reference tables, so
// rows changed outside this process show up within one interval.
type CacheWarmer struct {
	loader   ReferenceLoader
	interval time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger
}

// NewCacheWarmer builds a warmer. A nil clock uses real time.
func NewCacheWarmer(loader ReferenceLoader, interval time.Duration, clock clockwork.Clock, logger *zap.Logger) *CacheWarmer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWarmer{loader: loader, interval: interval, clock: clock, logger: logger}
}

// Run warms once and then on every tick until ctx is done. A non-positive
// interval returns immediately.
func (w *CacheWarmer) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.warm(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			w.warm(ctx)
		}
	}
}

func (w *CacheWarmer) warm(ctx context.Context) {
	if err := w.loader.Invalidate(ctx); err != nil {
		w.logger.Warn("invalidate reference cache", zap.Error(err))
	}
	if _, err := w.loader.Bases(ctx); err != nil {
		w.logger.Warn("warm bases", zap.Error(err))
	}
	if _, err := w.loader.Equipes(ctx); err != nil {
		w.logger.Warn("warm equipes", zap.Error(err))
	}
	if _, err := w.loader.Indicadores(ctx); err != nil {
		w.logger.Warn("warm indicadores", zap.Error(err))
	}
}
