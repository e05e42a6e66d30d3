package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/medmais/sistema-indicadores/internal/domain"
)

type countingLoader struct {
	mu            sync.Mutex
	calls         int
	invalidations int
	// stale is true between an invalidation and the next bases read.
	stale bool
	warm  chan struct{}
}

func (l *countingLoader) Invalidate(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidations++
	l.stale = true
	return nil
}

func (l *countingLoader) Bases(context.Context) ([]domain.Base, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stale {
		return nil, errors.New("read before invalidate")
	}
	l.stale = false
	l.calls++
	return nil, nil
}

func (l *countingLoader) Equipes(context.Context) ([]domain.Equipe, error) {
	return nil, errors.New("redis down")
}

func (l *countingLoader) Indicadores(context.Context) ([]domain.IndicadorConfig, error) {
	l.warm <- struct{}{}
	return nil, nil
}

func (l *countingLoader) count() (reads, invalidations int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls, l.invalidations
}

func TestCacheWarmerReloadsOnEveryTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := clockwork.NewFakeClock()
	loader := &countingLoader{warm: make(chan struct{})}
	w := NewCacheWarmer(loader, time.Minute, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	<-loader.warm
	reads, invalidations := loader.count()
	assert.Equal(t, 1, reads)
	assert.Equal(t, 1, invalidations)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	<-loader.warm
	reads, invalidations = loader.count()
	assert.Equal(t, 2, reads)
	assert.Equal(t, 2, invalidations)

	cancel()
	<-done
}

func TestCacheWarmerDisabled(t *testing.T) {
	w := NewCacheWarmer(&countingLoader{}, 0, nil, nil)
	w.Run(context.Background())
}
