package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mapCache is an in-process Cache used to observe Remember.
type mapCache struct {
	data    map[string][]byte
	failGet bool
}

func (m *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if m.failGet {
		return false, errors.New("boom")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *mapCache) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	m.data[key] = raw
	return err
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRememberLoadsOnceThenHits(t *testing.T) {
	c := &mapCache{data: map[string][]byte{}}
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"Alfa", "Bravo"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(context.Background(), c, zap.NewNop(), KeyEquipes, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alfa", "Bravo"}, got)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(context.Background(), ReferenceKeys...))
	_, err := Remember(context.Background(), c, zap.NewNop(), KeyEquipes, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRememberSurvivesCacheFailure(t *testing.T) {
	c := &mapCache{data: map[string][]byte{}, failGet: true}
	got, err := Remember(context.Background(), c, zap.NewNop(), KeyBases, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	_, err := Remember(context.Background(), Noop{}, zap.NewNop(), KeyBases, func(context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestNewRedisWithoutClientIsNoop(t *testing.T) {
	c := NewRedis(nil, 0, nil)
	hit, err := c.Get(context.Background(), KeyBases, new(int))
	require.NoError(t, err)
	assert.False(t, hit)
}
