package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickstats/internal/domain"
)

func TestMemoryCacheLastTick(t *testing.T) {
	m := NewMemoryCache(time.Minute)
	defer m.Close()
	ctx := context.Background()

	_, err := m.GetLatest(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNotFound)

	first := domain.Tick{Instrument: "AAPL", Price: 100, Timestamp: 1000}
	second := domain.Tick{Instrument: "AAPL", Price: 101, Timestamp: 2000}
	require.NoError(t, m.PushTick(ctx, first))
	require.NoError(t, m.PushTick(ctx, second))

	got, err := m.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestMemoryCachePerInstrument(t *testing.T) {
	m := NewMemoryCache(time.Minute)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.PushTick(ctx, domain.Tick{Instrument: "A", Price: 1, Timestamp: 1}))
	require.NoError(t, m.PushTick(ctx, domain.Tick{Instrument: "B", Price: 2, Timestamp: 1}))

	a, err := m.GetLatest(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.Price)

	b, err := m.GetLatest(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, 2.0, b.Price)
}

func TestMemoryCacheHealth(t *testing.T) {
	m := NewMemoryCache(time.Minute)
	defer m.Close()
	assert.NoError(t, m.Health(context.Background()))
}
