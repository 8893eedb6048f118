package goroutine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RejectsWhenFull(t *testing.T) {
	g := NewManager(2)
	release := make(chan struct{})
	block := func(context.Context) error { <-release; return nil }

	require.True(t, g.Go(context.Background(), block))
	require.True(t, g.Go(context.Background(), block))
	assert.False(t, g.Go(context.Background(), block), "pool is full")
	assert.Equal(t, 2, g.Capacity())
	assert.Equal(t, 2, g.Running())

	close(release)
	require.NoError(t, g.Wait())
	assert.Zero(t, g.Running())
}

func TestManager_WaitCollectsErrors(t *testing.T) {
	g := NewManager(4)
	errBoom := errors.New("boom")

	require.True(t, g.Go(context.Background(), func(context.Context) error { return errBoom }))
	require.True(t, g.Go(context.Background(), func(context.Context) error { panic("kaboom") }))
	require.True(t, g.Go(context.Background(), func(context.Context) error { return nil }))

	err := g.Wait()
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestManager_ClosedAfterWait(t *testing.T) {
	g := NewManager(1)
	require.NoError(t, g.Wait())

	assert.False(t, g.Go(context.Background(), func(context.Context) error { return nil }))
}

func TestManager_CanceledContext(t *testing.T) {
	g := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	require.True(t, g.Go(ctx, func(context.Context) error { ran = true; return nil }))
	require.NoError(t, g.Wait())
	assert.False(t, ran)
}

func TestManager_Nil(t *testing.T) {
	var g *Manager

	assert.False(t, g.Go(context.Background(), func(context.Context) error { return nil }))
	assert.Zero(t, g.Running())
	assert.Zero(t, g.Capacity())
	assert.NoError(t, g.Wait())
}

func TestNewManager_Default(t *testing.T) {
	assert.Positive(t, NewManager(0).Capacity())
}
