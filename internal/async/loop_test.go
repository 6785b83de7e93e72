package async

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_RunPendingFIFO(t *testing.T) {
	loop := NewLoop()
	var order []int

	loop.Post(func() {
		order = append(order, 1)
		loop.Post(func() { order = append(order, 3) })
	})
	loop.Post(func() { order = append(order, 2) })

	assert.Equal(t, 2, loop.Len())
	assert.Equal(t, 3, loop.RunPending())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, loop.Len())
}

func TestLoop_PostAfterStop(t *testing.T) {
	loop := NewLoop()
	loop.Stop()
	loop.Stop() // idempotent

	assert.False(t, loop.Post(func() {}))
	assert.False(t, NewLoop().Post(nil))
}

func TestLoop_RunUntilCondition(t *testing.T) {
	loop := NewLoop()
	count := 0
	for i := 0; i < 5; i++ {
		loop.Post(func() { count++ })
	}

	err := loop.RunUntil(context.Background(), func() bool { return count == 3 })
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, loop.Len())
}

func TestLoop_RunUntilWaitsForBackgroundPost(t *testing.T) {
	loop := NewLoop()
	done := false

	go func() {
		time.Sleep(10 * time.Millisecond)
		loop.Post(func() { done = true })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, loop.RunUntil(ctx, func() bool { return done }))
	assert.True(t, done)
}

func TestLoop_RunUntilCancelled(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := loop.RunUntil(ctx, func() bool { return false })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoop_RunUntilStopped(t *testing.T) {
	loop := NewLoop()
	loop.Stop()

	err := loop.RunUntil(context.Background(), func() bool { return false })
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestLoop_RunDrainsThenReturnsOnStop(t *testing.T) {
	loop := NewLoop()
	ran := 0
	loop.Post(func() { ran++ })
	loop.Post(func() { ran++; loop.Stop() })

	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, 2, ran)
}
