package storefront

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	var calls atomic.Int32
	var mu sync.Mutex
	last := -1
	done := make(chan struct{}, 5)

	for i := 0; i < 5; i++ {
		v := i
		d.Trigger(func() {
			calls.Add(1)
			mu.Lock()
			last = v
			mu.Unlock()
			done <- struct{}{}
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	mu.Lock()
	assert.Equal(t, 4, last)
	mu.Unlock()
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncerStopAfterTimerFired(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })

	// the timer fires while the lock is held and its callback blocks
	d.mu.Lock()
	time.Sleep(50 * time.Millisecond)
	d.stopLocked()
	d.mu.Unlock()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestGeneration(t *testing.T) {
	var g Generation
	a := g.Next()
	assert.True(t, g.Current(a))
	b := g.Next()
	assert.False(t, g.Current(a))
	assert.True(t, g.Current(b))
}
