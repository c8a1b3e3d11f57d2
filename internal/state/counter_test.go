package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounterAwaitZeroReturnsImmediately(t *testing.T) {
	c := NewCounter()

	done := make(chan struct{})
	go func() {
		c.AwaitZero()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitZero blocked on an empty counter")
	}
}

func TestCounterAwaitZeroWaitsForMatchingDecrements(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		c := NewCounter()
		for i := 0; i < n; i++ {
			c.Increment()
		}

		done := make(chan struct{})
		go func() {
			c.AwaitZero()
			close(done)
		}()

		for i := 0; i < n-1; i++ {
			c.Decrement()
		}

		select {
		case <-done:
			t.Fatalf("n=%d: AwaitZero returned with %d outstanding", n, c.Value())
		case <-time.After(20 * time.Millisecond):
		}

		c.Decrement()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("n=%d: AwaitZero did not return after the last decrement", n)
		}
		assert.Equal(t, 0, c.Value())
	}
}

func TestCounterConcurrentWorkers(t *testing.T) {
	c := NewCounter()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		c.Increment()
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			c.Decrement()
		}()
	}

	c.AwaitZero()
	assert.Equal(t, 0, c.Value())
	wg.Wait()
}

func TestCounterDecrementBelowZeroPanics(t *testing.T) {
	c := NewCounter()
	assert.Panics(t, func() { c.Decrement() })
}
