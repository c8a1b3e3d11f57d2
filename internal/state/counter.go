package state

import "sync"

// Counter tracks live connection workers so shutdown can wait for them.
type Counter struct {
	mu     sync.Mutex
	isZero *sync.Cond
	value  int
}

func NewCounter() *Counter {
	c := &Counter{}
	c.isZero = sync.NewCond(&c.mu)
	return c
}

// Increment records one more worker.
func (c *Counter) Increment() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}

// Decrement records a finished worker and wakes waiters when none remain.
func (c *Counter) Decrement() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value == 0 {
		panic("state: counter decremented below zero")
	}

	c.value--
	if c.value == 0 {
		c.isZero.Broadcast()
	}
}

// AwaitZero blocks while the count is above zero.
func (c *Counter) AwaitZero() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.value > 0 {
		c.isZero.Wait()
	}
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
