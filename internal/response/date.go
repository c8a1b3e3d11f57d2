package response

import (
	"sync"
	"time"
)

// DateFormat is RFC 1123 with a fixed GMT zone.
const DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// DateCache holds the formatted Date header for the current second.
type DateCache struct {
	mu        sync.RWMutex
	second    time.Time
	formatted string

	now    func() time.Time
	format func(time.Time) string
}

func NewDateCache() *DateCache {
	return &DateCache{
		now:    time.Now,
		format: func(t time.Time) string { return t.Format(DateFormat) },
	}
}

// Value returns the Date header value, formatting at most once per second.
func (c *DateCache) Value() string {
	now := c.now().UTC().Truncate(time.Second)

	c.mu.RLock()
	if c.formatted != "" && c.second.Equal(now) {
		v := c.formatted
		c.mu.RUnlock()
		return v
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.formatted != "" && c.second.Equal(now) {
		return c.formatted
	}
	c.second = now
	c.formatted = c.format(now)
	return c.formatted
}
