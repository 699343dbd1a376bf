/*
Package game
File: clock.go
Description:
    Time sources. RealClock reads the wall clock; ManualClock is advanced
    by hand so ticks and offline gaps can be replayed exactly.
*/

package game

import (
	"sync"
	"time"
)

// Clock is the engine's only source of time. Ticks, offline progress and
// save timestamps all read from it.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Tests drive ticks and offline gaps with it.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
