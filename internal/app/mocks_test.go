package app

import (
	"sort"
	"sync"
	"time"

	"radarwatch/clients/notifier"
)

// fakeClock is a deterministic Clock driven by Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	id      int
	at      time.Time
	period  time.Duration // 0 for one-shot timers
	fn      func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		timers: make(map[int]*fakeTimer),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, 0, f)
}

func (c *fakeClock) TickFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, d, f)
}

func (c *fakeClock) schedule(d, period time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &fakeTimer{
		clock:  c,
		id:     c.nextID,
		at:     c.now.Add(d),
		period: period,
		fn:     f,
	}
	c.timers[t.id] = t
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	delete(t.clock.timers, t.id)
	return true
}

// Advance moves the clock forward, firing due callbacks in order. Callbacks
// run outside the clock lock so they may call back into the clock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at.Equal(due[j].at) {
				return due[i].id < due[j].id
			}
			return due[i].at.Before(due[j].at)
		})
		next := due[0]
		c.now = next.at
		if next.period > 0 {
			next.at = next.at.Add(next.period)
		} else {
			next.stopped = true
			delete(c.timers, next.id)
		}
		fn := next.fn
		c.mu.Unlock()

		fn()
	}
}

// recordingSinks captures every view/player/overlay callback.
type recordingSinks struct {
	mu       sync.Mutex
	stats    []StatsView
	images   []string
	frames   []int
	states   []bool
	opened   []string
	closedCt int
}

func (rs *recordingSinks) viewSinks() ViewSinks {
	return ViewSinks{
		UpdateStats: func(v StatsView) {
			rs.mu.Lock()
			rs.stats = append(rs.stats, v)
			rs.mu.Unlock()
		},
		ShowImage: func(frameID string, data []byte) {
			rs.mu.Lock()
			rs.images = append(rs.images, frameID)
			rs.mu.Unlock()
		},
	}
}

func (rs *recordingSinks) playerSinks() PlayerSinks {
	return PlayerSinks{
		ShowFrame: func(index int, ref string) {
			rs.mu.Lock()
			rs.frames = append(rs.frames, index)
			rs.mu.Unlock()
		},
		StateChanged: func(playing bool) {
			rs.mu.Lock()
			rs.states = append(rs.states, playing)
			rs.mu.Unlock()
		},
	}
}

func (rs *recordingSinks) overlaySinks() OverlaySinks {
	return OverlaySinks{
		Opened: func(ref string) {
			rs.mu.Lock()
			rs.opened = append(rs.opened, ref)
			rs.mu.Unlock()
		},
		Closed: func() {
			rs.mu.Lock()
			rs.closedCt++
			rs.mu.Unlock()
		},
	}
}

func (rs *recordingSinks) imageCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.images)
}

func (rs *recordingSinks) statsCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.stats)
}

func (rs *recordingSinks) frameIndexes() []int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]int, len(rs.frames))
	copy(out, rs.frames)
	return out
}

// captureNotifier records frame alerts for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	alerts []notifier.FrameAlert
}

func (n *captureNotifier) SendFrameAlert(alert notifier.FrameAlert) {
	n.mu.Lock()
	n.alerts = append(n.alerts, alert)
	n.mu.Unlock()
}

func (n *captureNotifier) Close() error { return nil }

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}
