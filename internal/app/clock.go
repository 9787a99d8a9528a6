package app

import (
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the cancellation landed
	// before the callback fired.
	Stop() bool
}

// Clock abstracts time for the scheduler and player so tests can drive
// them deterministically.
type Clock interface {
	Now() time.Time

	// AfterFunc runs f once after d.
	AfterFunc(d time.Duration, f func()) Timer

	// TickFunc runs f every d until the returned Timer is stopped.
	TickFunc(d time.Duration, f func()) Timer
}

// realClock delegates to the time package.
type realClock struct{}

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (realClock) TickFunc(d time.Duration, f func()) Timer {
	h := &tickHandle{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				f()
			}
		}
	}()
	return h
}

type realTimer struct {
	t *time.Timer
}

func (rt realTimer) Stop() bool {
	return rt.t.Stop()
}

type tickHandle struct {
	done chan struct{}
}

func (h *tickHandle) Stop() bool {
	select {
	case <-h.done:
		return false
	default:
		close(h.done)
		return true
	}
}
