package app

import (
	"sync"

	"go.uber.org/zap"
)

// OverlaySinks are the display hooks for the detail overlay. Nil hooks are
// skipped.
type OverlaySinks struct {
	Opened func(ref string)
	Closed func()
}

// DetailOverlay tracks the zoomed single-frame view. Close is idempotent so
// Escape, the backdrop and programmatic closes can all fire without caring
// about current state.
type DetailOverlay struct {
	logger *zap.Logger

	mu    sync.Mutex
	open  bool
	ref   string
	sinks OverlaySinks
}

func NewDetailOverlay(logger *zap.Logger) *DetailOverlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailOverlay{logger: logger}
}

// BindSinks attaches the display hooks.
func (o *DetailOverlay) BindSinks(sinks OverlaySinks) {
	o.mu.Lock()
	o.sinks = sinks
	o.mu.Unlock()
}

// Open shows the overlay for ref. Opening while already open switches to
// the new ref.
func (o *DetailOverlay) Open(ref string) {
	if ref == "" {
		return
	}

	o.mu.Lock()
	o.open = true
	o.ref = ref
	sink := o.sinks.Opened
	o.mu.Unlock()

	o.logger.Debug("overlay opened", zap.String("ref", ref))
	if sink != nil {
		sink(ref)
	}
}

// Close hides the overlay. Closing an already closed overlay does nothing.
func (o *DetailOverlay) Close() {
	o.mu.Lock()
	if !o.open {
		o.mu.Unlock()
		return
	}
	o.open = false
	o.ref = ""
	sink := o.sinks.Closed
	o.mu.Unlock()

	o.logger.Debug("overlay closed")
	if sink != nil {
		sink()
	}
}

// IsOpen reports whether the overlay is showing.
func (o *DetailOverlay) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// Ref returns the frame the overlay is showing, empty when closed.
func (o *DetailOverlay) Ref() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ref
}
