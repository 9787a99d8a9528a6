package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"radarwatch/config"
)

// PlayerSinks are the display hooks the player drives. Nil hooks are skipped.
type PlayerSinks struct {
	ShowFrame    func(index int, ref string)
	StateChanged func(playing bool)
}

// AnimationPlayer loops through the recent frame set on a fixed tick. It
// owns at most one ticker at a time; Play on a running player is a no-op,
// Pause keeps the current index so playback resumes where it stopped.
type AnimationPlayer struct {
	logger *zap.Logger
	clock  Clock

	mu             sync.Mutex
	frames         []string
	index          int
	playing        bool
	tick           Timer
	autoStart      Timer
	tickPeriod     time.Duration
	autoStartDelay time.Duration
	sinks          PlayerSinks
}

func NewAnimationPlayer(logger *zap.Logger, clock Clock, cfg config.PlayerConfig) *AnimationPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = NewRealClock()
	}

	frames := make([]string, len(cfg.Frames))
	copy(frames, cfg.Frames)

	return &AnimationPlayer{
		logger:         logger,
		clock:          clock,
		frames:         frames,
		tickPeriod:     cfg.TickPeriod,
		autoStartDelay: cfg.AutoStartDelay,
	}
}

// BindSinks attaches the display hooks.
func (p *AnimationPlayer) BindSinks(sinks PlayerSinks) {
	p.mu.Lock()
	p.sinks = sinks
	p.mu.Unlock()
}

// ScheduleAutoStart arms the auto-start delay. Playback begins when it
// elapses unless Play or Pause ran first.
func (p *AnimationPlayer) ScheduleAutoStart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.autoStart != nil {
		p.autoStart.Stop()
	}
	p.autoStart = p.clock.AfterFunc(p.autoStartDelay, p.Play)
}

// Play starts the loop. Idempotent: a second Play while running changes
// nothing and never creates a second ticker.
func (p *AnimationPlayer) Play() {
	p.mu.Lock()

	p.cancelAutoStartLocked()

	if p.playing || len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}

	p.playing = true
	p.tick = p.clock.TickFunc(p.tickPeriod, func() { p.Advance(1) })
	stateSink := p.sinks.StateChanged
	p.mu.Unlock()

	p.logger.Debug("playback started")
	if stateSink != nil {
		stateSink(true)
	}
}

// Pause stops the loop, keeping the current index.
func (p *AnimationPlayer) Pause() {
	p.mu.Lock()

	p.cancelAutoStartLocked()

	if !p.playing {
		p.mu.Unlock()
		return
	}

	p.playing = false
	if p.tick != nil {
		p.tick.Stop()
		p.tick = nil
	}
	stateSink := p.sinks.StateChanged
	p.mu.Unlock()

	p.logger.Debug("playback paused")
	if stateSink != nil {
		stateSink(false)
	}
}

// Toggle flips between playing and paused.
func (p *AnimationPlayer) Toggle() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()

	if playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// Advance moves the index forward by k frames, wrapping around the set.
// With no frames it does nothing.
func (p *AnimationPlayer) Advance(k int) {
	p.mu.Lock()

	n := len(p.frames)
	if n == 0 {
		p.mu.Unlock()
		return
	}

	p.index = ((p.index+k)%n + n) % n
	idx := p.index
	ref := p.frames[idx]
	frameSink := p.sinks.ShowFrame
	p.mu.Unlock()

	if frameSink != nil {
		frameSink(idx, ref)
	}
}

// SetFrames replaces the frame set. The index is clamped into the new set
// so playback continues without a reset where possible.
func (p *AnimationPlayer) SetFrames(frames []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames = make([]string, len(frames))
	copy(p.frames, frames)

	if len(p.frames) == 0 {
		p.index = 0
		return
	}
	p.index %= len(p.frames)
}

// AppendFrame adds a newly adopted frame to the end of the loop.
func (p *AnimationPlayer) AppendFrame(ref string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.frames {
		if f == ref {
			return
		}
	}
	p.frames = append(p.frames, ref)
}

// Index returns the current position in the frame set.
func (p *AnimationPlayer) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Playing reports whether the loop is running.
func (p *AnimationPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// FrameCount returns the size of the frame set.
func (p *AnimationPlayer) FrameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// UpdateConfig applies new playback settings. The tick period takes effect
// on the next Play.
func (p *AnimationPlayer) UpdateConfig(cfg config.PlayerConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickPeriod = cfg.TickPeriod
	p.autoStartDelay = cfg.AutoStartDelay
}

// Stop cancels all timers. The player is not reusable afterwards within a
// session, Pause is the resumable variant.
func (p *AnimationPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cancelAutoStartLocked()
	p.playing = false
	if p.tick != nil {
		p.tick.Stop()
		p.tick = nil
	}
}

func (p *AnimationPlayer) cancelAutoStartLocked() {
	if p.autoStart != nil {
		p.autoStart.Stop()
		p.autoStart = nil
	}
}
