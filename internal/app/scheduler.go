package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"radarwatch/config"
)

// CheckTrigger names the event that asked for a freshness check.
type CheckTrigger string

const (
	TriggerWarmup     CheckTrigger = "warmup"
	TriggerTick       CheckTrigger = "tick"
	TriggerVisibility CheckTrigger = "visibility"
	TriggerManual     CheckTrigger = "manual"
)

// Scheduler states as reported by State.
const (
	StateIdle      = "idle"
	StateBlocked   = "blocked"
	StateExecuting = "executing"
)

// CheckFunc performs one freshness check. The scheduler ignores its error
// for pacing purposes; a failed check consumes its cooldown slot all the
// same so a flapping feed cannot induce a request storm.
type CheckFunc func(ctx context.Context, trigger CheckTrigger) error

// SchedulerStats is a point-in-time snapshot of scheduler counters.
type SchedulerStats struct {
	Dispatched  uint64 `json:"dispatched"`
	Blocked     uint64 `json:"blocked"`
	Failures    uint64 `json:"failures"`
	LastCheckAt string `json:"last_check_at,omitempty"`
	LastTrigger string `json:"last_trigger,omitempty"`
	State       string `json:"state"`
}

// PollingScheduler paces freshness checks. Every trigger source funnels
// through RequestCheck, which enforces a single in-flight check and a
// cooldown equal to the poll interval by default.
type PollingScheduler struct {
	logger *zap.Logger
	clock  Clock
	check  CheckFunc

	configMu sync.RWMutex
	interval time.Duration
	cooldown time.Duration
	warmup   time.Duration

	mu          sync.Mutex
	started     bool
	executing   bool
	hasChecked  bool
	lastCheck   time.Time
	lastTrigger CheckTrigger
	dispatched  uint64
	blocked     uint64
	failures    uint64

	warmupTimer Timer
	tickTimer   Timer
}

func NewPollingScheduler(logger *zap.Logger, clock Clock, cfg config.PollerConfig, check CheckFunc) *PollingScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = NewRealClock()
	}

	return &PollingScheduler{
		logger:   logger,
		clock:    clock,
		check:    check,
		interval: cfg.Interval,
		cooldown: cfg.Cooldown,
		warmup:   cfg.WarmupDelay,
	}
}

// Start arms the warmup delay and the periodic ticker. The first check of a
// session fires once the warmup elapses; interval ticks begin counting from
// Start. Calling Start twice is a no-op.
func (s *PollingScheduler) Start(ctx context.Context) {
	s.configMu.RLock()
	interval := s.interval
	warmup := s.warmup
	s.configMu.RUnlock()

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true

	s.warmupTimer = s.clock.AfterFunc(warmup, func() {
		s.RequestCheck(ctx, TriggerWarmup)
	})
	s.tickTimer = s.clock.TickFunc(interval, func() {
		s.RequestCheck(ctx, TriggerTick)
	})
	s.mu.Unlock()

	s.logger.Info("polling scheduler started",
		zap.Duration("interval", interval),
		zap.Duration("warmup", warmup),
	)
}

// Stop cancels the warmup timer and the ticker. In-flight checks run to
// completion; their context handles cancellation.
func (s *PollingScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
		s.warmupTimer = nil
	}
	if s.tickTimer != nil {
		s.tickTimer.Stop()
		s.tickTimer = nil
	}
}

// RequestCheck asks for a check right now. It dispatches synchronously and
// reports whether the check ran. A request is refused while another check is
// in flight or while the cooldown from the previous dispatch has not fully
// elapsed. The cooldown slot is consumed at dispatch time, before the check
// runs, so failures pace exactly like successes.
func (s *PollingScheduler) RequestCheck(ctx context.Context, trigger CheckTrigger) bool {
	s.configMu.RLock()
	cooldown := s.cooldown
	s.configMu.RUnlock()

	s.mu.Lock()
	if s.executing {
		s.blocked++
		s.mu.Unlock()
		s.logger.Debug("check refused, already executing", zap.String("trigger", string(trigger)))
		return false
	}

	now := s.clock.Now()
	if s.hasChecked && now.Sub(s.lastCheck) < cooldown {
		s.blocked++
		s.mu.Unlock()
		s.logger.Debug("check refused, cooling down",
			zap.String("trigger", string(trigger)),
			zap.Duration("elapsed", now.Sub(s.lastCheck)),
			zap.Duration("cooldown", cooldown),
		)
		return false
	}

	s.executing = true
	s.hasChecked = true
	s.lastCheck = now
	s.lastTrigger = trigger
	s.dispatched++
	s.mu.Unlock()

	err := s.check(ctx, trigger)

	s.mu.Lock()
	s.executing = false
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("freshness check failed",
			zap.String("trigger", string(trigger)),
			zap.Error(err),
		)
	}
	return true
}

// State reports idle, blocked or executing.
func (s *PollingScheduler) State() string {
	s.configMu.RLock()
	cooldown := s.cooldown
	s.configMu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.executing {
		return StateExecuting
	}
	if s.hasChecked && s.clock.Now().Sub(s.lastCheck) < cooldown {
		return StateBlocked
	}
	return StateIdle
}

// Stats returns a snapshot of the scheduler counters.
func (s *PollingScheduler) Stats() SchedulerStats {
	state := s.State()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := SchedulerStats{
		Dispatched:  s.dispatched,
		Blocked:     s.blocked,
		Failures:    s.failures,
		LastTrigger: string(s.lastTrigger),
		State:       state,
	}
	if s.hasChecked {
		stats.LastCheckAt = s.lastCheck.Format(time.RFC3339)
	}
	return stats
}

// UpdateConfig applies new pacing settings. A running ticker is restarted
// so the new interval takes effect immediately.
func (s *PollingScheduler) UpdateConfig(ctx context.Context, cfg config.PollerConfig) {
	s.configMu.Lock()
	intervalChanged := cfg.Interval != s.interval
	s.interval = cfg.Interval
	s.cooldown = cfg.Cooldown
	s.warmup = cfg.WarmupDelay
	s.configMu.Unlock()

	s.mu.Lock()
	if s.started && intervalChanged {
		if s.tickTimer != nil {
			s.tickTimer.Stop()
		}
		s.tickTimer = s.clock.TickFunc(cfg.Interval, func() {
			s.RequestCheck(ctx, TriggerTick)
		})
	}
	s.mu.Unlock()

	s.logger.Info("scheduler config updated",
		zap.Duration("interval", cfg.Interval),
		zap.Duration("cooldown", cfg.Cooldown),
	)
}
