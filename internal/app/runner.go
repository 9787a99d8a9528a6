package app

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	clts "radarwatch/clients"
	"radarwatch/clients/notifier"
	"radarwatch/clients/radarapi"
	"radarwatch/config"
)

// ensure Runner implements ConfigObserver
var _ config.ConfigObserver = (*Runner)(nil)

// Build info - populated from embedded VCS info at init time
var (
	BuildCommit = "dev"
	BuildTime   = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if setting.Value != "" {
					BuildCommit = setting.Value
				}
			case "vcs.time":
				BuildTime = setting.Value
			}
		}
	}
}

type Runner struct {
	clients    *clts.Clients
	liveConfig *config.LiveConfig
	clock      Clock

	scheduler  *PollingScheduler
	comparator *FreshnessComparator
	view       *ViewUpdater
	player     *AnimationPlayer
	overlay    *DetailOverlay

	healthServer *http.Server
	startTime    time.Time

	runCtx context.Context

	mu             sync.Mutex
	fetchFailures  uint64
	fetchSuccesses uint64
	framesAdopted  uint64
	lastSnapshot   *radarapi.Snapshot
	lastFetchedAt  time.Time
	staleNotified  bool
}

// ServiceStats holds comprehensive service statistics.
type ServiceStats struct {
	// Build info
	Build struct {
		Commit    string `json:"commit"`
		Time      string `json:"time,omitempty"`
		GoVersion string `json:"go_version"`
	} `json:"build"`

	// Service info
	StartTime string `json:"start_time"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_seconds"`

	// Scheduler stats
	Scheduler SchedulerStats `json:"scheduler"`

	// Feed stats
	Feed struct {
		FetchSuccesses uint64  `json:"fetch_successes"`
		FetchFailures  uint64  `json:"fetch_failures"`
		FramesAdopted  uint64  `json:"frames_adopted"`
		CurrentFrame   string  `json:"current_frame,omitempty"`
		TotalImages    int     `json:"total_images"`
		LastUpdate     string  `json:"last_update,omitempty"`
		LastUpdateAgo  float64 `json:"last_update_ago_minutes"`
		Freshness      string  `json:"freshness,omitempty"`
		LastFetchedAt  string  `json:"last_fetched_at,omitempty"`
	} `json:"feed"`

	// Player stats
	Player struct {
		Playing    bool `json:"playing"`
		Index      int  `json:"index"`
		FrameCount int  `json:"frame_count"`
	} `json:"player"`

	// Overlay stats
	Overlay struct {
		Open bool   `json:"open"`
		Ref  string `json:"ref,omitempty"`
	} `json:"overlay"`

	// Memory stats
	Memory struct {
		AllocMB      float64 `json:"alloc_mb"`
		SysMB        float64 `json:"sys_mb"`
		NumGoroutine int     `json:"num_goroutine"`
	} `json:"memory"`
}

func NewRunner(clients *clts.Clients, liveConfig *config.LiveConfig, clock Clock) *Runner {
	if clock == nil {
		clock = NewRealClock()
	}

	cfg := liveConfig.Get()
	logger := clients.Logger

	r := &Runner{
		clients:    clients,
		liveConfig: liveConfig,
		clock:      clock,
		comparator: NewFreshnessComparator(logger),
		view:       NewViewUpdater(logger, cfg.Poller.StaleAfter),
		player:     NewAnimationPlayer(logger, clock, cfg.Player),
		overlay:    NewDetailOverlay(logger),
	}
	r.scheduler = NewPollingScheduler(logger, clock, cfg.Poller, r.performCheck)
	return r
}

// View exposes the view updater so the display can bind its hooks.
func (r *Runner) View() *ViewUpdater { return r.view }

// Player exposes the animation player for hook binding and manual control.
func (r *Runner) Player() *AnimationPlayer { return r.player }

// Overlay exposes the detail overlay for hook binding.
func (r *Runner) Overlay() *DetailOverlay { return r.overlay }

// OnConfigUpdate is called when the config changes.
// Implements config.ConfigObserver interface.
func (r *Runner) OnConfigUpdate(cfg *config.Config) {
	r.clients.Logger.Info("config update received, propagating to components")

	ctx := r.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	r.scheduler.UpdateConfig(ctx, cfg.Poller)
	r.player.UpdateConfig(cfg.Player)
	r.view.SetStaleAfter(cfg.Poller.StaleAfter)
}

// Run starts the scheduler, the player auto-start and the stats server, then
// blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.startTime = time.Now()
	r.runCtx = ctx
	logger := r.clients.Logger
	cfg := r.liveConfig.Get()

	// Register as config observer for hot-reload
	r.liveConfig.AddObserver(r)

	logger.Info("starting radar watch",
		zap.String("statusURL", cfg.Radar.StatusURL),
		zap.Duration("pollInterval", cfg.Poller.Interval),
		zap.Duration("warmupDelay", cfg.Poller.WarmupDelay),
		zap.Int("seedFrames", len(cfg.Player.Frames)),
	)

	if cfg.StatsServer.Enabled {
		r.startHealthServer(ctx, cfg.StatsServer.Port)
		logger.Info("stats server started", zap.Int("port", cfg.StatsServer.Port))
	}

	r.scheduler.Start(ctx)
	r.player.ScheduleAutoStart()

	<-ctx.Done()
	logger.Info("shutting down")

	r.scheduler.Stop()
	r.player.Stop()

	if r.healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.healthServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown", zap.Error(err))
		}
	}

	if err := r.clients.Notifier.Close(); err != nil {
		logger.Warn("notifier close", zap.Error(err))
	}

	return nil
}

// performCheck is the scheduler's dispatch target: fetch the status feed,
// refresh stats, and swap the image when the latest frame changed.
func (r *Runner) performCheck(ctx context.Context, trigger CheckTrigger) error {
	logger := r.clients.Logger
	cfg := r.liveConfig.Get()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Radar.FetchTimeout)
	defer cancel()

	snap, err := r.clients.Radar.GetStatus(fetchCtx)
	if err != nil {
		// Fetch failures leave all display and comparator state untouched.
		r.mu.Lock()
		r.fetchFailures++
		r.mu.Unlock()
		return fmt.Errorf("fetch status: %w", err)
	}

	age := time.Duration(snap.Stats.LastUpdateAgo * float64(time.Minute))

	r.mu.Lock()
	r.fetchSuccesses++
	r.lastSnapshot = snap
	r.lastFetchedAt = r.clock.Now()
	r.mu.Unlock()

	// Stats refresh on every successful fetch, changed or not.
	view := r.view.ApplyStats(snap.Status, snap.Stats.LastUpdate, snap.Stats.TotalImages, age)

	r.notifyStaleness(view, snap)

	ch := r.comparator.Observe(snap.LatestID())
	switch {
	case ch.First:
		// Initial render: show the frame without treating it as news.
		r.adoptFrame(ctx, snap, false)
	case ch.Changed:
		logger.Info("fresh frame detected",
			zap.String("trigger", string(trigger)),
			zap.String("previous", ch.PreviousID),
			zap.String("current", ch.CurrentID),
		)
		r.adoptFrame(ctx, snap, true)
	}

	return nil
}

// adoptFrame downloads the snapshot's latest frame and, only once fully
// loaded, pushes it to the display and the player loop. Exactly one swap per
// adopted frame.
func (r *Runner) adoptFrame(ctx context.Context, snap *radarapi.Snapshot, announce bool) {
	logger := r.clients.Logger

	id := snap.LatestID()
	if id == radarapi.RadarNone {
		return
	}

	data, err := r.clients.Radar.FetchImage(ctx, id)
	if err != nil {
		logger.Warn("failed to fetch frame, keeping current display",
			zap.String("frame", id),
			zap.Error(err),
		)
		return
	}

	r.view.ApplyImage(id, data)
	r.player.AppendFrame(id)

	r.mu.Lock()
	r.framesAdopted++
	if announce {
		// A genuinely new frame clears the stale latch.
		r.staleNotified = false
	}
	r.mu.Unlock()

	if announce {
		age := time.Duration(snap.Stats.LastUpdateAgo * float64(time.Minute))
		r.clients.Notifier.SendFrameAlert(notifier.FrameAlert{
			FrameID:       id,
			FrameURL:      r.clients.Radar.FrameURL(id),
			TotalImages:   snap.Stats.TotalImages,
			LastUpdate:    snap.Stats.LastUpdate,
			LastUpdateAgo: age,
			Reason:        notifier.AlertReasonNewFrame,
			Timestamp:     time.Now(),
		})
	}
}

// notifyStaleness raises a one-shot alert when the feed goes stale. The
// latch resets when a new frame is adopted.
func (r *Runner) notifyStaleness(view StatsView, snap *radarapi.Snapshot) {
	if view.Freshness != FreshnessStale {
		return
	}

	r.mu.Lock()
	already := r.staleNotified
	r.staleNotified = true
	r.mu.Unlock()
	if already {
		return
	}

	r.clients.Logger.Warn("radar feed is stale",
		zap.Duration("age", view.Age),
	)
	r.clients.Notifier.SendFrameAlert(notifier.FrameAlert{
		FrameID:       snap.LatestID(),
		TotalImages:   snap.Stats.TotalImages,
		LastUpdate:    snap.Stats.LastUpdate,
		LastUpdateAgo: view.Age,
		Reason:        notifier.AlertReasonFeedStale,
		Timestamp:     time.Now(),
	})
}

// OnVisibilityRegained requests an immediate check, subject to the cooldown.
// Wired to process resume and the manual refresh key.
func (r *Runner) OnVisibilityRegained(ctx context.Context) bool {
	return r.scheduler.RequestCheck(ctx, TriggerVisibility)
}

// RequestManualCheck requests a user-initiated check, subject to the cooldown.
func (r *Runner) RequestManualCheck(ctx context.Context) bool {
	return r.scheduler.RequestCheck(ctx, TriggerManual)
}

// TogglePlayback flips the animation loop between playing and paused.
func (r *Runner) TogglePlayback() {
	r.player.Toggle()
}

// OpenDetail opens the overlay on the player's current frame.
func (r *Runner) OpenDetail() {
	r.mu.Lock()
	snap := r.lastSnapshot
	r.mu.Unlock()

	ref := r.comparator.Current()
	if ref == radarapi.RadarNone && snap != nil {
		ref = snap.LatestID()
	}
	if ref == radarapi.RadarNone {
		return
	}
	r.overlay.Open(ref)
}

// CloseDetail closes the overlay. Safe when already closed.
func (r *Runner) CloseDetail() {
	r.overlay.Close()
}

// GetStats returns comprehensive service statistics.
func (r *Runner) GetStats() ServiceStats {
	var stats ServiceStats

	stats.Build.Commit = BuildCommit
	stats.Build.Time = BuildTime
	stats.Build.GoVersion = runtime.Version()

	uptime := time.Since(r.startTime)
	stats.StartTime = r.startTime.Format(time.RFC3339)
	stats.Uptime = uptime.Round(time.Second).String()
	stats.UptimeSec = int64(uptime.Seconds())

	stats.Scheduler = r.scheduler.Stats()

	cfg := r.liveConfig.Get()

	r.mu.Lock()
	stats.Feed.FetchSuccesses = r.fetchSuccesses
	stats.Feed.FetchFailures = r.fetchFailures
	stats.Feed.FramesAdopted = r.framesAdopted
	if r.lastSnapshot != nil {
		stats.Feed.TotalImages = r.lastSnapshot.Stats.TotalImages
		stats.Feed.LastUpdate = r.lastSnapshot.Stats.LastUpdate
		stats.Feed.LastUpdateAgo = r.lastSnapshot.Stats.LastUpdateAgo
		age := time.Duration(r.lastSnapshot.Stats.LastUpdateAgo * float64(time.Minute))
		stats.Feed.Freshness = classify(age, cfg.Poller.StaleAfter)
	}
	if !r.lastFetchedAt.IsZero() {
		stats.Feed.LastFetchedAt = r.lastFetchedAt.Format(time.RFC3339)
	}
	r.mu.Unlock()

	if cur := r.comparator.Current(); cur != radarapi.RadarNone {
		stats.Feed.CurrentFrame = cur
	}

	stats.Player.Playing = r.player.Playing()
	stats.Player.Index = r.player.Index()
	stats.Player.FrameCount = r.player.FrameCount()

	stats.Overlay.Open = r.overlay.IsOpen()
	stats.Overlay.Ref = r.overlay.Ref()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.Memory.AllocMB = float64(m.Alloc) / 1024 / 1024
	stats.Memory.SysMB = float64(m.Sys) / 1024 / 1024
	stats.Memory.NumGoroutine = runtime.NumGoroutine()

	return stats
}
