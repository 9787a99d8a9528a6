package app

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Freshness classes for the stats display.
const (
	FreshnessLive  = "live"
	FreshnessStale = "stale"
)

// StatsView is the rendered form of a status snapshot.
type StatsView struct {
	Status      string
	TotalImages int
	LastUpdate  string
	Age         time.Duration
	AgeText     string // human form, floored to whole minutes
	Freshness   string // FreshnessLive or FreshnessStale
}

// ViewSinks are the display hooks the updater pushes into. Any nil hook is
// skipped without error so the updater works headless.
type ViewSinks struct {
	UpdateStats func(StatsView)
	ShowImage   func(frameID string, data []byte)
}

// ViewUpdater translates fetch results into display updates. Stats refresh on
// every successful fetch; the image swaps only when the runner saw a change
// and has the full frame bytes in hand.
type ViewUpdater struct {
	logger *zap.Logger

	mu         sync.RWMutex
	sinks      ViewSinks
	staleAfter time.Duration
}

func NewViewUpdater(logger *zap.Logger, staleAfter time.Duration) *ViewUpdater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewUpdater{
		logger:     logger,
		staleAfter: staleAfter,
	}
}

// BindSinks attaches the display hooks. Safe to call before or after the
// first update; until then every update is a no-op.
func (vu *ViewUpdater) BindSinks(sinks ViewSinks) {
	vu.mu.Lock()
	vu.sinks = sinks
	vu.mu.Unlock()
}

// SetStaleAfter adjusts the freshness boundary.
func (vu *ViewUpdater) SetStaleAfter(d time.Duration) {
	vu.mu.Lock()
	vu.staleAfter = d
	vu.mu.Unlock()
}

// ApplyStats pushes a refreshed stats view.
func (vu *ViewUpdater) ApplyStats(status, lastUpdate string, totalImages int, age time.Duration) StatsView {
	vu.mu.RLock()
	sink := vu.sinks.UpdateStats
	staleAfter := vu.staleAfter
	vu.mu.RUnlock()

	view := StatsView{
		Status:      status,
		TotalImages: totalImages,
		LastUpdate:  lastUpdate,
		Age:         age,
		AgeText:     ageText(age),
		Freshness:   classify(age, staleAfter),
	}

	if sink == nil {
		return view
	}
	sink(view)
	return view
}

// ApplyImage swaps the displayed frame. Callers must pass fully downloaded
// bytes; a frame is never shown partially loaded.
func (vu *ViewUpdater) ApplyImage(frameID string, data []byte) {
	vu.mu.RLock()
	sink := vu.sinks.ShowImage
	vu.mu.RUnlock()

	if sink == nil {
		return
	}
	if len(data) == 0 {
		vu.logger.Warn("refusing to display empty frame", zap.String("frame", frameID))
		return
	}

	sink(frameID, data)
	vu.logger.Info("displayed frame", zap.String("frame", frameID), zap.Int("bytes", len(data)))
}

func classify(age, staleAfter time.Duration) string {
	if staleAfter > 0 && age >= staleAfter {
		return FreshnessStale
	}
	return FreshnessLive
}

// ageText renders age floored to whole minutes.
func ageText(age time.Duration) string {
	if age < time.Minute {
		return "just now"
	}
	mins := int(age.Minutes())
	if mins == 1 {
		return "1 min ago"
	}
	return fmt.Sprintf("%d mins ago", mins)
}
