package app

import (
	"sync"

	"go.uber.org/zap"

	"radarwatch/clients/radarapi"
)

// Change describes one comparator observation.
type Change struct {
	// First is true for the baseline observation of a session.
	First bool

	// Changed is true when the observed id differs from the previous one.
	// Never true together with First.
	Changed bool

	PreviousID string
	CurrentID  string
}

// FreshnessComparator decides whether a status snapshot carries a new frame.
// Identity is the latest frame reference alone; timestamps and stats do not
// participate.
type FreshnessComparator struct {
	logger *zap.Logger

	mu       sync.Mutex
	lastID   string
	observed bool
}

func NewFreshnessComparator(logger *zap.Logger) *FreshnessComparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FreshnessComparator{logger: logger}
}

// Observe records id and reports how it compares to the previous observation.
// The first observation adopts id as the baseline and reports no change, even
// when id is the missing-reference sentinel.
func (fc *FreshnessComparator) Observe(id string) Change {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if !fc.observed {
		fc.observed = true
		fc.lastID = id
		fc.logger.Debug("adopted baseline frame", zap.String("id", id))
		return Change{First: true, CurrentID: id}
	}

	prev := fc.lastID
	if id == prev {
		return Change{PreviousID: prev, CurrentID: id}
	}

	fc.lastID = id
	fc.logger.Info("frame changed",
		zap.String("previous", prev),
		zap.String("current", id),
	)
	return Change{Changed: true, PreviousID: prev, CurrentID: id}
}

// Current returns the last adopted id, or the sentinel before any observation.
func (fc *FreshnessComparator) Current() string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if !fc.observed {
		return radarapi.RadarNone
	}
	return fc.lastID
}

// Reset forgets the baseline so the next observation adopts fresh.
func (fc *FreshnessComparator) Reset() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.observed = false
	fc.lastID = ""
}
