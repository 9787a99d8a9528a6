package notifier

import (
	"time"
)

// AlertReason indicates why an alert was triggered.
type AlertReason string

const (
	AlertReasonNewFrame  AlertReason = "new_frame"  // a fresher radar frame was adopted
	AlertReasonFeedStale AlertReason = "feed_stale" // the feed stopped producing frames
)

// FrameAlert contains all the data needed for a radar frame notification.
type FrameAlert struct {
	// Frame info
	FrameID  string
	FrameURL string

	// Feed stats at alert time
	TotalImages   int
	LastUpdate    string
	LastUpdateAgo time.Duration

	// Alert metadata
	Reason    AlertReason
	Timestamp time.Time
}

// Notifier is the interface for sending frame alerts to various channels.
type Notifier interface {
	// SendFrameAlert sends a frame alert notification.
	SendFrameAlert(alert FrameAlert)

	// Close cleans up any resources.
	Close() error
}

// MultiNotifier broadcasts alerts to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a new MultiNotifier with the given notifiers.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	// Filter out nil notifiers
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

// SendFrameAlert sends the alert to all registered notifiers.
func (m *MultiNotifier) SendFrameAlert(alert FrameAlert) {
	for _, n := range m.notifiers {
		n.SendFrameAlert(alert)
	}
}

// Close closes all registered notifiers.
func (m *MultiNotifier) Close() error {
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Count returns the number of active notifiers.
func (m *MultiNotifier) Count() int {
	return len(m.notifiers)
}
