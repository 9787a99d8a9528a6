package notifier

import (
	"errors"
	"testing"
	"time"
)

type recordingNotifier struct {
	alerts   []FrameAlert
	closed   bool
	closeErr error
}

func (r *recordingNotifier) SendFrameAlert(alert FrameAlert) {
	r.alerts = append(r.alerts, alert)
}

func (r *recordingNotifier) Close() error {
	r.closed = true
	return r.closeErr
}

func TestMultiNotifier_Broadcast(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := NewMultiNotifier(a, nil, b)

	if m.Count() != 2 {
		t.Fatalf("expected nil notifiers filtered, got count %d", m.Count())
	}

	alert := FrameAlert{
		FrameID:   "radar_1.gif",
		Reason:    AlertReasonNewFrame,
		Timestamp: time.Now(),
	}
	m.SendFrameAlert(alert)

	if len(a.alerts) != 1 || len(b.alerts) != 1 {
		t.Errorf("expected alert delivered to both notifiers, got %d and %d", len(a.alerts), len(b.alerts))
	}
	if a.alerts[0].FrameID != "radar_1.gif" {
		t.Errorf("unexpected frame id: %s", a.alerts[0].FrameID)
	}
}

func TestMultiNotifier_CloseAll(t *testing.T) {
	a := &recordingNotifier{closeErr: errors.New("close failed")}
	b := &recordingNotifier{}
	m := NewMultiNotifier(a, b)

	err := m.Close()
	if err == nil {
		t.Error("expected close error to propagate")
	}
	if !a.closed || !b.closed {
		t.Error("expected all notifiers closed despite error")
	}
}

func TestMultiNotifier_Empty(t *testing.T) {
	m := NewMultiNotifier()
	m.SendFrameAlert(FrameAlert{FrameID: "x"})
	if err := m.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
