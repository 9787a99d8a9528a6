package app

import (
	"testing"
	"time"

	"radarwatch/config"
)

func testPlayerConfig(frames ...string) config.PlayerConfig {
	return config.PlayerConfig{
		TickPeriod:     800 * time.Millisecond,
		AutoStartDelay: time.Second,
		Frames:         frames,
	}
}

func TestPlayer_TickAdvancesThroughSet(t *testing.T) {
	clock := newFakeClock()
	rs := &recordingSinks{}
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2", "f3", "f4"))
	p.BindSinks(rs.playerSinks())

	p.Play()

	// Three ticks from index 0 land on index 3.
	clock.Advance(3 * 800 * time.Millisecond)
	if p.Index() != 3 {
		t.Errorf("expected index 3 after 3 ticks, got %d", p.Index())
	}

	got := rs.frameIndexes()
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d frame pushes, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("push %d: expected index %d, got %d", i, want[i], got[i])
		}
	}
}

func TestPlayer_WrapsAround(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2", "f3", "f4"))

	p.Play()

	// Five ticks from index 0 wrap back to 0.
	clock.Advance(5 * 800 * time.Millisecond)
	if p.Index() != 0 {
		t.Errorf("expected index 0 after full loop, got %d", p.Index())
	}
}

func TestPlayer_PlayIdempotent(t *testing.T) {
	clock := newFakeClock()
	rs := &recordingSinks{}
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2"))
	p.BindSinks(rs.playerSinks())

	p.Play()
	p.Play()
	p.Play()

	// A single ticker drives the loop: one advance per period.
	clock.Advance(800 * time.Millisecond)
	if p.Index() != 1 {
		t.Errorf("double Play must not double the tick rate, index=%d", p.Index())
	}
	if len(rs.frameIndexes()) != 1 {
		t.Errorf("expected 1 frame push, got %d", len(rs.frameIndexes()))
	}
}

func TestPlayer_PauseKeepsIndex(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2", "f3"))

	p.Play()
	clock.Advance(2 * 800 * time.Millisecond)
	p.Pause()

	if p.Playing() {
		t.Fatal("expected paused")
	}
	if p.Index() != 2 {
		t.Fatalf("pause should keep the index, got %d", p.Index())
	}

	// Time passing while paused changes nothing.
	clock.Advance(time.Hour)
	if p.Index() != 2 {
		t.Errorf("paused player must not advance, got %d", p.Index())
	}

	// Resume continues from where it stopped.
	p.Play()
	clock.Advance(800 * time.Millisecond)
	if p.Index() != 3 {
		t.Errorf("expected resume from index 2, got %d", p.Index())
	}
}

func TestPlayer_EmptySetNoOps(t *testing.T) {
	clock := newFakeClock()
	rs := &recordingSinks{}
	p := NewAnimationPlayer(nil, clock, testPlayerConfig())
	p.BindSinks(rs.playerSinks())

	p.Play()
	if p.Playing() {
		t.Error("play with no frames should not start")
	}

	p.Advance(1)
	if len(rs.frameIndexes()) != 0 {
		t.Error("advance with no frames should push nothing")
	}
}

func TestPlayer_AutoStart(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1"))

	p.ScheduleAutoStart()
	if p.Playing() {
		t.Fatal("playback must not start before the delay")
	}

	clock.Advance(time.Second)
	if !p.Playing() {
		t.Error("expected playback after the auto-start delay")
	}
}

func TestPlayer_PauseCancelsAutoStart(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1"))

	p.ScheduleAutoStart()
	p.Pause()

	clock.Advance(time.Hour)
	if p.Playing() {
		t.Error("pause before the delay should cancel auto-start")
	}
}

func TestPlayer_AdvanceByK(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2", "f3", "f4"))

	p.Advance(7)
	if p.Index() != 2 {
		t.Errorf("expected (0+7) mod 5 = 2, got %d", p.Index())
	}

	p.Advance(-3)
	if p.Index() != 4 {
		t.Errorf("expected (2-3) mod 5 = 4, got %d", p.Index())
	}
}

func TestPlayer_SetFramesClampsIndex(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1", "f2", "f3", "f4"))

	p.Advance(4)
	p.SetFrames([]string{"g0", "g1", "g2"})
	if p.Index() != 1 {
		t.Errorf("expected index clamped to 4 mod 3 = 1, got %d", p.Index())
	}

	p.SetFrames(nil)
	if p.Index() != 0 || p.FrameCount() != 0 {
		t.Errorf("expected empty reset, index=%d count=%d", p.Index(), p.FrameCount())
	}
}

func TestPlayer_AppendFrameDeduplicates(t *testing.T) {
	clock := newFakeClock()
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0"))

	p.AppendFrame("f1")
	p.AppendFrame("f1")
	p.AppendFrame("f0")

	if p.FrameCount() != 2 {
		t.Errorf("expected 2 frames, got %d", p.FrameCount())
	}
}

func TestPlayer_StateChangeNotifications(t *testing.T) {
	clock := newFakeClock()
	rs := &recordingSinks{}
	p := NewAnimationPlayer(nil, clock, testPlayerConfig("f0", "f1"))
	p.BindSinks(rs.playerSinks())

	p.Play()
	p.Pause()
	p.Play()
	p.Play() // no-op, no extra notification

	rs.mu.Lock()
	states := append([]bool(nil), rs.states...)
	rs.mu.Unlock()

	want := []bool{true, false, true}
	if len(states) != len(want) {
		t.Fatalf("expected %v, got %v", want, states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d: expected %v, got %v", i, want[i], states[i])
		}
	}
}
