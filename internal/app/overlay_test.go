package app

import (
	"testing"
)

func TestOverlay_OpenClose(t *testing.T) {
	rs := &recordingSinks{}
	o := NewDetailOverlay(nil)
	o.BindSinks(rs.overlaySinks())

	if o.IsOpen() {
		t.Fatal("overlay should start closed")
	}

	o.Open("frame.gif")
	if !o.IsOpen() || o.Ref() != "frame.gif" {
		t.Fatalf("expected open on frame.gif, open=%v ref=%s", o.IsOpen(), o.Ref())
	}

	o.Close()
	if o.IsOpen() || o.Ref() != "" {
		t.Errorf("expected closed, open=%v ref=%s", o.IsOpen(), o.Ref())
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if len(rs.opened) != 1 || rs.closedCt != 1 {
		t.Errorf("expected 1 open and 1 close callback, got %d and %d", len(rs.opened), rs.closedCt)
	}
}

func TestOverlay_CloseIdempotent(t *testing.T) {
	rs := &recordingSinks{}
	o := NewDetailOverlay(nil)
	o.BindSinks(rs.overlaySinks())

	// Escape, backdrop click and programmatic close may all land; only the
	// first does anything.
	o.Open("frame.gif")
	o.Close()
	o.Close()
	o.Close()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closedCt != 1 {
		t.Errorf("expected exactly 1 close callback, got %d", rs.closedCt)
	}
}

func TestOverlay_CloseWhileClosed(t *testing.T) {
	rs := &recordingSinks{}
	o := NewDetailOverlay(nil)
	o.BindSinks(rs.overlaySinks())

	o.Close()

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.closedCt != 0 {
		t.Errorf("close on a closed overlay should be silent, got %d callbacks", rs.closedCt)
	}
}

func TestOverlay_ReopenSwitchesRef(t *testing.T) {
	o := NewDetailOverlay(nil)

	o.Open("a.gif")
	o.Open("b.gif")

	if o.Ref() != "b.gif" {
		t.Errorf("expected switch to b.gif, got %s", o.Ref())
	}
}

func TestOverlay_OpenEmptyRefIgnored(t *testing.T) {
	o := NewDetailOverlay(nil)
	o.Open("")
	if o.IsOpen() {
		t.Error("empty ref should not open the overlay")
	}
}

func TestOverlay_NilSinks(t *testing.T) {
	o := NewDetailOverlay(nil)
	o.Open("frame.gif")
	o.Close()
}
