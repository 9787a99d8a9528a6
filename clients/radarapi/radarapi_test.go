package radarapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"radarwatch/config"
)

func newTestClient(serverURL string) *Client {
	cfg := config.Defaults()
	cfg.Radar.StatusURL = serverURL
	cfg.Radar.FetchTimeout = 5 * time.Second
	return NewClient(nil, cfg)
}

func TestGetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"stats": {"last_update": "2026-08-29 10:05:00", "total_images": 42, "last_update_ago": 95.5},
			"latest_radar": "radar_20260829_1005.gif",
			"timestamp": "2026-08-29T10:06:35"
		}`))
	}))
	defer server.Close()

	snap, err := newTestClient(server.URL).GetStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Status != "ok" {
		t.Errorf("unexpected status: %s", snap.Status)
	}
	if snap.LatestID() != "radar_20260829_1005.gif" {
		t.Errorf("unexpected latest id: %s", snap.LatestID())
	}
	if snap.Stats.TotalImages != 42 {
		t.Errorf("unexpected total images: %d", snap.Stats.TotalImages)
	}
	if snap.Stats.LastUpdateAgo != 95.5 {
		t.Errorf("unexpected last update ago: %f", snap.Stats.LastUpdateAgo)
	}
}

func TestGetStatus_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).GetStatus(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestGetStatus_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).GetStatus(context.Background()); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestSnapshot_LatestID_Missing(t *testing.T) {
	snap := &Snapshot{Status: "ok", LatestRadar: "  "}
	if snap.LatestID() != RadarNone {
		t.Errorf("expected RadarNone for blank reference, got %q", snap.LatestID())
	}

	var nilSnap *Snapshot
	if nilSnap.LatestID() != RadarNone {
		t.Error("expected RadarNone for nil snapshot")
	}
}

func TestFetchImage(t *testing.T) {
	payload := []byte("GIF89a-fake-frame-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/radar/frame1.gif" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write(payload)
	}))
	defer server.Close()

	data, err := newTestClient(server.URL).FetchImage(context.Background(), "frame1.gif")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("unexpected payload: %q", data)
	}
}

func TestFetchImage_EmptyRef(t *testing.T) {
	c := newTestClient("http://localhost:1")
	if _, err := c.FetchImage(context.Background(), ""); err == nil {
		t.Error("expected error for empty ref")
	}
	if _, err := c.FetchImage(context.Background(), RadarNone); err == nil {
		t.Error("expected error for sentinel ref")
	}
}

func TestFetchImage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).FetchImage(context.Background(), "missing.gif"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestSetResolver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cdn/frame2.gif" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte("x"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	c.SetResolver(func(baseURL, ref string) string {
		return baseURL + "/cdn/" + ref
	})

	if _, err := c.FetchImage(context.Background(), "frame2.gif"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
