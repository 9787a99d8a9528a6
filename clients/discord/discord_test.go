package discord

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"radarwatch/clients/notifier"
	"radarwatch/config"
)

func TestNewDiscordClient_NoToken(t *testing.T) {
	cfg := &config.Config{
		IsProd: false,
		Discord: config.DiscordConfig{
			ProdChannelID: "prod-channel",
			BetaChannelID: "beta-channel",
		},
	}

	client := NewDiscordClient(zap.NewNop(), cfg)

	if client.session != nil {
		t.Error("expected no session without a token")
	}
	if client.channelID != "beta-channel" {
		t.Errorf("expected beta channel, got: %s", client.channelID)
	}

	// Alert and close on an uninitialized client must be safe no-ops.
	client.SendFrameAlert(notifier.FrameAlert{FrameID: "x.gif"})
	if err := client.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestNewDiscordClient_ProdChannel(t *testing.T) {
	cfg := &config.Config{
		IsProd: true,
		Discord: config.DiscordConfig{
			ProdChannelID: "prod-channel",
			BetaChannelID: "beta-channel",
		},
	}

	client := NewDiscordClient(nil, cfg)

	if client.channelID != "prod-channel" {
		t.Errorf("expected prod channel, got: %s", client.channelID)
	}
}

func TestBuildFrameEmbed_NewFrame(t *testing.T) {
	client := NewDiscordClient(zap.NewNop(), &config.Config{})

	embed := client.buildFrameEmbed(notifier.FrameAlert{
		FrameID:     "radar_1.gif",
		FrameURL:    "http://radar.example.com/radar/radar_1.gif",
		TotalImages: 12,
		LastUpdate:  "2026-08-29 10:05:00",
		Reason:      notifier.AlertReasonNewFrame,
		Timestamp:   time.Now(),
	})

	if embed.Title != "📡 New Radar Frame" {
		t.Errorf("unexpected title: %s", embed.Title)
	}
	if embed.Image == nil || embed.Image.URL == "" {
		t.Error("expected embed image URL")
	}
	if len(embed.Fields) < 2 {
		t.Fatalf("expected frame and archive fields, got %d", len(embed.Fields))
	}
	if embed.Fields[0].Value != "radar_1.gif" {
		t.Errorf("unexpected frame field: %s", embed.Fields[0].Value)
	}
}

func TestBuildFrameEmbed_Stale(t *testing.T) {
	client := NewDiscordClient(zap.NewNop(), &config.Config{})

	embed := client.buildFrameEmbed(notifier.FrameAlert{
		FrameID: "radar_2.gif",
		Reason:  notifier.AlertReasonFeedStale,
	})

	if embed.Title != "⚠️ Radar Feed Stale" {
		t.Errorf("unexpected title: %s", embed.Title)
	}
	if embed.Image != nil {
		t.Error("expected no image without a frame URL")
	}
}
