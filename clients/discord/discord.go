package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"radarwatch/clients/notifier"
	"radarwatch/config"
)

// DiscordClient sends alerts to Discord.
// Implements notifier.Notifier interface.
type DiscordClient struct {
	logger    *zap.Logger
	session   *discordgo.Session
	channelID string
	isProd    bool
}

func NewDiscordClient(logger *zap.Logger, cfg *config.Config) *DiscordClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	channelID := cfg.Discord.BetaChannelID
	if cfg.IsProd {
		channelID = cfg.Discord.ProdChannelID
	}

	token := cfg.Discord.BotToken
	if token == "" {
		logger.Warn("DISCORD_BOT_TOKEN not set, Discord alerts disabled")
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
			isProd:    cfg.IsProd,
		}
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Error("failed to create discord session", zap.Error(err))
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
			isProd:    cfg.IsProd,
		}
	}

	logger.Info("discord bot initialized",
		zap.Bool("isProd", cfg.IsProd),
		zap.String("channelID", channelID),
	)

	return &DiscordClient{
		logger:    logger,
		session:   session,
		channelID: channelID,
		isProd:    cfg.IsProd,
	}
}

// SendMessage sends a plain text message.
func (dc *DiscordClient) SendMessage(message string) {
	if dc.session == nil {
		dc.logger.Warn("discord session not initialized, skipping message")
		return
	}

	_, err := dc.session.ChannelMessageSend(dc.channelID, message)
	if err != nil {
		dc.logger.Error("failed to send discord message", zap.Error(err))
		return
	}

	dc.logger.Info("sent discord message")
}

// SendFrameAlert sends a rich embedded frame alert.
// Implements notifier.Notifier interface.
func (dc *DiscordClient) SendFrameAlert(alert notifier.FrameAlert) {
	if dc.session == nil {
		dc.logger.Warn("discord session not initialized, skipping alert")
		return
	}

	embed := dc.buildFrameEmbed(alert)

	_, err := dc.session.ChannelMessageSendEmbed(dc.channelID, embed)
	if err != nil {
		dc.logger.Error("failed to send discord embed", zap.Error(err))
		return
	}

	dc.logger.Info("sent discord frame alert",
		zap.String("frame", alert.FrameID),
		zap.String("reason", string(alert.Reason)),
	)
}

func (dc *DiscordClient) buildFrameEmbed(alert notifier.FrameAlert) *discordgo.MessageEmbed {
	color := 0x3498DB // Blue for new frames
	title := "📡 New Radar Frame"
	if alert.Reason == notifier.AlertReasonFeedStale {
		color = 0xE67E22 // Orange for stale feed
		title = "⚠️ Radar Feed Stale"
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Frame",
			Value:  alert.FrameID,
			Inline: true,
		},
		{
			Name:   "Archive Size",
			Value:  fmt.Sprintf("%s images", humanize.Comma(int64(alert.TotalImages))),
			Inline: true,
		},
	}

	if alert.LastUpdate != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Captured",
			Value:  fmt.Sprintf("%s (%s)", alert.LastUpdate, humanize.Time(time.Now().Add(-alert.LastUpdateAgo))),
			Inline: false,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Fields:    fields,
		Timestamp: alert.Timestamp.Format(time.RFC3339),
	}

	if alert.FrameURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: alert.FrameURL}
	}

	return embed
}

// Close cleans up the Discord session.
// Implements notifier.Notifier interface.
func (dc *DiscordClient) Close() error {
	if dc.session == nil {
		return nil
	}
	return dc.session.Close()
}
