package clients

import (
	"go.uber.org/zap"

	"radarwatch/clients/discord"
	"radarwatch/clients/notifier"
	"radarwatch/clients/radarapi"
	"radarwatch/clients/telegram"
	"radarwatch/config"
)

type Clients struct {
	Logger *zap.Logger

	Discord  *discord.DiscordClient
	Telegram *telegram.TelegramClient
	Notifier notifier.Notifier // Combined notifier for all channels
	Radar    *radarapi.Client
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	discordClient := discord.NewDiscordClient(logger, cfg)
	telegramClient := telegram.NewTelegramClient(logger, cfg)

	// Create combined notifier for all channels
	multiNotifier := notifier.NewMultiNotifier(discordClient, telegramClient)

	return &Clients{
		Logger:   logger,
		Discord:  discordClient,
		Telegram: telegramClient,
		Notifier: multiNotifier,
		Radar:    radarapi.NewClient(logger, cfg),
	}
}
