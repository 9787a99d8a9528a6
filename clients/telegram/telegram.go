package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"radarwatch/clients/notifier"
	"radarwatch/config"
)

const telegramAPIURL = "https://api.telegram.org/bot%s/%s"

// TelegramClient sends alerts to Telegram.
// Implements notifier.Notifier interface.
type TelegramClient struct {
	logger   *zap.Logger
	botToken string
	chatID   string
	isProd   bool
	client   *http.Client
	apiURL   string
}

func NewTelegramClient(logger *zap.Logger, cfg *config.Config) *TelegramClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	chatID := cfg.Telegram.BetaChatID
	if cfg.IsProd {
		chatID = cfg.Telegram.ProdChatID
	}

	token := cfg.Telegram.BotToken
	if token == "" {
		logger.Warn("TELEGRAM_BOT_KEY not set, Telegram alerts disabled")
		return &TelegramClient{
			logger: logger,
			chatID: chatID,
			isProd: cfg.IsProd,
		}
	}

	logger.Info("telegram bot initialized",
		zap.Bool("isProd", cfg.IsProd),
		zap.String("chatID", chatID),
	)

	return &TelegramClient{
		logger:   logger,
		botToken: token,
		chatID:   chatID,
		isProd:   cfg.IsProd,
		client:   &http.Client{Timeout: 10 * time.Second},
		apiURL:   telegramAPIURL,
	}
}

// SendFrameAlert sends a frame alert notification.
// Implements notifier.Notifier interface.
func (tc *TelegramClient) SendFrameAlert(alert notifier.FrameAlert) {
	if tc.botToken == "" || tc.chatID == "" {
		tc.logger.Warn("telegram not configured, skipping alert")
		return
	}

	message := tc.buildAlertMessage(alert)

	if err := tc.sendMessage(message); err != nil {
		tc.logger.Error("failed to send telegram message", zap.Error(err))
		return
	}

	tc.logger.Info("sent telegram frame alert",
		zap.String("frame", alert.FrameID),
		zap.String("reason", string(alert.Reason)),
	)
}

func (tc *TelegramClient) buildAlertMessage(alert notifier.FrameAlert) string {
	var sb strings.Builder

	title := "📡 New Radar Frame"
	if alert.Reason == notifier.AlertReasonFeedStale {
		title = "⚠️ Radar Feed Stale"
	}
	sb.WriteString(fmt.Sprintf("*%s*\n\n", escapeMarkdown(title)))

	if alert.FrameURL != "" {
		sb.WriteString(fmt.Sprintf("*Frame:* [%s](%s)\n", escapeMarkdown(alert.FrameID), alert.FrameURL))
	} else {
		sb.WriteString(fmt.Sprintf("*Frame:* %s\n", escapeMarkdown(alert.FrameID)))
	}
	sb.WriteString(fmt.Sprintf("*Archive:* %s images\n", humanize.Comma(int64(alert.TotalImages))))

	if alert.LastUpdate != "" {
		sb.WriteString(fmt.Sprintf("*Captured:* %s (%s)\n",
			escapeMarkdown(alert.LastUpdate),
			escapeMarkdown(humanize.Time(time.Now().Add(-alert.LastUpdateAgo)))))
	}

	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(fmt.Sprintf("\n_radarwatch • %s_", ts.Format("1/2/2006, 3:04:05PM (MST)")))

	return sb.String()
}

func (tc *TelegramClient) sendMessage(text string) error {
	url := fmt.Sprintf(tc.apiURL, tc.botToken, "sendMessage")

	payload := map[string]interface{}{
		"chat_id":    tc.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := tc.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// Close cleans up resources. Implements notifier.Notifier interface.
func (tc *TelegramClient) Close() error {
	return nil
}

// escapeMarkdown escapes special characters for Telegram Markdown.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
