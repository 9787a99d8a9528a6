package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Environment
	IsProd bool `json:"is_prod" yaml:"is_prod"`

	// Radar status feed
	Radar RadarConfig `json:"radar" yaml:"radar"`

	// Freshness polling
	Poller PollerConfig `json:"poller" yaml:"poller"`

	// Animation playback
	Player PlayerConfig `json:"player" yaml:"player"`

	// Terminal dashboard
	TUI TUIConfig `json:"tui" yaml:"tui"`

	// Discord notifications
	Discord DiscordConfig `json:"discord" yaml:"discord"`

	// Telegram notifications
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`

	// Stats/health server
	StatsServer StatsServerConfig `json:"stats_server" yaml:"stats_server"`
}

// RadarConfig holds status-feed configuration.
type RadarConfig struct {
	// StatusURL is the base URL of the radar dashboard server; the status
	// feed lives at {StatusURL}/api/status and frames at {StatusURL}/radar/.
	StatusURL    string        `json:"status_url" yaml:"status_url"`
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`
}

// PollerConfig holds freshness-check scheduling configuration.
type PollerConfig struct {
	Interval    time.Duration `json:"interval" yaml:"interval"`         // periodic check cadence
	Cooldown    time.Duration `json:"cooldown" yaml:"cooldown"`         // minimum spacing between dispatched checks
	WarmupDelay time.Duration `json:"warmup_delay" yaml:"warmup_delay"` // delay before the first check of a session
	StaleAfter  time.Duration `json:"stale_after" yaml:"stale_after"`   // feed age beyond which the display reads "stale"
}

// PlayerConfig holds animation-loop configuration.
type PlayerConfig struct {
	TickPeriod     time.Duration `json:"tick_period" yaml:"tick_period"`
	AutoStartDelay time.Duration `json:"auto_start_delay" yaml:"auto_start_delay"`
	Frames         []string      `json:"frames" yaml:"frames"` // recent frame refs forming the loop
}

// TUIConfig holds terminal dashboard configuration.
type TUIConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	LogFile string `json:"log_file" yaml:"log_file"` // zap output while the TUI owns the terminal
}

// DiscordConfig holds Discord-related configuration.
type DiscordConfig struct {
	BotToken      string `json:"-" yaml:"-"` // Excluded - env var only
	ProdChannelID string `json:"prod_channel_id" yaml:"prod_channel_id"`
	BetaChannelID string `json:"beta_channel_id" yaml:"beta_channel_id"`
}

// TelegramConfig holds Telegram-related configuration.
type TelegramConfig struct {
	BotToken   string `json:"-" yaml:"-"` // Excluded - env var only
	ProdChatID string `json:"prod_chat_id" yaml:"prod_chat_id"`
	BetaChatID string `json:"beta_chat_id" yaml:"beta_chat_id"`
}

// StatsServerConfig holds stats/health server configuration.
type StatsServerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

// Clone creates a deep copy of the config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Player.Frames != nil {
		clone.Player.Frames = make([]string, len(c.Player.Frames))
		copy(clone.Player.Frames, c.Player.Frames)
	}
	return &clone
}

// ToJSON serializes the config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Defaults returns a config with hardcoded default values.
func Defaults() *Config {
	return &Config{
		IsProd: false,
		Radar: RadarConfig{
			StatusURL:    "http://localhost:5000",
			FetchTimeout: 30 * time.Second,
		},
		Poller: PollerConfig{
			Interval:    5 * time.Minute,
			Cooldown:    5 * time.Minute,
			WarmupDelay: 30 * time.Second,
			StaleAfter:  30 * time.Minute,
		},
		Player: PlayerConfig{
			TickPeriod:     800 * time.Millisecond,
			AutoStartDelay: 1 * time.Second,
		},
		TUI: TUIConfig{
			Enabled: true,
			LogFile: "radarwatch.log",
		},
		Discord:  DiscordConfig{},
		Telegram: TelegramConfig{},
		StatsServer: StatsServerConfig{
			Enabled: true,
			Port:    8086,
		},
	}
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		IsProd: envBool("STAGE", "PROD"),

		Radar: RadarConfig{
			StatusURL:    envString("RADAR_STATUS_URL", "http://localhost:5000"),
			FetchTimeout: envDuration("RADAR_FETCH_TIMEOUT", 30*time.Second),
		},

		Poller: PollerConfig{
			Interval:    envDuration("POLL_INTERVAL", 5*time.Minute),
			Cooldown:    envDuration("POLL_COOLDOWN", 5*time.Minute),
			WarmupDelay: envDuration("POLL_WARMUP_DELAY", 30*time.Second),
			StaleAfter:  envDuration("POLL_STALE_AFTER", 30*time.Minute),
		},

		Player: PlayerConfig{
			TickPeriod:     envDuration("PLAYER_TICK_PERIOD", 800*time.Millisecond),
			AutoStartDelay: envDuration("PLAYER_AUTO_START_DELAY", 1*time.Second),
			Frames:         envStringSlice("PLAYER_FRAMES"),
		},

		TUI: TUIConfig{
			Enabled: envBoolDefault("TUI_ENABLED", true),
			LogFile: envString("TUI_LOG_FILE", "radarwatch.log"),
		},

		Discord: DiscordConfig{
			BotToken:      envString("DISCORD_BOT_TOKEN", ""),
			ProdChannelID: envString("DISCORD_PROD_CHANNEL_ID", ""),
			BetaChannelID: envString("DISCORD_BETA_CHANNEL_ID", ""),
		},

		Telegram: TelegramConfig{
			BotToken:   envString("TELEGRAM_BOT_KEY", ""),
			ProdChatID: envString("TELEGRAM_PROD_CHAT_ID", ""),
			BetaChatID: envString("TELEGRAM_BETA_CHAT_ID", ""),
		},

		StatsServer: StatsServerConfig{
			Enabled: envBoolDefault("STATS_SERVER_ENABLED", true),
			Port:    envInt("STATS_SERVER_PORT", 8086),
		},
	}
}

// Helper functions for parsing environment variables

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func envBool(key, trueValue string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), trueValue)
}

func envBoolDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1") || strings.EqualFold(v, "yes")
}

func envStringSlice(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
