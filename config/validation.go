package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Err flattens the result into a single error, or nil if valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateRadar(&c.Radar)...)
	errors = append(errors, validatePoller(&c.Poller)...)
	errors = append(errors, validatePlayer(&c.Player)...)
	errors = append(errors, validateStatsServer(&c.StatsServer)...)

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateRadar(r *RadarConfig) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(r.StatusURL) == "" {
		errors = append(errors, ValidationError{
			Field:   "radar.status_url",
			Message: "must not be empty",
		})
	}

	if r.FetchTimeout < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "radar.fetch_timeout",
			Message: "must be at least 1 second",
		})
	}

	return errors
}

func validatePoller(p *PollerConfig) []ValidationError {
	var errors []ValidationError

	if p.Interval < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "poller.interval",
			Message: "must be at least 1 second",
		})
	}

	if p.Cooldown <= 0 {
		errors = append(errors, ValidationError{
			Field:   "poller.cooldown",
			Message: "must be positive",
		})
	}

	// A cooldown longer than the interval would block every periodic check.
	if p.Cooldown > p.Interval {
		errors = append(errors, ValidationError{
			Field:   "poller.cooldown",
			Message: "must not exceed poller.interval",
		})
	}

	if p.WarmupDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "poller.warmup_delay",
			Message: "must be non-negative",
		})
	}

	if p.StaleAfter <= 0 {
		errors = append(errors, ValidationError{
			Field:   "poller.stale_after",
			Message: "must be positive",
		})
	}

	return errors
}

func validatePlayer(p *PlayerConfig) []ValidationError {
	var errors []ValidationError

	if p.TickPeriod < 50*time.Millisecond {
		errors = append(errors, ValidationError{
			Field:   "player.tick_period",
			Message: "must be at least 50ms",
		})
	}

	if p.AutoStartDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "player.auto_start_delay",
			Message: "must be non-negative",
		})
	}

	return errors
}

func validateStatsServer(s *StatsServerConfig) []ValidationError {
	var errors []ValidationError

	if s.Enabled && (s.Port < 1 || s.Port > 65535) {
		errors = append(errors, ValidationError{
			Field:   "stats_server.port",
			Message: "must be between 1 and 65535",
		})
	}

	return errors
}
