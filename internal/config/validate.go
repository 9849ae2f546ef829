package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateNyaa(); err != nil {
		return err
	}
	if err := c.validateParser(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateNyaa() error {
	parsed, err := url.Parse(c.Nyaa.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("nyaa.base_url must be an absolute URL, got %q", c.Nyaa.BaseURL)
	}
	if c.Nyaa.Filter < 0 || c.Nyaa.Filter > 2 {
		return errors.New("nyaa.filter must be 0, 1, or 2")
	}
	if c.Nyaa.RequestsPerMinute < 0 {
		return errors.New("nyaa.requests_per_minute must be >= 0")
	}
	return nil
}

func (c *Config) validateParser() error {
	switch c.Parser.Backend {
	case defaultParserBackendLLM:
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("llm.api_key is required when parser.backend is %q. Set OPENAI_API_KEY or edit %s (create with 'animetracker config init')", defaultParserBackendLLM, defaultPath)
		}
	case defaultParserBackendRelease:
	default:
		return fmt.Errorf("parser.backend must be %q or %q, got %q", defaultParserBackendLLM, defaultParserBackendRelease, c.Parser.Backend)
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.EpisodeDelayMS < 0 {
		return errors.New("scan.episode_delay_ms must be >= 0")
	}
	if c.Scan.ErrorDelayMS < 0 {
		return errors.New("scan.error_delay_ms must be >= 0")
	}
	if c.Scan.Schedule != "" {
		if _, err := cron.ParseStandard(c.Scan.Schedule); err != nil {
			return fmt.Errorf("scan.schedule: %w", err)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	token := strings.TrimSpace(c.Notifications.PushoverToken)
	user := strings.TrimSpace(c.Notifications.PushoverUser)
	if (token == "") != (user == "") {
		return errors.New("notifications.pushover_token and notifications.pushover_user must be set together")
	}
	return nil
}
