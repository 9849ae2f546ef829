package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeNyaa()
	c.normalizeLLM()
	c.normalizeParser()
	c.normalizeScan()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("ANIMETRACKER_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNyaa() {
	c.Nyaa.BaseURL = strings.TrimRight(strings.TrimSpace(c.Nyaa.BaseURL), "/")
	if c.Nyaa.BaseURL == "" {
		c.Nyaa.BaseURL = defaultNyaaBaseURL
	}
	c.Nyaa.Category = strings.TrimSpace(c.Nyaa.Category)
	if c.Nyaa.Category == "" {
		c.Nyaa.Category = defaultNyaaCategory
	}
	if c.Nyaa.TimeoutSeconds <= 0 {
		c.Nyaa.TimeoutSeconds = defaultNyaaTimeoutSeconds
	}
	c.Nyaa.UserAgent = strings.TrimSpace(c.Nyaa.UserAgent)
	if c.Nyaa.UserAgent == "" {
		c.Nyaa.UserAgent = defaultNyaaUserAgent
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeParser() {
	c.Parser.Backend = strings.ToLower(strings.TrimSpace(c.Parser.Backend))
	if c.Parser.Backend == "" {
		if c.LLM.APIKey != "" {
			c.Parser.Backend = defaultParserBackendLLM
		} else {
			c.Parser.Backend = defaultParserBackendRelease
		}
	}
	if c.Parser.CacheTTLHours <= 0 {
		c.Parser.CacheTTLHours = defaultParseCacheTTLHours
	}
}

func (c *Config) normalizeScan() {
	c.Scan.Schedule = strings.TrimSpace(c.Scan.Schedule)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Notifications.PushoverToken = strings.TrimSpace(c.Notifications.PushoverToken)
	if c.Notifications.PushoverToken == "" {
		if value, ok := os.LookupEnv("PUSHOVER_TOKEN"); ok {
			c.Notifications.PushoverToken = strings.TrimSpace(value)
		}
	}
	c.Notifications.PushoverUser = strings.TrimSpace(c.Notifications.PushoverUser)
	if c.Notifications.PushoverUser == "" {
		if value, ok := os.LookupEnv("PUSHOVER_USER"); ok {
			c.Notifications.PushoverUser = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
}
