package testsupport

import (
	"path/filepath"
	"testing"

	"animetracker/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Delays are zeroed so scans run without pauses, and the parser uses the
// offline release backend with caching disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Parser.Backend = "release"
	cfgVal.Parser.CacheEnabled = false
	cfgVal.Scan.EpisodeDelayMS = 0
	cfgVal.Scan.ErrorDelayMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNyaaURL points searches at a test server.
func WithNyaaURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Nyaa.BaseURL = url
		b.cfg.Nyaa.RequestsPerMinute = 0
	}
}

// WithLLM enables the LLM parser backend against the given endpoint.
func WithLLM(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parser.Backend = "llm"
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.APIKey = apiKey
	}
}

// WithParseCache enables the on-disk title parse cache.
func WithParseCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Parser.CacheEnabled = true
	}
}

// WithNtfyTopic routes notifications to the given ntfy topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithAPIToken requires bearer authentication on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
