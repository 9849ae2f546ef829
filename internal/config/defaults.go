package config

const (
	defaultConfigPath           = "~/.config/animetracker/config.toml"
	defaultDataDir              = "~/.local/share/animetracker"
	defaultLogDir               = "~/.local/share/animetracker/logs"
	defaultAPIBind              = "127.0.0.1:7488"
	defaultNyaaBaseURL          = "https://nyaa.si"
	defaultNyaaCategory         = "1_2"
	defaultNyaaTimeoutSeconds   = 30
	defaultNyaaRequestsPerMin   = 60
	defaultNyaaUserAgent        = "animetracker/dev"
	defaultParserBackendLLM     = "llm"
	defaultParserBackendRelease = "release"
	defaultParseCacheTTLHours   = 7 * 24
	defaultLLMBaseURL           = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel             = "gpt-3.5-turbo"
	defaultLLMReferer           = "https://github.com/animetracker/animetracker"
	defaultLLMTitle             = "Anime Tracker Title Parser"
	defaultLLMTimeoutSeconds    = 60
	defaultEpisodeDelayMS       = 1000
	defaultErrorDelayMS         = 2000
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultLogMaxSizeMB         = 20
	defaultLogMaxBackups        = 5
)

// Default returns a Config populated with repository defaults.
// Parser.Backend is left empty so normalization can pick one based on
// whether an LLM key is available.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Nyaa: Nyaa{
			BaseURL:           defaultNyaaBaseURL,
			Category:          defaultNyaaCategory,
			TimeoutSeconds:    defaultNyaaTimeoutSeconds,
			RequestsPerMinute: defaultNyaaRequestsPerMin,
			UserAgent:         defaultNyaaUserAgent,
		},
		Parser: Parser{
			CacheEnabled:  true,
			CacheTTLHours: defaultParseCacheTTLHours,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Scan: Scan{
			EpisodeDelayMS: defaultEpisodeDelayMS,
			ErrorDelayMS:   defaultErrorDelayMS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			OnMatch:        true,
			OnScanComplete: true,
			OnError:        true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
		},
	}
}
