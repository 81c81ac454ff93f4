package config

const (
	defaultDataDir           = "~/.local/share/vaultcapture"
	defaultContentDir        = "~/.local/share/vaultcapture/content"
	defaultLogDir            = "~/.local/share/vaultcapture/logs"
	defaultMaxConnections    = 8
	defaultBusyTimeoutMillis = 5000
	defaultModel             = "gemini-2.5-flash"
	defaultWriteMode         = "cli_fallback"
	defaultPublisherCLI      = "obsidian"
	defaultSummarizerBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultSummarizerTimeout = 60
	defaultTemperature       = 0.2
	defaultCapturesFolder    = "AI Captures"
	defaultCLITimeout        = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"

	// MaxAssetBytes is the hard cap on a single ingested file (2 GiB).
	MaxAssetBytes int64 = 2 << 30

	maxConnectionsCeiling = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			ContentDir: defaultContentDir,
			LogDir:     defaultLogDir,
		},
		Store: Store{
			MaxConnections: defaultMaxConnections,
			BusyTimeoutMS:  defaultBusyTimeoutMillis,
		},
		Ingest: Ingest{
			MaxAssetBytes: MaxAssetBytes,
		},
		Defaults: Defaults{
			Model:        defaultModel,
			WriteMode:    defaultWriteMode,
			PublisherCLI: defaultPublisherCLI,
		},
		Summarizer: Summarizer{
			BaseURL:        defaultSummarizerBaseURL,
			TimeoutSeconds: defaultSummarizerTimeout,
			Temperature:    defaultTemperature,
		},
		Publisher: Publisher{
			CapturesFolder:    defaultCapturesFolder,
			CLITimeoutSeconds: defaultCLITimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
