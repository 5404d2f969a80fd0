package config

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "fulfillment.yml"

// WildcardAction is the action name that matches any otherwise unhandled
// action.
const WildcardAction = "*"

// DefaultFallbackText is answered when no configured action matches.
const DefaultFallbackText = "Sorry, I can't help with that yet."

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: false,
		},
		DataDir: ".fulfillment",
		Log: LogConfig{
			Level:  "info",
			Format: LogText,
		},
		Transcripts: TranscriptConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Fallback: []ResponseSpec{{Text: DefaultFallbackText}},
	}
}
