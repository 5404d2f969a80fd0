package config

// LogFormat selects the slog handler used for process logs.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// Config is the top-level fulfillment server configuration, corresponding
// to fulfillment.yml.
type Config struct {
	Server      ServerConfig     `yaml:"server" koanf:"server"`
	DataDir     string           `yaml:"data_dir" koanf:"data_dir"`
	Log         LogConfig        `yaml:"log" koanf:"log"`
	Transcripts TranscriptConfig `yaml:"transcripts" koanf:"transcripts"`
	Actions     []ActionConfig   `yaml:"actions" koanf:"actions"`
	Fallback    []ResponseSpec   `yaml:"fallback" koanf:"fallback"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}

// TranscriptConfig controls recording of webhook exchanges.
type TranscriptConfig struct {
	Enabled       bool `yaml:"enabled" koanf:"enabled"`
	RetentionDays int  `yaml:"retention_days" koanf:"retention_days"`
}

// ActionConfig binds canned responses to an action name. An action named
// "*" catches every action without its own entry.
type ActionConfig struct {
	Name      string         `yaml:"name" koanf:"name"`
	Responses []ResponseSpec `yaml:"responses" koanf:"responses"`
}

// ResponseSpec describes one response element, optionally with a context
// or followup event to set. Text and suggestion strings may reference
// request parameters as {{name}} and the user query as {{$query}}.
type ResponseSpec struct {
	Text        string         `yaml:"text,omitempty" koanf:"text"`
	Card        *CardSpec      `yaml:"card,omitempty" koanf:"card"`
	Image       string         `yaml:"image,omitempty" koanf:"image"`
	Suggestions []string       `yaml:"suggestions,omitempty" koanf:"suggestions"`
	Payload     map[string]any `yaml:"payload,omitempty" koanf:"payload"`
	Platform    string         `yaml:"platform,omitempty" koanf:"platform"`
	Context     *ContextSpec   `yaml:"context,omitempty" koanf:"context"`
	Event       string         `yaml:"event,omitempty" koanf:"event"`
}

// CardSpec describes a card response.
type CardSpec struct {
	Title    string       `yaml:"title" koanf:"title"`
	Subtitle string       `yaml:"subtitle,omitempty" koanf:"subtitle"`
	ImageURL string       `yaml:"image_url,omitempty" koanf:"image_url"`
	Buttons  []ButtonSpec `yaml:"buttons,omitempty" koanf:"buttons"`
}

// ButtonSpec is a card button.
type ButtonSpec struct {
	Text string `yaml:"text" koanf:"text"`
	URL  string `yaml:"url,omitempty" koanf:"url"`
}

// ContextSpec is an outgoing context set alongside a response.
type ContextSpec struct {
	Name       string         `yaml:"name" koanf:"name"`
	Lifespan   int            `yaml:"lifespan,omitempty" koanf:"lifespan"`
	Parameters map[string]any `yaml:"parameters,omitempty" koanf:"parameters"`
}

// elementCount reports how many response elements r describes.
func (r ResponseSpec) elementCount() int {
	n := 0
	if r.Text != "" {
		n++
	}
	if r.Card != nil {
		n++
	}
	if r.Image != "" {
		n++
	}
	if len(r.Suggestions) > 0 {
		n++
	}
	if r.Payload != nil {
		n++
	}
	return n
}
