package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/webhook-fulfillment/internal/fulfillment"
)

// EnvPrefix is the prefix of environment variable overrides. A double
// underscore descends into a section: FULFILLMENT_SERVER__PORT sets
// server.port.
const EnvPrefix = "FULFILLMENT_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FULFILLMENT_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. The fallback list is filled in afterwards so a
	// configured list replaces it instead of being merged into it.
	cfg := DefaultConfig()
	cfg.Fallback = nil

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.Fallback == nil {
		cfg.Fallback = DefaultConfig().Fallback
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != LogText && c.Log.Format != LogJSON {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	if c.Transcripts.RetentionDays < 0 {
		return fmt.Errorf("transcripts.retention_days must be non-negative")
	}

	seen := make(map[string]bool, len(c.Actions))
	for i, a := range c.Actions {
		if a.Name == "" {
			return fmt.Errorf("actions[%d]: name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("actions[%d]: duplicate action %q", i, a.Name)
		}
		seen[a.Name] = true
		if err := validateResponses(a.Responses); err != nil {
			return fmt.Errorf("action %q: %w", a.Name, err)
		}
	}
	if err := validateResponses(c.Fallback); err != nil {
		return fmt.Errorf("fallback: %w", err)
	}
	return nil
}

func validateResponses(specs []ResponseSpec) error {
	for i, r := range specs {
		if r.elementCount() > 1 {
			return fmt.Errorf("response %d: only one of text, card, image, suggestions, payload may be set", i)
		}
		if r.elementCount() == 0 && r.Context == nil && r.Event == "" {
			return fmt.Errorf("response %d: empty response", i)
		}
		if r.Card != nil && r.Card.Title == "" {
			return fmt.Errorf("response %d: card title is required", i)
		}
		if r.Context != nil && r.Context.Name == "" {
			return fmt.Errorf("response %d: context name is required", i)
		}
		if r.Platform != "" {
			p := fulfillment.ParseSource(r.Platform)
			if !p.IsUnspecified() && !p.IsSupported() {
				return fmt.Errorf("response %d: %w: %s", i, fulfillment.ErrUnsupportedPlatform, r.Platform)
			}
		}
	}
	return nil
}

// FindAction returns the configured action with the given name.
func (c *Config) FindAction(name string) (ActionConfig, bool) {
	for _, a := range c.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return ActionConfig{}, false
}
