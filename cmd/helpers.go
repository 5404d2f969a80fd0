package cmd

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
	"github.com/ziadkadry99/webhook-fulfillment/internal/db"
	"github.com/ziadkadry99/webhook-fulfillment/internal/logging"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
)

// loadConfig loads and validates the config, providing a user-friendly error.
// Logging is reconfigured from the file; --verbose still forces debug.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `fulfillment init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.Setup(os.Stderr, level, string(cfg.Log.Format)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openTranscripts opens the transcript store in the configured data
// directory. It returns a nil store when recording is disabled; the close
// func is always safe to call.
func openTranscripts(cfg *config.Config) (*transcript.Store, func(), error) {
	if !cfg.Transcripts.Enabled {
		return nil, func() {}, nil
	}
	database, err := db.OpenInDir(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return transcript.NewStore(database), func() { database.Close() }, nil
}
