package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
	"github.com/ziadkadry99/webhook-fulfillment/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fulfillment",
	Short: "Webhook fulfillment server for conversational agents",
	Long: `Fulfillment answers v1 and v2 conversational-agent webhook calls with
canned responses declared in a YAML file. It records every exchange to a
local SQLite database, replays saved payloads for regression checks, and
exposes a simulator to AI agents via MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		_, err := logging.Setup(os.Stderr, level, string(config.LogText))
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
