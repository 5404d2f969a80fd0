package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/webhook-fulfillment/internal/mcp"
	"github.com/ziadkadry99/webhook-fulfillment/internal/responder"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing tools to simulate webhook calls against the configured handlers and to browse recorded transcripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, closeStore, err := openTranscripts(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		resp := responder.New(cfg)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		slog.Info("fulfillment MCP server started on stdio", "actions", len(resp.Actions()), "transcripts", store != nil)

		srv := mcpserver.NewServer(resp.Handlers(), resp.Actions(), store)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
