package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webhook-fulfillment/internal/responder"
	"github.com/ziadkadry99/webhook-fulfillment/internal/server"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook fulfillment HTTP server",
	Long: `Starts the HTTP server that answers webhook calls on POST /webhook.
When transcripts are enabled, every exchange is recorded and the
/api/transcripts endpoints (including a websocket stream) are mounted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		store, closeStore, err := openTranscripts(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		var bc *transcript.Broadcaster
		if store != nil {
			bc = transcript.NewBroadcaster()
		}

		resp := responder.New(cfg)
		proc := webhook.NewProcessor(resp.Handlers(), store, bc)
		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, proc, store, bc)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			slog.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown failed", "error", err)
			}
		}()

		slog.Info("fulfillment server starting",
			"version", Version,
			"port", cfg.Server.Port,
			"actions", len(resp.Actions()),
			"transcripts", store != nil,
			"data_dir", cfg.DataDir,
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
