package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webhook-fulfillment/internal/progress"
	"github.com/ziadkadry99/webhook-fulfillment/internal/replay"
	"github.com/ziadkadry99/webhook-fulfillment/internal/responder"
	"github.com/ziadkadry99/webhook-fulfillment/internal/transcript"
	"github.com/ziadkadry99/webhook-fulfillment/internal/webhook"
)

var (
	replayOut     string
	replayExclude []string
	replayRecord  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <pattern>...",
	Short: "Replay saved webhook payloads through the configured handlers",
	Long: `Runs every JSON payload matching the given glob patterns (** is supported)
through the configured handlers and reports the outcome of each. With --out
the responses are written as <name>.response.json. The command fails when
any payload is not answered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		files, err := replay.Expand(args, replayExclude)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no payloads match %v", args)
		}

		var store *transcript.Store
		if replayRecord {
			s, closeStore, err := openTranscripts(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			store = s
		}

		proc := webhook.NewProcessor(responder.New(cfg).Handlers(), store, nil)
		summary, err := replay.Run(cmd.Context(), proc, files, replayOut, progress.NewReporter("Replaying"))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, res := range summary.Results {
			ex := res.Exchange
			line := fmt.Sprintf("%-11s %d  %s", ex.Outcome, ex.Status, res.Path)
			if ex.Err != nil {
				line += fmt.Sprintf("  (%v)", ex.Err)
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "\n%d payload(s): %d answered, %d no handler, %d failed, %d rejected\n",
			len(summary.Results),
			summary.Counts[transcript.OutcomeAnswered],
			summary.Counts[transcript.OutcomeNoHandler],
			summary.Counts[transcript.OutcomeFailed],
			summary.Counts[transcript.OutcomeRejected],
		)

		if n := summary.Failed(); n > 0 {
			return fmt.Errorf("%d payload(s) were not answered", n)
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "directory to write responses into")
	replayCmd.Flags().StringSliceVar(&replayExclude, "exclude", nil, "glob patterns of payloads to skip")
	replayCmd.Flags().BoolVar(&replayRecord, "record", false, "record the replayed exchanges as transcripts")
	rootCmd.AddCommand(replayCmd)
}
