package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete transcripts older than the retention window",
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
		if store == nil {
			return fmt.Errorf("transcript recording is disabled in %s", cfgFile)
		}

		days := cfg.Transcripts.RetentionDays
		if pruneDays > 0 {
			days = pruneDays
		}
		if days <= 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Retention is unlimited; nothing to prune.")
			return nil
		}

		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		n, err := store.DeleteBefore(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d transcript(s) older than %d day(s).\n", n, days)
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention in days (overrides transcripts.retention_days)")
	rootCmd.AddCommand(pruneCmd)
}
