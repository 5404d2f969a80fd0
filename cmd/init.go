package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/webhook-fulfillment/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize fulfillment configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the listen port, logging and transcript settings, and the actions to scaffold, then writes fulfillment.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
