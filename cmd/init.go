package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize simcheck configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the analysis API location and writes simcheck.yml (or the file named by --config).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
