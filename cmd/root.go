package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/config"
	"github.com/ziadkadry99/simcheck/internal/session"
)

var (
	cfgFile     string
	sessionFile string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "simcheck",
	Short: "Check text for similarity to published sources and AI authorship",
	Long: `simcheck is a client for a text-similarity and AI-detection service.
It analyzes text from the terminal, serves a browser UI for the same
workflow, runs batch checks over directories of documents and exposes
the analysis tools to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", session.DefaultPath(), "session file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
