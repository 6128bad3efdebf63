package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/page"
)

var (
	statsFormat   string
	historyPage   int
	historyFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your search statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(statsFormat); err != nil {
			return err
		}
		t, err := openTerminal(cmd.Context())
		if err != nil {
			return err
		}

		if statsFormat != "text" {
			if err := t.ctrl.LoadStatistics(cmd.Context()); err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), statsFormat, t, false, false)
		}

		sub := t.print(cmd.OutOrStdout(), page.PanelStatistics)
		defer sub.Dispose()
		return t.ctrl.LoadStatistics(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past searches",
	Long:  `Lists your past searches, newest first. Use "simcheck sources <id>" to see the sources matched by one of them.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(historyFormat); err != nil {
			return err
		}
		t, err := openTerminal(cmd.Context())
		if err != nil {
			return err
		}

		// --page is one-based.
		if historyFormat != "text" {
			if err := t.ctrl.LoadHistoryPage(cmd.Context(), historyPage-1); err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), historyFormat, t, false, true)
		}

		sub := t.print(cmd.OutOrStdout(), page.PanelHistory)
		defer sub.Dispose()
		return t.ctrl.LoadHistoryPage(cmd.Context(), historyPage-1)
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <id>",
	Short: "Show the sources matched by a past search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid history id %q", args[0])
		}
		t, err := openTerminal(cmd.Context())
		if err != nil {
			return err
		}
		sub := t.print(cmd.OutOrStdout(), page.PanelResults)
		defer sub.Dispose()
		return t.ctrl.ViewHistoryItem(cmd.Context(), id)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "text", "output format: text, markdown or html")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number, starting at 1")
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "output format: text, markdown or html")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sourcesCmd)
}
