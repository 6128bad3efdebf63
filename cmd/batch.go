package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/batch"
	"github.com/ziadkadry99/simcheck/internal/config"
	"github.com/ziadkadry99/simcheck/internal/progress"
	"github.com/ziadkadry99/simcheck/internal/view"
)

var (
	batchInclude     string
	batchExclude     string
	batchConcurrency int
	batchRPM         int
	batchParaphrase  bool
	batchFailOnHigh  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <path>",
	Short: "Analyze every text document under a directory",
	Long: `Walks a directory, selects documents by glob pattern and submits each
one for analysis. Documents shorter than 10 characters and exact duplicates
are skipped. Results are printed as a table followed by a summary.`,
	Example: `  simcheck batch ./essays
  simcheck batch ./submissions --include "**/*.txt" --concurrency 4 --fail-on-high`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchInclude, "include", "", "comma-separated include globs (default from config)")
	batchCmd.Flags().StringVar(&batchExclude, "exclude", "", "comma-separated extra exclude globs")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 0, "parallel requests (default from config)")
	batchCmd.Flags().IntVar(&batchRPM, "rpm", -1, "maximum requests per minute, 0 for unlimited (default from config)")
	batchCmd.Flags().BoolVarP(&batchParaphrase, "paraphrase", "p", false, "also request paraphrased versions")
	batchCmd.Flags().BoolVar(&batchFailOnHigh, "fail-on-high", false, "exit with an error when any document scores 70% or more")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	include := cfg.Batch.Include
	if batchInclude != "" {
		include = config.SplitList(batchInclude)
	}
	exclude := append([]string{}, cfg.Batch.Exclude...)
	exclude = append(exclude, config.SplitList(batchExclude)...)
	concurrency := cfg.Batch.Concurrency
	if batchConcurrency > 0 {
		concurrency = batchConcurrency
	}
	rpm := cfg.Batch.RequestsPerMinute
	if batchRPM >= 0 {
		rpm = batchRPM
	}

	files, err := batch.Collect(batch.Selection{
		Root:    args[0],
		Include: include,
		Exclude: exclude,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching documents found.")
		return nil
	}

	client, _, err := authenticatedClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	outcomes, err := batch.Run(cmd.Context(), batch.Limit(client, rpm), files, batch.Options{
		Concurrency:       concurrency,
		CheckParaphrasing: batchParaphrase,
		Reporter:          progress.NewReporter(),
		Logger:            logger,
	})
	printOutcomes(cmd.OutOrStdout(), outcomes)
	if err != nil {
		return err
	}

	summary := batch.Summarize(outcomes)
	if batchFailOnHigh && summary.HighSimilarity > 0 {
		return fmt.Errorf("%d document(s) with high similarity", summary.HighSimilarity)
	}
	return nil
}

func printOutcomes(w io.Writer, outcomes []batch.Outcome) {
	fmt.Fprintf(w, "%-40s %10s  %-8s %s\n", "DOCUMENT", "SIMILARITY", "AI", "NOTE")
	for _, o := range outcomes {
		name := view.Truncate(o.File.RelPath, 37)
		switch {
		case o.Skipped != "":
			fmt.Fprintf(w, "%-40s %10s  %-8s skipped: %s\n", name, "-", "-", o.Skipped)
		case o.Err != nil:
			fmt.Fprintf(w, "%-40s %10s  %-8s error: %v\n", name, "-", "-", o.Err)
		case o.Result.Error != "":
			fmt.Fprintf(w, "%-40s %10s  %-8s error: %s\n", name, "-", "-", o.Result.Error)
		default:
			score := o.Score()
			ai := "no"
			if o.Result.AIDetected {
				ai = "yes"
			}
			fmt.Fprintf(w, "%-40s %10s  %-8s %s, %d source(s)\n",
				name, view.FormatPercent(score), ai, view.ScoreBadge(score), len(o.Result.MatchedSources))
		}
	}

	s := batch.Summarize(outcomes)
	fmt.Fprintf(w, "\n%d document(s): %d analyzed, %d failed, %d skipped; %d high similarity, %d AI-written, highest %s\n",
		s.Total, s.Analyzed, s.Failed, s.Skipped, s.HighSimilarity, s.AIDetected, view.FormatPercent(s.MaxScore))
}
