package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/report"
)

var (
	analyzeFile       string
	analyzeParaphrase bool
	analyzeFormat     string
	analyzeOutput     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Check a text for similarity and AI authorship",
	Long: `Submits a text to the analysis service and prints the similarity score,
the AI-detection verdict and any matched sources.

The text is taken from the arguments, from --file, or from standard input
when --file is "-". It must contain at least 10 characters.`,
	Example: `  simcheck analyze "The quick brown fox jumps over the lazy dog"
  simcheck analyze --file essay.txt --paraphrase
  simcheck analyze --file essay.txt --format html --output report.html`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", `read the text from a file ("-" for stdin)`)
	analyzeCmd.Flags().BoolVarP(&analyzeParaphrase, "paraphrase", "p", false, "also request a paraphrased version")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, markdown or html")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write output to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := analyzeInput(args)
	if err != nil {
		return err
	}
	if err := validateFormat(analyzeFormat); err != nil {
		return err
	}

	t, err := openTerminal(cmd.Context())
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(analyzeOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	if analyzeFormat == "text" {
		sub := t.print(out, page.PanelResults)
		defer sub.Dispose()
		return t.ctrl.Analyze(cmd.Context(), text, analyzeParaphrase)
	}

	// Reports are built from the typed result, but the spinner still runs.
	sub := t.print(io.Discard)
	defer sub.Dispose()
	if err := t.ctrl.Analyze(cmd.Context(), text, analyzeParaphrase); err != nil {
		return err
	}
	return writeReport(out, analyzeFormat, t, true, false)
}

func analyzeInput(args []string) (string, error) {
	switch {
	case analyzeFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case analyzeFile != "":
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", analyzeFile, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", fmt.Errorf("no text given: pass it as arguments or use --file")
}

func validateFormat(format string) error {
	switch format {
	case "text", string(report.FormatMarkdown), string(report.FormatHTML):
		return nil
	}
	return fmt.Errorf("unknown format %q: must be one of text, markdown, html", format)
}

// openOutput returns stdout, or the named file created for writing.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// writeReport writes the controller's last result, statistics and/or
// history as a Markdown or HTML report.
func writeReport(w io.Writer, format string, t *terminal, withResult, withHistory bool) error {
	rep := &report.Report{
		Generated:  time.Now(),
		Statistics: t.ctrl.LastStatistics(),
	}
	if u := t.ctrl.User(); u != nil {
		rep.User = u.Username
	}
	if withResult {
		rep.Result = t.ctrl.LastResult()
	}
	if withHistory {
		rep.History = t.ctrl.LastHistory()
	}

	writer := report.NewWriter(report.Format(format), w)
	if writer == nil {
		return fmt.Errorf("unknown report format %q", format)
	}
	return writer.Write(rep)
}
