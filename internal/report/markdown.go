package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/view"
)

// cellLength bounds the matched text shown in the sources table.
const cellLength = 80

// MarkdownWriter writes reports as GitHub-flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(r *Report) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, r)
	if r.Result != nil {
		w.writeResult(md, *r.Result)
	}
	if r.Statistics != nil {
		w.writeStatistics(md, *r.Statistics)
	}
	if r.History != nil {
		w.writeHistory(md, *r.History)
	}
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *Report) {
	md.H1("Similarity Report")
	md.PlainText("")

	rows := [][]string{}
	if r.User != "" {
		rows = append(rows, []string{"User", cell(r.User)})
	}
	if !r.Generated.IsZero() {
		rows = append(rows, []string{"Generated", r.Generated.Format("2006-01-02 15:04:05 MST")})
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeResult(md *markdown.Markdown, res api.AnalysisResult) {
	md.H2("Analysis")
	md.PlainText("")

	if res.Error != "" {
		md.Cautionf("Analysis error: %s", res.Error)
		md.PlainText("")
		return
	}

	v := view.NewResultsView(res)
	detection := "Not Detected"
	if v.AIDetected {
		detection = "Detected"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Similarity Score", v.Score},
			{"Rating", string(v.Badge)},
			{"AI Detection", detection},
			{"AI Confidence", v.AIConfidence},
		},
	})
	md.PlainText("")

	switch {
	case v.Badge == view.BadgeRed:
		md.Warningf("High similarity: %s of the text matches existing sources.", v.Score)
	case len(v.Sources) == 0:
		md.Tip("No similar content found. Your text appears to be original!")
	default:
		md.Notef("%d similar source(s) found.", len(v.Sources))
	}
	md.PlainText("")

	if v.ParaphrasedText != "" {
		md.H3("Paraphrased Version")
		md.PlainText("")
		md.PlainText(v.ParaphrasedText)
		md.PlainText("")
	}

	if len(v.Sources) > 0 {
		md.H2("Matched Sources")
		md.PlainText("")
		rows := make([][]string, len(v.Sources))
		for i, s := range v.Sources {
			rows[i] = []string{
				cell(s.Title),
				cell(s.URL),
				s.Similarity,
				cell(view.Truncate(s.MatchedText, cellLength)),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "URL", "Similarity", "Matched Text"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, stats api.Statistics) {
	md.H2("Statistics")
	md.PlainText("")

	v := view.NewStatisticsView(stats)
	rows := make([][]string, len(v.Cells))
	for i, c := range v.Cells {
		rows[i] = []string{c.Label, c.Value}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeHistory(md *markdown.Markdown, page api.HistoryPage) {
	md.H2("Search History")
	md.PlainText("")

	v := view.NewHistoryView(page)
	if len(v.Items) == 0 {
		md.PlainText("No search history found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(v.Items))
	for i, it := range v.Items {
		rows[i] = []string{
			strconv.FormatInt(it.ID, 10),
			cell(it.Snippet),
			it.Similarity,
			it.Status,
			cell(it.Date + " " + it.Time),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Query", "Similarity", "Status", "Date"},
		Rows:   rows,
	})
	md.PlainText("")
	if v.TotalPages > 1 {
		md.PlainTextf("Page %d of %d (%d searches)", v.DisplayPage(), v.TotalPages, v.TotalElements)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by simcheck*")
}
