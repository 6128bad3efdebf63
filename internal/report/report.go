// Package report exports analysis results, statistics and history as
// Markdown or HTML documents.
package report

import (
	"io"
	"strings"
	"time"

	"github.com/ziadkadry99/simcheck/internal/api"
)

// Report is the content of an exported document. Nil sections are
// omitted.
type Report struct {
	User       string
	Generated  time.Time
	Result     *api.AnalysisResult
	Statistics *api.Statistics
	History    *api.HistoryPage
}

// Empty reports whether the report has no section to write.
func (r *Report) Empty() bool {
	return r.Result == nil && r.Statistics == nil && r.History == nil
}

// Writer writes a report in one output format.
type Writer interface {
	Write(r *Report) error
}

// Format is an output format name.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// NewWriter returns the writer for format, or nil for an unknown format.
func NewWriter(format Format, output io.Writer) Writer {
	switch format {
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	case FormatHTML:
		return NewHTMLWriter(output)
	}
	return nil
}

// cell makes s safe to place in a Markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
