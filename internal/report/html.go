package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Similarity Report</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ddd; padding: .4rem .7rem; text-align: left; vertical-align: top; }
blockquote { border-left: 4px solid #999; margin: 1rem 0; padding: .2rem 1rem; background: #f7f7f7; }
</style>
</head>
<body>
{{.}}
</body>
</html>
`))

// HTMLWriter writes reports as a standalone HTML page. The body is the
// Markdown report converted with goldmark; raw HTML in the source text is
// dropped by the converter.
type HTMLWriter struct {
	output io.Writer
	md     goldmark.Markdown
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		output: output,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Write outputs the report.
func (w *HTMLWriter) Write(r *Report) error {
	var src bytes.Buffer
	if err := NewMarkdownWriter(&src).Write(r); err != nil {
		return fmt.Errorf("building markdown: %w", err)
	}

	var body bytes.Buffer
	if err := w.md.Convert(src.Bytes(), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}

	// goldmark output without WithUnsafe carries no raw HTML from the input.
	if err := pageTemplate.Execute(w.output, template.HTML(body.String())); err != nil {
		return fmt.Errorf("writing html: %w", err)
	}
	return nil
}
