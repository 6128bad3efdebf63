package view

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/ziadkadry99/simcheck/internal/api"
)

//go:embed templates
var templatesFS embed.FS

// Renderer produces the content of the page panels.
type Renderer interface {
	// Results renders a live analysis result, including the error panel
	// of a result that carries an error.
	Results(r api.AnalysisResult) (string, error)
	// HistoricalSources renders the sources of a past search.
	HistoricalSources(sources []api.Source) (string, error)
	// Error renders a results-panel error.
	Error(title, message string) (string, error)
	// Statistics renders the statistics grid.
	Statistics(s api.Statistics) (string, error)
	// History renders a page of past searches.
	History(p api.HistoryPage) (string, error)
	// Notice renders an inline error that replaces a tab's content.
	Notice(message string) (string, error)
}

// executor is satisfied by both html/template and text/template.
type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// engine implements Renderer over a parsed template set.
type engine struct {
	tmpl executor
}

func (e engine) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

func (e engine) Results(r api.AnalysisResult) (string, error) {
	if r.Error != "" {
		return e.Error("Analysis Error", r.Error)
	}
	return e.render("results", NewResultsView(r))
}

func (e engine) HistoricalSources(sources []api.Source) (string, error) {
	return e.render("historical_sources", NewSourcesView(sources))
}

func (e engine) Error(title, message string) (string, error) {
	return e.render("error", ErrorView{Title: title, Message: message})
}

func (e engine) Statistics(s api.Statistics) (string, error) {
	return e.render("statistics", NewStatisticsView(s))
}

func (e engine) History(p api.HistoryPage) (string, error) {
	return e.render("history", NewHistoryView(p))
}

func (e engine) Notice(message string) (string, error) {
	return e.render("notice", message)
}

// HTML renders panels and full pages with html/template. All text coming
// from the API is escaped.
type HTML struct {
	engine
	pages *htmltemplate.Template
}

// NewHTML parses the embedded HTML templates.
func NewHTML() (*HTML, error) {
	tmpl, err := htmltemplate.New("html").ParseFS(templatesFS, "templates/html/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing html templates: %w", err)
	}
	return &HTML{engine: engine{tmpl: tmpl}, pages: tmpl}, nil
}

// Page writes a full page template ("index", "login" or "register").
func (h *HTML) Page(w io.Writer, name string, data any) error {
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering page %s: %w", name, err)
	}
	return nil
}

// Text renders panels as plain terminal text.
type Text struct {
	engine
}

// NewText parses the embedded text templates.
func NewText() (*Text, error) {
	funcs := texttemplate.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	tmpl, err := texttemplate.New("text").Funcs(funcs).ParseFS(templatesFS, "templates/text/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing text templates: %w", err)
	}
	return &Text{engine: engine{tmpl: tmpl}}, nil
}
