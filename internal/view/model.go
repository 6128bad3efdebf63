// Package view turns API responses into typed view models and renders them
// through html/template or text/template.
package view

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ziadkadry99/simcheck/internal/api"
)

// SnippetLength is the number of characters of a past query shown in the
// history list.
const SnippetLength = 100

// Ellipsis marks a truncated snippet.
const Ellipsis = "..."

// Badge is the color class of a similarity score.
type Badge string

const (
	BadgeGreen  Badge = "green"
	BadgeYellow Badge = "yellow"
	BadgeRed    Badge = "red"
)

// Color returns the CSS color of the badge.
func (b Badge) Color() string {
	switch b {
	case BadgeGreen:
		return "#4CAF50"
	case BadgeYellow:
		return "#FFC107"
	default:
		return "#FF5722"
	}
}

// ScoreBadge classifies a similarity percentage: below 30 is green, below
// 70 yellow, anything else red.
func ScoreBadge(percent float64) Badge {
	switch {
	case percent < 30:
		return BadgeGreen
	case percent < 70:
		return BadgeYellow
	default:
		return BadgeRed
	}
}

// ToPercent converts a [0,1] fraction to a percentage rounded to one decimal.
func ToPercent(fraction float64) float64 {
	return math.Round(fraction*1000) / 10
}

// FormatPercent formats a percentage with one decimal and a percent sign.
func FormatPercent(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}

// Truncate returns the first n characters of s followed by Ellipsis when s
// is longer than n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + Ellipsis
}

var titleCaser = cases.Title(language.English)

// StatusLabel returns a display label for a search status ("COMPLETED"
// becomes "Completed").
func StatusLabel(s api.Status) string {
	if s == "" {
		return "Unknown"
	}
	return titleCaser.String(strings.ToLower(string(s)))
}

// SourceView is one matched source card.
type SourceView struct {
	Title       string
	URL         string
	Similarity  string
	MatchedText string
}

func newSourceViews(sources []api.Source) []SourceView {
	views := make([]SourceView, 0, len(sources))
	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		views = append(views, SourceView{
			Title:       title,
			URL:         s.URL,
			Similarity:  FormatPercent(s.SimilarityPercentage),
			MatchedText: s.MatchedText,
		})
	}
	return views
}

// ResultsView is the rendered form of an analysis result.
type ResultsView struct {
	Score           string
	Badge           Badge
	AIDetected      bool
	AIConfidence    string
	ParaphrasedText string
	Sources         []SourceView
}

// NewResultsView builds the results panel model.
func NewResultsView(r api.AnalysisResult) ResultsView {
	percent := ToPercent(r.SimilarityScore)
	return ResultsView{
		Score:           FormatPercent(percent),
		Badge:           ScoreBadge(percent),
		AIDetected:      r.AIDetected,
		AIConfidence:    FormatPercent(ToPercent(r.AIConfidence)),
		ParaphrasedText: r.ParaphrasedText,
		Sources:         newSourceViews(r.MatchedSources),
	}
}

// SourcesView is the historical sources panel model.
type SourcesView struct {
	Sources []SourceView
}

// NewSourcesView builds the historical sources panel model.
func NewSourcesView(sources []api.Source) SourcesView {
	return SourcesView{Sources: newSourceViews(sources)}
}

// StatCell is one cell of the statistics grid.
type StatCell struct {
	Value string
	Label string
}

// StatisticsView is the fixed six-cell statistics grid.
type StatisticsView struct {
	Cells []StatCell
}

// NewStatisticsView builds the statistics grid.
func NewStatisticsView(s api.Statistics) StatisticsView {
	return StatisticsView{Cells: []StatCell{
		{Value: strconv.FormatInt(s.TotalSearches, 10), Label: "Total Searches"},
		{Value: FormatPercent(s.AverageSimilarity), Label: "Avg Similarity"},
		{Value: strconv.FormatInt(s.RecentSearches, 10), Label: "Recent (7 days)"},
		{Value: strconv.FormatInt(s.HighSimilaritySearches, 10), Label: "High Similarity"},
		{Value: strconv.FormatInt(s.FailedSearches, 10), Label: "Failed Searches"},
		{Value: FormatPercent(s.SuccessRate()), Label: "Success Rate"},
	}}
}

// HistoryItemView is one selectable row of the history list.
type HistoryItemView struct {
	ID         int64
	Snippet    string
	Similarity string
	Status     string
	Date       string
	Time       string
}

// HistoryView is the history panel model.
type HistoryView struct {
	Items         []HistoryItemView
	Page          int // zero-based
	TotalPages    int
	TotalElements int64
	HasPrev       bool
	HasNext       bool
}

// PrevPage returns the zero-based index of the previous page.
func (h HistoryView) PrevPage() int { return h.Page - 1 }

// NextPage returns the zero-based index of the next page.
func (h HistoryView) NextPage() int { return h.Page + 1 }

// DisplayPage returns the one-based page number.
func (h HistoryView) DisplayPage() int { return h.Page + 1 }

// NewHistoryView builds the history panel model.
func NewHistoryView(p api.HistoryPage) HistoryView {
	items := make([]HistoryItemView, 0, len(p.Content))
	for _, it := range p.Content {
		similarity := "N/A"
		if it.SimilarityScore != nil {
			similarity = FormatPercent(ToPercent(*it.SimilarityScore))
		}

		var date, clock string
		if !it.CreatedAt.IsZero() {
			local := it.CreatedAt.Local()
			date = local.Format("2006-01-02")
			clock = local.Format("15:04:05")
		}

		items = append(items, HistoryItemView{
			ID:         it.ID,
			Snippet:    Truncate(it.SearchQuery, SnippetLength),
			Similarity: similarity,
			Status:     StatusLabel(it.Status),
			Date:       date,
			Time:       clock,
		})
	}

	return HistoryView{
		Items:         items,
		Page:          p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
		HasPrev:       p.HasPrev(),
		HasNext:       p.HasNext(),
	}
}

// ErrorView is an error panel.
type ErrorView struct {
	Title   string
	Message string
}
