package view

import (
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/simcheck/internal/api"
)

func TestScoreBadge(t *testing.T) {
	tests := []struct {
		percent float64
		want    Badge
	}{
		{0, BadgeGreen},
		{10, BadgeGreen},
		{29.9, BadgeGreen},
		{30, BadgeYellow},
		{42, BadgeYellow},
		{69.9, BadgeYellow},
		{70, BadgeRed},
		{95, BadgeRed},
		{100, BadgeRed},
	}
	for _, tt := range tests {
		if got := ScoreBadge(tt.percent); got != tt.want {
			t.Errorf("ScoreBadge(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestBadgeColor(t *testing.T) {
	if BadgeGreen.Color() != "#4CAF50" || BadgeYellow.Color() != "#FFC107" || BadgeRed.Color() != "#FF5722" {
		t.Errorf("unexpected badge colors")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{0.42, "42.0%"},
		{0.95, "95.0%"},
		{0.1, "10.0%"},
		{0, "0.0%"},
		{0.12345, "12.3%"},
		{1, "100.0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(ToPercent(tt.fraction)); got != tt.want {
			t.Errorf("FormatPercent(ToPercent(%v)) = %q, want %q", tt.fraction, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Truncate(long, SnippetLength)
	if got != strings.Repeat("a", 100)+"..." {
		t.Errorf("Truncate(150 chars) = %q", got)
	}

	exact := strings.Repeat("b", 100)
	if got := Truncate(exact, SnippetLength); got != exact {
		t.Errorf("Truncate(100 chars) should be unchanged, got %d chars", len(got))
	}

	multi := strings.Repeat("é", 101)
	if got := Truncate(multi, SnippetLength); got != strings.Repeat("é", 100)+"..." {
		t.Errorf("Truncate should count characters, not bytes: %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[api.Status]string{
		api.StatusCompleted:  "Completed",
		api.StatusFailed:     "Failed",
		api.StatusProcessing: "Processing",
		"":                   "Unknown",
	}
	for in, want := range tests {
		if got := StatusLabel(in); got != want {
			t.Errorf("StatusLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewResultsView(t *testing.T) {
	v := NewResultsView(api.AnalysisResult{
		SimilarityScore: 0.42,
		AIDetected:      true,
		AIConfidence:    0.873,
		MatchedSources:  []api.Source{{URL: "https://a", SimilarityPercentage: 42, MatchedText: "m"}},
	})
	if v.Score != "42.0%" || v.Badge != BadgeYellow {
		t.Errorf("score = %q badge = %q", v.Score, v.Badge)
	}
	if v.AIConfidence != "87.3%" {
		t.Errorf("confidence = %q", v.AIConfidence)
	}
	if len(v.Sources) != 1 || v.Sources[0].Title != "Untitled" || v.Sources[0].Similarity != "42.0%" {
		t.Errorf("sources = %+v", v.Sources)
	}
}

func TestNewStatisticsView(t *testing.T) {
	v := NewStatisticsView(api.Statistics{
		TotalSearches:          10,
		AverageSimilarity:      37.4,
		RecentSearches:         4,
		HighSimilaritySearches: 1,
		FailedSearches:         2,
	})
	want := []StatCell{
		{"10", "Total Searches"},
		{"37.4%", "Avg Similarity"},
		{"4", "Recent (7 days)"},
		{"1", "High Similarity"},
		{"2", "Failed Searches"},
		{"80.0%", "Success Rate"},
	}
	if len(v.Cells) != len(want) {
		t.Fatalf("got %d cells, want %d", len(v.Cells), len(want))
	}
	for i := range want {
		if v.Cells[i] != want[i] {
			t.Errorf("cell %d = %+v, want %+v", i, v.Cells[i], want[i])
		}
	}
}

func TestNewHistoryView(t *testing.T) {
	zero := 0.0
	score := 0.555
	created := time.Date(2024, 3, 1, 10, 15, 30, 0, time.Local)

	v := NewHistoryView(api.HistoryPage{
		Content: []api.HistoryItem{
			{ID: 1, SearchQuery: strings.Repeat("x", 120), SimilarityScore: &score, Status: api.StatusCompleted, CreatedAt: api.Timestamp{Time: created}},
			{ID: 2, SearchQuery: "short", SimilarityScore: &zero, Status: api.StatusCompleted},
			{ID: 3, SearchQuery: "failed", Status: api.StatusFailed},
		},
		TotalElements: 25,
		TotalPages:    3,
		CurrentPage:   1,
	})

	if len(v.Items) != 3 {
		t.Fatalf("items = %d", len(v.Items))
	}
	first := v.Items[0]
	if first.Snippet != strings.Repeat("x", 100)+"..." {
		t.Errorf("snippet = %q", first.Snippet)
	}
	if first.Similarity != "55.5%" && first.Similarity != "55.6%" {
		t.Errorf("similarity = %q", first.Similarity)
	}
	if first.Date != "2024-03-01" || first.Time != "10:15:30" {
		t.Errorf("date/time = %q %q", first.Date, first.Time)
	}
	if v.Items[1].Similarity != "0.0%" {
		t.Errorf("zero score should render as 0.0%%, got %q", v.Items[1].Similarity)
	}
	if v.Items[2].Similarity != "N/A" || v.Items[2].Status != "Failed" {
		t.Errorf("failed item = %+v", v.Items[2])
	}
	if !v.HasPrev || !v.HasNext || v.DisplayPage() != 2 || v.PrevPage() != 0 || v.NextPage() != 2 {
		t.Errorf("paging = %+v", v)
	}
}
