package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is the account record returned by the auth endpoints and persisted
// alongside the bearer token.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	Text              string `json:"text"`
	CheckParaphrasing bool   `json:"checkParaphrasing"`
}

// Source is a document the API judged similar to the submitted text.
type Source struct {
	Title                string  `json:"title,omitempty"`
	URL                  string  `json:"url"`
	SimilarityPercentage float64 `json:"similarityPercentage"` // 0-100
	MatchedText          string  `json:"matchedText"`
}

// AnalysisResult is the response of POST /analyze.
type AnalysisResult struct {
	SimilarityScore float64  `json:"similarityScore"` // 0-1
	AIDetected      bool     `json:"aiDetected"`
	AIConfidence    float64  `json:"aiConfidence"` // 0-1
	ParaphrasedText string   `json:"paraphrasedText,omitempty"`
	MatchedSources  []Source `json:"matchedSources,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Statistics holds the per-user aggregate counters of GET /statistics.
type Statistics struct {
	TotalSearches          int64   `json:"totalSearches"`
	AverageSimilarity      float64 `json:"averageSimilarity"`
	RecentSearches         int64   `json:"recentSearches"`
	HighSimilaritySearches int64   `json:"highSimilaritySearches"`
	FailedSearches         int64   `json:"failedSearches"`
}

// SuccessRate returns the share of searches that did not fail, in percent.
func (s Statistics) SuccessRate() float64 {
	total := s.TotalSearches
	if total < 1 {
		total = 1
	}
	return float64(s.TotalSearches-s.FailedSearches) / float64(total) * 100
}

// Status is the processing state of a past search.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// HistoryItem is one past search as listed by GET /history.
type HistoryItem struct {
	ID               int64     `json:"id"`
	SearchQuery      string    `json:"searchQuery"`
	TextLength       int       `json:"textLength,omitempty"`
	SimilarityScore  *float64  `json:"similarityScore,omitempty"`
	AIDetected       *bool     `json:"aiDetected,omitempty"`
	AIConfidence     *float64  `json:"aiConfidence,omitempty"`
	SourcesFound     int       `json:"sourcesFound,omitempty"`
	ProcessingTimeMs int64     `json:"processingTimeMs,omitempty"`
	Status           Status    `json:"status"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
}

// HistoryPage is one page of search history.
type HistoryPage struct {
	Content       []HistoryItem `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	CurrentPage   int           `json:"currentPage"`
	Size          int           `json:"size"`
}

// HasNext reports whether a later page exists.
func (p HistoryPage) HasNext() bool {
	return p.CurrentPage+1 < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p HistoryPage) HasPrev() bool {
	return p.CurrentPage > 0
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse is returned by both auth endpoints. A rejected login still
// answers 200 with Success false and a Message.
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	Type    string `json:"type,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// localDateTimeLayouts are the zone-less layouts the server emits for
// timestamps. They are interpreted in the local time zone.
var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp decodes both RFC 3339 strings and zone-less local date-times.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	for _, layout := range localDateTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
