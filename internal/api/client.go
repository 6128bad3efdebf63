package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// Client is a client for the text-similarity analysis API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A nil client restores the
// default.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout. It applies to a copy, so a
// client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// NewClient creates a new analysis API client.
// baseURL is the API root (e.g., "http://localhost:8080/api").
// token is the bearer token; it may be empty for the auth endpoints.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c
}

// WithToken returns a copy of c that authenticates with token. The copy
// shares the underlying HTTP client.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Health verifies the bearer token. Any non-2xx answer is an error.
func (c *Client) Health(ctx context.Context) error {
	return wrapError(c.doRequest(ctx, http.MethodGet, "/health", nil, nil, nil), "Health")
}

// Analyze submits text for similarity and AI detection.
func (c *Client) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.doRequest(ctx, http.MethodPost, "/analyze", nil, req, &result); err != nil {
		return nil, wrapError(err, "Analyze")
	}
	return &result, nil
}

// Statistics fetches the aggregate counters of the current user.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	if err := c.doRequest(ctx, http.MethodGet, "/statistics", nil, nil, &stats); err != nil {
		return nil, wrapError(err, "Statistics")
	}
	return &stats, nil
}

// History fetches one page of past searches. page is zero-based.
func (c *Client) History(ctx context.Context, page, size int) (*HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result HistoryPage
	if err := c.doRequest(ctx, http.MethodGet, "/history", q, nil, &result); err != nil {
		return nil, wrapError(err, "History")
	}
	if result.Content == nil {
		result.Content = []HistoryItem{}
	}
	return &result, nil
}

// HistorySources fetches the matched sources recorded for a past search.
func (c *Client) HistorySources(ctx context.Context, id int64) ([]Source, error) {
	path := "/history/" + strconv.FormatInt(id, 10) + "/sources"

	var sources []Source
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &sources); err != nil {
		return nil, wrapError(err, "HistorySources")
	}
	if sources == nil {
		sources = []Source{}
	}
	return sources, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", req, "Login")
}

// Register creates an account and returns its first bearer token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", req, "Register")
}

func (c *Client) authenticate(ctx context.Context, path string, body any, op string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, wrapError(err, op)
	}
	if !resp.Success || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "no token issued"
		}
		return nil, &AuthError{Op: op, Message: msg}
	}
	return &resp, nil
}

// wrapError wraps an error with an operation name if it's an API error.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	apiErr, ok := err.(*Error)
	if ok {
		apiErr.Op = op
		return apiErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// buildURL joins path onto the base URL and attaches query parameters.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// doRequest performs an HTTP request, JSON-encoding body when non-nil and
// decoding the response into result when non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	fullURL, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if result != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// errorMessage extracts the server's error text from a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
