// Package page implements the analysis page controller: session bootstrap,
// input validation, analysis, statistics, history and tab state. The
// controller renders panels through a view.Renderer and publishes every
// change as a PanelUpdate, so the same controller drives the web UI and the
// terminal client.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/session"
	"github.com/ziadkadry99/simcheck/internal/view"
)

// MinTextLength is the minimum number of characters, after trimming, that
// can be submitted for analysis.
const MinTextLength = 10

// DefaultLoginPath is where the page redirects when there is no session.
const DefaultLoginPath = "/login"

// DefaultHistoryPageSize is the number of history rows fetched per page.
const DefaultHistoryPageSize = 10

// ValidationMessage is shown when the input is too short to analyze.
const ValidationMessage = "Please enter at least 10 characters of text to analyze."

var (
	// ErrInputTooShort is returned by Validate and Analyze for input below
	// MinTextLength.
	ErrInputTooShort = errors.New("input too short")
	// ErrNotAuthenticated is returned by operations run without a verified
	// session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnknownTab is returned by SwitchTab for a tab other than statistics
	// or history.
	ErrUnknownTab = errors.New("unknown tab")
)

// Tab is one of the two switchable lower panels.
type Tab string

const (
	TabStatistics Tab = "statistics"
	TabHistory    Tab = "history"
)

// ParseTab converts a tab name.
func ParseTab(name string) (Tab, error) {
	switch Tab(name) {
	case TabStatistics, TabHistory:
		return Tab(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// API is the subset of the analysis API the page uses.
type API interface {
	Health(ctx context.Context) error
	Analyze(ctx context.Context, req api.AnalysisRequest) (*api.AnalysisResult, error)
	Statistics(ctx context.Context) (*api.Statistics, error)
	History(ctx context.Context, page, size int) (*api.HistoryPage, error)
	HistorySources(ctx context.Context, id int64) ([]api.Source, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Store     session.Store
	NewClient func(token string) API
	Renderer  view.Renderer
	Logger    *slog.Logger

	// LoginPath defaults to DefaultLoginPath.
	LoginPath string
	// HistoryPageSize defaults to DefaultHistoryPageSize.
	HistoryPageSize int
}

// State is a snapshot of the page.
type State struct {
	Results           string
	Statistics        string
	History           string
	Tab               Tab
	HistoryPage       int
	Loading           bool
	Text              string
	CheckParaphrasing bool
}

// Controller drives one analysis page for one session.
type Controller struct {
	store     session.Store
	newClient func(token string) API
	render    view.Renderer
	logger    *slog.Logger
	loginPath string
	pageSize  int

	analyzing singleflight.Group

	mu          sync.Mutex
	sess        *session.Session
	client      API
	state       State
	result      *api.AnalysisResult
	stats       *api.Statistics
	history     *api.HistoryPage
	subscribers []subscriber
	nextID      uint64
}

// New creates a controller. Call Start before any other operation.
func New(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	pageSize := deps.HistoryPageSize
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	return &Controller{
		store:     deps.Store,
		newClient: deps.NewClient,
		render:    deps.Renderer,
		logger:    logger,
		loginPath: loginPath,
		pageSize:  pageSize,
		state:     State{Tab: TabStatistics},
	}
}

// On registers a handler for panel updates.
func (c *Controller) On(fn Handler) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.subscribers = append(c.subscribers, subscriber{id: c.nextID, fn: fn})
	return &Subscription{c: c, id: c.nextID}
}

// Start loads the persisted session and verifies its token. It reports
// whether the page is usable. With no session it only emits a redirect;
// a rejected token logs the session out.
func (c *Controller) Start(ctx context.Context) bool {
	sess, err := session.Load(ctx, c.store)
	if err != nil {
		c.logger.Warn("loading session", "error", err)
	}
	if err != nil || !sess.Valid() {
		c.emit(PanelUpdate{Panel: PanelRedirect, Content: c.loginPath})
		return false
	}

	client := c.newClient(sess.Token)
	if err := client.Health(ctx); err != nil {
		c.logger.Warn("token verification failed",
			"user", sess.User.Username,
			"rejected", api.IsUnauthorized(err),
			"error", err,
		)
		c.Logout(ctx)
		return false
	}

	c.mu.Lock()
	c.sess = sess
	c.client = client
	c.mu.Unlock()

	c.logger.Debug("session verified", "user", sess.User.Username)
	return true
}

// Authenticated reports whether Start verified a session that has not
// been logged out since.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client != nil
}

// User returns the signed-in user, or nil.
func (c *Controller) User() *api.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.User
}

// Validate checks that text is long enough to analyze.
func Validate(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return ErrInputTooShort
	}
	return nil
}

// AnalyzeEnabled reports whether the analyze trigger is enabled for text.
func (c *Controller) AnalyzeEnabled(text string) bool {
	c.mu.Lock()
	loading := c.state.Loading
	c.mu.Unlock()
	return !loading && Validate(text) == nil
}

// Analyze submits text for analysis and renders the result. A call made
// while another is in flight joins it instead of sending a second request.
// The returned error is informational; the failure is already rendered.
func (c *Controller) Analyze(ctx context.Context, text string, checkParaphrasing bool) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	c.state.Text = text
	c.state.CheckParaphrasing = checkParaphrasing
	c.mu.Unlock()

	if err := Validate(text); err != nil {
		c.showError("Error", ValidationMessage)
		return err
	}

	client, ok := c.authorized()
	if !ok {
		return ErrNotAuthenticated
	}

	_, err, shared := c.analyzing.Do("analyze", func() (any, error) {
		return nil, c.analyze(ctx, client, api.AnalysisRequest{
			Text:              text,
			CheckParaphrasing: checkParaphrasing,
		})
	})
	if shared {
		c.logger.Debug("joined in-flight analysis")
	}
	return err
}

func (c *Controller) analyze(ctx context.Context, client API, req api.AnalysisRequest) error {
	if err := c.requestAnalysis(ctx, client, req); err != nil {
		return err
	}
	// A failed refresh renders in the statistics panel.
	_ = c.LoadStatistics(ctx)
	return nil
}

func (c *Controller) requestAnalysis(ctx context.Context, client API, req api.AnalysisRequest) error {
	c.setLoading(true)
	defer c.setLoading(false)

	res, err := client.Analyze(ctx, req)
	if err != nil {
		c.logger.Error("analysis failed", "chars", utf8.RuneCountInString(req.Text), "error", err)
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = FailureText(err, "Analysis failed")
		}
		c.showError("Error", "Analysis failed: "+msg)
		return err
	}

	c.mu.Lock()
	c.result = res
	c.mu.Unlock()

	content, err := c.render.Results(*res)
	if err != nil {
		c.logger.Error("rendering results", "error", err)
		return err
	}
	c.set(PanelResults, content)
	c.logger.Info("analysis complete",
		"similarity", res.SimilarityScore,
		"ai_detected", res.AIDetected,
		"sources", len(res.MatchedSources),
	)
	return nil
}

// LoadStatistics fetches and renders the statistics grid.
func (c *Controller) LoadStatistics(ctx context.Context) error {
	client, ok := c.authorized()
	if !ok {
		return ErrNotAuthenticated
	}

	stats, err := client.Statistics(ctx)
	if err != nil {
		c.logger.Error("loading statistics", "error", err)
		c.showNotice(PanelStatistics, "Failed to load statistics: "+FailureText(err, "Failed to load statistics"))
		return err
	}

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()

	content, err := c.render.Statistics(*stats)
	if err != nil {
		c.logger.Error("rendering statistics", "error", err)
		return err
	}
	c.set(PanelStatistics, content)
	return nil
}

// LoadHistory fetches and renders the first page of history.
func (c *Controller) LoadHistory(ctx context.Context) error {
	return c.LoadHistoryPage(ctx, 0)
}

// LoadHistoryPage fetches and renders a zero-based page of history.
func (c *Controller) LoadHistoryPage(ctx context.Context, page int) error {
	client, ok := c.authorized()
	if !ok {
		return ErrNotAuthenticated
	}
	if page < 0 {
		page = 0
	}

	hist, err := client.History(ctx, page, c.pageSize)
	if err != nil {
		c.logger.Error("loading history", "page", page, "error", err)
		c.showNotice(PanelHistory, "Failed to load history: "+FailureText(err, "Failed to load history"))
		return err
	}

	c.mu.Lock()
	c.history = hist
	c.state.HistoryPage = page
	c.mu.Unlock()

	content, err := c.render.History(*hist)
	if err != nil {
		c.logger.Error("rendering history", "error", err)
		return err
	}
	c.set(PanelHistory, content)
	return nil
}

// ViewHistoryItem shows the sources recorded for a past search in the
// results panel.
func (c *Controller) ViewHistoryItem(ctx context.Context, id int64) error {
	client, ok := c.authorized()
	if !ok {
		return ErrNotAuthenticated
	}

	sources, err := client.HistorySources(ctx, id)
	if err != nil {
		c.logger.Error("loading sources", "history_id", id, "error", err)
		c.showError("Error", "Failed to load sources: "+FailureText(err, "Failed to load sources"))
		return err
	}

	content, err := c.render.HistoricalSources(sources)
	if err != nil {
		c.logger.Error("rendering sources", "error", err)
		return err
	}
	c.set(PanelResults, content)
	return nil
}

// SwitchTab makes tab the visible lower panel and reloads its content.
func (c *Controller) SwitchTab(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	if _, ok := c.authorized(); !ok {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	c.state.Tab = tab
	c.mu.Unlock()
	c.emit(PanelUpdate{Panel: PanelTab, Content: string(tab)})

	if tab == TabHistory {
		return c.LoadHistory(ctx)
	}
	return c.LoadStatistics(ctx)
}

// Logout clears the persisted session, redirects to the login page and
// disposes every subscription.
func (c *Controller) Logout(ctx context.Context) {
	if err := session.Clear(ctx, c.store); err != nil {
		c.logger.Error("clearing session", "error", err)
	}

	c.mu.Lock()
	var user *api.User
	if c.sess != nil {
		user = c.sess.User
	}
	c.sess = nil
	c.client = nil
	c.mu.Unlock()

	if user != nil {
		c.logger.Info("logged out", "user", user.Username)
	}

	c.emit(PanelUpdate{Panel: PanelRedirect, Content: c.loginPath})

	c.mu.Lock()
	c.subscribers = nil
	c.mu.Unlock()
}

// Snapshot returns the current page state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastResult returns the most recent successful analysis, or nil.
func (c *Controller) LastResult() *api.AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastStatistics returns the most recently loaded statistics, or nil.
func (c *Controller) LastStatistics() *api.Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// LastHistory returns the most recently loaded history page, or nil.
func (c *Controller) LastHistory() *api.HistoryPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

// authorized returns the verified client, emitting a redirect when there
// is none.
func (c *Controller) authorized() (API, bool) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		c.emit(PanelUpdate{Panel: PanelRedirect, Content: c.loginPath})
		return nil, false
	}
	return client, true
}

func (c *Controller) setLoading(on bool) {
	c.mu.Lock()
	c.state.Loading = on
	c.mu.Unlock()
	c.emit(PanelUpdate{Panel: PanelLoading, Loading: on})
}

func (c *Controller) showError(title, message string) {
	content, err := c.render.Error(title, message)
	if err != nil {
		c.logger.Error("rendering error panel", "error", err)
		return
	}
	c.set(PanelResults, content)
}

func (c *Controller) showNotice(panel Panel, message string) {
	content, err := c.render.Notice(message)
	if err != nil {
		c.logger.Error("rendering notice", "error", err)
		return
	}
	c.set(panel, content)
}

// set stores panel content in the state and publishes it.
func (c *Controller) set(panel Panel, content string) {
	c.mu.Lock()
	switch panel {
	case PanelResults:
		c.state.Results = content
	case PanelStatistics:
		c.state.Statistics = content
	case PanelHistory:
		c.state.History = content
	}
	c.mu.Unlock()
	c.emit(PanelUpdate{Panel: panel, Content: content})
}

func (c *Controller) emit(u PanelUpdate) {
	c.mu.Lock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(u)
	}
}

// FailureText returns fallback for an API status error and the error text
// for transport failures.
func FailureText(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return fallback
	}
	return err.Error()
}
