// Package web serves the analysis page. Each browser session gets its own
// page.Controller, kept in a registry keyed by the session cookie; panel
// updates reach the browser over a websocket.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/db"
	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/session"
	"github.com/ziadkadry99/simcheck/internal/view"
)

// Config holds web UI settings.
type Config struct {
	CookieName      string
	SessionTTL      time.Duration
	HistoryPageSize int
	RequestTimeout  time.Duration
	SecureCookie    bool
}

// DefaultConfig returns the settings used for zero fields.
func DefaultConfig() Config {
	return Config{
		CookieName:      "simcheck_session",
		SessionTTL:      24 * time.Hour,
		HistoryPageSize: page.DefaultHistoryPageSize,
		RequestTimeout:  60 * time.Second,
	}
}

type entry struct {
	ctrl     *page.Controller
	store    *session.SQLStore
	lastSeen time.Time
}

// Handler serves the web UI.
type Handler struct {
	cfg    Config
	db     *db.DB
	client *api.Client
	views  *view.HTML
	logger *slog.Logger

	starts singleflight.Group

	mu    sync.Mutex
	pages map[string]*entry
}

// New creates the web UI handler. client carries no token; each session
// derives an authenticated copy.
func New(cfg Config, database *db.DB, client *api.Client, views *view.HTML, logger *slog.Logger) *Handler {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = def.HistoryPageSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:    cfg,
		db:     database,
		client: client,
		views:  views,
		logger: logger,
		pages:  make(map[string]*entry),
	}
}

// RegisterRoutes mounts the web UI onto r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticAssets))))

	// The websocket outlives any request timeout.
	r.Get("/ws", h.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.cfg.RequestTimeout))

		r.Get("/", h.handleIndex)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Get("/register", h.handleRegisterPage)
		r.Post("/register", h.handleRegister)
		r.Post("/logout", h.handleLogout)
		r.Post("/analyze", h.handleAnalyze)
		r.Get("/tabs/{tab}", h.handleTab)
		r.Get("/history/{id}", h.handleHistoryItem)
		r.Get("/report.md", h.handleReport)
		r.Get("/report.html", h.handleReport)
	})
}

// controller returns the verified controller of the request's session, or
// nil when the browser has no usable session.
func (h *Handler) controller(r *http.Request) *page.Controller {
	id := h.sessionID(r)
	if id == "" {
		return nil
	}

	h.mu.Lock()
	e, ok := h.pages[id]
	if ok && e.ctrl.Authenticated() {
		e.lastSeen = time.Now()
		h.mu.Unlock()
		h.touch(r.Context(), e.store)
		return e.ctrl
	}
	if ok {
		delete(h.pages, id)
	}
	h.mu.Unlock()

	v, _, _ := h.starts.Do(id, func() (any, error) {
		return h.startController(r.Context(), id), nil
	})
	ctrl, _ := v.(*page.Controller)
	return ctrl
}

func (h *Handler) startController(ctx context.Context, id string) *page.Controller {
	store := session.NewSQLStore(h.db, id)
	ctrl := page.New(page.Deps{
		Store: store,
		NewClient: func(token string) page.API {
			return h.client.WithToken(token)
		},
		Renderer:        h.views,
		Logger:          h.logger,
		LoginPath:       "/login",
		HistoryPageSize: h.cfg.HistoryPageSize,
	})
	if !ctrl.Start(ctx) {
		return nil
	}

	h.touch(ctx, store)
	h.mu.Lock()
	h.pages[id] = &entry{ctrl: ctrl, store: store, lastSeen: time.Now()}
	h.mu.Unlock()
	return ctrl
}

func (h *Handler) touch(ctx context.Context, store *session.SQLStore) {
	if err := store.Touch(ctx); err != nil {
		h.logger.Warn("touching web session", "error", err)
	}
}

// forget drops a session's controller from the registry.
func (h *Handler) forget(id string) {
	h.mu.Lock()
	delete(h.pages, id)
	h.mu.Unlock()
}

// Sessions returns the number of live controllers.
func (h *Handler) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pages)
}

// Sweep drops controllers and stored sessions idle for longer than the
// session TTL.
func (h *Handler) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-h.cfg.SessionTTL)

	h.mu.Lock()
	dropped := 0
	for id, e := range h.pages {
		if e.lastSeen.Before(cutoff) {
			delete(h.pages, id)
			dropped++
		}
	}
	h.mu.Unlock()

	purged, err := session.PurgeIdle(ctx, h.db, h.cfg.SessionTTL)
	if err != nil {
		h.logger.Error("purging idle web sessions", "error", err)
		return
	}
	if dropped > 0 || purged > 0 {
		h.logger.Info("expired idle web sessions", "controllers", dropped, "stored", purged)
	}
}

// RunJanitor calls Sweep every interval until ctx is done.
func (h *Handler) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep(ctx)
		}
	}
}

func (h *Handler) sessionID(r *http.Request) string {
	c, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
