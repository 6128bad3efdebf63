package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/session"
	"github.com/ziadkadry99/simcheck/internal/view"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	if ctrl == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// Every page load re-opens the current tab, which refetches it.
	// Failures are rendered into the tab's panel.
	_ = ctrl.SwitchTab(r.Context(), ctrl.Snapshot().Tab)
	h.renderIndex(w, ctrl)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	if ctrl == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	checkParaphrasing, _ := strconv.ParseBool(r.PostFormValue("checkParaphrasing"))
	// Failures are rendered into the results panel.
	_ = ctrl.Analyze(r.Context(), r.PostFormValue("text"), checkParaphrasing)

	h.renderIndex(w, ctrl)
}

func (h *Handler) handleTab(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	if ctrl == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	tab, err := page.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	// Failures are rendered into the tab's panel.
	_ = ctrl.SwitchTab(r.Context(), tab)
	if tab == page.TabHistory && pageNum > 0 {
		_ = ctrl.LoadHistoryPage(r.Context(), pageNum)
	}
	h.renderIndex(w, ctrl)
}

func (h *Handler) handleHistoryItem(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	if ctrl == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	// Failures are rendered into the history panel.
	_ = ctrl.ViewHistoryItem(r.Context(), id)
	h.renderIndex(w, ctrl)
}

func (h *Handler) renderIndex(w http.ResponseWriter, ctrl *page.Controller) {
	st := ctrl.Snapshot()
	data := view.IndexPage{
		User:              ctrl.User(),
		Text:              st.Text,
		CheckParaphrasing: st.CheckParaphrasing,
		AnalyzeEnabled:    ctrl.AnalyzeEnabled(st.Text),
		Loading:           st.Loading,
		ActiveTab:         string(st.Tab),
		MinLength:         page.MinTextLength,
		// Panel content comes from the HTML renderer, which escapes API text.
		Results:    template.HTML(st.Results),
		Statistics: template.HTML(st.Statistics),
		History:    template.HTML(st.History),
	}
	h.writePage(w, http.StatusOK, "index", data)
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, http.StatusOK, "login", view.AuthPage{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := api.LoginRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}

	resp, err := h.client.Login(r.Context(), req)
	if err != nil {
		h.logger.Warn("login failed", "user", req.Username, "error", err)
		h.writePage(w, http.StatusUnauthorized, "login", view.AuthPage{
			Error:    authFailure(err, "Login failed"),
			Username: req.Username,
		})
		return
	}
	h.startSession(w, r, resp)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, http.StatusOK, "register", view.AuthPage{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := api.RegisterRequest{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	resp, err := h.client.Register(r.Context(), req)
	if err != nil {
		h.logger.Warn("registration failed", "user", req.Username, "error", err)
		h.writePage(w, http.StatusBadRequest, "register", view.AuthPage{
			Error:    authFailure(err, "Registration failed"),
			Username: req.Username,
			Email:    req.Email,
		})
		return
	}
	h.startSession(w, r, resp)
}

// startSession persists a fresh web session for resp and redirects to the
// analysis page.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, resp *api.AuthResponse) {
	user := resp.User
	if user == nil {
		user = &api.User{Username: strings.TrimSpace(r.PostFormValue("username"))}
	}

	if old := h.sessionID(r); old != "" {
		h.forget(old)
	}

	id := session.NewID()
	store := session.NewSQLStore(h.db, id)
	if err := session.Save(r.Context(), store, &session.Session{Token: resp.Token, User: user}); err != nil {
		h.logger.Error("saving web session", "error", err)
		http.Error(w, "could not start session", http.StatusInternalServerError)
		return
	}

	h.logger.Info("signed in", "user", user.Username)
	h.setSessionCookie(w, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(r)
	if id != "" {
		h.mu.Lock()
		e, ok := h.pages[id]
		delete(h.pages, id)
		h.mu.Unlock()

		if ok {
			e.ctrl.Logout(r.Context())
		} else if err := session.Clear(r.Context(), session.NewSQLStore(h.db, id)); err != nil {
			h.logger.Error("clearing web session", "error", err)
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) writePage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.views.Page(w, name, data); err != nil {
		h.logger.Error("rendering page", "page", name, "error", err)
	}
}

// authFailure returns the message to show for a failed login or
// registration.
func authFailure(err error, fallback string) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
