package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/ziadkadry99/simcheck/internal/report"
)

// handleReport downloads the session's latest result, statistics and
// history page as Markdown (/report.md) or HTML (/report.html).
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	if ctrl == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	rep := &report.Report{
		Generated:  time.Now(),
		Result:     ctrl.LastResult(),
		Statistics: ctrl.LastStatistics(),
		History:    ctrl.LastHistory(),
	}
	if u := ctrl.User(); u != nil {
		rep.User = u.Username
	}
	if rep.Empty() {
		http.Error(w, "nothing to report yet", http.StatusNotFound)
		return
	}

	format, contentType, name := report.FormatMarkdown, "text/markdown; charset=utf-8", "simcheck-report.md"
	if strings.HasSuffix(r.URL.Path, ".html") {
		format, contentType, name = report.FormatHTML, "text/html; charset=utf-8", "simcheck-report.html"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := report.NewWriter(format, w).Write(rep); err != nil {
		h.logger.Error("writing report", "format", format, "error", err)
	}
}
