package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/simcheck/internal/page"
)

const (
	writeWait  = 10 * time.Second
	outboxSize = 32
)

// panelError carries socket protocol errors; it is not a page panel.
const panelError page.Panel = "error"

var upgrader = websocket.Upgrader{}

// socketRequest is the incoming WebSocket message format.
type socketRequest struct {
	Type              string `json:"type"` // analyze, tab, history_page, history_item, logout
	Text              string `json:"text,omitempty"`
	CheckParaphrasing bool   `json:"checkParaphrasing,omitempty"`
	Tab               string `json:"tab,omitempty"`
	Page              int    `json:"page,omitempty"`
	ID                int64  `json:"id,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(r)
	id := h.sessionID(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "error", err)
		return
	}

	box := newOutbox(outboxSize)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range box.ch {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				h.logger.Debug("websocket write", "error", err)
			}
		}
	}()
	defer func() {
		box.close()
		<-done
		conn.Close()
	}()

	// Controller events never wait on the socket.
	send := func(u page.PanelUpdate) {
		if !box.push(u) {
			h.logger.Debug("websocket update dropped", "panel", u.Panel)
		}
	}

	if ctrl == nil {
		send(page.PanelUpdate{Panel: page.PanelRedirect, Content: "/login"})
		return
	}

	sub := ctrl.On(send)
	defer sub.Dispose()

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req socketRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			send(page.PanelUpdate{Panel: panelError, Content: "invalid message format"})
			continue
		}

		// Operations run concurrently; a repeated analyze joins the one in flight.
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.dispatch(ctx, ctrl, id, req, send)
		}()
	}
}

func (h *Handler) dispatch(ctx context.Context, ctrl *page.Controller, id string, req socketRequest, send func(page.PanelUpdate)) {
	switch req.Type {
	// Failures reach the client as panel updates.
	case "analyze":
		_ = ctrl.Analyze(ctx, req.Text, req.CheckParaphrasing)
	case "tab":
		tab, err := page.ParseTab(req.Tab)
		if err != nil {
			send(page.PanelUpdate{Panel: panelError, Content: err.Error()})
			return
		}
		_ = ctrl.SwitchTab(ctx, tab)
	case "history_page":
		_ = ctrl.LoadHistoryPage(ctx, req.Page)
	case "history_item":
		_ = ctrl.ViewHistoryItem(ctx, req.ID)
	case "logout":
		h.forget(id)
		ctrl.Logout(ctx)
	default:
		send(page.PanelUpdate{Panel: panelError, Content: "unknown message type: " + req.Type})
	}
}

// outbox queues panel updates for one connection's writer goroutine.
type outbox struct {
	mu     sync.Mutex
	closed bool
	ch     chan page.PanelUpdate
}

func newOutbox(size int) *outbox {
	return &outbox{ch: make(chan page.PanelUpdate, size)}
}

// push enqueues u without blocking. It reports false when the queue is full
// or closed.
func (o *outbox) push(u page.PanelUpdate) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	select {
	case o.ch <- u:
		return true
	default:
		return false
	}
}

func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.closed {
		o.closed = true
		close(o.ch)
	}
}
