package page

import "sync"

// Panel identifies the part of the page an update targets.
type Panel string

const (
	PanelLoading    Panel = "loading"
	PanelResults    Panel = "results"
	PanelStatistics Panel = "statistics"
	PanelHistory    Panel = "history"
	PanelTab        Panel = "tab"
	PanelRedirect   Panel = "redirect"
)

// PanelUpdate is emitted whenever the controller changes the page.
// Content holds rendered panel content, the tab name for PanelTab, or the
// target location for PanelRedirect.
type PanelUpdate struct {
	Panel   Panel  `json:"panel"`
	Content string `json:"content,omitempty"`
	Loading bool   `json:"loading,omitempty"`
}

// Handler receives panel updates. Handlers are called synchronously, in
// registration order, outside the controller lock.
type Handler func(PanelUpdate)

type subscriber struct {
	id uint64
	fn Handler
}

// Subscription is a registered handler. Dispose removes it.
type Subscription struct {
	c    *Controller
	id   uint64
	once sync.Once
}

// Dispose unregisters the handler. It is safe to call more than once.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.c.mu.Lock()
		defer s.c.mu.Unlock()
		for i, sub := range s.c.subscribers {
			if sub.id == s.id {
				s.c.subscribers = append(s.c.subscribers[:i], s.c.subscribers[i+1:]...)
				return
			}
		}
	})
}
