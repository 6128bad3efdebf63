package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner is the loading indicator of a single request.
type Spinner interface {
	Show(description string)
	Hide()
}

// NewSpinner returns a TerminalSpinner, or a CISpinner under CI.
func NewSpinner() Spinner {
	if IsCI() {
		return &CISpinner{Out: os.Stderr}
	}
	return &TerminalSpinner{Out: os.Stderr}
}

// TerminalSpinner animates an indeterminate progressbar until hidden.
type TerminalSpinner struct {
	Out io.Writer

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
}

// Show starts the spinner. Showing a visible spinner only updates its
// description.
func (s *TerminalSpinner) Show(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		s.bar.Describe(description)
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(s.Out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(bar *progressbar.ProgressBar, stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}(s.bar, s.stop, s.done)
}

// Hide stops and clears the spinner. It is a no-op when hidden.
func (s *TerminalSpinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil {
		return
	}
	close(s.stop)
	<-s.done
	_ = s.bar.Finish()
	s.bar = nil
}

// CISpinner prints one line when shown.
type CISpinner struct {
	Out io.Writer

	mu      sync.Mutex
	visible bool
}

func (s *CISpinner) Show(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible {
		return
	}
	s.visible = true
	fmt.Fprintf(s.Out, "%s...\n", description)
}

func (s *CISpinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}
