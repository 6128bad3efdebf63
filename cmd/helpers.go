package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/config"
	"github.com/ziadkadry99/simcheck/internal/log"
	"github.com/ziadkadry99/simcheck/internal/page"
	"github.com/ziadkadry99/simcheck/internal/progress"
	"github.com/ziadkadry99/simcheck/internal/session"
	"github.com/ziadkadry99/simcheck/internal/view"
)

var errNotLoggedIn = errors.New("not logged in: run `simcheck login` first")

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `simcheck init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger. --verbose forces debug level.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(os.Stderr, level, log.Format(cfg.Log.Format)), nil
}

func newClient(cfg *config.Config, token string) *api.Client {
	return api.NewClient(cfg.API.BaseURL, token, api.WithTimeout(cfg.API.Timeout()))
}

// terminal is a page controller bound to the session file, rendering
// panels as plain text.
type terminal struct {
	cfg    *config.Config
	logger *slog.Logger
	ctrl   *page.Controller
}

// openTerminal loads the config and starts a controller on the session
// file. It fails with errNotLoggedIn when the stored session is missing or
// the server rejects its token.
func openTerminal(ctx context.Context) (*terminal, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := view.NewText()
	if err != nil {
		return nil, err
	}

	ctrl := page.New(page.Deps{
		Store: session.NewFileStore(sessionFile),
		NewClient: func(token string) page.API {
			return newClient(cfg, token)
		},
		Renderer:        renderer,
		Logger:          logger,
		HistoryPageSize: cfg.History.PageSize,
	})
	if !ctrl.Start(ctx) {
		return nil, errNotLoggedIn
	}
	return &terminal{cfg: cfg, logger: logger, ctrl: ctrl}, nil
}

// print writes the content of the given panels to w as they are painted,
// and drives a spinner while a request is loading.
func (t *terminal) print(w io.Writer, panels ...page.Panel) *page.Subscription {
	spinner := progress.NewSpinner()
	return t.ctrl.On(func(u page.PanelUpdate) {
		if u.Panel == page.PanelLoading {
			if u.Loading {
				spinner.Show("Analyzing")
			} else {
				spinner.Hide()
			}
			return
		}
		for _, p := range panels {
			if u.Panel == p {
				fmt.Fprintln(w, strings.TrimRight(u.Content, "\n"))
				return
			}
		}
	})
}

// authenticatedClient returns a client carrying the stored token after
// verifying it against the health endpoint.
func authenticatedClient(ctx context.Context, cfg *config.Config) (*api.Client, *api.User, error) {
	sess, err := session.Load(ctx, session.NewFileStore(sessionFile))
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}
	if !sess.Valid() {
		return nil, nil, errNotLoggedIn
	}

	client := newClient(cfg, sess.Token)
	if err := client.Health(ctx); err != nil {
		if api.IsUnauthorized(err) {
			return nil, nil, errNotLoggedIn
		}
		return nil, nil, fmt.Errorf("verifying session: %w", err)
	}
	return client, sess.User, nil
}
