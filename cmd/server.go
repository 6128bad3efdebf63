package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/simcheck/internal/db"
	"github.com/ziadkadry99/simcheck/internal/server"
	"github.com/ziadkadry99/simcheck/internal/view"
	"github.com/ziadkadry99/simcheck/internal/web"
)

var serverPort int

// janitorInterval is how often idle web sessions are expired.
const janitorInterval = 10 * time.Minute

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the browser UI",
	Long:  `Starts the simcheck web server: a login page and an analysis page backed by the configured analysis API, with live updates over a websocket.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		dbPath := filepath.Join(cfg.Server.DataDir, "simcheck.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		views, err := view.NewHTML()
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, database, logger)

		pages := web.New(web.Config{
			CookieName:      cfg.Server.CookieName,
			SessionTTL:      cfg.Server.SessionTTL(),
			HistoryPageSize: cfg.History.PageSize,
			RequestTimeout:  cfg.API.Timeout(),
		}, database, newClient(cfg, ""), views, logger)
		pages.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go pages.RunJanitor(ctx, janitorInterval)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "simcheck server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  API: %s\n", cfg.API.BaseURL)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (default from config)")
	rootCmd.AddCommand(serverCmd)
}
