/*
serve.go - HTTP server command

STARTUP SEQUENCE:
  1. Load configuration (file, env)
  2. Initialize logger and SQLite store
  3. Refresh the holiday dataset for the current year
  4. Wire Google Calendar sync when credentials are configured
  5. Start the server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alicoding/vacation-tracker/api"
	"github.com/alicoding/vacation-tracker/calendar"
	"github.com/alicoding/vacation-tracker/config"
	"github.com/alicoding/vacation-tracker/gcal"
	"github.com/alicoding/vacation-tracker/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vacation tracker HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer logger.Sync()

		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := sqlite.New(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	refreshHolidays(ctx, cfg, store, logger)

	handler := api.NewHandler(store, logger)
	handler.DefaultProvince = cfg.Defaults.Province
	handler.DefaultAllowance = decimal.NewFromFloat(cfg.Defaults.Allowance)
	handler.Syncer = calendarSyncer(ctx, cfg, logger)

	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// refreshHolidays pulls the current year's holidays from the feed into the
// store. Existing (date, province) entries are kept as-is, so manual edits
// survive restarts. Failures are non-fatal; the feed falls back to the
// built-in dataset.
func refreshHolidays(ctx context.Context, cfg *config.Config, store *sqlite.Store, logger *zap.Logger) {
	feed := calendar.NewFeedClient(cfg.Holidays.FeedBaseURL, cfg.Holidays.Country, logger)

	year := time.Now().Year()
	holidays, err := feed.Holidays(ctx, year)
	if err != nil {
		logger.Warn("holiday refresh failed", zap.Int("year", year), zap.Error(err))
		return
	}

	inserted, err := store.UpsertHolidays(ctx, withHolidayIDs(holidays))
	if err != nil {
		logger.Warn("holiday refresh failed", zap.Int("year", year), zap.Error(err))
		return
	}
	logger.Info("holiday dataset refreshed",
		zap.Int("year", year),
		zap.Int("inserted", inserted))
}

// calendarSyncer wires Google Calendar sync when credentials are configured.
// Returns nil (sync endpoint disabled) otherwise, or when authentication
// fails.
func calendarSyncer(ctx context.Context, cfg *config.Config, logger *zap.Logger) api.Syncer {
	if cfg.Google.ClientID == "" {
		return nil
	}

	creds := gcal.Credentials{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		TokenFile:    cfg.Google.TokenFile,
	}
	tok, oauthCfg, err := gcal.Authenticate(ctx, creds, logger)
	if err != nil {
		logger.Warn("calendar sync disabled, authentication failed", zap.Error(err))
		return nil
	}
	return gcal.NewClient(ctx, tok, oauthCfg, creds, cfg.Google.CalendarID, logger)
}

// withHolidayIDs fills in deterministic IDs for entries coming from the feed
// or the built-in dataset.
func withHolidayIDs(holidays []calendar.Holiday) []calendar.Holiday {
	out := make([]calendar.Holiday, len(holidays))
	for i, h := range holidays {
		if h.ID == "" {
			h.ID = fmt.Sprintf("holiday-%s-%s", h.Date, h.Province)
		}
		out[i] = h
	}
	return out
}
