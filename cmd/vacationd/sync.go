package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alicoding/vacation-tracker/gcal"
	"github.com/alicoding/vacation-tracker/store/sqlite"
)

var syncCmd = &cobra.Command{
	Use:   "sync <user-id>",
	Short: "Push a user's bookings to Google Calendar",
	Long: `Pushes a user's vacation bookings to Google Calendar as all-day
events. The first run walks through the OAuth2 device flow and stores the
token for later runs. Bookings already present in the calendar are skipped.`,
	Args: cobra.ExactArgs(1),
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

		if cfg.Google.ClientID == "" {
			return fmt.Errorf("google.client_id is not configured")
		}

		store, err := sqlite.New(cfg.Database.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		userID := args[0]

		user, err := store.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %s not found", userID)
		}

		bookings, err := store.ListBookingsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(bookings) == 0 {
			fmt.Println("Nothing to sync.")
			return nil
		}

		creds := gcal.Credentials{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			TokenFile:    cfg.Google.TokenFile,
		}
		tok, oauthCfg, err := gcal.Authenticate(ctx, creds, logger)
		if err != nil {
			return err
		}
		client := gcal.NewClient(ctx, tok, oauthCfg, creds, cfg.Google.CalendarID, logger)

		created, err := client.SyncBookings(ctx, user.Name, bookings)
		if err != nil {
			return err
		}

		logger.Info("sync complete",
			zap.String("user_id", userID),
			zap.Int("bookings", len(bookings)),
			zap.Int("created", created))
		fmt.Printf("Synced %d bookings (%d new events)\n", len(bookings), created)
		return nil
	},
}
