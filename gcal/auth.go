// Package gcal pushes vacation bookings to Google Calendar as all-day
// events. Authentication uses the OAuth2 device flow so the server never
// needs a browser; tokens are persisted and refreshed transparently.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var calendarScopes = []string{
	"https://www.googleapis.com/auth/calendar.events",
}

// Credentials identifies the OAuth2 client used for the device flow.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// TokenFile overrides where the token is stored.
	// Empty means ~/.vacationd/google_token.json.
	TokenFile string
}

func oauth2Config(c Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       calendarScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:       "https://accounts.google.com/o/oauth2/auth",
			DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
			TokenURL:      "https://oauth2.googleapis.com/token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func tokenFilePath(c Credentials) (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vacationd", "google_token.json"), nil
}

func loadToken(c Credentials) (*oauth2.Token, error) {
	path, err := tokenFilePath(c)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

func saveToken(c Credentials, tok *oauth2.Token) error {
	path, err := tokenFilePath(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate returns a usable token and its oauth2 config. It loads the
// saved token, refreshes it when expired, or runs the device flow printing
// the verification URL to stdout.
func Authenticate(ctx context.Context, creds Credentials, logger *zap.Logger) (*oauth2.Token, *oauth2.Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := oauth2Config(creds)

	tok, err := loadToken(creds)
	if err != nil {
		logger.Warn("stored token unusable, re-authenticating", zap.Error(err))
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, cfg, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := saveToken(creds, refreshed); err != nil {
				logger.Warn("could not save refreshed token", zap.Error(err))
			}
			return refreshed, cfg, nil
		}
		logger.Warn("token refresh failed, re-authenticating", zap.Error(err))
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Println()
	fmt.Println("To connect Google Calendar, open this page in a browser:")
	fmt.Printf("  %s\n", resp.VerificationURI)
	fmt.Printf("Enter the code: %s\n", resp.UserCode)
	fmt.Println()

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := saveToken(creds, newTok); err != nil {
		logger.Warn("could not save token", zap.Error(err))
	}
	return newTok, cfg, nil
}
