package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when a caller does not pick one.
const DefaultAccount = "default"

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName rejects names that cannot safely form a file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", account)
	}
	return nil
}

// LoadOAuthConfig reads an OAuth client secret file as downloaded from the
// Google Cloud console.
func LoadOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return ParseOAuthConfig(data)
}

// ParseOAuthConfig builds an OAuth config with the calendar scopes from a
// client secret JSON document.
func ParseOAuthConfig(data []byte) (*oauth2.Config, error) {
	conf, err := google.ConfigFromJSON(data, CalendarScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return conf, nil
}

// GetAuthURL returns the consent URL for obtaining an offline token.
func GetAuthURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeAndSave exchanges an authorization code and stores the token
// for account in dir.
func ExchangeAndSave(ctx context.Context, conf *oauth2.Config, dir, account, code string) error {
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return SaveTokenForAccount(dir, account, tok)
}

// SaveTokenForAccount writes tok as JSON to the account's token file.
func SaveTokenForAccount(dir, account string, tok *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(tokenFilePath(dir, account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadTokenForAccount reads the stored token for account from dir.
func LoadTokenForAccount(dir, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(tokenFilePath(dir, account))
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s: %w", account, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	return &tok, nil
}

// GetAuthenticationErrorMessage explains how to authorize an account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("Google OAuth token missing for account %q. Run 'calmcp login --account %s' to authorize calendar access.", account, account)
}

func tokenFilePath(dir, account string) string {
	return filepath.Join(dir, "google-"+account+".token")
}

// DefaultTokenDir returns the per-user directory holding token files.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "calmcp")
}

func userCacheDir() string {
	if runtime.GOOS == "windows" {
		for _, ev := range []string{"LOCALAPPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	return filepath.Join(os.TempDir(), "cache")
}
