package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth token sources for Google accounts.
type TokenProvider interface {
	// TokenSource returns a refreshing token source for account.
	TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error)

	// HasTokenForAccount checks if a token exists for account.
	HasTokenForAccount(account string) bool
}

// FileTokenProvider serves tokens stored as JSON files in a directory.
type FileTokenProvider struct {
	dir  string
	conf *oauth2.Config
}

// NewFileTokenProvider creates a provider reading tokens from dir and
// refreshing them with conf.
func NewFileTokenProvider(dir string, conf *oauth2.Config) *FileTokenProvider {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	return &FileTokenProvider{dir: dir, conf: conf}
}

// Dir returns the token directory.
func (p *FileTokenProvider) Dir() string {
	return p.dir
}

// TokenSource loads the account token and wraps it in a refreshing source.
func (p *FileTokenProvider) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if p.conf == nil {
		return nil, fmt.Errorf("OAuth client configuration is not loaded")
	}

	tok, err := LoadTokenForAccount(p.dir, account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", GetAuthenticationErrorMessage(account), err)
	}

	return p.conf.TokenSource(ctx, tok), nil
}

// HasTokenForAccount checks if a token file exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(tokenFilePath(p.dir, account))
	return err == nil
}
