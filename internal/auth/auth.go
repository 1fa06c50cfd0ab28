// Package auth provides OAuth credentials for the Blogger publish API.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/blogger/v3"
)

// CredentialProvider yields a token source for authenticated API calls.
type CredentialProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// LoadClientConfig reads a Google client secret file. The Blogger scope is
// used when no scopes are given.
func LoadClientConfig(path string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	if len(scopes) == 0 {
		scopes = []string{blogger.BloggerScope}
	}
	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret %s: %w", path, err)
	}
	return cfg, nil
}

// NewProvider uses the token at tokenPath when it exists and falls back to
// the interactive flow otherwise.
func NewProvider(cfg *oauth2.Config, tokenPath, callbackAddr string) CredentialProvider {
	if _, err := os.Stat(tokenPath); err == nil {
		return &StoredToken{Config: cfg, Path: tokenPath}
	}
	return &Interactive{Config: cfg, Path: tokenPath, Listen: callbackAddr}
}

// StoredToken loads a previously authorized token from disk. Refreshed
// tokens are written back to the same file.
type StoredToken struct {
	Config *oauth2.Config
	Path   string
}

func (s *StoredToken) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := ReadToken(s.Path)
	if err != nil {
		return nil, err
	}
	return persistent(ctx, s.Config, s.Path, tok), nil
}

// ReadToken decodes a token file.
func ReadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("token file %s not found; run 'aiblogger authorize' first", path)
		}
		return nil, fmt.Errorf("reading token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token %s has neither access nor refresh token", path)
	}
	return &tok, nil
}

// WriteToken stores tok with owner-only permissions.
func WriteToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return os.Chmod(path, 0o600)
}

func persistent(ctx context.Context, cfg *oauth2.Config, path string, tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(tok, &savingSource{
		base: cfg.TokenSource(ctx, tok),
		path: path,
		last: tok.AccessToken,
	})
}

// savingSource writes the token to disk whenever the access token changes.
type savingSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := WriteToken(s.path, tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
