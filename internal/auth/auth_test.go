package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/blogger/v3"
)

func tokenServer(t *testing.T, accessToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		switch r.Form.Get("grant_type") {
		case "refresh_token":
			if r.Form.Get("refresh_token") != "refresh-1" {
				t.Errorf("unexpected refresh token %q", r.Form.Get("refresh_token"))
			}
		case "authorization_code":
			if r.Form.Get("code") != "code-1" {
				t.Errorf("unexpected code %q", r.Form.Get("code"))
			}
		default:
			t.Errorf("unexpected grant type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"`+accessToken+`","token_type":"Bearer","refresh_token":"refresh-1","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scopes:       []string{blogger.BloggerScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func TestLoadClientConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	secret := `{"installed":{"client_id":"id-1","client_secret":"s-1",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadClientConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClientID != "id-1" {
		t.Errorf("expected client id 'id-1', got %q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != blogger.BloggerScope {
		t.Errorf("unexpected scopes %v", cfg.Scopes)
	}
}

func TestLoadClientConfigScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	secret := `{"installed":{"client_id":"id-1","client_secret":"s-1",` +
		`"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
		`"token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	os.WriteFile(path, []byte(secret), 0o600)

	cfg, err := LoadClientConfig(path, blogger.BloggerReadonlyScope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != blogger.BloggerReadonlyScope {
		t.Errorf("expected configured scope, got %v", cfg.Scopes)
	}
}

func TestLoadClientConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadClientConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"nope":true}`), 0o600)
	if _, err := LoadClientConfig(bad); err == nil {
		t.Error("expected error for malformed secret")
	}
}

func TestWriteAndReadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}
	if err := WriteToken(path, tok); err != nil {
		t.Fatalf("write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}

	got, err := ReadToken(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" {
		t.Errorf("unexpected token %+v", got)
	}
}

func TestReadTokenMissing(t *testing.T) {
	_, err := ReadToken(filepath.Join(t.TempDir(), "token.json"))
	if err == nil || !strings.Contains(err.Error(), "aiblogger authorize") {
		t.Errorf("expected hint to authorize, got %v", err)
	}
}

func TestStoredTokenRefreshesAndPersists(t *testing.T) {
	srv := tokenServer(t, "access-2")
	path := filepath.Join(t.TempDir(), "token.json")
	WriteToken(path, &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	})

	p := &StoredToken{Config: testConfig(srv.URL), Path: path}
	ts, err := p.TokenSource(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "access-2" {
		t.Errorf("expected refreshed token, got %q", tok.AccessToken)
	}

	saved, err := ReadToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.AccessToken != "access-2" || saved.RefreshToken != "refresh-1" {
		t.Errorf("refreshed token not persisted: %+v", saved)
	}
}

func TestStoredTokenValidIsNotRewritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	WriteToken(path, &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(time.Hour)})
	before, _ := os.ReadFile(path)

	p := &StoredToken{Config: testConfig("http://127.0.0.1:1/unused"), Path: path}
	ts, err := p.TokenSource(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok.AccessToken != "access-1" {
		t.Errorf("unexpected token %q", tok.AccessToken)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("token file rewritten without a refresh")
	}
}

// visit simulates the browser following the consent redirect.
func visit(t *testing.T, state func(string) string) func(string) {
	return func(consent string) {
		u, err := url.Parse(consent)
		if err != nil {
			t.Errorf("parsing consent url: %v", err)
			return
		}
		q := u.Query()
		if q.Get("access_type") != "offline" {
			t.Errorf("expected offline access, got %q", q.Get("access_type"))
		}
		go func() {
			cb := q.Get("redirect_uri") + "?code=code-1&state=" + url.QueryEscape(state(q.Get("state")))
			resp, err := http.Get(cb)
			if err != nil {
				t.Errorf("callback: %v", err)
				return
			}
			resp.Body.Close()
		}()
	}
}

func TestInteractiveAuthorize(t *testing.T) {
	srv := tokenServer(t, "access-1")
	path := filepath.Join(t.TempDir(), "token.json")

	flow := &Interactive{
		Config: testConfig(srv.URL),
		Path:   path,
		Listen: "127.0.0.1:0",
		Open:   visit(t, func(s string) string { return s }),
		Out:    io.Discard,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ts, err := flow.TokenSource(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "access-1" {
		t.Errorf("unexpected token %q", tok.AccessToken)
	}

	saved, err := ReadToken(path)
	if err != nil {
		t.Fatalf("token not saved: %v", err)
	}
	if saved.RefreshToken != "refresh-1" {
		t.Errorf("unexpected saved token %+v", saved)
	}
}

func TestInteractiveIgnoresForeignState(t *testing.T) {
	srv := tokenServer(t, "access-1")
	path := filepath.Join(t.TempDir(), "token.json")

	strayStatus := make(chan int, 1)
	flow := &Interactive{
		Config: testConfig(srv.URL),
		Path:   path,
		Out:    io.Discard,
		Open: func(consent string) {
			u, _ := url.Parse(consent)
			q := u.Query()
			go func() {
				redirect := q.Get("redirect_uri")
				resp, err := http.Get(redirect + "?code=stolen&state=bogus")
				if err != nil {
					t.Errorf("stray callback: %v", err)
					strayStatus <- 0
					return
				}
				resp.Body.Close()
				strayStatus <- resp.StatusCode

				resp, err = http.Get(redirect + "?code=code-1&state=" + url.QueryEscape(q.Get("state")))
				if err != nil {
					t.Errorf("callback: %v", err)
					return
				}
				resp.Body.Close()
			}()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tok, err := flow.Authorize(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.AccessToken != "access-1" {
		t.Errorf("unexpected token %q", tok.AccessToken)
	}
	if status := <-strayStatus; status != http.StatusBadRequest {
		t.Errorf("expected 400 for foreign state, got %d", status)
	}
}

func TestInteractiveDenied(t *testing.T) {
	srv := tokenServer(t, "access-1")
	path := filepath.Join(t.TempDir(), "token.json")

	flow := &Interactive{
		Config: testConfig(srv.URL),
		Path:   path,
		Out:    io.Discard,
		Open: func(consent string) {
			u, _ := url.Parse(consent)
			q := u.Query()
			go func() {
				resp, err := http.Get(q.Get("redirect_uri") + "?error=access_denied&state=" + url.QueryEscape(q.Get("state")))
				if err != nil {
					t.Errorf("callback: %v", err)
					return
				}
				resp.Body.Close()
			}()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := flow.Authorize(ctx); err == nil || !strings.Contains(err.Error(), "access_denied") {
		t.Fatalf("expected denial, got %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("token written despite failed authorization")
	}
}

func TestNewProvider(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig("http://127.0.0.1:1/token")

	missing := filepath.Join(dir, "none.json")
	if _, ok := NewProvider(cfg, missing, "127.0.0.1:0").(*Interactive); !ok {
		t.Error("expected interactive provider without a token file")
	}

	present := filepath.Join(dir, "token.json")
	WriteToken(present, &oauth2.Token{AccessToken: "a"})
	if _, ok := NewProvider(cfg, present, "127.0.0.1:0").(*StoredToken); !ok {
		t.Error("expected stored token provider")
	}
}
