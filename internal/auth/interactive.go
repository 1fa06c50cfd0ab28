package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const callbackPath = "/callback"

// Interactive runs the authorization code flow once. The user opens the
// consent URL, and Google redirects back to a local callback on Listen.
type Interactive struct {
	Config *oauth2.Config
	Path   string
	Listen string

	// Open is called with the consent URL, e.g. to launch a browser.
	Open func(url string)
	// Out receives the instructions. Defaults to stderr.
	Out io.Writer
}

type callbackResult struct {
	code string
	err  error
}

func (i *Interactive) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := i.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	return persistent(ctx, i.Config, i.Path, tok), nil
}

// Authorize performs the flow and saves the resulting token to Path.
func (i *Interactive) Authorize(ctx context.Context) (*oauth2.Token, error) {
	listen := i.Listen
	if listen == "" {
		listen = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}

	cfg := *i.Config
	cfg.RedirectURL = "http://" + ln.Addr().String() + callbackPath
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           callbackHandler(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	out := i.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "Open this URL in your browser to authorize access:\n\n  %s\n\n", authURL)
	if i.Open != nil {
		i.Open(authURL)
	}

	var res callbackResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := WriteToken(i.Path, tok); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Token saved to %s\n", i.Path)
	return tok, nil
}

func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(callbackPath, func(c *gin.Context) {
		// Requests without our state are not part of this flow; keep waiting.
		if c.Query("state") != state {
			c.String(http.StatusBadRequest, "Authorization failed: state mismatch")
			return
		}

		var res callbackResult
		switch {
		case c.Query("error") != "":
			res.err = fmt.Errorf("authorization denied: %s", c.Query("error"))
		case c.Query("code") == "":
			res.err = errors.New("authorization callback without code")
		default:
			res.code = c.Query("code")
		}

		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			c.String(http.StatusBadRequest, "Authorization failed: %v", res.err)
			return
		}
		c.String(http.StatusOK, "Authorization complete. You can close this window.")
	})
	return r
}
