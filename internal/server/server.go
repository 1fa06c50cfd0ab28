// Package server previews an assembled post in a browser.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hasibx0/ai-blogger-bot/internal/compose"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - preview</title>
<style>
body { max-width: 760px; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; }
header { color: #666; font: 0.85rem sans-serif; border-bottom: 1px solid #ddd; margin-bottom: 1.5rem; }
</style>
</head>
<body>
<header>Preview only. Subject: {{.Subject}}</header>
<article>{{.Body}}</article>
</body>
</html>`

// Server serves a single post.
type Server struct {
	post    compose.Post
	subject string
	engine  *gin.Engine
}

// New creates a Server for post. subject is shown above the article.
func New(post compose.Post, subject string) (*Server, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.SetHTMLTemplate(tmpl)

	s := &Server{post: post, subject: subject, engine: engine}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/post.json", s.handlePost)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "page", gin.H{
		"Title":   s.post.Title,
		"Subject": s.subject,
		// Assembled HTML is already escaped.
		"Body": template.HTML(s.post.HTML), //nolint: gosec
	})
}

func (s *Server) handlePost(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":   s.post.Title,
		"subject": s.subject,
		"html":    s.post.HTML,
		"plain":   s.post.Plain,
	})
}

// Serve listens on 127.0.0.1:port until ctx is cancelled.
func Serve(ctx context.Context, post compose.Post, subject string, port int, logger *slog.Logger) error {
	s, err := New(post, subject)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("preview server listening", "url", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
