package deliver

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/option"

	"github.com/hasibx0/ai-blogger-bot/internal/compose"
)

// MethodBlogger publishes through the Blogger v3 API.
const MethodBlogger = "blogger"

// BloggerAdapter publishes a post directly to a blog.
type BloggerAdapter struct {
	posts  *blogger.PostsService
	blogID string
	logger *slog.Logger
}

// NewBloggerAdapter creates an adapter authenticated by ts. Extra options
// are passed to the API client.
func NewBloggerAdapter(ctx context.Context, blogID string, ts oauth2.TokenSource, logger *slog.Logger, opts ...option.ClientOption) (*BloggerAdapter, error) {
	if ts != nil {
		opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	}
	svc, err := blogger.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating blogger service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BloggerAdapter{posts: svc.Posts, blogID: blogID, logger: logger}, nil
}

func (a *BloggerAdapter) Method() string { return MethodBlogger }

func (a *BloggerAdapter) Deliver(ctx context.Context, post compose.Post) (*Confirmation, error) {
	published, err := a.posts.Insert(a.blogID, &blogger.Post{
		Title:   post.Title,
		Content: post.HTML,
	}).IsDraft(false).Context(ctx).Do()
	if err != nil {
		a.logger.Error("failed to publish post", "blog_id", a.blogID, "error", err)
		return nil, &Error{Method: MethodBlogger, Err: err}
	}

	a.logger.Info("post published", "id", published.Id, "url", published.Url)
	return &Confirmation{
		Method: MethodBlogger,
		Detail: "published post " + published.Id,
		URL:    published.Url,
	}, nil
}
