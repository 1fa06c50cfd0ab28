// Package deliver hands an assembled post to its destination.
package deliver

import (
	"context"
	"fmt"

	"github.com/hasibx0/ai-blogger-bot/internal/compose"
)

// Adapter delivers one post. A nil error means the post was accepted.
type Adapter interface {
	Deliver(ctx context.Context, post compose.Post) (*Confirmation, error)
	Method() string
}

// Confirmation describes an accepted delivery. URL is set when the
// destination reports where the post was published.
type Confirmation struct {
	Method string
	Detail string
	URL    string
}

// Error is a failed delivery. It is always fatal for the run.
type Error struct {
	Method string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("delivery via %s failed: %v", e.Method, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
