package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a fixed-count retry loop with linear waits: Backoff*1,
// Backoff*2, ... between attempts and no wait after the last one.
// Every failure is retried the same way, 429 included.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Logger      *slog.Logger

	// Timer overrides the wall-clock timer used between attempts.
	Timer backoff.Timer
}

// DefaultPolicy is five attempts with waits of 2, 4, 6 and 8 seconds.
func DefaultPolicy(logger *slog.Logger) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		Logger:      logger,
	}
}

// Run calls op until it returns nil or the attempts are exhausted, and
// returns the last error in the latter case. label identifies the target in
// warnings. Errors wrapped with backoff.Permanent stop the loop early.
func (p Policy) Run(ctx context.Context, label string, op func(ctx context.Context) error) error {
	attempts := p.attempts()
	logger := p.logger()

	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err != nil {
			logger.Warn("attempt failed",
				"target", label,
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err,
			)
		}
		return err
	}

	var b backoff.BackOff = &linearBackOff{step: p.step()}
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	return backoff.RetryNotifyWithTimer(operation, b, nil, p.Timer)
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) step() time.Duration {
	if p.Backoff <= 0 {
		return DefaultBackoff
	}
	return p.Backoff
}

func (p Policy) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// linearBackOff grows the wait by step after each failure.
type linearBackOff struct {
	step time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	return b.step * time.Duration(b.n)
}

func (b *linearBackOff) Reset() {
	b.n = 0
}
