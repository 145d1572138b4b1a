// Package governor admits outbound calls to the generative-text service,
// enforcing per-category pacing, a sliding-window per-minute cap, and
// exponential-backoff retries. It is the only component allowed to talk to
// the llm.Client during a run.
package governor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/docforge/internal/config"
	dferrors "git.home.luguber.info/inful/docforge/internal/errors"
	"git.home.luguber.info/inful/docforge/internal/llm"
	"git.home.luguber.info/inful/docforge/internal/observability"
)

// EventRecorder receives governance events for the optional run journal.
// Implementations must tolerate being called from the single pipeline
// goroutine only.
type EventRecorder interface {
	Record(ctx context.Context, event string, fields map[string]any)
}

// Governor serializes access to the generative service. Execution is
// single-threaded by design: the remote limit is shared and global, so
// concurrent dispatch would have to serialize on admission anyway.
type Governor struct {
	client      llm.Client
	delays      Delays
	window      *slidingWindow
	maxAttempts int
	baseBackoff time.Duration
	clock       clockwork.Clock
	recorder    EventRecorder
}

// Option configures optional governor behavior.
type Option func(*Governor)

// WithClock substitutes the wall clock, used by tests to avoid real sleeps.
func WithClock(c clockwork.Clock) Option {
	return func(g *Governor) { g.clock = c }
}

// WithRecorder attaches a journal recorder for governance events.
func WithRecorder(r EventRecorder) Option {
	return func(g *Governor) { g.recorder = r }
}

// New builds a governor from configuration.
func New(client llm.Client, cfg config.GovernorConfig, opts ...Option) *Governor {
	g := &Governor{
		client:      client,
		delays:      DelaysFromConfig(cfg),
		window:      newSlidingWindow(cfg.RequestsPerMinute),
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: time.Duration(cfg.BaseBackoffSeconds) * time.Second,
		clock:       clockwork.NewRealClock(),
	}
	if g.maxAttempts < 1 {
		g.maxAttempts = 1
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Execute admits and performs one governed call. skipInitialDelay omits the
// pre-call pacing sleep; it is used only for the very first call of a run,
// where no warm-up is needed. On success the raw response text is returned
// unmodified; normalization is the caller's job. Exhausting the attempt
// budget returns the last error wrapped as fatal — the only fatal path here.
func (g *Governor) Execute(ctx context.Context, prompt string, category Category, structured, skipInitialDelay bool) (string, error) {
	if !skipInitialDelay {
		if err := g.sleep(ctx, g.delays.For(category)); err != nil {
			return "", err
		}
	}

	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := g.admit(ctx, category); err != nil {
			return "", err
		}

		text, err := g.client.Invoke(ctx, prompt, structured)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == g.maxAttempts-1 {
			break
		}

		rateLimited := llm.IsRateLimit(err)
		delay := g.backoffDelay(attempt, rateLimited)
		kind := "other"
		if rateLimited {
			kind = "rate_limit"
		}

		observability.WarnContext(ctx, "Request failed, retrying",
			slog.String("category", category.String()),
			slog.String("kind", kind),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
			slog.Any("error", err))
		observability.RecordRetry(kind)
		g.record(ctx, "request_retried", map[string]any{
			"category": category.String(),
			"kind":     kind,
			"attempt":  attempt + 1,
			"backoff":  delay.String(),
		})

		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	errCat := dferrors.CategoryService
	if llm.IsRateLimit(lastErr) {
		errCat = dferrors.CategoryRateLimit
	}
	return "", dferrors.Wrap(lastErr, errCat, dferrors.SeverityFatal,
		fmt.Sprintf("request failed after %d attempts", g.maxAttempts)).
		WithContext("category", category.String())
}

// admit performs the sliding-window check: evict stale timestamps, block
// while the window is saturated, then record the new timestamp. The whole
// sequence runs on the single pipeline goroutine, keeping read-evict-append
// atomic without locking.
func (g *Governor) admit(ctx context.Context, category Category) error {
	for {
		now := g.clock.Now()
		g.window.evict(now)
		if !g.window.saturated() {
			g.window.record(now)
			observability.RecordRequest(category.String())
			g.record(ctx, "request_admitted", map[string]any{
				"category": category.String(),
				"in_window": g.window.count(),
			})
			return nil
		}

		wait := g.window.waitTime(now)
		observability.InfoContext(ctx, "Rate window saturated, waiting",
			slog.String("category", category.String()),
			slog.Duration("wait", wait))
		observability.RecordWindowWait(wait.Seconds())
		g.record(ctx, "window_wait", map[string]any{
			"category": category.String(),
			"wait":     wait.String(),
		})

		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// backoffDelay computes the retry delay. Rate-limit failures back off
// exponentially (base * 2^attempt); anything else gets the flat base delay.
func (g *Governor) backoffDelay(attempt int, rateLimited bool) time.Duration {
	if !rateLimited {
		return g.baseBackoff
	}
	return g.baseBackoff * (1 << attempt)
}

func (g *Governor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.clock.After(d):
		return nil
	}
}

func (g *Governor) record(ctx context.Context, event string, fields map[string]any) {
	if g.recorder != nil {
		g.recorder.Record(ctx, event, fields)
	}
}
