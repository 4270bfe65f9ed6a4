package github

import (
	"context"
	"sync"
	"time"

	"github.com/bmw-ece-ntust/trello-github-migration/pkg/logger"
)

// Surface distinguishes the two GitHub API quotas tracked separately.
type Surface int

const (
	SurfaceREST Surface = iota
	SurfaceGraphQL
	surfaceCount
)

func (s Surface) String() string {
	switch s {
	case SurfaceREST:
		return "rest"
	case SurfaceGraphQL:
		return "graphql"
	}
	return "unknown"
}

// resetSlack is added on top of the reported reset time; the reset header is
// second-granular and slightly ahead of the server's actual window roll.
const resetSlack = 2 * time.Second

type surfaceQuota struct {
	remaining int
	reset     time.Time
	tracked   bool
}

// Governor tracks remaining request quota per API surface and suspends
// callers that would exceed it. It is the only mutable state shared between
// concurrent workers; it is injected into every call site rather than held
// as a package singleton.
type Governor struct {
	mu    sync.Mutex
	quota [surfaceCount]surfaceQuota

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGovernor() *Governor {
	return &Governor{sleep: sleepContext}
}

// BeforeCall blocks until the projected remaining quota for the surface is
// positive, then reserves one request. The wait is computed from the
// surface's reset timestamp; the caller suspends rather than polling.
func (g *Governor) BeforeCall(ctx context.Context, s Surface) error {
	for {
		g.mu.Lock()
		q := &g.quota[s]
		if q.tracked && q.remaining <= 0 && time.Until(q.reset) <= 0 {
			// The window rolled over while nobody was calling.
			q.tracked = false
		}
		if !q.tracked || q.remaining > 0 {
			if q.tracked {
				q.remaining--
			}
			g.mu.Unlock()
			return nil
		}
		wait := time.Until(q.reset) + resetSlack
		g.mu.Unlock()

		logger.Info("API quota exhausted, waiting for reset",
			"surface", s.String(),
			"wait", wait.Round(time.Second).String())
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// AfterCall records the authoritative quota reported by the latest response.
func (g *Governor) AfterCall(s Surface, remaining int, reset time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quota[s] = surfaceQuota{remaining: remaining, reset: reset, tracked: true}
}

// Remaining reports the tracked quota for a surface; ok is false when no
// response has been observed yet.
func (g *Governor) Remaining(s Surface) (remaining int, reset time.Time, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	q := g.quota[s]
	return q.remaining, q.reset, q.tracked
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
