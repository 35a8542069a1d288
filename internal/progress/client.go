package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// DefaultStaleAfter is how long a cached read is served without refetching.
const DefaultStaleAfter = 5 * time.Minute

// DefaultFetchTimeout bounds a shared remote read, independent of the
// callers waiting on it.
const DefaultFetchTimeout = 15 * time.Second

// Operation names, shared with remote transports.
const (
	OpCompleteLevel        = "completeLevel"
	OpCompletedLevelsCount = "getCompletedLevelsCount"
	OpIsBadgeMinted        = "isBadgeMinted"
	OpIsLevelCompleted     = "isLevelCompleted"
	OpMintBadge            = "mintBadge"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	Clock      clock.Clock
	StaleAfter time.Duration
	// FetchTimeout bounds each deduplicated remote read.
	FetchTimeout time.Duration
	Logger       *log.Logger
}

type entry struct {
	value     any
	fetchedAt time.Time
}

// Client wraps an Actor with a per-player read cache.
type Client struct {
	actor        Actor
	clock        clock.Clock
	staleAfter   time.Duration
	fetchTimeout time.Duration
	logger       *log.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[Principal]map[string]entry
	gens    map[Principal]uint64
}

// NewClient returns a caching client for actor.
func NewClient(actor Actor, opts Options) *Client {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("progress")
	}
	return &Client{
		actor:        actor,
		clock:        opts.Clock,
		staleAfter:   opts.StaleAfter,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
		entries:      make(map[Principal]map[string]entry),
		gens:         make(map[Principal]uint64),
	}
}

// CompleteLevel records a completed level and drops the player's cache.
func (c *Client) CompleteLevel(ctx context.Context, user Principal, level int) (bool, error) {
	if !user.Authenticated() {
		return false, ErrNotAuthenticated
	}

	ok, err := c.actor.CompleteLevel(ctx, user, level)
	if err != nil {
		c.logger.Warn("remote call failed", "op", OpCompleteLevel, "user", user, "level", level, "err", err)
		return false, &RemoteCallError{Op: OpCompleteLevel, Err: err}
	}

	c.Invalidate(user)
	c.logger.Debug("level recorded", "user", user, "level", level, "ok", ok)
	return ok, nil
}

// MintBadge issues the badge. It requires an actor implementing Minter and
// a player who can mint.
func (c *Client) MintBadge(ctx context.Context, user Principal) (bool, error) {
	if !user.Authenticated() {
		return false, ErrNotAuthenticated
	}
	minter, ok := c.actor.(Minter)
	if !ok {
		return false, ErrMintUnsupported
	}

	st, err := c.Status(ctx, user)
	if err != nil {
		return false, err
	}
	if !st.CanMint {
		return false, ErrNotEligible
	}

	minted, err := minter.MintBadge(ctx, user)
	if err != nil {
		c.logger.Warn("remote call failed", "op", OpMintBadge, "user", user, "err", err)
		return false, &RemoteCallError{Op: OpMintBadge, Err: err}
	}

	c.Invalidate(user)
	c.logger.Info("badge minted", "user", user, "ok", minted)
	return minted, nil
}

// CompletedLevelsCount returns the number of distinct levels the player has
// completed. Anonymous players have completed none.
func (c *Client) CompletedLevelsCount(ctx context.Context, user Principal) (int, error) {
	return cachedRead(ctx, c, user, OpCompletedLevelsCount, func(ctx context.Context) (int, error) {
		return c.actor.CompletedLevelsCount(ctx, user)
	})
}

// IsBadgeMinted reports whether the player already holds the badge.
func (c *Client) IsBadgeMinted(ctx context.Context, user Principal) (bool, error) {
	return cachedRead(ctx, c, user, OpIsBadgeMinted, func(ctx context.Context) (bool, error) {
		return c.actor.IsBadgeMinted(ctx, user)
	})
}

// IsLevelCompleted reports whether the player has completed level.
func (c *Client) IsLevelCompleted(ctx context.Context, user Principal, level int) (bool, error) {
	key := fmt.Sprintf("%s/%d", OpIsLevelCompleted, level)
	return cachedRead(ctx, c, user, key, func(ctx context.Context) (bool, error) {
		return c.actor.IsLevelCompleted(ctx, user, level)
	})
}

// Status returns the player's progress and whether the badge can be minted.
func (c *Client) Status(ctx context.Context, user Principal) (Status, error) {
	if !user.Authenticated() {
		return Status{}, nil
	}

	count, err := c.CompletedLevelsCount(ctx, user)
	if err != nil {
		return Status{}, err
	}
	minted, err := c.IsBadgeMinted(ctx, user)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Authenticated:  true,
		CompletedCount: count,
		BadgeMinted:    minted,
		CanMint:        CanMint(true, count, minted),
	}, nil
}

// Invalidate drops every cached read for the player. Reads already in
// flight complete but do not repopulate the cache.
func (c *Client) Invalidate(user Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[user]++
	delete(c.entries, user)
}

// cachedRead serves op from the cache when fresh, otherwise fetches it once
// for all concurrent callers of the same key. The shared fetch is detached
// from any single caller's cancellation; each caller stops waiting when its
// own ctx is done.
func cachedRead[T any](ctx context.Context, c *Client, user Principal, op string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if !user.Authenticated() {
		return zero, nil
	}

	if v, ok := c.lookup(user, op); ok {
		return v.(T), nil
	}

	gen := c.generation(user)
	flight := fmt.Sprintf("%s|%s|%d", user, op, gen)

	ch := c.group.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		val, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.store(user, op, gen, val)
		return val, nil
	})

	select {
	case <-ctx.Done():
		return zero, &RemoteCallError{Op: op, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			c.logger.Warn("remote call failed", "op", op, "user", user, "err", res.Err)
			return zero, &RemoteCallError{Op: op, Err: res.Err}
		}
		c.logger.Debug("fetched", "op", op, "user", user, "shared", res.Shared)
		return res.Val.(T), nil
	}
}

func (c *Client) lookup(user Principal, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[user][key]
	if !ok {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) >= c.staleAfter {
		delete(c.entries[user], key)
		return nil, false
	}
	return e.value, true
}

func (c *Client) generation(user Principal) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[user]
}

// store caches a value unless the player was invalidated since gen.
func (c *Client) store(user Principal, key string, gen uint64, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[user] != gen {
		return
	}
	if c.entries[user] == nil {
		c.entries[user] = make(map[string]entry)
	}
	c.entries[user][key] = entry{value: value, fetchedAt: c.clock.Now()}
}
