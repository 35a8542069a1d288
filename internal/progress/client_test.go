package progress

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alice Principal = "alice"

// fakeActor is an in-memory ledger that counts calls per operation.
type fakeActor struct {
	mu        sync.Mutex
	completed map[Principal]map[int]bool
	minted    map[Principal]bool
	fail      error
	block     chan struct{}

	countCalls atomic.Int32
	badgeCalls atomic.Int32
	levelCalls atomic.Int32
	writeCalls atomic.Int32
}

func newFakeActor() *fakeActor {
	return &fakeActor{
		completed: make(map[Principal]map[int]bool),
		minted:    make(map[Principal]bool),
	}
}

func (f *fakeActor) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeActor) CompleteLevel(_ context.Context, user Principal, level int) (bool, error) {
	f.writeCalls.Add(1)
	if f.fail != nil {
		return false, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completed[user] == nil {
		f.completed[user] = make(map[int]bool)
	}
	f.completed[user][level] = true
	return true, nil
}

func (f *fakeActor) CompletedLevelsCount(ctx context.Context, user Principal) (int, error) {
	f.countCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	if f.fail != nil {
		return 0, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completed[user]), nil
}

func (f *fakeActor) IsBadgeMinted(_ context.Context, user Principal) (bool, error) {
	f.badgeCalls.Add(1)
	if f.fail != nil {
		return false, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minted[user], nil
}

func (f *fakeActor) IsLevelCompleted(_ context.Context, user Principal, level int) (bool, error) {
	f.levelCalls.Add(1)
	if f.fail != nil {
		return false, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed[user][level], nil
}

// fakeMinter adds the mint operation.
type fakeMinter struct {
	*fakeActor
}

func (f fakeMinter) MintBadge(_ context.Context, user Principal) (bool, error) {
	f.writeCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minted[user] = true
	return true, nil
}

func newTestClient(actor Actor) (*Client, *clock.Mock) {
	mock := clock.NewMock()
	return NewClient(actor, Options{Clock: mock, Logger: log.New(io.Discard)}), mock
}

func completeAll(t *testing.T, c *Client, user Principal, n int) {
	t.Helper()
	for level := 1; level <= n; level++ {
		_, err := c.CompleteLevel(context.Background(), user, level)
		require.NoError(t, err)
	}
}

func TestReadsAreCachedUntilStale(t *testing.T) {
	actor := newFakeActor()
	c, mock := newTestClient(actor)
	ctx := context.Background()

	for range 3 {
		n, err := c.CompletedLevelsCount(ctx, alice)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.EqualValues(t, 1, actor.countCalls.Load())

	mock.Add(DefaultStaleAfter - time.Second)
	_, err := c.CompletedLevelsCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, actor.countCalls.Load(), "refetched before the window elapsed")

	mock.Add(time.Second)
	_, err = c.CompletedLevelsCount(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, actor.countCalls.Load(), "stale entry served")
}

func TestWriteInvalidatesReads(t *testing.T) {
	actor := newFakeActor()
	c, _ := newTestClient(actor)
	ctx := context.Background()

	n, err := c.CompletedLevelsCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = c.IsBadgeMinted(ctx, alice)
	require.NoError(t, err)

	ok, err := c.CompleteLevel(ctx, alice, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = c.CompletedLevelsCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = c.IsBadgeMinted(ctx, alice)
	require.NoError(t, err)

	assert.EqualValues(t, 2, actor.countCalls.Load())
	assert.EqualValues(t, 2, actor.badgeCalls.Load())
}

func TestCacheIsPerPrincipal(t *testing.T) {
	actor := newFakeActor()
	c, _ := newTestClient(actor)
	ctx := context.Background()

	completeAll(t, c, alice, 2)

	a, err := c.CompletedLevelsCount(ctx, alice)
	require.NoError(t, err)
	b, err := c.CompletedLevelsCount(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 2, a)
	assert.Equal(t, 0, b)
	assert.EqualValues(t, 2, actor.countCalls.Load())
}

func TestConcurrentReadsDeduplicated(t *testing.T) {
	actor := newFakeActor()
	actor.block = make(chan struct{})
	c, _ := newTestClient(actor)

	var wg sync.WaitGroup
	results := make([]int, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.CompletedLevelsCount(context.Background(), alice)
		}()
	}

	require.Eventually(t, func() bool { return actor.countCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(actor.block)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Zero(t, results[i])
	}
	assert.EqualValues(t, 1, actor.countCalls.Load())
}

func TestInFlightReadDoesNotRepopulateAfterInvalidate(t *testing.T) {
	actor := newFakeActor()
	actor.block = make(chan struct{})
	c, _ := newTestClient(actor)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.CompletedLevelsCount(context.Background(), alice)
	}()

	require.Eventually(t, func() bool { return actor.countCalls.Load() == 1 }, time.Second, time.Millisecond)
	c.Invalidate(alice)
	close(actor.block)
	<-done

	_, err := c.CompletedLevelsCount(context.Background(), alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, actor.countCalls.Load(), "stale in-flight result was cached")
}

func TestSharedReadSurvivesCallerCancel(t *testing.T) {
	actor := newFakeActor()
	actor.block = make(chan struct{})
	c, _ := newTestClient(actor)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.CompletedLevelsCount(ctxA, alice)
		errA <- err
	}()
	require.Eventually(t, func() bool { return actor.countCalls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		n   int
		err error
	}
	resB := make(chan result, 1)
	go func() {
		n, err := c.CompletedLevelsCount(context.Background(), alice)
		resB <- result{n, err}
	}()

	cancelA()
	err := <-errA
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(actor.block)
	got := <-resB
	require.NoError(t, got.err)
	assert.Zero(t, got.n)
	assert.EqualValues(t, 1, actor.countCalls.Load())
}

func TestAnonymousPrincipal(t *testing.T) {
	actor := newFakeActor()
	c, _ := newTestClient(actor)
	ctx := context.Background()

	_, err := c.CompleteLevel(ctx, Anonymous, 1)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.MintBadge(ctx, Anonymous)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	n, err := c.CompletedLevelsCount(ctx, Anonymous)
	require.NoError(t, err)
	assert.Zero(t, n)

	st, err := c.Status(ctx, Anonymous)
	require.NoError(t, err)
	assert.Equal(t, Status{}, st)

	assert.Zero(t, actor.countCalls.Load()+actor.writeCalls.Load())
}

func TestRemoteCallError(t *testing.T) {
	boom := errors.New("connection refused")
	actor := newFakeActor()
	actor.fail = boom
	c, _ := newTestClient(actor)
	ctx := context.Background()

	_, err := c.CompleteLevel(ctx, alice, 3)
	var rce *RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, OpCompleteLevel, rce.Op)
	assert.ErrorIs(t, err, boom)

	_, err = c.IsLevelCompleted(ctx, alice, 3)
	require.ErrorAs(t, err, &rce)
	assert.ErrorIs(t, err, boom)

	// Failures are not cached.
	actor.fail = nil
	done, err := c.IsLevelCompleted(ctx, alice, 3)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestStatusCanMint(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		minted    bool
		want      bool
	}{
		{"nothing done", 0, false, false},
		{"nine levels", 9, false, false},
		{"all levels", 10, false, true},
		{"already minted", 10, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := newFakeActor()
			c, _ := newTestClient(actor)
			completeAll(t, c, alice, tt.completed)
			actor.minted[alice] = tt.minted

			st, err := c.Status(context.Background(), alice)
			require.NoError(t, err)
			assert.True(t, st.Authenticated)
			assert.Equal(t, tt.completed, st.CompletedCount)
			assert.Equal(t, tt.minted, st.BadgeMinted)
			assert.Equal(t, tt.want, st.CanMint)
		})
	}
}

func TestMintBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported", func(t *testing.T) {
		c, _ := newTestClient(newFakeActor())
		_, err := c.MintBadge(ctx, alice)
		assert.ErrorIs(t, err, ErrMintUnsupported)
	})

	t.Run("not eligible", func(t *testing.T) {
		c, _ := newTestClient(fakeMinter{newFakeActor()})
		completeAll(t, c, alice, 9)
		_, err := c.MintBadge(ctx, alice)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("mints once", func(t *testing.T) {
		actor := fakeMinter{newFakeActor()}
		c, _ := newTestClient(actor)
		completeAll(t, c, alice, 10)

		ok, err := c.MintBadge(ctx, alice)
		require.NoError(t, err)
		assert.True(t, ok)

		st, err := c.Status(ctx, alice)
		require.NoError(t, err)
		assert.True(t, st.BadgeMinted)
		assert.False(t, st.CanMint)

		_, err = c.MintBadge(ctx, alice)
		assert.ErrorIs(t, err, ErrNotEligible)
	})
}
