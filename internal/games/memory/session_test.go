package memory

import (
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, level Level, onComplete func(Result)) (*Session, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	s, err := NewSession(level, Options{
		Clock:      mock,
		Rand:       rand.New(rand.NewSource(1)),
		Logger:     log.New(io.Discard),
		OnComplete: onComplete,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, mock
}

// pairsOf groups card ids by face value.
func pairsOf(st State) [][2]string {
	byValue := make(map[Symbol][]string)
	var order []Symbol
	for _, c := range st.Cards {
		if _, ok := byValue[c.Value]; !ok {
			order = append(order, c.Value)
		}
		byValue[c.Value] = append(byValue[c.Value], c.ID)
	}

	pairs := make([][2]string, 0, len(order))
	for _, v := range order {
		ids := byValue[v]
		pairs = append(pairs, [2]string{ids[0], ids[1]})
	}
	return pairs
}

func TestSessionMismatchUnflipsAfterDelay(t *testing.T) {
	s, mock := newTestSession(t, 1, nil)
	pairs := pairsOf(s.State())

	assert.Equal(t, OutcomeFirstFlip, s.Flip(pairs[0][0]))
	assert.Equal(t, OutcomeMismatch, s.Flip(pairs[1][0]))

	st := s.State()
	require.True(t, st.Locked)
	assert.Equal(t, 1, st.Moves)
	assert.Len(t, st.Flipped, 2)

	assert.Equal(t, OutcomeIgnored, s.Flip(pairs[2][0]), "third card accepted while locked")

	mock.Add(500 * time.Millisecond)
	assert.True(t, s.State().Locked, "unlocked before the delay elapsed")

	mock.Add(500 * time.Millisecond)
	require.Eventually(t, func() bool { return !s.State().Locked }, time.Second, 5*time.Millisecond)

	st = s.State()
	assert.Empty(t, st.Flipped)
	assert.Equal(t, 1, st.Moves)
	for _, c := range st.Cards {
		assert.False(t, c.Flipped, "card %s still face up", c.ID)
	}
}

func TestSessionMatch(t *testing.T) {
	s, _ := newTestSession(t, 1, nil)
	pairs := pairsOf(s.State())

	s.Flip(pairs[0][0])
	assert.Equal(t, OutcomeMatch, s.Flip(pairs[0][1]))

	st := s.State()
	assert.Equal(t, 1, st.Moves)
	assert.Empty(t, st.Flipped)
	assert.False(t, st.Locked)
	assert.Equal(t, 1, st.MatchedPairs())
}

func TestSessionStaleUnflipDropped(t *testing.T) {
	s, mock := newTestSession(t, 1, nil)
	pairs := pairsOf(s.State())

	s.Flip(pairs[0][0])
	s.Flip(pairs[1][0])
	oldGen := s.Generation()

	require.NoError(t, s.Reset(1))
	assert.Equal(t, oldGen+1, s.Generation())
	assert.False(t, s.State().Locked)

	// Lock the new deck on a mismatch, then deliver the old deck's unflip.
	pairs = pairsOf(s.State())
	s.Flip(pairs[0][0])
	s.Flip(pairs[1][0])
	s.resolveMismatch(oldGen)
	assert.True(t, s.State().Locked, "stale unflip applied to the new deck")

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return !s.State().Locked }, time.Second, 5*time.Millisecond)
}

func TestSessionResetCancelsPending(t *testing.T) {
	s, mock := newTestSession(t, 2, nil)
	pairs := pairsOf(s.State())

	s.Flip(pairs[0][0])
	s.Flip(pairs[1][0])
	require.NoError(t, s.Reset(3))

	st := s.State()
	assert.Equal(t, Level(3), s.Level())
	assert.Len(t, st.Cards, LevelConfig(3).Cards())
	assert.Zero(t, st.Moves)
	assert.Zero(t, s.Elapsed())

	mock.Add(2 * time.Second)
	assert.Zero(t, s.State().Moves)
}

func TestSessionTimerAndCompletion(t *testing.T) {
	var (
		mu      sync.Mutex
		results []Result
	)
	s, mock := newTestSession(t, 1, func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})
	pairs := pairsOf(s.State())

	// The timer starts with the first completed move, not the first card.
	s.Flip(pairs[0][0])
	mock.Add(10 * time.Second)
	assert.Zero(t, s.Elapsed())

	s.Flip(pairs[0][1])
	mock.Add(65 * time.Second)

	for _, p := range pairs[1:] {
		s.Flip(p[0])
		s.Flip(p[1])
	}
	mock.Add(time.Minute)

	st := s.State()
	require.True(t, st.Complete)
	assert.Equal(t, 4, st.Moves)
	assert.Equal(t, 65*time.Second, s.Elapsed())
	assert.Equal(t, "01:05", FormatElapsed(s.Elapsed()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.Equal(t, Result{Level: 1, Moves: 4, Elapsed: 65 * time.Second}, results[0])
}

func TestSessionFlipAt(t *testing.T) {
	s, _ := newTestSession(t, 1, nil)

	assert.Equal(t, OutcomeIgnored, s.FlipAt(-1))
	assert.Equal(t, OutcomeIgnored, s.FlipAt(8))
	assert.Equal(t, OutcomeFirstFlip, s.FlipAt(0))
	assert.True(t, s.State().Cards[0].Flipped)
}

func TestSessionFlipAtDuringReset(t *testing.T) {
	s, _ := newTestSession(t, 1, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			assert.NoError(t, s.Reset(1))
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 200 {
			s.FlipAt(i % 8)
		}
	}()
	wg.Wait()

	require.NoError(t, s.Reset(1))
	assert.Equal(t, OutcomeFirstFlip, s.FlipAt(3))
	st := s.State()
	require.Len(t, st.Flipped, 1)
	assert.Equal(t, st.Cards[3].ID, st.Flipped[0].ID)
	assert.True(t, st.Cards[3].Flipped)
}

func TestNewSessionPaletteTooSmall(t *testing.T) {
	_, err := NewSession(1, Options{
		Palette: []Symbol{"A", "B"},
		Logger:  log.New(io.Discard),
	})
	assert.ErrorIs(t, err, ErrPaletteTooSmall)
}
