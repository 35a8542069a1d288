package memory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
)

// DefaultMismatchDelay is how long a mismatched pair stays face up.
const DefaultMismatchDelay = time.Second

// Result summarizes a completed game.
type Result struct {
	Level   Level
	Moves   int
	Elapsed time.Duration
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	Clock         clock.Clock
	Rand          *rand.Rand
	Palette       []Symbol
	MismatchDelay time.Duration
	Logger        *log.Logger

	// OnComplete is called once per game, outside the session lock, when
	// the last pair is matched.
	OnComplete func(Result)
}

// Session owns the state of one game and applies transitions atomically.
// Mismatched pairs are turned back over by a deferred action on the
// session clock; each deferred action is tagged with the generation it was
// scheduled in and is dropped if the deck has been replaced since.
type Session struct {
	mu         sync.Mutex
	clock      clock.Clock
	rng        *rand.Rand
	palette    []Symbol
	delay      time.Duration
	logger     *log.Logger
	onComplete func(Result)

	level      Level
	state      State
	generation uint64
	pending    *clock.Timer
	timer      *Timer
}

// NewSession deals a deck for the level and returns a ready session.
func NewSession(level Level, opts Options) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Palette == nil {
		opts.Palette = DefaultPalette
	}
	if opts.MismatchDelay <= 0 {
		opts.MismatchDelay = DefaultMismatchDelay
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("memory")
	}

	s := &Session{
		clock:      opts.Clock,
		rng:        opts.Rand,
		palette:    opts.Palette,
		delay:      opts.MismatchDelay,
		logger:     opts.Logger,
		onComplete: opts.OnComplete,
		timer:      NewTimer(opts.Clock),
	}
	if err := s.Reset(level); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset discards the current game and deals a fresh deck for level.
// A pending mismatch resolution from the old deck will not be applied.
func (s *Session) Reset(level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := BuildDeck(level, s.palette, s.rng)
	if err != nil {
		return fmt.Errorf("memory: reset: %w", err)
	}

	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.level = level
	s.state = NewState(cards)
	s.timer.Reset()

	s.logger.Debug("deck dealt", "level", level, "cards", len(cards), "generation", s.generation)
	return nil
}

// Flip turns over the card with the given id.
func (s *Session) Flip(id string) Outcome {
	s.mu.Lock()
	outcome, done := s.flipLocked(id)
	s.mu.Unlock()

	done()
	return outcome
}

// FlipAt flips the card at the given deck position.
func (s *Session) FlipAt(index int) Outcome {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Cards) {
		s.mu.Unlock()
		return OutcomeIgnored
	}
	outcome, done := s.flipLocked(s.state.Cards[index].ID)
	s.mu.Unlock()

	done()
	return outcome
}

// flipLocked applies a flip. Caller holds s.mu and must call done after
// releasing it; done runs the completion hook, if any.
func (s *Session) flipLocked(id string) (Outcome, func()) {
	prev := s.state
	next, outcome := prev.Flip(id)
	if outcome == OutcomeIgnored {
		return outcome, func() {}
	}
	s.state = next

	if prev.Moves == 0 && next.Moves == 1 {
		s.timer.Start()
	}
	if outcome == OutcomeMismatch {
		s.scheduleResolve()
	}

	if prev.Complete || !next.Complete {
		return outcome, func() {}
	}

	s.timer.Stop()
	result := Result{Level: s.level, Moves: next.Moves, Elapsed: s.timer.Elapsed()}
	s.logger.Info("level complete", "level", s.level, "moves", next.Moves, "time", FormatElapsed(result.Elapsed))

	onComplete := s.onComplete
	return outcome, func() {
		if onComplete != nil {
			onComplete(result)
		}
	}
}

// scheduleResolve arms the deferred unflip. Caller holds s.mu.
func (s *Session) scheduleResolve() {
	gen := s.generation
	s.pending = s.clock.AfterFunc(s.delay, func() {
		s.resolveMismatch(gen)
	})
}

func (s *Session) resolveMismatch(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("dropping stale unflip", "scheduled", gen, "current", s.generation)
		return
	}
	s.state = s.state.ResolveMismatch()
	s.pending = nil
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Level returns the level being played.
func (s *Session) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Generation returns the deck generation, incremented on every reset.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Elapsed returns the play time of the current game.
func (s *Session) Elapsed() time.Duration {
	return s.timer.Elapsed()
}

// Close cancels any pending deferred action.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
