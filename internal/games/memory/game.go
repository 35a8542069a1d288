package memory

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/vovakirdan/memory-match/internal/core"
)

// Game adapts a Session to the tick-driven platform loop: it owns the
// cursor, maps input frames to flips and lays the deck out for rendering.
type Game struct {
	opts    Options
	session *Session
	level   Level
	tick    uint64

	cursor int

	// Screen dimensions
	screenW int
	screenH int

	tooSmall      bool
	completedSeen bool
	lastOutcome   Outcome
}

// New creates a game. The palette must cover the hardest level so that
// every later Reset can deal a deck. Options.Rand is ignored; the deck RNG
// is seeded from the runtime config on each Reset.
func New(opts Options) (*Game, error) {
	if opts.Palette == nil {
		opts.Palette = DefaultPalette
	}
	if n := len(lo.Uniq(opts.Palette)); n < MaxPairs() {
		return nil, fmt.Errorf("%w: need %d symbols, palette has %d", ErrPaletteTooSmall, MaxPairs(), n)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithPrefix("memory")
	}
	return &Game{opts: opts, level: MinLevel}, nil
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return "memory"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Memory Match"
}

// Reset deals a fresh deck for the level chosen with SetLevel, replaying
// the current level otherwise.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if !g.level.Valid() {
		g.level = MinLevel
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if g.session != nil {
		g.session.Close()
	}

	opts := g.opts
	opts.Rand = rand.New(rand.NewSource(seed))
	session, err := NewSession(g.level, opts)
	if err != nil {
		// New validated the palette against the hardest level.
		panic(err)
	}

	g.session = session
	g.tick = 0
	g.cursor = 0
	g.completedSeen = false
	g.lastOutcome = OutcomeIgnored
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.checkScreenSize()
}

// SetLevel selects the level dealt by the next Reset. Invalid levels are
// ignored.
func (g *Game) SetLevel(level Level) {
	if level.Valid() {
		g.level = level
	}
}

// Resize updates the screen dimensions without dealing a new deck.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.checkScreenSize()
}

// Session exposes the underlying session.
func (g *Game) Session() *Session {
	return g.session
}

// Level returns the level being played.
func (g *Game) Level() Level {
	return g.level
}

// Cursor returns the deck index under the cursor.
func (g *Game) Cursor() int {
	return g.cursor
}

// LastOutcome returns the result of the most recent accepted or rejected flip.
func (g *Game) LastOutcome() Outcome {
	return g.lastOutcome
}

// checkScreenSize checks if the screen is large enough for the current deck.
func (g *Game) checkScreenSize() {
	boardW, boardH := boardSize(LevelConfig(g.level))
	minW := boardW + 2
	minH := boardH + hudHeight + footerHeight
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionRestart):
		g.redeal(g.level)
		return core.StepResult{State: g.State()}
	case in.Has(core.ActionNext):
		if next, ok := g.level.Next(); ok && g.session.State().Complete {
			g.redeal(next)
		}
		return core.StepResult{State: g.State()}
	}

	g.moveCursor(in)

	if in.Has(core.ActionFlip) {
		g.lastOutcome = g.session.FlipAt(g.cursor)
	}

	res := core.StepResult{State: g.State()}
	if res.State.Complete && !g.completedSeen {
		g.completedSeen = true
		res.Completed = true
	}
	return res
}

// redeal replaces the deck, keeping the session's clock and hooks.
func (g *Game) redeal(level Level) {
	if err := g.session.Reset(level); err != nil {
		g.opts.Logger.Error("redeal failed", "level", level, "err", err)
		return
	}
	g.level = level
	g.cursor = 0
	g.completedSeen = false
	g.lastOutcome = OutcomeIgnored
	g.checkScreenSize()
}

// moveCursor moves the cursor one cell, staying inside the deck.
func (g *Game) moveCursor(in core.InputFrame) {
	cfg := LevelConfig(g.level)
	cols := cfg.Columns
	total := cfg.Cards()
	x, y := g.cursor%cols, g.cursor/cols
	rows := (total + cols - 1) / cols

	switch {
	case in.Has(core.ActionUp):
		y--
	case in.Has(core.ActionDown):
		y++
	case in.Has(core.ActionLeft):
		x--
	case in.Has(core.ActionRight):
		x++
	default:
		return
	}

	x = core.Clamp(x, 0, cols-1)
	y = core.Clamp(y, 0, rows-1)
	g.cursor = core.Clamp(y*cols+x, 0, total-1)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	st := g.session.State()
	return core.GameState{
		Level:    int(g.level),
		Moves:    st.Moves,
		Locked:   st.Locked,
		Complete: st.Complete,
	}
}

// Close cancels pending deferred work.
func (g *Game) Close() {
	if g.session != nil {
		g.session.Close()
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/HJKL move  Space flip  R redeal  N next  M mint  Esc menu  Q quit"
}
