package memory

import (
	"io"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/memory-match/internal/core"
)

func newTestGame(t *testing.T, level Level) *Game {
	t.Helper()

	g, err := New(Options{Clock: clock.NewMock(), Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	g.SetLevel(level)
	cfg := core.DefaultConfig()
	cfg.Seed = 12345
	g.Reset(cfg)
	t.Cleanup(g.Close)
	return g
}

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestGameResetUsesSelectedLevel(t *testing.T) {
	g := newTestGame(t, 4)

	if g.Level() != 4 {
		t.Errorf("Level() = %d, want 4", g.Level())
	}
	if n := len(g.Session().State().Cards); n != 20 {
		t.Errorf("got %d cards, want 20", n)
	}
}

func TestGameDeterministicSeed(t *testing.T) {
	a := newTestGame(t, 2)
	b := newTestGame(t, 2)

	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa.Cards {
		if sa.Cards[i] != sb.Cards[i] {
			t.Fatalf("same seed dealt different decks at %d", i)
		}
	}
}

func TestGameCursorMovement(t *testing.T) {
	g := newTestGame(t, 1) // 8 cards, 4 columns

	steps := []struct {
		action core.Action
		want   int
	}{
		{core.ActionLeft, 0},
		{core.ActionUp, 0},
		{core.ActionRight, 1},
		{core.ActionDown, 5},
		{core.ActionDown, 5},
		{core.ActionRight, 6},
		{core.ActionRight, 7},
		{core.ActionRight, 7},
		{core.ActionUp, 3},
	}

	for i, s := range steps {
		g.Step(frame(s.action))
		if g.Cursor() != s.want {
			t.Errorf("step %d (%v): cursor = %d, want %d", i, s.action, g.Cursor(), s.want)
		}
	}
}

func TestGameFlipAndComplete(t *testing.T) {
	g := newTestGame(t, 1)
	st := g.Session().State()

	// Walk the cursor to each pair in turn and flip both cards.
	completedSteps := 0
	for _, p := range pairsOf(st) {
		for _, id := range p {
			g.cursor = st.Index(id)
			res := g.Step(frame(core.ActionFlip))
			if res.Completed {
				completedSteps++
			}
		}
	}

	if completedSteps != 1 {
		t.Errorf("Completed reported %d times, want 1", completedSteps)
	}
	snap := g.Snapshot()
	if snap.State != StateComplete {
		t.Errorf("State = %q, want complete", snap.State)
	}
	if snap.Moves != 4 || snap.Matched != 4 {
		t.Errorf("moves=%d matched=%d, want 4/4", snap.Moves, snap.Matched)
	}

	// Further steps do not report completion again.
	if res := g.Step(frame()); res.Completed {
		t.Error("Completed reported on a later step")
	}
}

func TestGameNextLevel(t *testing.T) {
	g := newTestGame(t, 1)

	// Next is ignored until the level is complete.
	g.Step(frame(core.ActionNext))
	if g.Level() != 1 {
		t.Fatalf("advanced before completion to %d", g.Level())
	}

	st := g.Session().State()
	for _, p := range pairsOf(st) {
		g.Session().Flip(p[0])
		g.Session().Flip(p[1])
	}

	g.Step(frame(core.ActionNext))
	if g.Level() != 2 {
		t.Errorf("Level() = %d after next, want 2", g.Level())
	}
	if g.Snapshot().Moves != 0 {
		t.Error("moves carried over to the next level")
	}
}

func TestGameRestart(t *testing.T) {
	g := newTestGame(t, 3)
	gen := g.Session().Generation()

	g.Step(frame(core.ActionFlip))
	g.Step(frame(core.ActionRestart))

	if g.Session().Generation() != gen+1 {
		t.Errorf("generation = %d, want %d", g.Session().Generation(), gen+1)
	}
	if g.Level() != 3 {
		t.Errorf("Level() = %d, want 3", g.Level())
	}
	for _, c := range g.Session().State().Cards {
		if c.Flipped {
			t.Fatal("restart left a card face up")
		}
	}
}

func TestGameTooSmall(t *testing.T) {
	g := newTestGame(t, 10)
	g.Resize(20, 10)

	if g.Snapshot().State != StatePausedSmall {
		t.Fatalf("State = %q, want paused_small_window", g.Snapshot().State)
	}

	screen := core.NewScreen(20, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "too small") {
		t.Error("too-small message not rendered")
	}
}

func TestGameRenderHUD(t *testing.T) {
	g := newTestGame(t, 1)
	screen := core.NewScreen(80, 24)
	g.Render(screen)

	out := screen.String()
	for _, want := range []string{"MEMORY MATCH", "Level 1 (4 pairs)", "Moves: 0", "Time: 00:00", "0/4"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestNewRejectsSmallPalette(t *testing.T) {
	if _, err := New(Options{Palette: DefaultPalette[:10]}); err == nil {
		t.Error("New accepted a palette smaller than the hardest level")
	}
}

func TestGameSetLevelAppliesOnReset(t *testing.T) {
	g := newTestGame(t, 1)

	g.SetLevel(6)
	g.SetLevel(42) // ignored
	g.Reset(core.DefaultConfig())

	if g.Level() != 6 {
		t.Errorf("Level() = %d, want 6", g.Level())
	}
	if n := len(g.Session().State().Cards); n != 2*LevelConfig(6).Pairs {
		t.Errorf("got %d cards, want %d", n, 2*LevelConfig(6).Pairs)
	}
}
