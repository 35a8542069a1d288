package memory

import "time"

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StateLocked      GameStateType = "locked"
	StateComplete    GameStateType = "complete"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the game state for determinism tests and debugging.
type Snapshot struct {
	Tick       uint64
	Level      int
	Generation uint64
	Moves      int
	Matched    int
	Total      int
	Cursor     int
	Cards      []Card
	Elapsed    time.Duration
	State      GameStateType
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	st := g.session.State()

	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case st.Complete:
		state = StateComplete
	case st.Locked:
		state = StateLocked
	}

	return Snapshot{
		Tick:       g.tick,
		Level:      int(g.level),
		Generation: g.session.Generation(),
		Moves:      st.Moves,
		Matched:    st.MatchedPairs(),
		Total:      st.TotalPairs(),
		Cursor:     g.cursor,
		Cards:      st.Cards,
		Elapsed:    g.session.Elapsed(),
		State:      state,
	}
}
