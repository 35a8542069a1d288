package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for reproducible decks.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // UI ticks per second (default 30)
	Seed     int64 // RNG seed for deck shuffling
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState is the summary a game reports to the platform after each step.
type GameState struct {
	Level    int  // Current level (1-indexed)
	Moves    int  // Completed pair-flip attempts
	Locked   bool // Whether input is blocked while a mismatch is shown
	Complete bool // Whether every pair has been matched
}

// StepResult is returned by Game.Step() after each tick.
type StepResult struct {
	State GameState

	// Completed is true only on the step where the game became complete.
	Completed bool
}
