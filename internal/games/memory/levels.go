// Package memory implements the pairs-matching memory game: the level
// catalog, deck construction, the flip/match state machine and its timer.
package memory

import "fmt"

// Level identifies one of the campaign levels (1-indexed).
type Level int

const (
	MinLevel Level = 1
	MaxLevel Level = 10
)

// DifficultyConfig describes one level of the campaign.
type DifficultyConfig struct {
	Level   Level
	Pairs   int    // Number of distinct pairs in the deck
	Label   string // Display label, e.g. "Level 3 (8 pairs)"
	Columns int    // Grid width used when laying out the deck
}

// Cards returns the deck size for this level.
func (c DifficultyConfig) Cards() int {
	return c.Pairs * 2
}

// Levels defines the 10 campaign levels. Pair counts strictly increase.
var Levels = []DifficultyConfig{
	newLevel(1, 4, 4),
	newLevel(2, 6, 4),
	newLevel(3, 8, 4),
	newLevel(4, 10, 5),
	newLevel(5, 12, 6),
	newLevel(6, 14, 7),
	newLevel(7, 16, 8),
	newLevel(8, 18, 9),
	newLevel(9, 20, 10),
	newLevel(10, 24, 8),
}

func newLevel(level Level, pairs, columns int) DifficultyConfig {
	return DifficultyConfig{
		Level:   level,
		Pairs:   pairs,
		Label:   fmt.Sprintf("Level %d (%d pairs)", level, pairs),
		Columns: columns,
	}
}

// LevelCount returns the number of campaign levels.
func LevelCount() int {
	return len(Levels)
}

// Valid reports whether the level is part of the campaign.
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Next returns the following level and false when l is the last one.
func (l Level) Next() (Level, bool) {
	if l >= MaxLevel {
		return l, false
	}
	return l + 1, true
}

// LookupLevel returns the configuration for a level.
// ok is false for levels outside the campaign.
func LookupLevel(l Level) (cfg DifficultyConfig, ok bool) {
	if !l.Valid() {
		return DifficultyConfig{}, false
	}
	return Levels[l-1], true
}

// LevelConfig returns the configuration for a level.
// Callers must pass a validated level; anything else panics.
func LevelConfig(l Level) DifficultyConfig {
	cfg, ok := LookupLevel(l)
	if !ok {
		panic(fmt.Sprintf("memory: level %d out of range", l))
	}
	return cfg
}

// MaxPairs returns the pair count of the hardest level.
func MaxPairs() int {
	return Levels[len(Levels)-1].Pairs
}
