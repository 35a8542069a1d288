package memory

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/samber/lo"
)

// Symbol is the face value shown on a card. Two cards of a pair share it.
type Symbol string

// ErrPaletteTooSmall is returned when a palette cannot supply enough
// distinct symbols for the requested level.
var ErrPaletteTooSmall = errors.New("memory: palette too small")

// DefaultPalette holds 48 distinct single-cell glyphs.
var DefaultPalette = []Symbol{
	"A", "B", "C", "D", "E", "F", "G", "H", "J", "K", "L", "M",
	"N", "P", "R", "S", "T", "U", "V", "W", "X", "Y", "Z", "Q",
	"2", "3", "4", "5", "6", "7", "8", "9",
	"#", "$", "%", "&", "@", "*", "+", "=",
	"?", "!", "<", ">", "~", "^", "§", "¤",
}

// BuildDeck deals a shuffled deck for the level: pairCount symbols drawn
// from a random permutation of the palette, two cards each.
func BuildDeck(level Level, palette []Symbol, rng *rand.Rand) ([]Card, error) {
	cfg, ok := LookupLevel(level)
	if !ok {
		return nil, fmt.Errorf("memory: level %d out of range", level)
	}

	distinct := lo.Uniq(palette)
	if len(distinct) < cfg.Pairs {
		return nil, fmt.Errorf("%w: level %d needs %d symbols, palette has %d",
			ErrPaletteTooSmall, level, cfg.Pairs, len(distinct))
	}

	symbols := Shuffle(distinct, rng)[:cfg.Pairs]

	cards := make([]Card, 0, cfg.Cards())
	for i, sym := range symbols {
		cards = append(cards,
			Card{ID: fmt.Sprintf("%d-a", i), Value: sym},
			Card{ID: fmt.Sprintf("%d-b", i), Value: sym},
		)
	}

	return Shuffle(cards, rng), nil
}

// Shuffle returns a Fisher-Yates permutation of items. The input is left
// untouched.
func Shuffle[T any](items []T, rng *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
