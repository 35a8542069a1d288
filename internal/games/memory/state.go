package memory

import "github.com/samber/lo"

// Card is one card of the deck.
type Card struct {
	ID      string
	Value   Symbol
	Flipped bool
	Matched bool
}

// Outcome describes what a flip did to the state.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // Flip rejected, state unchanged
	OutcomeFirstFlip                // First card of a pair turned over
	OutcomeMatch                    // Second card matched the first
	OutcomeMismatch                 // Second card differs; state is locked
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeFirstFlip:
		return "first_flip"
	case OutcomeMatch:
		return "match"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// State is the complete game state. Transitions return a new State and
// never modify the receiver's slices.
type State struct {
	Cards    []Card
	Flipped  []Card // Pending comparison, in flip order (0-2 entries)
	Moves    int
	Locked   bool
	Complete bool
}

// NewState starts a game over the given deck.
func NewState(cards []Card) State {
	return State{
		Cards:   cards,
		Flipped: []Card{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.Cards = append([]Card(nil), s.Cards...)
	c.Flipped = append([]Card{}, s.Flipped...)
	return c
}

// Index returns the position of the card with the given id, or -1.
func (s State) Index(id string) int {
	_, idx, ok := lo.FindIndexOf(s.Cards, func(c Card) bool { return c.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Flip turns over the card with the given id.
func (s State) Flip(id string) (State, Outcome) {
	if s.Locked || len(s.Flipped) >= 2 {
		return s, OutcomeIgnored
	}

	idx := s.Index(id)
	if idx < 0 {
		return s, OutcomeIgnored
	}
	card := s.Cards[idx]
	if card.Flipped || card.Matched {
		return s, OutcomeIgnored
	}

	next := s.Clone()
	next.Cards[idx].Flipped = true
	next.Flipped = append(next.Flipped, next.Cards[idx])

	if len(next.Flipped) < 2 {
		return next, OutcomeFirstFlip
	}

	first, second := next.Flipped[0], next.Flipped[1]
	next.Moves++

	if first.Value != second.Value {
		next.Locked = true
		return next, OutcomeMismatch
	}

	for i := range next.Cards {
		if next.Cards[i].ID == first.ID || next.Cards[i].ID == second.ID {
			next.Cards[i].Matched = true
		}
	}
	next.Flipped = []Card{}
	next.checkComplete()

	return next, OutcomeMatch
}

// ResolveMismatch turns the pending pair back over and unlocks the board.
// It is a no-op unless the state is locked on a mismatch.
func (s State) ResolveMismatch() State {
	if !s.Locked {
		return s
	}

	next := s.Clone()
	for _, pending := range s.Flipped {
		if idx := next.Index(pending.ID); idx >= 0 {
			next.Cards[idx].Flipped = false
		}
	}
	next.Flipped = []Card{}
	next.Locked = false
	return next
}

// checkComplete marks the game complete once every card is matched.
func (s *State) checkComplete() {
	if s.Complete || len(s.Cards) == 0 {
		return
	}
	if lo.EveryBy(s.Cards, func(c Card) bool { return c.Matched }) {
		s.Complete = true
	}
}

// MatchedPairs returns the number of matched pairs.
func (s State) MatchedPairs() int {
	return lo.CountBy(s.Cards, func(c Card) bool { return c.Matched }) / 2
}

// TotalPairs returns the number of pairs in the deck.
func (s State) TotalPairs() int {
	return len(s.Cards) / 2
}
