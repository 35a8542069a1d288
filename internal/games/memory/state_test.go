package memory

import "testing"

// levelOneDeck returns a fixed 8-card deck where cards 0/1 and 2/3 pair up.
func levelOneDeck() []Card {
	return []Card{
		{ID: "0-a", Value: "A"},
		{ID: "0-b", Value: "A"},
		{ID: "1-a", Value: "B"},
		{ID: "1-b", Value: "B"},
		{ID: "2-a", Value: "C"},
		{ID: "3-a", Value: "D"},
		{ID: "2-b", Value: "C"},
		{ID: "3-b", Value: "D"},
	}
}

func TestFlipMatch(t *testing.T) {
	s := NewState(levelOneDeck())

	s, out := s.Flip("0-a")
	if out != OutcomeFirstFlip {
		t.Fatalf("first flip outcome = %v, want first_flip", out)
	}
	if len(s.Flipped) != 1 || !s.Cards[0].Flipped {
		t.Fatalf("after first flip: flipped=%v card=%+v", s.Flipped, s.Cards[0])
	}

	s, out = s.Flip("0-b")
	if out != OutcomeMatch {
		t.Fatalf("second flip outcome = %v, want match", out)
	}
	if !s.Cards[0].Matched || !s.Cards[1].Matched {
		t.Errorf("pair not matched: %+v %+v", s.Cards[0], s.Cards[1])
	}
	if s.Moves != 1 {
		t.Errorf("Moves = %d, want 1", s.Moves)
	}
	if len(s.Flipped) != 0 {
		t.Errorf("Flipped = %v, want empty", s.Flipped)
	}
	if s.Locked {
		t.Error("state locked after a match")
	}
	if s.MatchedPairs() != 1 || s.TotalPairs() != 4 {
		t.Errorf("pairs = %d/%d, want 1/4", s.MatchedPairs(), s.TotalPairs())
	}
}

func TestFlipMismatchLocksAndResolves(t *testing.T) {
	s := NewState(levelOneDeck())

	s, _ = s.Flip("0-a")
	s, out := s.Flip("1-a")
	if out != OutcomeMismatch {
		t.Fatalf("outcome = %v, want mismatch", out)
	}
	if s.Moves != 1 || !s.Locked {
		t.Fatalf("after mismatch: moves=%d locked=%v", s.Moves, s.Locked)
	}
	if len(s.Flipped) != 2 {
		t.Fatalf("Flipped = %v, want two pending cards", s.Flipped)
	}

	// Locked: a third card is rejected.
	locked, out := s.Flip("2-a")
	if out != OutcomeIgnored {
		t.Errorf("flip while locked = %v, want ignored", out)
	}
	if locked.Cards[4].Flipped {
		t.Error("card flipped while locked")
	}

	s = s.ResolveMismatch()
	if s.Locked {
		t.Error("still locked after resolve")
	}
	if s.Cards[0].Flipped || s.Cards[2].Flipped {
		t.Errorf("cards still face up: %+v %+v", s.Cards[0], s.Cards[2])
	}
	if len(s.Flipped) != 0 {
		t.Errorf("Flipped = %v, want empty", s.Flipped)
	}
	if s.Moves != 1 {
		t.Errorf("Moves = %d, want 1", s.Moves)
	}
}

func TestFlipIgnored(t *testing.T) {
	s := NewState(levelOneDeck())
	s, _ = s.Flip("0-a")

	tests := []struct {
		name string
		id   string
	}{
		{"already flipped", "0-a"},
		{"unknown id", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, out := s.Flip(tt.id)
			if out != OutcomeIgnored {
				t.Errorf("Flip(%q) = %v, want ignored", tt.id, out)
			}
			if next.Moves != s.Moves || len(next.Flipped) != len(s.Flipped) {
				t.Errorf("Flip(%q) changed state", tt.id)
			}
		})
	}

	s, _ = s.Flip("0-b")
	if _, out := s.Flip("0-b"); out != OutcomeIgnored {
		t.Errorf("flip of matched card = %v, want ignored", out)
	}
}

func TestFlipDoesNotMutateReceiver(t *testing.T) {
	s := NewState(levelOneDeck())
	_, _ = s.Flip("0-a")

	if s.Cards[0].Flipped || len(s.Flipped) != 0 {
		t.Error("Flip modified the receiver")
	}
}

func TestResolveMismatchNoopWhenUnlocked(t *testing.T) {
	s := NewState(levelOneDeck())
	s, _ = s.Flip("0-a")

	got := s.ResolveMismatch()
	if !got.Cards[0].Flipped || len(got.Flipped) != 1 {
		t.Error("ResolveMismatch changed an unlocked state")
	}
}

func TestCompletion(t *testing.T) {
	s := NewState(levelOneDeck())

	pairs := [][2]string{{"0-a", "0-b"}, {"1-a", "1-b"}, {"2-a", "2-b"}, {"3-a", "3-b"}}
	for i, p := range pairs {
		if s.Complete {
			t.Fatalf("complete after %d pairs", i)
		}
		s, _ = s.Flip(p[0])
		s, _ = s.Flip(p[1])
	}

	if !s.Complete {
		t.Fatal("not complete after matching every pair")
	}
	if s.Moves != 4 {
		t.Errorf("Moves = %d, want 4", s.Moves)
	}
	if s.MatchedPairs() != 4 {
		t.Errorf("MatchedPairs() = %d, want 4", s.MatchedPairs())
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{OutcomeIgnored, "ignored"},
		{OutcomeFirstFlip, "first_flip"},
		{OutcomeMatch, "match"},
		{OutcomeMismatch, "mismatch"},
		{Outcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}
