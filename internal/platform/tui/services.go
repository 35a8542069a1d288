package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/memory-match/internal/cardback"
	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/progress"
	"github.com/vovakirdan/memory-match/internal/storage"
)

// requestTimeout bounds every storage or ledger call made from the UI.
const requestTimeout = 10 * time.Second

// Services bundles what the screens of one player session need. Any of
// Store, Progress and CardBack may be nil; the screens degrade instead of
// failing.
type Services struct {
	Store     *storage.Store
	Progress  *progress.Client
	CardBack  *cardback.Store
	Principal progress.Principal
	Logger    *log.Logger

	// Game is the template for each game's options. OnComplete is ignored.
	Game memory.Options

	// BrowseFiles enables the local file picker on the card-back screen.
	BrowseFiles bool

	// ScreenshotDir receives Ctrl+S screenshots. Empty disables them.
	ScreenshotDir string
}

func (s Services) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// statusMsg carries a refreshed progress status.
type statusMsg struct {
	status progress.Status
	err    error
}

// levelMarksMsg carries which levels the player has completed.
type levelMarksMsg struct {
	completed map[int]bool
	err       error
}

// completionMsg reports how a finished level was recorded.
type completionMsg struct {
	level    memory.Level
	recorded bool
	status   progress.Status
	err      error
}

// mintMsg reports the result of a mint request.
type mintMsg struct {
	minted bool
	status progress.Status
	err    error
}

// fetchStatusCmd loads the player's progress status.
func (s Services) fetchStatusCmd() tea.Cmd {
	if s.Progress == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		st, err := s.Progress.Status(ctx, s.Principal)
		return statusMsg{status: st, err: err}
	}
}

// fetchLevelMarksCmd asks the ledger which levels are completed.
func (s Services) fetchLevelMarksCmd() tea.Cmd {
	if s.Progress == nil || !s.Principal.Authenticated() {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		marks := make(map[int]bool, memory.LevelCount())
		for i := 1; i <= memory.LevelCount(); i++ {
			done, err := s.Progress.IsLevelCompleted(ctx, s.Principal, i)
			if err != nil {
				return levelMarksMsg{completed: marks, err: err}
			}
			marks[i] = done
		}
		return levelMarksMsg{completed: marks}
	}
}

// recordCompletionCmd stores the local result and reports the completion
// to the ledger, then reloads the status.
func (s Services) recordCompletionCmd(res memory.Result) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if s.Store != nil {
			_, err := s.Store.SaveResult(ctx, storage.LevelResult{
				Level:     int(res.Level),
				Moves:     res.Moves,
				Duration:  res.Elapsed,
				Principal: string(s.Principal),
			})
			if err != nil {
				s.logger().Warn("cannot save result", "level", res.Level, "err", err)
			}
		}

		msg := completionMsg{level: res.Level}
		if s.Progress == nil || !s.Principal.Authenticated() {
			return msg
		}

		msg.recorded, msg.err = s.Progress.CompleteLevel(ctx, s.Principal, int(res.Level))
		if msg.err != nil {
			return msg
		}
		msg.status, msg.err = s.Progress.Status(ctx, s.Principal)
		return msg
	}
}

// mintCmd requests the badge.
func (s Services) mintCmd() tea.Cmd {
	if s.Progress == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		minted, err := s.Progress.MintBadge(ctx, s.Principal)
		if err != nil {
			return mintMsg{err: err}
		}
		st, err := s.Progress.Status(ctx, s.Principal)
		return mintMsg{minted: minted, status: st, err: err}
	}
}

// theme resolves the card-back tint for rendering.
func (s Services) theme() Theme {
	if s.CardBack == nil || !s.CardBack.IsCustom() {
		return Theme{}
	}
	tint, err := cardback.Swatch(s.CardBack.Active())
	if err != nil {
		return Theme{}
	}
	return Theme{CardBack: tint}
}

// progressError renders a progress error for the status line.
func progressError(err error) string {
	var remote *progress.RemoteCallError
	switch {
	case errors.Is(err, progress.ErrNotAuthenticated):
		return "Sign in to record progress"
	case errors.Is(err, progress.ErrMintUnsupported):
		return "This ledger cannot mint badges"
	case errors.Is(err, progress.ErrNotEligible):
		return "Complete all levels to mint the badge"
	case errors.As(err, &remote):
		return "Ledger unavailable: " + remote.Op
	default:
		return err.Error()
	}
}

// loginHint is shown to anonymous players.
const loginHint = "Playing anonymously: connect with an SSH key or set --principal to record progress"
