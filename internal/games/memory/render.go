package memory

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/memory-match/internal/core"
)

const (
	cellWidth    = 5 // Width of each card including its border
	cellHeight   = 3 // Height of each card including its border
	hudHeight    = 3
	footerHeight = 2
)

// boardSize returns the board dimensions for a level.
func boardSize(cfg DifficultyConfig) (w, h int) {
	rows := (cfg.Cards() + cfg.Columns - 1) / cfg.Columns
	return cfg.Columns * cellWidth, rows * cellHeight
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	cfg := LevelConfig(g.level)
	st := g.session.State()

	boardW, boardH := boardSize(cfg)
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight

	g.renderHUD(dst, st, cfg)
	g.renderBoard(dst, st, cfg, boardX, boardY)
	g.renderFooter(dst, st, boardY+boardH)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws level, moves, time and pair progress.
func (g *Game) renderHUD(dst *core.Screen, st State, cfg DifficultyConfig) {
	dst.DrawTextCenteredColor(0, "MEMORY MATCH", core.ColorCyan)

	left := fmt.Sprintf(" %s", cfg.Label)
	dst.DrawText(0, 1, left)

	right := fmt.Sprintf("Moves: %d  Time: %s ", st.Moves, FormatElapsed(g.session.Elapsed()))
	dst.DrawText(g.screenW-len(right), 1, right)

	dst.DrawTextCentered(2, progressBar(st.MatchedPairs(), st.TotalPairs(), 20))
}

// progressBar renders matched/total as a fixed-width bar with a counter.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return fmt.Sprintf("[%s%s] %d/%d",
		strings.Repeat("█", filled), strings.Repeat("·", width-filled), done, total)
}

// renderBoard draws every card in a grid of cfg.Columns columns.
func (g *Game) renderBoard(dst *core.Screen, st State, cfg DifficultyConfig, boardX, boardY int) {
	for i, card := range st.Cards {
		x := boardX + (i%cfg.Columns)*cellWidth
		y := boardY + (i/cfg.Columns)*cellHeight
		g.renderCard(dst, card, core.NewRect(x, y, cellWidth, cellHeight), i == g.cursor)
	}
}

// renderCard draws one card: back pattern when face down, symbol when up.
func (g *Game) renderCard(dst *core.Screen, card Card, r core.Rect, selected bool) {
	border := core.ColorGray
	switch {
	case selected:
		border = core.ColorYellow
	case card.Matched:
		border = core.ColorGreen
	}
	dst.DrawBox(r, border)

	inner := core.NewRect(r.X+1, r.Y+1, r.W-2, r.H-2)
	switch {
	case card.Matched:
		dst.DrawRect(inner, ' ', core.ColorDefault)
		cx, cy := inner.Center()
		dst.DrawTextColor(cx, cy, string(card.Value), core.ColorGreen)
	case card.Flipped:
		dst.DrawRect(inner, ' ', core.ColorDefault)
		cx, cy := inner.Center()
		dst.DrawTextColor(cx, cy, string(card.Value), core.ColorBrightWhite)
	default:
		dst.DrawRect(inner, '░', core.ColorCardBack)
	}
}

// renderFooter draws the status line and control hints below the board.
func (g *Game) renderFooter(dst *core.Screen, st State, y int) {
	var status string
	switch {
	case st.Complete:
		if _, ok := g.level.Next(); ok {
			status = fmt.Sprintf("Cleared in %d moves, %s! N: next level, R: replay",
				st.Moves, FormatElapsed(g.session.Elapsed()))
		} else {
			status = fmt.Sprintf("All levels cleared in %d moves, %s! M: mint badge",
				st.Moves, FormatElapsed(g.session.Elapsed()))
		}
	case st.Locked:
		status = "No match"
	case g.lastOutcome == OutcomeMatch:
		status = "Match!"
	}

	if status != "" {
		dst.DrawTextCenteredColor(y, status, core.ColorYellow)
	}
	dst.DrawTextCenteredColor(y+1, g.Controls(), core.ColorGray)
}
