package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/memory-match/internal/core"
	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/progress"
)

// MenuModel is the level selector shown between games.
type MenuModel struct {
	services     Services
	cursor       int
	width        int
	height       int
	config       core.RuntimeConfig
	keyMapper    *KeyMapper
	completed    map[int]bool
	status       progress.Status
	statusLoaded bool
	notice       string
	quitting     bool
	selected     memory.Level
	openRecords  bool
	openCardBack bool
}

// NewMenuModel creates a level selector with the cursor on the given level.
func NewMenuModel(svc Services, cfg core.RuntimeConfig, level memory.Level) MenuModel {
	cursor := 0
	if level.Valid() {
		cursor = int(level) - 1
	}

	return MenuModel{
		services:  svc,
		cursor:    cursor,
		width:     cfg.ScreenW,
		height:    cfg.ScreenH,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		completed: map[int]bool{},
	}
}

// Init loads the player's progress.
func (m MenuModel) Init() tea.Cmd {
	return tea.Batch(m.services.fetchStatusCmd(), m.services.fetchLevelMarksCmd())
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.notice = progressError(msg.err)
			return m, nil
		}
		m.status = msg.status
		m.statusLoaded = true
		return m, nil

	case levelMarksMsg:
		if msg.err != nil {
			m.notice = progressError(msg.err)
		}
		for level, done := range msg.completed {
			m.completed[level] = done
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < memory.LevelCount()-1 {
			m.cursor++
		}

	case MenuActionSelect:
		m.selected = memory.Level(m.cursor + 1)

	case MenuActionRecords:
		m.openRecords = true

	case MenuActionCardBack:
		m.openCardBack = true

	case MenuActionRefresh:
		if m.services.Progress != nil {
			m.services.Progress.Invalidate(m.services.Principal)
		}
		m.notice = ""
		return m, m.Init()
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("M E M O R Y   M A T C H"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select a level", m.width))
	b.WriteString("\n\n")

	for i, cfg := range memory.Levels {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		mark := " "
		if m.completed[int(cfg.Level)] {
			mark = doneStyle.Render("✓")
		}
		rows := (cfg.Cards() + cfg.Columns - 1) / cfg.Columns
		line := fmt.Sprintf("%s%s Level %-2d  %2d pairs  %dx%d", cursor, mark, cfg.Level, cfg.Pairs, cfg.Columns, rows)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.progressLine(), m.width))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(centerText(dimStyle.Render(m.notice), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Play  |  Tab: Records  |  C: Card back  |  Q: Quit"
	b.WriteString(centerText(dimStyle.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// progressLine summarizes the badge progress.
func (m MenuModel) progressLine() string {
	switch {
	case !m.services.Principal.Authenticated():
		return loginHint
	case m.services.Progress == nil:
		return "Progress tracking is disabled"
	case !m.statusLoaded:
		return "Loading progress..."
	case m.status.BadgeMinted:
		return "Badge minted. Well played!"
	case m.status.CanMint:
		return "All levels cleared! Press M in game to mint your badge"
	default:
		return fmt.Sprintf("Badge progress: %d/%d levels", m.status.CompletedCount, progress.BadgeLevels)
	}
}

// Selected returns the chosen level, or 0 if none was chosen.
func (m MenuModel) Selected() memory.Level {
	return m.selected
}

// Cursor returns the highlighted level.
func (m MenuModel) Cursor() memory.Level {
	return memory.Level(m.cursor + 1)
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsRecords returns true if user requested the records board.
func (m MenuModel) WantsRecords() bool {
	return m.openRecords
}

// WantsCardBack returns true if user requested the card-back screen.
func (m MenuModel) WantsCardBack() bool {
	return m.openCardBack
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
