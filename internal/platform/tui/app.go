package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/memory-match/internal/core"
	"github.com/vovakirdan/memory-match/internal/games/memory"
)

// screen identifies the active sub-model of an AppModel.
type screen int

const (
	screenMenu screen = iota
	screenGame
	screenRecords
	screenCardBack
)

// AppModel manages one player's flow: menu -> game/records/card back -> menu.
// It is the top-level model for both local and SSH sessions.
type AppModel struct {
	services Services
	config   core.RuntimeConfig
	theme    Theme
	screen   screen
	level    memory.Level
	menu     MenuModel
	game     *GameModel
	records  RecordsModel
	cardBack CardBackModel
	notice   string
	quitting bool
}

// StartMode selects the first screen of an AppModel.
type StartMode int

const (
	StartMenu StartMode = iota // Level selector with the cursor on the level
	StartGame                  // Deal the level straight away
)

// NewAppModel creates the top-level model for one player.
func NewAppModel(svc Services, cfg core.RuntimeConfig, level memory.Level, mode StartMode) AppModel {
	if !level.Valid() {
		level = memory.MinLevel
	}

	m := AppModel{
		services: svc,
		config:   cfg,
		theme:    svc.theme(),
		level:    level,
		menu:     NewMenuModel(svc, cfg, level),
	}
	if mode == StartGame {
		gm, err := NewGameModel(svc, cfg, level, m.theme)
		if err != nil {
			m.notice = err.Error()
			return m
		}
		m.game = &gm
		m.screen = screenGame
	}
	return m
}

// Init starts the first screen.
func (m AppModel) Init() tea.Cmd {
	if m.screen == screenGame {
		return m.game.Init()
	}
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenRecords:
		return m.updateRecords(msg)
	case screenCardBack:
		return m.updateCardBack(msg)
	default:
		return m.updateMenu(msg)
	}
}

// startGame switches to a fresh game at the given level.
func (m AppModel) startGame(level memory.Level) (tea.Model, tea.Cmd) {
	gm, err := NewGameModel(m.services, m.config, level, m.theme)
	if err != nil {
		m.services.logger().Error("cannot start game", "level", level, "err", err)
		m.screen = screenMenu
		m.notice = err.Error()
		return m, m.menu.Init()
	}
	m.level = level
	m.game = &gm
	m.screen = screenGame
	return m, m.game.Init()
}

// backToMenu rebuilds the menu so progress marks are reloaded.
func (m AppModel) backToMenu() (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.menu = NewMenuModel(m.services, m.config, m.level)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}
	m.level = m.menu.Cursor()

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.Selected().Valid():
		m.notice = ""
		return m.startGame(m.menu.Selected())

	case m.menu.WantsRecords():
		m.records = NewRecordsModel(m.services.Store, m.level, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenRecords
		return m, m.records.Init()

	case m.menu.WantsCardBack():
		m.cardBack = NewCardBackModel(m.services.CardBack, m.services.BrowseFiles, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenCardBack
		return m, m.cardBack.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m AppModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(GameModel); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		m.level = m.game.Game().Level()
		m.game = nil
		return m.backToMenu()
	}

	return m, cmd
}

// updateRecords handles updates when the records board is open.
func (m AppModel) updateRecords(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.records.Update(msg)
	if rm, ok := newModel.(RecordsModel); ok {
		m.records = rm
	}

	switch {
	case m.records.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.records.IsGoingBack():
		return m.backToMenu()
	}
	return m, cmd
}

// updateCardBack handles updates when the card-back screen is open.
func (m AppModel) updateCardBack(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.cardBack.Update(msg)
	if cm, ok := newModel.(CardBackModel); ok {
		m.cardBack = cm
	}

	switch {
	case m.cardBack.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.cardBack.IsGoingBack():
		m.theme = m.services.theme()
		return m.backToMenu()
	}
	return m, cmd
}

// View renders the active screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenGame:
		if m.game != nil {
			return m.game.View()
		}
	case screenRecords:
		return m.records.View()
	case screenCardBack:
		return m.cardBack.View()
	}

	view := m.menu.View()
	if m.notice != "" {
		view += "\n" + centerText(m.notice, m.config.ScreenW) + "\n"
	}
	return view
}

// Close releases the running game, if any.
func (m AppModel) Close() {
	if m.game != nil {
		m.game.Game().Close()
	}
}

// Run starts the Bubble Tea program on the local terminal.
func Run(svc Services, cfg core.RuntimeConfig, level memory.Level, mode StartMode) error {
	p := tea.NewProgram(
		NewAppModel(svc, cfg, level, mode),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if am, ok := final.(AppModel); ok {
		am.Close()
	}
	return err
}
