package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/memory-match/internal/core"
	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/progress"
)

// GameModel runs one memory game and reports completions.
type GameModel struct {
	game       *memory.Game
	screen     *core.Screen
	services   Services
	theme      Theme
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	gameState  core.GameState
	keyMapper  *KeyMapper
	status     progress.Status
	notice     string
	minting    bool
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a game model that starts at the given level.
func NewGameModel(svc Services, cfg core.RuntimeConfig, level memory.Level, theme Theme) (GameModel, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	opts := svc.Game
	opts.OnComplete = nil
	if opts.Logger == nil {
		opts.Logger = svc.logger()
	}
	game, err := memory.New(opts)
	if err != nil {
		return GameModel{}, err
	}
	game.SetLevel(level)

	return GameModel{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		services:   svc,
		theme:      theme,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
	}, nil
}

// Init deals the first deck and starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tea.Batch(tickCmd(m.config.TickRate), m.services.fetchStatusCmd())
}

// Update handles messages.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		m.game.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()

	case statusMsg:
		if msg.err != nil {
			m.notice = progressError(msg.err)
			return m, nil
		}
		m.status = msg.status
		return m, nil

	case completionMsg:
		switch {
		case msg.err != nil:
			m.notice = progressError(msg.err)
		case !m.services.Principal.Authenticated():
			m.notice = loginHint
		default:
			m.status = msg.status
			m.notice = fmt.Sprintf("Level %d recorded (%d/%d)", msg.level, msg.status.CompletedCount, progress.BadgeLevels)
			if msg.status.CanMint {
				m.notice = "All levels recorded! Press M to mint your badge"
			}
		}
		return m, nil

	case mintMsg:
		m.minting = false
		switch {
		case msg.err != nil:
			m.notice = progressError(msg.err)
		case msg.minted:
			m.status = msg.status
			m.notice = "Badge minted!"
		default:
			m.status = msg.status
			m.notice = "Badge already minted"
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	switch {
	case isQuit:
		m.quitting = true
		m.game.Close()
		return m, tea.Quit
	case action == core.ActionBack:
		m.backToMenu = true
		m.game.Close()
		return m, nil
	case action == core.ActionMint:
		return m.requestMint()
	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}
	return m, nil
}

// requestMint starts a mint when the player is eligible.
func (m GameModel) requestMint() (tea.Model, tea.Cmd) {
	if m.minting {
		return m, nil
	}
	if !m.services.Principal.Authenticated() {
		m.notice = loginHint
		return m, nil
	}
	if !m.status.CanMint {
		m.notice = progressError(progress.ErrNotEligible)
		if m.status.BadgeMinted {
			m.notice = "Badge already minted"
		}
		return m, nil
	}
	cmd := m.services.mintCmd()
	if cmd == nil {
		m.notice = progressError(progress.ErrMintUnsupported)
		return m, nil
	}
	m.minting = true
	m.notice = "Minting badge..."
	return m, cmd
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	prevLevel := m.game.Level()
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	if m.game.Level() != prevLevel {
		m.notice = ""
	}

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	if result.Completed {
		snap := m.game.Snapshot()
		cmds = append(cmds, m.services.recordCompletionCmd(memory.Result{
			Level:   m.game.Level(),
			Moves:   snap.Moves,
			Elapsed: snap.Elapsed,
		}))
	}
	return m, tea.Batch(cmds...)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	dir := m.services.ScreenshotDir
	if dir == "" || m.game.Session() == nil {
		return
	}

	m.game.Render(m.screen)

	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("memory_level%02d_%s.txt", m.game.Level(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
	m.notice = "Screenshot saved to " + path
}

// View renders the game.
func (m GameModel) View() string {
	if m.quitting || m.game.Session() == nil {
		return ""
	}

	m.game.Render(m.screen)
	if m.notice != "" && m.screen.Height() > 0 {
		y := m.screen.Height() - 1
		m.screen.DrawHLine(0, y, m.screen.Width(), ' ', core.ColorDefault)
		m.screen.DrawTextCenteredColor(y, m.notice, core.ColorCyan)
	}
	return RenderScreen(m.screen, m.theme)
}

// Game exposes the running game.
func (m GameModel) Game() *memory.Game {
	return m.game
}

// Status returns the last known progress status.
func (m GameModel) Status() progress.Status {
	return m.status
}

// Notice returns the current status line message.
func (m GameModel) Notice() string {
	return m.notice
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}
