package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/memory-match/internal/cardback"
)

// CardBackModel lets the player pick, preview, apply and reset the card back.
type CardBackModel struct {
	store     *cardback.Store
	picker    filepicker.Model
	browse    bool
	chosen    string
	notice    string
	width     int
	height    int
	quitting  bool
	goingBack bool
}

// NewCardBackModel creates the card-back screen. When browse is false only
// the active image and the reset action are offered.
func NewCardBackModel(store *cardback.Store, browse bool, width, height int) CardBackModel {
	fp := filepicker.New()
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	return CardBackModel{
		store:  store,
		picker: fp,
		browse: browse && store != nil,
		width:  width,
		height: height,
	}
}

// Init starts reading the picker's directory.
func (m CardBackModel) Init() tea.Cmd {
	if !m.browse {
		return nil
	}
	return m.picker.Init()
}

// Update handles messages for the card-back screen.
func (m CardBackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "b":
			m.goingBack = true
			return m, nil
		case "esc":
			// Esc walks up a directory inside the picker.
			if !m.browse {
				m.goingBack = true
				return m, nil
			}
		case "a":
			m.apply()
			return m, nil
		case "x":
			m.reset()
			return m, nil
		}
	}

	if !m.browse {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selectPath(path)
	}
	return m, cmd
}

// selectPath loads the chosen file into the preview.
func (m *CardBackModel) selectPath(path string) {
	m.chosen = filepath.Base(path)

	f, err := cardback.FileFromPath(path)
	if err != nil {
		m.notice = "Cannot open " + m.chosen
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch err := m.store.SelectFile(ctx, f); {
	case errors.Is(err, cardback.ErrNotImage):
		m.notice = m.chosen + " is not an image"
	case err != nil:
		m.notice = err.Error()
	default:
		m.notice = "Previewing " + m.chosen + ". Press A to apply"
	}
}

// apply makes the preview the active card back.
func (m *CardBackModel) apply() {
	if m.store == nil {
		return
	}
	if m.store.Preview() == "" {
		m.notice = "Choose an image first"
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := m.store.Apply(ctx); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = "Card back applied"
}

// reset restores the built-in card back.
func (m *CardBackModel) reset() {
	if m.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := m.store.ResetToDefault(ctx); err != nil {
		m.notice = err.Error()
		return
	}
	m.chosen = ""
	m.notice = "Card back reset to default"
}

// View renders the card-back screen.
func (m CardBackModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("CARD BACK"), m.width))
	b.WriteString("\n\n")

	if m.store == nil {
		b.WriteString(centerText("Card backs are unavailable in this session.", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(dimStyle.Render("B: Back  |  Q: Quit"), m.width))
		return b.String()
	}

	active := "built-in"
	if m.store.IsCustom() {
		active = "custom image"
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		"  Active:  ", swatchBlock(m.store.Active()), "  "+active,
	))
	b.WriteString("\n")

	if preview := m.store.Preview(); preview != "" {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
			"  Preview: ", swatchBlock(preview), "  "+m.chosen,
		))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + m.notice + "\n")
	}

	b.WriteString("\n")
	if m.browse {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  Enter: Preview  |  A: Apply  |  X: Reset  |  B: Back  |  Q: Quit"))
	} else {
		b.WriteString(dimStyle.Render("  X: Reset  |  B: Back  |  Q: Quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// swatchBlock renders a small block tinted like the image.
func swatchBlock(src string) string {
	tint, err := cardback.Swatch(src)
	if err != nil {
		tint = defaultCardBack
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(tint)).Render("      ")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m CardBackModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m CardBackModel) IsQuitting() bool {
	return m.quitting
}
