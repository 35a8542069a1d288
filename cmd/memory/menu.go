package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive level selector",
	Long: `Opens the level selector. Completed levels are marked when a
principal is set; Tab opens the records board and C the card-back screen.

Controls:
  Up/Down or J/K  - Navigate
  Enter/Space     - Play the highlighted level
  Tab             - Records
  C               - Card back
  Ctrl+R          - Reload progress
  Q/Ctrl+C        - Quit`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	level := memory.Level(a.cfg.Game.ResolvedStartLevel())
	return tui.Run(a.services(cmd.Context()), a.runtimeConfig(), level, tui.StartMenu)
}
