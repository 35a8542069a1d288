package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/config"
	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/platform/tui"
)

var flagDifficulty string

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Deal a level and start playing. Without a level the configured start
level is used (game.start_level, or the difficulty preset).

Controls:
  Arrows/HJKL  - Move the cursor
  Space/Enter  - Flip the card under the cursor
  R            - Deal a fresh deck
  N            - Next level (after clearing one)
  M            - Mint the badge (after clearing all ten)
  Esc          - Back to the level selector
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Start at level 1
  normal - Start at level 4
  hard   - Start at level 7

Examples:
  memory play
  memory play 7
  memory play --difficulty hard
  memory play 3 --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if flagDifficulty != "" {
		a.cfg.Game.Difficulty = config.DifficultyPreset(flagDifficulty)
		a.cfg.Game.StartLevel = 0
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}

	level := memory.Level(a.cfg.Game.ResolvedStartLevel())
	if len(args) == 1 {
		level, err = parseLevel(args[0])
		if err != nil {
			return err
		}
	}

	return tui.Run(a.services(cmd.Context()), a.runtimeConfig(), level, tui.StartGame)
}

// parseLevel parses a level argument.
func parseLevel(s string) (memory.Level, error) {
	n, err := strconv.Atoi(s)
	if err != nil || !memory.Level(n).Valid() {
		return 0, fmt.Errorf("invalid level %q: want 1-%d", s, memory.LevelCount())
	}
	return memory.Level(n), nil
}
