package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/games/memory"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the ten levels",
	Long:  `Shows every level with its pair count and grid.`,
	Args:  cobra.NoArgs,
	Run:   runLevels,
}

func runLevels(_ *cobra.Command, _ []string) {
	fmt.Println("Levels:")
	fmt.Println()

	fmt.Printf("  %-5s  %-5s  %-5s  %s\n", "Level", "Pairs", "Cards", "Grid")
	fmt.Printf("  %-5s  %-5s  %-5s  %s\n", "-----", "-----", "-----", "----")

	for _, cfg := range memory.Levels {
		rows := (cfg.Cards() + cfg.Columns - 1) / cfg.Columns
		fmt.Printf("  %-5d  %-5d  %-5d  %dx%d\n", cfg.Level, cfg.Pairs, cfg.Cards(), cfg.Columns, rows)
	}

	fmt.Println()
	fmt.Println("Run 'memory play <level>' to play a level.")
}
