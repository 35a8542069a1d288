// memory is a ten-level memory pairs game for the terminal.
//
// Usage:
//
//	memory levels                 - List the levels
//	memory play [level]           - Play a level (default: configured start level)
//	memory menu                   - Start the level selector
//	memory scores [level]         - Show the best results
//	memory progress               - Show badge progress (progress mint: mint the badge)
//	memory cardback set|reset|show - Manage the custom card back
//	memory serve                  - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>    - Config file (default: search ~/.memory/configs, ./configs)
//	--db <path>        - Database path (default: ~/.memory/memory.db)
//	--principal <id>   - Player identity for progress (empty = anonymous)
//	--fps <rate>       - Set tick rate
//	--seed <value>     - Set RNG seed for reproducible decks
//	--log-level <lvl>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig    string
	flagDBPath    string
	flagPrincipal string
	flagFPS       int
	flagSeed      int64
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "memory",
	Short: "Memory Match - find the pairs in your terminal",
	Long: `Memory Match is a ten-level pairs game. Flip two cards per move;
matching faces stay up, mismatches turn back over after a second.
Clear all ten levels while signed in to mint the completion badge.

Available commands:
  levels    - Show the ten levels
  play      - Play a level directly
  menu      - Interactive level selector
  scores    - View the best results
  progress  - Badge progress and minting
  cardback  - Customize the card back
  serve     - Start SSH server for remote play

Examples:
  memory play
  memory play 4 --seed 42
  memory menu --principal alice
  memory cardback set ./back.png
  memory serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPrincipal, "principal", "", "Player identity for progress (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(cardbackCmd)
	rootCmd.AddCommand(serveCmd)
}
