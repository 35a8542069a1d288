package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show the best results",
	Long: `Without a level, shows the best result of every level. With a level,
shows its top 10 results, fewest moves first, ties broken by time.

Examples:
  memory scores
  memory scores 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func runScores(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if a.store == nil {
		return errors.New("scores need the database")
	}
	ctx := cmd.Context()

	if len(args) == 0 {
		best, err := a.store.BestResults(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Best results")
		fmt.Println()
		if len(best) == 0 {
			fmt.Println("No results recorded yet.")
			return nil
		}
		fmt.Printf("  %-5s  %-5s  %-5s  %s\n", "Level", "Moves", "Time", "Date")
		fmt.Printf("  %-5s  %-5s  %-5s  %s\n", "-----", "-----", "----", "----")
		for _, r := range best {
			fmt.Printf("  %-5d  %-5d  %-5s  %s\n", r.Level, r.Moves, memory.FormatElapsed(r.Duration), r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	}

	level, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	results, err := a.store.TopResults(ctx, int(level), 10)
	if err != nil {
		return err
	}

	fmt.Printf("Records - %s\n", memory.LevelConfig(level).Label)
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'memory play %d' to set the first record!\n", level)
		return nil
	}

	printResults(results)

	total, err := a.store.ResultCount(ctx, int(level))
	if err == nil {
		fmt.Println()
		fmt.Printf("Games played: %d\n", total)
	}
	return nil
}

func printResults(results []storage.LevelResult) {
	fmt.Printf("  %-4s  %-5s  %-5s  %-16s  %s\n", "Rank", "Moves", "Time", "Date", "Player")
	fmt.Printf("  %-4s  %-5s  %-5s  %-16s  %s\n", "----", "-----", "----", "----", "------")

	for i, r := range results {
		player := r.Principal
		if player == "" {
			player = "anonymous"
		}
		fmt.Printf("  %-4d  %-5d  %-5s  %-16s  %s\n",
			i+1, r.Moves, memory.FormatElapsed(r.Duration), r.CreatedAt.Format("2006-01-02 15:04"), player)
	}
}
