package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/memory-match/internal/games/memory"
	"github.com/vovakirdan/memory-match/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show badge progress",
	Long: `Shows which levels the principal has completed and whether the badge
can be minted. Requires --principal (or progress.principal).

Examples:
  memory progress --principal alice
  memory progress mint --principal alice`,
	Args: cobra.NoArgs,
	RunE: runProgress,
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint the completion badge",
	Args:  cobra.NoArgs,
	RunE:  runMint,
}

func init() {
	progressCmd.AddCommand(mintCmd)
}

// progressApp sets up and checks that progress tracking is usable.
func progressApp() (*app, error) {
	a, err := setup()
	if err != nil {
		return nil, err
	}
	if a.progress == nil {
		a.close()
		return nil, errors.New("progress tracking is disabled (progress.backend)")
	}
	if !a.principal.Authenticated() {
		a.close()
		return nil, progress.ErrNotAuthenticated
	}
	return a, nil
}

func runProgress(cmd *cobra.Command, _ []string) error {
	a, err := progressApp()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	st, err := a.progress.Status(ctx, a.principal)
	if err != nil {
		return err
	}

	fmt.Printf("Progress - %s\n", a.principal)
	fmt.Println()
	for i := 1; i <= memory.LevelCount(); i++ {
		done, err := a.progress.IsLevelCompleted(ctx, a.principal, i)
		if err != nil {
			return err
		}
		mark := " "
		if done {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, memory.LevelConfig(memory.Level(i)).Label)
	}

	fmt.Println()
	fmt.Printf("Completed: %d/%d\n", st.CompletedCount, progress.BadgeLevels)
	switch {
	case st.BadgeMinted:
		fmt.Println("Badge: minted")
	case st.CanMint:
		fmt.Println("Badge: ready, run 'memory progress mint'")
	default:
		fmt.Println("Badge: locked")
	}
	return nil
}

func runMint(cmd *cobra.Command, _ []string) error {
	a, err := progressApp()
	if err != nil {
		return err
	}
	defer a.close()

	minted, err := a.progress.MintBadge(cmd.Context(), a.principal)
	if err != nil {
		return err
	}
	if minted {
		fmt.Println("Badge minted!")
	} else {
		fmt.Println("Badge was already minted.")
	}
	return nil
}
